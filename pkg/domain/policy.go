package domain

// TreeKind identifies which of the four policy trees (spec.md §4.3) a Node
// belongs to, which in turn constrains which fields/actions are legal.
type TreeKind string

const (
	TreePayment                TreeKind = "payment_tree"
	TreeBank                   TreeKind = "bank_tree"
	TreeStrategicCollateral    TreeKind = "strategic_collateral_tree"
	TreeEndOfTickCollateral    TreeKind = "end_of_tick_collateral_tree"
)

// FieldType documents the unit a FieldRef resolves to. The validator checks
// only that a field exists for its tree; it does not compare units (a tick
// count compared to a cents amount passes validation).
type FieldType string

const (
	FieldCents    FieldType = "cents"
	FieldTicks    FieldType = "ticks"
	FieldCount    FieldType = "count"
	FieldFraction FieldType = "fraction"
	FieldBool     FieldType = "bool"
)

// ActionKind enumerates every terminal directive a tree can produce.
type ActionKind string

const (
	ActionRelease             ActionKind = "release"
	ActionHold                ActionKind = "hold"
	ActionDrop                ActionKind = "drop"
	ActionSplit               ActionKind = "split"
	ActionStaggerSplit        ActionKind = "stagger_split"
	ActionSetReleaseBudget    ActionKind = "set_release_budget"
	ActionSetStateRegister    ActionKind = "set_state_register"
	ActionPostCollateral      ActionKind = "post_collateral"
	ActionWithdrawCollateral  ActionKind = "withdraw_collateral"
	ActionHoldCollateral      ActionKind = "hold_collateral"
)

// permittedActions maps each tree to the actions spec.md §4.3's table
// allows it to produce. Used by the validator.
var permittedActions = map[TreeKind]map[ActionKind]bool{
	TreePayment: {
		ActionRelease: true, ActionHold: true, ActionDrop: true,
		ActionSplit: true, ActionStaggerSplit: true,
	},
	TreeBank: {
		ActionSetReleaseBudget: true, ActionSetStateRegister: true,
	},
	TreeStrategicCollateral: {
		ActionPostCollateral: true, ActionWithdrawCollateral: true, ActionHoldCollateral: true,
	},
	TreeEndOfTickCollateral: {
		ActionPostCollateral: true, ActionWithdrawCollateral: true, ActionHoldCollateral: true,
	},
}

// ActionPermitted reports whether kind is a legal terminal for tree.
func ActionPermitted(tree TreeKind, kind ActionKind) bool {
	return permittedActions[tree][kind]
}

// paymentOnlyFields describes every Context field the payment tree may
// reference beyond the agent-level fields every tree shares.
var paymentOnlyFields = map[string]FieldType{
	"amount":           FieldCents,
	"remaining_amount": FieldCents,
	"priority":         FieldCount,
	"ticks_to_deadline": FieldTicks,
	"is_split":         FieldBool,
	"is_overdue":       FieldBool,
}

// agentFields are available to every tree kind.
var agentFields = map[string]FieldType{
	"balance":                FieldCents,
	"credit_limit":           FieldCents,
	"posted_collateral":      FieldCents,
	"q1_size":                FieldCount,
	"q2_size":                FieldCount,
	"day_progress_fraction":  FieldFraction,
	"is_eod_rush":            FieldBool,
	"cost_liquidity":         FieldCents,
	"cost_delay":             FieldCents,
	"cost_collateral":        FieldCents,
	"cost_deadline_penalty":  FieldCents,
	"cost_split_friction":    FieldCents,
}

// FieldValid reports whether name is a legal FieldRef for tree.
func FieldValid(tree TreeKind, name string) bool {
	if _, ok := agentFields[name]; ok {
		return true
	}
	if tree == TreePayment {
		_, ok := paymentOnlyFields[name]
		return ok
	}
	return false
}

// StateRegisterFieldPrefix marks a FieldRef name of the form
// "state:<name>" as a read of a bank_tree-set state register, valid on
// every tree.
const StateRegisterFieldPrefix = "state:"

// ---- node / value AST ----

// NodeID is a policy-tree-unique identifier, validated for uniqueness
// across the whole policy at setup time (spec.md §4.3).
type NodeID string

// CompareOp is a comparison operator usable inside a Condition node.
type CompareOp string

const (
	OpEq CompareOp = "=="
	OpNe CompareOp = "!="
	OpLt CompareOp = "<"
	OpLe CompareOp = "<="
	OpGt CompareOp = ">"
	OpGe CompareOp = ">="
)

// BoolOp combines two boolean sub-expressions, short-circuiting per
// spec.md §4.3 ("and" stops at first false, "or" at first true).
type BoolOp string

const (
	BoolAnd BoolOp = "and"
	BoolOr  BoolOp = "or"
	BoolNot BoolOp = "not"
)

// ArithOp is a binary arithmetic operator usable inside a Compute value.
type ArithOp string

const (
	ArithAdd ArithOp = "+"
	ArithSub ArithOp = "-"
	ArithMul ArithOp = "*"
	ArithDiv ArithOp = "/" // integer division, truncating toward zero
)

// Value is any leaf or composed expression a Condition or Action parameter
// can reference: Literal, FieldRef, ParamRef, or Compute.
type Value struct {
	ID NodeID

	// Exactly one of the following is populated, discriminated by Kind.
	Kind ValueKind

	Literal  int64  // ValueLiteral
	FieldRef string // ValueFieldRef
	ParamRef string // ValueParamRef

	// ValueCompute
	Op    ArithOp
	Left  *Value
	Right *Value
}

type ValueKind string

const (
	ValueLiteral  ValueKind = "literal"
	ValueFieldRef ValueKind = "field_ref"
	ValueParamRef ValueKind = "param_ref"
	ValueCompute  ValueKind = "compute"
)

// Condition is a boolean expression over a Context, either a comparison
// between two Values or a boolean combinator over sub-conditions.
type Condition struct {
	ID NodeID

	// Comparison form.
	IsComparison bool
	Op           CompareOp
	Left, Right  *Value

	// Boolean-combinator form.
	BoolOp BoolOp
	Args   []*Condition // two for And/Or, one for Not
}

// Action is a terminal directive produced by evaluating a tree.
type Action struct {
	ID   NodeID
	Kind ActionKind

	// Parameters, populated per Kind; zero-value when unused.
	NumSplits             int      // ActionSplit / ActionStaggerSplit
	StaggerGapTicks       int      // ActionStaggerSplit
	PriorityBoostChildren int      // ActionStaggerSplit
	FirstChildThisTick    bool     // ActionStaggerSplit
	Amount                *Value   // ActionSetReleaseBudget / PostCollateral / WithdrawCollateral
	RegisterName          string   // ActionSetStateRegister
	RegisterValue         *Value   // ActionSetStateRegister
}

// Node is a single decision-tree node: either a Condition with two
// children, or a terminal Action.
type Node struct {
	ID NodeID

	IsAction bool
	Action   *Action

	Cond            *Condition
	OnTrue, OnFalse *Node
}

// Tree is a rooted policy decision tree for one of the four tree kinds.
type Tree struct {
	Kind TreeKind
	Root *Node
}

// Policy bundles the (up to) four optional trees and their declared
// parameters for one agent (spec.md §4.3).
type Policy struct {
	PaymentTree             *Tree
	BankTree                *Tree
	StrategicCollateralTree *Tree
	EndOfTickCollateralTree *Tree
	Params                  map[string]int64
}

// Context is the read-only view a tree evaluation runs against. Which
// fields are populated/legal depends on the tree kind (spec.md §4.3).
type Context struct {
	Tree TreeKind

	// Agent-level fields, always populated.
	Balance             Money
	CreditLimit         Money
	PostedCollateral    Money
	Q1Size              int
	Q2Size              int
	DayProgressFraction Fraction
	IsEODRush           bool
	Costs               CostCounters
	StateRegisters      StateRegisters

	// Payment-tree-only fields.
	Amount          Money
	RemainingAmount Money
	Priority        int
	TicksToDeadline int
	IsSplit         bool
	IsOverdue       bool
}
