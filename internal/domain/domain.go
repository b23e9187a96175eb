// Package domain re-exports core engine types so internal code can import
// `kyd/internal/domain` while using definitions from `kyd/pkg/domain`,
// mirroring the teacher's internal/pkg split.
package domain

import pkg "kyd/pkg/domain"

// Money & rates.
type (
	Money    = pkg.Money
	Fraction = pkg.Fraction
)

// Identifiers.
type (
	AgentID = pkg.AgentID
	TxID    = pkg.TxID
	NodeID  = pkg.NodeID
)

// Transaction & agent.
type (
	Transaction       = pkg.Transaction
	TransactionStatus = pkg.TransactionStatus
	Agent             = pkg.Agent
	CostCounters      = pkg.CostCounters
	StateRegisters    = pkg.StateRegisters
)

const (
	TransactionPending = pkg.TransactionPending
	TransactionInQ1    = pkg.TransactionInQ1
	TransactionInQ2    = pkg.TransactionInQ2
	TransactionSettled = pkg.TransactionSettled
	TransactionDropped = pkg.TransactionDropped
	TransactionOverdue = pkg.TransactionOverdue
)

// Policy tree.
type (
	TreeKind   = pkg.TreeKind
	FieldType  = pkg.FieldType
	ActionKind = pkg.ActionKind
	CompareOp  = pkg.CompareOp
	BoolOp     = pkg.BoolOp
	ArithOp    = pkg.ArithOp
	Value      = pkg.Value
	ValueKind  = pkg.ValueKind
	Condition  = pkg.Condition
	Action     = pkg.Action
	Node       = pkg.Node
	Tree       = pkg.Tree
	Policy     = pkg.Policy
	Context    = pkg.Context
)

const (
	TreePayment             = pkg.TreePayment
	TreeBank                = pkg.TreeBank
	TreeStrategicCollateral = pkg.TreeStrategicCollateral
	TreeEndOfTickCollateral = pkg.TreeEndOfTickCollateral

	FieldCents    = pkg.FieldCents
	FieldTicks    = pkg.FieldTicks
	FieldCount    = pkg.FieldCount
	FieldFraction = pkg.FieldFraction
	FieldBool     = pkg.FieldBool

	ActionRelease            = pkg.ActionRelease
	ActionHold               = pkg.ActionHold
	ActionDrop               = pkg.ActionDrop
	ActionSplit              = pkg.ActionSplit
	ActionStaggerSplit       = pkg.ActionStaggerSplit
	ActionSetReleaseBudget   = pkg.ActionSetReleaseBudget
	ActionSetStateRegister   = pkg.ActionSetStateRegister
	ActionPostCollateral     = pkg.ActionPostCollateral
	ActionWithdrawCollateral = pkg.ActionWithdrawCollateral
	ActionHoldCollateral     = pkg.ActionHoldCollateral

	OpEq CompareOp = pkg.OpEq
	OpNe CompareOp = pkg.OpNe
	OpLt CompareOp = pkg.OpLt
	OpLe CompareOp = pkg.OpLe
	OpGt CompareOp = pkg.OpGt
	OpGe CompareOp = pkg.OpGe

	BoolAnd = pkg.BoolAnd
	BoolOr  = pkg.BoolOr
	BoolNot = pkg.BoolNot

	ArithAdd ArithOp = pkg.ArithAdd
	ArithSub ArithOp = pkg.ArithSub
	ArithMul ArithOp = pkg.ArithMul
	ArithDiv ArithOp = pkg.ArithDiv

	ValueLiteral  = pkg.ValueLiteral
	ValueFieldRef = pkg.ValueFieldRef
	ValueParamRef = pkg.ValueParamRef
	ValueCompute  = pkg.ValueCompute

	StateRegisterFieldPrefix = pkg.StateRegisterFieldPrefix
)

var (
	FieldValid      = pkg.FieldValid
	ActionPermitted = pkg.ActionPermitted
	NewFraction     = pkg.NewFraction
	ApplyBps        = pkg.ApplyBps
	Max             = pkg.Max
	Min             = pkg.Min
	NewAgent        = pkg.NewAgent
)

// Events.
type (
	Event                          = pkg.Event
	EventKind                      = pkg.EventKind
	Base                           = pkg.Base
	TransactionArrivalEvent        = pkg.TransactionArrivalEvent
	PolicySubmitEvent              = pkg.PolicySubmitEvent
	PolicyHoldEvent                = pkg.PolicyHoldEvent
	PolicyDropEvent                = pkg.PolicyDropEvent
	PolicySplitEvent               = pkg.PolicySplitEvent
	RtgsImmediateSettlementEvent   = pkg.RtgsImmediateSettlementEvent
	Queue2LiquidityReleaseEvent    = pkg.Queue2LiquidityReleaseEvent
	Queue2ReleaseReason            = pkg.Queue2ReleaseReason
	LsmBilateralOffsetEvent        = pkg.LsmBilateralOffsetEvent
	LsmCycleSettlementEvent        = pkg.LsmCycleSettlementEvent
	CollateralPostedEvent          = pkg.CollateralPostedEvent
	CollateralWithdrawnEvent       = pkg.CollateralWithdrawnEvent
	DeferredCreditAppliedEvent     = pkg.DeferredCreditAppliedEvent
	AgentCostLine                  = pkg.AgentCostLine
	CostAccrualEvent               = pkg.CostAccrualEvent
	TransactionWentOverdueEvent    = pkg.TransactionWentOverdueEvent
	OverdueTransactionSettledEvent = pkg.OverdueTransactionSettledEvent
	DailyStats                     = pkg.DailyStats
	EndOfDayEvent                  = pkg.EndOfDayEvent
	StateRegisterSetEvent          = pkg.StateRegisterSetEvent
	BankBudgetSetEvent             = pkg.BankBudgetSetEvent
	ScenarioEventAppliedEvent      = pkg.ScenarioEventAppliedEvent
)

const (
	ReleaseNewLiquidity    = pkg.ReleaseNewLiquidity
	ReleaseCollateralPost  = pkg.ReleaseCollateralPost
	ReleaseIncomingPayment = pkg.ReleaseIncomingPayment
	ReleaseQ2EntryOffset   = pkg.ReleaseQ2EntryOffset
)

// Scenario & config.
type (
	Scenario              = pkg.Scenario
	AgentConfig           = pkg.AgentConfig
	GlobalSettings        = pkg.GlobalSettings
	LSMConfig             = pkg.LSMConfig
	CostRates             = pkg.CostRates
	CollateralHysteresis  = pkg.CollateralHysteresis
	QueueOrdering         = pkg.QueueOrdering
	PriorityEscalation    = pkg.PriorityEscalation
	EscalationCurve       = pkg.EscalationCurve
	ArrivalConfig         = pkg.ArrivalConfig
	ArrivalBands          = pkg.ArrivalBands
	ArrivalDistribution   = pkg.ArrivalDistribution
	ArrivalDistributionKind = pkg.ArrivalDistributionKind
	CounterpartyWeight    = pkg.CounterpartyWeight
	PriorityBand          = pkg.PriorityBand
	ScenarioEvent         = pkg.ScenarioEvent
	ScenarioEventKind     = pkg.ScenarioEventKind
	ScenarioEventSchedule = pkg.ScenarioEventSchedule
	CustomArrival         = pkg.CustomArrival
)

const (
	QueueFIFO             = pkg.QueueFIFO
	QueuePriorityDeadline = pkg.QueuePriorityDeadline

	EscalationNone     = pkg.EscalationNone
	EscalationLinear   = pkg.EscalationLinear
	EscalationStepwise = pkg.EscalationStepwise

	DistNormal      = pkg.DistNormal
	DistLogNormal   = pkg.DistLogNormal
	DistUniform     = pkg.DistUniform
	DistExponential = pkg.DistExponential

	ScenarioDirectTransfer       = pkg.ScenarioDirectTransfer
	ScenarioCustomArrival        = pkg.ScenarioCustomArrival
	ScenarioCollateralAdjustment = pkg.ScenarioCollateralAdjustment
	ScenarioRateChange           = pkg.ScenarioRateChange
	ScenarioWeightChange         = pkg.ScenarioWeightChange
	ScenarioDeadlineChange       = pkg.ScenarioDeadlineChange
)

var (
	BandUrgent = pkg.BandUrgent
	BandNormal = pkg.BandNormal
	BandLow    = pkg.BandLow
)
