package domain

// EventKind tags an Event's concrete variant for dispatch without a type
// switch at every call site (serialization, persistence, display).
type EventKind string

const (
	EventTransactionArrival     EventKind = "transaction_arrival"
	EventPolicySubmit           EventKind = "policy_submit"
	EventPolicyHold             EventKind = "policy_hold"
	EventPolicyDrop             EventKind = "policy_drop"
	EventPolicySplit            EventKind = "policy_split"
	EventRtgsImmediateSettle    EventKind = "rtgs_immediate_settlement"
	EventQueue2LiquidityRelease EventKind = "queue2_liquidity_release"
	EventLsmBilateralOffset     EventKind = "lsm_bilateral_offset"
	EventLsmCycleSettlement     EventKind = "lsm_cycle_settlement"
	EventCollateralPosted       EventKind = "collateral_posted"
	EventCollateralWithdrawn    EventKind = "collateral_withdrawn"
	EventDeferredCreditApplied  EventKind = "deferred_credit_applied"
	EventCostAccrual            EventKind = "cost_accrual"
	EventTransactionWentOverdue EventKind = "transaction_went_overdue"
	EventOverdueTxSettled       EventKind = "overdue_transaction_settled"
	EventEndOfDay               EventKind = "end_of_day"
	EventStateRegisterSet       EventKind = "state_register_set"
	EventBankBudgetSet          EventKind = "bank_budget_set"
	EventScenarioEventApplied   EventKind = "scenario_event_applied"
)

// Event is implemented by every emitted variant. Each variant carries every
// field needed to reconstruct its display line from itself alone, per
// spec.md §3/§6's persistence-contract requirement.
type Event interface {
	Kind() EventKind
	TickIndex() int
}

// Base is embedded by every concrete event to supply Tick and a stable
// emission-sequence number (total order within the tick, spec.md §5).
type Base struct {
	Tick     int
	Sequence int
}

func (b Base) TickIndex() int { return b.Tick }

// ---- variants ----

type TransactionArrivalEvent struct {
	Base
	Tx Transaction
}

func (TransactionArrivalEvent) Kind() EventKind { return EventTransactionArrival }

type PolicySubmitEvent struct {
	Base
	TxID TxID
}

func (PolicySubmitEvent) Kind() EventKind { return EventPolicySubmit }

type PolicyHoldEvent struct {
	Base
	TxID   TxID
	Reason string
}

func (PolicyHoldEvent) Kind() EventKind { return EventPolicyHold }

type PolicyDropEvent struct {
	Base
	TxID   TxID
	Reason string
}

func (PolicyDropEvent) Kind() EventKind { return EventPolicyDrop }

type PolicySplitEvent struct {
	Base
	ParentID TxID
	ChildIDs []TxID
	Amounts  []Money
}

func (PolicySplitEvent) Kind() EventKind { return EventPolicySplit }

type RtgsImmediateSettlementEvent struct {
	Base
	TxID                  TxID
	SenderID, ReceiverID  AgentID
	Amount                Money
	SenderBalanceBefore   Money
	SenderBalanceAfter    Money
}

func (RtgsImmediateSettlementEvent) Kind() EventKind { return EventRtgsImmediateSettle }

// Queue2ReleaseReason enumerates why a Q2 release attempt was triggered.
type Queue2ReleaseReason string

const (
	ReleaseNewLiquidity    Queue2ReleaseReason = "new_liquidity"
	ReleaseCollateralPost  Queue2ReleaseReason = "collateral_posted"
	ReleaseIncomingPayment Queue2ReleaseReason = "incoming_payment"
	ReleaseQ2EntryOffset   Queue2ReleaseReason = "q2_entry_offset"
)

type Queue2LiquidityReleaseEvent struct {
	Base
	TxID           TxID
	SenderID       AgentID
	ReceiverID     AgentID
	Amount         Money
	QueueWaitTicks int
	Reason         Queue2ReleaseReason
}

func (Queue2LiquidityReleaseEvent) Kind() EventKind { return EventQueue2LiquidityRelease }

type LsmBilateralOffsetEvent struct {
	Base
	TxIDA, TxIDB     TxID
	AmountA, AmountB Money
	NetSettled       Money
	// Reason distinguishes the regular end-of-phase pass ("phase") from an
	// entry_disposition_offsetting check run as a tx enters Q2
	// ("entry_disposition"); spec.md §9 open question (c).
	Reason string
}

func (LsmBilateralOffsetEvent) Kind() EventKind { return EventLsmBilateralOffset }

type LsmCycleSettlementEvent struct {
	Base
	Agents        []AgentID
	TxIDs         []TxID
	TxAmounts     []Money
	NetPositions  []Money
	MaxOutflowAgent AgentID
	TotalValue    Money
}

func (LsmCycleSettlementEvent) Kind() EventKind { return EventLsmCycleSettlement }

type CollateralPostedEvent struct {
	Base
	AgentID         AgentID
	Amount          Money
	Reason          string
	HeadroomDelta   Money
}

func (CollateralPostedEvent) Kind() EventKind { return EventCollateralPosted }

type CollateralWithdrawnEvent struct {
	Base
	AgentID       AgentID
	Amount        Money
	Reason        string
	HeadroomDelta Money
	TicksHeld     int
}

func (CollateralWithdrawnEvent) Kind() EventKind { return EventCollateralWithdrawn }

type DeferredCreditAppliedEvent struct {
	Base
	AgentID AgentID
	Amount  Money
}

func (DeferredCreditAppliedEvent) Kind() EventKind { return EventDeferredCreditApplied }

// AgentCostLine is one agent's per-category accrual within a CostAccrual
// event.
type AgentCostLine struct {
	AgentID AgentID
	Costs   CostCounters
}

type CostAccrualEvent struct {
	Base
	Lines []AgentCostLine
}

func (CostAccrualEvent) Kind() EventKind { return EventCostAccrual }

type TransactionWentOverdueEvent struct {
	Base
	TxID TxID
}

func (TransactionWentOverdueEvent) Kind() EventKind { return EventTransactionWentOverdue }

type OverdueTransactionSettledEvent struct {
	Base
	TxID          TxID
	TicksOverdue  int
}

func (OverdueTransactionSettledEvent) Kind() EventKind { return EventOverdueTxSettled }

// DailyStats aggregates end-of-day summary figures (spec.md §3).
type DailyStats struct {
	SettledCount     int
	DroppedCount     int
	OverdueCount     int
	TotalSettledValue Money
	TotalCosts       CostCounters
}

type EndOfDayEvent struct {
	Base
	Day   int
	Stats DailyStats
}

func (EndOfDayEvent) Kind() EventKind { return EventEndOfDay }

type StateRegisterSetEvent struct {
	Base
	AgentID AgentID
	Name    string
	Value   int64
}

func (StateRegisterSetEvent) Kind() EventKind { return EventStateRegisterSet }

type BankBudgetSetEvent struct {
	Base
	AgentID AgentID
	Budget  Money
}

func (BankBudgetSetEvent) Kind() EventKind { return EventBankBudgetSet }

type ScenarioEventAppliedEvent struct {
	Base
	Description string
}

func (ScenarioEventAppliedEvent) Kind() EventKind { return EventScenarioEventApplied }
