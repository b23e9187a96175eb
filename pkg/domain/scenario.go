package domain

// QueueOrdering selects Q1 ordering (spec.md §4.5).
type QueueOrdering string

const (
	QueueFIFO            QueueOrdering = "fifo"
	QueuePriorityDeadline QueueOrdering = "priority_deadline"
)

// EscalationCurve selects the shape of priority escalation as a function of
// ticks-in-queue (spec.md §4.5).
type EscalationCurve string

const (
	EscalationNone     EscalationCurve = "none"
	EscalationLinear   EscalationCurve = "linear"
	EscalationStepwise EscalationCurve = "stepwise"
)

// PriorityEscalation configures Q1/Q2 escalation. The raw priority on the
// transaction is never mutated; escalation is recomputed on demand.
type PriorityEscalation struct {
	Curve        EscalationCurve
	MaxBoost     int
	StepSize     int // ticks per step, for EscalationStepwise
	StepIncrement int
}

// EffectivePriority returns the escalated priority for a transaction that
// has waited ticksInQueue ticks, bounded by MaxBoost.
func (e PriorityEscalation) EffectivePriority(basePriority, ticksInQueue int) int {
	if e.Curve == EscalationNone || ticksInQueue <= 0 {
		return basePriority
	}
	var boost int
	switch e.Curve {
	case EscalationLinear:
		boost = ticksInQueue
	case EscalationStepwise:
		if e.StepSize <= 0 {
			boost = 0
		} else {
			boost = (ticksInQueue / e.StepSize) * e.StepIncrement
		}
	}
	if boost > e.MaxBoost {
		boost = e.MaxBoost
	}
	return basePriority + boost
}

// LSMConfig configures the liquidity-saving mechanism (spec.md §4.7, §6).
type LSMConfig struct {
	EnableBilateral            bool
	EnableCycles               bool
	MaxCycleLength             int `validate:"omitempty,gte=3,lte=10"`
	MaxCyclesPerTick           int `validate:"omitempty,gte=1"`
	EntryDispositionOffsetting bool
}

// CostRates configures the five-category cost accruer (spec.md §4.9). All
// rates are supplied as integers (basis points, cents, or whole-number
// multipliers); validation does not convert them.
type CostRates struct {
	OverdraftBpsPerTick       int64
	DelayCostPerTickPerCent   int64 // cents of delay cost per cent of remaining_amount per tick
	OverdueDelayMultiplier    int64 // whole-number multiplier applied to overdue residents
	CollateralCostPerTickBps  int64
	DeadlinePenalty           Money
	SplitFrictionPerChild     Money
}

// ArrivalDistribution selects the amount-sampling distribution for the
// arrival generator (spec.md §4.4).
type ArrivalDistributionKind string

const (
	DistNormal      ArrivalDistributionKind = "normal"
	DistLogNormal   ArrivalDistributionKind = "lognormal"
	DistUniform     ArrivalDistributionKind = "uniform"
	DistExponential ArrivalDistributionKind = "exponential"
)

// ArrivalDistribution parameterizes one of the four amount distributions;
// fields are interpreted per Kind.
type ArrivalDistribution struct {
	Kind   ArrivalDistributionKind
	Mean   float64 // Normal, LogNormal (mu for lognormal is log-space mean)
	StdDev float64 // Normal, LogNormal (sigma for lognormal is log-space stddev)
	Min    float64 // Uniform
	Max    float64 // Uniform
	Rate   float64 // Exponential
}

// CounterpartyWeight is one entry of an agent's outgoing-counterparty
// distribution.
type CounterpartyWeight struct {
	AgentID AgentID
	Weight  float64
}

// PriorityBand is one row of the banded priority configuration (spec.md
// §4.4): urgent 8-10, normal 4-7, low 0-3.
type PriorityBand struct {
	Min, Max int
}

var (
	BandUrgent = PriorityBand{Min: 8, Max: 10}
	BandNormal = PriorityBand{Min: 4, Max: 7}
	BandLow    = PriorityBand{Min: 0, Max: 3}
)

// ArrivalConfig is the single (non-banded) arrival configuration mode.
type ArrivalConfig struct {
	RatePerTick         float64
	Amount              ArrivalDistribution
	FixedPriority       *int
	PriorityDist        *ArrivalDistribution
	Counterparties      []CounterpartyWeight
	DeadlineOffsetMin   int
	DeadlineOffsetMax   int
	DeadlineCapAtEOD    bool
}

// ArrivalBands is the banded arrival configuration mode: independent
// Poisson processes for urgent/normal/low priority traffic.
type ArrivalBands struct {
	Urgent, Normal, Low *ArrivalConfig
}

// AgentConfig describes one participant at scenario setup.
type AgentConfig struct {
	ID                         AgentID `validate:"required"`
	OpeningBalance             Money
	CreditLimit                Money `validate:"gte=0"`
	PostedCollateral           Money `validate:"gte=0"`
	CollateralHaircut          Fraction
	BilateralLimits            map[AgentID]Money
	MultilateralLimit          Money
	MultilateralLimitConfigured bool
	ArrivalConfig              *ArrivalConfig // mutually exclusive with ArrivalBands
	ArrivalBands               *ArrivalBands
	Policy                     Policy
}

// CollateralHysteresis configures posting/withdrawal gating for
// policy-driven collateral actions (spec.md §4.8).
type CollateralHysteresis struct {
	PostingThreshold    Fraction // liquidity_gap / pending_outflows > this triggers posting eligibility
	WithdrawalThreshold Fraction // excess_liquidity / pending_outflows > this triggers withdrawal eligibility
	MinHoldingTicks     int
}

// GlobalSettings are scenario-wide, non-per-agent settings (spec.md §6).
type GlobalSettings struct {
	Queue1Ordering             QueueOrdering `validate:"omitempty,oneof=fifo priority_deadline"`
	PriorityMode               bool
	PriorityEscalation         PriorityEscalation
	LSM                        LSMConfig
	Cost                       CostRates
	Collateral                 CollateralHysteresis
	AlgorithmSequencing        bool
	DeferredCrediting          bool
	EODRushThreshold           Fraction // day_progress_fraction >= this => is_eod_rush
	DeadlineCapAtEOD           bool
	MaxQ2ReleaseIterationsPerTick int `validate:"omitempty,gte=1"`
}

// ScenarioEventKind enumerates the external disturbances the dispatcher can
// apply (spec.md §4.10 step 1, §6).
type ScenarioEventKind string

const (
	ScenarioDirectTransfer         ScenarioEventKind = "direct_transfer"
	ScenarioCustomArrival          ScenarioEventKind = "custom_transaction_arrival"
	ScenarioCollateralAdjustment   ScenarioEventKind = "collateral_adjustment"
	ScenarioRateChange             ScenarioEventKind = "rate_change"
	ScenarioWeightChange           ScenarioEventKind = "weight_change"
	ScenarioDeadlineChange         ScenarioEventKind = "deadline_change"
)

// ScenarioEventSchedule is either a one-time tick or a repeating interval.
type ScenarioEventSchedule struct {
	Repeating  bool
	Tick       int // OneTime
	StartTick  int // Repeating
	Interval   int // Repeating
}

// DueAt reports whether the schedule fires at the given tick.
func (s ScenarioEventSchedule) DueAt(tick int) bool {
	if !s.Repeating {
		return tick == s.Tick
	}
	if s.Interval <= 0 || tick < s.StartTick {
		return false
	}
	return (tick-s.StartTick)%s.Interval == 0
}

// ScenarioEvent is one scheduled external disturbance.
type ScenarioEvent struct {
	Kind     ScenarioEventKind
	Schedule ScenarioEventSchedule

	// Populated per Kind.
	FromAgent, ToAgent AgentID
	Amount             Money
	CustomTx           *CustomArrival
	RateDelta          float64
	NewWeight          CounterpartyWeight
	NewDeadlineTick    int
}

// CustomArrival injects a fully-specified transaction out of band, either
// as a scheduled ScenarioEvent or via Orchestrator.InjectTransaction
// (spec.md §6).
type CustomArrival struct {
	ID           TxID
	SenderID     AgentID
	ReceiverID   AgentID
	Amount       Money
	Priority     int
	DeadlineTick int
	Divisible    bool
}

// Scenario is the validated input object the core is constructed from
// (spec.md §6). It is never mutated after New(); the orchestrator owns a
// private working copy of every per-agent and per-transaction record.
type Scenario struct {
	TicksPerDay int `validate:"gt=0"`
	NumDays     int `validate:"gt=0"`
	RNGSeed     uint64
	Agents      []AgentConfig `validate:"required,min=1,dive"`
	Global      GlobalSettings
	Events      []ScenarioEvent
}
