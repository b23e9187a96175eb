package domain

// AgentID is an opaque, externally-visible participant identifier.
type AgentID string

// CostCounters accumulates the five per-agent cost categories of spec.md
// §4.9, never reset except at scenario start.
type CostCounters struct {
	Liquidity       Money
	Delay           Money
	Collateral      Money
	DeadlinePenalty Money
	SplitFriction   Money
}

// Total sums all five categories.
func (c CostCounters) Total() Money {
	return c.Liquidity + c.Delay + c.Collateral + c.DeadlinePenalty + c.SplitFriction
}

// Add merges another set of counters into this one in place.
func (c *CostCounters) Add(other CostCounters) {
	c.Liquidity += other.Liquidity
	c.Delay += other.Delay
	c.Collateral += other.Collateral
	c.DeadlinePenalty += other.DeadlinePenalty
	c.SplitFriction += other.SplitFriction
}

// StateRegisters holds small integer/bool registers a bank_tree can set and
// later trees can read back (spec.md §4.3, `SetStateRegister`).
type StateRegisters map[string]int64

// Agent is a mutable participant record (spec.md §3).
type Agent struct {
	ID                        AgentID
	Balance                   Money
	CreditLimit               Money // >= 0, unsecured overdraft cap
	PostedCollateral          Money // >= 0
	CollateralHaircut         Fraction
	CollateralPostedAtTick    int  // valid only if HasPostedCollateral
	HasPostedCollateral       bool // true once any collateral has ever been posted
	Q1                        []TxID
	Q2Membership              map[TxID]bool
	BilateralLimits           map[AgentID]Money // remaining-today cap per counterparty
	MultilateralLimitRemaining Money
	MultilateralLimitConfigured bool
	DeferredCreditAccumulator Money
	AccumulatedCosts          CostCounters
	StateRegisters            StateRegisters

	// ReleaseBudget is the per-tick amount the bank_tree has authorized for
	// release from Q1 this tick (SetReleaseBudget). It applies only once
	// ReleaseBudgetSet is true; until then releases are unlimited. A set
	// budget of zero releases nothing.
	ReleaseBudget         Money
	ReleaseBudgetSet      bool
}

// NewAgent constructs an Agent with empty collections initialized, as the
// orchestrator does for every scenario agent at setup.
func NewAgent(id AgentID, balance, creditLimit Money, haircut Fraction) *Agent {
	return &Agent{
		ID:                id,
		Balance:           balance,
		CreditLimit:       creditLimit,
		CollateralHaircut: haircut,
		Q1:                make([]TxID, 0),
		Q2Membership:      make(map[TxID]bool),
		BilateralLimits:   make(map[AgentID]Money),
		StateRegisters:    make(StateRegisters),
	}
}

// CreditUsed is max(-balance, 0): the unsecured overdraft currently drawn.
func (a *Agent) CreditUsed() Money {
	if a.Balance < 0 {
		return -a.Balance
	}
	return 0
}

// CollateralCapacity is the haircut-adjusted credit headroom posted
// collateral buys, floor(posted_collateral * (1-haircut)).
func (a *Agent) CollateralCapacity() Money {
	oneMinusHaircut := Fraction{Num: a.CollateralHaircut.Den - a.CollateralHaircut.Num, Den: a.CollateralHaircut.Den}
	return oneMinusHaircut.ApplyFloor(a.PostedCollateral)
}

// AvailableLiquidity is the derived field of spec.md §3:
// max(balance,0) + max(credit_limit + collateral_capacity - credit_used, 0).
func (a *Agent) AvailableLiquidity() Money {
	positiveBalance := Money(0)
	if a.Balance > 0 {
		positiveBalance = a.Balance
	}
	headroom := a.CreditLimit + a.CollateralCapacity() - a.CreditUsed()
	if headroom < 0 {
		headroom = 0
	}
	return positiveBalance + headroom
}

// CreditCap is credit_limit + collateral_capacity, the invariant bound on
// CreditUsed() that must hold after every settlement (spec.md §3, §8.1).
func (a *Agent) CreditCap() Money {
	return a.CreditLimit + a.CollateralCapacity()
}

// InQ1 reports whether txID is currently queued in this agent's Q1.
func (a *Agent) InQ1(txID TxID) bool {
	for _, id := range a.Q1 {
		if id == txID {
			return true
		}
	}
	return false
}

// RemoveFromQ1 removes txID from Q1 if present.
func (a *Agent) RemoveFromQ1(txID TxID) {
	for i, id := range a.Q1 {
		if id == txID {
			a.Q1 = append(a.Q1[:i], a.Q1[i+1:]...)
			return
		}
	}
}
