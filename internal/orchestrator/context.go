package orchestrator

import (
	"kyd/internal/domain"
)

// agentContext builds the Context for an agent-level tree (bank_tree,
// strategic_collateral_tree, end_of_tick_collateral_tree): no single
// transaction is in scope, so the transaction-scoped fields are left zero.
func (o *Orchestrator) agentContext(tree domain.TreeKind, agent *domain.Agent) domain.Context {
	return domain.Context{
		Tree:                tree,
		Balance:             agent.Balance,
		CreditLimit:         agent.CreditLimit,
		PostedCollateral:    agent.PostedCollateral,
		Q1Size:              len(agent.Q1),
		Q2Size:              len(agent.Q2Membership),
		DayProgressFraction: o.dayProgressFraction(),
		IsEODRush:           o.isEODRush(),
		Costs:               agent.AccumulatedCosts,
		StateRegisters:      agent.StateRegisters,
	}
}

// txContext builds the Context for a payment_tree evaluation of tx,
// layering the transaction-scoped fields onto the sender's agent context.
func (o *Orchestrator) txContext(agent *domain.Agent, tx *domain.Transaction) domain.Context {
	ctx := o.agentContext(domain.TreePayment, agent)
	ctx.Amount = tx.Amount
	ctx.RemainingAmount = tx.RemainingAmount
	ctx.Priority = tx.Priority
	ctx.TicksToDeadline = tx.TicksToDeadline(o.tick)
	ctx.IsSplit = tx.IsSplitChild
	ctx.IsOverdue = tx.IsOverdue(o.tick)
	return ctx
}

func (o *Orchestrator) dayProgressFraction() domain.Fraction {
	ticksPerDay := o.scenario.TicksPerDay
	if ticksPerDay <= 0 {
		return domain.Fraction{Num: 0, Den: 1}
	}
	return domain.Fraction{Num: int64(o.tick % ticksPerDay), Den: int64(ticksPerDay)}
}

func (o *Orchestrator) isEODRush() bool {
	threshold := o.scenario.Global.EODRushThreshold
	if threshold.Den == 0 {
		return false
	}
	frac := o.dayProgressFraction()
	return frac.Num*threshold.Den >= threshold.Num*frac.Den
}

// Agent satisfies rtgs.Ledger and lsm.Ledger.
func (o *Orchestrator) Agent(id domain.AgentID) *domain.Agent { return o.agents[id] }
