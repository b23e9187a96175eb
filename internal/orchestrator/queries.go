package orchestrator

import "kyd/internal/domain"

// AgentState returns a read-only snapshot of agent id's current state
// (spec.md §6's control surface), nil if id is unknown.
func (o *Orchestrator) AgentState(id domain.AgentID) *domain.Agent {
	agent, ok := o.agents[id]
	if !ok {
		return nil
	}
	snapshot := *agent
	snapshot.Q1 = append([]domain.TxID(nil), agent.Q1...)
	snapshot.Q2Membership = make(map[domain.TxID]bool, len(agent.Q2Membership))
	for k, v := range agent.Q2Membership {
		snapshot.Q2Membership[k] = v
	}
	snapshot.BilateralLimits = make(map[domain.AgentID]domain.Money, len(agent.BilateralLimits))
	for k, v := range agent.BilateralLimits {
		snapshot.BilateralLimits[k] = v
	}
	snapshot.StateRegisters = make(domain.StateRegisters, len(agent.StateRegisters))
	for k, v := range agent.StateRegisters {
		snapshot.StateRegisters[k] = v
	}
	return &snapshot
}

// Queue1Contents returns agent id's Q1 in the same order the orchestrator
// maintains it (arrival order; policy_tree submission attempts reorder it
// only transiently via queue.Q1Order).
func (o *Orchestrator) Queue1Contents(id domain.AgentID) []domain.TxID {
	agent, ok := o.agents[id]
	if !ok {
		return nil
	}
	return append([]domain.TxID(nil), agent.Q1...)
}

// Queue2Contents returns the current central Q2 membership, in insertion
// order (not release-priority order; callers wanting that call
// queue.Q2Order themselves).
func (o *Orchestrator) Queue2Contents() []domain.TxID {
	return append([]domain.TxID(nil), o.q2...)
}

// AccumulatedCosts returns agent id's lifetime cost counters.
func (o *Orchestrator) AccumulatedCosts(id domain.AgentID) domain.CostCounters {
	agent, ok := o.agents[id]
	if !ok {
		return domain.CostCounters{}
	}
	return agent.AccumulatedCosts
}

// Transaction returns a read-only snapshot of transaction id's current
// record, nil if id is unknown.
func (o *Orchestrator) Transaction(id domain.TxID) *domain.Transaction {
	tx, ok := o.txs[id]
	if !ok {
		return nil
	}
	snapshot := *tx
	return &snapshot
}
