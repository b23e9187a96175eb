// Package queue orders the per-agent Q1 queues and the single central Q2
// retry queue (spec.md §4.5). Ordering is a pure function recomputed on
// demand from transaction and escalation state — nothing here mutates a
// Transaction's stored Priority field.
package queue

import (
	"sort"

	"kyd/internal/domain"
)

// Q1Order returns the resident transaction ids of agent's Q1, ordered for
// submission attempts this tick. For QueueFIFO this is arrival order
// (agent.Q1 is already maintained in that order); for
// QueuePriorityDeadline, transactions are ordered by escalated priority
// descending, then nearer deadline first, then earlier arrival_tick, then
// lexicographic tx_id.
func Q1Order(ordering domain.QueueOrdering, agent *domain.Agent, txs map[domain.TxID]*domain.Transaction, escalation domain.PriorityEscalation, currentTick int) []domain.TxID {
	ids := make([]domain.TxID, len(agent.Q1))
	copy(ids, agent.Q1)

	if ordering == domain.QueueFIFO {
		return ids
	}

	sort.SliceStable(ids, func(i, j int) bool {
		a, b := txs[ids[i]], txs[ids[j]]
		return q1Less(a, b, escalation, currentTick)
	})
	return ids
}

// Q2Order returns the given Q2-resident transaction ids in release-priority
// order: escalated priority descending, ties broken by earlier
// arrival_tick, then lexicographic tx_id (spec.md §4.5).
func Q2Order(ids []domain.TxID, txs map[domain.TxID]*domain.Transaction, escalation domain.PriorityEscalation, currentTick int) []domain.TxID {
	out := make([]domain.TxID, len(ids))
	copy(out, ids)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := txs[out[i]], txs[out[j]]
		return priorityArrivalIDLess(a, b, escalation, currentTick)
	})
	return out
}

// q1Less is the priority_deadline Q1 ordering: escalated priority
// descending, then nearer deadline, then earlier arrival, then tx_id.
func q1Less(a, b *domain.Transaction, escalation domain.PriorityEscalation, currentTick int) bool {
	pa := escalation.EffectivePriority(a.Priority, currentTick-a.ArrivalTick)
	pb := escalation.EffectivePriority(b.Priority, currentTick-b.ArrivalTick)
	if pa != pb {
		return pa > pb // higher priority first
	}
	if a.DeadlineTick != b.DeadlineTick {
		return a.DeadlineTick < b.DeadlineTick // nearer deadline first
	}
	if a.ArrivalTick != b.ArrivalTick {
		return a.ArrivalTick < b.ArrivalTick // earlier arrival first
	}
	return a.ID < b.ID // lexicographic tie-break
}

// priorityArrivalIDLess is the Q2 release ordering of spec.md §4.5:
// escalated priority descending, then earlier arrival, then tx_id. Unlike
// Q1's priority_deadline mode, deadline does not participate.
func priorityArrivalIDLess(a, b *domain.Transaction, escalation domain.PriorityEscalation, currentTick int) bool {
	pa := escalation.EffectivePriority(a.Priority, currentTick-a.ArrivalTick)
	pb := escalation.EffectivePriority(b.Priority, currentTick-b.ArrivalTick)
	if pa != pb {
		return pa > pb
	}
	if a.ArrivalTick != b.ArrivalTick {
		return a.ArrivalTick < b.ArrivalTick
	}
	return a.ID < b.ID
}
