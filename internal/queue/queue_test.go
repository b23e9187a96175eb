package queue

import (
	"testing"

	"kyd/internal/domain"
	"github.com/stretchr/testify/assert"
)

func tx(id domain.TxID, priority, arrival, deadline int) *domain.Transaction {
	return &domain.Transaction{ID: id, Priority: priority, ArrivalTick: arrival, DeadlineTick: deadline}
}

func TestQ1FIFOPreservesArrivalOrder(t *testing.T) {
	agent := &domain.Agent{Q1: []domain.TxID{"z", "a", "m"}}
	order := Q1Order(domain.QueueFIFO, agent, nil, domain.PriorityEscalation{}, 0)
	assert.Equal(t, []domain.TxID{"z", "a", "m"}, order)
}

func TestQ1PriorityDeadlineOrdersByPriorityThenDeadline(t *testing.T) {
	txs := map[domain.TxID]*domain.Transaction{
		"low":  tx("low", 2, 0, 100),
		"high": tx("high", 9, 0, 100),
		"mid":  tx("mid", 5, 0, 50),
	}
	agent := &domain.Agent{Q1: []domain.TxID{"low", "high", "mid"}}
	order := Q1Order(domain.QueuePriorityDeadline, agent, txs, domain.PriorityEscalation{}, 0)
	assert.Equal(t, []domain.TxID{"high", "mid", "low"}, order)
}

func TestQ1PriorityDeadlineTieBreaksOnDeadline(t *testing.T) {
	txs := map[domain.TxID]*domain.Transaction{
		"near": tx("near", 5, 0, 10),
		"far":  tx("far", 5, 0, 20),
	}
	agent := &domain.Agent{Q1: []domain.TxID{"far", "near"}}
	order := Q1Order(domain.QueuePriorityDeadline, agent, txs, domain.PriorityEscalation{}, 0)
	assert.Equal(t, []domain.TxID{"near", "far"}, order)
}

func TestQ2OrderDoesNotUseDeadline(t *testing.T) {
	// Same priority, different deadlines, different arrival ticks: Q2
	// ordering must key off arrival_tick, not deadline.
	txs := map[domain.TxID]*domain.Transaction{
		"a": tx("a", 5, 2, 1),    // later arrival, near deadline
		"b": tx("b", 5, 1, 1000), // earlier arrival, far deadline
	}
	order := Q2Order([]domain.TxID{"a", "b"}, txs, domain.PriorityEscalation{}, 0)
	assert.Equal(t, []domain.TxID{"b", "a"}, order)
}

func TestQ2OrderTieBreaksLexicographically(t *testing.T) {
	txs := map[domain.TxID]*domain.Transaction{
		"zzz": tx("zzz", 5, 0, 0),
		"aaa": tx("aaa", 5, 0, 0),
	}
	order := Q2Order([]domain.TxID{"zzz", "aaa"}, txs, domain.PriorityEscalation{}, 0)
	assert.Equal(t, []domain.TxID{"aaa", "zzz"}, order)
}

func TestEscalationAffectsQ2Order(t *testing.T) {
	txs := map[domain.TxID]*domain.Transaction{
		"waited": tx("waited", 3, 0, 0),  // waited 10 ticks, escalation applies
		"fresh":  tx("fresh", 4, 10, 0),  // just arrived, no escalation
	}
	esc := domain.PriorityEscalation{Curve: domain.EscalationLinear, MaxBoost: 5}
	order := Q2Order([]domain.TxID{"fresh", "waited"}, txs, esc, 10)
	// waited: 3 + 10 (capped at MaxBoost 5) = 8 > fresh's 4
	assert.Equal(t, []domain.TxID{"waited", "fresh"}, order)
}
