package lsm

import (
	"testing"

	"kyd/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLedger struct{ agents map[domain.AgentID]*domain.Agent }

func (l testLedger) Agent(id domain.AgentID) *domain.Agent { return l.agents[id] }

func newTestAgent(id domain.AgentID, balance domain.Money) *domain.Agent {
	return domain.NewAgent(id, balance, 0, domain.Fraction{Num: 0, Den: 1})
}

func TestBilateralOffsetSettlesOpposingPair(t *testing.T) {
	a, b := newTestAgent("A", 0), newTestAgent("B", 0)
	ledger := testLedger{agents: map[domain.AgentID]*domain.Agent{"A": a, "B": b}}

	txAB := &domain.Transaction{ID: "ab1", SenderID: "A", ReceiverID: "B", RemainingAmount: 500, Priority: 5}
	txBA := &domain.Transaction{ID: "ba1", SenderID: "B", ReceiverID: "A", RemainingAmount: 300, Priority: 5}
	txs := map[domain.TxID]*domain.Transaction{"ab1": txAB, "ba1": txBA}

	results := BilateralOffset([]domain.TxID{"ab1", "ba1"}, txs, ledger, "phase")
	require.Len(t, results, 1)
	assert.Equal(t, domain.Money(300), results[0].NetSettled)
	assert.Equal(t, domain.Money(200), txAB.RemainingAmount) // residual stays in Q2
	assert.Equal(t, domain.Money(0), txBA.RemainingAmount)
	assert.Equal(t, domain.TransactionSettled, txBA.Status)
	// Net balance effect on both agents is zero.
	assert.Equal(t, domain.Money(0), a.Balance)
	assert.Equal(t, domain.Money(0), b.Balance)
}

func TestBilateralOffsetNoOpposingPair(t *testing.T) {
	a, b := newTestAgent("A", 0), newTestAgent("B", 0)
	ledger := testLedger{agents: map[domain.AgentID]*domain.Agent{"A": a, "B": b}}
	txAB := &domain.Transaction{ID: "ab1", SenderID: "A", ReceiverID: "B", RemainingAmount: 500}
	txs := map[domain.TxID]*domain.Transaction{"ab1": txAB}

	results := BilateralOffset([]domain.TxID{"ab1"}, txs, ledger, "phase")
	assert.Empty(t, results)
	assert.Equal(t, domain.Money(500), txAB.RemainingAmount)
}

func threeAgentCycleFixture() (testLedger, map[domain.TxID]*domain.Transaction, []domain.TxID) {
	a := newTestAgent("A", 1000)
	b := newTestAgent("B", 1000)
	c := newTestAgent("C", 1000)
	ledger := testLedger{agents: map[domain.AgentID]*domain.Agent{"A": a, "B": b, "C": c}}

	txAB := &domain.Transaction{ID: "ab", SenderID: "A", ReceiverID: "B", RemainingAmount: 400, ArrivalTick: 1}
	txBC := &domain.Transaction{ID: "bc", SenderID: "B", ReceiverID: "C", RemainingAmount: 600, ArrivalTick: 2}
	txCA := &domain.Transaction{ID: "ca", SenderID: "C", ReceiverID: "A", RemainingAmount: 300, ArrivalTick: 3}
	txs := map[domain.TxID]*domain.Transaction{"ab": txAB, "bc": txBC, "ca": txCA}
	ids := []domain.TxID{"ab", "bc", "ca"}
	return ledger, txs, ids
}

func TestMultilateralCycleSettlesCycleMin(t *testing.T) {
	ledger, txs, ids := threeAgentCycleFixture()
	cycles := MultilateralCycles(ids, txs, ledger, 5, 3)
	require.Len(t, cycles, 1)
	assert.Equal(t, domain.Money(300), cycles[0].CycleMin) // min(400,600,300)

	// cycle_min consumed from every edge; residuals remain
	assert.Equal(t, domain.Money(100), txs["ab"].RemainingAmount)
	assert.Equal(t, domain.Money(300), txs["bc"].RemainingAmount)
	assert.Equal(t, domain.Money(0), txs["ca"].RemainingAmount)
	assert.Equal(t, domain.TransactionSettled, txs["ca"].Status)

	// Net balance change is zero for every participant (a pure cycle).
	assert.Equal(t, domain.Money(1000), ledger.Agent("A").Balance)
	assert.Equal(t, domain.Money(1000), ledger.Agent("B").Balance)
	assert.Equal(t, domain.Money(1000), ledger.Agent("C").Balance)
}

func TestMultilateralCycleBoundedByMaxCycles(t *testing.T) {
	ledger, txs, ids := threeAgentCycleFixture()
	cycles := MultilateralCycles(ids, txs, ledger, 5, 0)
	assert.Empty(t, cycles)
	assert.Equal(t, domain.Money(400), txs["ab"].RemainingAmount) // untouched
}

func TestMultilateralCycleNoCycleWhenNoneExists(t *testing.T) {
	a, b := newTestAgent("A", 1000), newTestAgent("B", 1000)
	ledger := testLedger{agents: map[domain.AgentID]*domain.Agent{"A": a, "B": b}}
	txAB := &domain.Transaction{ID: "ab", SenderID: "A", ReceiverID: "B", RemainingAmount: 400}
	txs := map[domain.TxID]*domain.Transaction{"ab": txAB}

	cycles := MultilateralCycles([]domain.TxID{"ab"}, txs, ledger, 5, 3)
	assert.Empty(t, cycles)
}
