package rtgs

import (
	"testing"

	"kyd/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptSettlesWhenLiquid(t *testing.T) {
	sender := domain.NewAgent("A", 1000, 0, domain.Fraction{Num: 0, Den: 1})
	receiver := domain.NewAgent("B", 0, 0, domain.Fraction{Num: 0, Den: 1})
	tx := &domain.Transaction{ID: "t1", SenderID: "A", ReceiverID: "B", RemainingAmount: 500}

	res := Attempt(tx, sender, receiver, false)
	require.True(t, res.Settled)
	assert.Equal(t, domain.Money(1000), res.SenderBalanceBefore)
	assert.Equal(t, domain.Money(500), res.SenderBalanceAfter)
	assert.Equal(t, domain.Money(500), sender.Balance)
	assert.Equal(t, domain.Money(500), receiver.Balance)
}

func TestAttemptFailsOnInsufficientLiquidity(t *testing.T) {
	sender := domain.NewAgent("A", 100, 0, domain.Fraction{Num: 0, Den: 1})
	receiver := domain.NewAgent("B", 0, 0, domain.Fraction{Num: 0, Den: 1})
	tx := &domain.Transaction{ID: "t1", SenderID: "A", ReceiverID: "B", RemainingAmount: 500}

	res := Attempt(tx, sender, receiver, false)
	require.False(t, res.Settled)
	assert.Equal(t, domain.Money(100), sender.Balance) // unchanged
}

func TestAttemptFailsOnBilateralLimit(t *testing.T) {
	sender := domain.NewAgent("A", 10000, 0, domain.Fraction{Num: 0, Den: 1})
	sender.BilateralLimits["B"] = 100
	receiver := domain.NewAgent("B", 0, 0, domain.Fraction{Num: 0, Den: 1})
	tx := &domain.Transaction{ID: "t1", SenderID: "A", ReceiverID: "B", RemainingAmount: 500}

	res := Attempt(tx, sender, receiver, false)
	require.False(t, res.Settled)
	assert.Equal(t, domain.Money(10000), sender.Balance)
}

func TestAttemptDeferredCredit(t *testing.T) {
	sender := domain.NewAgent("A", 1000, 0, domain.Fraction{Num: 0, Den: 1})
	receiver := domain.NewAgent("B", 0, 0, domain.Fraction{Num: 0, Den: 1})
	tx := &domain.Transaction{ID: "t1", SenderID: "A", ReceiverID: "B", RemainingAmount: 500}

	res := Attempt(tx, sender, receiver, true)
	require.True(t, res.Settled)
	assert.Equal(t, domain.Money(0), receiver.Balance)
	assert.Equal(t, domain.Money(500), receiver.DeferredCreditAccumulator)
}

func TestCreditUsedNeverExceedsCap(t *testing.T) {
	sender := domain.NewAgent("A", 0, 200, domain.Fraction{Num: 0, Den: 1})
	receiver := domain.NewAgent("B", 0, 0, domain.Fraction{Num: 0, Den: 1})
	tx := &domain.Transaction{ID: "t1", SenderID: "A", ReceiverID: "B", RemainingAmount: 300}

	res := Attempt(tx, sender, receiver, false)
	require.False(t, res.Settled)
	assert.LessOrEqual(t, int64(sender.CreditUsed()), int64(sender.CreditCap()))
}

type fakeLedger struct{ agents map[domain.AgentID]*domain.Agent }

func (f fakeLedger) Agent(id domain.AgentID) *domain.Agent { return f.agents[id] }

func TestReleaseLoopStopsAtFirstFailure(t *testing.T) {
	a := domain.NewAgent("A", 600, 0, domain.Fraction{Num: 0, Den: 1})
	b := domain.NewAgent("B", 0, 0, domain.Fraction{Num: 0, Den: 1})
	ledger := fakeLedger{agents: map[domain.AgentID]*domain.Agent{"A": a, "B": b}}

	txs := map[domain.TxID]*domain.Transaction{
		"t1": {ID: "t1", SenderID: "A", ReceiverID: "B", RemainingAmount: 300},
		"t2": {ID: "t2", SenderID: "A", ReceiverID: "B", RemainingAmount: 300},
		"t3": {ID: "t3", SenderID: "A", ReceiverID: "B", RemainingAmount: 300},
	}
	order := []domain.TxID{"t1", "t2", "t3"}

	settled, results := ReleaseLoop(order, txs, ledger, false, 0)
	assert.Equal(t, []domain.TxID{"t1", "t2"}, settled)
	assert.False(t, results["t3"].Settled)
}

func TestReleaseLoopRespectsMaxAttempts(t *testing.T) {
	a := domain.NewAgent("A", 10000, 0, domain.Fraction{Num: 0, Den: 1})
	b := domain.NewAgent("B", 0, 0, domain.Fraction{Num: 0, Den: 1})
	ledger := fakeLedger{agents: map[domain.AgentID]*domain.Agent{"A": a, "B": b}}

	txs := map[domain.TxID]*domain.Transaction{
		"t1": {ID: "t1", SenderID: "A", ReceiverID: "B", RemainingAmount: 100},
		"t2": {ID: "t2", SenderID: "A", ReceiverID: "B", RemainingAmount: 100},
	}
	order := []domain.TxID{"t1", "t2"}

	settled, _ := ReleaseLoop(order, txs, ledger, false, 1)
	assert.Equal(t, []domain.TxID{"t1"}, settled)
}
