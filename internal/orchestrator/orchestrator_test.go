package orchestrator

import (
	"testing"

	"kyd/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alwaysRelease() *domain.Tree {
	return &domain.Tree{
		Kind: domain.TreePayment,
		Root: &domain.Node{IsAction: true, Action: &domain.Action{Kind: domain.ActionRelease}},
	}
}

func twoAgentScenario() domain.Scenario {
	return domain.Scenario{
		TicksPerDay: 10,
		NumDays:     1,
		RNGSeed:     42,
		Agents: []domain.AgentConfig{
			{ID: "A", OpeningBalance: 10_000, CreditLimit: 0, Policy: domain.Policy{PaymentTree: alwaysRelease()}},
			{ID: "B", OpeningBalance: 0, CreditLimit: 0, Policy: domain.Policy{PaymentTree: alwaysRelease()}},
		},
		Global: domain.GlobalSettings{
			Queue1Ordering:    domain.QueueFIFO,
			MaxQ2ReleaseIterationsPerTick: 100,
		},
	}
}

func TestInjectTransactionSettlesImmediatelyWhenLiquid(t *testing.T) {
	o, err := New(twoAgentScenario())
	require.NoError(t, err)
	o.InjectTransaction(domain.CustomArrival{ID: "tx-1", SenderID: "A", ReceiverID: "B", Amount: 500, DeadlineTick: 5})

	events := o.Tick()

	var settled bool
	for _, e := range events {
		if e.Kind() == domain.EventRtgsImmediateSettle {
			settled = true
		}
	}
	assert.True(t, settled)

	tx := o.Transaction("tx-1")
	require.NotNil(t, tx)
	assert.Equal(t, domain.TransactionSettled, tx.Status)
	assert.Equal(t, domain.Money(9_500), o.AgentState("A").Balance)
	assert.Equal(t, domain.Money(500), o.AgentState("B").Balance)
}

func TestInsufficientLiquidityQueuesInQ2(t *testing.T) {
	o, err := New(twoAgentScenario())
	require.NoError(t, err)
	o.InjectTransaction(domain.CustomArrival{ID: "tx-1", SenderID: "B", ReceiverID: "A", Amount: 500, DeadlineTick: 5})

	o.Tick()

	tx := o.Transaction("tx-1")
	require.NotNil(t, tx)
	assert.Equal(t, domain.TransactionInQ2, tx.Status)
	assert.Contains(t, o.Queue2Contents(), domain.TxID("tx-1"))
}

func TestQ2ReleaseCascadeSettlesOnceLiquidityArrives(t *testing.T) {
	o, err := New(twoAgentScenario())
	require.NoError(t, err)
	o.InjectTransaction(domain.CustomArrival{ID: "tx-1", SenderID: "B", ReceiverID: "A", Amount: 500, DeadlineTick: 20})
	o.Tick() // queues into Q2, insufficient liquidity

	o.InjectTransaction(domain.CustomArrival{ID: "tx-2", SenderID: "A", ReceiverID: "B", Amount: 1_000, DeadlineTick: 20})
	o.Tick() // tx-2 settles, crediting B, which should cascade-release tx-1

	tx1 := o.Transaction("tx-1")
	require.NotNil(t, tx1)
	assert.Equal(t, domain.TransactionSettled, tx1.Status)
	assert.NotContains(t, o.Queue2Contents(), domain.TxID("tx-1"))
}

func TestOverdueScanMarksPastDeadlineUnsettledTransactions(t *testing.T) {
	o, err := New(twoAgentScenario())
	require.NoError(t, err)
	o.InjectTransaction(domain.CustomArrival{ID: "tx-1", SenderID: "B", ReceiverID: "A", Amount: 500, DeadlineTick: 0})
	o.Tick() // arrival tick 0, deadline 0: not yet overdue
	o.Tick() // tick 1 > deadline 0: overdue

	tx := o.Transaction("tx-1")
	require.NotNil(t, tx)
	assert.Equal(t, domain.TransactionOverdue, tx.Status)
}

func TestEndOfDayResetsBilateralLimits(t *testing.T) {
	scenario := twoAgentScenario()
	scenario.Agents[0].BilateralLimits = map[domain.AgentID]domain.Money{"B": 1_000}
	o, err := New(scenario)
	require.NoError(t, err)

	o.InjectTransaction(domain.CustomArrival{ID: "tx-1", SenderID: "A", ReceiverID: "B", Amount: 800, DeadlineTick: 20})
	for i := 0; i < 10; i++ {
		o.Tick()
	}

	assert.Equal(t, domain.Money(1_000), o.AgentState("A").BilateralLimits["B"])
}

func TestDeterministicReplaySameSeedSameEvents(t *testing.T) {
	run := func() []domain.EventKind {
		scenario := twoAgentScenario()
		scenario.Agents[0].ArrivalConfig = &domain.ArrivalConfig{
			RatePerTick: 2.0,
			Amount:      domain.ArrivalDistribution{Kind: domain.DistUniform, Min: 10, Max: 100},
			Counterparties: []domain.CounterpartyWeight{{AgentID: "B", Weight: 1}},
			DeadlineOffsetMin: 2, DeadlineOffsetMax: 5,
		}
		o, err := New(scenario)
		require.NoError(t, err)
		var kinds []domain.EventKind
		for i := 0; i < 5; i++ {
			for _, e := range o.Tick() {
				kinds = append(kinds, e.Kind())
			}
		}
		return kinds
	}
	assert.Equal(t, run(), run())
}

func TestCostAccrualEmittedWhenCreditUsed(t *testing.T) {
	scenario := twoAgentScenario()
	scenario.Agents[1].CreditLimit = 10_000
	scenario.Global.Cost = domain.CostRates{OverdraftBpsPerTick: 50}
	o, err := New(scenario)
	require.NoError(t, err)
	o.InjectTransaction(domain.CustomArrival{ID: "tx-1", SenderID: "B", ReceiverID: "A", Amount: 1_000, DeadlineTick: 20})

	events := o.Tick()

	var found bool
	for _, e := range events {
		if e.Kind() == domain.EventCostAccrual {
			found = true
		}
	}
	assert.True(t, found)
	assert.True(t, o.AccumulatedCosts("B").Liquidity > 0)
}
