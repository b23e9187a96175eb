package arrival

import (
	"testing"

	"kyd/internal/domain"
	"kyd/internal/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counter() IDGen {
	n := 0
	return func() domain.TxID {
		n++
		return domain.TxID("tx")
	}
}

func twoAgentConfig() []domain.AgentConfig {
	fixedPriority := 5
	return []domain.AgentConfig{
		{
			ID: "A",
			ArrivalConfig: &domain.ArrivalConfig{
				RatePerTick:       3,
				Amount:            domain.ArrivalDistribution{Kind: domain.DistUniform, Min: 100, Max: 200},
				FixedPriority:     &fixedPriority,
				DeadlineOffsetMin: 5,
				DeadlineOffsetMax: 5,
			},
		},
		{ID: "B"},
	}
}

func TestGenerateDeterministic(t *testing.T) {
	agents := twoAgentConfig()
	s1 := rng.Seed(99)
	s2 := rng.Seed(99)
	txs1, _ := Generate(10, 100, agents, s1, counter())
	txs2, _ := Generate(10, 100, agents, s2, counter())
	require.Equal(t, len(txs1), len(txs2))
	for i := range txs1 {
		assert.Equal(t, txs1[i].Amount, txs2[i].Amount)
		assert.Equal(t, txs1[i].Priority, txs2[i].Priority)
		assert.Equal(t, txs1[i].ReceiverID, txs2[i].ReceiverID)
		assert.Equal(t, txs1[i].DeadlineTick, txs2[i].DeadlineTick)
	}
}

func TestGenerateExcludesSelf(t *testing.T) {
	agents := twoAgentConfig()
	s := rng.Seed(5)
	txs, _ := Generate(0, 100, agents, s, counter())
	for _, tx := range txs {
		assert.NotEqual(t, tx.SenderID, tx.ReceiverID)
	}
}

func TestGenerateMinimumOneCent(t *testing.T) {
	agents := []domain.AgentConfig{
		{ID: "A", ArrivalConfig: &domain.ArrivalConfig{
			RatePerTick: 5,
			Amount:      domain.ArrivalDistribution{Kind: domain.DistUniform, Min: -10, Max: 0},
		}},
		{ID: "B"},
	}
	s := rng.Seed(3)
	txs, _ := Generate(0, 100, agents, s, counter())
	for _, tx := range txs {
		assert.GreaterOrEqual(t, int64(tx.Amount), int64(1))
	}
}

func TestDeadlineCapAtEOD(t *testing.T) {
	cfg := domain.ArrivalConfig{DeadlineOffsetMin: 50, DeadlineOffsetMax: 50, DeadlineCapAtEOD: true}
	deadline, _ := drawDeadline(95, 100, cfg, rng.Seed(1))
	assert.Equal(t, 99, deadline) // capped at (0+1)*100-1 = 99, not 145
}

func TestDeadlineNoCapWithoutFlag(t *testing.T) {
	cfg := domain.ArrivalConfig{DeadlineOffsetMin: 50, DeadlineOffsetMax: 50, DeadlineCapAtEOD: false}
	deadline, _ := drawDeadline(95, 100, cfg, rng.Seed(1))
	assert.Equal(t, 145, deadline)
}

func TestBandedArrivalGeneratesAcrossBands(t *testing.T) {
	agents := []domain.AgentConfig{
		{
			ID: "A",
			ArrivalBands: &domain.ArrivalBands{
				Urgent: &domain.ArrivalConfig{RatePerTick: 2, Amount: domain.ArrivalDistribution{Kind: domain.DistUniform, Min: 100, Max: 100}},
				Normal: &domain.ArrivalConfig{RatePerTick: 2, Amount: domain.ArrivalDistribution{Kind: domain.DistUniform, Min: 200, Max: 200}},
			},
		},
		{ID: "B"},
	}
	s := rng.Seed(42)
	txs, _ := Generate(0, 100, agents, s, counter())
	assert.NotEmpty(t, txs)
}

func TestNoEligibleCounterpartyYieldsNoArrivals(t *testing.T) {
	agents := []domain.AgentConfig{
		{ID: "A", ArrivalConfig: &domain.ArrivalConfig{RatePerTick: 5, Amount: domain.ArrivalDistribution{Kind: domain.DistUniform, Min: 1, Max: 1}}},
	}
	s := rng.Seed(1)
	txs, _ := Generate(0, 100, agents, s, counter())
	assert.Empty(t, txs)
}
