package collateral

import (
	"testing"

	"kyd/internal/domain"
	"github.com/stretchr/testify/assert"
)

func agentWithHaircut(haircutNum, haircutDen int64) *domain.Agent {
	return domain.NewAgent("A", 0, 0, domain.Fraction{Num: haircutNum, Den: haircutDen})
}

func TestPostIncreasesHeadroomByHaircutAdjustedAmount(t *testing.T) {
	agent := agentWithHaircut(20, 100) // 20% haircut
	res := Post(agent, 1000, 5)
	assert.Equal(t, domain.Money(800), res.HeadroomDelta) // floor(1000*0.8)
	assert.Equal(t, domain.Money(1000), agent.PostedCollateral)
	assert.Equal(t, 5, agent.CollateralPostedAtTick)
	assert.True(t, agent.HasPostedCollateral)
}

func TestWithdrawRefusedBeforeHoldingPeriod(t *testing.T) {
	agent := agentWithHaircut(0, 1)
	Post(agent, 1000, 10)
	res := Withdraw(agent, 500, 12, 5) // only 2 ticks elapsed, need 5
	assert.False(t, res.Applied)
	assert.Equal(t, domain.Money(1000), agent.PostedCollateral)
}

func TestWithdrawAppliedAfterHoldingPeriod(t *testing.T) {
	agent := agentWithHaircut(0, 1)
	Post(agent, 1000, 10)
	res := Withdraw(agent, 500, 15, 5) // exactly 5 ticks elapsed
	assert.True(t, res.Applied)
	assert.Equal(t, domain.Money(500), agent.PostedCollateral)
	assert.Equal(t, domain.Money(-500), res.HeadroomDelta)
}

func TestWithdrawCapsAtPostedAmount(t *testing.T) {
	agent := agentWithHaircut(0, 1)
	Post(agent, 100, 0)
	res := Withdraw(agent, 500, 10, 0)
	assert.True(t, res.Applied)
	assert.Equal(t, domain.Money(0), agent.PostedCollateral)
}

func TestForceAdjustBypassesHoldingPeriod(t *testing.T) {
	agent := agentWithHaircut(0, 1)
	Post(agent, 1000, 10)
	delta := ForceAdjust(agent, -1000, 11) // immediately, no holding period
	assert.Equal(t, domain.Money(0), agent.PostedCollateral)
	assert.Equal(t, domain.Money(-1000), delta)
}

func TestForceAdjustNeverGoesNegative(t *testing.T) {
	agent := agentWithHaircut(0, 1)
	ForceAdjust(agent, -500, 0)
	assert.Equal(t, domain.Money(0), agent.PostedCollateral)
}

func TestPostingEligibleGate(t *testing.T) {
	threshold := domain.Fraction{Num: 1, Den: 2} // 50%
	assert.True(t, PostingEligible(600, 1000, threshold))  // 0.6 > 0.5
	assert.False(t, PostingEligible(400, 1000, threshold)) // 0.4 < 0.5
	assert.False(t, PostingEligible(600, 0, threshold))    // no pending outflows
}

func TestWithdrawalEligibleGate(t *testing.T) {
	threshold := domain.Fraction{Num: 1, Den: 4} // 25%
	assert.True(t, WithdrawalEligible(300, 1000, threshold))
	assert.False(t, WithdrawalEligible(200, 1000, threshold))
}

func TestCanWithdrawNow(t *testing.T) {
	agent := agentWithHaircut(0, 1)
	assert.False(t, CanWithdrawNow(agent, 10, 5)) // never posted
	Post(agent, 100, 10)
	assert.False(t, CanWithdrawNow(agent, 12, 5))
	assert.True(t, CanWithdrawNow(agent, 15, 5))
}
