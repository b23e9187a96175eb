package cost

import (
	"testing"

	"kyd/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestAccrueLiquidity(t *testing.T) {
	assert.Equal(t, domain.Money(5), AccrueLiquidity(10000, 5)) // 5bps of 10000 = 5
}

func TestAccrueDelayAppliesOverdueMultiplier(t *testing.T) {
	residents := []QueueResident{
		{RemainingAmount: 1000, Overdue: false},
		{RemainingAmount: 1000, Overdue: true},
	}
	got := AccrueDelay(residents, 1, 3)
	assert.Equal(t, domain.Money(1000+3000), got)
}

func TestAccrueCollateral(t *testing.T) {
	assert.Equal(t, domain.Money(10), AccrueCollateral(20000, 5))
}

func TestTickAggregatesAllFiveCategories(t *testing.T) {
	rates := domain.CostRates{
		OverdraftBpsPerTick:      10,
		DelayCostPerTickPerCent:  1,
		OverdueDelayMultiplier:   2,
		CollateralCostPerTickBps: 5,
		DeadlinePenalty:          500,
		SplitFrictionPerChild:    50,
	}
	residents := []QueueResident{{RemainingAmount: 100, Overdue: true}}
	got := Tick(5000, 2000, residents, 1, 3, rates)
	assert.Equal(t, domain.Money(5), got.Liquidity)  // 10bps of 5000
	assert.Equal(t, domain.Money(200), got.Delay)     // 100*1*2
	assert.Equal(t, domain.Money(1), got.Collateral)  // 5bps of 2000
	assert.Equal(t, domain.Money(500), got.DeadlinePenalty)
	assert.Equal(t, domain.Money(150), got.SplitFriction)
	assert.Equal(t, domain.Money(856), got.Total())
}

func TestTickZeroWhenNothingAccrues(t *testing.T) {
	got := Tick(0, 0, nil, 0, 0, domain.CostRates{})
	assert.Equal(t, domain.Money(0), got.Total())
}
