// Package cost implements the five-category per-tick cost accruer of
// spec.md §4.9. Grounded on the teacher's internal/analytics/engine.go
// aggregation pattern: accumulate into typed counters, emit one aggregate
// per period.
package cost

import (
	"kyd/internal/domain"
)

// QueueResident is the minimal view of a Q1/Q2-resident transaction the
// delay-cost sum needs.
type QueueResident struct {
	RemainingAmount domain.Money
	Overdue         bool
}

// AccrueLiquidity computes overdraft_bps_per_tick * credit_used / 10_000,
// truncated to cents.
func AccrueLiquidity(creditUsed domain.Money, overdraftBpsPerTick int64) domain.Money {
	return domain.ApplyBps(overdraftBpsPerTick, creditUsed)
}

// AccrueDelay sums delay_cost_per_tick_per_cent * remaining_amount over
// every Q1+Q2 resident, applying overdue_delay_multiplier to overdue ones.
func AccrueDelay(residents []QueueResident, delayCostPerTickPerCent, overdueDelayMultiplier int64) domain.Money {
	var total int64
	for _, r := range residents {
		line := int64(r.RemainingAmount) * delayCostPerTickPerCent
		if r.Overdue {
			line *= overdueDelayMultiplier
		}
		total += line
	}
	return domain.Money(total)
}

// AccrueCollateral computes collateral_cost_per_tick_bps * posted_collateral
// / 10_000, truncated to cents.
func AccrueCollateral(postedCollateral domain.Money, collateralCostPerTickBps int64) domain.Money {
	return domain.ApplyBps(collateralCostPerTickBps, postedCollateral)
}

// Tick computes the per-tick CostCounters for one agent, given its
// currently-resident Q1+Q2 transactions, the deadline penalties newly
// incurred this tick (one per transaction at its first overdue tick), and
// the split friction newly incurred this tick (one per child produced by a
// Split action this tick). deadlineHits and splitChildren are counts, not
// amounts: the per-unit rates are applied here.
func Tick(creditUsed, postedCollateral domain.Money, residents []QueueResident, deadlineHits, splitChildren int, rates domain.CostRates) domain.CostCounters {
	return domain.CostCounters{
		Liquidity:       AccrueLiquidity(creditUsed, rates.OverdraftBpsPerTick),
		Delay:           AccrueDelay(residents, rates.DelayCostPerTickPerCent, rates.OverdueDelayMultiplier),
		Collateral:      AccrueCollateral(postedCollateral, rates.CollateralCostPerTickBps),
		DeadlinePenalty: rates.DeadlinePenalty * domain.Money(deadlineHits),
		SplitFriction:   rates.SplitFrictionPerChild * domain.Money(splitChildren),
	}
}
