// Package collateral implements the post/withdraw gating of spec.md §4.8:
// hysteresis thresholds for policy-driven actions, a minimum holding period
// before any withdrawal, and unconditional application for scenario-event
// collateral adjustments. Grounded on the teacher's
// internal/treasury/manager.go LiquidityPool (Total/Available/Committed/
// Reserved), repurposed here as a single per-agent collateral scalar with
// a haircut rather than a pooled multi-reservation ledger.
package collateral

import (
	"kyd/internal/domain"
)

// PostResult reports the capacity change from a successful Post.
type PostResult struct {
	HeadroomDelta domain.Money
}

// Post raises agent.PostedCollateral by amount, anchors the holding-period
// clock at currentTick, and returns the resulting increase in available
// liquidity (spec.md §4.8). Callers enforce the posting hysteresis gate
// themselves via PostingEligible before calling Post for policy-driven
// actions; scenario-event adjustments call Post directly, unconditionally.
func Post(agent *domain.Agent, amount domain.Money, currentTick int) PostResult {
	before := agent.CollateralCapacity()
	agent.PostedCollateral += amount
	agent.CollateralPostedAtTick = currentTick
	agent.HasPostedCollateral = true
	after := agent.CollateralCapacity()
	return PostResult{HeadroomDelta: after - before}
}

// WithdrawResult reports whether a withdrawal was actually applied.
type WithdrawResult struct {
	Applied       bool
	HeadroomDelta domain.Money // negative; zero if refused
}

// Withdraw reduces agent.PostedCollateral by amount if the minimum holding
// period has elapsed; otherwise it refuses the withdrawal (spec.md §4.8: no
// CollateralWithdrawn event is emitted, a HoldCollateral outcome is
// implied by the caller). amount is capped at the currently posted amount.
func Withdraw(agent *domain.Agent, amount domain.Money, currentTick, minHoldingTicks int) WithdrawResult {
	if !agent.HasPostedCollateral {
		return WithdrawResult{}
	}
	if currentTick-agent.CollateralPostedAtTick < minHoldingTicks {
		return WithdrawResult{}
	}
	if amount > agent.PostedCollateral {
		amount = agent.PostedCollateral
	}
	before := agent.CollateralCapacity()
	agent.PostedCollateral -= amount
	after := agent.CollateralCapacity()
	return WithdrawResult{Applied: true, HeadroomDelta: after - before}
}

// ForceAdjust applies a scenario-event CollateralAdjustment unconditionally
// (spec.md §4.8: "not subject to [hysteresis] gates"): delta may be
// positive (post) or negative (withdraw), bypassing both the hysteresis
// gates and the minimum holding period. A positive delta still anchors the
// holding-period clock, since a freshly posted amount must still observe
// min_holding_ticks for any *later* policy-driven withdrawal.
func ForceAdjust(agent *domain.Agent, delta domain.Money, currentTick int) domain.Money {
	before := agent.CollateralCapacity()
	agent.PostedCollateral += delta
	if agent.PostedCollateral < 0 {
		agent.PostedCollateral = 0
	}
	if delta > 0 {
		agent.CollateralPostedAtTick = currentTick
		agent.HasPostedCollateral = true
	}
	after := agent.CollateralCapacity()
	return after - before
}

// PostingEligible implements the posting hysteresis gate of spec.md §4.8:
// liquidity_gap / pending_outflows > posting_threshold_pct, evaluated with
// integer cross-multiplication to avoid floating point. An undefined ratio
// (no pending outflows) is never eligible.
func PostingEligible(liquidityGap, pendingOutflows domain.Money, threshold domain.Fraction) bool {
	if pendingOutflows <= 0 || threshold.Den <= 0 {
		return false
	}
	return int64(liquidityGap)*threshold.Den > int64(pendingOutflows)*threshold.Num
}

// WithdrawalEligible implements the withdrawal hysteresis gate: excess_
// liquidity / pending_outflows > withdrawal_threshold_pct.
func WithdrawalEligible(excessLiquidity, pendingOutflows domain.Money, threshold domain.Fraction) bool {
	if pendingOutflows <= 0 || threshold.Den <= 0 {
		return false
	}
	return int64(excessLiquidity)*threshold.Den > int64(pendingOutflows)*threshold.Num
}

// CanWithdrawNow reports whether the minimum holding period has elapsed,
// without mutating anything. No policy-tree field exposes it.
func CanWithdrawNow(agent *domain.Agent, currentTick, minHoldingTicks int) bool {
	return agent.HasPostedCollateral && currentTick-agent.CollateralPostedAtTick >= minHoldingTicks
}
