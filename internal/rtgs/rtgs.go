// Package rtgs implements the immediate-settlement engine of spec.md §4.6:
// bilateral/multilateral limit checks followed by an available-liquidity
// check, and the bounded Q2 release loop triggered whenever an agent's
// liquidity increases.
package rtgs

import (
	"kyd/internal/domain"
)

// FailReason identifies which of the three ordered checks rejected an
// immediate settlement attempt. It is reported in Result only; the
// orchestrator does not store it on the transaction when it enters Q2.
type FailReason int

const (
	failNone FailReason = iota
	failBilateralLimit
	failMultilateralLimit
	failLiquidity
)

// Ledger is the subset of orchestrator-owned state an Attempt needs:
// lookup of agents by id, keyed by AgentID.
type Ledger interface {
	Agent(id domain.AgentID) *domain.Agent
}

// Result reports the outcome of one settlement attempt.
type Result struct {
	Settled         bool
	FailReason      FailReason
	SenderBalanceBefore domain.Money
	SenderBalanceAfter  domain.Money
	DeferredCredit  bool
}

// Attempt performs the three ordered checks of spec.md §4.6 against tx and,
// if all pass, debits the sender and either credits the receiver directly
// or adds to its deferred_credit_accumulator when deferredCrediting is on.
// It mutates sender and receiver in place; it does not mutate tx.
func Attempt(tx *domain.Transaction, sender, receiver *domain.Agent, deferredCrediting bool) Result {
	amount := tx.RemainingAmount

	if limit, ok := sender.BilateralLimits[receiver.ID]; ok && amount > limit {
		return Result{FailReason: failBilateralLimit}
	}
	if sender.MultilateralLimitConfigured && amount > sender.MultilateralLimitRemaining {
		return Result{FailReason: failMultilateralLimit}
	}
	if amount > sender.AvailableLiquidity() {
		return Result{FailReason: failLiquidity}
	}

	before := sender.Balance
	sender.Balance -= amount
	if deferredCrediting {
		receiver.DeferredCreditAccumulator += amount
	} else {
		receiver.Balance += amount
	}
	if limit, ok := sender.BilateralLimits[receiver.ID]; ok {
		sender.BilateralLimits[receiver.ID] = limit - amount
	}
	if sender.MultilateralLimitConfigured {
		sender.MultilateralLimitRemaining -= amount
	}

	return Result{
		Settled:             true,
		SenderBalanceBefore: before,
		SenderBalanceAfter:  sender.Balance,
		DeferredCredit:      deferredCrediting,
	}
}

// String names the check a failed Attempt stopped at. It is distinct from
// the Queue2LiquidityRelease event reason, which the caller supplies at
// release time because it reflects why the *release* happened, not why the
// original entry failed.
func (r FailReason) String() string {
	switch r {
	case failBilateralLimit:
		return "bilateral_limit"
	case failMultilateralLimit:
		return "multilateral_limit"
	case failLiquidity:
		return "insufficient_liquidity"
	default:
		return "none"
	}
}

// ReleaseAttempt is the Q2 release form of Attempt: identical check order,
// but since a Q2-resident transaction's sender is fixed, only liquidity can
// plausibly have changed; the full three-check sequence is still run for
// correctness in case the triggering event changed limits too.
func ReleaseAttempt(tx *domain.Transaction, sender, receiver *domain.Agent, deferredCrediting bool) Result {
	return Attempt(tx, sender, receiver, deferredCrediting)
}

// ReleaseLoop attempts, in q2Order, settlement of each transaction for the
// released-to agent until the first failure, honoring the per-tick bound on
// release attempts (spec.md §4.6: "bounded per tick to avoid unbounded
// work"). It returns the ids it successfully settled, in settlement order;
// remaining ids (including the one that failed and everything after it)
// are left for the caller to re-queue.
func ReleaseLoop(q2Order []domain.TxID, txs map[domain.TxID]*domain.Transaction, ledger Ledger, deferredCrediting bool, maxAttempts int) (settled []domain.TxID, results map[domain.TxID]Result) {
	results = make(map[domain.TxID]Result)
	attempts := 0
	for _, id := range q2Order {
		if maxAttempts > 0 && attempts >= maxAttempts {
			break
		}
		attempts++
		tx := txs[id]
		sender := ledger.Agent(tx.SenderID)
		receiver := ledger.Agent(tx.ReceiverID)
		res := ReleaseAttempt(tx, sender, receiver, deferredCrediting)
		results[id] = res
		if !res.Settled {
			break // stop at the first failure, per spec.md §4.6
		}
		settled = append(settled, id)
	}
	return settled, results
}
