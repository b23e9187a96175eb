package policyeval

import (
	"fmt"

	"kyd/internal/domain"
)

// SplitChildren computes the N children of a Split action applied to
// parent's remaining_amount, per spec.md §4.3: the first N-1 children take
// floor(remaining/N), the last absorbs the remainder, so amounts sum
// exactly to remaining_amount. Children inherit priority and deadline.
// idGen is called once per child, in order, to mint fresh external ids.
func SplitChildren(parent *domain.Transaction, numSplits int, idGen func(i int) domain.TxID) ([]domain.Transaction, error) {
	if numSplits < 2 {
		return nil, fmt.Errorf("policyeval: split requires at least 2 children, got %d", numSplits)
	}
	remaining := parent.RemainingAmount
	each := domain.Money(int64(remaining) / int64(numSplits))
	children := make([]domain.Transaction, numSplits)
	allocated := domain.Money(0)
	for i := 0; i < numSplits-1; i++ {
		children[i] = newChild(parent, idGen(i), each)
		allocated += each
	}
	last := remaining - allocated
	children[numSplits-1] = newChild(parent, idGen(numSplits-1), last)
	return children, nil
}

func newChild(parent *domain.Transaction, id domain.TxID, amount domain.Money) domain.Transaction {
	return domain.Transaction{
		ID:              id,
		SenderID:        parent.SenderID,
		ReceiverID:      parent.ReceiverID,
		Amount:          amount,
		RemainingAmount: amount,
		Priority:        parent.Priority,
		ArrivalTick:     parent.ArrivalTick,
		DeadlineTick:    parent.DeadlineTick,
		Divisible:       parent.Divisible,
		IsSplitChild:    true,
		ParentID:        parent.ID,
		Status:          domain.TransactionPending,
	}
}

// StaggerSchedule computes, for each child index, the tick at which it
// should arrive in its sender's Q1: the first child optionally arrives
// this tick (firstChildThisTick), and the rest are spaced by
// staggerGapTicks (spec.md §4.3).
func StaggerSchedule(currentTick int, numChildren int, firstChildThisTick bool, staggerGapTicks int) []int {
	ticks := make([]int, numChildren)
	start := currentTick
	if !firstChildThisTick {
		start += staggerGapTicks
	}
	for i := range ticks {
		ticks[i] = start + i*staggerGapTicks
	}
	return ticks
}
