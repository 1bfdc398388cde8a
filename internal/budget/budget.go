// Package budget limits how many extra worker goroutines a recursive sort
// may spawn.
package budget

import (
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// PairCost is the number of threads a fork consumes: one per half.
const PairCost = 2

// Budget hands out permission to fork a pair of workers.
type Budget interface {
	// TryReserve claims a pair of threads without blocking.
	TryReserve() bool
	// Release returns a pair claimed by TryReserve once both workers joined.
	Release()
	// Reset restores the full budget at the start of a top-level sort.
	Reset()
	// Available returns the number of threads that may still be claimed.
	Available() int
}

// ConsumeOnly is a budget whose threads, once claimed, stay consumed until
// the next Reset. A fork is granted only while more than one thread remains.
type ConsumeOnly struct {
	total     int64
	remaining atomic.Int64
}

// NewConsumeOnly creates a consume-only budget of n threads, rounded down
// to an even number.
func NewConsumeOnly(n int) *ConsumeOnly {
	b := &ConsumeOnly{total: int64(even(n))}
	b.remaining.Store(b.total)

	return b
}

func (b *ConsumeOnly) TryReserve() bool {
	for {
		cur := b.remaining.Load()
		if cur <= 1 {
			return false
		}
		if b.remaining.CompareAndSwap(cur, cur-PairCost) {
			return true
		}
	}
}

// Release is a no-op: consumed threads return only through Reset.
func (b *ConsumeOnly) Release() {}

func (b *ConsumeOnly) Reset() {
	b.remaining.Store(b.total)
}

func (b *ConsumeOnly) Available() int {
	return int(max(0, b.remaining.Load()))
}

// Releasing is a budget backed by a weighted semaphore; a pair returns its
// threads when it joins, so later subtrees may fork again.
type Releasing struct {
	total     int64
	sem       *semaphore.Weighted
	available atomic.Int64
}

// NewReleasing creates a releasing budget of n threads, rounded down to an
// even number.
func NewReleasing(n int) *Releasing {
	total := int64(even(n))
	b := &Releasing{total: total, sem: semaphore.NewWeighted(total)}
	b.available.Store(total)

	return b
}

func (b *Releasing) TryReserve() bool {
	if !b.sem.TryAcquire(PairCost) {
		return false
	}
	b.available.Add(-PairCost)

	return true
}

func (b *Releasing) Release() {
	b.available.Add(PairCost)
	b.sem.Release(PairCost)
}

// Reset is a no-op for a releasing budget: every reservation is released by
// the pair that made it, so the budget is full between sorts.
func (b *Releasing) Reset() {}

func (b *Releasing) Available() int {
	return int(b.available.Load())
}

func even(n int) int {
	if n < 0 {
		return 0
	}

	return n &^ 1
}
