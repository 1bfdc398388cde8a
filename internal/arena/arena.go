// Package arena provides a preallocated slab of records carved into
// fixed-size slots that sort workers claim and return.
//
// Every slot is split into a chunk window, used as a worker's container view
// buffer, and a scratch pair holding the two halves of a merge.
package arena

import (
	"fmt"
	"sync"

	"github.com/arloliu/pagesort/errs"
)

// Slot is one worker's share of an arena.
type Slot[T any] struct {
	id      int
	mem     []T
	claimed bool
}

// ID returns the slot index within its arena.
func (s *Slot[T]) ID() int {
	return s.id
}

// Window returns the first half of the slot.
func (s *Slot[T]) Window() []T {
	return s.mem[:len(s.mem)/2]
}

// Pair returns the second half of the slot split into left and right
// scratch buffers.
func (s *Slot[T]) Pair() (left, right []T) {
	rest := s.mem[len(s.mem)/2:]
	mid := len(rest) / 2

	return rest[:mid:mid], rest[mid:]
}

// Arena is a fixed set of slots backed by a single allocation.
// Claim and Release are safe for concurrent use.
type Arena[T any] struct {
	mu    sync.Mutex
	slab  []T
	slots []*Slot[T]
	free  []int
}

// New allocates an arena of slots slots of slotElements records each.
func New[T any](slots, slotElements int) (*Arena[T], error) {
	if slots < 1 || slotElements < 4 {
		return nil, fmt.Errorf("%w: arena of %d slots x %d records", errs.ErrInvalidOption, slots, slotElements)
	}

	a := &Arena[T]{
		slab:  make([]T, slots*slotElements),
		slots: make([]*Slot[T], slots),
		free:  make([]int, 0, slots),
	}
	for i := range a.slots {
		off := i * slotElements
		a.slots[i] = &Slot[T]{id: i, mem: a.slab[off : off+slotElements : off+slotElements]}
	}
	a.Reset()

	return a, nil
}

// Claim hands out an unused slot, or errs.ErrArenaFull when every slot is
// claimed.
func (a *Arena[T]) Claim() (*Slot[T], error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.free) == 0 {
		return nil, fmt.Errorf("%w: %d slots in use", errs.ErrArenaFull, len(a.slots))
	}
	id := a.free[len(a.free)-1]
	a.free = a.free[:len(a.free)-1]

	s := a.slots[id]
	s.claimed = true

	return s, nil
}

// Release returns a claimed slot. Releasing a slot twice has no effect.
func (a *Arena[T]) Release(s *Slot[T]) {
	if s == nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if !s.claimed {
		return
	}
	s.claimed = false
	a.free = append(a.free, s.id)
}

// Reset marks every slot unclaimed.
func (a *Arena[T]) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.free = a.free[:0]
	for i := len(a.slots) - 1; i >= 0; i-- {
		a.slots[i].claimed = false
		a.free = append(a.free, i)
	}
}

// Slots returns the total number of slots.
func (a *Arena[T]) Slots() int {
	return len(a.slots)
}

// InUse returns the number of claimed slots.
func (a *Arena[T]) InUse() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.slots) - len(a.free)
}

// SlotElements returns the number of records in each slot.
func (a *Arena[T]) SlotElements() int {
	return len(a.slab) / len(a.slots)
}
