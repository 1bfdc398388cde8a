// Package scratch holds the temporary runs a merge copies out of the
// container before writing them back in order.
//
// A Buffer keeps a run in its slot memory when it fits and spills it to a
// temporary file-backed container otherwise. In-memory runs never touch the
// file system.
package scratch

import (
	"errors"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/arloliu/pagesort/container"
	"github.com/arloliu/pagesort/errs"
	"github.com/arloliu/pagesort/internal/logging"
	"github.com/arloliu/pagesort/record"
)

// Buffer is a run of records held in memory or, when too large, in a
// temporary file. A Buffer is owned by a single worker.
type Buffer[T record.Value] struct {
	mem    []T
	n      int64
	spill  *container.Container[T]
	spills int
	logger *slog.Logger
}

// NewBuffer creates a buffer over mem. A nil logger selects logging.L.
func NewBuffer[T record.Value](mem []T, logger *slog.Logger) *Buffer[T] {
	if logger == nil {
		logger = logging.L
	}

	return &Buffer[T]{mem: mem, logger: logger}
}

// Reset prepares the buffer for a run of n records. Previous content is
// undefined afterwards.
func (b *Buffer[T]) Reset(n int64) error {
	if n < 0 {
		return fmt.Errorf("%w: run length %d", errs.ErrOutOfRange, n)
	}
	b.n = n

	if n <= int64(len(b.mem)) {
		if b.spill != nil {
			err := b.spill.Close()
			b.spill = nil

			return err
		}

		return nil
	}

	if b.spill != nil {
		return nil
	}

	var zero T
	c, err := container.New[T](
		container.WithBuffer(b.mem),
		container.WithChunkSize(len(b.mem)*int(unsafe.Sizeof(zero))),
		container.WithDynamicGrowth(true),
		container.WithLogger(b.logger),
	)
	if err != nil {
		return fmt.Errorf("create spill container: %w", err)
	}
	b.spill = c
	b.spills++
	b.logger.Debug("scratch run spilled to disk", "records", n, "memory", len(b.mem))

	return nil
}

// Len returns the run length set by Reset.
func (b *Buffer[T]) Len() int64 {
	return b.n
}

// Spilled reports whether the current run lives in a temporary file.
func (b *Buffer[T]) Spilled() bool {
	return b.spill != nil
}

// Spills returns how many times the buffer has started spilling.
func (b *Buffer[T]) Spills() int {
	return b.spills
}

// Get returns record i of the run.
func (b *Buffer[T]) Get(i int64) (T, error) {
	if i < 0 || i >= b.n {
		return 0, fmt.Errorf("%w: scratch index %d, run length %d", errs.ErrOutOfRange, i, b.n)
	}
	if b.spill != nil {
		return b.spill.Get(i)
	}

	return b.mem[i], nil
}

// Set stores v as record i of the run.
func (b *Buffer[T]) Set(i int64, v T) error {
	if i < 0 || i >= b.n {
		return fmt.Errorf("%w: scratch index %d, run length %d", errs.ErrOutOfRange, i, b.n)
	}
	if b.spill != nil {
		return b.spill.Set(i, v)
	}
	b.mem[i] = v

	return nil
}

// Close removes any spill file. The slot memory is left to its owner.
func (b *Buffer[T]) Close() error {
	b.n = 0
	if b.spill == nil {
		return nil
	}
	err := b.spill.Close()
	b.spill = nil

	return err
}

// Pair is the left and right scratch buffers of one merge.
type Pair[T record.Value] struct {
	Left  *Buffer[T]
	Right *Buffer[T]
}

// NewPair creates a scratch pair over the two halves of a slot.
func NewPair[T record.Value](left, right []T, logger *slog.Logger) *Pair[T] {
	return &Pair[T]{
		Left:  NewBuffer(left, logger),
		Right: NewBuffer(right, logger),
	}
}

// Spills returns the total spill count of both buffers.
func (p *Pair[T]) Spills() int {
	return p.Left.Spills() + p.Right.Spills()
}

// Close closes both buffers.
func (p *Pair[T]) Close() error {
	return errors.Join(p.Left.Close(), p.Right.Close())
}
