// Package sorter implements a parallel external merge sort over a paged
// container.
//
// The sort recursively halves the index range. While the thread budget
// allows, both halves are sorted by a freshly spawned pair of workers;
// otherwise the current worker sorts them itself. The sorted halves are then
// merged through the worker's scratch pair. Every worker owns one arena slot
// holding its container view buffer and its scratch memory, so the whole
// sort stays within the configured memory limit no matter how large the
// backing file is.
package sorter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/pagesort/container"
	"github.com/arloliu/pagesort/errs"
	"github.com/arloliu/pagesort/internal/arena"
	"github.com/arloliu/pagesort/internal/budget"
	"github.com/arloliu/pagesort/internal/hash"
	"github.com/arloliu/pagesort/internal/logging"
	"github.com/arloliu/pagesort/internal/options"
	"github.com/arloliu/pagesort/internal/scratch"
	"github.com/arloliu/pagesort/record"
)

// Stats describes the most recent Sort call.
type Stats struct {
	Records     int64            // records sorted
	Pairs       int64            // worker pairs spawned
	Merges      int64            // merge steps performed
	Spills      int64            // scratch runs that spilled to disk
	Elapsed     time.Duration    // wall time of the sort
	Fingerprint hash.Fingerprint // set when the fingerprint check is enabled
}

// Sorter sorts containers of T. A Sorter runs one sort at a time; concurrent
// Sort calls are serialized.
type Sorter[T record.Value] struct {
	cfg        *Config
	chunkElems int
	budget     budget.Budget
	arena      *arena.Arena[T]
	logger     *slog.Logger

	mu     sync.Mutex
	pairs  atomic.Int64
	merges atomic.Int64
	spills atomic.Int64
	last   Stats
}

// New creates a sorter and allocates its scratch arena.
func New[T record.Value](opts ...Option) (*Sorter[T], error) {
	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.logger == nil {
		cfg.logger = logging.L
	}

	var zero T
	size := int(unsafe.Sizeof(zero))
	slots := cfg.workers + 1

	chunkBytes := min(cfg.chunkSize, cfg.memLimit/(2*slots))
	chunkElems := (chunkBytes / size) &^ 1
	if chunkElems < 2 {
		return nil, fmt.Errorf("%w: %d bytes per chunk leaves fewer than 2 records of %d bytes",
			errs.ErrInvalidChunkSize, chunkBytes, size)
	}

	ar, err := arena.New[T](slots, 2*chunkElems)
	if err != nil {
		return nil, err
	}

	var b budget.Budget
	switch cfg.policy {
	case Releasing:
		b = budget.NewReleasing(cfg.workers)
	default:
		b = budget.NewConsumeOnly(cfg.workers)
	}

	return &Sorter[T]{
		cfg:        cfg,
		chunkElems: chunkElems,
		budget:     b,
		arena:      ar,
		logger:     cfg.logger,
	}, nil
}

// ChunkElements returns the number of records in each worker's view chunk.
func (s *Sorter[T]) ChunkElements() int {
	return s.chunkElems
}

// Workers returns the thread budget.
func (s *Sorter[T]) Workers() int {
	return s.cfg.workers
}

// Policy returns the thread budget policy.
func (s *Sorter[T]) Policy() Policy {
	return s.cfg.policy
}

// Stats returns the statistics of the most recent Sort.
func (s *Sorter[T]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.last
}

// worker is the per-goroutine sort state: its arena slot, its view of the
// container and the scratch pair carved from the slot.
type worker[T record.Value] struct {
	slot *arena.Slot[T]
	view *container.View[T]
	pair *scratch.Pair[T]
}

// Sort sorts every record of c in ascending order. The container's resident
// chunk is written back and dropped before sorting starts.
func (s *Sorter[T]) Sort(ctx context.Context, c *container.Container[T]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	s.pairs.Store(0)
	s.merges.Store(0)
	s.spills.Store(0)
	s.last = Stats{}
	s.budget.Reset()
	s.arena.Reset()

	if err := c.Invalidate(); err != nil {
		return err
	}

	n := c.Len()
	if n == 0 {
		return nil
	}

	var before hash.Fingerprint
	if s.cfg.fingerprint {
		fp, err := c.Fingerprint()
		if err != nil {
			return err
		}
		before = fp
	}

	s.logger.Debug("sort started", "records", n, "workers", s.cfg.workers,
		"policy", s.cfg.policy, "chunk_records", s.chunkElems, "growth", c.Growth())

	if err := s.spawn(ctx, c, 0, n-1); err != nil {
		return err
	}

	s.last = Stats{
		Records: n,
		Pairs:   s.pairs.Load(),
		Merges:  s.merges.Load(),
		Spills:  s.spills.Load(),
		Elapsed: time.Since(start),
	}

	if s.cfg.fingerprint {
		after, err := c.Fingerprint()
		if err != nil {
			return err
		}
		if !before.Equal(after) {
			return fmt.Errorf("%w: before %s, after %s", errs.ErrFingerprintMismatch, before, after)
		}
		s.last.Fingerprint = after
	}

	s.logger.Debug("sort finished", "records", n, "pairs", s.last.Pairs,
		"merges", s.last.Merges, "spills", s.last.Spills, "elapsed", s.last.Elapsed)

	return nil
}

// spawn runs sortRange on a new worker with its own slot, view and scratch
// pair. The view is flushed before spawn returns.
func (s *Sorter[T]) spawn(ctx context.Context, c *container.Container[T], l, r int64) (err error) {
	slot, err := s.arena.Claim()
	if err != nil {
		return err
	}
	defer s.arena.Release(slot)

	view, err := c.View(slot.Window())
	if err != nil {
		return err
	}
	left, right := slot.Pair()
	w := &worker[T]{
		slot: slot,
		view: view,
		pair: scratch.NewPair(left, right, s.logger),
	}

	defer func() {
		s.spills.Add(int64(w.pair.Spills()))
		err = errors.Join(err, w.view.Close(), w.pair.Close())
	}()

	return s.sortRange(ctx, c, w, l, r)
}

func (s *Sorter[T]) sortRange(ctx context.Context, c *container.Container[T], w *worker[T], l, r int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := l + (r-l)/2
	if r-l > 1 {
		if s.budget.TryReserve() {
			if err := s.fork(ctx, c, w, l, m, r); err != nil {
				return err
			}
		} else {
			if err := s.sortRange(ctx, c, w, l, m); err != nil {
				return err
			}
			if r-m > 1 {
				if err := s.sortRange(ctx, c, w, m+1, r); err != nil {
					return err
				}
			}
		}
	}

	return s.merge(w, l, m, r)
}

// fork sorts [l, m] and [m+1, r] on a new worker pair. The caller's view is
// flushed and dropped first so that its chunk is re-read after the join.
func (s *Sorter[T]) fork(ctx context.Context, c *container.Container[T], w *worker[T], l, m, r int64) error {
	defer s.budget.Release()
	s.pairs.Add(1)

	if err := w.view.Invalidate(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.spawn(gctx, c, l, m) })
	g.Go(func() error { return s.spawn(gctx, c, m+1, r) })

	return g.Wait()
}

// merge combines the sorted runs [l, m] and [m+1, r]. Ties take the left
// record first, which keeps the sort stable.
func (s *Sorter[T]) merge(w *worker[T], l, m, r int64) error {
	s.merges.Add(1)

	left, right := w.pair.Left, w.pair.Right
	nl, nr := m-l+1, r-m
	if err := left.Reset(nl); err != nil {
		return err
	}
	if err := right.Reset(nr); err != nil {
		return err
	}

	for i := range nl {
		v, err := w.view.Get(l + i)
		if err != nil {
			return err
		}
		if err := left.Set(i, v); err != nil {
			return err
		}
	}
	for j := range nr {
		v, err := w.view.Get(m + 1 + j)
		if err != nil {
			return err
		}
		if err := right.Set(j, v); err != nil {
			return err
		}
	}

	var i, j int64
	k := l
	for i < nl && j < nr {
		a, err := left.Get(i)
		if err != nil {
			return err
		}
		b, err := right.Get(j)
		if err != nil {
			return err
		}

		if a <= b {
			err = w.view.Set(k, a)
			i++
		} else {
			err = w.view.Set(k, b)
			j++
		}
		if err != nil {
			return err
		}
		k++
	}

	if err := drain(w.view, left, i, nl, &k); err != nil {
		return err
	}

	return drain(w.view, right, j, nr, &k)
}

func drain[T record.Value](view *container.View[T], run *scratch.Buffer[T], from, to int64, k *int64) error {
	for i := from; i < to; i++ {
		v, err := run.Get(i)
		if err != nil {
			return err
		}
		if err := view.Set(*k, v); err != nil {
			return err
		}
		*k++
	}

	return nil
}
