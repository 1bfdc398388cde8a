// Package pagesort sorts text files of numbers that do not fit in memory.
//
// The input is converted once into a binary backing file of fixed-size
// records. A paged container gives random access to that file while keeping
// a single chunk resident, and a parallel merge sort orders the records in
// place through per-worker views of the container. The sorted records are
// finally written back out as text.
//
// # Core Features
//
//   - Any integer or floating-point record type
//   - Bounded memory: one chunk per worker plus scratch, capped by a limit
//   - Fork-join parallelism under a fixed thread budget
//   - Optional compression (Zstd, S2, LZ4) of source and output text
//   - Post-sort validation by adjacent comparison and multiset fingerprint
//   - Cached read-only access to sorted files for quantile queries
//
// # Basic Usage
//
// Sorting a file end to end:
//
//	report, err := pagesort.SortFile[float64](ctx, "input.txt", "sorted.txt",
//	    pagesort.WithBacking("plane.wf"),
//	    pagesort.WithSorterOptions(sorter.WithWorkers(8)),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report.Records, report.Sort.Elapsed)
//
// Working with the pieces directly:
//
//	c, n, err := pagesort.OpenContainer[float64]("input.txt", "plane.wf")
//	defer c.Close()
//	s, _ := pagesort.NewSorter[float64]()
//	err = s.Sort(ctx, c)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the container
// and sorter packages. For fine-grained control use those packages directly.
package pagesort

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/arloliu/pagesort/container"
	"github.com/arloliu/pagesort/errs"
	"github.com/arloliu/pagesort/internal/options"
	"github.com/arloliu/pagesort/record"
	"github.com/arloliu/pagesort/sorter"
)

// Stage identifies a milestone of SortFile.
type Stage uint8

const (
	StageConverted  Stage = iota + 1 // backing file ready
	StageSorted                      // records sorted
	StageValidating                  // validation started
	StageValidated                   // validation passed
	StageExported                    // text output written
)

func (s Stage) String() string {
	switch s {
	case StageConverted:
		return "converted"
	case StageSorted:
		return "sorted"
	case StageValidating:
		return "validating"
	case StageValidated:
		return "validated"
	case StageExported:
		return "exported"
	default:
		return "unknown"
	}
}

// Report summarises a SortFile run.
type Report struct {
	Backing  string        // backing file path; empty when it was removed
	Records  int64         // records in the backing file
	Exported int64         // lines written to the destination
	Sort     sorter.Stats  // sorter statistics
	Validate time.Duration // time spent validating
}

// Observer is called by SortFile after each stage with the report so far.
type Observer func(stage Stage, report Report)

type fileConfig struct {
	backing       string
	validate      bool
	sync          bool
	observer      Observer
	containerOpts []container.Option
	sorterOpts    []sorter.Option
	exportOpts    []container.ExportOption
}

// Option configures SortFile.
type Option = options.Option[*fileConfig]

// WithBacking keeps the backing file at path. An existing file is reused
// without converting the source. Without this option a temporary backing
// file is used and removed afterwards.
func WithBacking(path string) Option {
	return options.NoError("WithBacking", func(c *fileConfig) {
		c.backing = path
	})
}

// WithValidation enables (the default) or disables post-sort validation.
func WithValidation(enabled bool) Option {
	return options.NoError("WithValidation", func(c *fileConfig) {
		c.validate = enabled
	})
}

// WithSync forces the sorted backing file to stable storage before export.
func WithSync(enabled bool) Option {
	return options.NoError("WithSync", func(c *fileConfig) {
		c.sync = enabled
	})
}

// WithObserver registers a callback for stage milestones.
func WithObserver(fn Observer) Option {
	return options.NoError("WithObserver", func(c *fileConfig) {
		c.observer = fn
	})
}

// WithContainerOptions passes options to the container.
func WithContainerOptions(opts ...container.Option) Option {
	return options.NoError("WithContainerOptions", func(c *fileConfig) {
		c.containerOpts = append(c.containerOpts, opts...)
	})
}

// WithSorterOptions passes options to the sorter.
func WithSorterOptions(opts ...sorter.Option) Option {
	return options.NoError("WithSorterOptions", func(c *fileConfig) {
		c.sorterOpts = append(c.sorterOpts, opts...)
	})
}

// WithExportOptions passes options to the text export.
func WithExportOptions(opts ...container.ExportOption) Option {
	return options.NoError("WithExportOptions", func(c *fileConfig) {
		c.exportOpts = append(c.exportOpts, opts...)
	})
}

// SortFile converts src into a backing file, sorts it, validates the result
// and writes the sorted records to dst as text.
//
// A validation failure is returned as an *errs.InversionError or as
// errs.ErrFingerprintMismatch; dst is not written in that case.
func SortFile[T record.Value](ctx context.Context, src, dst string, opts ...Option) (report Report, err error) {
	cfg := &fileConfig{validate: true}
	if err := options.Apply(cfg, opts...); err != nil {
		return report, err
	}

	notify := func(stage Stage) {
		if cfg.observer != nil {
			cfg.observer(stage, report)
		}
	}

	backing := cfg.backing
	if backing == "" {
		tmp, err := os.CreateTemp("", "pagesort-*.wf")
		if err != nil {
			return report, fmt.Errorf("%w: create backing file: %w", errs.ErrIO, err)
		}
		backing = tmp.Name()
		tmp.Close()
		// Prepare converts only when the backing file is absent
		os.Remove(backing)
		defer os.Remove(backing)
	} else {
		report.Backing = backing
	}

	c, n, err := OpenContainer[T](src, backing, cfg.containerOpts...)
	if err != nil {
		return report, err
	}
	defer func() {
		err = errors.Join(err, c.Close())
	}()
	report.Records = n
	notify(StageConverted)

	sorterOpts := cfg.sorterOpts
	if cfg.validate {
		sorterOpts = append([]sorter.Option{sorter.WithFingerprintCheck(true)}, sorterOpts...)
	}
	s, err := NewSorter[T](sorterOpts...)
	if err != nil {
		return report, err
	}

	if err := s.Sort(ctx, c); err != nil {
		return report, err
	}
	report.Sort = s.Stats()
	if cfg.sync {
		if err := c.Sync(); err != nil {
			return report, err
		}
	}
	notify(StageSorted)

	if cfg.validate {
		notify(StageValidating)
		start := time.Now()
		if err := s.Validate(ctx, c); err != nil {
			return report, err
		}
		report.Validate = time.Since(start)
		notify(StageValidated)
	}

	exported, err := c.ExportText(dst, cfg.exportOpts...)
	report.Exported = exported
	if err != nil {
		return report, err
	}
	notify(StageExported)

	return report, nil
}

// OpenContainer creates a container over backing, converting src into it
// when backing does not exist yet, and returns it with its record count.
//
// The container is opened in fixed mode, so an access past the last record
// fails with errs.ErrOutOfRange instead of growing the file. Pass
// container.WithDynamicGrowth(true) to override.
func OpenContainer[T record.Value](src, backing string, opts ...container.Option) (*container.Container[T], int64, error) {
	opts = append([]container.Option{container.WithDynamicGrowth(false)}, opts...)
	c, err := container.New[T](opts...)
	if err != nil {
		return nil, 0, err
	}

	n, err := c.Prepare(src, backing)
	if err != nil {
		return nil, 0, errors.Join(err, c.Close())
	}

	return c, n, nil
}

// NewSorter creates a sorter for records of type T.
func NewSorter[T record.Value](opts ...sorter.Option) (*sorter.Sorter[T], error) {
	return sorter.New[T](opts...)
}

// OpenReader opens a sorted backing file for cached read-only access.
func OpenReader[T record.Value](path string, opts ...container.ReaderOption) (*container.Reader[T], error) {
	return container.OpenReader[T](path, opts...)
}
