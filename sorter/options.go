package sorter

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/arloliu/pagesort/container"
	"github.com/arloliu/pagesort/errs"
	"github.com/arloliu/pagesort/internal/options"
)

const (
	// DefaultChunkSize is the default chunk size in bytes of every worker's
	// container view.
	DefaultChunkSize = container.DefaultChunkSize

	// DefaultMemLimit bounds the scratch arena: all worker slots together
	// never exceed it.
	DefaultMemLimit = 1 << 25
)

// Policy selects how the thread budget is spent.
type Policy uint8

const (
	// ConsumeOnly grants forks until the budget is exhausted and never
	// returns threads during a sort. The deepest subtrees run sequentially.
	ConsumeOnly Policy = iota
	// Releasing returns a pair's threads when it joins.
	Releasing
)

func (p Policy) String() string {
	switch p {
	case ConsumeOnly:
		return "consume"
	case Releasing:
		return "release"
	default:
		return "unknown"
	}
}

// ParsePolicy maps a policy name to a Policy.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "consume", "consume-only":
		return ConsumeOnly, nil
	case "release", "releasing":
		return Releasing, nil
	default:
		return 0, fmt.Errorf("%w: budget policy %q", errs.ErrInvalidOption, name)
	}
}

// Config holds the settings of a Sorter.
type Config struct {
	chunkSize   int
	workers     int
	memLimit    int
	policy      Policy
	fingerprint bool
	logger      *slog.Logger
}

func defaultConfig() *Config {
	return &Config{
		chunkSize: DefaultChunkSize,
		workers:   DefaultWorkers(),
		memLimit:  DefaultMemLimit,
		policy:    ConsumeOnly,
	}
}

// DefaultWorkers returns the number of CPUs rounded down to an even number.
func DefaultWorkers() int {
	return runtime.NumCPU() &^ 1
}

// Option configures a Sorter.
type Option = options.Option[*Config]

// WithChunkSize sets the preferred chunk size in bytes. The size actually
// used is capped so that every worker slot fits in the memory limit, and is
// rounded down to an even number of records.
func WithChunkSize(bytes int) Option {
	return options.New("WithChunkSize", func(c *Config) error {
		if bytes <= 0 {
			return fmt.Errorf("%w: %d bytes", errs.ErrInvalidChunkSize, bytes)
		}
		c.chunkSize = bytes

		return nil
	})
}

// WithWorkers sets the thread budget, rounded down to an even number.
// Zero sorts on the calling goroutine only.
func WithWorkers(n int) Option {
	return options.New("WithWorkers", func(c *Config) error {
		if n < 0 {
			return fmt.Errorf("%w: %d workers", errs.ErrInvalidOption, n)
		}
		c.workers = n &^ 1

		return nil
	})
}

// WithMemLimit sets the scratch arena size in bytes.
func WithMemLimit(bytes int) Option {
	return options.New("WithMemLimit", func(c *Config) error {
		if bytes <= 0 {
			return fmt.Errorf("%w: memory limit %d", errs.ErrInvalidOption, bytes)
		}
		c.memLimit = bytes

		return nil
	})
}

// WithBudgetPolicy selects the thread budget policy.
func WithBudgetPolicy(p Policy) Option {
	return options.New("WithBudgetPolicy", func(c *Config) error {
		if p != ConsumeOnly && p != Releasing {
			return fmt.Errorf("%w: budget policy %d", errs.ErrInvalidOption, p)
		}
		c.policy = p

		return nil
	})
}

// WithFingerprintCheck makes Sort fingerprint the records before and after
// sorting and fail with errs.ErrFingerprintMismatch when they differ.
func WithFingerprintCheck(enabled bool) Option {
	return options.NoError("WithFingerprintCheck", func(c *Config) {
		c.fingerprint = enabled
	})
}

// WithLogger sets the sorter's logger.
func WithLogger(l *slog.Logger) Option {
	return options.NoError("WithLogger", func(c *Config) {
		c.logger = l
	})
}
