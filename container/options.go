package container

import (
	"fmt"
	"log/slog"

	"github.com/arloliu/pagesort/endian"
	"github.com/arloliu/pagesort/errs"
	"github.com/arloliu/pagesort/format"
	"github.com/arloliu/pagesort/internal/options"
)

const (
	// DefaultChunkSize is the default resident chunk size in bytes, one
	// typical file-system page.
	DefaultChunkSize = 4096

	// LineSize is the default maximum source line length in bytes, line
	// terminator included. Longer lines are truncated before parsing.
	LineSize = 18

	// DefaultReaderBlockSize is the block size cached by Reader.
	DefaultReaderBlockSize = 64 * 1024

	// DefaultReaderCacheSize is the default Reader cache budget in bytes.
	DefaultReaderCacheSize = 8 * 1024 * 1024
)

// Config holds the construction-time settings of a Container.
type Config struct {
	chunkSize int
	growth    bool
	placement any
	engine    endian.EndianEngine
	lineSize  int
	logger    *slog.Logger
}

func defaultConfig() *Config {
	return &Config{
		chunkSize: DefaultChunkSize,
		growth:    true,
		lineSize:  LineSize,
	}
}

// Option configures a Container.
type Option = options.Option[*Config]

// WithChunkSize sets the resident chunk size in bytes. It is rounded down to
// a multiple of the record size when the container is built; a size smaller
// than one record is rejected with errs.ErrInvalidChunkSize.
func WithChunkSize(bytes int) Option {
	return options.New("WithChunkSize", func(c *Config) error {
		if bytes <= 0 {
			return fmt.Errorf("%w: %d bytes", errs.ErrInvalidChunkSize, bytes)
		}
		c.chunkSize = bytes

		return nil
	})
}

// WithDynamicGrowth selects growth mode (true, the default) or fixed mode.
// Fixed mode rejects indexes outside [0, Len()) with errs.ErrOutOfRange;
// growth mode accepts any non-negative index and extends the file on flush.
func WithDynamicGrowth(enabled bool) Option {
	return options.NoError("WithDynamicGrowth", func(c *Config) {
		c.growth = enabled
	})
}

// WithBuffer makes the container page through buf instead of allocating its
// own chunk memory. The element type must match the container's. Close never
// releases a supplied buffer.
func WithBuffer[T any](buf []T) Option {
	return options.New("WithBuffer", func(c *Config) error {
		if len(buf) == 0 {
			return fmt.Errorf("%w: empty buffer", errs.ErrInvalidOption)
		}
		c.placement = buf

		return nil
	})
}

// WithByteOrder overrides the record byte order. The default is the host order.
func WithByteOrder(engine endian.EndianEngine) Option {
	return options.NoError("WithByteOrder", func(c *Config) {
		c.engine = engine
	})
}

// WithLineSize sets the maximum source line length used by Prepare.
func WithLineSize(n int) Option {
	return options.New("WithLineSize", func(c *Config) error {
		if n < 2 {
			return fmt.Errorf("%w: line size %d", errs.ErrInvalidOption, n)
		}
		c.lineSize = n

		return nil
	})
}

// WithLogger sets the logger for paging and export diagnostics.
func WithLogger(l *slog.Logger) Option {
	return options.NoError("WithLogger", func(c *Config) {
		c.logger = l
	})
}

// ExportConfig holds the settings of one ExportText call.
type ExportConfig struct {
	compression format.CompressionType
}

// ExportOption configures ExportText.
type ExportOption = options.Option[*ExportConfig]

// WithExportCompression compresses the exported text stream. Without this
// option the compression is detected from the destination file extension.
func WithExportCompression(ct format.CompressionType) ExportOption {
	return options.NoError("WithExportCompression", func(c *ExportConfig) {
		c.compression = ct
	})
}

// ReaderConfig holds the settings of a Reader.
type ReaderConfig struct {
	blockSize int
	cacheSize int64
	engine    endian.EndianEngine
	logger    *slog.Logger
}

// ReaderOption configures OpenReader.
type ReaderOption = options.Option[*ReaderConfig]

// WithReaderBlockSize sets the size in bytes of the blocks the reader caches.
func WithReaderBlockSize(bytes int) ReaderOption {
	return options.New("WithReaderBlockSize", func(c *ReaderConfig) error {
		if bytes <= 0 {
			return fmt.Errorf("%w: block size %d", errs.ErrInvalidOption, bytes)
		}
		c.blockSize = bytes

		return nil
	})
}

// WithReaderCacheSize sets the total cache budget in bytes.
func WithReaderCacheSize(bytes int64) ReaderOption {
	return options.New("WithReaderCacheSize", func(c *ReaderConfig) error {
		if bytes <= 0 {
			return fmt.Errorf("%w: cache size %d", errs.ErrInvalidOption, bytes)
		}
		c.cacheSize = bytes

		return nil
	})
}

// WithReaderByteOrder sets the byte order of the file being read.
func WithReaderByteOrder(engine endian.EndianEngine) ReaderOption {
	return options.NoError("WithReaderByteOrder", func(c *ReaderConfig) {
		c.engine = engine
	})
}

// WithReaderLogger sets the reader's logger.
func WithReaderLogger(l *slog.Logger) ReaderOption {
	return options.NoError("WithReaderLogger", func(c *ReaderConfig) {
		c.logger = l
	})
}
