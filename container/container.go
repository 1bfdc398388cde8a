package container

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/arloliu/pagesort/errs"
	"github.com/arloliu/pagesort/internal/logging"
	"github.com/arloliu/pagesort/internal/options"
	"github.com/arloliu/pagesort/record"
)

// Container is a random-access array of records backed by a file, of which
// at most one chunk is resident in memory at a time.
//
// A Container is not safe for concurrent use. Concurrent workers each take
// their own View over the same backing file.
type Container[T record.Value] struct {
	win       window[T]
	st        *store[T]
	codec     record.Codec[T]
	chunkSize int
	growth    bool
	lineSize  int
	ownBuffer bool
	closed    bool
	logger    *slog.Logger
}

// New creates a container with no backing file. Call Prepare to attach one;
// otherwise the first access creates a temporary file removed on Close. In
// fixed mode that file is empty: the first access lands in the chunk buffer
// and later accesses are out of range.
func New[T record.Value](opts ...Option) (*Container[T], error) {
	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	codec := record.NewCodec[T](cfg.engine)
	size := codec.Size()

	var buf []T
	if cfg.placement != nil {
		placed, ok := cfg.placement.([]T)
		if !ok {
			return nil, fmt.Errorf("%w: buffer type %T does not match record type", errs.ErrInvalidOption, cfg.placement)
		}
		buf = placed
	}

	maxElems := cfg.chunkSize / size
	if buf != nil && len(buf) < maxElems {
		maxElems = len(buf)
	}
	if maxElems < 1 {
		return nil, fmt.Errorf("%w: %d bytes for %d-byte records", errs.ErrInvalidChunkSize, cfg.chunkSize, size)
	}

	c := &Container[T]{
		codec:     codec,
		chunkSize: maxElems * size,
		growth:    cfg.growth,
		lineSize:  cfg.lineSize,
		logger:    cfg.logger,
	}
	if c.logger == nil {
		c.logger = logging.L
	}

	if buf == nil {
		buf = make([]T, maxElems)
		c.ownBuffer = true
	}
	c.win = newWindow[T](nil, buf[:maxElems])

	return c, nil
}

// attach replaces the backing store. Any previous store is flushed and closed.
func (c *Container[T]) attach(f *os.File, path string, temp bool) error {
	if err := c.detach(); err != nil {
		f.Close()
		return err
	}

	st, err := openStore(f, path, temp, c.codec, c.growth, c.logger)
	if err != nil {
		f.Close()
		return err
	}
	c.st = st
	c.win.st = st
	c.win.loaded = noChunk

	return nil
}

func (c *Container[T]) detach() error {
	if c.st == nil {
		return nil
	}

	flushErr := c.win.invalidate()
	closeErr := c.st.close()
	c.st = nil
	c.win.st = nil

	return errors.Join(flushErr, closeErr)
}

// bootstrap creates the throwaway backing file used when the container is
// accessed before Prepare.
func (c *Container[T]) bootstrap() error {
	f, err := os.CreateTemp("", "pagesort-*.wf")
	if err != nil {
		return fmt.Errorf("%w: create temporary backing file: %w", errs.ErrIO, err)
	}
	c.logger.Debug("created temporary backing file", "path", f.Name())

	if err := c.attach(f, f.Name(), true); err != nil {
		return err
	}

	return c.win.load(0)
}

func (c *Container[T]) ready() error {
	if c.closed {
		return errs.ErrClosed
	}
	if c.st == nil {
		return c.bootstrap()
	}

	return nil
}

// firstAccess bootstraps the temporary backing file on the first Get or Set.
// In fixed mode the new file holds no records, so that access is served from
// buffer slot i mod MaxElements and never reaches the file; served reports
// whether it was.
func (c *Container[T]) firstAccess(i int64) (rel int, served bool, err error) {
	if c.closed || c.st != nil {
		return 0, false, c.ready()
	}
	if err := c.bootstrap(); err != nil {
		return 0, false, err
	}
	if c.growth {
		return 0, false, nil
	}
	if i < 0 {
		return 0, false, fmt.Errorf("%w: index %d", errs.ErrOutOfRange, i)
	}

	return int(i % int64(c.win.maxElems)), true, nil
}

// Get returns the record at index i, paging its chunk in when needed.
func (c *Container[T]) Get(i int64) (T, error) {
	rel, served, err := c.firstAccess(i)
	if err != nil {
		return 0, err
	}
	if served {
		return c.win.buf[rel], nil
	}

	return c.win.get(i)
}

// Set stores v at index i. The change reaches the backing file when its
// chunk is evicted or on Flush.
func (c *Container[T]) Set(i int64, v T) error {
	rel, served, err := c.firstAccess(i)
	if err != nil {
		return err
	}
	if served {
		c.win.buf[rel] = v
		return nil
	}

	return c.win.set(i, v)
}

// Flush writes the resident chunk's modified records back to the file. In
// growth mode the file is also extended to Len() records.
func (c *Container[T]) Flush() error {
	if c.closed {
		return errs.ErrClosed
	}
	if c.st == nil {
		return nil
	}

	return c.win.flush()
}

// Sync flushes and then forces the file contents to stable storage.
func (c *Container[T]) Sync() error {
	if err := c.Flush(); err != nil {
		return err
	}
	if c.st == nil {
		return nil
	}

	return c.st.sync()
}

// Invalidate flushes and drops the resident chunk, so the next access reads
// from the file. Use it after other views have written to the file.
func (c *Container[T]) Invalidate() error {
	if c.closed {
		return errs.ErrClosed
	}
	if c.st == nil {
		return nil
	}

	return c.win.invalidate()
}

// View creates an independent chunk window over the container's backing
// file, paging through buf (or a freshly allocated chunk when buf is empty).
//
// Views flush only the records they modified, so views working on disjoint
// index ranges may run concurrently. The container's own window must not
// hold unflushed changes to those ranges; call Invalidate first.
func (c *Container[T]) View(buf []T) (*View[T], error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	if len(buf) == 0 {
		buf = make([]T, c.win.maxElems)
	}

	return &View[T]{win: newWindow(c.st, buf)}, nil
}

// Close flushes the resident chunk and closes the backing file. A temporary
// backing file is removed. Views must be closed first.
func (c *Container[T]) Close() error {
	if c.closed {
		return nil
	}

	err := c.detach()
	c.closed = true
	if c.ownBuffer {
		c.win.buf = nil
	}

	return err
}

// Len returns the number of records in the container.
func (c *Container[T]) Len() int64 {
	if c.st == nil {
		return 0
	}

	return c.st.len()
}

// ChunkSize returns the resident chunk size in bytes.
func (c *Container[T]) ChunkSize() int {
	return c.chunkSize
}

// MaxElements returns the number of records per chunk.
func (c *Container[T]) MaxElements() int {
	return c.win.maxElems
}

// Path returns the backing file path, or "" before one is attached.
func (c *Container[T]) Path() string {
	if c.st == nil {
		return ""
	}

	return c.st.path
}

// Growth reports whether the container is in growth mode.
func (c *Container[T]) Growth() bool {
	return c.growth
}

// Codec returns the record codec used for the backing file.
func (c *Container[T]) Codec() record.Codec[T] {
	return c.codec
}

// Logger returns the container's logger.
func (c *Container[T]) Logger() *slog.Logger {
	return c.logger
}
