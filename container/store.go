package container

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/arloliu/pagesort/errs"
	"github.com/arloliu/pagesort/internal/fsutil"
	"github.com/arloliu/pagesort/internal/pool"
	"github.com/arloliu/pagesort/record"
)

// store is the backing file shared by a container and all of its views.
// Positioned I/O (ReadAt/WriteAt) keeps concurrent windows independent;
// only the logical length and the file extension need coordination.
type store[T record.Value] struct {
	file   *os.File
	path   string
	temp   bool
	codec  record.Codec[T]
	growth bool
	logger *slog.Logger

	count  atomic.Int64
	closed atomic.Bool

	mu       sync.Mutex // guards fileSize and file extension
	fileSize int64
}

func openStore[T record.Value](f *os.File, path string, temp bool, codec record.Codec[T], growth bool, logger *slog.Logger) (*store[T], error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", errs.ErrIO, path, err)
	}

	s := &store[T]{
		file:     f,
		path:     path,
		temp:     temp,
		codec:    codec,
		growth:   growth,
		logger:   logger,
		fileSize: info.Size(),
	}

	size := int64(codec.Size())
	if rem := info.Size() % size; rem != 0 {
		logger.Warn("ignoring trailing partial record", "path", path, "bytes", rem)
	}
	s.count.Store(info.Size() / size)

	return s, nil
}

func (s *store[T]) len() int64 {
	return s.count.Load()
}

// grow raises the logical length to at least n.
func (s *store[T]) grow(n int64) {
	for {
		cur := s.count.Load()
		if n <= cur || s.count.CompareAndSwap(cur, n) {
			return
		}
	}
}

// readRecords fills dst with records starting at index off and returns how
// many were read. Reads past the end of the file return a short count.
func (s *store[T]) readRecords(dst []T, off int64) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	size := s.codec.Size()
	bb := pool.GetIOBuffer()
	defer pool.PutIOBuffer(bb)

	stage := bb.Sized(len(dst) * size)
	n, err := s.file.ReadAt(stage, off*int64(size))
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("%w: read %s at record %d: %w", errs.ErrIO, s.path, off, err)
	}

	return s.codec.Decode(dst, stage[:n]), nil
}

// writeRecords writes src at record index off.
func (s *store[T]) writeRecords(src []T, off int64) error {
	if len(src) == 0 {
		return nil
	}

	size := s.codec.Size()
	bb := pool.GetIOBuffer()
	defer pool.PutIOBuffer(bb)

	stage := bb.Sized(len(src) * size)
	s.codec.Encode(stage, src)

	pos := off * int64(size)
	end := pos + int64(len(stage))

	// Writes past the current end hold the lock so extend cannot truncate
	// them away before fileSize catches up.
	s.mu.Lock()
	growing := end > s.fileSize
	if !growing {
		s.mu.Unlock()
	} else {
		defer s.mu.Unlock()
	}

	if _, err := s.file.WriteAt(stage, pos); err != nil {
		return fmt.Errorf("%w: write %s at record %d: %w", errs.ErrIO, s.path, off, err)
	}
	if growing {
		s.fileSize = end
	}

	return nil
}

// extend makes the file exactly cover the logical length when it is shorter.
// Records past the last write read back as zero.
func (s *store[T]) extend() error {
	want := s.len() * int64(s.codec.Size())

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fileSize >= want {
		return nil
	}
	if err := s.file.Truncate(want); err != nil {
		return fmt.Errorf("%w: extend %s to %d bytes: %w", errs.ErrIO, s.path, want, err)
	}
	s.fileSize = want

	return nil
}

func (s *store[T]) sync() error {
	if err := fsutil.Datasync(s.file); err != nil {
		return fmt.Errorf("%w: sync %s: %w", errs.ErrIO, s.path, err)
	}

	return nil
}

func (s *store[T]) close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	err := s.file.Close()
	if s.temp {
		if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			s.logger.Warn("failed to remove temporary backing file", "path", s.path, "error", rmErr)
		}
	}
	if err != nil {
		return fmt.Errorf("%w: close %s: %w", errs.ErrIO, s.path, err)
	}

	return nil
}
