package container

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sync/atomic"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/arloliu/pagesort/errs"
	"github.com/arloliu/pagesort/internal/logging"
	"github.com/arloliu/pagesort/internal/options"
	"github.com/arloliu/pagesort/record"
)

// Reader gives read-only random access to a finished backing file. Blocks
// of records are decoded once and kept in a bounded admission cache, so
// repeated probes such as binary searches and quantile lookups touch the
// disk rarely. A Reader is safe for concurrent use.
type Reader[T record.Value] struct {
	file       *os.File
	path       string
	codec      record.Codec[T]
	count      int64
	blockElems int
	cache      *ristretto.Cache[int64, []T]
	logger     *slog.Logger
	closed     atomic.Bool
	blockLoads atomic.Int64
}

// OpenReader opens the backing file at path for cached read-only access.
func OpenReader[T record.Value](path string, opts ...ReaderOption) (*Reader[T], error) {
	cfg := &ReaderConfig{
		blockSize: DefaultReaderBlockSize,
		cacheSize: DefaultReaderCacheSize,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.logger == nil {
		cfg.logger = logging.L
	}

	codec := record.NewCodec[T](cfg.engine)
	size := codec.Size()
	blockElems := max(1, cfg.blockSize/size)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", errs.ErrIO, path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: stat %s: %w", errs.ErrIO, path, err)
	}

	maxBlocks := max(1, cfg.cacheSize/int64(blockElems*size))
	cache, err := ristretto.NewCache(&ristretto.Config[int64, []T]{
		NumCounters: maxBlocks * 10,
		MaxCost:     cfg.cacheSize,
		BufferItems: 64,
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create block cache: %w", err)
	}

	return &Reader[T]{
		file:       f,
		path:       path,
		codec:      codec,
		count:      info.Size() / int64(size),
		blockElems: blockElems,
		cache:      cache,
		logger:     cfg.logger,
	}, nil
}

// Len returns the number of records in the file.
func (r *Reader[T]) Len() int64 {
	return r.count
}

// At returns the record at index i.
func (r *Reader[T]) At(i int64) (T, error) {
	if r.closed.Load() {
		return 0, errs.ErrClosed
	}
	if i < 0 || i >= r.count {
		return 0, fmt.Errorf("%w: index %d, length %d", errs.ErrOutOfRange, i, r.count)
	}

	blk, err := r.block(i / int64(r.blockElems))
	if err != nil {
		return 0, err
	}

	return blk[i%int64(r.blockElems)], nil
}

func (r *Reader[T]) block(idx int64) ([]T, error) {
	if blk, ok := r.cache.Get(idx); ok {
		return blk, nil
	}

	start := idx * int64(r.blockElems)
	n := int(min(int64(r.blockElems), r.count-start))
	size := r.codec.Size()

	raw := make([]byte, n*size)
	if _, err := r.file.ReadAt(raw, start*int64(size)); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: read %s block %d: %w", errs.ErrIO, r.path, idx, err)
	}

	blk := make([]T, n)
	r.codec.Decode(blk, raw)
	r.cache.Set(idx, blk, int64(len(raw)))
	r.blockLoads.Add(1)

	return blk, nil
}

// LowerBound returns the index of the first record not less than v, or Len()
// when every record is smaller. The file must be sorted.
func (r *Reader[T]) LowerBound(v T) (int64, error) {
	lo, hi := int64(0), r.count
	for lo < hi {
		mid := lo + (hi-lo)/2
		x, err := r.At(mid)
		if err != nil {
			return 0, err
		}
		if x < v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	return lo, nil
}

// Quantile returns the nearest-rank q-quantile of a sorted file, for q in
// [0, 1]. Quantile(0) is the minimum and Quantile(1) the maximum.
func (r *Reader[T]) Quantile(q float64) (T, error) {
	if math.IsNaN(q) || q < 0 || q > 1 {
		return 0, fmt.Errorf("%w: quantile %v outside [0, 1]", errs.ErrInvalidOption, q)
	}
	if r.count == 0 {
		return 0, fmt.Errorf("%w: quantile of empty file", errs.ErrOutOfRange)
	}

	rank := int64(math.Ceil(q*float64(r.count))) - 1
	rank = max(0, min(rank, r.count-1))

	return r.At(rank)
}

// Codec returns the record codec of the file.
func (r *Reader[T]) Codec() record.Codec[T] {
	return r.codec
}

// BlockLoads returns how many blocks were read from disk so far.
func (r *Reader[T]) BlockLoads() int64 {
	return r.blockLoads.Load()
}

// Close releases the cache and closes the file.
func (r *Reader[T]) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	r.cache.Close()

	if err := r.file.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", errs.ErrIO, r.path, err)
	}

	return nil
}
