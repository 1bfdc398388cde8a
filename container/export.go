package container

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/arloliu/pagesort/compress"
	"github.com/arloliu/pagesort/errs"
	"github.com/arloliu/pagesort/format"
	"github.com/arloliu/pagesort/internal/hash"
	"github.com/arloliu/pagesort/internal/options"
	"github.com/arloliu/pagesort/internal/pool"
)

// ExportText writes every record to dst as one text line, in index order,
// and returns the number of lines written. Floats are written in scientific
// notation with ten fractional digits, integers in decimal.
//
// The output is compressed according to WithExportCompression, or to the
// extension of dst when the option is absent. A failure to read the backing
// file is logged and ends the export early without an error; failures on
// dst are returned.
func (c *Container[T]) ExportText(dst string, opts ...ExportOption) (int64, error) {
	if err := c.Flush(); err != nil {
		return 0, err
	}

	cfg := &ExportConfig{compression: format.CompressionFromPath(dst)}
	if err := options.Apply(cfg, opts...); err != nil {
		return 0, err
	}

	codec, err := compress.GetCodec(cfg.compression)
	if err != nil {
		return 0, err
	}

	out, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("%w: create export file: %w", errs.ErrIO, err)
	}

	cw, err := codec.NewWriter(out)
	if err != nil {
		out.Close()
		return 0, fmt.Errorf("%w: open %s stream: %w", errs.ErrIO, codec.Type(), err)
	}

	bw := bufio.NewWriterSize(cw, pool.IOBufferDefaultSize)
	n, copyErr := c.copyText(bw)

	if err := bw.Flush(); err != nil {
		copyErr = errors.Join(copyErr, fmt.Errorf("%w: write %s: %w", errs.ErrIO, dst, err))
	}
	if err := cw.Close(); err != nil {
		copyErr = errors.Join(copyErr, fmt.Errorf("%w: finish %s: %w", errs.ErrIO, dst, err))
	}
	if err := out.Close(); err != nil {
		copyErr = errors.Join(copyErr, fmt.Errorf("%w: close %s: %w", errs.ErrIO, dst, err))
	}

	if copyErr != nil {
		return n, copyErr
	}
	c.logger.Debug("exported records", "path", dst, "records", n, "compression", cfg.compression)

	return n, nil
}

func (c *Container[T]) copyText(w io.Writer) (int64, error) {
	if c.st == nil {
		return 0, nil
	}

	size := c.codec.Size()
	blockRecords := max(1, pool.IOBufferDefaultSize/size)

	bb := pool.GetIOBuffer()
	defer pool.PutIOBuffer(bb)
	lb := pool.GetLineBuffer()
	defer pool.PutLineBuffer(lb)

	stage := bb.Sized(blockRecords * size)
	recs := make([]T, blockRecords)
	end := c.Len() * int64(size)

	var off, count int64
	for off < end {
		want := int(min(int64(len(stage)), end-off))
		n, err := c.st.file.ReadAt(stage[:want], off)

		k := c.codec.Decode(recs, stage[:n])
		for _, v := range recs[:k] {
			lb.B = c.codec.AppendText(lb.B[:0], v)
			lb.B = append(lb.B, '\n')
			if _, werr := w.Write(lb.B); werr != nil {
				return count, fmt.Errorf("%w: write export: %w", errs.ErrIO, werr)
			}
			count++
		}
		off += int64(k * size)

		if err != nil {
			if errors.Is(err, io.EOF) {
				c.logger.Debug("reached end of backing file", "path", c.st.path, "offset", off)
			} else {
				c.logger.Error("failed to read backing file, export truncated", "path", c.st.path, "offset", off, "error", err)
			}

			break
		}
	}

	return count, nil
}

// Fingerprint flushes the resident chunk and returns the order-independent
// fingerprint of all records in the backing file.
func (c *Container[T]) Fingerprint() (hash.Fingerprint, error) {
	var fp hash.Fingerprint
	if err := c.Flush(); err != nil {
		return fp, err
	}
	if c.st == nil {
		return fp, nil
	}

	size := c.codec.Size()
	blockRecords := max(1, pool.IOBufferDefaultSize/size)

	bb := pool.GetIOBuffer()
	defer pool.PutIOBuffer(bb)
	stage := bb.Sized(blockRecords * size)
	end := c.Len() * int64(size)

	for off := int64(0); off < end; {
		want := int(min(int64(len(stage)), end-off))
		n, err := c.st.file.ReadAt(stage[:want], off)
		fp.AddBlock(stage[:n], size)
		off += int64(n)

		if err != nil {
			if errors.Is(err, io.EOF) && off >= end {
				break
			}

			return fp, fmt.Errorf("%w: fingerprint %s at byte %d: %w", errs.ErrIO, c.st.path, off, err)
		}
	}

	return fp, nil
}
