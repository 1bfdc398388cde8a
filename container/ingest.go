package container

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/arloliu/pagesort/compress"
	"github.com/arloliu/pagesort/errs"
	"github.com/arloliu/pagesort/format"
	"github.com/arloliu/pagesort/internal/pool"
)

// Prepare attaches the container to the backing file at backing and loads
// its first chunk. It returns the number of records in the file.
//
// When backing does not exist it is created from src, a text file holding
// one record per line. Lines longer than the configured line size are
// truncated before parsing and blank lines are skipped. Sources ending in
// .zst, .s2 or .lz4 are decompressed, and a UTF-8 or UTF-16 byte order mark
// is honoured. When backing already exists it is used as is, but src must
// still be readable.
func (c *Container[T]) Prepare(src, backing string) (int64, error) {
	if c.closed {
		return 0, errs.ErrClosed
	}

	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("%w: open source: %w", errs.ErrIO, err)
	}
	defer in.Close()

	var f *os.File
	_, statErr := os.Stat(backing)
	switch {
	case statErr == nil:
		f, err = os.OpenFile(backing, os.O_RDWR, 0)
		if err != nil {
			return 0, fmt.Errorf("%w: open backing file: %w", errs.ErrIO, err)
		}
		c.logger.Info("using existing backing file", "path", backing)

	case errors.Is(statErr, os.ErrNotExist):
		f, err = os.OpenFile(backing, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return 0, fmt.Errorf("%w: create backing file: %w", errs.ErrIO, err)
		}

		n, convErr := c.convert(in, f, src)
		if convErr != nil {
			f.Close()
			os.Remove(backing)

			return 0, convErr
		}
		c.logger.Info("converted source to backing file", "source", src, "path", backing, "records", n)

	default:
		return 0, fmt.Errorf("%w: stat backing file: %w", errs.ErrIO, statErr)
	}

	if err := c.attach(f, backing, false); err != nil {
		return 0, err
	}
	if err := c.win.load(0); err != nil {
		return 0, err
	}

	return c.Len(), nil
}

// convert parses the text lines of in and writes their binary records to out.
func (c *Container[T]) convert(in io.Reader, out io.Writer, src string) (int64, error) {
	codec, err := compress.GetCodec(format.CompressionFromPath(src))
	if err != nil {
		return 0, err
	}

	rc, err := codec.NewReader(in)
	if err != nil {
		return 0, fmt.Errorf("%w: open %s stream: %w", errs.ErrIO, codec.Type(), err)
	}
	defer rc.Close()

	decoded := transform.NewReader(rc, unicode.BOMOverride(transform.Nop))
	br := bufio.NewReaderSize(decoded, pool.IOBufferDefaultSize)
	bw := bufio.NewWriterSize(out, pool.IOBufferDefaultSize)

	lb := pool.GetLineBuffer()
	defer pool.PutLineBuffer(lb)
	rb := pool.GetIOBuffer()
	defer pool.PutIOBuffer(rb)

	var count int64
	for lineNo := 1; ; lineNo++ {
		line, readErr := readLine(br, lb.B[:0], c.lineSize-1)
		lb.B = line[:0]

		if text := bytes.TrimSpace(line); len(text) > 0 {
			v, parseErr := c.codec.Parse(string(text))
			if parseErr != nil {
				return count, fmt.Errorf("%s line %d: %w", src, lineNo, parseErr)
			}

			rb.B = c.codec.Append(rb.B, v)
			count++

			if rb.Len() >= pool.IOBufferDefaultSize {
				if _, err := rb.WriteTo(bw); err != nil {
					return count, fmt.Errorf("%w: write backing file: %w", errs.ErrIO, err)
				}
				rb.Reset()
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}

			return count, fmt.Errorf("%w: read %s line %d: %w", errs.ErrIO, src, lineNo, readErr)
		}
	}

	if _, err := rb.WriteTo(bw); err != nil {
		return count, fmt.Errorf("%w: write backing file: %w", errs.ErrIO, err)
	}
	if err := bw.Flush(); err != nil {
		return count, fmt.Errorf("%w: write backing file: %w", errs.ErrIO, err)
	}

	return count, nil
}

// readLine appends at most limit bytes of the next line to dst and discards
// the rest of the line. The terminator is kept when it fits. At end of input
// it returns the final partial line together with io.EOF.
func readLine(br *bufio.Reader, dst []byte, limit int) ([]byte, error) {
	for {
		frag, err := br.ReadSlice('\n')
		if room := limit - len(dst); room > 0 {
			dst = append(dst, frag[:min(room, len(frag))]...)
		}

		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}

		return dst, err
	}
}
