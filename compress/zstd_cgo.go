//go:build cgo && gozstd

package compress

import (
	"io"

	"github.com/valyala/gozstd"
)

// NewWriter returns a libzstd stream writer at level 3.
func (c ZstdCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return &gozstdWriter{Writer: gozstd.NewWriterLevel(w, 3)}, nil
}

// NewReader returns a libzstd stream reader.
func (c ZstdCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return &gozstdReader{Reader: gozstd.NewReader(r)}, nil
}

// gozstdWriter releases the C encoder once the stream is finalized.
type gozstdWriter struct {
	*gozstd.Writer
}

func (w *gozstdWriter) Close() error {
	err := w.Writer.Close()
	w.Writer.Release()

	return err
}

type gozstdReader struct {
	*gozstd.Reader
}

func (r *gozstdReader) Close() error {
	r.Reader.Release()
	return nil
}
