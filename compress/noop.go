package compress

import (
	"io"

	"github.com/arloliu/pagesort/format"
)

// NoOpCodec passes bytes through unchanged. It is used for plain text
// sources and exports so callers never branch on "is compression enabled".
type NoOpCodec struct{}

var _ Codec = (*NoOpCodec)(nil)

// NewNoOpCodec creates a new pass-through codec.
func NewNoOpCodec() NoOpCodec {
	return NoOpCodec{}
}

// NewWriter returns w wrapped so that Close is a no-op.
func (c NoOpCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

// NewReader returns r wrapped so that Close is a no-op.
func (c NoOpCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return nopReadCloser{r}, nil
}

// Type returns format.CompressionNone.
func (c NoOpCodec) Type() format.CompressionType {
	return format.CompressionNone
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
