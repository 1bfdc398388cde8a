package compress

import (
	"io"

	"github.com/klauspost/compress/s2"

	"github.com/arloliu/pagesort/format"
)

// S2Codec streams data in the S2 framing format.
type S2Codec struct{}

var _ Codec = (*S2Codec)(nil)

// NewS2Codec creates a new S2 codec.
func NewS2Codec() S2Codec {
	return S2Codec{}
}

// NewWriter returns an S2 stream writer. Close flushes the final block.
func (c S2Codec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return s2.NewWriter(w), nil
}

// NewReader returns an S2 stream reader.
func (c S2Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return nopReadCloser{s2.NewReader(r)}, nil
}

// Type returns format.CompressionS2.
func (c S2Codec) Type() format.CompressionType {
	return format.CompressionS2
}
