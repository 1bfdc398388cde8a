package compress

import (
	"fmt"
	"io"

	"github.com/arloliu/pagesort/errs"
	"github.com/arloliu/pagesort/format"
)

// Codec wraps plain byte streams in a compressed framing.
//
// Both constructors return a wrapper that must be closed when the caller is
// done with it. Closing a writer finalizes the compressed stream; neither
// wrapper closes the underlying io.Writer or io.Reader.
type Codec interface {
	// NewWriter returns a writer that compresses everything written to it into w.
	NewWriter(w io.Writer) (io.WriteCloser, error)

	// NewReader returns a reader that decompresses the stream read from r.
	NewReader(r io.Reader) (io.ReadCloser, error)

	// Type reports the compression type implemented by the codec.
	Type() format.CompressionType
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCodec(),
	format.CompressionZstd: NewZstdCodec(),
	format.CompressionS2:   NewS2Codec(),
	format.CompressionLZ4:  NewLZ4Codec(),
}

// GetCodec retrieves a built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrInvalidCompression, compressionType)
}

// nopReadCloser adapts an io.Reader whose codec needs no cleanup.
type nopReadCloser struct {
	io.Reader
}

func (nopReadCloser) Close() error { return nil }
