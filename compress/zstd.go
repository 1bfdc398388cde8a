package compress

import "github.com/arloliu/pagesort/format"

// ZstdCodec streams data as Zstandard frames.
//
// The pure Go implementation from klauspost/compress is used by default.
// Building with the gozstd and cgo tags switches to the libzstd binding.
type ZstdCodec struct{}

var _ Codec = (*ZstdCodec)(nil)

// NewZstdCodec creates a new Zstd codec.
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}

// Type returns format.CompressionZstd.
func (c ZstdCodec) Type() format.CompressionType {
	return format.CompressionZstd
}
