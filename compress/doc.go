// Package compress provides streaming codecs for the text files that enter and
// leave pagesort.
//
// Source number files can be large, and the text export of a sorted backing
// file is highly repetitive, so both sides of the pipeline accept compressed
// streams. A Codec wraps an io.Writer or io.Reader:
//
//	codec, _ := compress.GetCodec(format.CompressionZstd)
//	w, _ := codec.NewWriter(file)
//	defer w.Close()
//
// # Supported Algorithms
//
//   - None: pass-through, used for plain .txt files
//   - Zstd: best ratio; klauspost/compress by default, libzstd through
//     valyala/gozstd when built with -tags gozstd and cgo enabled
//   - S2: klauspost/compress S2 stream framing, fastest to write
//   - LZ4: pierrec/lz4 frame format, fast to read back
//
// The codec for a path is normally picked by format.CompressionFromPath.
//
// # Thread Safety
//
// Codec values are stateless and safe for concurrent use. The writers and
// readers they return are not; each belongs to a single goroutine.
package compress
