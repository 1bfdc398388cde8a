// Package record defines the fixed-size scalar records stored in backing
// files and the codec that moves them between memory, disk and text.
//
// A record is any integer or floating-point type. Its binary form is its
// in-memory representation laid out by an endian.EndianEngine; when the engine
// matches the host byte order whole blocks are copied without conversion.
//
//	codec := record.NewCodec[float64](endian.GetNativeEngine())
//	buf := make([]byte, codec.Size()*len(values))
//	codec.Encode(buf, values)
//
// Text lines use scientific notation with ten fractional digits for floats
// (1.0000000000e+00) and plain decimal for integers.
package record

import (
	"fmt"
	"reflect"
	"strconv"
	"unsafe"

	"golang.org/x/exp/constraints"

	"github.com/arloliu/pagesort/endian"
	"github.com/arloliu/pagesort/errs"
)

// Value is the set of types a backing file can hold.
type Value interface {
	constraints.Integer | constraints.Float
}

// TextPrecision is the number of fractional digits written for float records.
const TextPrecision = 10

type class uint8

const (
	classSigned class = iota
	classUnsigned
	classFloat
)

// Codec encodes and decodes records of type T. The zero value is not usable;
// create one with NewCodec. Codecs are immutable and safe for concurrent use.
type Codec[T Value] struct {
	size   int
	engine endian.EndianEngine
	native bool
	class  class
}

// NewCodec creates a codec laying records out with engine.
// A nil engine selects the host byte order.
func NewCodec[T Value](engine endian.EndianEngine) Codec[T] {
	if engine == nil {
		engine = endian.GetNativeEngine()
	}

	var zero T
	c := Codec[T]{
		size:   int(unsafe.Sizeof(zero)),
		engine: engine,
		native: endian.IsNative(engine),
	}

	switch reflect.TypeFor[T]().Kind() { //nolint: exhaustive
	case reflect.Float32, reflect.Float64:
		c.class = classFloat
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		c.class = classUnsigned
	default:
		c.class = classSigned
	}

	return c
}

// Size returns the encoded size of one record in bytes.
func (c Codec[T]) Size() int {
	return c.size
}

// Engine returns the byte order engine used by the codec.
func (c Codec[T]) Engine() endian.EndianEngine {
	return c.engine
}

// Encode writes src into dst, which must hold at least len(src)*Size() bytes.
func (c Codec[T]) Encode(dst []byte, src []T) {
	if len(src) == 0 {
		return
	}
	if c.native {
		copy(dst, asBytes(src))
		return
	}

	for i := range src {
		c.put(dst[i*c.size:], &src[i])
	}
}

// Decode fills dst from src and returns the number of records decoded, which
// is min(len(dst), len(src)/Size()).
func (c Codec[T]) Decode(dst []T, src []byte) int {
	n := min(len(dst), len(src)/c.size)
	if n == 0 {
		return 0
	}
	if c.native {
		copy(asBytes(dst[:n]), src)
		return n
	}

	for i := 0; i < n; i++ {
		c.get(src[i*c.size:], &dst[i])
	}

	return n
}

// Append appends the binary form of v to dst.
func (c Codec[T]) Append(dst []byte, v T) []byte {
	start := len(dst)
	for i := 0; i < c.size; i++ {
		dst = append(dst, 0)
	}
	c.put(dst[start:], &v)

	return dst
}

func (c Codec[T]) put(dst []byte, v *T) {
	p := unsafe.Pointer(v)
	switch c.size {
	case 1:
		dst[0] = *(*uint8)(p)
	case 2:
		c.engine.PutUint16(dst, *(*uint16)(p))
	case 4:
		c.engine.PutUint32(dst, *(*uint32)(p))
	case 8:
		c.engine.PutUint64(dst, *(*uint64)(p))
	}
}

func (c Codec[T]) get(src []byte, v *T) {
	p := unsafe.Pointer(v)
	switch c.size {
	case 1:
		*(*uint8)(p) = src[0]
	case 2:
		*(*uint16)(p) = c.engine.Uint16(src)
	case 4:
		*(*uint32)(p) = c.engine.Uint32(src)
	case 8:
		*(*uint64)(p) = c.engine.Uint64(src)
	}
}

// AppendText appends the text form of v, without a line terminator.
func (c Codec[T]) AppendText(dst []byte, v T) []byte {
	switch c.class {
	case classFloat:
		return strconv.AppendFloat(dst, float64(v), 'e', TextPrecision, c.size*8)
	case classUnsigned:
		return strconv.AppendUint(dst, uint64(v), 10)
	default:
		return strconv.AppendInt(dst, int64(v), 10)
	}
}

// FormatText returns the text form of v.
func (c Codec[T]) FormatText(v T) string {
	return string(c.AppendText(nil, v))
}

// Parse converts one line of source text into a record.
func (c Codec[T]) Parse(s string) (T, error) {
	switch c.class {
	case classFloat:
		f, err := strconv.ParseFloat(s, c.size*8)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", errs.ErrInvalidRecord, s)
		}

		return T(f), nil
	case classUnsigned:
		u, err := strconv.ParseUint(s, 10, c.size*8)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", errs.ErrInvalidRecord, s)
		}

		return T(u), nil
	default:
		i, err := strconv.ParseInt(s, 10, c.size*8)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", errs.ErrInvalidRecord, s)
		}

		return T(i), nil
	}
}

// asBytes views a record slice as its raw bytes without copying.
func asBytes[T Value](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T

	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(zero)))
}
