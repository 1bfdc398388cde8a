package pool

import (
	"io"
	"sync"
)

// Default sizes for the shared pools.
const (
	IOBufferDefaultSize    = 1024 * 64       // 64KiB, staging for record block reads and writes
	IOBufferMaxThreshold   = 1024 * 1024 * 4 // 4MiB
	LineBufferDefaultSize  = 1024 * 16       // 16KiB, formatted text lines before they hit the writer
	LineBufferMaxThreshold = 1024 * 256      // 256KiB
)

type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer but keeps the allocated memory.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// Sized returns the buffer resized to exactly n bytes, reallocating when the
// capacity is too small. Existing content is not preserved on reallocation.
func (bb *ByteBuffer) Sized(n int) []byte {
	if cap(bb.B) < n {
		bb.B = make([]byte, n)
	}
	bb.B = bb.B[:n]

	return bb.B
}

// Grow ensures the buffer can take requiredBytes more bytes without reallocating.
//
// Small buffers grow by LineBufferDefaultSize; larger ones by 25% of their
// capacity, or by requiredBytes when that is more.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := LineBufferDefaultSize
	if cap(bb.B) > 4*LineBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}
	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write appends data to the buffer, growing it as needed.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool is a sync.Pool of ByteBuffers.
//
// Buffers whose capacity grew past maxThreshold are dropped on Put instead of
// being retained, so one oversized export does not pin memory forever.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool handing out buffers of defaultSize capacity.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	ioDefaultPool   = NewByteBufferPool(IOBufferDefaultSize, IOBufferMaxThreshold)
	lineDefaultPool = NewByteBufferPool(LineBufferDefaultSize, LineBufferMaxThreshold)
)

// GetIOBuffer retrieves a staging buffer for record block I/O.
func GetIOBuffer() *ByteBuffer {
	return ioDefaultPool.Get()
}

// PutIOBuffer returns a staging buffer to the pool.
func PutIOBuffer(bb *ByteBuffer) {
	ioDefaultPool.Put(bb)
}

// GetLineBuffer retrieves a buffer for formatting text lines.
func GetLineBuffer() *ByteBuffer {
	return lineDefaultPool.Get()
}

// PutLineBuffer returns a line buffer to the pool.
func PutLineBuffer(bb *ByteBuffer) {
	lineDefaultPool.Put(bb)
}
