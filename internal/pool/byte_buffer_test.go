package pool

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBuffer_Sized(t *testing.T) {
	bb := NewByteBuffer(8)

	b := bb.Sized(4)
	require.Len(t, b, 4)
	require.Equal(t, 8, bb.Cap())

	b = bb.Sized(32)
	require.Len(t, b, 32)
	require.GreaterOrEqual(t, bb.Cap(), 32)

	b = bb.Sized(0)
	require.Empty(t, b)
}

func TestByteBuffer_Grow(t *testing.T) {
	t.Run("sufficient capacity is a no-op", func(t *testing.T) {
		bb := NewByteBuffer(64)
		bb.Grow(10)
		require.Equal(t, 64, bb.Cap())
	})

	t.Run("small buffer grows by default size", func(t *testing.T) {
		bb := NewByteBuffer(16)
		_, _ = bb.Write(make([]byte, 16))
		bb.Grow(1)
		require.Equal(t, 16+LineBufferDefaultSize, bb.Cap())
		require.Equal(t, 16, bb.Len())
	})

	t.Run("large buffer grows by a quarter", func(t *testing.T) {
		size := 8 * LineBufferDefaultSize
		bb := NewByteBuffer(size)
		_, _ = bb.Write(make([]byte, size))
		bb.Grow(1)
		require.Equal(t, size+size/4, bb.Cap())
	})

	t.Run("large request wins", func(t *testing.T) {
		bb := NewByteBuffer(0)
		bb.Grow(LineBufferDefaultSize * 3)
		require.GreaterOrEqual(t, bb.Cap(), LineBufferDefaultSize*3)
	})

	t.Run("preserves data", func(t *testing.T) {
		bb := NewByteBuffer(2)
		_, _ = bb.Write([]byte("ab"))
		bb.Grow(100)
		require.Equal(t, []byte("ab"), bb.Bytes())
	})
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("boom") }

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(4)
	_, _ = bb.Write([]byte("hello"))

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	require.Equal(t, int64(5), n)
	require.Equal(t, "hello", out.String())

	_, err = bb.WriteTo(failingWriter{})
	require.EqualError(t, err, "boom")
}

func TestByteBufferPool(t *testing.T) {
	t.Run("put resets buffer", func(t *testing.T) {
		p := NewByteBufferPool(16, 0)
		bb := p.Get()
		_, _ = bb.Write([]byte("data"))
		p.Put(bb)

		got := p.Get()
		require.Zero(t, got.Len())
	})

	t.Run("oversized buffers are discarded", func(t *testing.T) {
		p := NewByteBufferPool(16, 32)
		bb := p.Get()
		bb.Grow(1024)
		p.Put(bb)

		got := p.Get()
		require.LessOrEqual(t, got.Cap(), 32)
	})

	t.Run("nil put is ignored", func(t *testing.T) {
		p := NewByteBufferPool(16, 0)
		require.NotPanics(t, func() { p.Put(nil) })
	})

	t.Run("default pools", func(t *testing.T) {
		io := GetIOBuffer()
		require.GreaterOrEqual(t, io.Cap(), IOBufferDefaultSize)
		PutIOBuffer(io)

		line := GetLineBuffer()
		require.GreaterOrEqual(t, line.Cap(), LineBufferDefaultSize)
		PutLineBuffer(line)
	})

	t.Run("concurrent access", func(t *testing.T) {
		p := NewByteBufferPool(64, 0)
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(id byte) {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					bb := p.Get()
					_, _ = bb.Write([]byte{id})
					require.Equal(t, 1, bb.Len())
					p.Put(bb)
				}
			}(byte(i))
		}
		wg.Wait()
	})
}
