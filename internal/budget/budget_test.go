package budget

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConsumeOnly(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		forks int
	}{
		{name: "zero", n: 0, forks: 0},
		{name: "one", n: 1, forks: 0},
		{name: "two", n: 2, forks: 1},
		{name: "odd rounds down", n: 7, forks: 3},
		{name: "eight", n: 8, forks: 4},
		{name: "negative", n: -3, forks: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewConsumeOnly(tt.n)
			granted := 0
			for b.TryReserve() {
				granted++
				b.Release()
			}
			require.Equal(t, tt.forks, granted)
			require.Zero(t, b.Available())

			b.Reset()
			require.Equal(t, tt.forks*PairCost, b.Available())
		})
	}
}

func TestConsumeOnlyConcurrent(t *testing.T) {
	b := NewConsumeOnly(64)

	var granted atomic.Int64
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if b.TryReserve() {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(32), granted.Load())
	require.Zero(t, b.Available())
}

func TestReleasing(t *testing.T) {
	b := NewReleasing(4)
	require.Equal(t, 4, b.Available())

	require.True(t, b.TryReserve())
	require.True(t, b.TryReserve())
	require.False(t, b.TryReserve())
	require.Zero(t, b.Available())

	b.Release()
	require.Equal(t, 2, b.Available())
	require.True(t, b.TryReserve())

	b.Release()
	b.Release()
	b.Reset()
	require.Equal(t, 4, b.Available())
}

func TestReleasingZero(t *testing.T) {
	for _, n := range []int{0, 1} {
		b := NewReleasing(n)
		require.False(t, b.TryReserve())
		require.Zero(t, b.Available())
	}
}

func TestBudgetInterface(t *testing.T) {
	var _ Budget = NewConsumeOnly(2)
	var _ Budget = NewReleasing(2)
}
