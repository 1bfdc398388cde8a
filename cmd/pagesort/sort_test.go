package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/pagesort/container"
	"github.com/arloliu/pagesort/errs"
)

func TestRunSort(t *testing.T) {
	dir := resetFlags(t)
	src := writeInput(t, dir, "3.0\n1.0\n2.0\n")
	dst := filepath.Join(dir, "out.txt")
	quantiles = []float64{0, 0.5, 1}

	output, err := captureOutput(t, func() error {
		return runSort(context.Background(), []string{src, dst})
	})
	require.NoError(t, err)

	require.Contains(t, output, "3 records")
	require.Contains(t, output, "Validating...")
	require.Contains(t, output, "Validation passed")
	require.Contains(t, output, "Wrote 3 lines")
	require.Contains(t, output, "q0 = 1.0000000000e+00")
	require.Contains(t, output, "q0.5 = 2.0000000000e+00")
	require.Contains(t, output, "q1 = 3.0000000000e+00")

	out, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "1.0000000000e+00\n2.0000000000e+00\n3.0000000000e+00\n", string(out))
	require.FileExists(t, backingPath)
}

func TestRunSortTypesAndFlags(t *testing.T) {
	tests := []struct {
		name     string
		typ      string
		policy   string
		compress string
		want     string
	}{
		{name: "int64", typ: "int64", policy: "release", want: "-7\n0\n12\n"},
		{name: "int32 serial", typ: "int32", want: "-7\n0\n12\n"},
		{name: "float32", typ: "float32", want: "-7.0000000000e+00\n0.0000000000e+00\n1.2000000000e+01\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := resetFlags(t)
			src := writeInput(t, dir, "12\n-7\n0\n")
			dst := filepath.Join(dir, "out.txt")
			recordType = tt.typ
			if tt.policy != "" {
				policyName = tt.policy
			}
			syncBacking = true
			quiet = true

			output, err := captureOutput(t, func() error {
				return runSort(context.Background(), []string{src, dst})
			})
			require.NoError(t, err)
			require.Empty(t, output)

			out, err := os.ReadFile(dst)
			require.NoError(t, err)
			require.Equal(t, tt.want, string(out))
		})
	}
}

func TestRunSortErrors(t *testing.T) {
	t.Run("missing source", func(t *testing.T) {
		dir := resetFlags(t)
		_, err := captureOutput(t, func() error {
			return runSort(context.Background(), []string{filepath.Join(dir, "nope.txt"), filepath.Join(dir, "out.txt")})
		})
		require.ErrorIs(t, err, errs.ErrIO)
	})

	t.Run("bad record type", func(t *testing.T) {
		dir := resetFlags(t)
		recordType = "complex128"
		err := runSort(context.Background(), []string{writeInput(t, dir, "1\n"), filepath.Join(dir, "out.txt")})
		require.ErrorIs(t, err, errs.ErrInvalidOption)
	})

	t.Run("bad policy", func(t *testing.T) {
		dir := resetFlags(t)
		policyName = "greedy"
		err := runSort(context.Background(), []string{writeInput(t, dir, "1\n"), filepath.Join(dir, "out.txt")})
		require.ErrorIs(t, err, errs.ErrInvalidOption)
	})

	t.Run("bad compression", func(t *testing.T) {
		dir := resetFlags(t)
		compression = "brotli"
		err := runSort(context.Background(), []string{writeInput(t, dir, "1\n"), filepath.Join(dir, "out.txt")})
		require.ErrorIs(t, err, errs.ErrInvalidCompression)
	})
}

func TestRootCommandArgs(t *testing.T) {
	resetFlags(t)
	rootCmd.SetArgs([]string{"only-one"})
	rootCmd.SetOut(new(discard))
	rootCmd.SetErr(new(discard))
	defer rootCmd.SetArgs(nil)

	require.Error(t, rootCmd.Execute())
}

type discard struct{}

func (*discard) Write(p []byte) (int, error) { return len(p), nil }

func TestContainerOptionsFixedMode(t *testing.T) {
	dir := resetFlags(t)
	chunkSize = 64
	src := writeInput(t, dir, "2\n1\n")

	c, err := container.New[float64](containerOptions()...)
	require.NoError(t, err)
	defer c.Close()
	require.False(t, c.Growth())
	require.Equal(t, 8, c.MaxElements())

	n, err := c.Prepare(src, backingPath)
	require.NoError(t, err)
	_, err = c.Get(n)
	require.ErrorIs(t, err, errs.ErrOutOfRange)
}
