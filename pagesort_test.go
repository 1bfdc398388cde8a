package pagesort

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/pagesort/container"
	"github.com/arloliu/pagesort/errs"
	"github.com/arloliu/pagesort/format"
	"github.com/arloliu/pagesort/sorter"
)

func writeSource(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "input.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestSortFileScenario(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "3.0\n1.0\n2.0\n")
	dst := filepath.Join(dir, "out.txt")

	var stages []Stage
	report, err := SortFile[float64](context.Background(), src, dst,
		WithObserver(func(stage Stage, _ Report) { stages = append(stages, stage) }),
	)
	require.NoError(t, err)
	require.Equal(t, int64(3), report.Records)
	require.Equal(t, int64(3), report.Exported)
	require.Empty(t, report.Backing)
	require.Equal(t, []Stage{StageConverted, StageSorted, StageValidating, StageValidated, StageExported}, stages)

	out, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "1.0000000000e+00\n2.0000000000e+00\n3.0000000000e+00\n", string(out))
}

func TestSortFileLarge(t *testing.T) {
	dir := t.TempDir()
	rng := rand.New(rand.NewPCG(42, 7))
	values := make([]int64, 5000)
	var sb strings.Builder
	for i := range values {
		values[i] = rng.Int64N(1_000_000) - 500_000
		sb.WriteString(strconv.FormatInt(values[i], 10))
		sb.WriteByte('\n')
	}
	src := writeSource(t, dir, sb.String())
	dst := filepath.Join(dir, "out.txt.lz4")
	backing := filepath.Join(dir, "plane.wf")

	report, err := SortFile[int64](context.Background(), src, dst,
		WithBacking(backing),
		WithContainerOptions(container.WithChunkSize(512)),
		WithSorterOptions(sorter.WithChunkSize(512), sorter.WithWorkers(4)),
	)
	require.NoError(t, err)
	require.Equal(t, backing, report.Backing)
	require.Equal(t, int64(len(values)), report.Sort.Records)
	require.Equal(t, int64(len(values)), report.Sort.Fingerprint.Count)
	require.FileExists(t, backing)

	slices.Sort(values)
	r, err := OpenReader[int64](backing)
	require.NoError(t, err)
	defer r.Close()

	for _, i := range []int64{0, 1, 2500, 4999} {
		v, err := r.At(i)
		require.NoError(t, err)
		require.Equal(t, values[i], v)
	}

	median, err := r.Quantile(0.5)
	require.NoError(t, err)
	require.Equal(t, values[2499], median)
}

func TestSortFileReusesBacking(t *testing.T) {
	dir := t.TempDir()
	backing := filepath.Join(dir, "plane.wf")
	dst := filepath.Join(dir, "out.txt")

	src := writeSource(t, dir, "9\n8\n")
	_, err := SortFile[float64](context.Background(), src, dst, WithBacking(backing))
	require.NoError(t, err)

	// the second run sorts the existing backing file, not the new source
	writeSource(t, dir, "1\n")
	report, err := SortFile[float64](context.Background(), src, dst, WithBacking(backing))
	require.NoError(t, err)
	require.Equal(t, int64(2), report.Records)
}

func TestSortFileOptions(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "5\n-5\n0\n")
	dst := filepath.Join(dir, "out.bin")

	var stages []Stage
	report, err := SortFile[int32](context.Background(), src, dst,
		WithValidation(false),
		WithExportOptions(container.WithExportCompression(format.CompressionZstd)),
		WithObserver(func(stage Stage, _ Report) { stages = append(stages, stage) }),
	)
	require.NoError(t, err)
	require.Zero(t, report.Validate)
	require.NotContains(t, stages, StageValidating)

	raw, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.NotEqual(t, "-5\n0\n5\n", string(raw))
}

func TestSortFileErrors(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.txt")

	_, err := SortFile[float64](context.Background(), filepath.Join(dir, "missing.txt"), dst)
	require.ErrorIs(t, err, errs.ErrIO)

	src := writeSource(t, dir, "1\nnot-a-number\n")
	_, err = SortFile[float64](context.Background(), src, dst)
	require.ErrorIs(t, err, errs.ErrInvalidRecord)

	src = writeSource(t, dir, "1\n")
	_, err = SortFile[float64](context.Background(), src, dst, WithSorterOptions(sorter.WithChunkSize(8)))
	require.ErrorIs(t, err, errs.ErrInvalidChunkSize)
	require.NoFileExists(t, dst)
}

func TestOpenContainerAndSorter(t *testing.T) {
	dir := t.TempDir()
	var sb strings.Builder
	for i := 100; i > 0; i-- {
		fmt.Fprintf(&sb, "%d\n", i)
	}
	src := writeSource(t, dir, sb.String())

	c, n, err := OpenContainer[uint16](src, filepath.Join(dir, "plane.wf"))
	require.NoError(t, err)
	defer c.Close()
	require.Equal(t, int64(100), n)

	s, err := NewSorter[uint16](sorter.WithWorkers(2))
	require.NoError(t, err)
	require.NoError(t, s.Sort(context.Background(), c))
	require.NoError(t, s.Validate(context.Background(), c))

	first, err := c.Get(0)
	require.NoError(t, err)
	require.Equal(t, uint16(1), first)

	require.False(t, c.Growth())
	_, err = c.Get(n)
	require.ErrorIs(t, err, errs.ErrOutOfRange)
	require.Equal(t, n, c.Len())
}

func TestOpenContainerGrowthOverride(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "5\n4\n")

	c, n, err := OpenContainer[int32](src, filepath.Join(dir, "plane.wf"),
		container.WithDynamicGrowth(true))
	require.NoError(t, err)
	defer c.Close()

	require.True(t, c.Growth())
	require.NoError(t, c.Set(n, 3))
	require.Equal(t, n+1, c.Len())
}

func TestStageString(t *testing.T) {
	require.Equal(t, "sorted", StageSorted.String())
	require.Equal(t, "unknown", Stage(0).String())
}
