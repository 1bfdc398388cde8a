package container

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/arloliu/pagesort/compress"
	"github.com/arloliu/pagesort/errs"
	"github.com/arloliu/pagesort/format"
)

func compressText(t *testing.T, ct format.CompressionType, text string) []byte {
	t.Helper()
	codec, err := compress.GetCodec(ct)
	require.NoError(t, err)

	var buf bytes.Buffer
	w, err := codec.NewWriter(&buf)
	require.NoError(t, err)
	_, err = io.WriteString(w, text)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return buf.Bytes()
}

func decompressFile(t *testing.T, ct format.CompressionType, path string) string {
	t.Helper()
	codec, err := compress.GetCodec(ct)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r, err := codec.NewReader(f)
	require.NoError(t, err)
	defer r.Close()

	data, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(data)
}

func TestPrepareCompressedSource(t *testing.T) {
	for _, ct := range []format.CompressionType{format.CompressionZstd, format.CompressionS2, format.CompressionLZ4} {
		t.Run(ct.String(), func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, "in.txt"+ct.Extension())
			require.NoError(t, os.WriteFile(src, compressText(t, ct, "2\n-1\n0.5\n"), 0o644))

			c, err := New[float64]()
			require.NoError(t, err)
			defer c.Close()

			n, err := c.Prepare(src, filepath.Join(dir, "plane.wf"))
			require.NoError(t, err)
			require.Equal(t, int64(3), n)

			v, err := c.Get(2)
			require.NoError(t, err)
			require.Equal(t, 0.5, v)
		})
	}
}

func TestPrepareUTF16Source(t *testing.T) {
	dir := t.TempDir()
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	text, err := enc.String("10\n20\n")
	require.NoError(t, err)
	src := writeFile(t, dir, "in.txt", text)

	c, err := New[int64]()
	require.NoError(t, err)
	defer c.Close()

	n, err := c.Prepare(src, filepath.Join(dir, "plane.wf"))
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	v, err := c.Get(1)
	require.NoError(t, err)
	require.Equal(t, int64(20), v)
}

func TestExportIntegers(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "in.txt", "-3\n17\n0\n")
	dst := filepath.Join(dir, "out.txt")

	c, err := New[int16]()
	require.NoError(t, err)
	defer c.Close()
	_, err = c.Prepare(src, filepath.Join(dir, "plane.wf"))
	require.NoError(t, err)
	require.NoError(t, c.Set(3, 99))

	n, err := c.ExportText(dst)
	require.NoError(t, err)
	require.Equal(t, int64(4), n)

	out, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "-3\n17\n0\n99\n", string(out))
}

func TestExportCompression(t *testing.T) {
	c := prepared(t, []float64{0.25, 1e10})
	want := "2.5000000000e-01\n1.0000000000e+10\n"
	dir := t.TempDir()

	t.Run("explicit", func(t *testing.T) {
		dst := filepath.Join(dir, "out.bin")
		n, err := c.ExportText(dst, WithExportCompression(format.CompressionS2))
		require.NoError(t, err)
		require.Equal(t, int64(2), n)
		require.Equal(t, want, decompressFile(t, format.CompressionS2, dst))
	})

	t.Run("by extension", func(t *testing.T) {
		dst := filepath.Join(dir, "out.txt.zst")
		_, err := c.ExportText(dst)
		require.NoError(t, err)
		require.Equal(t, want, decompressFile(t, format.CompressionZstd, dst))
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := c.ExportText(filepath.Join(dir, "x.txt"), WithExportCompression(format.CompressionType(99)))
		require.ErrorIs(t, err, errs.ErrInvalidCompression)
	})
}

func TestExportErrors(t *testing.T) {
	c := prepared(t, []float64{1})

	_, err := c.ExportText(filepath.Join(t.TempDir(), "missing", "out.txt"))
	require.ErrorIs(t, err, errs.ErrIO)

	require.NoError(t, c.Close())
	_, err = c.ExportText(filepath.Join(t.TempDir(), "out.txt"))
	require.ErrorIs(t, err, errs.ErrClosed)
}

func TestExportEmptyContainer(t *testing.T) {
	c, err := New[float64]()
	require.NoError(t, err)
	defer c.Close()

	dst := filepath.Join(t.TempDir(), "out.txt")
	n, err := c.ExportText(dst)
	require.NoError(t, err)
	require.Zero(t, n)
	require.FileExists(t, dst)
}
