package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/pagesort/sorter"
)

// resetFlags restores every flag to its default and points the backing file
// into a fresh temporary directory.
func resetFlags(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	backingPath = filepath.Join(dir, "plane.wf")
	chunkSize = sorter.DefaultChunkSize
	workers = 2
	memLimit = sorter.DefaultMemLimit
	policyName = "consume"
	compression = ""
	recordType = "float64"
	noValidate = false
	quantiles = nil
	syncBacking = false
	verbose = false
	quiet = false
	jsonLog = false

	return dir
}

func writeInput(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "input.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

// captureOutput captures stdout while running fn.
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(t, err)

	return buf.String(), fnErr
}
