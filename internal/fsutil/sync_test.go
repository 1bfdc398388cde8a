package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDatasync(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "data.bin"))
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Write([]byte("records"))
	require.NoError(t, err)
	require.NoError(t, Datasync(f))
}

func TestDatasyncNil(t *testing.T) {
	require.ErrorIs(t, Datasync(nil), os.ErrInvalid)
}
