// Package fsutil holds small file-system helpers shared by the container.
package fsutil

import "os"

// Datasync flushes the file's data to stable storage. On Linux and FreeBSD it
// uses fdatasync, which skips metadata that does not affect reading the data
// back; elsewhere it falls back to f.Sync.
func Datasync(f *os.File) error {
	if f == nil {
		return os.ErrInvalid
	}

	return datasync(f)
}
