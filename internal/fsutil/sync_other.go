//go:build !linux && !freebsd

package fsutil

import "os"

func datasync(f *os.File) error {
	return f.Sync()
}
