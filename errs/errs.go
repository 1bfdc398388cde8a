// Package errs defines the sentinel errors shared by the pagesort packages.
//
// Callers should test for these with errors.Is; most functions wrap them with
// additional context such as file paths, indexes or line numbers.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrIO reports that a backing, source or destination file could not be
	// opened, created, read or written.
	ErrIO = errors.New("i/o failure")

	// ErrOutOfRange reports a fixed-mode container access outside [0, Len()).
	ErrOutOfRange = errors.New("index out of range")

	// ErrInvalidChunkSize reports a chunk size that cannot hold a single record.
	ErrInvalidChunkSize = errors.New("chunk size smaller than one record")

	// ErrInvalidRecord reports a source text line that does not parse as a record.
	ErrInvalidRecord = errors.New("invalid record text")

	// ErrClosed reports use of a container, view or reader after Close.
	ErrClosed = errors.New("already closed")

	// ErrArenaFull reports that every scratch arena slot is already claimed.
	ErrArenaFull = errors.New("scratch arena capacity exceeded")

	// ErrNotSorted reports that post-sort validation found an inversion.
	ErrNotSorted = errors.New("records are not sorted")

	// ErrFingerprintMismatch reports that sorting changed the multiset of records.
	ErrFingerprintMismatch = errors.New("record fingerprint mismatch")

	// ErrInvalidCompression reports an unknown or unsupported compression type.
	ErrInvalidCompression = errors.New("invalid compression type")

	// ErrInvalidOption reports an option value outside its accepted domain.
	ErrInvalidOption = errors.New("invalid option")
)

// InversionError describes the first adjacent pair found out of order.
type InversionError struct {
	Index int64  // index of the second record of the pair
	Prev  string // text form of record Index-1
	Next  string // text form of record Index
}

func (e *InversionError) Error() string {
	return fmt.Sprintf("record %d (%s) is larger than record %d (%s)", e.Index-1, e.Prev, e.Index, e.Next)
}

// Unwrap lets errors.Is match ErrNotSorted.
func (e *InversionError) Unwrap() error {
	return ErrNotSorted
}
