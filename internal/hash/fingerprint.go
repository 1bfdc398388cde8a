// Package hash computes order-independent fingerprints of record multisets.
package hash

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint summarises a multiset of fixed-size records.
//
// Each record's bytes are hashed with xxHash64 and the hashes are combined by
// wrapping addition, so the result does not depend on record order. A sort
// must leave the fingerprint of its backing file unchanged; a lost,
// duplicated or corrupted record changes it with overwhelming probability.
type Fingerprint struct {
	Sum   uint64
	Count int64
}

// Add folds one encoded record into the fingerprint.
func (f *Fingerprint) Add(record []byte) {
	f.Sum += xxhash.Sum64(record)
	f.Count++
}

// AddBlock folds every recordSize-byte record of block into the fingerprint.
// A trailing partial record is ignored.
func (f *Fingerprint) AddBlock(block []byte, recordSize int) {
	for off := 0; off+recordSize <= len(block); off += recordSize {
		f.Add(block[off : off+recordSize])
	}
}

// Merge combines a fingerprint computed over a disjoint set of records.
func (f *Fingerprint) Merge(other Fingerprint) {
	f.Sum += other.Sum
	f.Count += other.Count
}

// Equal reports whether both fingerprints describe the same multiset.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.Sum == other.Sum && f.Count == other.Count
}

func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x/%d", f.Sum, f.Count)
}
