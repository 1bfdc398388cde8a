// Package container implements a paged, file-backed array of fixed-size
// records.
//
// A Container keeps exactly one chunk of its backing file resident. Accessing
// an index outside that chunk writes back the records modified in it and
// reads the chunk holding the index, so arrays far larger than memory can be
// read and written by index:
//
//	c, err := container.New[float64](container.WithChunkSize(4096))
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	n, err := c.Prepare("input.txt", "plane.wf")
//	...
//	v, err := c.Get(n - 1)
//	err = c.Set(0, v)
//
// # Modes
//
// In growth mode (the default) any non-negative index is valid and Len grows
// to cover it; Flush extends the file to Len records. In fixed mode indexes
// must lie in [0, Len()).
//
// # Views
//
// Container.View returns an additional chunk window over the same open file.
// Each view writes back only the records it modified, so goroutines may work
// on disjoint index ranges through their own views at the same time.
//
// # Reader
//
// OpenReader opens a finished backing file for cached read-only access, with
// binary search and quantile helpers for sorted files.
package container
