package container

import (
	"github.com/arloliu/pagesort/errs"
	"github.com/arloliu/pagesort/record"
)

// View is a chunk window over a container's backing file owned by a single
// worker. Obtain one from Container.View.
type View[T record.Value] struct {
	win    window[T]
	closed bool
}

// Get returns the record at index i.
func (v *View[T]) Get(i int64) (T, error) {
	if v.closed {
		return 0, errs.ErrClosed
	}

	return v.win.get(i)
}

// Set stores x at index i.
func (v *View[T]) Set(i int64, x T) error {
	if v.closed {
		return errs.ErrClosed
	}

	return v.win.set(i, x)
}

// Flush writes the view's modified records back to the file.
func (v *View[T]) Flush() error {
	if v.closed {
		return errs.ErrClosed
	}

	return v.win.flush()
}

// Invalidate flushes and drops the resident chunk.
func (v *View[T]) Invalidate() error {
	if v.closed {
		return errs.ErrClosed
	}

	return v.win.invalidate()
}

// Len returns the number of records in the backing file.
func (v *View[T]) Len() int64 {
	return v.win.st.len()
}

// Close flushes the view. The backing file stays open.
func (v *View[T]) Close() error {
	if v.closed {
		return nil
	}
	v.closed = true
	if v.win.st.closed.Load() {
		return nil
	}

	return v.win.flush()
}
