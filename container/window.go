package container

import (
	"fmt"

	"github.com/arloliu/pagesort/errs"
	"github.com/arloliu/pagesort/record"
)

const noChunk = -1

// window is one resident chunk over a store. Containers and views each own
// exactly one window; a window is not safe for concurrent use.
type window[T record.Value] struct {
	st       *store[T]
	buf      []T
	loaded   int64 // chunk index, noChunk when nothing is resident
	loadedN  int   // records of buf backed by file content
	dirtyLo  int   // dirty extent [dirtyLo, dirtyHi) relative to the chunk
	dirtyHi  int
	maxElems int
}

func newWindow[T record.Value](st *store[T], buf []T) window[T] {
	return window[T]{
		st:       st,
		buf:      buf,
		loaded:   noChunk,
		maxElems: len(buf),
	}
}

func (w *window[T]) clean() {
	w.dirtyLo, w.dirtyHi = 0, 0
}

func (w *window[T]) markDirty(rel int) {
	if w.dirtyLo >= w.dirtyHi {
		w.dirtyLo, w.dirtyHi = rel, rel+1
		return
	}
	if rel < w.dirtyLo {
		w.dirtyLo = rel
	}
	if rel >= w.dirtyHi {
		w.dirtyHi = rel + 1
	}
}

// load makes chunk resident. In fixed mode the read stops at the last
// record; in growth mode a full chunk is read and the tail zero-filled.
func (w *window[T]) load(chunk int64) error {
	start := chunk * int64(w.maxElems)
	want := w.maxElems
	if !w.st.growth {
		remaining := w.st.len() - start
		want = int(max(0, min(int64(w.maxElems), remaining)))
	}

	n, err := w.st.readRecords(w.buf[:want], start)
	if err != nil {
		return err
	}
	clear(w.buf[n:])

	w.loaded = chunk
	w.loadedN = n
	w.clean()

	return nil
}

// flush writes the dirty extent back to the store.
func (w *window[T]) flush() error {
	if w.loaded != noChunk && w.dirtyLo < w.dirtyHi {
		start := w.loaded*int64(w.maxElems) + int64(w.dirtyLo)
		if err := w.st.writeRecords(w.buf[w.dirtyLo:w.dirtyHi], start); err != nil {
			return err
		}
		w.loadedN = max(w.loadedN, w.dirtyHi)
		w.clean()
	}

	if w.st.growth {
		return w.st.extend()
	}

	return nil
}

// invalidate flushes and drops the resident chunk.
func (w *window[T]) invalidate() error {
	if err := w.flush(); err != nil {
		return err
	}
	w.loaded = noChunk
	w.loadedN = 0

	return nil
}

// slot pages in the chunk holding index i and returns its position in buf.
func (w *window[T]) slot(i int64) (int, error) {
	if w.st.closed.Load() {
		return 0, errs.ErrClosed
	}

	if i < 0 || (!w.st.growth && i >= w.st.len()) {
		return 0, fmt.Errorf("%w: index %d, length %d", errs.ErrOutOfRange, i, w.st.len())
	}

	chunk := i / int64(w.maxElems)
	if chunk != w.loaded {
		if err := w.flush(); err != nil {
			return 0, err
		}
		if err := w.load(chunk); err != nil {
			return 0, err
		}
	}

	if w.st.growth {
		w.st.grow(i + 1)
	}

	return int(i - chunk*int64(w.maxElems)), nil
}

func (w *window[T]) get(i int64) (T, error) {
	rel, err := w.slot(i)
	if err != nil {
		return 0, err
	}

	return w.buf[rel], nil
}

func (w *window[T]) set(i int64, v T) error {
	rel, err := w.slot(i)
	if err != nil {
		return err
	}
	w.buf[rel] = v
	w.markDirty(rel)

	return nil
}
