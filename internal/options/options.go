// Package options implements the generic functional options used by the
// container, sorter and reader constructors.
package options

import "fmt"

// Option configures a target of type T.
type Option[T any] interface {
	apply(T) error
	name() string
}

// Func is an Option backed by a function.
type Func[T any] struct {
	label     string
	applyFunc func(T) error
}

func (f *Func[T]) apply(target T) error {
	return f.applyFunc(target)
}

func (f *Func[T]) name() string {
	return f.label
}

// New creates a named option that may fail. The name prefixes any error the
// option returns, so callers see e.g. "option WithChunkSize: ...".
func New[T any](name string, fn func(T) error) *Func[T] {
	return &Func[T]{label: name, applyFunc: fn}
}

// NoError creates a named option that cannot fail.
func NoError[T any](name string, fn func(T)) *Func[T] {
	return &Func[T]{
		label: name,
		applyFunc: func(target T) error {
			fn(target)
			return nil
		},
	}
}

// Apply applies opts to target in order and stops at the first failure.
// Nil options are skipped.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(target); err != nil {
			if n := opt.name(); n != "" {
				return fmt.Errorf("option %s: %w", n, err)
			}

			return err
		}
	}

	return nil
}
