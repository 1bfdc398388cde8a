package sorter

import (
	"context"

	"github.com/arloliu/pagesort/container"
	"github.com/arloliu/pagesort/errs"
	"github.com/arloliu/pagesort/record"
)

const validateCheckEvery = 4096

// Validate checks that c is in ascending order. The first adjacent pair out
// of order is reported as an *errs.InversionError, which matches
// errs.ErrNotSorted.
//
// Pairs are checked with prev <= next, so a NaN record next to any other
// record counts as an inversion.
func Validate[T record.Value](ctx context.Context, c *container.Container[T]) error {
	n := c.Len()
	if n < 2 {
		return nil
	}

	prev, err := c.Get(0)
	if err != nil {
		return err
	}

	for j := int64(1); j < n; j++ {
		if j%validateCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		cur, err := c.Get(j)
		if err != nil {
			return err
		}
		if !(prev <= cur) {
			codec := c.Codec()
			return &errs.InversionError{
				Index: j,
				Prev:  codec.FormatText(prev),
				Next:  codec.FormatText(cur),
			}
		}
		prev = cur
	}

	return nil
}

// Validate checks that c is in ascending order.
func (s *Sorter[T]) Validate(ctx context.Context, c *container.Container[T]) error {
	return Validate(ctx, c)
}
