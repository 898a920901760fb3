package listing

import (
	"context"
	"iter"
)

// page is one fetched batch. err, when set, is reported after items have
// been consumed.
type page[T any] struct {
	err   error
	items []T
	more  bool
}

type fetchFunc[T any] func(ctx context.Context) page[T]

// Pager is a lazy, forward-only sequence of records fetched page by page.
type Pager[T any] struct {
	fetch   fetchFunc[T]
	pending error
	err     error
	buf     []T
	cur     T
	done    bool
	pages   int
}

func newPager[T any](fetch fetchFunc[T]) *Pager[T] {
	return &Pager[T]{fetch: fetch}
}

// Failed returns a pager that yields nothing and reports err.
func Failed[T any](err error) *Pager[T] {
	return &Pager[T]{err: err, done: true}
}

// Next advances to the next record, fetching a page when the current one is
// exhausted. It returns false at the end of the sequence or on error.
func (p *Pager[T]) Next(ctx context.Context) bool {
	for {
		if len(p.buf) > 0 {
			p.cur = p.buf[0]
			p.buf = p.buf[1:]
			return true
		}
		if p.err != nil {
			return false
		}
		if p.pending != nil {
			p.err = p.pending
			p.pending = nil
			return false
		}
		if p.done {
			return false
		}
		if err := ctx.Err(); err != nil {
			p.err = err
			return false
		}

		pg := p.fetch(ctx)
		p.pages++
		p.buf = pg.items
		p.pending = pg.err
		p.done = !pg.more || pg.err != nil
	}
}

// Value returns the record Next moved to.
func (p *Pager[T]) Value() T {
	return p.cur
}

// Err returns the error that ended the sequence, if any.
func (p *Pager[T]) Err() error {
	return p.err
}

// Pages returns how many pages have been requested so far.
func (p *Pager[T]) Pages() int {
	return p.pages
}

// All returns an iterator over the remaining records. An error is yielded
// once, as the last element, with a zero record.
func (p *Pager[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for p.Next(ctx) {
			if !yield(p.Value(), nil) {
				return
			}
		}
		if err := p.Err(); err != nil {
			var zero T
			yield(zero, err)
		}
	}
}

// Collect drains the pager. Records read before an error are returned
// together with it.
func (p *Pager[T]) Collect(ctx context.Context) ([]T, error) {
	var out []T
	for p.Next(ctx) {
		out = append(out, p.Value())
	}
	return out, p.Err()
}
