package paging

import (
	"context"

	"github.com/google/uuid"
)

// FetchFunc loads up to limit rows ordered by id, strictly after afterID.
// A zero afterID means "from the beginning".
type FetchFunc[T any] func(ctx context.Context, afterID uuid.UUID, limit int) ([]T, error)

// Pager walks a keyset-paginated scan one page at a time so callers never
// hold more than a single page in memory. It is forward-only and finite;
// once Next returns an empty page the pager stays exhausted.
type Pager[T any] struct {
	fetch FetchFunc[T]
	key   func(T) uuid.UUID
	size  int
	after uuid.UUID
	done  bool
}

func NewPager[T any](fetch FetchFunc[T], key func(T) uuid.UUID, size int) *Pager[T] {
	if size <= 0 {
		size = 250
	}
	return &Pager[T]{fetch: fetch, key: key, size: size}
}

// Next returns the next page, or an empty slice once the scan is exhausted.
func (p *Pager[T]) Next(ctx context.Context) ([]T, error) {
	if p.done {
		return nil, nil
	}
	page, err := p.fetch(ctx, p.after, p.size)
	if err != nil {
		return nil, err
	}
	if len(page) == 0 {
		p.done = true
		return nil, nil
	}
	if len(page) < p.size {
		p.done = true
	}
	p.after = p.key(page[len(page)-1])
	return page, nil
}
