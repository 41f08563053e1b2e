package paging

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type row struct {
	ID uuid.UUID
}

func makeRows(n int) []row {
	rows := make([]row, n)
	for i := range rows {
		rows[i] = row{ID: uuid.New()}
	}
	return rows
}

func TestPager_WalksAllPages(t *testing.T) {
	ctx := context.Background()
	all := makeRows(7)

	var gotAfter []uuid.UUID
	fetch := func(ctx context.Context, afterID uuid.UUID, limit int) ([]row, error) {
		gotAfter = append(gotAfter, afterID)
		start := 0
		if afterID != uuid.Nil {
			for i, r := range all {
				if r.ID == afterID {
					start = i + 1
					break
				}
			}
		}
		end := start + limit
		if end > len(all) {
			end = len(all)
		}
		return all[start:end], nil
	}

	pager := NewPager(fetch, func(r row) uuid.UUID { return r.ID }, 3)

	var collected []row
	for {
		page, err := pager.Next(ctx)
		assert.NoError(t, err)
		if len(page) == 0 {
			break
		}
		collected = append(collected, page...)
	}

	assert.Equal(t, all, collected)
	// Pages of 3, 3 and 1; the short last page ends the scan without another
	// fetch.
	assert.Equal(t, []uuid.UUID{uuid.Nil, all[2].ID, all[5].ID}, gotAfter)

	// Exhausted pagers stay exhausted.
	page, err := pager.Next(ctx)
	assert.NoError(t, err)
	assert.Empty(t, page)
	assert.Len(t, gotAfter, 3)
}

func TestPager_ExactMultipleNeedsOneMoreFetch(t *testing.T) {
	ctx := context.Background()
	all := makeRows(3)

	calls := 0
	fetch := func(ctx context.Context, afterID uuid.UUID, limit int) ([]row, error) {
		calls++
		if afterID == uuid.Nil {
			return all, nil
		}
		return nil, nil
	}

	pager := NewPager(fetch, func(r row) uuid.UUID { return r.ID }, 3)

	page, err := pager.Next(ctx)
	assert.NoError(t, err)
	assert.Len(t, page, 3)

	page, err = pager.Next(ctx)
	assert.NoError(t, err)
	assert.Empty(t, page)
	assert.Equal(t, 2, calls)
}

func TestPager_FetchError(t *testing.T) {
	ctx := context.Background()

	fetch := func(ctx context.Context, afterID uuid.UUID, limit int) ([]row, error) {
		return nil, errors.New("database error")
	}

	pager := NewPager(fetch, func(r row) uuid.UUID { return r.ID }, 3)

	page, err := pager.Next(ctx)
	assert.Error(t, err)
	assert.Nil(t, page)
}

func TestPager_DefaultSize(t *testing.T) {
	ctx := context.Background()

	var gotLimit int
	fetch := func(ctx context.Context, afterID uuid.UUID, limit int) ([]row, error) {
		gotLimit = limit
		return nil, nil
	}

	pager := NewPager(fetch, func(r row) uuid.UUID { return r.ID }, 0)

	_, err := pager.Next(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 250, gotLimit)
}
