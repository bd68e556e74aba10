// Package pagination splits ordered lists into fixed-size pages.
package pagination

import (
	"context"
	"strconv"
)

// PerPage is the page size of every list view.
const PerPage = 10

type Paginator struct {
	PerPage int
}

func New() Paginator { return Paginator{PerPage: PerPage} }

// Page is one window of a list plus what the paginator partial needs.
type Page[T any] struct {
	Number   int
	NumPages int
	Count    int
	PerPage  int
	Items    []T
}

// NumPages returns the page count for count items; an empty list has one
// empty page.
func (p Paginator) NumPages(count int) int {
	if count <= 0 {
		return 1
	}
	return (count + p.PerPage - 1) / p.PerPage
}

// Clamp turns a raw ?page= value into a valid page number: anything that
// is not a positive integer is page 1, anything past the end is the last page.
func (p Paginator) Clamp(raw string, count int) int {
	n, err := strconv.Atoi(raw)
	// n < 1 clamps to page 1, not to the last page.
	if err != nil || n < 1 {
		return 1
	}
	if last := p.NumPages(count); n > last {
		return last
	}
	return n
}

func (p Paginator) Offset(number int) int {
	return (number - 1) * p.PerPage
}

// Fetch loads the page selected by raw. count reports the total size and
// load fetches one window of it.
func Fetch[T any](
	ctx context.Context,
	p Paginator,
	raw string,
	count func(context.Context) (int, error),
	load func(ctx context.Context, limit, offset int) ([]T, error),
) (*Page[T], error) {
	total, err := count(ctx)
	if err != nil {
		return nil, err
	}
	number := p.Clamp(raw, total)
	items, err := load(ctx, p.PerPage, p.Offset(number))
	if err != nil {
		return nil, err
	}
	return &Page[T]{
		Number:   number,
		NumPages: p.NumPages(total),
		Count:    total,
		PerPage:  p.PerPage,
		Items:    items,
	}, nil
}

func (pg *Page[T]) Len() int { return len(pg.Items) }

func (pg *Page[T]) HasNext() bool     { return pg.Number < pg.NumPages }
func (pg *Page[T]) HasPrevious() bool { return pg.Number > 1 }
func (pg *Page[T]) HasOtherPages() bool {
	return pg.HasNext() || pg.HasPrevious()
}

func (pg *Page[T]) NextNumber() int     { return pg.Number + 1 }
func (pg *Page[T]) PreviousNumber() int { return pg.Number - 1 }

// Range lists every page number, for the page links.
func (pg *Page[T]) Range() []int {
	out := make([]int, pg.NumPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
