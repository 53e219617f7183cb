package spotify

import "context"

// maxPageSize is the largest page size the Spotify Web API allows. The first
// fetch always requests it to minimize round trips.
const maxPageSize = 50

// page is Spotify's paging envelope: a window of items plus an absolute URL
// for the next window, null once exhausted.
//
// https://developer.spotify.com/documentation/web-api/concepts/api-calls#paginated-results
type page[T any] struct {
	Items  []T     `json:"items"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Next   *string `json:"next"`
}

// Pager walks a paginated collection as a single lazy sequence. A page is
// fetched only when the previous page's items have been consumed, so the
// sequence never runs ahead of the caller. Usage mirrors [bufio.Scanner]:
//
//	pager := client.Playlists(ctx)
//	for pager.Next() {
//		p := pager.Item()
//		...
//	}
//	if err := pager.Err(); err != nil { ... }
//
// Order is exactly the remote page order. If the collection is mutated
// upstream between fetches the sequence may miss or repeat items; this is
// best-effort, not a snapshot.
type Pager[T any] struct {
	ctx   context.Context
	fetch func(ctx context.Context, pageURL string) (page[T], error)

	next  string
	items []T
	pos   int
	cur   T
	err   error
	done  bool
}

// newPager constructs a Pager whose first fetch hits firstURL. Construction
// performs no network calls; the first fetch happens on the first Next.
func newPager[T any](ctx context.Context, firstURL string, fetch func(ctx context.Context, pageURL string) (page[T], error)) *Pager[T] {
	return &Pager[T]{ctx: ctx, fetch: fetch, next: firstURL}
}

// Next advances to the next item, fetching the next page when the in-memory
// one is exhausted. It returns false when the sequence ends or a fetch
// fails; check Err to distinguish.
func (p *Pager[T]) Next() bool {
	if p.done {
		return false
	}

	for p.pos >= len(p.items) {
		if p.next == "" {
			p.done = true
			return false
		}

		result, err := p.fetch(p.ctx, p.next)
		if err != nil {
			p.err = err
			p.done = true
			return false
		}

		p.items = result.Items
		p.pos = 0
		if result.Next != nil {
			p.next = *result.Next
		} else {
			p.next = ""
		}
	}

	p.cur = p.items[p.pos]
	p.pos++
	return true
}

// Item returns the item produced by the last successful call to Next.
func (p *Pager[T]) Item() T { return p.cur }

// Err returns the first error encountered while fetching pages, if any.
// Items yielded before the failing fetch remain valid.
func (p *Pager[T]) Err() error { return p.err }

// Collect drains the pager into a slice. Items fetched before an error are
// returned alongside it.
func Collect[T any](p *Pager[T]) ([]T, error) {
	var items []T
	for p.Next() {
		items = append(items, p.Item())
	}
	return items, p.Err()
}
