package pagination

import (
	"context"
	"iter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for paginated retrieval.
var (
	pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cloudplaya_pages_fetched_total",
		Help: "Total number of result pages fetched",
	})

	itemsYieldedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cloudplaya_items_yielded_total",
		Help: "Total number of result items yielded to callers",
	})
)

// State is the iterator's position in its fetch lifecycle.
type State int

const (
	// StateFetching means another page may be requested.
	StateFetching State = iota

	// StateExhausted is terminal: no further calls will be made.
	StateExhausted
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateFetching:
		return "FETCHING"
	case StateExhausted:
		return "EXHAUSTED"
	default:
		return "UNKNOWN"
	}
}

// Page is one response page.
type Page[T any] struct {
	Items []T

	// NextToken is the continuation token returned by the server.
	// Empty means no further pages.
	NextToken string
}

// PageFetcher fetches the page identified by token. The empty token
// requests the first page.
type PageFetcher[T any] interface {
	FetchPage(ctx context.Context, token string) (Page[T], error)
}

// FetchFunc adapts a function to PageFetcher.
type FetchFunc[T any] func(ctx context.Context, token string) (Page[T], error)

// FetchPage implements PageFetcher.
func (f FetchFunc[T]) FetchPage(ctx context.Context, token string) (Page[T], error) {
	return f(ctx, token)
}

// Iterator yields the items of a paginated search one at a time.
type Iterator[T any] struct {
	fetcher PageFetcher[T]
	state   State
	token   string

	buf  []T
	pos  int
	item T
	err  error

	pages int
	items int
}

// NewIterator creates an iterator positioned before the first page.
func NewIterator[T any](fetcher PageFetcher[T]) *Iterator[T] {
	return &Iterator[T]{
		fetcher: fetcher,
		state:   StateFetching,
	}
}

// Next advances to the next item, fetching pages as needed. It returns false
// when the sequence is finished or a fetch failed; check Err afterwards.
func (it *Iterator[T]) Next(ctx context.Context) bool {
	for it.pos >= len(it.buf) {
		if it.state == StateExhausted {
			return false
		}
		if err := it.fetch(ctx); err != nil {
			it.err = err
			it.state = StateExhausted
			it.buf, it.pos = nil, 0
			return false
		}
	}

	it.item = it.buf[it.pos]
	it.pos++
	it.items++
	itemsYieldedTotal.Inc()
	return true
}

func (it *Iterator[T]) fetch(ctx context.Context) error {
	start := time.Now()

	page, err := it.fetcher.FetchPage(ctx, it.token)
	if err != nil {
		log.Warn().
			Err(err).
			Int("page", it.pages+1).
			Msg("Page fetch failed")
		return err
	}

	it.pages++
	pagesFetchedTotal.Inc()

	it.buf = page.Items
	it.pos = 0
	it.token = page.NextToken
	if it.token == "" {
		it.state = StateExhausted
	}

	log.Debug().
		Int("page", it.pages).
		Int("items", len(page.Items)).
		Bool("more", it.state == StateFetching).
		Dur("duration", time.Since(start)).
		Msg("Fetched page")

	return nil
}

// Item returns the item produced by the last successful Next.
func (it *Iterator[T]) Item() T {
	return it.item
}

// Err returns the fetch error that ended the sequence, if any.
func (it *Iterator[T]) Err() error {
	return it.err
}

// State returns the current lifecycle state. Buffered items may remain
// after the iterator becomes exhausted.
func (it *Iterator[T]) State() State {
	return it.state
}

// Token returns the continuation token that the next fetch would send.
func (it *Iterator[T]) Token() string {
	return it.token
}

// Pages returns how many pages have been fetched so far.
func (it *Iterator[T]) Pages() int {
	return it.pages
}

// Yielded returns how many items have been produced so far.
func (it *Iterator[T]) Yielded() int {
	return it.items
}

// All returns the remaining items as a range-over-func sequence. A fetch
// error is yielded once as the final element. Breaking out of the loop stops
// further fetches.
func (it *Iterator[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for it.Next(ctx) {
			if !yield(it.item, nil) {
				return
			}
		}
		if it.err != nil {
			var zero T
			yield(zero, it.err)
		}
	}
}

// Collect drains the iterator into a slice.
func (it *Iterator[T]) Collect(ctx context.Context) ([]T, error) {
	var out []T
	for it.Next(ctx) {
		out = append(out, it.item)
	}
	return out, it.err
}

// Map converts a sequence produced by All with fn.
func Map[T, U any](seq iter.Seq2[T, error], fn func(T) U) iter.Seq2[U, error] {
	return func(yield func(U, error) bool) {
		for v, err := range seq {
			if err != nil {
				var zero U
				yield(zero, err)
				return
			}
			if !yield(fn(v), nil) {
				return
			}
		}
	}
}
