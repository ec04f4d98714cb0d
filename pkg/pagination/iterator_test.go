package pagination

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// scriptedFetcher replays a fixed list of pages and records the tokens it
// was called with.
type scriptedFetcher struct {
	pages  []Page[string]
	errAt  int
	err    error
	tokens []string
}

func (f *scriptedFetcher) FetchPage(ctx context.Context, token string) (Page[string], error) {
	call := len(f.tokens)
	f.tokens = append(f.tokens, token)

	if f.err != nil && call == f.errAt {
		return Page[string]{}, f.err
	}
	if call >= len(f.pages) {
		return Page[string]{}, fmt.Errorf("unexpected call %d with token %q", call+1, token)
	}
	return f.pages[call], nil
}

func makePage(prefix string, n int, next string) Page[string] {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf("%s-%d", prefix, i)
	}
	return Page[string]{Items: items, NextToken: next}
}

func TestIterator_ThreePages(t *testing.T) {
	fetcher := &scriptedFetcher{pages: []Page[string]{
		makePage("p1", 50, "t1"),
		makePage("p2", 50, "t2"),
		makePage("p3", 7, ""),
	}}
	it := NewIterator[string](fetcher)
	ctx := context.Background()

	items, err := it.Collect(ctx)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if len(items) != 107 {
		t.Fatalf("len(items) = %d, want 107", len(items))
	}
	if items[0] != "p1-0" || items[50] != "p2-0" || items[106] != "p3-6" {
		t.Errorf("items out of order: %q %q %q", items[0], items[50], items[106])
	}

	wantTokens := []string{"", "t1", "t2"}
	if len(fetcher.tokens) != len(wantTokens) {
		t.Fatalf("calls = %d, want %d", len(fetcher.tokens), len(wantTokens))
	}
	for i, tok := range wantTokens {
		if fetcher.tokens[i] != tok {
			t.Errorf("call %d token = %q, want %q", i+1, fetcher.tokens[i], tok)
		}
	}

	if it.State() != StateExhausted {
		t.Errorf("State() = %v, want EXHAUSTED", it.State())
	}
	if it.Pages() != 3 || it.Yielded() != 107 {
		t.Errorf("Pages() = %d, Yielded() = %d", it.Pages(), it.Yielded())
	}

	// Exhausted iterators never call again.
	if it.Next(ctx) {
		t.Error("Next() after exhaustion returned true")
	}
	if len(fetcher.tokens) != 3 {
		t.Errorf("extra call after exhaustion: %v", fetcher.tokens)
	}
}

func TestIterator_EmptyPageWithTokenKeepsFetching(t *testing.T) {
	fetcher := &scriptedFetcher{pages: []Page[string]{
		makePage("p1", 0, "t1"),
		makePage("p2", 0, "t2"),
		makePage("p3", 2, ""),
	}}
	it := NewIterator[string](fetcher)

	items, err := it.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len(items) = %d, want 2", len(items))
	}
	if len(fetcher.tokens) != 3 {
		t.Errorf("calls = %d, want 3", len(fetcher.tokens))
	}
}

func TestIterator_EmptyFirstPage(t *testing.T) {
	fetcher := &scriptedFetcher{pages: []Page[string]{makePage("p1", 0, "")}}
	it := NewIterator[string](fetcher)

	if it.Next(context.Background()) {
		t.Error("Next() = true on empty result")
	}
	if it.Err() != nil {
		t.Errorf("Err() = %v", it.Err())
	}
	if it.State() != StateExhausted {
		t.Errorf("State() = %v", it.State())
	}
}

func TestIterator_LazyFetch(t *testing.T) {
	fetcher := &scriptedFetcher{pages: []Page[string]{
		makePage("p1", 2, "t1"),
		makePage("p2", 2, ""),
	}}
	it := NewIterator[string](fetcher)
	ctx := context.Background()

	if len(fetcher.tokens) != 0 {
		t.Fatal("fetch before first Next")
	}

	it.Next(ctx)
	it.Next(ctx)
	if len(fetcher.tokens) != 1 {
		t.Errorf("calls after first page = %d, want 1", len(fetcher.tokens))
	}
	if it.State() != StateFetching || it.Token() != "t1" {
		t.Errorf("State() = %v, Token() = %q", it.State(), it.Token())
	}

	it.Next(ctx)
	if len(fetcher.tokens) != 2 {
		t.Errorf("calls after second page = %d, want 2", len(fetcher.tokens))
	}
}

func TestIterator_FetchError(t *testing.T) {
	boom := errors.New("boom")
	fetcher := &scriptedFetcher{
		pages: []Page[string]{makePage("p1", 3, "t1"), makePage("p2", 3, "")},
		errAt: 1,
		err:   boom,
	}
	it := NewIterator[string](fetcher)

	items, err := it.Collect(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Collect() error = %v, want boom", err)
	}
	if len(items) != 3 {
		t.Errorf("len(items) = %d, want 3 from first page", len(items))
	}
	if it.State() != StateExhausted {
		t.Errorf("State() = %v", it.State())
	}
}

func TestIterator_AllBreakStopsFetching(t *testing.T) {
	fetcher := &scriptedFetcher{pages: []Page[string]{
		makePage("p1", 5, "t1"),
		makePage("p2", 5, ""),
	}}
	it := NewIterator[string](fetcher)

	count := 0
	for _, err := range it.All(context.Background()) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		count++
		if count == 5 {
			break
		}
	}

	if len(fetcher.tokens) != 1 {
		t.Errorf("calls = %d, want 1", len(fetcher.tokens))
	}
}

func TestIterator_AllYieldsError(t *testing.T) {
	boom := errors.New("boom")
	it := NewIterator[string](FetchFunc[string](func(ctx context.Context, token string) (Page[string], error) {
		return Page[string]{}, boom
	}))

	var gotErr error
	for _, err := range it.All(context.Background()) {
		gotErr = err
	}
	if !errors.Is(gotErr, boom) {
		t.Errorf("error = %v, want boom", gotErr)
	}
}

func TestMap(t *testing.T) {
	fetcher := &scriptedFetcher{pages: []Page[string]{makePage("p", 3, "")}}
	it := NewIterator[string](fetcher)

	var lengths []int
	for n, err := range Map(it.All(context.Background()), func(s string) int { return len(s) }) {
		if err != nil {
			t.Fatal(err)
		}
		lengths = append(lengths, n)
	}
	if len(lengths) != 3 || lengths[0] != 3 {
		t.Errorf("lengths = %v", lengths)
	}
}

func TestStateString(t *testing.T) {
	if StateFetching.String() != "FETCHING" || StateExhausted.String() != "EXHAUSTED" {
		t.Error("unexpected state names")
	}
}
