// Package pagination drives token-paginated Cirrus endpoints as a lazy,
// pull-driven sequence.
//
// The remote returns a nextResultsToken with every page. An empty token
// sent by the client means "first page"; an empty token returned by the
// server means "no more pages". The Iterator tracks which side produced
// the empty value through an explicit state machine:
//
//	FETCHING --(server token "")--> EXHAUSTED
//	FETCHING --(fetch error)------> EXHAUSTED (Err() set)
//
// Example usage:
//
//	it := pagination.NewIterator(fetcher)
//	for it.Next(ctx) {
//		item := it.Item()
//		...
//	}
//	if err := it.Err(); err != nil {
//		return err
//	}
//
// The iterator:
//   - Issues one blocking fetch per page, only when the buffered page is used up
//   - Yields items in server order, page after page
//   - Keeps fetching through empty pages that still carry a token
//   - Is not restartable; a new search needs a new Iterator
//
// An Iterator is not safe for concurrent use.
package pagination
