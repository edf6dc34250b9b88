// Package searcher runs dictionary queries against a storage engine.
//
// A search validates the query, builds a query.Plan, consults an LRU cache
// of result pages keyed by a murmur3 digest of the plan, and otherwise asks
// the storage for the ordered page and decodes its rows.
//
// # Basic Usage
//
//	s := searcher.NewSearcher(store, searcher.WithCacheSize(500))
//
//	entries, err := s.Search(ctx, query.Hanzi("爱", 20, 0))
//	switch {
//	case errors.Is(err, types.ErrInvalidQuery):
//	    // rejected before any I/O
//	case errors.Is(err, types.ErrSearchCancelled):
//	    // ctx ended while the storage was working
//	case err != nil:
//	    // types.ErrSearchFailed, cause attached
//	}
//
// # Caching
//
// Cached pages are deep copied on the way in and out. Call InvalidateCache
// whenever the entry set changes.
package searcher
