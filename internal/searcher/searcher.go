package searcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spaolacci/murmur3"
	"go.uber.org/zap"

	"github.com/dshills/cedict-mcp/internal/definition"
	"github.com/dshills/cedict-mcp/internal/pinyin"
	"github.com/dshills/cedict-mcp/internal/query"
	"github.com/dshills/cedict-mcp/internal/storage"
	"github.com/dshills/cedict-mcp/pkg/types"
)

// DefaultCacheSize is the number of result pages kept when no size is given.
const DefaultCacheSize = 1000

// cacheKey is a 128-bit murmur3 digest of a plan key.
type cacheKey [2]uint64

// Searcher plans queries, runs them against a Storage and decodes the rows.
type Searcher struct {
	storage storage.Storage
	cache   *lru.Cache[cacheKey, []types.DictionaryEntry] // nil when disabled
	logger  *zap.Logger

	// mu orders cache writes against InvalidateCache. gen counts
	// invalidations; a page read under an older generation is not cached.
	mu  sync.Mutex
	gen uint64
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithCacheSize sets the result cache capacity. Zero or less disables it.
func WithCacheSize(size int) Option {
	return func(s *Searcher) {
		if size <= 0 {
			s.cache = nil
			return
		}
		cache, err := lru.New[cacheKey, []types.DictionaryEntry](size)
		if err != nil {
			// lru.New only fails for non-positive sizes
			panic(fmt.Sprintf("failed to create LRU cache: %v", err))
		}
		s.cache = cache
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Searcher) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSearcher creates a new Searcher instance
func NewSearcher(store storage.Storage, opts ...Option) *Searcher {
	s := &Searcher{storage: store, logger: zap.NewNop()}
	WithCacheSize(DefaultCacheSize)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns one ordered page of decoded entries. Invalid queries fail
// with types.ErrInvalidQuery before the storage is touched. A search whose
// context ends while the storage is working fails with
// types.ErrSearchCancelled; every other failure wraps types.ErrSearchFailed.
func (s *Searcher) Search(ctx context.Context, q query.SearchQuery) ([]types.DictionaryEntry, error) {
	startTime := time.Now()

	plan, err := query.NewPlan(q)
	if err != nil {
		return nil, err
	}

	key := computeQueryKey(plan)
	if cached, ok := s.checkCache(key); ok {
		s.logger.Debug("search cache hit",
			zap.Stringer("mode", plan.Mode()),
			zap.String("input", q.Input()),
			zap.Int("results", len(cached)))
		return cached, nil
	}

	gen := s.generation()
	rows, err := s.storage.Search(ctx, plan)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", types.ErrSearchCancelled, ctxErr)
		}
		return nil, fmt.Errorf("%w: %w", types.ErrSearchFailed, err)
	}

	entries, err := decodeRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrSearchFailed, err)
	}

	s.storeInCache(gen, key, entries)
	s.logger.Debug("search",
		zap.Stringer("mode", plan.Mode()),
		zap.String("input", q.Input()),
		zap.Int("limit", plan.Limit()),
		zap.Int("offset", plan.Offset()),
		zap.Int("results", len(entries)),
		zap.Duration("duration", time.Since(startTime)))
	return entries, nil
}

// decodeRows turns persisted rows back into entries.
func decodeRows(rows []query.Row) ([]types.DictionaryEntry, error) {
	entries := make([]types.DictionaryEntry, 0, len(rows))
	for _, r := range rows {
		syllables, err := pinyin.Decode(r.Pinyin)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", r.ID, err)
		}
		defs, err := definition.Decode(r.Definitions)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", r.ID, err)
		}
		entries = append(entries, types.DictionaryEntry{
			Traditional: r.Traditional,
			Simplified:  r.Simplified,
			Pinyin:      syllables,
			Definitions: defs,
		})
	}
	return entries, nil
}

// checkCache returns a copy of a cached page.
func (s *Searcher) checkCache(key cacheKey) ([]types.DictionaryEntry, bool) {
	if s.cache == nil {
		return nil, false
	}
	entries, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	return copyEntries(entries), true
}

func (s *Searcher) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// storeInCache caches a page read during generation gen. Pages read before
// the last invalidation are dropped.
func (s *Searcher) storeInCache(gen uint64, key cacheKey, entries []types.DictionaryEntry) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		s.logger.Debug("dropping stale search page", zap.Uint64("generation", gen))
		return
	}
	s.cache.Add(key, copyEntries(entries))
}

// copyEntries deep copies a page so callers cannot mutate cached values.
func copyEntries(src []types.DictionaryEntry) []types.DictionaryEntry {
	dst := make([]types.DictionaryEntry, len(src))
	for i, e := range src {
		dst[i] = e.Clone()
	}
	return dst
}

func computeQueryKey(plan *query.Plan) cacheKey {
	h1, h2 := murmur3.Sum128([]byte(plan.Key()))
	return cacheKey{h1, h2}
}

// InvalidateCache drops every cached page. Call it after the entry set
// changes. Searches already reading from storage will not cache their page.
func (s *Searcher) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.cache != nil {
		s.cache.Purge()
	}
}

// CacheLen reports the number of cached pages.
func (s *Searcher) CacheLen() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.Len()
}
