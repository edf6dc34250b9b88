// Package dictionary ties a store, the cached searcher and the async
// executor into the object the MCP server and the import command use.
package dictionary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/cedict-mcp/internal/cedict"
	"github.com/dshills/cedict-mcp/internal/executor"
	"github.com/dshills/cedict-mcp/internal/pinyin"
	"github.com/dshills/cedict-mcp/internal/query"
	"github.com/dshills/cedict-mcp/internal/searcher"
	"github.com/dshills/cedict-mcp/internal/storage"
	"github.com/dshills/cedict-mcp/pkg/types"
)

// ErrInstallInProgress is returned when an install is already running.
var ErrInstallInProgress = errors.New("dictionary install already in progress")

// Dictionary is safe for concurrent use. Installs are serialised; searches
// run on the executor's workers.
type Dictionary struct {
	store    storage.Storage
	searcher *searcher.Searcher
	exec     *executor.Executor
	lock     installLock
	logger   *zap.Logger
	now      func() time.Time
}

type options struct {
	workers   int
	cacheSize int
	logger    *zap.Logger
}

// Option configures New.
type Option func(*options)

// WithWorkers bounds concurrently running searches. n <= 0 means NumCPU.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithCacheSize sets the result cache size. 0 disables caching.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New wraps store. The Dictionary owns it from now on and closes it in Close.
func New(store storage.Storage, opts ...Option) *Dictionary {
	o := options{cacheSize: searcher.DefaultCacheSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	s := searcher.NewSearcher(store,
		searcher.WithCacheSize(o.cacheSize),
		searcher.WithLogger(o.logger.Named("searcher")))

	return &Dictionary{
		store:    store,
		searcher: s,
		exec:     executor.New(s, o.workers, o.logger.Named("executor")),
		logger:   o.logger,
		now:      time.Now,
	}
}

// Search schedules q and returns its handle without waiting.
func (d *Dictionary) Search(q query.SearchQuery) (*executor.Future, error) {
	return d.exec.Submit(q)
}

// FindChinese searches headwords starting with or containing text.
func (d *Dictionary) FindChinese(text string, limit, offset int) (*executor.Future, error) {
	return d.Search(query.Hanzi(text, limit, offset))
}

// FindPinyin parses input as pinyin and searches for it.
func (d *Dictionary) FindPinyin(input string, limit, offset int) (*executor.Future, error) {
	syllables, err := pinyin.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrInvalidQuery, err)
	}
	return d.Search(query.Pinyin(syllables, limit, offset))
}

// FindDefinitions searches English definitions.
func (d *Dictionary) FindDefinitions(text string, limit, offset int) (*executor.Future, error) {
	return d.Search(query.Definition(text, limit, offset))
}

// ContainsHan reports whether s has any Han character.
func ContainsHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// Lookup guesses the mode of free-form input. Han characters select a Hanzi
// search. Input that reads as pinyin runs a pinyin and a definition search
// together, pinyin matches first. Anything else is a definition search.
// At most limit entries are returned.
func (d *Dictionary) Lookup(ctx context.Context, input string, limit int) ([]types.DictionaryEntry, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("%w: empty input", types.ErrInvalidQuery)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrSearchCancelled, err)
	}

	if ContainsHan(input) {
		return d.exec.Do(ctx, query.Hanzi(input, limit, 0))
	}

	syllables, err := pinyin.Parse(input)
	if err != nil {
		return d.exec.Do(ctx, query.Definition(input, limit, 0))
	}

	var byPinyin, byDefinition []types.DictionaryEntry
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byPinyin, err = d.exec.Do(gctx, query.Pinyin(syllables, limit, 0))
		return err
	})
	g.Go(func() error {
		var err error
		byDefinition, err = d.exec.Do(gctx, query.Definition(input, limit, 0))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return mergeEntries(limit, byPinyin, byDefinition), nil
}

func entryKey(e types.DictionaryEntry) string {
	return e.Traditional + "\x00" + e.Simplified + "\x00" + e.PinyinString() + "\x00" + strings.Join(e.Definitions, "/")
}

// mergeEntries concatenates lists in order, up to limit. An entry is dropped
// only when an earlier list already returned it; homographs within one list
// are all kept.
func mergeEntries(limit int, lists ...[]types.DictionaryEntry) []types.DictionaryEntry {
	seen := make(map[string]struct{})
	out := make([]types.DictionaryEntry, 0, limit)
	for _, list := range lists {
		added := make([]string, 0, len(list))
		for _, e := range list {
			if len(out) == limit {
				return out
			}
			k := entryKey(e)
			if _, dup := seen[k]; dup {
				continue
			}
			added = append(added, k)
			out = append(out, e)
		}
		for _, k := range added {
			seen[k] = struct{}{}
		}
	}
	return out
}

// Install replaces the dataset with entries and stamps the metadata. The
// metadata is written last so its presence marks a complete install.
func (d *Dictionary) Install(ctx context.Context, entries []types.DictionaryEntry) error {
	if !d.lock.TryAcquire() {
		return ErrInstallInProgress
	}
	defer d.lock.Release()
	return d.install(ctx, entries)
}

func (d *Dictionary) install(ctx context.Context, entries []types.DictionaryEntry) error {
	start := d.now()
	defer d.searcher.InvalidateCache()

	if err := d.store.CreateSchema(ctx); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := d.store.Add(ctx, entries); err != nil {
		return err
	}
	if err := d.store.PopulateMetadata(ctx, types.DataFormatVersion, d.now()); err != nil {
		return err
	}

	d.logger.Info("dictionary installed",
		zap.Int("entries", len(entries)),
		zap.Int("format_version", types.DataFormatVersion),
		zap.Duration("took", d.now().Sub(start)))
	return nil
}

// InstallFile parses a CC-CEDICT file, gzipped or plain, and installs it.
func (d *Dictionary) InstallFile(ctx context.Context, path string) (*cedict.Stats, error) {
	if !d.lock.TryAcquire() {
		return nil, ErrInstallInProgress
	}
	defer d.lock.Release()

	entries, stats, err := cedict.ParseFile(path, d.logger.Named("cedict"))
	if err != nil {
		return nil, err
	}
	if err := d.install(ctx, entries); err != nil {
		return stats, err
	}
	return stats, nil
}

// Compatible reports whether an installed dataset with the current format
// version is present.
func (d *Dictionary) Compatible(ctx context.Context) (bool, error) {
	v, err := d.store.CurrentDataFormatVersion(ctx)
	if errors.Is(err, types.ErrMetadataUnavailable) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == types.DataFormatVersion, nil
}

// Status summarises the installed dataset.
type Status struct {
	Installed      bool      `json:"installed"`
	Compatible     bool      `json:"compatible"`
	Installing     bool      `json:"installing"`
	FormatVersion  int       `json:"format_version,omitempty"`
	CurrentVersion int       `json:"current_version"`
	BuiltAt        time.Time `json:"built_at,omitzero"`
	Entries        int       `json:"entries"`
}

// Status reads the metadata and entry count.
func (d *Dictionary) Status(ctx context.Context) (*Status, error) {
	st := &Status{
		Installing:     d.lock.Held(),
		CurrentVersion: types.DataFormatVersion,
	}

	md, err := d.store.Metadata(ctx)
	switch {
	case errors.Is(err, types.ErrMetadataUnavailable):
	case err != nil:
		return nil, err
	default:
		st.Installed = true
		st.FormatVersion = md.FormatVersion
		st.BuiltAt = md.BuiltAt
		st.Compatible = md.FormatVersion == types.DataFormatVersion
	}

	if st.Installed {
		n, err := d.store.Count(ctx)
		if err != nil {
			return nil, err
		}
		st.Entries = n
	}
	return st, nil
}

// Close waits for running searches and closes the store.
func (d *Dictionary) Close() error {
	if err := d.exec.Close(); err != nil {
		return err
	}
	return d.store.Close()
}
