package executor

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/cedict-mcp/internal/query"
	"github.com/dshills/cedict-mcp/pkg/types"
)

// ErrExecutorClosed is returned by Submit after Close.
var ErrExecutorClosed = errors.New("executor closed")

// Searcher runs one query to completion, honouring ctx cancellation.
type Searcher interface {
	Search(ctx context.Context, q query.SearchQuery) ([]types.DictionaryEntry, error)
}

// Executor runs searches on background goroutines, at most Workers at a
// time.
type Executor struct {
	searcher Searcher
	sem      chan struct{}
	logger   *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// New creates an executor. workers <= 0 means runtime.NumCPU().
func New(searcher Searcher, workers int, logger *zap.Logger) *Executor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		searcher: searcher,
		sem:      make(chan struct{}, workers),
		logger:   logger,
	}
}

// Submit validates q and schedules it. It never blocks on a worker slot.
func (e *Executor) Submit(q query.SearchQuery) (*Future, error) {
	if _, err := query.NewPlan(q); err != nil {
		return nil, err
	}

	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return nil, ErrExecutorClosed
	}
	e.wg.Add(1)
	e.mu.RUnlock()

	ctx, cancel := context.WithCancel(context.Background())
	f := newFuture(NewCanceller())
	go e.run(ctx, cancel, f, q)
	return f, nil
}

// run executes one search. The cancel listener is registered before the
// worker waits for a slot, so a cancel at any point reaches the backend.
func (e *Executor) run(ctx context.Context, cancel context.CancelFunc, f *Future, q query.SearchQuery) {
	defer e.wg.Done()
	defer cancel()
	f.canceller.Register(cancel)

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		f.resolve(Cancelled, nil, fmt.Errorf("%w: %w", types.ErrSearchCancelled, ctx.Err()))
		return
	}
	defer func() { <-e.sem }()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("search panicked", zap.Any("panic", r), zap.String("input", q.Input()))
			f.resolve(Failed, nil, fmt.Errorf("%w: panic: %v", types.ErrSearchFailed, r))
		}
	}()

	results, err := e.searcher.Search(ctx, q)
	if !f.finish(results, err) {
		e.logger.Debug("search outcome discarded",
			zap.Stringer("mode", q.Mode),
			zap.String("input", q.Input()),
			zap.Stringer("state", f.State()))
	}
}

// Do submits q and waits for it. If ctx ends first the search is cancelled
// and the error matches both types.ErrSearchCancelled and ctx's error.
func (e *Executor) Do(ctx context.Context, q query.SearchQuery) ([]types.DictionaryEntry, error) {
	f, err := e.Submit(q)
	if err != nil {
		return nil, err
	}
	results, err := f.ResultsContext(ctx)
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		f.Cancel()
		return nil, fmt.Errorf("%w: %w", types.ErrSearchCancelled, err)
	}
	return results, err
}

// Close stops accepting searches and waits for running ones.
func (e *Executor) Close() error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.wg.Wait()
	return nil
}
