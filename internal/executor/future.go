package executor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dshills/cedict-mcp/pkg/types"
)

// State is the lifecycle state of a Future.
type State int32

const (
	Pending State = iota
	Completed
	Cancelled
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Future is the handle of one submitted search. It leaves Pending exactly
// once; the first of completion and cancellation wins.
type Future struct {
	canceller *Canceller
	state     atomic.Int32
	done      chan struct{}

	// written once before done is closed
	results []types.DictionaryEntry
	err     error
}

func newFuture(c *Canceller) *Future {
	f := &Future{canceller: c, done: make(chan struct{})}
	c.Register(func() {
		f.resolve(Cancelled, nil, types.ErrSearchCancelled)
	})
	return f
}

// resolve moves the future out of Pending. It reports false when another
// outcome got there first.
func (f *Future) resolve(state State, results []types.DictionaryEntry, err error) bool {
	if !f.state.CompareAndSwap(int32(Pending), int32(state)) {
		return false
	}
	f.results = results
	f.err = err
	close(f.done)
	return true
}

// finish records the outcome of the search itself.
func (f *Future) finish(results []types.DictionaryEntry, err error) bool {
	switch {
	case err == nil:
		return f.resolve(Completed, results, nil)
	case errors.Is(err, types.ErrSearchCancelled):
		return f.resolve(Cancelled, nil, err)
	case errors.Is(err, types.ErrSearchFailed):
		return f.resolve(Failed, nil, err)
	default:
		return f.resolve(Failed, nil, fmt.Errorf("%w: %w", types.ErrSearchFailed, err))
	}
}

// Cancel requests cancellation. It is safe to call any number of times from
// any goroutine, and does nothing once the search has finished.
func (f *Future) Cancel() {
	f.canceller.Cancel()
}

// Canceller returns the token that cancels this search.
func (f *Future) Canceller() *Canceller {
	return f.canceller
}

// State returns the current state without blocking.
func (f *Future) State() State {
	return State(f.state.Load())
}

// Done is closed once the future has left Pending.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Results blocks until the search is terminal. A cancelled search returns
// an error matching types.ErrSearchCancelled, any other failure one
// matching types.ErrSearchFailed.
func (f *Future) Results() ([]types.DictionaryEntry, error) {
	<-f.done
	return f.results, f.err
}

// ResultsContext is Results with an abandonable wait. When ctx ends first it
// returns ctx's error; the search itself keeps running.
func (f *Future) ResultsContext(ctx context.Context) ([]types.DictionaryEntry, error) {
	select {
	case <-f.done:
		return f.results, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
