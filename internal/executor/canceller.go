package executor

import "sync"

// Canceller is a one-shot cancellation token. Listeners run exactly once,
// either when Cancel is first called or, if registered afterwards,
// immediately on Register.
type Canceller struct {
	mu        sync.Mutex
	cancelled bool
	listeners []func()
}

// NewCanceller returns an active token.
func NewCanceller() *Canceller {
	return &Canceller{}
}

// Register adds a listener. Listeners run on the goroutine that cancels and
// must not block.
func (c *Canceller) Register(fn func()) {
	c.mu.Lock()
	if c.cancelled {
		c.mu.Unlock()
		fn()
		return
	}
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Cancel notifies all listeners. Later calls do nothing.
func (c *Canceller) Cancel() {
	c.mu.Lock()
	if c.cancelled {
		c.mu.Unlock()
		return
	}
	c.cancelled = true
	listeners := c.listeners
	c.listeners = nil
	c.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Cancelled reports whether Cancel has been called.
func (c *Canceller) Cancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelled
}
