package dictionary

import "sync/atomic"

// installLock is a non-blocking mutex guarding dataset installation.
type installLock struct {
	state atomic.Int32 // 0 = idle, 1 = installing
}

// TryAcquire takes the lock if it is free and reports whether it did.
func (l *installLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release must only be called by the holder.
func (l *installLock) Release() {
	l.state.Store(0)
}

// Held reports whether an install is running.
func (l *installLock) Held() bool {
	return l.state.Load() == 1
}
