// ABOUTME: Shutdown flag with wake hooks
// ABOUTME: Monotonic false-to-true signal observed by queue waiters and loops
package lifecycle

import (
	"sync"
	"sync/atomic"
)

// Shutdown is a session-wide, monotonic shutdown flag
type Shutdown struct {
	flag  atomic.Bool
	done  chan struct{}
	mu    sync.Mutex
	hooks []func()
}

// New creates an unset shutdown flag
func New() *Shutdown {
	return &Shutdown{
		done: make(chan struct{}),
	}
}

// Signal sets the flag and runs every registered hook. Calls after the
// first have no effect.
func (s *Shutdown) Signal() {
	s.mu.Lock()
	if s.flag.Load() {
		s.mu.Unlock()
		return
	}
	s.flag.Store(true)
	close(s.done)
	hooks := s.hooks
	s.hooks = nil
	s.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
}

// IsShutdown reports whether Signal has been called
func (s *Shutdown) IsShutdown() bool {
	return s.flag.Load()
}

// Done returns a channel closed when the flag is set
func (s *Shutdown) Done() <-chan struct{} {
	return s.done
}

// OnSignal registers fn to run once when the flag is set. If the flag is
// already set fn runs immediately on the calling goroutine.
func (s *Shutdown) OnSignal(fn func()) {
	s.mu.Lock()
	if s.flag.Load() {
		s.mu.Unlock()
		fn()
		return
	}
	s.hooks = append(s.hooks, fn)
	s.mu.Unlock()
}
