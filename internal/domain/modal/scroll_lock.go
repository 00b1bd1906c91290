package modal

import "sync"

// ScrollLock suspends background page scrolling while at least one holder is active.
// Holders acquire on open and must call the returned release on every exit path.
type ScrollLock struct {
	mu    sync.Mutex
	count int
}

// Acquire takes a reference on the lock.
// PRE: none
// POST: Locked() is true until the returned func is called; calling it twice is a no-op
func (l *ScrollLock) Acquire() (release func()) {
	l.mu.Lock()
	l.count++
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			l.count--
			l.mu.Unlock()
		})
	}
}

// Locked reports whether any holder is active.
func (l *ScrollLock) Locked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count > 0
}

// Holders returns the number of active references.
func (l *ScrollLock) Holders() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}
