package orchestrators

import (
	"sync"

	"breakthebeat/internal/domain/content"
	"breakthebeat/internal/domain/modal"
)

// ProjectModal drives the project detail overlay for one visitor. It has no submit action.
type ProjectModal struct {
	mu       sync.Mutex
	m        modal.Modal[content.Project]
	lock     *modal.ScrollLock
	release  func()
	disposed bool
}

// NewProjectModal creates a closed project modal.
func NewProjectModal(lock *modal.ScrollLock) *ProjectModal {
	return &ProjectModal{lock: lock}
}

// Open shows the detail view for p.
// PRE: modal is closed
// POST: phase is open with p selected; scroll lock held
func (c *ProjectModal) Open(p content.Project) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return ErrDisposed
	}
	if err := c.m.Open(p); err != nil {
		return err
	}
	c.release = c.lock.Acquire()
	return nil
}

// Close hides the detail view. Closing an already closed modal is a no-op.
func (c *ProjectModal) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return ErrDisposed
	}
	if err := c.m.Close(); err != nil {
		return err
	}
	if c.release != nil {
		c.release()
		c.release = nil
	}
	return nil
}

// Snapshot returns the current modal state.
func (c *ProjectModal) Snapshot() modal.State[content.Project] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m.Snapshot()
}

// Dispose releases the scroll lock and rejects further use.
func (c *ProjectModal) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.disposed = true
	if c.release != nil {
		c.release()
		c.release = nil
	}
	c.m = modal.Modal[content.Project]{}
}
