package orchestrators

import (
	"context"
	"errors"
	"sync"
	"time"

	"breakthebeat/internal/domain/contact"
	"breakthebeat/internal/domain/content"
	"breakthebeat/internal/domain/modal"
)

// DefaultAutoCloseDelay is how long a success message stays visible.
const DefaultAutoCloseDelay = 3 * time.Second

// ErrDisposed is returned by controllers after their visitor session has ended.
var ErrDisposed = errors.New("visitor session has ended")

// SubmitFunc relays a contact request. ExecuteSubmitContact bound to its deps satisfies it.
type SubmitFunc func(ctx context.Context, req contact.Request) contact.Result

// ContactModal drives the service contact overlay for one visitor.
// INVARIANT: at most one submission is in flight; the send runs outside mu
type ContactModal struct {
	mu        sync.Mutex
	m         modal.Modal[content.Service]
	lock      *modal.ScrollLock
	release   func()
	submit    SubmitFunc
	autoClose time.Duration
	timer     *time.Timer
	gen       uint64
	disposed  bool
}

// NewContactModal creates a closed contact modal sharing lock with the visitor's other overlays.
// PRE: lock and submit are non-nil
// POST: Returns a closed controller; autoClose <= 0 uses DefaultAutoCloseDelay
func NewContactModal(lock *modal.ScrollLock, submit SubmitFunc, autoClose time.Duration) *ContactModal {
	if autoClose <= 0 {
		autoClose = DefaultAutoCloseDelay
	}
	return &ContactModal{lock: lock, submit: submit, autoClose: autoClose}
}

// Open shows the modal for svc and locks page scrolling.
// PRE: modal is closed
// POST: phase is open with svc selected; scroll lock held
func (c *ContactModal) Open(svc content.Service) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return ErrDisposed
	}
	if err := c.m.Open(svc); err != nil {
		return err
	}
	c.gen++
	c.release = c.lock.Acquire()
	return nil
}

// Close hides the modal, discarding selection and status.
// PRE: no submission in flight
// POST: phase is closed; scroll lock released; pending auto-close cancelled
func (c *ContactModal) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return ErrDisposed
	}
	return c.closeLocked()
}

func (c *ContactModal) closeLocked() error {
	if err := c.m.Close(); err != nil {
		return err
	}
	c.stopTimerLocked()
	c.releaseLocked()
	c.gen++
	return nil
}

// Submit sends the form for the selected service. The subject is the service title.
// A repeated call while the first is in flight returns modal.ErrSubmitInFlight without sending.
// PRE: phase is open or error
// POST: phase is success (auto-close scheduled) or error; the Result is returned
func (c *ContactModal) Submit(ctx context.Context, emailAddr, description string) (contact.Result, error) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return contact.Result{}, ErrDisposed
	}
	if err := c.m.BeginSubmit(); err != nil {
		c.mu.Unlock()
		return contact.Result{}, err
	}
	svc, _ := c.m.Selected()
	gen := c.gen
	c.mu.Unlock()

	res := c.submit(ctx, contact.Request{
		Email:       emailAddr,
		Description: description,
		Subject:     svc.Title,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	// Dropped: the visitor left while the send was running.
	if c.disposed || c.gen != gen {
		return res, nil
	}
	if err := c.m.Complete(modal.Status{Success: res.Success, Message: res.Message}); err != nil {
		return res, err
	}
	if res.Success {
		c.scheduleAutoCloseLocked(gen)
	}
	return res, nil
}

func (c *ContactModal) scheduleAutoCloseLocked(gen uint64) {
	c.stopTimerLocked()
	c.timer = time.AfterFunc(c.autoClose, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.disposed || c.gen != gen || c.m.Phase() != modal.PhaseSuccess {
			return
		}
		c.timer = nil
		_ = c.closeLocked()
	})
}

func (c *ContactModal) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *ContactModal) releaseLocked() {
	if c.release != nil {
		c.release()
		c.release = nil
	}
}

// Snapshot returns the current modal state.
func (c *ContactModal) Snapshot() modal.State[content.Service] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m.Snapshot()
}

// Dispose tears the controller down. Results of an in-flight send are dropped.
// POST: scroll lock released; no timer pending; further calls return ErrDisposed
func (c *ContactModal) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.disposed = true
	c.stopTimerLocked()
	c.releaseLocked()
	c.m = modal.Modal[content.Service]{}
}
