package orchestrators

import (
	"sync"
	"time"

	"breakthebeat/internal/domain/modal"
)

// Visitor is the UI state of one browser session: both modals, the mobile menu
// and the scroll lock they share.
type Visitor struct {
	ID      string
	Scroll  *modal.ScrollLock
	Project *ProjectModal
	Contact *ContactModal

	mu          sync.Mutex
	menuOpen    bool
	menuRelease func()
	disposed    bool
}

// NewVisitor creates a visitor with every overlay closed.
// PRE: submit is non-nil
// POST: Scroll is unlocked
func NewVisitor(id string, submit SubmitFunc, autoClose time.Duration) *Visitor {
	lock := &modal.ScrollLock{}
	return &Visitor{
		ID:      id,
		Scroll:  lock,
		Project: NewProjectModal(lock),
		Contact: NewContactModal(lock, submit, autoClose),
	}
}

// ToggleMenu opens or closes the mobile menu and returns the new state.
// An open menu holds the scroll lock.
func (v *Visitor) ToggleMenu() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.disposed {
		return false
	}
	if v.menuOpen {
		v.closeMenuLocked()
		return false
	}
	v.menuOpen = true
	v.menuRelease = v.Scroll.Acquire()
	return true
}

// CloseMenu closes the mobile menu if open.
func (v *Visitor) CloseMenu() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closeMenuLocked()
}

func (v *Visitor) closeMenuLocked() {
	v.menuOpen = false
	if v.menuRelease != nil {
		v.menuRelease()
		v.menuRelease = nil
	}
}

// MenuOpen reports whether the mobile menu is showing.
func (v *Visitor) MenuOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.menuOpen
}

// ScrollLocked reports whether the page body must not scroll.
func (v *Visitor) ScrollLocked() bool {
	return v.Scroll.Locked()
}

// Dispose tears down every overlay. Safe to call more than once.
// POST: scroll lock fully released
func (v *Visitor) Dispose() {
	v.mu.Lock()
	if v.disposed {
		v.mu.Unlock()
		return
	}
	v.disposed = true
	v.closeMenuLocked()
	v.mu.Unlock()

	v.Project.Dispose()
	v.Contact.Dispose()
}
