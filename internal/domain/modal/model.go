package modal

import "errors"

// Phase is the lifecycle position of a modal.
type Phase string

// Phase constants for the modal lifecycle.
const (
	PhaseClosed     Phase = "closed"
	PhaseOpen       Phase = "open"
	PhaseSubmitting Phase = "submitting"
	PhaseSuccess    Phase = "success"
	PhaseError      Phase = "error"
)

// Domain errors
var (
	ErrNotClosed      = errors.New("modal is already open")
	ErrNotOpen        = errors.New("modal is not open for submission")
	ErrSubmitting     = errors.New("modal cannot close while submitting")
	ErrSubmitInFlight = errors.New("a submission is already in progress")
	ErrNotSubmitting  = errors.New("modal has no submission in progress")
)

// Status is the outcome shown inside a modal after a submission.
type Status struct {
	Success bool
	Message string
}

// Modal is the state machine for one overlay holding a selected item of type T.
// The zero value is a closed modal.
type Modal[T any] struct {
	phase    Phase
	selected T
	hasSel   bool
	status   *Status
}

// State is a read-only view of a Modal.
type State[T any] struct {
	Phase        Phase
	IsOpen       bool
	Selected     T
	HasSelection bool
	Status       *Status
	IsSubmitting bool
}

// Phase returns the current phase.
func (m *Modal[T]) Phase() Phase {
	if m.phase == "" {
		return PhaseClosed
	}
	return m.phase
}

// IsOpen reports whether the overlay is visible.
// INVARIANT: true for every phase except closed
func (m *Modal[T]) IsOpen() bool {
	return m.Phase() != PhaseClosed
}

// Selected returns the selected item and whether one is set.
func (m *Modal[T]) Selected() (T, bool) {
	return m.selected, m.hasSel
}

// Open selects item and shows the overlay.
// PRE: modal is closed
// POST: phase is open, item selected, status cleared
func (m *Modal[T]) Open(item T) error {
	if m.Phase() != PhaseClosed {
		return ErrNotClosed
	}
	m.phase = PhaseOpen
	m.selected = item
	m.hasSel = true
	m.status = nil
	return nil
}

// Close hides the overlay and discards selection and status.
// PRE: modal is not submitting
// POST: modal equals its zero value
func (m *Modal[T]) Close() error {
	if m.Phase() == PhaseSubmitting {
		return ErrSubmitting
	}
	*m = Modal[T]{}
	return nil
}

// BeginSubmit moves an open modal into submitting.
// An errored modal stays open for correction, so it may submit again.
// PRE: phase is open or error
// POST: phase is submitting, status cleared
func (m *Modal[T]) BeginSubmit() error {
	switch m.Phase() {
	case PhaseOpen, PhaseError:
		m.phase = PhaseSubmitting
		m.status = nil
		return nil
	case PhaseSubmitting:
		return ErrSubmitInFlight
	default:
		return ErrNotOpen
	}
}

// Complete records the submission outcome.
// PRE: phase is submitting
// POST: phase is success or error, status set
func (m *Modal[T]) Complete(st Status) error {
	if m.Phase() != PhaseSubmitting {
		return ErrNotSubmitting
	}
	if st.Success {
		m.phase = PhaseSuccess
	} else {
		m.phase = PhaseError
	}
	m.status = &st
	return nil
}

// Snapshot returns a copy of the current state.
// INVARIANT: Modal is not mutated
func (m *Modal[T]) Snapshot() State[T] {
	var st *Status
	if m.status != nil {
		cp := *m.status
		st = &cp
	}
	return State[T]{
		Phase:        m.Phase(),
		IsOpen:       m.IsOpen(),
		Selected:     m.selected,
		HasSelection: m.hasSel,
		Status:       st,
		IsSubmitting: m.Phase() == PhaseSubmitting,
	}
}
