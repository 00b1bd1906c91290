package web

import (
	"errors"
	"net/http"

	"breakthebeat/internal/application/orchestrators"
	"breakthebeat/internal/domain/contact"
	"breakthebeat/internal/domain/modal"
)

// maxContactBody caps form and JSON submissions.
const maxContactBody = 64 << 10

// handleOpenContact shows the contact modal for one service.
func (h *handlers) handleOpenContact(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorOrFail(w, r)
	if !ok {
		return
	}
	site := h.deps.Content.Site()
	svc, err := site.ServiceByID(r.PathValue("id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	v.CloseMenu()
	err = v.Contact.Open(svc)
	if errors.Is(err, modal.ErrNotClosed) {
		// Another service was selected; switch unless a send is running.
		if cerr := v.Contact.Close(); cerr != nil {
			if isModalConflict(cerr) {
				contactModalConflict(w, cerr)
				return
			}
			internalError(w, cerr)
			return
		}
		err = v.Contact.Open(svc)
	}
	if err != nil {
		internalError(w, err)
		return
	}
	seeOther(w, r, "/#services")
}

// handleSubmitContact posts the contact form for the selected service.
func (h *handlers) handleSubmitContact(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorOrFail(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxContactBody)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	_, err := v.Contact.Submit(r.Context(), r.PostFormValue("email"), r.PostFormValue("description"))
	switch {
	case err == nil:
	case errors.Is(err, modal.ErrSubmitInFlight):
		// Repeated submit: nothing is sent and the page shows the pending request.
	case isModalConflict(err):
		contactModalConflict(w, err)
		return
	case errors.Is(err, modal.ErrNotOpen), errors.Is(err, orchestrators.ErrDisposed):
		// Stale form: the modal already closed. Show the page as it is now.
	default:
		internalError(w, err)
		return
	}
	seeOther(w, r, "/#services")
}

// handleCloseContact hides the contact modal. It is refused while a send is in flight.
func (h *handlers) handleCloseContact(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorOrFail(w, r)
	if !ok {
		return
	}
	if err := v.Contact.Close(); err != nil {
		if isModalConflict(err) {
			contactModalConflict(w, err)
			return
		}
		internalError(w, err)
		return
	}
	seeOther(w, r, "/#services")
}

// handleAPIContact is the RPC form of the contact action.
// Every decoded request yields 200 with a Result; only undecodable bodies get 400.
func (h *handlers) handleAPIContact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxContactBody)
	var req contact.Request
	if err := strictDecode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, contact.Result{Success: false, Message: contact.MsgUnexpected})
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Submit(r.Context(), req))
}
