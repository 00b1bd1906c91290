package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"breakthebeat/internal/adapters/http/middleware"
	"breakthebeat/internal/application/orchestrators"
	"breakthebeat/internal/application/projections"
	"breakthebeat/internal/domain/modal"
)

//go:embed templates/*.html
var templatesFS embed.FS

// mdRenderer renders project descriptions. Raw HTML in the input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// baseTemplates is parsed once; request-bound funcs are rebound on a clone.
var baseTemplates = template.Must(
	template.New("layout.html").Funcs(template.FuncMap{
		"csrfField":      func() template.HTML { return "" },
		"renderMarkdown": renderMarkdown,
		"serviceIcon":    serviceIcon,
		"socialIcon":     socialIcon,
		"join":           strings.Join,
	}).ParseFS(templatesFS, "templates/*.html"),
)

// renderMarkdown renders each line of text as its own paragraph.
func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	src := strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\n", "\n\n")
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(text) + "</p>")
	}
	return template.HTML(buf.String())
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("json_encode_failed", "error", err.Error())
	}
}

// pageData is what layout.html executes against.
type pageData struct {
	projections.HomePage
	Brand          string
	RefreshSeconds int
}

func (h *handlers) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	tpl, err := baseTemplates.Clone()
	if err != nil {
		internalError(w, err)
		return
	}
	tpl.Funcs(template.FuncMap{
		"csrfField": func() template.HTML { return csrf.TemplateField(r) },
	})

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, name, data); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	buf.WriteTo(w)
}

// visitorOrFail returns the request's visitor or writes a 500.
func visitorOrFail(w http.ResponseWriter, r *http.Request) (*orchestrators.Visitor, bool) {
	v, ok := middleware.VisitorFromContext(r.Context())
	if !ok {
		internalError(w, errors.New("visitor middleware not installed"))
		return nil, false
	}
	return v, true
}

func seeOther(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// handleHome renders the page with the visitor's current overlays.
func (h *handlers) handleHome(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorOrFail(w, r)
	if !ok {
		return
	}
	page := projections.QueryHomePage(projections.HomePageInput{
		MenuOpen:     v.MenuOpen(),
		ScrollLocked: v.ScrollLocked(),
		Project:      v.Project.Snapshot(),
		Contact:      v.Contact.Snapshot(),
	}, projections.HomePageDeps{Content: h.deps.Content})

	data := pageData{HomePage: page, Brand: h.deps.Brand}
	if page.ContactModal != nil && page.ContactModal.AutoClose {
		data.RefreshSeconds = int((h.deps.AutoCloseDelay + time.Second - 1) / time.Second)
	}
	h.renderTemplate(w, r, "layout.html", data)
}

// handleOpenProject shows the detail modal for one project.
func (h *handlers) handleOpenProject(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorOrFail(w, r)
	if !ok {
		return
	}
	site := h.deps.Content.Site()
	p, err := site.ProjectByID(r.PathValue("id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	v.CloseMenu()
	// Only one project is shown at a time; opening another replaces it.
	if err := v.Project.Close(); err != nil {
		internalError(w, err)
		return
	}
	if err := v.Project.Open(p); err != nil {
		internalError(w, err)
		return
	}
	seeOther(w, r, "/#about-us")
}

// handleCloseProject hides the project modal.
func (h *handlers) handleCloseProject(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorOrFail(w, r)
	if !ok {
		return
	}
	if err := v.Project.Close(); err != nil {
		internalError(w, err)
		return
	}
	seeOther(w, r, "/#about-us")
}

// handleMenuToggle opens or closes the mobile menu, then returns to next when it is a local path.
func (h *handlers) handleMenuToggle(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorOrFail(w, r)
	if !ok {
		return
	}
	v.ToggleMenu()
	seeOther(w, r, localTarget(r.URL.Query().Get("next")))
}

// handleMenuClose closes the mobile menu and follows a menu link.
func (h *handlers) handleMenuClose(w http.ResponseWriter, r *http.Request) {
	v, ok := visitorOrFail(w, r)
	if !ok {
		return
	}
	v.CloseMenu()
	seeOther(w, r, localTarget(r.URL.Query().Get("next")))
}

// localTarget accepts only same-origin paths and fragments.
func localTarget(next string) string {
	switch {
	case strings.HasPrefix(next, "#"):
		return "/" + next
	case strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.Contains(next, "\\"):
		return next
	default:
		return "/"
	}
}

// handleHealthz reports liveness.
func (h *handlers) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDebugPerf serves the last 15 minutes of timings.
func (h *handlers) handleDebugPerf(w http.ResponseWriter, r *http.Request) {
	if h.deps.Perf == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Perf.Snapshot(time.Now().Add(-15*time.Minute), 10))
}

var svgIcons = map[string]template.HTML{
	"class":  `<svg xmlns="http://www.w3.org/2000/svg" width="28" height="28" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"><path d="M4 19.5v-15A2.5 2.5 0 0 1 6.5 2H20v20H6.5a2.5 2.5 0 0 1 0-5H20"/></svg>`,
	"show":   `<svg xmlns="http://www.w3.org/2000/svg" width="28" height="28" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"><polygon points="12 2 15.09 8.26 22 9.27 17 14.14 18.18 21.02 12 17.77 5.82 21.02 7 14.14 2 9.27 8.91 8.26 12 2"/></svg>`,
	"event":  `<svg xmlns="http://www.w3.org/2000/svg" width="28" height="28" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"><path d="M12 2v20"/><path d="M17 5H9.5a3.5 3.5 0 0 0 0 7h5a3.5 3.5 0 0 1 0 7H6"/></svg>`,
	"custom": `<svg xmlns="http://www.w3.org/2000/svg" width="28" height="28" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"><path d="M2 12h4l3-9 5 18 3-9h5"/></svg>`,
}

var socialIcons = map[string]template.HTML{
	"instagram": `<svg xmlns="http://www.w3.org/2000/svg" width="20" height="20" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"><rect width="20" height="20" x="2" y="2" rx="5" ry="5"/><path d="M16 11.37A4 4 0 1 1 12.63 8 4 4 0 0 1 16 11.37z"/><line x1="17.5" x2="17.51" y1="6.5" y2="6.5"/></svg>`,
	"youtube":   `<svg xmlns="http://www.w3.org/2000/svg" width="20" height="20" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"><path d="M2.5 17a24.12 24.12 0 0 1 0-10 2 2 0 0 1 1.4-1.4 49.56 49.56 0 0 1 16.2 0A2 2 0 0 1 21.5 7a24.12 24.12 0 0 1 0 10 2 2 0 0 1-1.4 1.4 49.55 49.55 0 0 1-16.2 0A2 2 0 0 1 2.5 17"/><path d="m10 15 5-3-5-3z"/></svg>`,
	"tiktok":    `<svg xmlns="http://www.w3.org/2000/svg" width="20" height="20" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"><path d="M9 12a4 4 0 1 0 4 4V4a5 5 0 0 0 5 5"/></svg>`,
}

// serviceIcon returns the glyph for a service icon key; unknown keys render nothing.
func serviceIcon(key string) template.HTML { return svgIcons[key] }

// socialIcon returns the glyph for a footer social key; unknown keys render nothing.
func socialIcon(key string) template.HTML { return socialIcons[key] }

// contactModalConflict is written when the contact modal cannot change while a send is in flight.
func contactModalConflict(w http.ResponseWriter, err error) {
	slog.Debug("contact_modal_conflict", "error", err.Error())
	http.Error(w, "Tu mensaje se está enviando.", http.StatusConflict)
}

// isModalConflict reports errors caused by a submission in flight.
func isModalConflict(err error) bool {
	return errors.Is(err, modal.ErrSubmitting) || errors.Is(err, modal.ErrSubmitInFlight)
}
