package web

import (
	"crypto/rand"
	"log"
	"net/http"
	"time"

	"breakthebeat/internal/adapters/http/middleware"
	"breakthebeat/internal/adapters/http/perf"
	"breakthebeat/internal/application/orchestrators"
	"breakthebeat/internal/application/projections"
)

// Deps holds everything the HTTP layer needs.
type Deps struct {
	Content  projections.HomePageContent
	Visitors *middleware.VisitorStore
	Submit   orchestrators.SubmitFunc // used by the JSON endpoint; form posts go through the visitor's modal
	Perf     *perf.Collector

	// RateLimiter is optional; nil disables per-IP limiting.
	RateLimiter *middleware.RateLimiter

	StaticDir      string
	CSRFKey        []byte // 32 bytes; nil generates a per-process key
	TrustedOrigins []string
	Production     bool
	Brand          string
	AutoCloseDelay time.Duration
	SlowRequest    time.Duration
}

type handlers struct {
	deps Deps
}

// csrfKeyOrRandom returns key, or a random one for development.
func csrfKeyOrRandom(key []byte) []byte {
	if len(key) == 32 {
		return key
	}
	key = make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (forms won't survive restart). Set BREAKTHEBEAT_CSRF_KEY for production.")
	return key
}

// registerRoutes binds every route to h.
func registerRoutes(mux *http.ServeMux, h *handlers) {
	mux.HandleFunc("GET /{$}", h.handleHome)
	mux.HandleFunc("GET /projects/{id}", h.handleOpenProject)
	mux.HandleFunc("GET /modals/project/close", h.handleCloseProject)
	mux.HandleFunc("GET /services/{id}/contact", h.handleOpenContact)
	mux.HandleFunc("POST /services/contact", h.handleSubmitContact)
	mux.HandleFunc("GET /modals/contact/close", h.handleCloseContact)
	mux.HandleFunc("GET /menu/toggle", h.handleMenuToggle)
	mux.HandleFunc("GET /menu/close", h.handleMenuClose)
	mux.HandleFunc("POST /api/contact", h.handleAPIContact)
	mux.HandleFunc("GET /healthz", h.handleHealthz)
	if !h.deps.Production {
		mux.HandleFunc("GET /debug/perf", h.handleDebugPerf)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(h.deps.StaticDir))))
}

// NewMux wires handlers and middleware.
// Order, outermost first: Timing, RateLimit, SecurityHeaders, CSRF, Visitors.
func NewMux(d Deps) http.Handler {
	if d.AutoCloseDelay <= 0 {
		d.AutoCloseDelay = orchestrators.DefaultAutoCloseDelay
	}
	h := &handlers{deps: d}

	mux := http.NewServeMux()
	registerRoutes(mux, h)

	chain := []func(http.Handler) http.Handler{
		middleware.Visitors(d.Visitors, d.Production),
		middleware.CSRF(csrfKeyOrRandom(d.CSRFKey), middleware.CSRFOptions{
			Secure:         d.Production,
			TrustedOrigins: d.TrustedOrigins,
		}),
		middleware.SecurityHeaders,
	}
	if d.RateLimiter != nil {
		chain = append(chain, middleware.RateLimit(d.RateLimiter))
	}
	chain = append(chain, middleware.Timing(d.Perf, d.SlowRequest))

	return middleware.Chain(mux, chain...)
}
