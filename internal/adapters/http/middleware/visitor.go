package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"breakthebeat/internal/application/orchestrators"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const visitorContextKey contextKey = "visitor"

const visitorCookieName = "btb_visitor"

// DefaultVisitorIdle is how long an untouched visitor session survives.
const DefaultVisitorIdle = 2 * time.Hour

// VisitorFactory builds the UI state for a new session.
type VisitorFactory func(id string) *orchestrators.Visitor

type visitorEntry struct {
	visitor  *orchestrators.Visitor
	lastSeen time.Time
}

// VisitorStore is an in-memory map from session token to visitor UI state.
type VisitorStore struct {
	mu      sync.Mutex
	entries map[string]*visitorEntry
	factory VisitorFactory
	idle    time.Duration
	now     func() time.Time
}

// NewVisitorStore creates an empty store. idle <= 0 uses DefaultVisitorIdle.
func NewVisitorStore(factory VisitorFactory, idle time.Duration) *VisitorStore {
	if idle <= 0 {
		idle = DefaultVisitorIdle
	}
	return &VisitorStore{
		entries: make(map[string]*visitorEntry),
		factory: factory,
		idle:    idle,
		now:     time.Now,
	}
}

// Create starts a new session and returns its token.
// POST: the visitor is stored under the returned token
func (s *VisitorStore) Create() (*orchestrators.Visitor, string, error) {
	token, err := generateToken()
	if err != nil {
		return nil, "", err
	}
	v := s.factory(uuid.NewString())

	s.mu.Lock()
	s.entries[token] = &visitorEntry{visitor: v, lastSeen: s.now()}
	s.mu.Unlock()
	slog.Debug("visitor_created", "visitor_id", v.ID)
	return v, token, nil
}

// Get returns the visitor for token and refreshes its idle timer.
// An expired session is disposed and reported missing.
func (s *VisitorStore) Get(token string) (*orchestrators.Visitor, bool) {
	s.mu.Lock()
	e, ok := s.entries[token]
	if !ok {
		s.mu.Unlock()
		return nil, false
	}
	now := s.now()
	if now.Sub(e.lastSeen) > s.idle {
		delete(s.entries, token)
		s.mu.Unlock()
		e.visitor.Dispose()
		return nil, false
	}
	e.lastSeen = now
	s.mu.Unlock()
	return e.visitor, true
}

// Sweep disposes every idle session and returns how many were removed.
func (s *VisitorStore) Sweep() int {
	now := s.now()
	var expired []*orchestrators.Visitor

	s.mu.Lock()
	for token, e := range s.entries {
		if now.Sub(e.lastSeen) > s.idle {
			expired = append(expired, e.visitor)
			delete(s.entries, token)
		}
	}
	s.mu.Unlock()

	for _, v := range expired {
		v.Dispose()
	}
	if len(expired) > 0 {
		slog.Info("visitors_swept", "count", len(expired))
	}
	return len(expired)
}

// Run sweeps every interval until ctx is cancelled, then disposes all sessions.
func (s *VisitorStore) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Close()
			return
		case <-t.C:
			s.Sweep()
		}
	}
}

// Close disposes every session.
func (s *VisitorStore) Close() {
	s.mu.Lock()
	entries := s.entries
	s.entries = make(map[string]*visitorEntry)
	s.mu.Unlock()
	for _, e := range entries {
		e.visitor.Dispose()
	}
}

// Len returns the number of live sessions.
func (s *VisitorStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// statelessPrefixes never get a visitor session.
var statelessPrefixes = []string{"/static/", "/healthz", "/api/", "/debug/"}

// Visitors attaches the caller's visitor to the request context, creating a session on first visit.
// The cookie is re-issued on every request so its lifetime tracks the server-side idle window.
func Visitors(store *VisitorStore, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, p := range statelessPrefixes {
				if strings.HasPrefix(r.URL.Path, p) {
					next.ServeHTTP(w, r)
					return
				}
			}

			var (
				v     *orchestrators.Visitor
				token string
			)
			if c, err := r.Cookie(visitorCookieName); err == nil && c.Value != "" {
				v, _ = store.Get(c.Value)
				token = c.Value
			}
			if v == nil {
				nv, nt, err := store.Create()
				if err != nil {
					slog.Error("visitor_create_failed", "error", err.Error())
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
					return
				}
				v, token = nv, nt
			}
			setVisitorCookie(w, token, secure, store.idle)
			next.ServeHTTP(w, r.WithContext(ContextWithVisitor(r.Context(), v)))
		})
	}
}

// VisitorFromContext returns the visitor attached by Visitors.
func VisitorFromContext(ctx context.Context) (*orchestrators.Visitor, bool) {
	v, ok := ctx.Value(visitorContextKey).(*orchestrators.Visitor)
	return v, ok && v != nil
}

// ContextWithVisitor returns ctx carrying v.
func ContextWithVisitor(ctx context.Context, v *orchestrators.Visitor) context.Context {
	return context.WithValue(ctx, visitorContextKey, v)
}

func setVisitorCookie(w http.ResponseWriter, token string, secure bool, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
	})
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
