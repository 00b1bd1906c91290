package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"breakthebeat/internal/adapters/http/perf"
)

func serveTimed(t *testing.T, collector *perf.Collector, path string, status int) *httptest.ResponseRecorder {
	t.Helper()
	h := Timing(collector, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != 0 {
			w.WriteHeader(status)
		}
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

// TestTiming_RecordsEntry records method, path and status.
func TestTiming_RecordsEntry(t *testing.T) {
	c := perf.NewCollector(10)
	serveTimed(t, c, "/projects/crew", http.StatusSeeOther)

	snap := c.Snapshot(time.Now().Add(-time.Minute), 5)
	if c.TotalRecorded() != 1 || len(snap.SlowestPaths) != 1 {
		t.Fatalf("recorded %d, paths %+v", c.TotalRecorded(), snap.SlowestPaths)
	}
	if snap.SlowestPaths[0].Path != "GET /projects/crew" {
		t.Errorf("path = %q", snap.SlowestPaths[0].Path)
	}
}

// TestTiming_SkipsStatic leaves asset requests out of the collector.
func TestTiming_SkipsStatic(t *testing.T) {
	c := perf.NewCollector(10)
	rr := serveTimed(t, c, "/static/css/site.css", 0)
	if c.TotalRecorded() != 0 {
		t.Errorf("TotalRecorded = %d, want 0", c.TotalRecorded())
	}
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d", rr.Code)
	}
}

// TestTiming_NilCollector still serves the request.
func TestTiming_NilCollector(t *testing.T) {
	rr := serveTimed(t, nil, "/", http.StatusTeapot)
	if rr.Code != http.StatusTeapot {
		t.Errorf("status = %d", rr.Code)
	}
}

// TestTiming_ImplicitWriteHeader records handlers that only call Write.
func TestTiming_ImplicitWriteHeader(t *testing.T) {
	c := perf.NewCollector(10)
	h := Timing(c, time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	snap := c.Snapshot(time.Now().Add(-time.Minute), 5)
	if snap.SlowestPaths[0].Count != 1 {
		t.Fatalf("paths = %+v", snap.SlowestPaths)
	}
}
