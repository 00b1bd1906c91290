//go:build browser

package web_test

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"breakthebeat/internal/adapters/content"
	"breakthebeat/internal/adapters/email"
	web "breakthebeat/internal/adapters/http"
	"breakthebeat/internal/adapters/http/middleware"
	"breakthebeat/internal/adapters/http/perf"
	"breakthebeat/internal/application/orchestrators"
	"breakthebeat/internal/domain/contact"
)

// recordingSender keeps every message instead of delivering it.
type recordingSender struct {
	mu   sync.Mutex
	sent []email.SendRequest
}

// Send implements email.Sender.
func (s *recordingSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, req)
	return email.SendResult{MessageID: fmt.Sprintf("rec-%d", len(s.sent)), SentAt: time.Now()}, nil
}

func (s *recordingSender) subjects() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.sent))
	for _, r := range s.sent {
		out = append(out, r.Subject)
	}
	return out
}

// browserApp holds the running site and Playwright handles.
type browserApp struct {
	BaseURL string
	Sender  *recordingSender
	Browser playwright.Browser
}

// newBrowserApp serves the embedded content on a free port and starts Chromium.
func newBrowserApp(t *testing.T) *browserApp {
	t.Helper()

	store := content.NewStore(content.Embedded())
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("failed to load content: %v", err)
	}

	sender := &recordingSender{}
	submit := func(ctx context.Context, req contact.Request) contact.Result {
		return orchestrators.ExecuteSubmitContact(ctx, req, orchestrators.SubmitContactDeps{
			Sender:      sender,
			FromAddress: "hola@example.com",
			ToAddress:   "dest@example.com",
		})
	}
	visitors := middleware.NewVisitorStore(func(id string) *orchestrators.Visitor {
		return orchestrators.NewVisitor(id, submit, orchestrators.DefaultAutoCloseDelay)
	}, 0)
	t.Cleanup(visitors.Close)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	baseURL := "http://" + listener.Addr().String()

	srv := &http.Server{Handler: web.NewMux(web.Deps{
		Content:        store,
		Visitors:       visitors,
		Submit:         submit,
		Perf:           perf.NewCollector(0),
		StaticDir:      filepath.Join(findProjectRoot(t), "static"),
		CSRFKey:        []byte("0123456789abcdef0123456789abcdef"),
		TrustedOrigins: []string{listener.Addr().String()},
	})}
	go func() {
		if err := srv.Serve(listener); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	pw, err := playwright.Run()
	if err != nil {
		t.Skipf("playwright unavailable: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		pw.Stop()
		t.Skipf("chromium unavailable: %v", err)
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
	})
	return &browserApp{BaseURL: baseURL, Sender: sender, Browser: browser}
}

// newPage opens a tab at the home page.
func (a *browserApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	if _, err := page.Goto(a.BaseURL + "/"); err != nil {
		t.Fatalf("failed to navigate home: %v", err)
	}
	return page
}

func waitVisible(t *testing.T, page playwright.Page, selector string) {
	t.Helper()
	err := page.Locator(selector).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(5000),
	})
	if err != nil {
		t.Fatalf("%s not visible: %v", selector, err)
	}
}

func waitHidden(t *testing.T, page playwright.Page, selector string, timeoutMs float64) {
	t.Helper()
	err := page.Locator(selector).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateDetached,
		Timeout: playwright.Float(timeoutMs),
	})
	if err != nil {
		t.Fatalf("%s still present: %v", selector, err)
	}
}

func bodyClass(t *testing.T, page playwright.Page) string {
	t.Helper()
	class, err := page.Locator("body").GetAttribute("class")
	if err != nil {
		t.Fatalf("failed to read body class: %v", err)
	}
	return class
}

// TestBrowser_ProjectModal opens the long project and closes it again.
func TestBrowser_ProjectModal(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	app := newBrowserApp(t)
	page := app.newPage(t)

	if err := page.Locator(`[data-testid="project-crew"] >> text=Ver más`).Click(); err != nil {
		t.Fatalf("failed to click Ver más: %v", err)
	}
	waitVisible(t, page, `[data-testid="project-modal"]`)
	if bodyClass(t, page) != "overflow-hidden" {
		t.Error("body scroll not locked while project modal is open")
	}

	if err := page.Locator(`[data-testid="project-modal"] .dialog__close`).Click(); err != nil {
		t.Fatalf("failed to close modal: %v", err)
	}
	waitHidden(t, page, `[data-testid="project-modal"]`, 5000)
	if bodyClass(t, page) != "" {
		t.Error("body scroll still locked after close")
	}
}

// TestBrowser_ContactFlow submits a request and waits for the modal to close itself.
func TestBrowser_ContactFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	app := newBrowserApp(t)
	page := app.newPage(t)

	if err := page.Locator(`[data-testid="service-dj-set"] >> text=Consultar`).Click(); err != nil {
		t.Fatalf("failed to click Consultar: %v", err)
	}
	waitVisible(t, page, `[data-testid="contact-modal"]`)

	if err := page.Locator("#email").Fill("cliente@example.com"); err != nil {
		t.Fatalf("failed to fill email: %v", err)
	}
	if err := page.Locator("#description").Fill("Fiesta de 15, 150 personas"); err != nil {
		t.Fatalf("failed to fill description: %v", err)
	}
	if err := page.Locator(`[data-testid="contact-modal"] button[type=submit]`).Click(); err != nil {
		t.Fatalf("failed to submit: %v", err)
	}

	waitVisible(t, page, `[data-testid="contact-status"] >> text=`+contact.MsgSent)
	waitHidden(t, page, `[data-testid="contact-modal"]`, 10000)

	got := app.Sender.subjects()
	if len(got) != 1 || got[0] != "Pedido de [DJ Set] - Breakthebeat" {
		t.Errorf("subjects = %v", got)
	}
}

// TestBrowser_MobileMenu opens the menu on a phone viewport and follows a link.
func TestBrowser_MobileMenu(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	app := newBrowserApp(t)
	page := app.newPage(t)
	if err := page.SetViewportSize(390, 844); err != nil {
		t.Fatalf("failed to resize: %v", err)
	}

	if err := page.Locator(`[data-testid="menu-toggle"]`).Click(); err != nil {
		t.Fatalf("failed to open menu: %v", err)
	}
	waitVisible(t, page, `[data-testid="mobile-menu"].mobile-menu--open`)
	if bodyClass(t, page) != "overflow-hidden" {
		t.Error("body scroll not locked while menu is open")
	}

	if err := page.Locator(`[data-testid="mobile-menu"] a`).First().Click(); err != nil {
		t.Fatalf("failed to follow menu link: %v", err)
	}
	waitHidden(t, page, `[data-testid="mobile-menu"].mobile-menu--open`, 5000)
}

// findProjectRoot walks up from the working directory to the directory holding go.mod.
func findProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find project root (go.mod) from working directory")
		}
		dir = parent
	}
}
