package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"breakthebeat/internal/adapters/content"
	emailPkg "breakthebeat/internal/adapters/email"
	web "breakthebeat/internal/adapters/http"
	"breakthebeat/internal/adapters/http/middleware"
	"breakthebeat/internal/adapters/http/perf"
	"breakthebeat/internal/adapters/tracing"
	"breakthebeat/internal/application/orchestrators"
	"breakthebeat/internal/config"
	"breakthebeat/internal/domain/contact"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

const (
	sweepInterval   = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx)
	if err != nil {
		log.Fatalf("failed to start tracing: %v", err)
	}

	// Content: embedded copy unless CONTENT_DIR points at an editable directory
	var contentFS fs.FS = content.Embedded()
	if cfg.ContentDir != "" {
		contentFS = os.DirFS(cfg.ContentDir)
	}
	store := content.NewStore(contentFS)
	if err := store.Load(ctx); err != nil {
		log.Fatalf("failed to load content: %v", err)
	}

	sender := newSender(cfg)
	collector := perf.NewCollector(perf.DefaultRingSize)
	submitDeps := orchestrators.SubmitContactDeps{
		Sender:         sender,
		FromAddress:    cfg.Mail.From,
		ToAddress:      cfg.Mail.To,
		Brand:          cfg.Brand,
		Timeout:        cfg.Mail.Timeout,
		RecordDelivery: collector.RecordDelivery,
	}
	submit := func(ctx context.Context, req contact.Request) contact.Result {
		return orchestrators.ExecuteSubmitContact(ctx, req, submitDeps)
	}

	visitors := middleware.NewVisitorStore(func(id string) *orchestrators.Visitor {
		return orchestrators.NewVisitor(id, submit, orchestrators.DefaultAutoCloseDelay)
	}, middleware.DefaultVisitorIdle)
	defer visitors.Close()

	var limiter *middleware.RateLimiter
	if cfg.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit, time.Minute)
		defer limiter.Stop()
	}

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: web.NewMux(web.Deps{
			Content:        store,
			Visitors:       visitors,
			Submit:         submit,
			Perf:           collector,
			RateLimiter:    limiter,
			StaticDir:      cfg.StaticDir,
			CSRFKey:        cfg.CSRFKey,
			TrustedOrigins: cfg.TrustedOrigins,
			Production:     cfg.IsProduction(),
			Brand:          cfg.Brand,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Breakthebeat %s starting on %s (env=%s)", version, cfg.Addr, cfg.Env)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		visitors.Run(gctx, sweepInterval)
		return nil
	})
	if cfg.ContentDir != "" && cfg.ContentWatch {
		g.Go(func() error {
			return store.Watch(gctx, cfg.ContentDir, content.DefaultDebounce)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server_shutdown_failed", "error", err)
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Error("tracing_shutdown_failed", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	log.Println("Server stopped")
}

// setupLogger installs the default slog handler: JSON in production, text otherwise.
func setupLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// newSender picks the mail transport. Development without SMTP credentials falls back to noop.
func newSender(cfg *config.Config) emailPkg.Sender {
	m := cfg.Mail
	switch m.Transport {
	case config.TransportResend:
		log.Println("Email sender configured (Resend)")
		return emailPkg.NewResendSender(m.ResendAPIKey, m.From)
	case config.TransportNoop:
		log.Println("Email sender configured (noop)")
		return emailPkg.NewNoopSender()
	}

	if m.User == "" && !cfg.IsProduction() {
		log.Println("Email sender configured (noop, set MAIL_USER for real delivery)")
		return emailPkg.NewNoopSender()
	}
	smtp, err := emailPkg.NewSMTPSender(emailPkg.SMTPConfig{
		Host:     m.Host,
		Port:     m.Port,
		Secure:   m.Secure,
		Username: m.User,
		Password: m.Password,
		From:     m.From,
		Timeout:  m.Timeout,
	})
	if err != nil {
		log.Fatalf("invalid SMTP settings: %v", err)
	}
	if m.User == "" {
		log.Println("WARNING: MAIL_USER is not set; the relay must accept unauthenticated mail")
	}
	log.Printf("Email sender configured (SMTP %s:%d)", m.Host, m.Port)
	return smtp
}
