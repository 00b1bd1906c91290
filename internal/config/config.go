package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Mail transport names accepted in MAIL_TRANSPORT.
const (
	TransportSMTP   = "smtp"
	TransportResend = "resend"
	TransportNoop   = "noop"
)

// Defaults used when the environment leaves a key unset.
const (
	DefaultMailHost    = "smtp.gmail.com"
	DefaultMailPort    = 465
	DefaultTargetEmail = "breakthebeat.dance@gmail.com"
	DefaultMailTimeout = 15 * time.Second
	DefaultAddr        = ":8080"
	DefaultBrand       = "Breakthebeat"
	DefaultRateLimit   = 120 // requests per minute per client IP
)

// Mail holds the outbound mail transport settings.
type Mail struct {
	Transport    string
	Host         string
	Port         int
	Secure       bool
	User         string
	Password     string
	From         string
	To           string
	ResendAPIKey string
	Timeout      time.Duration
}

// Config is the full server configuration.
type Config struct {
	Env          string
	Addr         string
	Brand        string
	StaticDir    string
	ContentDir   string
	ContentWatch bool
	CSRFKey      []byte
	LogLevel     slog.Level
	Mail         Mail

	// TrustedOrigins are extra hosts allowed to post forms (CSRF origin check).
	TrustedOrigins []string
	RateLimit      int // per minute; 0 disables
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads an optional .env file and then the process environment.
// PRE: none
// POST: Returns a Config with every fallback applied, or an error for invalid values
func Load() (*Config, error) {
	// .env is optional; deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Env:          getEnv("BREAKTHEBEAT_ENV", "development"),
		Addr:         getEnv("BREAKTHEBEAT_ADDR", DefaultAddr),
		Brand:        getEnv("BRAND_NAME", DefaultBrand),
		StaticDir:    getEnv("STATIC_DIR", "static"),
		ContentDir:   getEnv("CONTENT_DIR", ""),
		ContentWatch: getEnvBool("CONTENT_WATCH", false),
		LogLevel:     parseLevel(getEnv("LOG_LEVEL", "info")),
		Mail:         loadMail(),
		RateLimit:    getEnvInt("RATE_LIMIT", DefaultRateLimit),
	}
	for _, o := range strings.Split(os.Getenv("TRUSTED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.TrustedOrigins = append(cfg.TrustedOrigins, o)
		}
	}
	if cfg.RateLimit < 0 {
		cfg.RateLimit = 0
	}

	key, err := loadCSRFKey(os.Getenv("BREAKTHEBEAT_CSRF_KEY"))
	if err != nil {
		return nil, err
	}
	if key == nil && cfg.IsProduction() {
		return nil, errors.New("BREAKTHEBEAT_CSRF_KEY is required in production")
	}
	cfg.CSRFKey = key

	switch cfg.Mail.Transport {
	case TransportSMTP, TransportNoop:
	case TransportResend:
		if cfg.Mail.ResendAPIKey == "" {
			return nil, errors.New("RESEND_API_KEY is required when MAIL_TRANSPORT=resend")
		}
	default:
		return nil, fmt.Errorf("unknown MAIL_TRANSPORT %q", cfg.Mail.Transport)
	}

	return cfg, nil
}

func loadMail() Mail {
	user := firstNonEmpty(os.Getenv("MAIL_USER"), os.Getenv("EMAIL_USER"))
	port := getEnvInt("MAIL_PORT", DefaultMailPort)
	if port <= 0 {
		port = DefaultMailPort
	}
	return Mail{
		Transport:    strings.ToLower(getEnv("MAIL_TRANSPORT", TransportSMTP)),
		Host:         getEnv("MAIL_HOST", DefaultMailHost),
		Port:         port,
		Secure:       os.Getenv("MAIL_SECURE") == "true",
		User:         user,
		Password:     firstNonEmpty(os.Getenv("MAIL_PASS"), os.Getenv("EMAIL_PASS")),
		From:         firstNonEmpty(os.Getenv("MAIL_FROM"), user),
		To:           getEnv("TARGET_EMAIL", DefaultTargetEmail),
		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		Timeout:      getEnvDuration("MAIL_TIMEOUT", DefaultMailTimeout),
	}
}

// loadCSRFKey decodes a hex-encoded 32-byte key. An empty value returns nil.
func loadCSRFKey(keyHex string) ([]byte, error) {
	if keyHex == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil || len(key) != 32 {
		return nil, errors.New("BREAKTHEBEAT_CSRF_KEY must be 64 hex characters (32 bytes)")
	}
	return key, nil
}

// getEnv returns the value of key, or fallback when unset or empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
