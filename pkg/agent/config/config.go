// Package config loads the agent and dashboard configuration from the
// environment. Every knob has an ARIA_-prefixed variable and a sane default;
// only the handful of credentials without a sensible default are required.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Voice gateway websocket endpoint the agent worker dials.
	GatewayURL string

	// Gemini
	GeminiAPIKey string
	Model        string

	// Postgres. Empty DatabaseURL runs the agent without journal or directory
	// access, which is only useful for the local demo.
	DatabaseURL string

	// Optional Redis-backed identity snapshots for crash resumption.
	RedisAddr          string
	RedisPassword      string
	SessionSnapshotTTL time.Duration

	// SendGrid
	SendGridAPIKey string
	SenderName     string
	SenderEmail    string

	// Google Calendar callback scheduling.
	GoogleCredentialsFile string
	GoogleCalendarID      string

	// Dashboard HTTP API.
	DashboardAddr       string
	DashboardAPIKeys    map[string]struct{}
	CORSAllowedOrigins  map[string]struct{}
	ReadHeaderTimeout   time.Duration
	ReadTimeout         time.Duration
	HandlerTimeout      time.Duration
	ShutdownGracePeriod time.Duration
	LimitRPS            float64
	LimitBurst          int
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		GatewayURL:            envOr("ARIA_GATEWAY_URL", "ws://127.0.0.1:7880/agent"),
		GeminiAPIKey:          envOr("ARIA_GEMINI_API_KEY", os.Getenv("GEMINI_API_KEY")),
		Model:                 envOr("ARIA_MODEL", "gemini-2.0-flash"),
		DatabaseURL:           envOr("ARIA_DATABASE_URL", os.Getenv("DATABASE_URL")),
		RedisAddr:             envOr("ARIA_REDIS_ADDR", ""),
		RedisPassword:         envOr("ARIA_REDIS_PASSWORD", ""),
		SessionSnapshotTTL:    envDurationOr("ARIA_SESSION_SNAPSHOT_TTL", 2*time.Hour),
		SendGridAPIKey:        envOr("ARIA_SENDGRID_API_KEY", os.Getenv("SENDGRID_API_KEY")),
		SenderName:            envOr("ARIA_SENDER_NAME", "ARTEX Assurances"),
		SenderEmail:           envOr("ARIA_SENDER_EMAIL", os.Getenv("SENDER_EMAIL")),
		GoogleCredentialsFile: envOr("ARIA_GOOGLE_SERVICE_ACCOUNT_FILE", os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")),
		GoogleCalendarID:      envOr("ARIA_GOOGLE_CALENDAR_ID", os.Getenv("GOOGLE_CALENDAR_ID")),
		DashboardAddr:         envOr("ARIA_DASHBOARD_ADDR", ":8081"),
		DashboardAPIKeys:      make(map[string]struct{}),
		CORSAllowedOrigins:    make(map[string]struct{}),
		ReadHeaderTimeout:     envDurationOr("ARIA_READ_HEADER_TIMEOUT", 10*time.Second),
		ReadTimeout:           envDurationOr("ARIA_READ_TIMEOUT", 30*time.Second),
		HandlerTimeout:        envDurationOr("ARIA_TOTAL_REQUEST_TIMEOUT", time.Minute),
		ShutdownGracePeriod:   envDurationOr("ARIA_SHUTDOWN_GRACE_PERIOD", 30*time.Second),
		LimitRPS:              envFloat64Or("ARIA_RATE_LIMIT_RPS", 5.0),
		LimitBurst:            envIntOr("ARIA_RATE_LIMIT_BURST", 10),
	}

	for _, key := range splitCSV(os.Getenv("ARIA_DASHBOARD_API_KEYS")) {
		cfg.DashboardAPIKeys[key] = struct{}{}
	}
	for _, origin := range splitCSV(os.Getenv("ARIA_CORS_ORIGINS")) {
		cfg.CORSAllowedOrigins[origin] = struct{}{}
	}

	if !strings.HasPrefix(cfg.GatewayURL, "ws://") && !strings.HasPrefix(cfg.GatewayURL, "wss://") {
		return Config{}, fmt.Errorf("ARIA_GATEWAY_URL must be a ws:// or wss:// URL")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return Config{}, fmt.Errorf("ARIA_MODEL must not be empty")
	}
	if cfg.SessionSnapshotTTL <= 0 {
		return Config{}, fmt.Errorf("ARIA_SESSION_SNAPSHOT_TTL must be > 0")
	}
	if cfg.SendGridAPIKey != "" && cfg.SenderEmail == "" {
		return Config{}, fmt.Errorf("ARIA_SENDER_EMAIL must be set when ARIA_SENDGRID_API_KEY is set")
	}
	if cfg.GoogleCredentialsFile != "" && cfg.GoogleCalendarID == "" {
		return Config{}, fmt.Errorf("ARIA_GOOGLE_CALENDAR_ID must be set when ARIA_GOOGLE_SERVICE_ACCOUNT_FILE is set")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		return Config{}, fmt.Errorf("ARIA_READ_HEADER_TIMEOUT must be > 0")
	}
	if cfg.ReadTimeout <= 0 {
		return Config{}, fmt.Errorf("ARIA_READ_TIMEOUT must be > 0")
	}
	if cfg.HandlerTimeout <= 0 {
		return Config{}, fmt.Errorf("ARIA_TOTAL_REQUEST_TIMEOUT must be > 0")
	}
	if cfg.ShutdownGracePeriod <= 0 {
		return Config{}, fmt.Errorf("ARIA_SHUTDOWN_GRACE_PERIOD must be > 0")
	}
	if cfg.LimitRPS < 0 {
		return Config{}, fmt.Errorf("ARIA_RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.LimitBurst < 0 {
		return Config{}, fmt.Errorf("ARIA_RATE_LIMIT_BURST must be >= 0")
	}

	return cfg, nil
}

// RequireAgentCredentials checks the variables the voice agent cannot run
// without. The dashboard binary does not call this.
func (c Config) RequireAgentCredentials() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("ARIA_GEMINI_API_KEY must be set")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("ARIA_DATABASE_URL must be set")
	}
	return nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envIntOr(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func envFloat64Or(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return n
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
