// Package config loads and validates the bulletin pipeline configuration from
// environment variables, after reading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// ErrMissingEnv is returned when required variables are unset.
var ErrMissingEnv = errors.New("required environment variables not set")

// DefaultLiveURL is the canonical public address of the web bulletin.
const DefaultLiveURL = "https://phoaar.github.io/cacv-bulletin-automation/"

// DefaultCORSOrigin is where the sheet's Apps Script menu calls from.
const DefaultCORSOrigin = "https://script.google.com"

// Config holds every setting the pipeline reads from the environment.
type Config struct {
	// SheetID is the Google spreadsheet holding the bulletin tabs. Required.
	SheetID string

	// CredentialsPath points at the service-account key file. Required, must exist.
	CredentialsPath string

	// LiveURL overrides the canonical bulletin URL used in QR codes and emails.
	LiveURL string

	// OutputDir receives the generated HTML and PDF files. Defaults to "output".
	OutputDir string

	// LogLevel is one of debug, info, warn, error. Defaults to "info".
	LogLevel string

	// ChromePath enables PDF export when set.
	ChromePath string

	AnthropicAPIKey string
	AnthropicModel  string
	GeminiAPIKey    string
	GeminiModel     string

	GmailUser        string
	GmailAppPassword string

	WPURL         string
	WPUsername    string
	WPAppPassword string
	WPPageID      string

	// DatabaseURL enables the run history table when set.
	DatabaseURL string

	// Port, WebhookToken and CORSOrigins configure "serve" mode.
	Port         string
	WebhookToken string
	CORSOrigins  []string
}

// Load reads .env (if present) and the process environment. It returns an
// error wrapping ErrMissingEnv when SHEET_ID or CREDENTIALS_PATH is unset,
// or when the credentials file cannot be found.
func Load() (Config, error) {
	// A missing .env is normal in CI; real variables always win.
	_ = godotenv.Load()

	cfg := Config{
		SheetID:          os.Getenv("SHEET_ID"),
		CredentialsPath:  os.Getenv("CREDENTIALS_PATH"),
		LiveURL:          getEnv("LIVE_URL", DefaultLiveURL),
		OutputDir:        getEnv("OUTPUT_DIR", "output"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		ChromePath:       os.Getenv("CHROME_PATH"),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:   os.Getenv("ANTHROPIC_MODEL"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      os.Getenv("GEMINI_MODEL"),
		GmailUser:        os.Getenv("GMAIL_USER"),
		GmailAppPassword: os.Getenv("GMAIL_APP_PASSWORD"),
		WPURL:            strings.TrimRight(os.Getenv("WP_URL"), "/"),
		WPUsername:       os.Getenv("WP_USERNAME"),
		WPAppPassword:    os.Getenv("WP_APP_PASSWORD"),
		WPPageID:         os.Getenv("WP_PAGE_ID"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		Port:             getEnv("PORT", "8083"),
		WebhookToken:     os.Getenv("WEBHOOK_TOKEN"),
		CORSOrigins:      splitCSV(os.Getenv("CORS_ORIGINS")),
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{DefaultCORSOrigin}
	}

	var missing []string
	if cfg.SheetID == "" {
		missing = append(missing, "SHEET_ID")
	}
	if cfg.CredentialsPath == "" {
		missing = append(missing, "CREDENTIALS_PATH")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}

	abs, err := filepath.Abs(cfg.CredentialsPath)
	if err != nil {
		return Config{}, fmt.Errorf("resolve credentials path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return Config{}, fmt.Errorf("credentials file not found at %q: %w", cfg.CredentialsPath, err)
	}
	cfg.CredentialsPath = abs

	return cfg, nil
}

// CanTranslate reports whether any translation backend is configured.
func (c Config) CanTranslate() bool {
	return c.AnthropicAPIKey != "" || c.GeminiAPIKey != ""
}

// CanEmail reports whether Gmail credentials are configured.
func (c Config) CanEmail() bool {
	return c.GmailUser != "" && c.GmailAppPassword != ""
}

// CanPublish reports whether all four WordPress variables are set.
func (c Config) CanPublish() bool {
	return c.WPURL != "" && c.WPUsername != "" && c.WPAppPassword != "" && c.WPPageID != ""
}

// CanRenderPDF reports whether a browser binary is configured.
func (c Config) CanRenderPDF() bool {
	return c.ChromePath != ""
}

// HasHistory reports whether the run history database is configured.
func (c Config) HasHistory() bool {
	return c.DatabaseURL != ""
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
