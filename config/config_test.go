package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SHEET_ID", "CREDENTIALS_PATH", "LIVE_URL", "OUTPUT_DIR", "LOG_LEVEL", "CHROME_PATH",
		"ANTHROPIC_API_KEY", "GEMINI_API_KEY", "GMAIL_USER", "GMAIL_APP_PASSWORD",
		"WP_URL", "WP_USERNAME", "WP_APP_PASSWORD", "WP_PAGE_ID", "DATABASE_URL",
		"PORT", "WEBHOOK_TOKEN", "CORS_ORIGINS",
	} {
		t.Setenv(k, "")
	}
	// Keep a stray .env in the package dir from leaking into the test.
	t.Chdir(t.TempDir())
}

func TestLoad_MissingRequired(t *testing.T) {
	clearEnv(t)

	_, err := Load()

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingEnv)
	assert.Contains(t, err.Error(), "SHEET_ID, CREDENTIALS_PATH")
}

func TestLoad_CredentialsFileMustExist(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHEET_ID", "sheet-123")
	t.Setenv("CREDENTIALS_PATH", filepath.Join(t.TempDir(), "missing.json"))

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials file not found")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	creds := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(creds, []byte("{}"), 0o600))
	t.Setenv("SHEET_ID", "sheet-123")
	t.Setenv("CREDENTIALS_PATH", creds)
	t.Setenv("WP_URL", "https://cacv.org.au/")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "sheet-123", cfg.SheetID)
	assert.Equal(t, DefaultLiveURL, cfg.LiveURL)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "8083", cfg.Port)
	assert.Equal(t, "https://cacv.org.au", cfg.WPURL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, filepath.IsAbs(cfg.CredentialsPath))

	assert.False(t, cfg.CanTranslate())
	assert.False(t, cfg.CanEmail())
	assert.False(t, cfg.CanPublish())
	assert.False(t, cfg.CanRenderPDF())
	assert.False(t, cfg.HasHistory())
}

func TestLoad_EmptyCORSOriginsFallsBackToDefault(t *testing.T) {
	for _, raw := range []string{"", ",", " , "} {
		t.Run(raw, func(t *testing.T) {
			clearEnv(t)
			creds := filepath.Join(t.TempDir(), "credentials.json")
			require.NoError(t, os.WriteFile(creds, []byte("{}"), 0o600))
			t.Setenv("SHEET_ID", "sheet-123")
			t.Setenv("CREDENTIALS_PATH", creds)
			t.Setenv("CORS_ORIGINS", raw)

			cfg, err := Load()

			require.NoError(t, err)
			assert.Equal(t, []string{DefaultCORSOrigin}, cfg.CORSOrigins)
		})
	}
}

func TestConfig_Predicates(t *testing.T) {
	cfg := Config{
		GeminiAPIKey:     "g",
		GmailUser:        "bulletin@gmail.com",
		GmailAppPassword: "app",
		WPURL:            "https://cacv.org.au",
		WPUsername:       "admin",
		WPAppPassword:    "pw",
		ChromePath:       "/usr/bin/chromium",
		DatabaseURL:      "postgres://localhost/bulletin",
	}
	assert.True(t, cfg.CanTranslate())
	assert.True(t, cfg.CanEmail())
	assert.False(t, cfg.CanPublish(), "page id still missing")
	cfg.WPPageID = "42"
	assert.True(t, cfg.CanPublish())
	assert.True(t, cfg.CanRenderPDF())
	assert.True(t, cfg.HasHistory())
}
