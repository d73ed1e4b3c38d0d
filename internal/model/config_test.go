package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "imap.gmail.com", cfg.Mailbox.Host)
	assert.Equal(t, "993", cfg.Mailbox.Port)
	assert.True(t, cfg.Mailbox.TLS)
	assert.Equal(t, "Room Booking", cfg.Mailbox.SubjectFilter)
	assert.Equal(t, 60, cfg.Mailbox.PollIntervalSec)
	assert.True(t, cfg.Admin.Headless)
	assert.Equal(t, 30, cfg.Admin.ActionTimeoutSec)
}

func TestLoadConfigOverridesAndFromFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mailbox:
  host: mail.example.com
  address: agent@example.com
  poll_interval_sec: 15
admin:
  base_url: http://localhost:8080
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "mail.example.com", cfg.Mailbox.Host)
	assert.Equal(t, 15, cfg.Mailbox.PollIntervalSec)
	assert.Equal(t, "http://localhost:8080", cfg.Admin.BaseURL)
	assert.Equal(t, "993", cfg.Mailbox.Port, "defaults fill unset keys")
	assert.Equal(t, "agent@example.com", cfg.SMTP.From,
		"SMTP from falls back to the mailbox address")
}

func TestSaveConfigRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := defaultAppConfig()
	cfg.Mailbox.Address = "agent@example.com"
	cfg.Admin.BaseURL = "https://admin.example.com"
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "agent@example.com", loaded.Mailbox.Address)
	assert.Equal(t, "https://admin.example.com", loaded.Admin.BaseURL)
}
