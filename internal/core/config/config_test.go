package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "tickr.db"), cfg.DBPath)
	assert.Equal(t, AuthLocal, cfg.Auth.Provider)
	assert.True(t, cfg.UI.ConfirmDelete)
	assert.Equal(t, DefaultExportTemplate, cfg.ExportTemplate)
	assert.Equal(t, filepath.Join(dir, "session.json"), cfg.SessionPath())

	timeout, err := cfg.SyncTimeout()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
db_path = "/tmp/elsewhere.db"
log_level = "DEBUG"

[auth]
provider = "remote"
url = "https://auth.example.com"

[sync]
server_url = "https://sync.example.com"
timeout = "5s"

[ui]
confirm_delete = false
default_tags = ["work"]
`), 0644))
	t.Setenv("TICKR_SYNC_SERVER_URL", "https://override.example.com")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/elsewhere.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, AuthRemote, cfg.Auth.Provider)
	assert.Equal(t, "https://auth.example.com", cfg.Auth.URL)
	assert.Equal(t, "https://override.example.com", cfg.Sync.ServerURL)
	assert.False(t, cfg.UI.ConfirmDelete)
	assert.Equal(t, []string{"work"}, cfg.UI.DefaultTags)

	timeout, err := cfg.SyncTimeout()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, timeout)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown provider", "[auth]\nprovider = \"ldap\"\n"},
		{"remote without url", "[auth]\nprovider = \"remote\"\n"},
		{"bad timeout", "[sync]\ntimeout = \"soon\"\n"},
		{"broken toml", "db_path = \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadCustomExportTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "export_template.mustache"), []byte("{{count}}"), 0644))

	cfg, err := Load(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "{{count}}", cfg.ExportTemplate)
}

func TestWriteThenLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	cfg := Default(filepath.Dir(path))
	cfg.Sync.ServerURL = "https://sync.example.com"
	cfg.UI.DefaultTags = []string{"a", "b"}
	require.NoError(t, Write(path, cfg, false))

	assert.Error(t, Write(path, cfg, false), "existing file must not be overwritten")
	require.NoError(t, Write(path, cfg, true))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.DBPath, loaded.DBPath)
	assert.Equal(t, "https://sync.example.com", loaded.Sync.ServerURL)
	assert.Equal(t, []string{"a", "b"}, loaded.UI.DefaultTags)
}
