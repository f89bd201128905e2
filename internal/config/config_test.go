package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDirs(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STUDENTDESK_CONFIG_DIR", filepath.Join(dir, "config"))
	t.Setenv("STUDENTDESK_STATE_DIR", filepath.Join(dir, "state"))
	t.Setenv("STUDENTDESK_CONFIG_PATH", filepath.Join(dir, "nonexistent.toml"))
}

func TestLoadAndGet(t *testing.T) {
	setupTestDirs(t)
	Load()

	got := Get("missing", "default")
	require.Equal(t, "default", got)
	require.Equal(t, "http://127.0.0.1:5000", Get("api_url", ""))
}

func TestEnvOverride(t *testing.T) {
	setupTestDirs(t)
	t.Setenv("STUDENTDESK_API_URL", "http://example.test:9000")
	Load()

	assert.Equal(t, "http://example.test:9000", Get("api_url", ""))
}

func TestFileOverride(t *testing.T) {
	setupTestDirs(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "api_url = \"http://file.test:7000\"\nrequest_timeout_sec = 20\ndebug = true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("STUDENTDESK_CONFIG_PATH", path)
	Load()

	assert.Equal(t, "http://file.test:7000", Get("api_url", ""))
	assert.Equal(t, 20, GetInt("request_timeout_sec", 0))
	assert.True(t, GetBool("debug", false))
}

func TestEnvWinsOverFile(t *testing.T) {
	setupTestDirs(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("api_url = \"http://file.test:7000\"\n"), 0644))
	t.Setenv("STUDENTDESK_CONFIG_PATH", path)
	t.Setenv("STUDENTDESK_API_URL", "http://env.test:8000")
	Load()

	assert.Equal(t, "http://env.test:8000", Get("api_url", ""))
}

func TestValidationFallsBackToDefault(t *testing.T) {
	setupTestDirs(t)
	t.Setenv("STUDENTDESK_REQUEST_TIMEOUT_SEC", "-3")
	t.Setenv("STUDENTDESK_LOGGING_LEVEL", "loud")
	Load()

	assert.Equal(t, 10, GetInt("request_timeout_sec", 0))
	assert.Equal(t, "info", Get("logging_level", ""))
}

func TestGetBool(t *testing.T) {
	setupTestDirs(t)
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"yes", true},
		{"on", true},
		{"0", false},
		{"no", false},
		{"off", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("STUDENTDESK_QUIET", tt.value)
			Load()
			assert.Equal(t, tt.want, GetBool("quiet", !tt.want))
		})
	}
}
