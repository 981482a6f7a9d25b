package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ShouldReadYAMLFile(t *testing.T) {
	// given
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `api:
  base_url: "https://recruit.example.com/"
  request_timeout_sec: 5
session:
  token_file: /tmp/token
logging:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// when
	config, err := LoadConfig(path)

	// then
	require.NoError(t, err)
	assert.Equal(t, "https://recruit.example.com", config.API.BaseURL)
	assert.Equal(t, 5*time.Second, config.API.RequestTimeout())
	assert.Equal(t, 16, config.API.MaxConnsPerHost)
	assert.Equal(t, "/tmp/token", config.Session.TokenFile)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)
}

func TestLoadConfig_ShouldPreferEnvironmentOverFile(t *testing.T) {
	// given
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: http://file\n"), 0o600))
	t.Setenv("RECRUITMENT_API_BASE_URL", "http://env:9000")

	// when
	config, err := LoadConfig(path)

	// then
	require.NoError(t, err)
	assert.Equal(t, "http://env:9000", config.API.BaseURL)
}

func TestLoadConfig_ShouldRejectNonPositiveTimeout(t *testing.T) {
	// given
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  request_timeout_sec: 0\n"), 0o600))

	// when
	_, err := LoadConfig(path)

	// then
	assert.Error(t, err)
}
