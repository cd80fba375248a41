package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := load(nil, noEnv)
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, DefaultWebBaseURL, cfg.WebBaseURL)
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval)
	assert.False(t, cfg.Debug)
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".velocards"), cfg.DataDir)
}

func TestJSONFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"api_base_url": "https://staging.velocards.com/api/v1",
		"web_base_url": "https://staging.velocards.com",
		"poll_interval": "10s",
		"debug": true
	}`), 0o600))

	cfg, err := load([]string{"-config", path}, noEnv)
	require.NoError(t, err)

	assert.Equal(t, "https://staging.velocards.com/api/v1", cfg.APIBaseURL)
	assert.Equal(t, "https://staging.velocards.com", cfg.WebBaseURL)
	assert.Equal(t, 10*time.Second, cfg.PollInterval)
	assert.True(t, cfg.Debug)
}

func TestExplicitMissingConfigFileFails(t *testing.T) {
	_, err := load([]string{"-config", filepath.Join(t.TempDir(), "nope.json")}, noEnv)
	assert.Error(t, err)
}

func TestEnvOverridesJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"api_base_url": "https://from-json"}`), 0o600))

	cfg, err := load(nil, envMap(map[string]string{
		EnvConfigFile: path,
		EnvAPIBaseURL: "https://from-env",
		EnvWebBaseURL: "https://web-from-env",
		EnvDebug:      "1",
	}))
	require.NoError(t, err)

	assert.Equal(t, "https://from-env", cfg.APIBaseURL)
	assert.Equal(t, "https://web-from-env", cfg.WebBaseURL)
	assert.True(t, cfg.Debug)
}

func TestFlagsWinOverEverything(t *testing.T) {
	cfg, err := load(
		[]string{"-api", "https://from-flag", "-web", "https://web-from-flag", "-poll", "5s", "-data-dir", "/tmp/vc"},
		envMap(map[string]string{EnvAPIBaseURL: "https://from-env", EnvWebBaseURL: "https://web-from-env"}),
	)
	require.NoError(t, err)

	assert.Equal(t, "https://from-flag", cfg.APIBaseURL)
	assert.Equal(t, "https://web-from-flag", cfg.WebBaseURL)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, "/tmp/vc", cfg.DataDir)
}

func TestPeekFlag(t *testing.T) {
	assert.Equal(t, "x.json", peekFlag([]string{"-config", "x.json"}, "config"))
	assert.Equal(t, "y.json", peekFlag([]string{"--config=y.json"}, "config"))
	assert.Equal(t, "", peekFlag([]string{"-debug"}, "config"))
}
