package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/abdul-hamid-achik/bookcheck/packages/books"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, books.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 30000, cfg.Timeout)
	assert.Equal(t, books.DefaultBookID, cfg.BookID)
	assert.False(t, cfg.GetDeleteWithBody())
	assert.True(t, cfg.GetValidateSSL())
	assert.True(t, cfg.IsDefault())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".bookcheck.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"baseUrl": "http://localhost:3000",
		"bookId": 3,
		"deleteWithBody": true,
		"headers": {"X-Trace": "1"}
	}`), 0644))

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", cfg.BaseURL)
	assert.Equal(t, 3, cfg.BookID)
	assert.True(t, cfg.GetDeleteWithBody())
	assert.Equal(t, "1", cfg.Headers["X-Trace"])
	assert.Equal(t, 30000, cfg.Timeout, "unset fields keep defaults")
	assert.False(t, cfg.IsDefault())
}

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bookcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
baseUrl: https://books.example.com
timeout: 5000
repeat: 20
rate: 2.5
thresholds: p95<500ms
preflight: true
`), 0644))

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, "https://books.example.com", cfg.BaseURL)
	assert.Equal(t, 5000, cfg.Timeout)
	assert.Equal(t, 20, cfg.Repeat)
	assert.InDelta(t, 2.5, cfg.Rate, 1e-9)
	assert.Equal(t, "p95<500ms", cfg.Thresholds)
	assert.True(t, cfg.GetPreflight())
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bookcheck.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestFindAndLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.True(t, cfg.IsDefault())
	assert.Empty(t, FindConfigFile(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".bookcheck.yaml"), []byte("bookId: 4\n"), 0644))
	cfg, err = FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.BookID)
	assert.Equal(t, filepath.Join(dir, ".bookcheck.yaml"), FindConfigFile(dir))
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("BOOKCHECK_BASE_URL", "http://127.0.0.1:8080")
	t.Setenv("BOOKCHECK_BOOK_ID", "5")
	t.Setenv("BOOKCHECK_SEED", "42")
	t.Setenv("BOOKCHECK_RATE", "1.5")
	t.Setenv("BOOKCHECK_DELETE_BODY", "true")
	t.Setenv("BOOKCHECK_NO_COLOR", "1")

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv(EnvPrefix))

	assert.Equal(t, "http://127.0.0.1:8080", cfg.BaseURL)
	assert.Equal(t, 5, cfg.BookID)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.InDelta(t, 1.5, cfg.Rate, 1e-9)
	assert.True(t, cfg.GetDeleteWithBody())
	assert.True(t, cfg.GetNoColor())
}

func TestApplyEnv_Invalid(t *testing.T) {
	t.Setenv("BOOKCHECK_TIMEOUT", "soon")

	err := DefaultConfig().ApplyEnv(EnvPrefix)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOOKCHECK_TIMEOUT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "bad url", mutate: func(c *Config) { c.BaseURL = "ftp://x" }, wantErr: "baseUrl"},
		{name: "bad book", mutate: func(c *Config) { c.BookID = 0 }, wantErr: "bookId"},
		{name: "bad output", mutate: func(c *Config) { c.Output = "html" }, wantErr: "output"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "log level"},
		{name: "negative rate", mutate: func(c *Config) { c.Rate = -1 }, wantErr: "rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Headers = map[string]string{"A": "1"}

	merged := base.Merge(&Config{
		BaseURL:        "http://localhost:3000",
		DeleteWithBody: BoolPtr(true),
		Headers:        map[string]string{"B": "2"},
	})

	assert.Equal(t, "http://localhost:3000", merged.BaseURL)
	assert.Equal(t, base.BookID, merged.BookID)
	assert.True(t, merged.GetDeleteWithBody())
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, merged.Headers)
	assert.Equal(t, map[string]string{"A": "1"}, base.Headers, "merge leaves the receiver alone")
	assert.Same(t, base, base.Merge(nil))
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.BookID = 6

	for _, name := range []string{"out.json", "out.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, cfg.SaveConfig(path))
		loaded, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 6, loaded.BookID, name)
	}
}
