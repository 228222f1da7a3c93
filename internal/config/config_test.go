package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadFrom_MissingFileReturnsDefaults tests that a missing config file is not an error
func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

// TestSaveToAndLoadFrom tests that saved values are read back over defaults
func TestSaveToAndLoadFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := DefaultConfig()
	cfg.Provider = ProviderVertex
	cfg.GoogleCloudProject = "my-project"
	cfg.Model = "gemini-2.5-flash"
	require.NoError(t, cfg.SaveTo(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderVertex, loaded.Provider)
	assert.Equal(t, "my-project", loaded.GoogleCloudProject)
	assert.Equal(t, "gemini-2.5-flash", loaded.Model)
	assert.Equal(t, int64(10<<20), loaded.MaxUploadBytes)
}

// TestLoadFrom_InvalidJSON tests that a corrupt file is reported
func TestLoadFrom_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := LoadFrom(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

// TestOverlayEnv tests environment overrides
func TestOverlayEnv(t *testing.T) {
	t.Setenv("API_KEY", "fallback-key")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("RESUME_LLM_PROVIDER", " Vertex ")
	t.Setenv("PORT", "9090")
	t.Setenv("RESUME_LLM_TEMPERATURE", "0.5")
	t.Setenv("RESUME_MAX_UPLOAD_BYTES", "2048")

	cfg := DefaultConfig()
	cfg.OverlayEnv()

	assert.Equal(t, "gemini-key", cfg.APIKey)
	assert.Equal(t, ProviderVertex, cfg.Provider)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.InDelta(t, 0.5, cfg.Temperature, 0.0001)
	assert.Equal(t, int64(2048), cfg.MaxUploadBytes)
}

// TestOverlayEnv_APIKeyFallback tests that API_KEY is used when GEMINI_API_KEY is unset
func TestOverlayEnv_APIKeyFallback(t *testing.T) {
	t.Setenv("API_KEY", "fallback-key")
	t.Setenv("GEMINI_API_KEY", "")

	cfg := DefaultConfig()
	cfg.OverlayEnv()
	assert.Equal(t, "fallback-key", cfg.APIKey)
}

// TestValidate tests configuration validation rules
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "Defaults", mutate: func(c *Config) {}},
		{name: "Unknown provider", mutate: func(c *Config) { c.Provider = "openai" }, wantErr: "provider must be"},
		{name: "Blank model", mutate: func(c *Config) { c.Model = " " }, wantErr: "model is required"},
		{name: "Temperature too high", mutate: func(c *Config) { c.Temperature = 3 }, wantErr: "temperature"},
		{name: "Vertex without location", mutate: func(c *Config) { c.Provider = ProviderVertex; c.GoogleCloudLocation = "" }, wantErr: "google_cloud_location"},
		{name: "Missing credentials file", mutate: func(c *Config) { c.GoogleCredentialsPath = "/nonexistent/creds.json" }, wantErr: "credentials file not found"},
		{name: "Zero upload limit", mutate: func(c *Config) { c.MaxUploadBytes = 0 }, wantErr: "max_upload_bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

// TestSessionTTL tests the default when unset
func TestSessionTTL(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL())
	cfg.SessionTTLMinutes = 5
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL())
}

// TestSaveTo_SkipsEnvironmentAPIKey tests that only a key typed into the config is persisted
func TestSaveTo_SkipsEnvironmentAPIKey(t *testing.T) {
	t.Setenv("API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "env-secret")

	tests := []struct {
		name   string
		apiKey string
		want   string
	}{
		{"key from environment", "env-secret", ""},
		{"key set by the user", "typed-key", "typed-key"},
		{"no key", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			cfg := DefaultConfig()
			cfg.APIKey = tt.apiKey
			require.NoError(t, cfg.SaveTo(path))

			// the caller's config is left untouched
			assert.Equal(t, tt.apiKey, cfg.APIKey)

			loaded, err := LoadFrom(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, loaded.APIKey)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.NotContains(t, string(data), "env-secret")
		})
	}
}

// TestStore tests that readers on other goroutines see whole configs
func TestStore(t *testing.T) {
	first := DefaultConfig()
	store := NewStore(first)
	assert.Same(t, first, store.Get())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cfg := store.Get()
				assert.NotEmpty(t, cfg.Model)
			}
		}()
	}
	for j := 0; j < 100; j++ {
		updated := *store.Get()
		updated.Model = "gemini-2.5-flash"
		store.Set(&updated)
	}
	wg.Wait()

	assert.Equal(t, "gemini-2.5-flash", store.Get().Model)
	assert.Equal(t, "gemini-2.5-pro", first.Model)
}
