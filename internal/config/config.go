package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// LLM providers
const (
	ProviderGemini = "gemini"
	ProviderVertex = "vertex"
)

// Config holds application configuration
type Config struct {
	Provider              string  `json:"provider"`
	Model                 string  `json:"model"`
	Temperature           float32 `json:"temperature"`
	APIKey                string  `json:"api_key,omitempty"`
	GoogleCloudProject    string  `json:"google_cloud_project"`
	GoogleCloudLocation   string  `json:"google_cloud_location"`
	GoogleCredentialsPath string  `json:"google_credentials_path"`
	ListenAddr            string  `json:"listen_addr"`
	MaxUploadBytes        int64   `json:"max_upload_bytes"`
	SessionTTLMinutes     int     `json:"session_ttl_minutes"`
	LogLevel              string  `json:"log_level"`
	LogFormat             string  `json:"log_format"`
}

// DefaultConfig returns a new config with default values
func DefaultConfig() *Config {
	return &Config{
		Provider:            ProviderGemini,
		Model:               "gemini-2.5-pro",
		Temperature:         0.2,
		GoogleCloudLocation: "us-central1",
		ListenAddr:          ":8080",
		MaxUploadBytes:      10 << 20,
		SessionTTLMinutes:   30,
		LogLevel:            "info",
		LogFormat:           "text",
	}
}

// GetConfigPath returns the path to the configuration file
// On Windows: %APPDATA%/ResumeReviser/config.json
// On Unix: ~/.config/ResumeReviser/config.json
func GetConfigPath() (string, error) {
	var configDir string

	if os.Getenv("APPDATA") != "" {
		configDir = filepath.Join(os.Getenv("APPDATA"), "ResumeReviser")
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "ResumeReviser")
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.json"), nil
}

// Load loads configuration from the default config path, then applies
// environment overrides
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		return nil, err
	}
	cfg.OverlayEnv()
	return cfg, nil
}

// LoadFrom loads configuration from a specific path
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// OverlayEnv replaces fields with values from the environment when set.
// API_KEY is accepted as a fallback for GEMINI_API_KEY.
func (c *Config) OverlayEnv() {
	setString(&c.Provider, "RESUME_LLM_PROVIDER")
	setString(&c.Model, "RESUME_LLM_MODEL")
	setString(&c.APIKey, "API_KEY")
	setString(&c.APIKey, "GEMINI_API_KEY")
	setString(&c.GoogleCloudProject, "GOOGLE_CLOUD_PROJECT")
	setString(&c.GoogleCloudLocation, "GOOGLE_CLOUD_LOCATION")
	setString(&c.GoogleCredentialsPath, "GOOGLE_APPLICATION_CREDENTIALS")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		c.ListenAddr = ":" + strings.TrimPrefix(port, ":")
	}
	if raw := strings.TrimSpace(os.Getenv("RESUME_LLM_TEMPERATURE")); raw != "" {
		if v, err := strconv.ParseFloat(raw, 32); err == nil {
			c.Temperature = float32(v)
		}
	}
	if raw := strings.TrimSpace(os.Getenv("RESUME_MAX_UPLOAD_BYTES")); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v > 0 {
			c.MaxUploadBytes = v
		}
	}
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
}

// envAPIKey is the key OverlayEnv would pick from the environment
func envAPIKey() string {
	if key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); key != "" {
		return key
	}
	return strings.TrimSpace(os.Getenv("API_KEY"))
}

func setString(dst *string, key string) {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		*dst = val
	}
}

// Save saves the configuration to the default config path
func (c *Config) Save() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	return c.SaveTo(configPath)
}

// SaveTo saves the configuration to a specific path. An API key that
// came from the environment is not written to disk.
func (c *Config) SaveTo(path string) error {
	persisted := *c
	if persisted.APIKey != "" && persisted.APIKey == envAPIKey() {
		persisted.APIKey = ""
	}

	data, err := json.MarshalIndent(&persisted, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid. Credentials are not
// required here; their absence is reported when an analysis is attempted.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderVertex:
	default:
		return fmt.Errorf("provider must be %q or %q, got %q", ProviderGemini, ProviderVertex, c.Provider)
	}

	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("model is required")
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}

	if c.Provider == ProviderVertex && c.GoogleCloudLocation == "" {
		return fmt.Errorf("google_cloud_location is required")
	}

	if c.GoogleCredentialsPath != "" {
		if _, err := os.Stat(c.GoogleCredentialsPath); err != nil {
			return fmt.Errorf("google credentials file not found: %w", err)
		}
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}

	return nil
}

// SessionTTL returns the idle lifetime of an HTTP session
func (c *Config) SessionTTL() time.Duration {
	if c.SessionTTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// Store holds the active configuration for readers on other goroutines.
// A stored Config is never modified; Set replaces it with a new one.
type Store struct {
	current atomic.Pointer[Config]
}

// NewStore returns a store holding cfg
func NewStore(cfg *Config) *Store {
	s := &Store{}
	s.current.Store(cfg)
	return s
}

// Get returns the active configuration
func (s *Store) Get() *Config {
	return s.current.Load()
}

// Set replaces the active configuration
func (s *Store) Set(cfg *Config) {
	s.current.Store(cfg)
}
