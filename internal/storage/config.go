package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Storage backends accepted in Config.StorageBackend.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config holds application configuration.
type Config struct {
	APIBaseURL         string   `json:"apiBaseURL"`
	ShareBaseURL       string   `json:"shareBaseURL"`
	GeocoderURL        string   `json:"geocoderURL"`
	GeocoderKey        string   `json:"geocoderKey"`
	StorageBackend     string   `json:"storageBackend"` // "", "json" or "sqlite"
	DataDir            string   `json:"dataDir"`
	SnapshotDir        string   `json:"snapshotDir"`
	ListenAddr         string   `json:"listenAddr"`
	CullExcludeDomains []string `json:"cullExcludeDomains"`

	// AnthropicKey enables local enrichment. Env only, never written to disk.
	AnthropicKey string `json:"-"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	dataDir, err := DefaultDataDir()
	if err != nil {
		dataDir = ".spots"
	}
	return Config{
		APIBaseURL:         "https://web-production-5630.up.railway.app",
		ShareBaseURL:       "https://web-production-5630.up.railway.app",
		GeocoderURL:        "https://api.radar.io",
		DataDir:            dataDir,
		SnapshotDir:        filepath.Join(dataDir, "snapshots"),
		ListenAddr:         "127.0.0.1:8765",
		CullExcludeDomains: []string{"instagram.com"},
	}
}

// LoadConfig reads config from the JSON file.
// Creates the file with defaults if it doesn't exist.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := DefaultConfig()
			// Non-fatal: return defaults even if save fails
			_ = SaveConfig(path, &config)
			return &config, nil
		}
		return nil, &StorageError{Op: "read", Path: path, Err: err}
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, &StorageError{Op: "parse", Path: path, Err: err}
	}

	// Apply defaults for missing fields
	defaults := DefaultConfig()
	if config.APIBaseURL == "" {
		config.APIBaseURL = defaults.APIBaseURL
	}
	if config.ShareBaseURL == "" {
		config.ShareBaseURL = config.APIBaseURL
	}
	if config.GeocoderURL == "" {
		config.GeocoderURL = defaults.GeocoderURL
	}
	if config.DataDir == "" {
		config.DataDir = defaults.DataDir
	}
	if config.SnapshotDir == "" {
		config.SnapshotDir = filepath.Join(config.DataDir, "snapshots")
	}
	if config.ListenAddr == "" {
		config.ListenAddr = defaults.ListenAddr
	}
	if config.CullExcludeDomains == nil {
		config.CullExcludeDomains = defaults.CullExcludeDomains
	}

	return &config, nil
}

// ApplyEnv loads a .env file from the working directory (if any) and
// overrides config fields from SPOTS_* environment variables.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("SPOTS_API_BASE_URL"); v != "" {
		c.APIBaseURL = v
	}
	if v := os.Getenv("SPOTS_SHARE_BASE_URL"); v != "" {
		c.ShareBaseURL = v
	}
	if v := os.Getenv("SPOTS_GEOCODER_KEY"); v != "" {
		c.GeocoderKey = v
	}
	if v := os.Getenv("SPOTS_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("SPOTS_STORAGE_BACKEND"); v != "" {
		c.StorageBackend = v
	}
	if v := os.Getenv("SPOTS_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	c.AnthropicKey = os.Getenv("ANTHROPIC_API_KEY")
}

// SaveConfig writes config to the JSON file.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfigFilePath returns the default config path: ~/.config/spots/config.json
func DefaultConfigFilePath() (string, error) {
	dir, err := DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}
