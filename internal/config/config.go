// Package config holds the explicit configuration object passed to every
// component by the orchestrator: API endpoints and credentials, file paths,
// the reference timezone, and the fetch window.
//
// Non-secret settings load from a YAML file; secrets overlay from the
// environment (optionally seeded from a .env file via godotenv). Nothing in
// this package is ambient global state.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// APIConfig configures the BCP events API client.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"`   // https://newprod-api.bestcoastpairings.com
	ClientID  string        `yaml:"client_id"`  // client-id header, default "web-app"
	PageLimit int           `yaml:"page_limit"` // records per page, default 40
	Timeout   time.Duration `yaml:"timeout"`    // per-request timeout

	// APIKey is secret; environment only (BCP_API_KEY).
	APIKey string `yaml:"-"`
}

// SiteConfig configures the target event-listing site.
type SiteConfig struct {
	LoginURL   string `yaml:"login_url"`    // https://www.lfgnexus.com/login
	AddFormURL string `yaml:"add_form_url"` // https://www.lfgnexus.com/account/events/add
	LoginGate  string `yaml:"login_gate"`   // URL substring marking a redirect to login

	// Credentials are secret; environment only (LFG_EMAIL, LFG_PASSWORD).
	Email    string `yaml:"-"`
	Password string `yaml:"-"`
}

// FilesConfig names every file the pipeline persists between runs.
type FilesConfig struct {
	StorePath    string `yaml:"store_path"`    // full event store (CSV)
	ScratchPath  string `yaml:"scratch_path"`  // per-run delta (CSV)
	SessionPath  string `yaml:"session_path"`  // browser storage state
	CredsPath    string `yaml:"creds_path"`    // encrypted credential blob
	ImageDir     string `yaml:"image_dir"`     // downloaded event images
	DefaultImage string `yaml:"default_image"` // fallback when acquisition fails
	LogPath      string `yaml:"log_path"`      // append-only process log
}

// Config is the top-level configuration for one pipeline run.
type Config struct {
	API        APIConfig   `yaml:"api"`
	Site       SiteConfig  `yaml:"site"`
	Files      FilesConfig `yaml:"files"`
	Timezone   string      `yaml:"timezone"`    // reference tz, default America/New_York
	WindowDays int         `yaml:"window_days"` // fetch window, default 90
	Headless   bool        `yaml:"headless"`    // browser visibility

	// CredKey encrypts the stored credentials (BCP_CRED_KEY); empty
	// disables encryption.
	CredKey string `yaml:"-"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:   "https://newprod-api.bestcoastpairings.com",
			ClientID:  "web-app",
			PageLimit: 40,
			Timeout:   30 * time.Second,
		},
		Site: SiteConfig{
			LoginURL:   "https://www.lfgnexus.com/login",
			AddFormURL: "https://www.lfgnexus.com/account/events/add",
			LoginGate:  "login_direct_url",
		},
		Files: FilesConfig{
			StorePath:    "events_data.csv",
			ScratchPath:  "new_events.csv",
			SessionPath:  "state.json",
			CredsPath:    "credentials.json",
			ImageDir:     "images",
			DefaultImage: filepath.Join("images", "default-image.png"),
			LogPath:      "events_scraper.log",
		},
		Timezone:   "America/New_York",
		WindowDays: 90,
		Headless:   true,
	}
}

// Load reads configuration from an optional YAML file and overlays secrets
// from the environment. A missing file path falls back to defaults; a named
// file that does not exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// .env is optional; ignore absence
	_ = godotenv.Load()

	cfg.API.APIKey = strings.TrimSpace(os.Getenv("BCP_API_KEY"))
	cfg.Site.Email = strings.TrimSpace(os.Getenv("LFG_EMAIL"))
	cfg.Site.Password = strings.TrimSpace(os.Getenv("LFG_PASSWORD"))
	cfg.CredKey = strings.TrimSpace(os.Getenv("BCP_CRED_KEY"))

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is empty")
	}
	if c.API.PageLimit <= 0 {
		return fmt.Errorf("api.page_limit must be positive, got %d", c.API.PageLimit)
	}
	if c.WindowDays <= 0 {
		return fmt.Errorf("window_days must be positive, got %d", c.WindowDays)
	}
	if c.Timezone == "" {
		return fmt.Errorf("timezone is empty")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if c.Files.StorePath == "" || c.Files.ScratchPath == "" {
		return fmt.Errorf("files.store_path and files.scratch_path are required")
	}
	return nil
}

// Location resolves the configured reference timezone. Config validation
// guarantees this succeeds for any Config returned by Load.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
