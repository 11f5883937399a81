package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "tagdeck"

type Config struct {
	// Catalog database settings
	Database DatabaseConfig `koanf:"database"`

	// Log file settings
	Log LogConfig `koanf:"log"`

	// Cover art lookup settings
	Covers CoversConfig `koanf:"covers"`

	// Tidal cover provider (enabled when an access token is configured)
	Tidal TidalConfig `koanf:"tidal"`

	// Spotify cover provider (enabled when an access token is configured)
	Spotify SpotifyConfig `koanf:"spotify"`

	// MusicBrainz tag lookup and Cover Art Archive provider
	MusicBrainz MusicBrainzConfig `koanf:"musicbrainz"`
}

// DatabaseConfig holds the catalog database location.
type DatabaseConfig struct {
	Path string `koanf:"path"` // empty means the XDG data directory
}

// LogConfig holds log output settings.
type LogConfig struct {
	Level      string `koanf:"level"`       // "debug", "info", "warn", "error" (default: "info")
	File       string `koanf:"file"`        // empty means the XDG state directory
	MaxSizeMB  int    `koanf:"max_size_mb"` // rotate after this size (default: 10)
	MaxBackups int    `koanf:"max_backups"` // rotated files kept (default: 3)
}

// CoversConfig holds cover art resolution and search settings.
type CoversConfig struct {
	ThumbnailSize uint     `koanf:"thumbnail_size"` // thumbnail edge in pixels (default: 120)
	Providers     []string `koanf:"providers"`      // provider order (default: tidal, spotify)
	RateLimitMS   int      `koanf:"rate_limit_ms"`  // minimum delay between provider requests (default: 250)
	UserAgent     string   `koanf:"user_agent"`
}

// TidalConfig holds Tidal API settings.
type TidalConfig struct {
	APIURL       string `koanf:"api_url"`
	ResourcesURL string `koanf:"resources_url"`
	ClientID     string `koanf:"client_id"`
	CountryCode  string `koanf:"country_code"`
	AccessToken  string `koanf:"access_token"`
}

// MusicBrainzConfig holds MusicBrainz and Cover Art Archive settings.
type MusicBrainzConfig struct {
	APIURL      string `koanf:"api_url"`
	CoverArtURL string `koanf:"cover_art_url"`
}

// SpotifyConfig holds Spotify API settings.
type SpotifyConfig struct {
	APIURL      string `koanf:"api_url"`
	AccessToken string `koanf:"access_token"`
}

func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom loads the given config files in order (last wins). Missing files
// are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.Database.Path != "" {
		cfg.Database.Path = expandPath(cfg.Database.Path)
	}
	if cfg.Log.File != "" {
		cfg.Log.File = expandPath(cfg.Log.File)
	}

	// Normalize API URLs (remove trailing slash)
	cfg.Tidal.APIURL = strings.TrimSuffix(cfg.Tidal.APIURL, "/")
	cfg.Tidal.ResourcesURL = strings.TrimSuffix(cfg.Tidal.ResourcesURL, "/")
	cfg.Spotify.APIURL = strings.TrimSuffix(cfg.Spotify.APIURL, "/")
	cfg.MusicBrainz.APIURL = strings.TrimSuffix(cfg.MusicBrainz.APIURL, "/")
	cfg.MusicBrainz.CoverArtURL = strings.TrimSuffix(cfg.MusicBrainz.CoverArtURL, "/")

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/tagdeck/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appName, "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasTidalConfig returns true if the Tidal provider can authenticate.
func (c *Config) HasTidalConfig() bool {
	return c.Tidal.AccessToken != ""
}

// HasSpotifyConfig returns true if the Spotify provider can authenticate.
func (c *Config) HasSpotifyConfig() bool {
	return c.Spotify.AccessToken != ""
}

// GetLogConfig returns the log configuration with defaults applied.
func (c *Config) GetLogConfig() LogConfig {
	cfg := c.Log

	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
		cfg.Level = strings.ToLower(cfg.Level)
	default:
		cfg.Level = "info"
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxBackups < 0 {
		cfg.MaxBackups = 0
	} else if cfg.MaxBackups == 0 {
		cfg.MaxBackups = 3
	}

	return cfg
}

// GetCoversConfig returns the cover art configuration with defaults applied.
func (c *Config) GetCoversConfig() CoversConfig {
	cfg := c.Covers

	if cfg.ThumbnailSize == 0 || cfg.ThumbnailSize > 1000 {
		cfg.ThumbnailSize = 120
	}
	if len(cfg.Providers) == 0 {
		cfg.Providers = []string{"tidal", "spotify", "musicbrainz"}
	}
	if cfg.RateLimitMS <= 0 {
		cfg.RateLimitMS = 250
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = appName
	}

	return cfg
}

// GetTidalConfig returns the Tidal configuration with defaults applied.
func (c *Config) GetTidalConfig() TidalConfig {
	cfg := c.Tidal

	if cfg.APIURL == "" {
		cfg.APIURL = "https://api.tidalhifi.com/v1"
	}
	if cfg.ResourcesURL == "" {
		cfg.ResourcesURL = "https://resources.tidal.com"
	}
	if cfg.CountryCode == "" {
		cfg.CountryCode = "US"
	}

	return cfg
}

// GetSpotifyConfig returns the Spotify configuration with defaults applied.
func (c *Config) GetSpotifyConfig() SpotifyConfig {
	cfg := c.Spotify

	if cfg.APIURL == "" {
		cfg.APIURL = "https://api.spotify.com/v1"
	}

	return cfg
}

// GetMusicBrainzConfig returns the MusicBrainz configuration with defaults
// applied.
func (c *Config) GetMusicBrainzConfig() MusicBrainzConfig {
	cfg := c.MusicBrainz

	if cfg.APIURL == "" {
		cfg.APIURL = "https://musicbrainz.org/ws/2"
	}
	if cfg.CoverArtURL == "" {
		cfg.CoverArtURL = "https://coverartarchive.org"
	}

	return cfg
}
