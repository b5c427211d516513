// Package config loads wealthwise configuration.
// Source priority (highest to lowest):
// 1. Command-line flags (applied by the caller)
// 2. Environment variables (WEALTHWISE_*), including those set by a .env file
// 3. Config file given via --config, or ~/.config/wealthwise/config.yaml
// 4. Built-in defaults
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/wealthwise/wealthwise/internal/log"
	"github.com/wealthwise/wealthwise/pkg/auth"
)

// AuthConfig holds identity provider settings.
type AuthConfig struct {
	// URL is the Keycloak server root.
	URL      string `yaml:"url"`
	Realm    string `yaml:"realm"`
	ClientID string `yaml:"client_id"`
	// MinValidity is how much lifetime a token must have before it is used
	// without refreshing.
	MinValidity time.Duration `yaml:"min_validity"`
	// TokenFile is where the session is kept between runs. Empty uses
	// ~/.wealthwise/token.json.
	TokenFile string `yaml:"token_file"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
	// File receives TUI logs. Empty uses ~/.wealthwise/wealthwise.log.
	File string `yaml:"file"`
}

// Config is the complete wealthwise configuration.
type Config struct {
	APIURL   string        `yaml:"api_url"`
	Auth     AuthConfig    `yaml:"auth"`
	PageSize int           `yaml:"page_size"`
	Timeout  time.Duration `yaml:"timeout"`
	Log      LogConfig     `yaml:"log"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		APIURL: "http://localhost:5000/api/v1",
		Auth: AuthConfig{
			URL:         "http://localhost:3001",
			Realm:       "wealthwise",
			ClientID:    "frontend-client",
			MinValidity: 5 * time.Second,
		},
		PageSize: 5,
		Timeout:  30 * time.Second,
		Log:      LogConfig{Level: "info"},
	}
}

// DefaultPath returns ~/.config/wealthwise/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "wealthwise", "config.yaml")
}

// Load builds the configuration from defaults, the config file, dotenv files
// and the environment. An explicit configPath must exist; the default path
// is optional. With no dotenv arguments ".env" in the working directory is
// tried.
func Load(configPath string, dotenv ...string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := configPath != ""
	if !explicit {
		configPath = DefaultPath()
	}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
			}
		case explicit || !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, f := range dotenv {
		// godotenv never overrides variables already set in the environment.
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Environment variable names.
const (
	EnvAPIURL      = "WEALTHWISE_API_URL"
	EnvAuthURL     = "WEALTHWISE_AUTH_URL"
	EnvRealm       = "WEALTHWISE_REALM"
	EnvClientID    = "WEALTHWISE_CLIENT_ID"
	EnvPageSize    = "WEALTHWISE_PAGE_SIZE"
	EnvMinValidity = "WEALTHWISE_MIN_VALIDITY"
	EnvLogLevel    = "WEALTHWISE_LOG_LEVEL"
	EnvLogFile     = "WEALTHWISE_LOG_FILE"
	EnvTimeout     = "WEALTHWISE_TIMEOUT"
	EnvTokenFile   = "WEALTHWISE_TOKEN_FILE"
	// EnvToken supplies a bearer token directly, bypassing login and refresh.
	EnvToken = "WEALTHWISE_TOKEN"
)

func applyEnvOverrides(cfg *Config) error {
	str := map[string]*string{
		EnvAPIURL:    &cfg.APIURL,
		EnvAuthURL:   &cfg.Auth.URL,
		EnvRealm:     &cfg.Auth.Realm,
		EnvClientID:  &cfg.Auth.ClientID,
		EnvLogLevel:  &cfg.Log.Level,
		EnvLogFile:   &cfg.Log.File,
		EnvTokenFile: &cfg.Auth.TokenFile,
	}
	for name, dst := range str {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv(EnvPageSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPageSize, err)
		}
		cfg.PageSize = n
	}
	durations := map[string]*time.Duration{
		EnvMinValidity: &cfg.Auth.MinValidity,
		EnvTimeout:     &cfg.Timeout,
	}
	for name, dst := range durations {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = d
	}
	return nil
}

// parseDuration accepts Go durations and bare seconds.
func parseDuration(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var fields []goerrors.FieldError
	add := func(field, msg string, value any) {
		fields = append(fields, goerrors.FieldError{Field: field, Message: msg, Value: value})
	}

	if !validURL(c.APIURL) {
		add("api_url", "must be an absolute http(s) URL", c.APIURL)
	}
	if !validURL(c.Auth.URL) {
		add("auth.url", "must be an absolute http(s) URL", c.Auth.URL)
	}
	if c.Auth.Realm == "" {
		add("auth.realm", "is required", nil)
	}
	if c.Auth.ClientID == "" {
		add("auth.client_id", "is required", nil)
	}
	if c.Auth.MinValidity < 0 {
		add("auth.min_validity", "must not be negative", c.Auth.MinValidity.String())
	}
	if c.PageSize <= 0 {
		add("page_size", "must be positive", c.PageSize)
	}
	if c.Timeout <= 0 {
		add("timeout", "must be positive", c.Timeout.String())
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		add("log.level", "must be one of debug, info, warn, error", c.Log.Level)
	}

	if len(fields) == 0 {
		return nil
	}
	return goerrors.NewValidation("invalid configuration", fields...).
		WithTextCode("VALIDATION_ERROR")
}

func validURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// TokenPath resolves the session file location.
func (c *Config) TokenPath() (string, error) {
	if c.Auth.TokenFile != "" {
		return c.Auth.TokenFile, nil
	}
	return auth.DefaultTokenPath()
}

// LogPath resolves the TUI log file location.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home dir: %w", err)
	}
	return filepath.Join(home, ".wealthwise", "wealthwise.log"), nil
}
