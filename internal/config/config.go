package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration.
type Config struct {
	Browser BrowserConfig `yaml:"browser" toml:"browser"`
	HTTP    HTTPConfig    `yaml:"http" toml:"http"`
	Script  ScriptConfig  `yaml:"script" toml:"script"`
	Logging LogConfig     `yaml:"logging" toml:"logging"`
}

// BrowserConfig holds the defaults a browser is reset to.
type BrowserConfig struct {
	UserAgent                 string `envconfig:"TWILL_USER_AGENT" default:"TwillBrowser/2.0" yaml:"user_agent" toml:"user_agent"`
	AcknowledgeEquivRefresh   bool   `envconfig:"TWILL_EQUIV_REFRESH" default:"true" yaml:"acknowledge_equiv_refresh" toml:"acknowledge_equiv_refresh"`
	MaxRefreshHops            int    `envconfig:"TWILL_MAX_REFRESH_HOPS" default:"10" yaml:"max_refresh_hops" toml:"max_refresh_hops"`
	ReadonlyControlsWriteable bool   `envconfig:"TWILL_READONLY_WRITEABLE" default:"false" yaml:"readonly_controls_writeable" toml:"readonly_controls_writeable"`
	WithDefaultRealm          bool   `envconfig:"TWILL_DEFAULT_REALM" default:"false" yaml:"with_default_realm" toml:"with_default_realm"`
}

// HTTPConfig holds transport configuration.
type HTTPConfig struct {
	Retries      int     `envconfig:"TWILL_HTTP_RETRIES" default:"0" yaml:"retries" toml:"retries"`
	RateLimit    float64 `envconfig:"TWILL_HTTP_RATE_LIMIT" default:"0" yaml:"rate_limit" toml:"rate_limit"`
	VerifyTLS    bool    `envconfig:"TWILL_VERIFY_TLS" default:"false" yaml:"verify_tls" toml:"verify_tls"`
	MaxRedirects int     `envconfig:"TWILL_MAX_REDIRECTS" default:"10" yaml:"max_redirects" toml:"max_redirects"`
}

// ScriptConfig holds interpreter configuration.
type ScriptConfig struct {
	Extension string `envconfig:"TWILL_EXTENSION" default:".twill" yaml:"extension" toml:"extension"`
	NeverFail bool   `envconfig:"TWILL_NEVER_FAIL" default:"false" yaml:"never_fail" toml:"never_fail"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" yaml:"level" toml:"level"`
	Format      string `envconfig:"LOG_FORMAT" default:"console" yaml:"format" toml:"format"`
	Development bool   `envconfig:"LOG_DEV" default:"false" yaml:"development" toml:"development"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadFile loads the environment configuration and overlays the given YAML or
// TOML file on top of it. Keys present in the file win.
func LoadFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Browser: BrowserConfig{
			UserAgent:               "TwillBrowser/2.0",
			AcknowledgeEquivRefresh: true,
			MaxRefreshHops:          10,
		},
		HTTP: HTTPConfig{
			MaxRedirects: 10,
		},
		Script: ScriptConfig{
			Extension: ".twill",
		},
		Logging: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
