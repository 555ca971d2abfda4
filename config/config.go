// Package config loads Folio client and mock backend settings from a file.
//
// YAML and TOML are both accepted; the format is chosen by file extension.
//
// Example configuration:
//
//	base_url: https://api.folio.example
//	timeout: 30s
//	retries: 3
//
//	headers:
//	  X-Client: folio-cli
//
//	auth:
//	  token: ${FOLIO_TOKEN}
//
//	news:
//	  initial_delay: 110s
//	  interval: 10s
//	  max_attempts: 4
//
//	mock:
//	  port: 8000
//	  task_duration: 5s
//	  fail_symbols: [TSLA]
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvBaseURL = "FOLIO_API_BASE_URL"
	EnvToken   = "FOLIO_API_TOKEN"
)

const (
	defaultBaseURL          = "http://127.0.0.1:8000"
	defaultTimeout          = 30 * time.Second
	defaultRetries          = 3
	defaultNewsInitialDelay = 110 * time.Second
	defaultNewsInterval     = 10 * time.Second
	defaultNewsMaxAttempts  = 4
	defaultMockPort         = 8000
	defaultMockTaskDuration = 5 * time.Second
)

// Format is a configuration file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Config is the root configuration structure.
//
// Use [Load], [Parse] or [Default] to create one; all three apply defaults,
// environment overrides and validation.
type Config struct {
	// BaseURL is the API root. Defaults to http://127.0.0.1:8000.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	BaseURL string `yaml:"base_url" toml:"base_url"`

	// Timeout bounds each request attempt. Defaults to 30s.
	Timeout Duration `yaml:"timeout" toml:"timeout"`

	// Retries is the number of retries after the first attempt. Defaults
	// to 3; an explicit 0 disables retrying.
	Retries *int `yaml:"retries" toml:"retries"`

	// Headers are sent with every request. Values support substitution.
	Headers map[string]string `yaml:"headers" toml:"headers"`

	Auth AuthConfig `yaml:"auth" toml:"auth"`
	News NewsConfig `yaml:"news" toml:"news"`
	Mock MockConfig `yaml:"mock" toml:"mock"`
	Log  LogConfig  `yaml:"log" toml:"log"`
}

// AuthConfig selects where bearer tokens come from. At most one field may
// be set.
type AuthConfig struct {
	// Token is a fixed bearer token.
	Token string `yaml:"token" toml:"token"`

	// TokenCommand is run for every request attempt; its trimmed stdout is
	// the token.
	TokenCommand string `yaml:"token_command" toml:"token_command"`
}

// NewsConfig is the news-summary polling schedule.
type NewsConfig struct {
	InitialDelay Duration `yaml:"initial_delay" toml:"initial_delay"`
	Interval     Duration `yaml:"interval" toml:"interval"`
	MaxAttempts  int      `yaml:"max_attempts" toml:"max_attempts"`
}

// MockConfig configures the serve-mock backend.
type MockConfig struct {
	Port         int      `yaml:"port" toml:"port"`
	Token        string   `yaml:"token" toml:"token"`
	TaskDuration Duration `yaml:"task_duration" toml:"task_duration"`
	FailSymbols  []string `yaml:"fail_symbols" toml:"fail_symbols"`
}

// LogConfig configures mock backend logging.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
	File   string `yaml:"file" toml:"file"`
	Rotate bool   `yaml:"rotate" toml:"rotate"`
}

// Duration wraps time.Duration for YAML and TOML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// UnmarshalText implements encoding.TextUnmarshaler, which TOML uses.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// RetryCount returns the configured retries.
func (c *Config) RetryCount() int {
	if c.Retries == nil {
		return defaultRetries
	}
	return *c.Retries
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		sub := envVarPattern.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}

		name := sub[1]
		hasDefault := len(sub) > 2 && sub[2] != ""

		value, exists := os.LookupEnv(name)
		if !exists {
			if hasDefault {
				return sub[3]
			}
			firstErr = fmt.Errorf("environment variable %q is not set", name)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads a configuration file. Files ending in .toml are parsed as
// TOML, everything else as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data, FormatFor(path))
}

// FormatFor picks the file format from path's extension.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Default returns the configuration used when no file is given.
func Default() (*Config, error) {
	return finish(&Config{})
}

// Parse parses configuration data in the given format.
func Parse(data []byte, format Format) (*Config, error) {
	var cfg Config
	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	case FormatYAML, "":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	return finish(&cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.applyDefaults()
	if err := cfg.expand(); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = Duration(defaultTimeout)
	}
	if c.News.InitialDelay == 0 {
		c.News.InitialDelay = Duration(defaultNewsInitialDelay)
	}
	if c.News.Interval == 0 {
		c.News.Interval = Duration(defaultNewsInterval)
	}
	if c.News.MaxAttempts == 0 {
		c.News.MaxAttempts = defaultNewsMaxAttempts
	}
	if c.Mock.Port == 0 {
		c.Mock.Port = defaultMockPort
	}
	if c.Mock.TaskDuration == 0 {
		c.Mock.TaskDuration = Duration(defaultMockTaskDuration)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// expand substitutes environment variables in string values.
func (c *Config) expand() error {
	fields := []struct {
		name string
		ptr  *string
	}{
		{"base_url", &c.BaseURL},
		{"auth.token", &c.Auth.Token},
		{"auth.token_command", &c.Auth.TokenCommand},
		{"mock.token", &c.Mock.Token},
		{"log.file", &c.Log.File},
	}
	for _, f := range fields {
		expanded, err := expandEnvVars(*f.ptr)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.ptr = expanded
	}

	for k, v := range c.Headers {
		expanded, err := expandEnvVars(v)
		if err != nil {
			return fmt.Errorf("headers[%s]: %w", k, err)
		}
		c.Headers[k] = expanded
	}
	return nil
}

// applyEnv lets FOLIO_API_BASE_URL and FOLIO_API_TOKEN win over the file.
// An env token replaces any configured token command.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvToken); v != "" {
		c.Auth.Token = v
		c.Auth.TokenCommand = ""
	}
}

func (c *Config) validate() error {
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	parsed, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: invalid url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("base_url: scheme must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("base_url: host is required")
	}

	if c.Timeout.Duration() <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout.Duration())
	}
	if c.RetryCount() < 0 {
		return fmt.Errorf("retries cannot be negative, got %d", c.RetryCount())
	}

	if c.Auth.Token != "" && c.Auth.TokenCommand != "" {
		return errors.New("auth: only one of token and token_command may be set")
	}

	if c.News.InitialDelay.Duration() <= 0 {
		return fmt.Errorf("news.initial_delay must be positive, got %s", c.News.InitialDelay.Duration())
	}
	if c.News.Interval.Duration() <= 0 {
		return fmt.Errorf("news.interval must be positive, got %s", c.News.Interval.Duration())
	}
	if c.News.MaxAttempts < 1 {
		return fmt.Errorf("news.max_attempts must be at least 1, got %d", c.News.MaxAttempts)
	}

	if c.Mock.Port < 1 || c.Mock.Port > 65535 {
		return fmt.Errorf("mock.port must be between 1 and 65535, got %d", c.Mock.Port)
	}
	if c.Mock.TaskDuration.Duration() <= 0 {
		return fmt.Errorf("mock.task_duration must be positive, got %s", c.Mock.TaskDuration.Duration())
	}

	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}

	return nil
}
