package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/bookcheck/packages/core/env"
	bchttp "github.com/abdul-hamid-achik/bookcheck/packages/http"
	"gopkg.in/yaml.v3"
)

// Config represents the bookcheck configuration
type Config struct {
	BaseURL         string            `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`
	Timeout         int               `json:"timeout,omitempty" yaml:"timeout,omitempty"` // milliseconds
	BookID          int               `json:"bookId,omitempty" yaml:"bookId,omitempty"`
	Seed            int64             `json:"seed,omitempty" yaml:"seed,omitempty"`
	EnvFile         string            `json:"envFile,omitempty" yaml:"envFile,omitempty"`
	Output          string            `json:"output,omitempty" yaml:"output,omitempty"`
	OutputFile      string            `json:"outputFile,omitempty" yaml:"outputFile,omitempty"`
	Headers         map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"` // Default headers for all requests
	Proxy           string            `json:"proxy,omitempty" yaml:"proxy,omitempty"`
	FollowRedirects *bool             `json:"followRedirects,omitempty" yaml:"followRedirects,omitempty"`
	ValidateSSL     *bool             `json:"validateSSL,omitempty" yaml:"validateSSL,omitempty"`
	DeleteWithBody  *bool             `json:"deleteWithBody,omitempty" yaml:"deleteWithBody,omitempty"`
	Preflight       *bool             `json:"preflight,omitempty" yaml:"preflight,omitempty"`
	Repeat          int               `json:"repeat,omitempty" yaml:"repeat,omitempty"`
	Rate            float64           `json:"rate,omitempty" yaml:"rate,omitempty"` // runs per second
	Thresholds      string            `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`
	StopOnFailure   *bool             `json:"stopOnFailure,omitempty" yaml:"stopOnFailure,omitempty"`
	Verbose         *bool             `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	NoColor         *bool             `json:"noColor,omitempty" yaml:"noColor,omitempty"`
	LogLevel        string            `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects returns the follow redirects setting, defaulting to true
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirects, true)
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetDeleteWithBody returns whether DELETE carries a body, defaulting to false
func (c *Config) GetDeleteWithBody() bool {
	return getBool(c.DeleteWithBody, false)
}

// GetPreflight returns whether GET /status runs first, defaulting to false
func (c *Config) GetPreflight() bool {
	return getBool(c.Preflight, false)
}

// GetStopOnFailure returns the repeated run stop setting, defaulting to false
func (c *Config) GetStopOnFailure() bool {
	return getBool(c.StopOnFailure, false)
}

// GetVerbose returns the verbose setting, defaulting to false
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".bookcheck.json",
	"bookcheck.json",
	".bookcheck.yaml",
	"bookcheck.yaml",
}

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BOOKCHECK_"

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

// FindConfigFile returns the first config file present in dir, or "".
func FindConfigFile(dir string) string {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}
	return ""
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return config, nil
}

// ApplyEnv overrides fields from prefix-named environment variables, e.g.
// BOOKCHECK_BASE_URL or BOOKCHECK_DELETE_BODY.
func (c *Config) ApplyEnv(prefix string) error {
	vars := env.LoadSystemEnv(prefix)

	str := func(key string, dst *string) {
		if v, ok := vars[key]; ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) error {
		v, ok := vars[key]
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", prefix, key, err)
		}
		*dst = n
		return nil
	}
	boolean := func(key string, dst **bool) error {
		v, ok := vars[key]
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", prefix, key, err)
		}
		*dst = &b
		return nil
	}

	str("BASE_URL", &c.BaseURL)
	str("ENV_FILE", &c.EnvFile)
	str("OUTPUT", &c.Output)
	str("OUTPUT_FILE", &c.OutputFile)
	str("PROXY", &c.Proxy)
	str("THRESHOLDS", &c.Thresholds)
	str("LOG_LEVEL", &c.LogLevel)

	if err := integer("TIMEOUT", &c.Timeout); err != nil {
		return err
	}
	if err := integer("BOOK_ID", &c.BookID); err != nil {
		return err
	}
	if err := integer("REPEAT", &c.Repeat); err != nil {
		return err
	}
	if v, ok := vars["SEED"]; ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sSEED: %w", prefix, err)
		}
		c.Seed = n
	}
	if v, ok := vars["RATE"]; ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sRATE: %w", prefix, err)
		}
		c.Rate = f
	}

	for key, dst := range map[string]**bool{
		"DELETE_BODY":     &c.DeleteWithBody,
		"PREFLIGHT":       &c.Preflight,
		"STOP_ON_FAILURE": &c.StopOnFailure,
		"VERBOSE":         &c.Verbose,
		"NO_COLOR":        &c.NoColor,
		"VALIDATE_SSL":    &c.ValidateSSL,
	} {
		if err := boolean(key, dst); err != nil {
			return err
		}
	}

	return nil
}

// Validate rejects settings no run could use.
func (c *Config) Validate() error {
	if err := bchttp.ValidateURL(c.BaseURL); err != nil {
		return fmt.Errorf("baseUrl: %w", err)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	if c.BookID < 1 {
		return fmt.Errorf("bookId must be positive")
	}
	if c.Repeat < 0 {
		return fmt.Errorf("repeat cannot be negative")
	}
	if c.Rate < 0 {
		return fmt.Errorf("rate cannot be negative")
	}
	switch c.Output {
	case "", "console", "json", "junit", "tap":
	default:
		return fmt.Errorf("unknown output %q", c.Output)
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.BaseURL != "" {
		result.BaseURL = other.BaseURL
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.BookID > 0 {
		result.BookID = other.BookID
	}
	if other.Seed != 0 {
		result.Seed = other.Seed
	}
	if other.EnvFile != "" {
		result.EnvFile = other.EnvFile
	}
	if other.Output != "" {
		result.Output = other.Output
	}
	if other.OutputFile != "" {
		result.OutputFile = other.OutputFile
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}
	if other.Repeat > 0 {
		result.Repeat = other.Repeat
	}
	if other.Rate > 0 {
		result.Rate = other.Rate
	}
	if other.Thresholds != "" {
		result.Thresholds = other.Thresholds
	}
	if other.LogLevel != "" {
		result.LogLevel = other.LogLevel
	}

	// Boolean flags - only override if explicitly set in other config
	if other.FollowRedirects != nil {
		result.FollowRedirects = other.FollowRedirects
	}
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.DeleteWithBody != nil {
		result.DeleteWithBody = other.DeleteWithBody
	}
	if other.Preflight != nil {
		result.Preflight = other.Preflight
	}
	if other.StopOnFailure != nil {
		result.StopOnFailure = other.StopOnFailure
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	if len(other.Headers) > 0 {
		headers := make(map[string]string, len(c.Headers)+len(other.Headers))
		for k, v := range c.Headers {
			headers[k] = v
		}
		for k, v := range other.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	return &result
}

// SaveConfig saves the configuration to a file, as YAML for .yaml/.yml paths
func (c *Config) SaveConfig(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
