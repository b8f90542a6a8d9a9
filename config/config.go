// Package config provides CLI configuration management for the orgmatch
// command-line tool. It supports loading configuration from YAML files and
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// OutputFormat defines the supported output formats for CLI results.
type OutputFormat string

const (
	// OutputFormatText is human-readable plain text output.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON is JSON-formatted output for machine processing.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML is YAML-formatted output for machine processing.
	OutputFormatYAML OutputFormat = "yaml"
)

// AliasBackend selects where alias overrides are stored.
type AliasBackend string

const (
	// AliasBackendFile stores aliases in a YAML file under the config directory.
	AliasBackendFile AliasBackend = "file"
	// AliasBackendPostgres stores aliases in a shared PostgreSQL table.
	AliasBackendPostgres AliasBackend = "postgres"
	// AliasBackendRedis stores aliases in a Redis hash.
	AliasBackendRedis AliasBackend = "redis"
)

// Default configuration values.
const (
	DefaultOutputFormat OutputFormat = OutputFormatText
	DefaultAliasBackend AliasBackend = AliasBackendFile
	DefaultConfigDir                 = ".orgmatch"
	DefaultConfigFile                = "config.yaml"
	DefaultAliasFile                 = "aliases.yaml"
	DefaultRedisAddr                 = "localhost:6379"
)

// ResolverConfig holds match acceptance tuning. Zero values mean "use the
// resolver's built-in defaults".
type ResolverConfig struct {
	// Threshold is the minimum similarity score for an automatic match.
	Threshold int `yaml:"threshold,omitempty"`

	// Margin is the minimum lead the best candidate needs over the runner-up.
	Margin int `yaml:"margin,omitempty"`

	// CandidateFloor is the minimum score for a candidate to be reported.
	CandidateFloor int `yaml:"candidate_floor,omitempty"`

	// MaxCandidates caps how many candidates a review item carries.
	MaxCandidates int `yaml:"max_candidates,omitempty"`
}

// RedisConfig holds Redis alias backend settings.
type RedisConfig struct {
	// Addr is the Redis server address (host:port).
	Addr string `yaml:"addr,omitempty"`

	// Password is the Redis AUTH password, if any.
	Password string `yaml:"password,omitempty"`

	// DB is the Redis logical database number.
	DB int `yaml:"db,omitempty"`
}

// CLIConfig holds the CLI configuration settings.
type CLIConfig struct {
	// Domain is the canonical email domain identifiers are generated under.
	Domain string `yaml:"domain"`

	// DepartmentRemap renames top-level org branches in reports.
	// Example: {"Office of the CEO": "Executive"}
	DepartmentRemap map[string]string `yaml:"department_remap,omitempty"`

	// OutputFormat specifies the default output format for commands.
	OutputFormat OutputFormat `yaml:"output_format"`

	// AliasBackend selects the alias store implementation.
	AliasBackend AliasBackend `yaml:"alias_backend"`

	// AliasFile is the path to the YAML alias file when AliasBackend is "file".
	// Defaults to aliases.yaml inside the config directory.
	AliasFile string `yaml:"alias_file,omitempty"`

	// Resolver tunes match acceptance thresholds.
	Resolver ResolverConfig `yaml:"resolver,omitempty"`

	// Redis holds connection settings for the redis alias backend.
	Redis RedisConfig `yaml:"redis,omitempty"`

	// Debug enables verbose debug logging.
	Debug bool `yaml:"debug,omitempty"`
}

// DefaultConfig returns a CLIConfig with default values.
func DefaultConfig() *CLIConfig {
	return &CLIConfig{
		OutputFormat: DefaultOutputFormat,
		AliasBackend: DefaultAliasBackend,
	}
}

// ConfigDir returns the configuration directory path.
// Uses $ORGMATCH_CONFIG_DIR if set, otherwise ~/.orgmatch
func ConfigDir() (string, error) {
	if dir := os.Getenv("ORGMATCH_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// AliasFilePath returns the path to the YAML alias file, resolving the
// configured override against the config directory when relative.
func (c *CLIConfig) AliasFilePath() (string, error) {
	path := c.AliasFile
	if path == "" {
		path = DefaultAliasFile
	}
	path = expandPath(path)
	if filepath.IsAbs(path) {
		return path, nil
	}

	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, path), nil
}

// LoadConfig loads the CLI configuration from file and environment variables.
// Configuration is loaded in this order (later sources override earlier):
// 1. Default values
// 2. Config file (~/.orgmatch/config.yaml or $ORGMATCH_CONFIG_DIR/config.yaml)
// 3. Environment variables (ORGMATCH_DOMAIN, ORGMATCH_OUTPUT_FORMAT, ...)
func LoadConfig() (*CLIConfig, error) {
	cfg := DefaultConfig()

	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *CLIConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var fileCfg CLIConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if fileCfg.Domain != "" {
		cfg.Domain = fileCfg.Domain
	}
	if fileCfg.DepartmentRemap != nil {
		cfg.DepartmentRemap = fileCfg.DepartmentRemap
	}
	if fileCfg.OutputFormat != "" {
		cfg.OutputFormat = fileCfg.OutputFormat
	}
	if fileCfg.AliasBackend != "" {
		cfg.AliasBackend = fileCfg.AliasBackend
	}
	if fileCfg.AliasFile != "" {
		cfg.AliasFile = fileCfg.AliasFile
	}
	cfg.Resolver = fileCfg.Resolver
	cfg.Redis = fileCfg.Redis
	cfg.Debug = fileCfg.Debug

	return nil
}

// loadFromEnv overlays environment variables onto the configuration.
func loadFromEnv(cfg *CLIConfig) {
	if v := os.Getenv("ORGMATCH_DOMAIN"); v != "" {
		cfg.Domain = v
	}

	if v := os.Getenv("ORGMATCH_OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(v)
	}

	if v := os.Getenv("ORGMATCH_ALIAS_BACKEND"); v != "" {
		cfg.AliasBackend = AliasBackend(v)
	}

	if v := os.Getenv("ORGMATCH_ALIAS_FILE"); v != "" {
		cfg.AliasFile = v
	}

	if v := os.Getenv("ORGMATCH_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}

	if v := os.Getenv("ORGMATCH_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}

	if v := os.Getenv("ORGMATCH_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}

	if v := os.Getenv("ORGMATCH_MATCH_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Resolver.Threshold = n
		}
	}

	if v := os.Getenv("ORGMATCH_DEBUG"); v == "true" || v == "1" {
		cfg.Debug = true
	}
}

// Validate checks that the configuration is valid.
func (c *CLIConfig) Validate() error {
	if !c.OutputFormat.IsValid() {
		return fmt.Errorf("invalid output_format: %q (must be text, json, or yaml)", c.OutputFormat)
	}

	if !c.AliasBackend.IsValid() {
		return fmt.Errorf("invalid alias_backend: %q (must be file, postgres, or redis)", c.AliasBackend)
	}

	if c.Resolver.Threshold < 0 || c.Resolver.Threshold > 100 {
		return fmt.Errorf("resolver threshold must be between 0 and 100, got %d", c.Resolver.Threshold)
	}

	return nil
}

// IsValid checks if the output format is valid.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// IsValid checks if the alias backend is a supported value.
func (b AliasBackend) IsValid() bool {
	switch b {
	case AliasBackendFile, AliasBackendPostgres, AliasBackendRedis:
		return true
	default:
		return false
	}
}

// String returns the string representation of the alias backend.
func (b AliasBackend) String() string {
	return string(b)
}

// RedisAddr returns the configured Redis address or the default.
func (c *CLIConfig) RedisAddr() string {
	if c.Redis.Addr != "" {
		return c.Redis.Addr
	}
	return DefaultRedisAddr
}

// SaveConfig saves the configuration to the config file.
func SaveConfig(cfg *CLIConfig) error {
	configDir, err := ConfigDir()
	if err != nil {
		return fmt.Errorf("getting config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	configPath := filepath.Join(configDir, DefaultConfigFile)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
