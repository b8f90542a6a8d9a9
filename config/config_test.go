// Package config provides CLI configuration management for the orgmatch command-line tool.
package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultConfig verifies default configuration values.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	if cfg.OutputFormat != DefaultOutputFormat {
		t.Errorf("OutputFormat = %v, want %v", cfg.OutputFormat, DefaultOutputFormat)
	}
	if cfg.AliasBackend != DefaultAliasBackend {
		t.Errorf("AliasBackend = %v, want %v", cfg.AliasBackend, DefaultAliasBackend)
	}
	if cfg.Domain != "" {
		t.Errorf("Domain = %v, want empty", cfg.Domain)
	}
	if cfg.Debug {
		t.Error("Debug should be false by default")
	}
}

// TestOutputFormat_IsValid verifies output format validation.
func TestOutputFormat_IsValid(t *testing.T) {
	tests := []struct {
		format OutputFormat
		valid  bool
	}{
		{OutputFormatText, true},
		{OutputFormatJSON, true},
		{OutputFormatYAML, true},
		{"invalid", false},
		{"", false},
		{"JSON", false}, // Case sensitive
		{"xml", false},
	}

	for _, tc := range tests {
		if got := tc.format.IsValid(); got != tc.valid {
			t.Errorf("OutputFormat(%q).IsValid() = %v, want %v", tc.format, got, tc.valid)
		}
	}
}

// TestAliasBackend_IsValid verifies alias backend validation.
func TestAliasBackend_IsValid(t *testing.T) {
	tests := []struct {
		backend AliasBackend
		valid   bool
	}{
		{AliasBackendFile, true},
		{AliasBackendPostgres, true},
		{AliasBackendRedis, true},
		{"sqlite", false},
		{"", false},
		{"File", false}, // Case sensitive
	}

	for _, tc := range tests {
		if got := tc.backend.IsValid(); got != tc.valid {
			t.Errorf("AliasBackend(%q).IsValid() = %v, want %v", tc.backend, got, tc.valid)
		}
	}
}

// TestConfigDir verifies config directory resolution.
func TestConfigDir(t *testing.T) {
	t.Run("env override", func(t *testing.T) {
		t.Setenv("ORGMATCH_CONFIG_DIR", "/tmp/orgmatch-test")

		dir, err := ConfigDir()
		if err != nil {
			t.Fatalf("ConfigDir() error = %v", err)
		}
		if dir != "/tmp/orgmatch-test" {
			t.Errorf("ConfigDir() = %v, want /tmp/orgmatch-test", dir)
		}
	})

	t.Run("default under home", func(t *testing.T) {
		t.Setenv("ORGMATCH_CONFIG_DIR", "")
		os.Unsetenv("ORGMATCH_CONFIG_DIR")

		dir, err := ConfigDir()
		if err != nil {
			t.Fatalf("ConfigDir() error = %v", err)
		}
		if filepath.Base(dir) != DefaultConfigDir {
			t.Errorf("ConfigDir() = %v, want basename %v", dir, DefaultConfigDir)
		}
	})
}

// TestLoadConfig_Defaults verifies loading with no config file present.
func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ORGMATCH_CONFIG_DIR", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.OutputFormat != OutputFormatText {
		t.Errorf("OutputFormat = %v, want text", cfg.OutputFormat)
	}
	if cfg.AliasBackend != AliasBackendFile {
		t.Errorf("AliasBackend = %v, want file", cfg.AliasBackend)
	}
}

// TestLoadConfig_FromFile verifies YAML file loading.
func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ORGMATCH_CONFIG_DIR", dir)

	content := `domain: corp.example.com
output_format: json
alias_backend: redis
department_remap:
  Office of the CEO: Executive
resolver:
  threshold: 85
  margin: 5
redis:
  addr: cache.internal:6380
debug: true
`
	if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(content), 0600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Domain != "corp.example.com" {
		t.Errorf("Domain = %v, want corp.example.com", cfg.Domain)
	}
	if cfg.OutputFormat != OutputFormatJSON {
		t.Errorf("OutputFormat = %v, want json", cfg.OutputFormat)
	}
	if cfg.AliasBackend != AliasBackendRedis {
		t.Errorf("AliasBackend = %v, want redis", cfg.AliasBackend)
	}
	if got := cfg.DepartmentRemap["Office of the CEO"]; got != "Executive" {
		t.Errorf("DepartmentRemap = %v, want Executive", got)
	}
	if cfg.Resolver.Threshold != 85 {
		t.Errorf("Resolver.Threshold = %v, want 85", cfg.Resolver.Threshold)
	}
	if cfg.Resolver.Margin != 5 {
		t.Errorf("Resolver.Margin = %v, want 5", cfg.Resolver.Margin)
	}
	if cfg.Redis.Addr != "cache.internal:6380" {
		t.Errorf("Redis.Addr = %v, want cache.internal:6380", cfg.Redis.Addr)
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}
}

// TestLoadConfig_EnvOverridesFile verifies environment variables win over the file.
func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ORGMATCH_CONFIG_DIR", dir)

	content := "domain: file.example.com\noutput_format: yaml\n"
	if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(content), 0600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	t.Setenv("ORGMATCH_DOMAIN", "env.example.com")
	t.Setenv("ORGMATCH_OUTPUT_FORMAT", "json")
	t.Setenv("ORGMATCH_MATCH_THRESHOLD", "90")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Domain != "env.example.com" {
		t.Errorf("Domain = %v, want env.example.com", cfg.Domain)
	}
	if cfg.OutputFormat != OutputFormatJSON {
		t.Errorf("OutputFormat = %v, want json", cfg.OutputFormat)
	}
	if cfg.Resolver.Threshold != 90 {
		t.Errorf("Resolver.Threshold = %v, want 90", cfg.Resolver.Threshold)
	}
}

// TestLoadConfig_InvalidFormat verifies validation failures surface.
func TestLoadConfig_InvalidFormat(t *testing.T) {
	t.Setenv("ORGMATCH_CONFIG_DIR", t.TempDir())
	t.Setenv("ORGMATCH_OUTPUT_FORMAT", "xml")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig() = nil error, want invalid output_format")
	}
}

// TestSaveConfig_RoundTrip verifies save then load preserves settings.
func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Setenv("ORGMATCH_CONFIG_DIR", t.TempDir())

	cfg := DefaultConfig()
	cfg.Domain = "corp.example.com"
	cfg.AliasBackend = AliasBackendPostgres
	cfg.Resolver.CandidateFloor = 60

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.Domain != cfg.Domain {
		t.Errorf("Domain = %v, want %v", loaded.Domain, cfg.Domain)
	}
	if loaded.AliasBackend != cfg.AliasBackend {
		t.Errorf("AliasBackend = %v, want %v", loaded.AliasBackend, cfg.AliasBackend)
	}
	if loaded.Resolver.CandidateFloor != 60 {
		t.Errorf("Resolver.CandidateFloor = %v, want 60", loaded.Resolver.CandidateFloor)
	}
}

// TestAliasFilePath verifies alias file path resolution.
func TestAliasFilePath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ORGMATCH_CONFIG_DIR", dir)

	t.Run("default", func(t *testing.T) {
		cfg := DefaultConfig()
		path, err := cfg.AliasFilePath()
		if err != nil {
			t.Fatalf("AliasFilePath() error = %v", err)
		}
		if path != filepath.Join(dir, DefaultAliasFile) {
			t.Errorf("AliasFilePath() = %v, want %v", path, filepath.Join(dir, DefaultAliasFile))
		}
	})

	t.Run("absolute override", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.AliasFile = "/etc/orgmatch/aliases.yaml"
		path, err := cfg.AliasFilePath()
		if err != nil {
			t.Fatalf("AliasFilePath() error = %v", err)
		}
		if path != "/etc/orgmatch/aliases.yaml" {
			t.Errorf("AliasFilePath() = %v, want /etc/orgmatch/aliases.yaml", path)
		}
	})
}
