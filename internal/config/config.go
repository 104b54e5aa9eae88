package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/sortify-app/sortify/internal/classifier"
	"github.com/sortify-app/sortify/internal/detect"
	"github.com/sortify-app/sortify/internal/platform"
	"github.com/sortify-app/sortify/internal/security"
)

// Config represents the application configuration
type Config struct {
	// Directory is sorted when no directory argument is given; empty means the working directory
	Directory        string              `yaml:"directory" toml:"directory"`
	Categories       map[string][]string `yaml:"categories" toml:"categories"`
	ReplaceDefaults  bool                `yaml:"replace_defaults" toml:"replace_defaults"`
	FallbackCategory string              `yaml:"fallback_category" toml:"fallback_category"`
	ExcludePatterns  []string            `yaml:"exclude_patterns" toml:"exclude_patterns"`
	SkipHidden       bool                `yaml:"skip_hidden" toml:"skip_hidden"`
	AllowHome        bool                `yaml:"allow_home" toml:"allow_home"`
	DryRun           bool                `yaml:"dry_run" toml:"dry_run"`
	Detection        DetectionConfig     `yaml:"detection" toml:"detection"`
	Log              LogConfig           `yaml:"log" toml:"log"`
	Schedules        []Schedule          `yaml:"schedules,omitempty" toml:"schedules,omitempty"`
}

// DetectionConfig controls content sniffing
type DetectionConfig struct {
	Enabled        bool   `yaml:"enabled" toml:"enabled"`
	OnMismatch     string `yaml:"on_mismatch" toml:"on_mismatch"` // "signature", "extension", "manual", "skip"
	Binaries       string `yaml:"binaries" toml:"binaries"`       // "process", "skip"
	ManualCategory string `yaml:"manual_category" toml:"manual_category"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // "console" or "json"
	File   string `yaml:"file" toml:"file"`
}

// Schedule defines a recurring sort of one directory
type Schedule struct {
	Name      string `yaml:"name" toml:"name"`
	Cron      string `yaml:"cron" toml:"cron"` // standard 5-field expression or @descriptor
	Directory string `yaml:"directory" toml:"directory"`
	DryRun    bool   `yaml:"dry_run" toml:"dry_run"`
}

// Load loads configuration from a file. A missing file yields the defaults;
// fields absent from the file keep their default values.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefault(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := GetDefault()
	if isTOML(configPath) {
		err = toml.Unmarshal(data, config)
	} else {
		err = yaml.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Save saves configuration to a file, as TOML when the path ends in .toml
func Save(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isTOML(configPath) {
		data, err = toml.Marshal(config)
	} else {
		data, err = yaml.Marshal(config)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := classifier.ValidateCategory(c.FallbackCategory); err != nil {
		return fmt.Errorf("fallback_category: %w", err)
	}

	// Categories must build a consistent table
	if _, err := c.Table(); err != nil {
		return fmt.Errorf("categories: %w", err)
	}

	for _, pattern := range c.ExcludePatterns {
		if err := security.ValidateGlobPattern(pattern); err != nil {
			return fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
	}

	if _, err := detect.ParseMismatchPolicy(c.Detection.OnMismatch); err != nil {
		return fmt.Errorf("detection.on_mismatch: %w", err)
	}
	if _, err := detect.ParseBinaryPolicy(c.Detection.Binaries); err != nil {
		return fmt.Errorf("detection.binaries: %w", err)
	}
	if err := classifier.ValidateCategory(c.Detection.ManualCategory); err != nil {
		return fmt.Errorf("detection.manual_category: %w", err)
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error: %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json: %q", c.Log.Format)
	}

	names := make(map[string]struct{}, len(c.Schedules))
	for i, s := range c.Schedules {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("schedules[%d]: name is required", i)
		}
		if _, dup := names[s.Name]; dup {
			return fmt.Errorf("schedules[%d]: duplicate name %q", i, s.Name)
		}
		names[s.Name] = struct{}{}
		if _, err := cron.ParseStandard(s.Cron); err != nil {
			return fmt.Errorf("schedule %q: invalid cron expression: %w", s.Name, err)
		}
		if !filepath.IsAbs(s.Directory) {
			return fmt.Errorf("schedule %q: directory must be absolute: %s", s.Name, s.Directory)
		}
	}

	return nil
}

// Table builds the classification table: built-in defaults (unless
// replace_defaults is set) overlaid with the configured categories.
// One extension listed under two configured categories is an error.
func (c *Config) Table() (*classifier.Table, error) {
	mapping := make(map[string]string)
	if !c.ReplaceDefaults {
		for category, exts := range DefaultCategories() {
			for _, ext := range exts {
				mapping[classifier.NormalizeExtension(ext)] = category
			}
		}
	}

	owner := make(map[string]string)
	for category, exts := range c.Categories {
		if err := classifier.ValidateCategory(category); err != nil {
			return nil, err
		}
		for _, raw := range exts {
			ext := classifier.NormalizeExtension(raw)
			if ext == "" {
				return nil, fmt.Errorf("category %q lists an empty extension", category)
			}
			if prev, ok := owner[ext]; ok && prev != category {
				return nil, fmt.Errorf("extension %q listed under both %q and %q", ext, prev, category)
			}
			owner[ext] = category
			mapping[ext] = category
		}
	}

	return classifier.NewTable(mapping)
}

// DetectionPolicy returns the parsed detection policy
func (c *Config) DetectionPolicy() detect.Policy {
	onMismatch, err := detect.ParseMismatchPolicy(c.Detection.OnMismatch)
	if err != nil {
		onMismatch = detect.MismatchManual
	}
	binaries, err := detect.ParseBinaryPolicy(c.Detection.Binaries)
	if err != nil {
		binaries = detect.BinaryProcess
	}
	return detect.Policy{OnMismatch: onMismatch, Binaries: binaries}
}

// GetConfigPath returns the default config path
func GetConfigPath() (string, error) {
	configDir, err := platform.GetUserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, platform.AppName, "config.yaml"), nil
}

// EnsureConfigExists creates a default config file if it doesn't exist
func EnsureConfigExists(configPath string) (bool, error) {
	if _, err := os.Stat(configPath); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}

	cfg := GetDefault()
	cfg.Categories = DefaultCategories()
	cfg.ReplaceDefaults = true
	if err := Save(cfg, configPath); err != nil {
		return false, err
	}
	return true, nil
}
