package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/adrg/xdg"
	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"tidyd/internal/errors"
	"tidyd/internal/log"
	"tidyd/internal/rules"
	"tidyd/pkg/types"
)

// Config is the application configuration: where to watch, what to skip,
// and the ordered rules applied to arriving files.
// Immutable once loaded; lifetime = process lifetime.
type Config struct {
	BaseDir  string   `yaml:"baseDir"`  // Root for all destination paths
	WatchDir string   `yaml:"watchDir"` // Watched directory relative to baseDir ("." watches baseDir itself)
	Ignore   []string `yaml:"ignore"`   // Glob patterns skipped before rule matching
	Settings struct {
		DryRun   bool   `yaml:"dryRun"`   // If true, log actions without performing them
		LogLevel string `yaml:"logLevel"` // Logging verbosity: debug, info, warning, or error
	} `yaml:"settings"`
	Rules []types.Rule `yaml:"rules"` // Evaluated in order; first match wins
}

// DefaultPath returns the XDG-aware location of the config file
// (~/.config/tidyd/config.yaml unless the environment overrides it).
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "tidyd", "config.yaml")
}

// LoadConfig loads configuration from the default location.
func LoadConfig() (*Config, error) {
	return LoadConfigFile(DefaultPath())
}

// LoadConfigFile loads configuration from a specific file path.
// The file is decoded strictly (unknown keys are rejected) on top of the
// defaults, then validated. A missing file is an error; run setup first.
func LoadConfigFile(path string) (*Config, error) {
	cfg := New()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewConfigError(
				fmt.Sprintf("config file %s does not exist, run 'tidyd setup' to create one", path),
				"config", errors.ConfigNotFound, err)
		}
		return nil, errors.NewConfigError("failed to read config file", "config", errors.InvalidConfig, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.NewConfigError("failed to parse config file", "config", errors.InvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// New returns a configuration with safe defaults. The base directory is
// deliberately left empty; it must come from the config file.
func New() *Config {
	cfg := &Config{}
	cfg.WatchDir = "."
	cfg.Ignore = []string{"*.part", "*.crdownload", "*.tmp"}
	cfg.Settings.DryRun = false
	cfg.Settings.LogLevel = "info"
	cfg.Rules = []types.Rule{}
	return cfg
}

// Sample returns a starter configuration organizing the user's Downloads
// folder, used by setup to seed a first config file.
func Sample() *Config {
	cfg := New()

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	cfg.BaseDir = filepath.Join(home, "Downloads")

	cfg.Rules = []types.Rule{
		{
			Regex:   `\.zip$`,
			Actions: []types.Action{{Kind: types.ActionUnzip, Dest: "extracted"}},
		},
		{
			Regex:   `(?i)\.(jpe?g|png|gif)$`,
			Actions: []types.Action{{Kind: types.ActionMove, Dest: "images", Duplicate: types.DuplicateRenameDate}},
		},
		{
			Regex:   `(?i)\.pdf$`,
			Actions: []types.Action{{Kind: types.ActionMove, Dest: "documents", Duplicate: types.DuplicateRenameDate}},
		},
	}

	return cfg
}

// WatchPath resolves the watch directory against the base directory.
// An absolute WatchDir is taken as-is.
func (c *Config) WatchPath() string {
	if filepath.IsAbs(c.WatchDir) {
		return c.WatchDir
	}
	return filepath.Join(c.BaseDir, c.WatchDir)
}

// SaveConfig saves the configuration to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewConfigError("failed to create config directory", "config", errors.InvalidConfig, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.NewConfigError("failed to marshal config", "config", errors.InvalidConfig, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewConfigError("failed to write config file", "config", errors.InvalidConfig, err)
	}

	return nil
}

// Validate checks the configuration for startup-fatal problems: missing
// directories, uncompilable rule patterns, malformed size gates, bad action
// parameters, and invalid ignore globs.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("nil config")
	}

	if c.BaseDir == "" {
		return errors.NewConfigError("baseDir is required", "baseDir", errors.InvalidConfig, nil)
	}
	if c.WatchDir == "" {
		return errors.NewConfigError("watchDir is required", "watchDir", errors.InvalidConfig, nil)
	}
	if c.Settings.LogLevel != "" && !log.ValidLevel(c.Settings.LogLevel) {
		return errors.NewConfigError(
			fmt.Sprintf("unknown log level %q", c.Settings.LogLevel),
			"settings.logLevel", errors.InvalidConfig, nil)
	}

	for _, pattern := range c.Ignore {
		if _, err := glob.Compile(pattern); err != nil {
			return errors.NewConfigError(
				fmt.Sprintf("invalid ignore pattern %q", pattern),
				"ignore", errors.InvalidConfig, err)
		}
	}

	sizes, err := rules.NewSizeMatcher()
	if err != nil {
		return err
	}

	for i, rule := range c.Rules {
		if rule.Regex == "" {
			return errors.NewRuleError(
				fmt.Sprintf("rule %d: regex is required", i),
				rule.Regex, errors.InvalidRule, nil)
		}
		if _, err := regexp.Compile(rule.Regex); err != nil {
			return errors.NewRuleError(
				fmt.Sprintf("rule %d: invalid regex %q", i, rule.Regex),
				rule.Regex, errors.InvalidRule, err)
		}
		if len(rule.Actions) == 0 {
			return errors.NewRuleError(
				fmt.Sprintf("rule %d: at least one action is required", i),
				rule.Regex, errors.InvalidRule, nil)
		}
		if rule.MinSize != "" {
			if _, err := sizes.ParseThreshold(rule.MinSize); err != nil {
				return fmt.Errorf("rule %d: %w", i, err)
			}
		}
		for j, action := range rule.Actions {
			switch action.Kind {
			case types.ActionMove:
				if action.Dest == "" {
					return errors.NewRuleError(
						fmt.Sprintf("rule %d action %d: move requires a dest", i, j),
						rule.Regex, errors.InvalidRule, nil)
				}
				if !action.Duplicate.Valid() {
					return errors.NewRuleError(
						fmt.Sprintf("rule %d action %d: unknown duplicate strategy %q", i, j, action.Duplicate),
						rule.Regex, errors.InvalidRule, nil)
				}
			case types.ActionUnzip:
				if action.Dest == "" {
					return errors.NewRuleError(
						fmt.Sprintf("rule %d action %d: unzip requires a dest", i, j),
						rule.Regex, errors.InvalidRule, nil)
				}
			case types.ActionDelete:
				// No parameters to check.
			default:
				return errors.NewRuleError(
					fmt.Sprintf("rule %d action %d: unknown action kind %q", i, j, action.Kind),
					rule.Regex, errors.InvalidRule, nil)
			}
		}
	}

	return nil
}
