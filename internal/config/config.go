// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/invowk/need/internal/issue"
	"github.com/invowk/need/pkg/cueutil"
)

const (
	// AppName is the application name.
	AppName = "need"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// LocalConfigFile is the project-local config file looked up in the
	// working directory.
	LocalConfigFile = AppName + "." + ConfigFileExt
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "NEED"

	// coreKey is kept out of Viper: core names are case-sensitive and may
	// contain dots, which Viper would fold or split.
	coreKey = "core"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the need configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	// Allow tests to override the config directory
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// DefaultConfigPath returns <ConfigDir>/config.cue.
func DefaultConfigPath() (string, error) {
	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state. Config.Path records the file that was read.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath, err := findConfigFile(opts)
	if err != nil {
		return nil, err
	}

	core := map[string]any{}
	if resolvedPath != "" {
		fileCore, err := loadCUEIntoViper(v, resolvedPath)
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("See 'need config --help' for configuration options").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
		core = fileCore
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Core = core

	cfg.Path = resolvedPath

	if valid, errs := cfg.IsValid(); !valid {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Set the backend field named above, in the config file or via " + EnvPrefix + "_BACKEND_*").
			WithSuggestion("Core entries must map a name to a module name or to true").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, nil
}

// setDefaults registers every key with Viper. Keys unknown to Viper are not
// picked up from the environment, so each one needs a default.
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("dependency_dir", defaults.DependencyDir)
	v.SetDefault("manifest", defaults.Manifest)
	v.SetDefault("extension", defaults.Extension)
	v.SetDefault("index", defaults.Index)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("trace", defaults.Trace)
	v.SetDefault("backend.kind", defaults.Backend.Kind)
	v.SetDefault("backend.root", defaults.Backend.Root)
	v.SetDefault("backend.base_url", defaults.Backend.BaseURL)
	v.SetDefault("backend.no_cache", defaults.Backend.NoCache)
	v.SetDefault("backend.timeout", defaults.Backend.Timeout)
	v.SetDefault("backend.git_url", defaults.Backend.GitURL)
	v.SetDefault("backend.git_ref", defaults.Backend.GitRef)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
}

// findConfigFile applies the search order: explicit path, config directory,
// working directory. A missing explicit path is an error; anything else
// missing just means defaults.
func findConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithSuggestion("Use 'need config show' to see the default configuration").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	if cuePath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt); fileExists(cuePath) {
		return cuePath, nil
	}

	localPath := LocalConfigFile
	if opts.BaseDir != "" {
		localPath = filepath.Join(opts.BaseDir, LocalConfigFile)
	}
	if fileExists(localPath) {
		return localPath, nil
	}
	return "", nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper. The core table is returned separately.
func loadCUEIntoViper(v *viper.Viper, path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Concrete(false) because every config field is optional.
	unified, err := cueutil.Unify(configSchema, data, "#Config",
		cueutil.WithFilename(path), cueutil.WithConcrete(false))
	if err != nil {
		return nil, err
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return nil, cueutil.FormatError(err, path)
	}

	core := map[string]any{}
	if raw, ok := configMap[coreKey].(map[string]any); ok {
		core = raw
	}
	delete(configMap, coreKey)

	// Merge into Viper (preserves defaults, allows env overrides)
	if err := v.MergeConfigMap(configMap); err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}

	return core, nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	cfgDir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(cfgDir, 0o755)
}

// CreateDefaultConfig writes the default config file unless one exists.
// It returns the file path and whether the file was created.
func CreateDefaultConfig() (string, bool, error) {
	cfgPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, false, nil
	}

	if err := Save(DefaultConfig()); err != nil {
		return "", false, err
	}
	return cfgPath, true, nil
}

// Save writes the configuration to <ConfigDir>/config.cue.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath, err := DefaultConfigPath()
	if err != nil {
		return err
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// need configuration file\n")
	sb.WriteString("// See https://github.com/invowk/need for documentation.\n\n")

	fmt.Fprintf(&sb, "dependency_dir: %q\n", cfg.DependencyDir)
	fmt.Fprintf(&sb, "manifest:       %q\n", cfg.Manifest)
	fmt.Fprintf(&sb, "extension:      %q\n", cfg.Extension)
	fmt.Fprintf(&sb, "index:          %q\n", cfg.Index)
	fmt.Fprintf(&sb, "log_level:      %q\n", cfg.LogLevel)
	fmt.Fprintf(&sb, "trace:          %v\n", cfg.Trace)

	sb.WriteString("\nbackend: {\n")
	fmt.Fprintf(&sb, "\tkind: %q\n", cfg.Backend.Kind)
	if cfg.Backend.Root != "" {
		fmt.Fprintf(&sb, "\troot: %q\n", cfg.Backend.Root)
	}
	if cfg.Backend.BaseURL != "" {
		fmt.Fprintf(&sb, "\tbase_url: %q\n", cfg.Backend.BaseURL)
	}
	fmt.Fprintf(&sb, "\tno_cache: %v\n", cfg.Backend.NoCache)
	fmt.Fprintf(&sb, "\ttimeout: %q\n", formatDuration(cfg.Backend.Timeout))
	if cfg.Backend.GitURL != "" {
		fmt.Fprintf(&sb, "\tgit_url: %q\n", cfg.Backend.GitURL)
	}
	if cfg.Backend.GitRef != "" {
		fmt.Fprintf(&sb, "\tgit_ref: %q\n", cfg.Backend.GitRef)
	}
	sb.WriteString("}\n")

	if len(cfg.Core) > 0 {
		sb.WriteString("\ncore: {\n")
		for _, name := range slices.Sorted(maps.Keys(cfg.Core)) {
			switch target := cfg.Core[name].(type) {
			case string:
				fmt.Fprintf(&sb, "\t%q: %q\n", name, target)
			default:
				fmt.Fprintf(&sb, "\t%q: %v\n", name, target)
			}
		}
		sb.WriteString("}\n")
	}

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}

// tomlConfig is the TOML view of Config. Durations are written as strings
// so the output can be pasted back into a CUE config.
type tomlConfig struct {
	DependencyDir string         `toml:"dependency_dir"`
	Manifest      string         `toml:"manifest"`
	Extension     string         `toml:"extension"`
	Index         string         `toml:"index"`
	LogLevel      string         `toml:"log_level"`
	Trace         bool           `toml:"trace"`
	Backend       tomlBackend    `toml:"backend"`
	Core          map[string]any `toml:"core,omitempty"`
	UI            UIConfig       `toml:"ui"`
}

type tomlBackend struct {
	Kind    string `toml:"kind"`
	Root    string `toml:"root,omitempty"`
	BaseURL string `toml:"base_url,omitempty"`
	NoCache bool   `toml:"no_cache"`
	Timeout string `toml:"timeout"`
	GitURL  string `toml:"git_url,omitempty"`
	GitRef  string `toml:"git_ref,omitempty"`
}

// GenerateTOML renders the configuration as TOML.
func GenerateTOML(cfg *Config) (string, error) {
	view := tomlConfig{
		DependencyDir: cfg.DependencyDir,
		Manifest:      cfg.Manifest,
		Extension:     cfg.Extension,
		Index:         cfg.Index,
		LogLevel:      cfg.LogLevel.String(),
		Trace:         cfg.Trace,
		Backend: tomlBackend{
			Kind:    cfg.Backend.Kind.String(),
			Root:    cfg.Backend.Root,
			BaseURL: cfg.Backend.BaseURL,
			NoCache: cfg.Backend.NoCache,
			Timeout: formatDuration(cfg.Backend.Timeout),
			GitURL:  cfg.Backend.GitURL,
			GitRef:  cfg.Backend.GitRef,
		},
		Core: cfg.Core,
		UI:   cfg.UI,
	}

	out, err := toml.Marshal(view)
	if err != nil {
		return "", fmt.Errorf("failed to render TOML: %w", err)
	}
	return string(out), nil
}

// formatDuration renders d the way time.ParseDuration reads it back.
func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	return d.String()
}
