// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/invowk/need/pkg/need"
)

const (
	// BackendFS reads modules from the local filesystem below Backend.Root.
	BackendFS BackendKind = "fs"
	// BackendHTTP fetches modules with GET requests below Backend.BaseURL.
	BackendHTTP BackendKind = "http"
	// BackendGit reads modules from a commit of Backend.GitURL.
	BackendGit BackendKind = "git"

	// LogLevelDebug logs every resolution candidate.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the default log level.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs warnings and errors only.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs errors only.
	LogLevelError LogLevel = "error"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidBackendKind is returned when a BackendKind value is not recognized.
	ErrInvalidBackendKind = errors.New("invalid backend kind")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrMissingBackendField is the sentinel error wrapped by MissingBackendFieldError.
	ErrMissingBackendField = errors.New("missing backend field")
	// ErrInvalidCoreEntry is the sentinel error wrapped by InvalidCoreEntryError.
	ErrInvalidCoreEntry = errors.New("invalid core entry")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// BackendKind selects the content accessor used for resolution.
	BackendKind string

	// InvalidBackendKindError is returned when a BackendKind value is not recognized.
	// It wraps ErrInvalidBackendKind for errors.Is() compatibility.
	InvalidBackendKindError struct {
		Value BackendKind
	}

	// LogLevel sets the verbosity of the CLI logger.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// MissingBackendFieldError is returned when the selected backend lacks a
	// field it cannot work without.
	MissingBackendFieldError struct {
		Kind  BackendKind
		Field string
	}

	// InvalidCoreEntryError is returned when a core entry is neither a module
	// name nor true.
	InvalidCoreEntryError struct {
		Name  string
		Value any
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// DependencyDir is searched at every ancestor level ("" disables the walk).
		DependencyDir string `json:"dependency_dir" mapstructure:"dependency_dir" toml:"dependency_dir"`
		// Manifest is the per-directory metadata file ("" disables manifests).
		Manifest string `json:"manifest" mapstructure:"manifest" toml:"manifest"`
		// Extension is appended when a bare file path is not found.
		Extension string `json:"extension" mapstructure:"extension" toml:"extension"`
		// Index is the implicit directory entry name, without extension.
		Index string `json:"index" mapstructure:"index" toml:"index"`
		// LogLevel sets the CLI logger level.
		LogLevel LogLevel `json:"log_level" mapstructure:"log_level" toml:"log_level"`
		// Trace exports one span per accessor fetch to stderr.
		Trace bool `json:"trace" mapstructure:"trace" toml:"trace"`
		// Backend selects and configures the content accessor.
		Backend BackendConfig `json:"backend" mapstructure:"backend" toml:"backend"`
		// Core maps core names to the module they load. A value of true loads
		// the name itself.
		Core map[string]any `json:"core,omitempty" mapstructure:"-" toml:"core,omitempty"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui" toml:"ui"`
		// Path is the file the config was loaded from ("" for defaults only).
		Path string `json:"-" mapstructure:"-" toml:"-"`
	}

	// BackendConfig configures the content accessor.
	BackendConfig struct {
		// Kind is one of "fs", "http" or "git".
		Kind BackendKind `json:"kind" mapstructure:"kind" toml:"kind"`
		// Root is the directory mapped to "/" by the fs backend.
		Root string `json:"root,omitempty" mapstructure:"root" toml:"root,omitempty"`
		// BaseURL is the URL mapped to "/" by the http backend.
		BaseURL string `json:"base_url,omitempty" mapstructure:"base_url" toml:"base_url,omitempty"`
		// NoCache sends no-cache headers with every http request.
		NoCache bool `json:"no_cache" mapstructure:"no_cache" toml:"no_cache"`
		// Timeout bounds each http request.
		Timeout time.Duration `json:"timeout" mapstructure:"timeout" toml:"timeout"`
		// GitURL is the repository cloned by the git backend.
		GitURL string `json:"git_url,omitempty" mapstructure:"git_url" toml:"git_url,omitempty"`
		// GitRef is the branch or tag read by the git backend ("" for HEAD).
		GitRef string `json:"git_ref,omitempty" mapstructure:"git_ref" toml:"git_ref,omitempty"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme" toml:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose" toml:"verbose"`
	}
)

// Error implements the error interface for InvalidBackendKindError.
func (e *InvalidBackendKindError) Error() string {
	return fmt.Sprintf("invalid backend kind %q (valid: fs, http, git)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidBackendKindError) Unwrap() error { return ErrInvalidBackendKind }

// String returns the string representation of the BackendKind.
func (k BackendKind) String() string { return string(k) }

// IsValid returns whether the BackendKind is one of the defined kinds,
// and a list of validation errors if it is not.
func (k BackendKind) IsValid() (bool, []error) {
	switch k {
	case BackendFS, BackendHTTP, BackendGit:
		return true, nil
	default:
		return false, []error{&InvalidBackendKindError{Value: k}}
	}
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels,
// and a list of validation errors if it is not.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface for MissingBackendFieldError.
func (e *MissingBackendFieldError) Error() string {
	return fmt.Sprintf("backend %q requires backend.%s", e.Kind, e.Field)
}

// Unwrap returns ErrMissingBackendField for errors.Is() compatibility.
func (e *MissingBackendFieldError) Unwrap() error { return ErrMissingBackendField }

// Error implements the error interface for InvalidCoreEntryError.
func (e *InvalidCoreEntryError) Error() string {
	return fmt.Sprintf("core entry %q: want a module name or true, got %v", e.Name, e.Value)
}

// Unwrap returns ErrInvalidCoreEntry for errors.Is() compatibility.
func (e *InvalidCoreEntryError) Unwrap() error { return ErrInvalidCoreEntry }

// IsValid returns whether the BackendConfig names a known kind and carries
// the fields that kind needs.
func (b BackendConfig) IsValid() (bool, []error) {
	if valid, errs := b.Kind.IsValid(); !valid {
		return false, errs
	}

	var errs []error
	switch b.Kind {
	case BackendFS:
		if strings.TrimSpace(b.Root) == "" {
			errs = append(errs, &MissingBackendFieldError{Kind: b.Kind, Field: "root"})
		}
	case BackendHTTP:
		if b.BaseURL == "" {
			errs = append(errs, &MissingBackendFieldError{Kind: b.Kind, Field: "base_url"})
		}
	case BackendGit:
		if b.GitURL == "" {
			errs = append(errs, &MissingBackendFieldError{Kind: b.Kind, Field: "git_url"})
		}
	}
	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

// IsValid returns whether the UIConfig has valid fields.
func (c UIConfig) IsValid() (bool, []error) {
	return c.ColorScheme.IsValid()
}

// IsValid returns whether the Config has valid fields.
// It delegates to LogLevel.IsValid(), Backend.IsValid(), UI.IsValid() and
// validates every core entry.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.LogLevel.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Backend.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if _, err := c.CoreEntries(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// CoreEntries converts the core table to loader entries, sorted by name.
func (c Config) CoreEntries() ([]need.CoreEntry, error) {
	entries := make([]need.CoreEntry, 0, len(c.Core))
	for name, v := range c.Core {
		entry := need.CoreEntry{Name: need.ModuleName(name)}
		switch target := v.(type) {
		case string:
			entry.Target = need.ModuleName(target)
		case bool:
			if !target {
				return nil, &InvalidCoreEntryError{Name: name, Value: v}
			}
		default:
			return nil, &InvalidCoreEntryError{Name: name, Value: v}
		}
		entries = append(entries, entry)
	}
	slices.SortFunc(entries, func(a, b need.CoreEntry) int {
		return strings.Compare(string(a.Name), string(b.Name))
	})
	return entries, nil
}

// ResolverOptions returns the resolver options described by the config.
func (c Config) ResolverOptions() []need.Option {
	return []need.Option{
		need.WithDependencyDir(c.DependencyDir),
		need.WithManifest(c.Manifest),
		need.WithExtension(c.Extension),
		need.WithIndexName(c.Index),
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DependencyDir: need.DefaultDependencyDir,
		Manifest:      need.DefaultManifest,
		Extension:     need.DefaultExtension,
		Index:         need.DefaultIndexName,
		LogLevel:      LogLevelInfo,
		Trace:         false,
		Backend: BackendConfig{
			Kind:    BackendFS,
			Root:    "/",
			Timeout: 30 * time.Second,
		},
		Core: map[string]any{},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
