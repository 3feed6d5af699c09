// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
)

const (
	// RuntimeNative runs recipe steps in the host system shell.
	// Defined locally to avoid coupling config to internal/shell;
	// the CLI casts to shell.RuntimeType at the boundary.
	RuntimeNative RuntimeMode = "native"
	// RuntimeVirtual runs recipe steps in the embedded mvdan/sh interpreter.
	RuntimeVirtual RuntimeMode = "virtual"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidConfigRuntimeMode is returned when a config RuntimeMode value is not recognized.
	ErrInvalidConfigRuntimeMode = errors.New("invalid runtime mode")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
)

type (
	// RuntimeMode specifies the execution runtime for recipe steps.
	RuntimeMode string

	// InvalidConfigRuntimeModeError is returned when a config RuntimeMode value is not recognized.
	// It wraps ErrInvalidConfigRuntimeMode for errors.Is() compatibility.
	InvalidConfigRuntimeModeError struct {
		Value RuntimeMode
	}

	// ColorScheme specifies the terminal color scheme for styled output.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// UIConfig holds presentation settings.
	UIConfig struct {
		// ColorScheme selects the style palette (auto, dark, light).
		ColorScheme ColorScheme `mapstructure:"color_scheme" json:"color_scheme"`
		// Verbose enables diagnostic tracing by default.
		Verbose bool `mapstructure:"verbose" json:"verbose"`
	}

	// Config is rundown's own configuration.
	Config struct {
		// DefaultRuntime selects the runtime used when --runtime is not given.
		DefaultRuntime RuntimeMode `mapstructure:"default_runtime" json:"default_runtime"`
		// Shell overrides the native runtime's shell binary.
		Shell string `mapstructure:"shell" json:"shell"`
		// UI holds presentation settings.
		UI UIConfig `mapstructure:"ui" json:"ui"`
	}
)

// Error implements the error interface.
func (e *InvalidConfigRuntimeModeError) Error() string {
	return fmt.Sprintf("invalid runtime mode %q (valid: native, virtual)", e.Value)
}

// Unwrap returns ErrInvalidConfigRuntimeMode so callers can use errors.Is for programmatic detection.
func (e *InvalidConfigRuntimeModeError) Unwrap() error { return ErrInvalidConfigRuntimeMode }

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme so callers can use errors.Is for programmatic detection.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// Validate returns nil if the RuntimeMode is recognized.
func (m RuntimeMode) Validate() error {
	switch m {
	case RuntimeNative, RuntimeVirtual:
		return nil
	default:
		return &InvalidConfigRuntimeModeError{Value: m}
	}
}

// Validate returns nil if the ColorScheme is recognized.
func (s ColorScheme) Validate() error {
	switch s {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: s}
	}
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		DefaultRuntime: RuntimeNative,
		Shell:          "",
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}

// Validate checks every configured value.
func (c *Config) Validate() error {
	if err := c.DefaultRuntime.Validate(); err != nil {
		return err
	}
	return c.UI.ColorScheme.Validate()
}
