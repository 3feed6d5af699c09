// SPDX-License-Identifier: MPL-2.0

package rundownfile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidEnvVarName is the sentinel error wrapped by InvalidEnvVarNameError.
	ErrInvalidEnvVarName = errors.New("invalid environment variable name")

	// envVarNameRegex validates environment variable names
	envVarNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

type (
	// EnvVarName represents an environment variable name.
	// A valid env var name starts with a letter or underscore, followed by
	// letters, digits, or underscores (matching POSIX conventions).
	EnvVarName string

	// InvalidEnvVarNameError is returned when an EnvVarName value is empty,
	// whitespace-only, or doesn't match the POSIX env var naming convention.
	InvalidEnvVarNameError struct {
		Value EnvVarName
	}

	// EnvConfig holds the environment exported to every dispatched recipe.
	EnvConfig struct {
		// Files lists dotenv files to load (optional).
		// Files are loaded in order; later files override earlier ones.
		// Paths are relative to the rundown file location.
		// Files suffixed with '?' are optional and will not cause an error if missing.
		Files []string `json:"files,omitempty"`
		// Vars contains environment variables as key-value pairs (optional).
		// Values may reference bindings as {{name}}. These override values
		// loaded from Files and any inherited variable of the same name.
		Vars map[EnvVarName]string `json:"vars,omitempty"`
	}
)

// Error implements the error interface.
func (e *InvalidEnvVarNameError) Error() string {
	return fmt.Sprintf("invalid environment variable name %q (must match [A-Za-z_][A-Za-z0-9_]*)", e.Value)
}

// Unwrap returns ErrInvalidEnvVarName so callers can use errors.Is for programmatic detection.
func (e *InvalidEnvVarNameError) Unwrap() error { return ErrInvalidEnvVarName }

// Validate returns nil if the EnvVarName is a valid POSIX environment variable
// name, or a validation error if it is not.
func (n EnvVarName) Validate() error {
	s := string(n)
	if strings.TrimSpace(s) == "" || !envVarNameRegex.MatchString(s) {
		return &InvalidEnvVarNameError{Value: n}
	}
	return nil
}

// String returns the string representation of the EnvVarName.
func (n EnvVarName) String() string { return string(n) }

// GetFiles returns the files list, or an empty slice if EnvConfig is nil.
func (e *EnvConfig) GetFiles() []string {
	if e == nil {
		return nil
	}
	return e.Files
}

// GetVars returns the vars map keyed by plain strings, or an empty map if
// EnvConfig is nil.
func (e *EnvConfig) GetVars() map[string]string {
	if e == nil {
		return nil
	}
	vars := make(map[string]string, len(e.Vars))
	for k, v := range e.Vars {
		vars[string(k)] = v
	}
	return vars
}

// Validate checks every declared variable name.
func (e *EnvConfig) Validate() []error {
	if e == nil {
		return nil
	}
	var errs []error
	for name := range e.Vars {
		if err := name.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
