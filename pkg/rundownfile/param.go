// SPDX-License-Identifier: MPL-2.0

package rundownfile

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidParamName is the sentinel error wrapped by InvalidParamNameError.
var ErrInvalidParamName = errors.New("invalid param name")

type (
	// ParamName represents a recipe parameter identifier.
	ParamName string

	// InvalidParamNameError is returned when a ParamName value is empty,
	// whitespace-only, or doesn't match the identifier convention.
	InvalidParamNameError struct {
		Value ParamName
	}

	// Param represents a positional recipe parameter. A param without a
	// default is required: dispatch fails before any step runs when the
	// caller omits it.
	Param struct {
		// Name is the parameter identifier, referenced as {{name}} in steps.
		Name string `json:"name"`
		// Description provides help text for the parameter.
		Description string `json:"description,omitempty"`
		// Default is the value applied when the caller omits the argument.
		// A nil Default marks the parameter required.
		Default *string `json:"default,omitempty"`
	}
)

// Error implements the error interface.
func (e *InvalidParamNameError) Error() string {
	return fmt.Sprintf("invalid param name %q (must match [A-Za-z_][A-Za-z0-9_-]*)", e.Value)
}

// Unwrap returns ErrInvalidParamName so callers can use errors.Is for programmatic detection.
func (e *InvalidParamNameError) Unwrap() error { return ErrInvalidParamName }

// IsValid returns whether the ParamName is a valid identifier,
// and a list of validation errors if it is not.
func (n ParamName) IsValid() (bool, []error) {
	s := string(n)
	if strings.TrimSpace(s) == "" || !nameRegex.MatchString(s) {
		return false, []error{&InvalidParamNameError{Value: n}}
	}
	return true, nil
}

// String returns the string representation of the ParamName.
func (n ParamName) String() string { return string(n) }

// Required returns true if the parameter has no default value.
func (p *Param) Required() bool { return p.Default == nil }

// DefaultValue returns the default value, or "" if the param is required.
func (p *Param) DefaultValue() string {
	if p.Default == nil {
		return ""
	}
	return *p.Default
}
