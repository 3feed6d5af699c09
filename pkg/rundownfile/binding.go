// SPDX-License-Identifier: MPL-2.0

package rundownfile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidBindingName is the sentinel error wrapped by InvalidBindingNameError.
	ErrInvalidBindingName = errors.New("invalid binding name")

	// ErrInvalidBindingValue is the sentinel error wrapped by InvalidBindingValueError.
	ErrInvalidBindingValue = errors.New("invalid binding value")

	// nameRegex validates binding, recipe, and param identifiers.
	nameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)
)

type (
	// BindingName represents a global binding identifier.
	// A valid binding name starts with a letter or underscore, followed by
	// letters, digits, underscores, or hyphens.
	BindingName string

	// InvalidBindingNameError is returned when a BindingName value is empty,
	// whitespace-only, or doesn't match the identifier convention.
	InvalidBindingNameError struct {
		Value BindingName
	}

	// InvalidBindingValueError is returned when a Binding declares both a
	// literal value and a command substitution, or neither.
	InvalidBindingValueError struct {
		Name BindingName
	}

	// Binding represents a name-value pair in the global namespace.
	// The value is either a literal string or the captured stdout of a
	// helper command (command substitution, resolved once per run).
	Binding struct {
		// Name is the binding identifier, referenced as {{name}}.
		Name string `json:"name"`
		// Value is the literal value (mutually exclusive with Exec).
		Value string `json:"value,omitempty"`
		// Exec is a command line whose trimmed stdout becomes the value
		// (mutually exclusive with Value).
		Exec string `json:"exec,omitempty"`
	}
)

// Error implements the error interface.
func (e *InvalidBindingNameError) Error() string {
	return fmt.Sprintf("invalid binding name %q (must match [A-Za-z_][A-Za-z0-9_-]*)", e.Value)
}

// Unwrap returns ErrInvalidBindingName so callers can use errors.Is for programmatic detection.
func (e *InvalidBindingNameError) Unwrap() error { return ErrInvalidBindingName }

// Error implements the error interface.
func (e *InvalidBindingValueError) Error() string {
	return fmt.Sprintf("binding %q must set exactly one of value or exec", e.Name)
}

// Unwrap returns ErrInvalidBindingValue so callers can use errors.Is for programmatic detection.
func (e *InvalidBindingValueError) Unwrap() error { return ErrInvalidBindingValue }

// IsValid returns whether the BindingName is a valid identifier,
// and a list of validation errors if it is not.
func (n BindingName) IsValid() (bool, []error) {
	s := string(n)
	if strings.TrimSpace(s) == "" || !nameRegex.MatchString(s) {
		return false, []error{&InvalidBindingNameError{Value: n}}
	}
	return true, nil
}

// String returns the string representation of the BindingName.
func (n BindingName) String() string { return string(n) }

// IsExec returns true if the binding's value comes from command substitution.
func (b *Binding) IsExec() bool { return b.Exec != "" }

// Expression returns the declared expression: the literal value or the
// substitution command line, whichever is set.
func (b *Binding) Expression() string {
	if b.IsExec() {
		return b.Exec
	}
	return b.Value
}

// Validate checks structural constraints on the binding.
func (b *Binding) Validate() []error {
	var errs []error
	if ok, nameErrs := BindingName(b.Name).IsValid(); !ok {
		errs = append(errs, nameErrs...)
	}
	if (b.Value != "") == (b.Exec != "") {
		errs = append(errs, &InvalidBindingValueError{Name: BindingName(b.Name)})
	}
	return errs
}
