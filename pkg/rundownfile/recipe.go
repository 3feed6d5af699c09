// SPDX-License-Identifier: MPL-2.0

package rundownfile

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidRecipeName is the sentinel error wrapped by InvalidRecipeNameError.
	ErrInvalidRecipeName = errors.New("invalid recipe name")

	// ErrInvalidParamOrder is the sentinel error wrapped by ParamOrderError.
	ErrInvalidParamOrder = errors.New("invalid parameter order")

	// ErrEmptyRecipe is the sentinel error wrapped by EmptyRecipeError.
	ErrEmptyRecipe = errors.New("recipe has no steps")
)

type (
	// RecipeName represents a recipe identifier.
	RecipeName string

	// InvalidRecipeNameError is returned when a RecipeName value is empty,
	// whitespace-only, or doesn't match the identifier convention.
	InvalidRecipeNameError struct {
		Value RecipeName
	}

	// ParamOrderError is returned when a required parameter follows a
	// defaulted one. Positional binding could never supply the required
	// value without also supplying the defaulted one, so this is rejected
	// at load time.
	ParamOrderError struct {
		Recipe RecipeName
		Param  ParamName
	}

	// EmptyRecipeError is returned when a recipe declares no steps.
	EmptyRecipeError struct {
		Recipe RecipeName
	}

	// Recipe represents a named, parameterized command sequence.
	// Recipes are immutable once loaded.
	Recipe struct {
		// Name is the recipe identifier used for dispatch.
		Name string `json:"name"`
		// Description provides help text for the recipe.
		Description string `json:"description,omitempty"`
		// Params are the ordered positional parameters.
		Params []Param `json:"params,omitempty"`
		// Steps are the ordered command lines. Each step is substituted
		// against the invocation context and executed through the shell;
		// the first non-zero exit aborts the remaining steps.
		Steps []string `json:"steps"`
	}
)

// Error implements the error interface.
func (e *InvalidRecipeNameError) Error() string {
	return fmt.Sprintf("invalid recipe name %q (must match [A-Za-z_][A-Za-z0-9_-]*)", e.Value)
}

// Unwrap returns ErrInvalidRecipeName so callers can use errors.Is for programmatic detection.
func (e *InvalidRecipeNameError) Unwrap() error { return ErrInvalidRecipeName }

// Error implements the error interface.
func (e *ParamOrderError) Error() string {
	return fmt.Sprintf("recipe %q: required param %q may not follow a param with a default", e.Recipe, e.Param)
}

// Unwrap returns ErrInvalidParamOrder so callers can use errors.Is for programmatic detection.
func (e *ParamOrderError) Unwrap() error { return ErrInvalidParamOrder }

// Error implements the error interface.
func (e *EmptyRecipeError) Error() string {
	return fmt.Sprintf("recipe %q declares no steps", e.Recipe)
}

// Unwrap returns ErrEmptyRecipe so callers can use errors.Is for programmatic detection.
func (e *EmptyRecipeError) Unwrap() error { return ErrEmptyRecipe }

// IsValid returns whether the RecipeName is a valid identifier,
// and a list of validation errors if it is not.
func (n RecipeName) IsValid() (bool, []error) {
	s := string(n)
	if strings.TrimSpace(s) == "" || !nameRegex.MatchString(s) {
		return false, []error{&InvalidRecipeNameError{Value: n}}
	}
	return true, nil
}

// String returns the string representation of the RecipeName.
func (n RecipeName) String() string { return string(n) }

// MinArgs returns the number of required parameters.
func (r *Recipe) MinArgs() int {
	n := 0
	for i := range r.Params {
		if r.Params[i].Required() {
			n++
		}
	}
	return n
}

// MaxArgs returns the total number of parameters.
func (r *Recipe) MaxArgs() int { return len(r.Params) }

// Usage renders a one-line usage string, e.g. "publish [value] [prover]".
// Required parameters are rendered as <name>, defaulted ones as [name].
func (r *Recipe) Usage() string {
	var sb strings.Builder
	sb.WriteString(r.Name)
	for i := range r.Params {
		p := &r.Params[i]
		if p.Required() {
			sb.WriteString(" <" + p.Name + ">")
		} else {
			sb.WriteString(" [" + p.Name + "]")
		}
	}
	return sb.String()
}

// Validate checks structural constraints on the recipe: valid names,
// unique param names, no steps missing, and parameter ordering (all
// defaulted params must come after every required one).
func (r *Recipe) Validate() []error {
	var errs []error

	if ok, nameErrs := RecipeName(r.Name).IsValid(); !ok {
		errs = append(errs, nameErrs...)
	}

	if len(r.Steps) == 0 {
		errs = append(errs, &EmptyRecipeError{Recipe: RecipeName(r.Name)})
	}

	seen := make(map[string]bool, len(r.Params))
	sawDefault := false
	for i := range r.Params {
		p := &r.Params[i]

		if ok, nameErrs := ParamName(p.Name).IsValid(); !ok {
			errs = append(errs, nameErrs...)
		}

		if seen[p.Name] {
			errs = append(errs, fmt.Errorf("recipe %q: duplicate param %q", r.Name, p.Name))
		}
		seen[p.Name] = true

		if p.Required() && sawDefault {
			errs = append(errs, &ParamOrderError{Recipe: RecipeName(r.Name), Param: ParamName(p.Name)})
		}
		if !p.Required() {
			sawDefault = true
		}
	}

	return errs
}
