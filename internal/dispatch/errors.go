// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownRecipe is the sentinel error wrapped by UnknownRecipeError.
	ErrUnknownRecipe = errors.New("unknown recipe")

	// ErrTooManyArguments is the sentinel error wrapped by TooManyArgumentsError.
	ErrTooManyArguments = errors.New("too many arguments")

	// ErrMissingRequiredArgument is the sentinel error wrapped by MissingRequiredArgumentError.
	ErrMissingRequiredArgument = errors.New("missing required argument")
)

type (
	// UnknownRecipeError is returned when the dispatched recipe name is
	// not declared in the rundown file. No subprocess is spawned.
	UnknownRecipeError struct {
		Name string
	}

	// TooManyArgumentsError is returned when the caller supplies more
	// positional arguments than the recipe declares parameters.
	TooManyArgumentsError struct {
		Recipe string
		Max    int
		Got    int
	}

	// MissingRequiredArgumentError is returned when a parameter without a
	// default is left unbound. The recipe body never executes.
	MissingRequiredArgumentError struct {
		Recipe string
		Param  string
	}
)

// Error implements the error interface.
func (e *UnknownRecipeError) Error() string {
	return fmt.Sprintf("unknown recipe %q", e.Name)
}

// Unwrap returns ErrUnknownRecipe so callers can use errors.Is for programmatic detection.
func (e *UnknownRecipeError) Unwrap() error { return ErrUnknownRecipe }

// Error implements the error interface.
func (e *TooManyArgumentsError) Error() string {
	return fmt.Sprintf("recipe %q takes at most %d argument(s), got %d", e.Recipe, e.Max, e.Got)
}

// Unwrap returns ErrTooManyArguments so callers can use errors.Is for programmatic detection.
func (e *TooManyArgumentsError) Unwrap() error { return ErrTooManyArguments }

// Error implements the error interface.
func (e *MissingRequiredArgumentError) Error() string {
	return fmt.Sprintf("recipe %q: missing required argument %q", e.Recipe, e.Param)
}

// Unwrap returns ErrMissingRequiredArgument so callers can use errors.Is for programmatic detection.
func (e *MissingRequiredArgumentError) Unwrap() error { return ErrMissingRequiredArgument }
