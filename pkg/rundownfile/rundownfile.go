// SPDX-License-Identifier: MPL-2.0

package rundownfile

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrDuplicateRecipe is the sentinel error wrapped by DuplicateRecipeError.
	ErrDuplicateRecipe = errors.New("duplicate recipe")

	// ErrDuplicateBinding is the sentinel error wrapped by DuplicateBindingError.
	ErrDuplicateBinding = errors.New("duplicate binding")
)

type (
	// DuplicateRecipeError is returned when two recipes share a name.
	DuplicateRecipeError struct {
		Name RecipeName
	}

	// DuplicateBindingError is returned when two bindings share a name.
	DuplicateBindingError struct {
		Name BindingName
	}

	// ValidationErrors aggregates all structural errors found in one
	// validation pass, so users see every problem at once instead of
	// fixing them one by one.
	ValidationErrors []error

	// Rundownfile is the parsed, immutable representation of a rundown.cue
	// file: global bindings, the exported environment, and named recipes.
	Rundownfile struct {
		// Bindings are the global name-value declarations.
		Bindings []Binding `json:"bindings,omitempty"`
		// Env is the environment exported to every recipe.
		Env *EnvConfig `json:"env,omitempty"`
		// Recipes are the dispatchable command sequences.
		Recipes []Recipe `json:"recipes"`

		// FilePath is the path this file was loaded from (set by Parse).
		FilePath string `json:"-"`
	}
)

// Error implements the error interface.
func (e *DuplicateRecipeError) Error() string {
	return fmt.Sprintf("duplicate recipe %q", e.Name)
}

// Unwrap returns ErrDuplicateRecipe so callers can use errors.Is for programmatic detection.
func (e *DuplicateRecipeError) Unwrap() error { return ErrDuplicateRecipe }

// Error implements the error interface.
func (e *DuplicateBindingError) Error() string {
	return fmt.Sprintf("duplicate binding %q", e.Name)
}

// Unwrap returns ErrDuplicateBinding so callers can use errors.Is for programmatic detection.
func (e *DuplicateBindingError) Unwrap() error { return ErrDuplicateBinding }

// Error implements the error interface by joining all collected errors.
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(v))
	for i, err := range v {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the individual errors to errors.Is/As chains.
func (v ValidationErrors) Unwrap() []error { return v }

// FindRecipe returns the recipe with the given name, or nil if absent.
func (f *Rundownfile) FindRecipe(name string) *Recipe {
	for i := range f.Recipes {
		if f.Recipes[i].Name == name {
			return &f.Recipes[i]
		}
	}
	return nil
}

// FindBinding returns the binding with the given name, or nil if absent.
func (f *Rundownfile) FindBinding(name string) *Binding {
	for i := range f.Bindings {
		if f.Bindings[i].Name == name {
			return &f.Bindings[i]
		}
	}
	return nil
}

// RecipeNames returns all recipe names in sorted order.
func (f *Rundownfile) RecipeNames() []string {
	names := make([]string, len(f.Recipes))
	for i := range f.Recipes {
		names[i] = f.Recipes[i].Name
	}
	sort.Strings(names)
	return names
}

// BaseDir returns the directory containing the rundown file. Relative
// paths (dotenv files, helper commands) are resolved against it.
func (f *Rundownfile) BaseDir() string {
	if f.FilePath == "" {
		return "."
	}
	return filepath.Dir(f.FilePath)
}

// Validate runs all structural checks and collects every error found:
// per-binding and per-recipe constraints plus file-level uniqueness.
func (f *Rundownfile) Validate() ValidationErrors {
	var errs ValidationErrors

	seenBindings := make(map[string]bool, len(f.Bindings))
	for i := range f.Bindings {
		b := &f.Bindings[i]
		errs = append(errs, b.Validate()...)
		if seenBindings[b.Name] {
			errs = append(errs, &DuplicateBindingError{Name: BindingName(b.Name)})
		}
		seenBindings[b.Name] = true
	}

	errs = append(errs, f.Env.Validate()...)

	seenRecipes := make(map[string]bool, len(f.Recipes))
	for i := range f.Recipes {
		r := &f.Recipes[i]
		errs = append(errs, r.Validate()...)
		if seenRecipes[r.Name] {
			errs = append(errs, &DuplicateRecipeError{Name: RecipeName(r.Name)})
		}
		seenRecipes[r.Name] = true
	}

	return errs
}
