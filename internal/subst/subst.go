// SPDX-License-Identifier: MPL-2.0

// Package subst implements {{name}} placeholder expansion over an
// invocation scope. An unresolved placeholder is always an error, never a
// silently empty substitution.
package subst

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrUnresolvedPlaceholder is the sentinel error wrapped by UnresolvedPlaceholderError.
var ErrUnresolvedPlaceholder = errors.New("unresolved placeholder")

// placeholderRegex matches {{name}} references, tolerating inner spaces
// ({{ name }}). Names follow the shared identifier convention.
var placeholderRegex = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_-]*)\s*\}\}`)

// UnresolvedPlaceholderError is returned when a {{name}} reference has no
// value in the current scope.
type UnresolvedPlaceholderError struct {
	// Name is the placeholder that failed to resolve.
	Name string
	// Input is the line containing the reference.
	Input string
}

// Error implements the error interface.
func (e *UnresolvedPlaceholderError) Error() string {
	return fmt.Sprintf("unresolved placeholder {{%s}} in %q", e.Name, e.Input)
}

// Unwrap returns ErrUnresolvedPlaceholder so callers can use errors.Is for programmatic detection.
func (e *UnresolvedPlaceholderError) Unwrap() error { return ErrUnresolvedPlaceholder }

// Expand replaces every {{name}} placeholder in s using the scope map.
// The first reference missing from the scope aborts expansion with an
// UnresolvedPlaceholderError.
func Expand(s string, scope map[string]string) (string, error) {
	var missing *UnresolvedPlaceholderError

	expanded := placeholderRegex.ReplaceAllStringFunc(s, func(match string) string {
		if missing != nil {
			return match
		}
		name := placeholderRegex.FindStringSubmatch(match)[1]
		value, ok := scope[name]
		if !ok {
			missing = &UnresolvedPlaceholderError{Name: name, Input: s}
			return match
		}
		return value
	})

	if missing != nil {
		return "", missing
	}
	return expanded, nil
}

// Refs returns the distinct placeholder names referenced in s, in order
// of first appearance.
func Refs(s string) []string {
	var refs []string
	seen := make(map[string]bool)
	for _, match := range placeholderRegex.FindAllStringSubmatch(s, -1) {
		name := match[1]
		if !seen[name] {
			seen[name] = true
			refs = append(refs, name)
		}
	}
	return refs
}
