// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"fmt"
	"strings"

	"rundown-cli/internal/shell"
)

var (
	// ErrCyclicBinding is the sentinel error wrapped by CyclicBindingError.
	ErrCyclicBinding = errors.New("cyclic binding")

	// ErrUnknownReference is the sentinel error wrapped by UnknownReferenceError.
	ErrUnknownReference = errors.New("unknown binding reference")

	// ErrSubprocessFailed is the sentinel error wrapped by SubprocessFailedError.
	ErrSubprocessFailed = errors.New("binding helper failed")
)

type (
	// CyclicBindingError is returned when binding references form a cycle.
	CyclicBindingError struct {
		// Cycle lists the binding names along the cycle, ending where it started.
		Cycle []string
	}

	// UnknownReferenceError is returned when a binding expression references
	// a name that is not a declared binding.
	UnknownReferenceError struct {
		Binding string
		Ref     string
	}

	// SubprocessFailedError is returned when a command-substitution helper
	// exits non-zero.
	SubprocessFailedError struct {
		Binding  string
		ExitCode shell.ExitCode
		Stderr   string
	}
)

// Error implements the error interface.
func (e *CyclicBindingError) Error() string {
	return fmt.Sprintf("cyclic binding: %s", strings.Join(e.Cycle, " -> "))
}

// Unwrap returns ErrCyclicBinding so callers can use errors.Is for programmatic detection.
func (e *CyclicBindingError) Unwrap() error { return ErrCyclicBinding }

// Error implements the error interface.
func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("binding %q references unknown binding %q", e.Binding, e.Ref)
}

// Unwrap returns ErrUnknownReference so callers can use errors.Is for programmatic detection.
func (e *UnknownReferenceError) Unwrap() error { return ErrUnknownReference }

// Error implements the error interface.
func (e *SubprocessFailedError) Error() string {
	msg := fmt.Sprintf("binding %q: helper exited with code %s", e.Binding, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + strings.TrimSpace(e.Stderr)
	}
	return msg
}

// Unwrap returns ErrSubprocessFailed so callers can use errors.Is for programmatic detection.
func (e *SubprocessFailedError) Unwrap() error { return ErrSubprocessFailed }
