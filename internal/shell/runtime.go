// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Runtime type constants for the available execution environments.
const (
	// RuntimeNative executes lines through the system's default shell.
	RuntimeNative RuntimeType = "native"
	// RuntimeVirtual executes lines through the embedded mvdan/sh interpreter.
	RuntimeVirtual RuntimeType = "virtual"
)

// ErrInvalidRuntimeType is the sentinel error wrapped by InvalidRuntimeTypeError.
var ErrInvalidRuntimeType = errors.New("invalid runtime type")

type (
	// RuntimeType identifies an execution runtime.
	RuntimeType string

	// InvalidRuntimeTypeError is returned when a RuntimeType value is not
	// one of the defined runtimes.
	InvalidRuntimeTypeError struct {
		Value RuntimeType
	}

	// ExecutionContext contains everything needed to execute one command line.
	ExecutionContext struct {
		// Context is the Go context for cancellation.
		Context context.Context
		// Line is the command line to execute (already substituted).
		Line string
		// Env is the complete child environment. The runtime passes it to
		// the child as-is; the caller's environment is never mutated.
		Env map[string]string
		// WorkDir is the working directory ("" = inherit).
		WorkDir string
		// Stdout is where to write standard output.
		Stdout io.Writer
		// Stderr is where to write standard error.
		Stderr io.Writer
		// Stdin is where to read standard input.
		Stdin io.Reader
	}

	// Runtime executes command lines. Exec streams output to the context
	// writers; ExecCapture buffers it into the Result (used for binding
	// command substitution).
	Runtime interface {
		// Name returns the runtime name.
		Name() string
		// Available returns whether this runtime can execute on this host.
		Available() bool
		// Exec runs a command line, streaming output.
		Exec(ctx *ExecutionContext) *Result
		// ExecCapture runs a command line, capturing output.
		ExecCapture(ctx *ExecutionContext) *Result
	}
)

// Error implements the error interface.
func (e *InvalidRuntimeTypeError) Error() string {
	return fmt.Sprintf("invalid runtime type %q (valid: native, virtual)", e.Value)
}

// Unwrap returns ErrInvalidRuntimeType so callers can use errors.Is for programmatic detection.
func (e *InvalidRuntimeTypeError) Unwrap() error { return ErrInvalidRuntimeType }

// Validate returns nil if the RuntimeType is one of the defined runtimes.
// The zero value ("") is valid and treated as RuntimeNative by New.
func (t RuntimeType) Validate() error {
	switch t {
	case RuntimeNative, RuntimeVirtual, "":
		return nil
	default:
		return &InvalidRuntimeTypeError{Value: t}
	}
}

// String returns the string representation of the RuntimeType.
func (t RuntimeType) String() string { return string(t) }

// New returns the runtime for the given type. The zero value selects the
// native runtime. shellOverride applies to the native runtime only.
func New(t RuntimeType, shellOverride string) (Runtime, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	switch t {
	case RuntimeVirtual:
		return NewVirtualRuntime(), nil
	default:
		return &NativeRuntime{Shell: shellOverride}, nil
	}
}

// EnvToSlice converts an environment map to a slice of KEY=VALUE strings.
func EnvToSlice(env map[string]string) []string {
	result := make([]string, 0, len(env))
	for k, v := range env {
		result = append(result, k+"="+v)
	}
	return result
}

// TrimOutput strips trailing newlines from captured helper output, the
// way command substitution does in a shell.
func TrimOutput(s string) string {
	return strings.TrimRight(s, "\r\n")
}
