// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// VirtualRuntime executes command lines using the embedded mvdan/sh
// POSIX shell interpreter. It needs no external shell binary, which makes
// recipe files behave identically across platforms and keeps tests
// hermetic.
type VirtualRuntime struct{}

// NewVirtualRuntime creates a new virtual runtime.
func NewVirtualRuntime() *VirtualRuntime {
	return &VirtualRuntime{}
}

// Name returns the runtime name.
func (r *VirtualRuntime) Name() string {
	return "virtual"
}

// Available returns whether this runtime is available.
func (r *VirtualRuntime) Available() bool {
	// Virtual runtime is always available as it's built-in
	return true
}

// Exec runs a command line through the embedded shell, streaming output.
func (r *VirtualRuntime) Exec(ctx *ExecutionContext) *Result {
	return r.run(ctx, ctx.Stdout, ctx.Stderr, nil)
}

// ExecCapture runs a command line through the embedded shell, capturing output.
func (r *VirtualRuntime) ExecCapture(ctx *ExecutionContext) *Result {
	var stdout, stderr bytes.Buffer
	return r.run(ctx, &stdout, &stderr, &capturedOutput{stdout: &stdout, stderr: &stderr})
}

func (r *VirtualRuntime) run(ctx *ExecutionContext, stdout, stderr io.Writer, captured *capturedOutput) *Result {
	prog, err := syntax.NewParser().Parse(strings.NewReader(ctx.Line), "step")
	if err != nil {
		return NewErrorResult(1, fmt.Errorf("failed to parse command line: %w", err))
	}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(EnvToSlice(ctx.Env)...)),
		interp.StdIO(ctx.Stdin, stdout, stderr),
	}
	if ctx.WorkDir != "" {
		opts = append(opts, interp.Dir(ctx.WorkDir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return NewErrorResult(1, fmt.Errorf("failed to create interpreter: %w", err))
	}

	execCtx := ctx.Context
	if execCtx == nil {
		execCtx = context.Background()
	}

	result := &Result{}
	if captured != nil {
		defer func() {
			result.Output = captured.stdout.String()
			result.ErrOutput = captured.stderr.String()
		}()
	}

	if runErr := runner.Run(execCtx, prog); runErr != nil {
		if status, ok := errors.AsType[interp.ExitStatus](runErr); ok {
			result.ExitCode = ExitCode(status)
			return result
		}
		result.ExitCode = 1
		result.Error = fmt.Errorf("command execution failed: %w", runErr)
	}

	return result
}
