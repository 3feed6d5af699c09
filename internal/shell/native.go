// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrShellNotFound is returned when no usable shell exists on the host.
var ErrShellNotFound = errors.New("no suitable shell found")

// NativeRuntime executes command lines using the system's default shell.
type NativeRuntime struct {
	// Shell overrides the default shell
	Shell string
	// ShellArgs are arguments passed to the shell before the command line
	ShellArgs []string
}

// NewNativeRuntime creates a new native runtime.
func NewNativeRuntime() *NativeRuntime {
	return &NativeRuntime{}
}

// Name returns the runtime name.
func (r *NativeRuntime) Name() string {
	return "native"
}

// Available returns whether a usable shell exists on this host.
func (r *NativeRuntime) Available() bool {
	_, err := r.getShell()
	return err == nil
}

// Exec runs a command line through the system shell, streaming output.
func (r *NativeRuntime) Exec(ctx *ExecutionContext) *Result {
	cmd, err := r.buildCmd(ctx)
	if err != nil {
		return NewErrorResult(1, err)
	}

	cmd.Stdout = ctx.Stdout
	cmd.Stderr = ctx.Stderr
	cmd.Stdin = ctx.Stdin

	return extractExitCode(cmd.Run(), nil)
}

// ExecCapture runs a command line through the system shell, capturing output.
func (r *NativeRuntime) ExecCapture(ctx *ExecutionContext) *Result {
	cmd, err := r.buildCmd(ctx)
	if err != nil {
		return NewErrorResult(1, err)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	return extractExitCode(cmd.Run(), &capturedOutput{stdout: &stdout, stderr: &stderr})
}

// buildCmd assembles the exec.Cmd for one command line.
func (r *NativeRuntime) buildCmd(ctx *ExecutionContext) (*exec.Cmd, error) {
	shellPath, err := r.getShell()
	if err != nil {
		return nil, err
	}

	args := append(r.getShellArgs(shellPath), ctx.Line)

	execCtx := ctx.Context
	if execCtx == nil {
		execCtx = context.Background()
	}

	cmd := exec.CommandContext(execCtx, shellPath, args...)
	if ctx.WorkDir != "" {
		cmd.Dir = ctx.WorkDir
	}
	cmd.Env = EnvToSlice(ctx.Env)

	return cmd, nil
}

// getShell determines which shell to use.
func (r *NativeRuntime) getShell() (string, error) {
	if r.Shell != "" {
		return r.Shell, nil
	}

	// Platform-specific defaults
	switch runtime.GOOS {
	case "windows":
		if pwsh, err := exec.LookPath("pwsh"); err == nil {
			return pwsh, nil
		}
		if ps, err := exec.LookPath("powershell"); err == nil {
			return ps, nil
		}
		return exec.LookPath("cmd")
	default:
		if shell := os.Getenv("SHELL"); shell != "" {
			return shell, nil
		}
		if bash, err := exec.LookPath("bash"); err == nil {
			return bash, nil
		}
		if sh, err := exec.LookPath("sh"); err == nil {
			return sh, nil
		}
		return "", ErrShellNotFound
	}
}

// getShellArgs returns the arguments to pass to the shell.
func (r *NativeRuntime) getShellArgs(shellPath string) []string {
	if len(r.ShellArgs) > 0 {
		return r.ShellArgs
	}

	base := filepath.Base(shellPath)
	base = strings.TrimSuffix(base, ".exe")

	switch base {
	case "cmd":
		return []string{"/C"}
	case "powershell", "pwsh":
		return []string{"-NoProfile", "-Command"}
	default:
		// Assume POSIX shell
		return []string{"-c"}
	}
}

// capturedOutput holds the capture buffers when ExecCapture is used.
type capturedOutput struct {
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// extractExitCode determines the exit code from a command execution error.
// Returns a Result with exit code, output strings (if captured), and any
// infrastructure error.
func extractExitCode(err error, captured *capturedOutput) *Result {
	result := &Result{}

	if captured != nil {
		result.Output = captured.stdout.String()
		result.ErrOutput = captured.stderr.String()
	}

	if err == nil {
		return result
	}

	if exitErr, ok := errors.AsType[*exec.ExitError](err); ok {
		// Command executed but returned non-zero exit code
		code := ExitCode(exitErr.ExitCode())
		if validateErr := code.Validate(); validateErr != nil {
			result.ExitCode = 1
			result.Error = validateErr
			return result
		}
		result.ExitCode = code
		return result
	}

	result.ExitCode = 1
	result.Error = fmt.Errorf("failed to execute command: %w", err)
	return result
}
