// SPDX-License-Identifier: MPL-2.0

package shell

type (
	// Result holds the outcome of one executed command line.
	Result struct {
		// ExitCode is the process exit status (0 on success).
		ExitCode ExitCode
		// Output is the captured standard output (capture mode only).
		Output string
		// ErrOutput is the captured standard error (capture mode only).
		ErrOutput string
		// Error is set for infrastructure failures (shell missing, spawn
		// failure), never for a command's own non-zero exit.
		Error error
	}
)

// NewSuccessResult creates a Result with exit code 0 and no error.
func NewSuccessResult() *Result {
	return &Result{}
}

// NewExitCodeResult creates a Result with the given exit code and no error.
// Use this for non-zero exits that represent normal process termination
// rather than infrastructure failures.
func NewExitCodeResult(code ExitCode) *Result {
	return &Result{ExitCode: code}
}

// NewErrorResult creates a Result with the given exit code and error.
func NewErrorResult(code ExitCode, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// Failed returns true if the command exited non-zero or an
// infrastructure error occurred.
func (r *Result) Failed() bool {
	return r.ExitCode != 0 || r.Error != nil
}
