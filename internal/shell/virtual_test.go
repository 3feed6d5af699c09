// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"bytes"
	"strings"
	"testing"
)

func TestVirtualRuntimeExec(t *testing.T) {
	t.Parallel()

	rt := NewVirtualRuntime()

	if !rt.Available() {
		t.Fatal("virtual runtime should always be available")
	}
	if got, want := rt.Name(), "virtual"; got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}

	var stdout, stderr bytes.Buffer
	result := rt.Exec(&ExecutionContext{
		Line:   "echo hello",
		Env:    map[string]string{"PATH": "/usr/bin:/bin"},
		Stdout: &stdout,
		Stderr: &stderr,
	})

	if result.Error != nil {
		t.Fatalf("Exec() error = %v", result.Error)
	}
	if result.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", result.ExitCode)
	}
	if got, want := stdout.String(), "hello\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestVirtualRuntimeExitCode(t *testing.T) {
	t.Parallel()

	rt := NewVirtualRuntime()

	tests := []struct {
		name string
		line string
		want ExitCode
	}{
		{"success", "true", 0},
		{"failure", "false", 1},
		{"explicit code", "exit 7", 7},
		{"exit code passthrough", "exit 42", 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := rt.Exec(&ExecutionContext{
				Line: tt.line,
				Env:  map[string]string{},
			})
			if result.Error != nil {
				t.Fatalf("Exec() error = %v", result.Error)
			}
			if result.ExitCode != tt.want {
				t.Errorf("ExitCode = %d, want %d", result.ExitCode, tt.want)
			}
		})
	}
}

func TestVirtualRuntimeExecCapture(t *testing.T) {
	t.Parallel()

	rt := NewVirtualRuntime()

	result := rt.ExecCapture(&ExecutionContext{
		Line: "echo captured; echo oops >&2",
		Env:  map[string]string{},
	})
	if result.Error != nil {
		t.Fatalf("ExecCapture() error = %v", result.Error)
	}
	if got, want := result.Output, "captured\n"; got != want {
		t.Errorf("Output = %q, want %q", got, want)
	}
	if got, want := result.ErrOutput, "oops\n"; got != want {
		t.Errorf("ErrOutput = %q, want %q", got, want)
	}
}

func TestVirtualRuntimeCaptureOnFailure(t *testing.T) {
	t.Parallel()

	rt := NewVirtualRuntime()

	// Output written before the failure must still be captured
	result := rt.ExecCapture(&ExecutionContext{
		Line: "echo partial; exit 3",
		Env:  map[string]string{},
	})
	if result.Error != nil {
		t.Fatalf("ExecCapture() error = %v", result.Error)
	}
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", result.ExitCode)
	}
	if got, want := result.Output, "partial\n"; got != want {
		t.Errorf("Output = %q, want %q", got, want)
	}
}

func TestVirtualRuntimeEnv(t *testing.T) {
	t.Parallel()

	rt := NewVirtualRuntime()

	result := rt.ExecCapture(&ExecutionContext{
		Line: "echo $GREETING",
		Env:  map[string]string{"GREETING": "hi there"},
	})
	if result.Error != nil {
		t.Fatalf("ExecCapture() error = %v", result.Error)
	}
	if got, want := strings.TrimSpace(result.Output), "hi there"; got != want {
		t.Errorf("Output = %q, want %q", got, want)
	}
}

func TestVirtualRuntimeWorkDir(t *testing.T) {
	t.Parallel()

	rt := NewVirtualRuntime()
	dir := t.TempDir()

	result := rt.ExecCapture(&ExecutionContext{
		Line:    "pwd",
		Env:     map[string]string{},
		WorkDir: dir,
	})
	if result.Error != nil {
		t.Fatalf("ExecCapture() error = %v", result.Error)
	}
	if got := strings.TrimSpace(result.Output); got != dir {
		// macOS tempdirs may resolve through /private symlinks
		if !strings.HasSuffix(got, dir) {
			t.Errorf("pwd = %q, want %q", got, dir)
		}
	}
}

func TestVirtualRuntimeParseError(t *testing.T) {
	t.Parallel()

	rt := NewVirtualRuntime()

	result := rt.Exec(&ExecutionContext{
		Line: "if then fi done",
		Env:  map[string]string{},
	})
	if result.Error == nil {
		t.Error("Exec() with invalid syntax should set Error")
	}
	if result.ExitCode == 0 {
		t.Error("Exec() with invalid syntax should exit non-zero")
	}
}
