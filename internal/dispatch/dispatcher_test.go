// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"rundown-cli/internal/resolve"
	"rundown-cli/internal/shell"
	"rundown-cli/pkg/rundownfile"
)

// recordingRuntime records executed lines and plays back scripted exit
// codes, so dispatch behavior can be asserted without a real shell.
type recordingRuntime struct {
	lines []string
	envs  []map[string]string
	codes []shell.ExitCode
}

func (r *recordingRuntime) Name() string    { return "recording" }
func (r *recordingRuntime) Available() bool { return true }

func (r *recordingRuntime) Exec(ctx *shell.ExecutionContext) *shell.Result {
	r.lines = append(r.lines, ctx.Line)
	r.envs = append(r.envs, ctx.Env)
	if len(r.codes) >= len(r.lines) {
		return shell.NewExitCodeResult(r.codes[len(r.lines)-1])
	}
	return shell.NewSuccessResult()
}

func (r *recordingRuntime) ExecCapture(ctx *shell.ExecutionContext) *shell.Result {
	return r.Exec(ctx)
}

func strPtr(s string) *string { return &s }

func publisherRundownfile() *rundownfile.Rundownfile {
	return &rundownfile.Rundownfile{
		Recipes: []rundownfile.Recipe{
			{
				Name: "publish",
				Params: []rundownfile.Param{
					{Name: "input", Default: strPtr("12345678")},
					{Name: "prover", Default: strPtr("local")},
				},
				Steps: []string{
					"./publisher --chain-id={{chain_id}} --input={{input}} --prover={{prover}}",
				},
			},
			{
				Name: "publish-jwt-cuda",
				Params: []rundownfile.Param{
					{Name: "input"},
					{Name: "prover", Default: strPtr("local")},
				},
				Steps: []string{
					"cargo build --features cuda",
					"./publisher --input={{input}} --prover={{prover}} --method=jwt",
				},
			},
		},
		FilePath: "rundown.cue",
	}
}

func newDispatcher(file *rundownfile.Rundownfile, rt shell.Runtime) (*Dispatcher, *bytes.Buffer) {
	var out bytes.Buffer
	return &Dispatcher{
		File:     file,
		Bindings: resolve.Resolved{"chain_id": "31337"},
		Runtime:  rt,
		Stdout:   &out,
		Stderr:   &out,
	}, &out
}

func TestDispatchDefaultsEqualExplicitArgs(t *testing.T) {
	t.Parallel()

	file := publisherRundownfile()

	noArgs := &recordingRuntime{}
	d1, _ := newDispatcher(file, noArgs)
	if _, err := d1.Dispatch(context.Background(), "publish", nil, Options{}); err != nil {
		t.Fatalf("Dispatch(no args) error = %v", err)
	}

	explicit := &recordingRuntime{}
	d2, _ := newDispatcher(file, explicit)
	if _, err := d2.Dispatch(context.Background(), "publish", []string{"12345678", "local"}, Options{}); err != nil {
		t.Fatalf("Dispatch(explicit) error = %v", err)
	}

	if len(noArgs.lines) != 1 || len(explicit.lines) != 1 {
		t.Fatalf("executed lines = %d and %d, want 1 and 1", len(noArgs.lines), len(explicit.lines))
	}
	if noArgs.lines[0] != explicit.lines[0] {
		t.Errorf("no-args line %q != explicit line %q", noArgs.lines[0], explicit.lines[0])
	}
	if want := "./publisher --chain-id=31337 --input=12345678 --prover=local"; noArgs.lines[0] != want {
		t.Errorf("line = %q, want %q", noArgs.lines[0], want)
	}
}

func TestDispatchSubstitutesArgs(t *testing.T) {
	t.Parallel()

	rt := &recordingRuntime{}
	d, _ := newDispatcher(publisherRundownfile(), rt)

	code, err := d.Dispatch(context.Background(), "publish-jwt-cuda", []string{"999", "remote"}, Options{})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if code != 0 {
		t.Errorf("code = %d, want 0", code)
	}

	want := []string{
		"cargo build --features cuda",
		"./publisher --input=999 --prover=remote --method=jwt",
	}
	if len(rt.lines) != len(want) {
		t.Fatalf("executed lines = %v, want %v", rt.lines, want)
	}
	for i := range want {
		if rt.lines[i] != want[i] {
			t.Errorf("line[%d] = %q, want %q", i, rt.lines[i], want[i])
		}
	}
}

func TestDispatchUnknownRecipe(t *testing.T) {
	t.Parallel()

	rt := &recordingRuntime{}
	d, _ := newDispatcher(publisherRundownfile(), rt)

	_, err := d.Dispatch(context.Background(), "deploy", nil, Options{})
	if !errors.Is(err, ErrUnknownRecipe) {
		t.Errorf("Dispatch() error = %v, want errors.Is(ErrUnknownRecipe)", err)
	}
	if len(rt.lines) != 0 {
		t.Errorf("executed %d lines for unknown recipe, want 0", len(rt.lines))
	}
}

func TestDispatchArityErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		recipe  string
		args    []string
		wantErr error
	}{
		{"too many", "publish", []string{"1", "2", "3"}, ErrTooManyArguments},
		{"missing required", "publish-jwt-cuda", nil, ErrMissingRequiredArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rt := &recordingRuntime{}
			d, _ := newDispatcher(publisherRundownfile(), rt)

			_, err := d.Dispatch(context.Background(), tt.recipe, tt.args, Options{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Dispatch() error = %v, want errors.Is(%v)", err, tt.wantErr)
			}
			if len(rt.lines) != 0 {
				t.Errorf("executed %d lines, want 0", len(rt.lines))
			}
		})
	}
}

func TestDispatchUnresolvedPlaceholderAbortsBeforeFirstStep(t *testing.T) {
	t.Parallel()

	file := &rundownfile.Rundownfile{
		Recipes: []rundownfile.Recipe{
			{
				Name: "broken",
				Steps: []string{
					"echo this would succeed",
					"echo but this references {{nope}}",
				},
			},
		},
		FilePath: "rundown.cue",
	}

	rt := &recordingRuntime{}
	d, _ := newDispatcher(file, rt)

	_, err := d.Dispatch(context.Background(), "broken", nil, Options{})
	if err == nil {
		t.Fatal("Dispatch() error = nil, want unresolved placeholder error")
	}
	// All steps are substituted up front: the bad reference in step 2
	// must prevent step 1 from ever running.
	if len(rt.lines) != 0 {
		t.Errorf("executed %d lines, want 0", len(rt.lines))
	}
}

func TestDispatchAbortsOnFirstFailure(t *testing.T) {
	t.Parallel()

	file := &rundownfile.Rundownfile{
		Recipes: []rundownfile.Recipe{
			{Name: "multi", Steps: []string{"step one", "step two", "step three"}},
		},
		FilePath: "rundown.cue",
	}

	rt := &recordingRuntime{codes: []shell.ExitCode{0, 3, 0}}
	d, _ := newDispatcher(file, rt)

	code, err := d.Dispatch(context.Background(), "multi", nil, Options{})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if code != 3 {
		t.Errorf("code = %d, want 3 (failing step's exit code)", code)
	}
	if len(rt.lines) != 2 {
		t.Errorf("executed %d lines, want 2 (third step skipped)", len(rt.lines))
	}
}

func TestDispatchParamsShadowBindings(t *testing.T) {
	t.Parallel()

	file := &rundownfile.Rundownfile{
		Recipes: []rundownfile.Recipe{
			{
				Name:   "shadow",
				Params: []rundownfile.Param{{Name: "chain_id"}},
				Steps:  []string{"echo {{chain_id}}"},
			},
		},
		FilePath: "rundown.cue",
	}

	rt := &recordingRuntime{}
	d, _ := newDispatcher(file, rt)

	if _, err := d.Dispatch(context.Background(), "shadow", []string{"1"}, Options{}); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if got, want := rt.lines[0], "echo 1"; got != want {
		t.Errorf("line = %q, want %q (param must shadow binding)", got, want)
	}
}

func TestDispatchSubstitutesExports(t *testing.T) {
	t.Parallel()

	file := &rundownfile.Rundownfile{
		Recipes: []rundownfile.Recipe{
			{
				Name:  "trace",
				Steps: []string{"RUST_LOG={{RUST_LOG}} ./publisher"},
			},
		},
		FilePath: "rundown.cue",
	}

	rt := &recordingRuntime{}
	d := &Dispatcher{
		File:    file,
		Exports: map[string]string{"RUST_LOG": "info"},
		Runtime: rt,
		Stdout:  &bytes.Buffer{},
		Stderr:  &bytes.Buffer{},
	}

	if _, err := d.Dispatch(context.Background(), "trace", nil, Options{DryRun: true}); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	// Dry run prints the substituted step
	if got, want := d.Stdout.(*bytes.Buffer).String(), "RUST_LOG=info ./publisher\n"; got != want {
		t.Errorf("dry-run output = %q, want %q", got, want)
	}
}

func TestDispatchBindingsShadowExports(t *testing.T) {
	t.Parallel()

	file := &rundownfile.Rundownfile{
		Recipes: []rundownfile.Recipe{
			{
				Name:  "shadow",
				Steps: []string{"echo {{RUST_LOG}}"},
			},
		},
		FilePath: "rundown.cue",
	}

	rt := &recordingRuntime{}
	d := &Dispatcher{
		File:     file,
		Bindings: resolve.Resolved{"RUST_LOG": "debug"},
		Exports:  map[string]string{"RUST_LOG": "info"},
		Runtime:  rt,
		Stdout:   &bytes.Buffer{},
		Stderr:   &bytes.Buffer{},
	}

	if _, err := d.Dispatch(context.Background(), "shadow", nil, Options{}); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if got, want := rt.lines[0], "echo debug"; got != want {
		t.Errorf("line = %q, want %q (binding must shadow export)", got, want)
	}
}

func TestDispatchDryRun(t *testing.T) {
	t.Parallel()

	rt := &recordingRuntime{}
	d, out := newDispatcher(publisherRundownfile(), rt)

	code, err := d.Dispatch(context.Background(), "publish", nil, Options{DryRun: true})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if code != 0 {
		t.Errorf("code = %d, want 0", code)
	}
	if len(rt.lines) != 0 {
		t.Errorf("dry run executed %d lines, want 0", len(rt.lines))
	}
	if got, want := out.String(), "./publisher --chain-id=31337 --input=12345678 --prover=local\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestDispatchEnv(t *testing.T) {
	t.Parallel()

	file := &rundownfile.Rundownfile{
		Recipes:  []rundownfile.Recipe{{Name: "env", Steps: []string{"true"}}},
		FilePath: "rundown.cue",
	}

	rt := &recordingRuntime{}
	d, _ := newDispatcher(file, rt)
	d.Exports = map[string]string{"EXPORTED": "from-file", "OVERRIDE": "lower"}

	_, err := d.Dispatch(context.Background(), "env", nil, Options{
		EnvVars: map[string]string{"OVERRIDE": "winner"},
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	env := rt.envs[0]
	if got, want := env["EXPORTED"], "from-file"; got != want {
		t.Errorf("env[EXPORTED] = %q, want %q", got, want)
	}
	if got, want := env["OVERRIDE"], "winner"; got != want {
		t.Errorf("env[OVERRIDE] = %q, want %q", got, want)
	}
}

func TestBindArgs(t *testing.T) {
	t.Parallel()

	recipe := &rundownfile.Recipe{
		Name: "deploy",
		Params: []rundownfile.Param{
			{Name: "tag"},
			{Name: "target", Default: strPtr("staging")},
			{Name: "region", Default: strPtr("us-east-1")},
		},
		Steps: []string{"true"},
	}

	tests := []struct {
		name    string
		args    []string
		want    map[string]string
		wantErr error
	}{
		{
			name: "all supplied",
			args: []string{"v1", "prod", "eu-west-1"},
			want: map[string]string{"tag": "v1", "target": "prod", "region": "eu-west-1"},
		},
		{
			name: "trailing defaults applied",
			args: []string{"v1"},
			want: map[string]string{"tag": "v1", "target": "staging", "region": "us-east-1"},
		},
		{
			name: "partial defaults",
			args: []string{"v1", "prod"},
			want: map[string]string{"tag": "v1", "target": "prod", "region": "us-east-1"},
		},
		{
			name:    "missing required",
			args:    nil,
			wantErr: ErrMissingRequiredArgument,
		},
		{
			name:    "too many",
			args:    []string{"a", "b", "c", "d"},
			wantErr: ErrTooManyArguments,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := BindArgs(recipe, tt.args)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("BindArgs() error = %v, want errors.Is(%v)", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("BindArgs() error = %v", err)
			}
			for key, want := range tt.want {
				if got[key] != want {
					t.Errorf("bound[%q] = %q, want %q", key, got[key], want)
				}
			}
		})
	}
}
