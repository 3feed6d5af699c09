// SPDX-License-Identifier: MPL-2.0

// Package dispatch runs named recipes: it binds positional arguments to
// parameters, builds the invocation context, substitutes placeholders,
// and executes the recipe's steps sequentially through a shell runtime.
//
// A dispatch is self-contained: it builds its own environment snapshot
// and scope, and discards both when the recipe finishes. The process
// exit code of rundown equals the exit code of the last executed step.
package dispatch

import (
	"context"
	"fmt"
	"io"
	"maps"

	"github.com/charmbracelet/log"

	"rundown-cli/internal/resolve"
	"rundown-cli/internal/shell"
	"rundown-cli/internal/subst"
	"rundown-cli/pkg/rundownfile"
)

type (
	// Options carries per-invocation overrides from the CLI layer.
	Options struct {
		// DryRun prints substituted steps without executing them.
		DryRun bool
		// WorkDir overrides the working directory (default: the rundown
		// file's directory).
		WorkDir string
		// EnvFiles are dotenv paths from --env-file flags.
		EnvFiles []string
		// EnvVars are KEY=VALUE overrides from --env-var flags (highest
		// environment priority).
		EnvVars map[string]string
	}

	// Dispatcher executes recipes from one parsed rundown file against
	// one resolved binding table. It is created per process run; each
	// Dispatch call builds an independent invocation context.
	Dispatcher struct {
		// File is the parsed rundown file.
		File *rundownfile.Rundownfile
		// Bindings is the resolved binding table.
		Bindings resolve.Resolved
		// Exports are the expanded file-level environment exports.
		Exports map[string]string
		// Runtime executes the recipe steps.
		Runtime shell.Runtime
		// Logger traces resolution and execution in verbose mode (may be nil).
		Logger *log.Logger

		// Stdout is where recipe output is written.
		Stdout io.Writer
		// Stderr is where recipe error output is written.
		Stderr io.Writer
		// Stdin is the recipe's standard input.
		Stdin io.Reader
	}
)

// Dispatch runs the named recipe with the given positional arguments.
//
// The returned exit code is the recipe's own result: the code of the
// first failing step, or 0 when every step succeeded. A non-nil error
// means the dispatch itself failed (unknown recipe, arity mismatch,
// unresolved placeholder, environment build failure) and no further
// steps were attempted.
func (d *Dispatcher) Dispatch(ctx context.Context, recipeName string, args []string, opts Options) (shell.ExitCode, error) {
	recipe := d.File.FindRecipe(recipeName)
	if recipe == nil {
		return 1, &UnknownRecipeError{Name: recipeName}
	}

	params, err := BindArgs(recipe, args)
	if err != nil {
		return 1, err
	}

	// Invocation scope: env exports are visible too, shadowed by
	// bindings, which params shadow in turn on name collision.
	scope := make(map[string]string, len(d.Exports)+len(d.Bindings)+len(params))
	maps.Copy(scope, d.Exports)
	maps.Copy(scope, d.Bindings)
	maps.Copy(scope, params)

	// Substitute all steps up front so a bad placeholder in step 3 is
	// reported before step 1 has run.
	steps := make([]string, len(recipe.Steps))
	for i, step := range recipe.Steps {
		expanded, substErr := subst.Expand(step, scope)
		if substErr != nil {
			return 1, substErr
		}
		steps[i] = expanded
	}

	if opts.DryRun {
		for _, step := range steps {
			fmt.Fprintln(d.Stdout, step)
		}
		return 0, nil
	}

	workDir := opts.WorkDir
	if workDir == "" {
		workDir = d.File.BaseDir()
	}

	env, err := shell.BuildEnv(shell.EnvOptions{
		Files:           d.File.Env.GetFiles(),
		BasePath:        d.File.BaseDir(),
		Exports:         d.Exports,
		RuntimeEnvFiles: opts.EnvFiles,
		RuntimeEnvVars:  opts.EnvVars,
	})
	if err != nil {
		return 1, fmt.Errorf("failed to build environment: %w", err)
	}

	for i, step := range steps {
		if d.Logger != nil {
			d.Logger.Debug("running step", "recipe", recipeName, "step", i+1, "line", step)
		}

		result := d.Runtime.Exec(&shell.ExecutionContext{
			Context: ctx,
			Line:    step,
			Env:     env,
			WorkDir: workDir,
			Stdout:  d.Stdout,
			Stderr:  d.Stderr,
			Stdin:   d.Stdin,
		})
		if result.Error != nil {
			return result.ExitCode, fmt.Errorf("step %d of recipe %q: %w", i+1, recipeName, result.Error)
		}
		if result.ExitCode != 0 {
			// Abort remaining steps; the recipe's exit status is the
			// failing step's code.
			if d.Logger != nil {
				d.Logger.Debug("step failed, aborting recipe", "recipe", recipeName, "step", i+1, "code", result.ExitCode)
			}
			return result.ExitCode, nil
		}
	}

	return 0, nil
}

// BindArgs binds positional arguments to the recipe's parameters in
// order, applying defaults for omitted trailing arguments. It fails
// before any step executes when the arity does not fit.
func BindArgs(recipe *rundownfile.Recipe, args []string) (map[string]string, error) {
	if len(args) > len(recipe.Params) {
		return nil, &TooManyArgumentsError{
			Recipe: recipe.Name,
			Max:    len(recipe.Params),
			Got:    len(args),
		}
	}

	bound := make(map[string]string, len(recipe.Params))
	for i := range recipe.Params {
		p := &recipe.Params[i]
		switch {
		case i < len(args):
			bound[p.Name] = args[i]
		case !p.Required():
			bound[p.Name] = p.DefaultValue()
		default:
			return nil, &MissingRequiredArgumentError{Recipe: recipe.Name, Param: p.Name}
		}
	}

	return bound, nil
}
