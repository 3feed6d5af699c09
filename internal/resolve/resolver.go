// SPDX-License-Identifier: MPL-2.0

// Package resolve turns declared bindings into an immutable value table.
//
// Resolution is eager and happens exactly once per run, after parse and
// before any dispatch: helper commands are never re-invoked per
// reference, and a failing helper surfaces before a single recipe step
// runs. Bindings may reference earlier bindings; the resolver orders
// evaluation by the reference graph and rejects cycles.
package resolve

import (
	"context"
	"errors"
	"maps"

	"rundown-cli/internal/dag"
	"rundown-cli/internal/shell"
	"rundown-cli/internal/subst"
	"rundown-cli/pkg/rundownfile"
)

// Resolved is the immutable table of resolved binding values, consumed by
// every subsequent dispatch.
type Resolved map[string]string

// Resolver resolves a rundown file's bindings.
type Resolver struct {
	// Runtime executes command-substitution helpers.
	Runtime shell.Runtime
	// WorkDir is the directory helpers run in (normally the rundown
	// file's directory).
	WorkDir string
	// Env is the environment handed to helpers. When nil the host
	// environment is used.
	Env map[string]string
}

// Resolve evaluates all bindings eagerly, in reference order. Literal
// bindings may interpolate earlier bindings; exec bindings run through
// the runtime and capture trimmed stdout. The first failure aborts
// resolution.
func (r *Resolver) Resolve(ctx context.Context, file *rundownfile.Rundownfile) (Resolved, error) {
	byName := make(map[string]*rundownfile.Binding, len(file.Bindings))
	for i := range file.Bindings {
		byName[file.Bindings[i].Name] = &file.Bindings[i]
	}

	// Order evaluation by the reference graph: an edge ref -> binding
	// means ref must be resolved first. Nodes are added in declaration
	// order so the resulting order is deterministic.
	g := dag.New()
	for i := range file.Bindings {
		g.AddNode(file.Bindings[i].Name)
	}
	for i := range file.Bindings {
		binding := &file.Bindings[i]
		for _, ref := range subst.Refs(binding.Expression()) {
			if _, ok := byName[ref]; !ok {
				return nil, &UnknownReferenceError{Binding: binding.Name, Ref: ref}
			}
			g.AddEdge(ref, binding.Name)
		}
	}

	order, err := g.TopologicalSort()
	if err != nil {
		var ce *dag.CycleError
		if errors.As(err, &ce) {
			return nil, &CyclicBindingError{Cycle: ce.Cycle}
		}
		return nil, err
	}

	resolved := make(Resolved, len(file.Bindings))
	for _, name := range order {
		binding := byName[name]

		expanded, err := subst.Expand(binding.Expression(), resolved)
		if err != nil {
			return nil, err
		}

		if binding.IsExec() {
			value, execErr := r.capture(ctx, name, expanded)
			if execErr != nil {
				return nil, execErr
			}
			resolved[name] = value
		} else {
			resolved[name] = expanded
		}
	}

	return resolved, nil
}

// ExpandEnv expands binding references in the file-level exported
// variables against the resolved table. Called once per run; the result
// feeds every dispatch's environment snapshot.
func ExpandEnv(file *rundownfile.Rundownfile, resolved Resolved) (map[string]string, error) {
	vars := file.Env.GetVars()
	expanded := make(map[string]string, len(vars))
	for name, value := range vars {
		v, err := subst.Expand(value, resolved)
		if err != nil {
			return nil, err
		}
		expanded[name] = v
	}
	return expanded, nil
}

// capture runs one helper line and returns its trimmed stdout.
func (r *Resolver) capture(ctx context.Context, binding, line string) (string, error) {
	env := r.Env
	if env == nil {
		hostEnv, err := shell.BuildEnv(shell.EnvOptions{})
		if err != nil {
			return "", err
		}
		env = hostEnv
	} else {
		env = maps.Clone(env)
	}

	result := r.Runtime.ExecCapture(&shell.ExecutionContext{
		Context: ctx,
		Line:    line,
		Env:     env,
		WorkDir: r.WorkDir,
	})
	if result.Error != nil {
		return "", &SubprocessFailedError{
			Binding:  binding,
			ExitCode: result.ExitCode,
			Stderr:   result.Error.Error(),
		}
	}
	if result.ExitCode != 0 {
		return "", &SubprocessFailedError{
			Binding:  binding,
			ExitCode: result.ExitCode,
			Stderr:   result.ErrOutput,
		}
	}

	return shell.TrimOutput(result.Output), nil
}
