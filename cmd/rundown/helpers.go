// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"rundown-cli/internal/config"
	"rundown-cli/internal/issue"
	"rundown-cli/internal/resolve"
	"rundown-cli/internal/shell"
	"rundown-cli/pkg/rundownfile"
)

// loadRundownfile parses and validates the recipe file at path, falling
// back to rundown.cue in the current directory when path is empty.
func loadRundownfile(path string) (*rundownfile.Rundownfile, error) {
	if path == "" {
		path = rundownfile.DefaultFileName
	}

	if _, err := os.Stat(path); err != nil {
		renderIssue(issue.RundownfileNotFoundId)
		return nil, issue.WrapWithContext(err, "load rundown file", path)
	}

	file, err := rundownfile.Parse(path)
	if err != nil {
		renderIssue(issue.RundownfileParseErrorId)
		return nil, issue.NewErrorContext().
			WithOperation("parse rundown file").
			WithResource(path).
			WithSuggestion("Run 'rundown validate' for details").
			Wrap(err).
			BuildError()
	}

	return file, nil
}

// newRuntime builds the shell runtime from the --runtime flag value,
// falling back to the configured default.
func newRuntime(override string) (shell.Runtime, error) {
	mode := override
	shellOverride := ""

	if cfg, err := config.Get(); err == nil {
		if mode == "" {
			mode = string(cfg.DefaultRuntime)
		}
		shellOverride = cfg.Shell
	}
	if mode == "" {
		mode = string(config.RuntimeNative)
	}

	rt, err := shell.New(shell.RuntimeType(mode), shellOverride)
	if err != nil {
		return nil, err
	}
	if !rt.Available() {
		renderIssue(issue.ShellNotFoundId)
		return nil, shell.ErrShellNotFound
	}
	return rt, nil
}

// resolveBindings resolves the file's bindings and expands its env
// exports, rendering the matching issue card on failure.
func resolveBindings(ctx context.Context, file *rundownfile.Rundownfile, rt shell.Runtime) (resolve.Resolved, map[string]string, error) {
	resolver := &resolve.Resolver{
		Runtime: rt,
		WorkDir: file.BaseDir(),
	}

	resolved, err := resolver.Resolve(ctx, file)
	if err != nil {
		switch {
		case errors.Is(err, resolve.ErrCyclicBinding):
			renderIssue(issue.BindingCycleId)
		case errors.Is(err, resolve.ErrSubprocessFailed):
			renderIssue(issue.BindingResolutionFailedId)
		}
		return nil, nil, issue.WrapWithContext(err, "resolve bindings", file.FilePath)
	}

	exports, err := resolve.ExpandEnv(file, resolved)
	if err != nil {
		return nil, nil, issue.WrapWithContext(err, "expand env exports", file.FilePath)
	}

	return resolved, exports, nil
}

// renderIssue prints the help card for a known failure mode to stderr.
// Rendering failures are swallowed; the underlying error is still
// returned through the normal path.
func renderIssue(id issue.Id) {
	scheme := config.ColorSchemeAuto
	if cfg, err := config.Get(); err == nil {
		scheme = cfg.UI.ColorScheme
	}

	rendered, err := issue.Get(id).Render(string(scheme))
	if err != nil {
		return
	}
	fmt.Fprint(os.Stderr, rendered)
}

// newRunLogger returns the logger used to trace recipe execution.
// Debug level is only enabled in verbose mode.
func newRunLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "rundown",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// recipeNameCompletion completes the first positional argument with the
// recipe names from the rundown file.
func recipeNameCompletion(filePath string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		path := filePath
		if path == "" {
			path = rundownfile.DefaultFileName
		}
		file, err := rundownfile.Parse(path)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		var completions []string
		for _, name := range file.RecipeNames() {
			if strings.HasPrefix(name, toComplete) {
				desc := ""
				if r := file.FindRecipe(name); r != nil {
					desc = r.Description
				}
				if desc != "" {
					completions = append(completions, name+"\t"+desc)
				} else {
					completions = append(completions, name)
				}
			}
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	}
}
