// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rundown-cli/internal/dispatch"
	"rundown-cli/internal/issue"
	"rundown-cli/internal/subst"
)

var (
	runFile     string
	runRuntime  string
	runDryRun   bool
	runWorkDir  string
	runEnvFiles []string
	runEnvVars  []string

	// runCmd executes a recipe from the rundown file.
	runCmd = &cobra.Command{
		Use:   "run <recipe> [args...]",
		Short: "Run a recipe",
		Long: `Run a recipe from the rundown file.

Positional arguments after the recipe name are bound to the recipe's
parameters in order. Trailing parameters with defaults may be omitted;
required parameters must always be supplied.

The process exits with the exit code of the last executed step.`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: recipeNameCompletion(""),
		RunE:              runRun,
	}
)

func init() {
	runCmd.Flags().StringVarP(&runFile, "file", "f", "", "rundown file to use (default: ./rundown.cue)")
	runCmd.Flags().StringVarP(&runRuntime, "runtime", "r", "", "execution runtime (native, virtual)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "print substituted steps without executing them")
	runCmd.Flags().StringVarP(&runWorkDir, "workdir", "w", "", "working directory for recipe steps")
	runCmd.Flags().StringArrayVar(&runEnvFiles, "env-file", nil, "additional dotenv file (repeatable)")
	runCmd.Flags().StringArrayVarP(&runEnvVars, "env-var", "e", nil, "KEY=VALUE environment override (repeatable)")
}

func runRun(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	recipeName := args[0]
	recipeArgs := args[1:]

	file, err := loadRundownfile(runFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: 1, Err: err}
	}

	// Fail fast on unknown recipes: no binding helper runs for a
	// dispatch that can never start.
	if file.FindRecipe(recipeName) == nil {
		renderIssue(issue.RecipeNotFoundId)
		err := &dispatch.UnknownRecipeError{Name: recipeName}
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return &ExitError{Code: 1, Err: err}
	}

	rt, err := newRuntime(runRuntime)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: 1, Err: err}
	}

	ctx := cmd.Context()

	resolved, exports, err := resolveBindings(ctx, file, rt)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: 1, Err: err}
	}

	d := &dispatch.Dispatcher{
		File:     file,
		Bindings: resolved,
		Exports:  exports,
		Runtime:  rt,
		Logger:   newRunLogger(),
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Stdin:    os.Stdin,
	}

	code, err := d.Dispatch(ctx, recipeName, recipeArgs, dispatch.Options{
		DryRun:   runDryRun,
		WorkDir:  runWorkDir,
		EnvFiles: runEnvFiles,
		EnvVars:  parseEnvVarFlags(runEnvVars),
	})
	if err != nil {
		renderDispatchIssue(err)
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: code, Err: err}
	}
	if code != 0 {
		// The failing step already wrote to stderr; just propagate its code.
		return &ExitError{Code: code}
	}

	return nil
}

// renderDispatchIssue maps a dispatch error onto its help card.
func renderDispatchIssue(err error) {
	switch {
	case errors.Is(err, dispatch.ErrUnknownRecipe):
		renderIssue(issue.RecipeNotFoundId)
	case errors.Is(err, dispatch.ErrTooManyArguments),
		errors.Is(err, dispatch.ErrMissingRequiredArgument):
		renderIssue(issue.ArgumentMismatchId)
	case errors.Is(err, subst.ErrUnresolvedPlaceholder):
		renderIssue(issue.UnresolvedPlaceholderId)
	}
}

// parseEnvVarFlags converts repeated KEY=VALUE flags to a map. Values
// without '=' are treated as empty-valued keys.
func parseEnvVarFlags(pairs []string) map[string]string {
	if len(pairs) == 0 {
		return nil
	}
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, _ := strings.Cut(pair, "=")
		vars[key] = value
	}
	return vars
}
