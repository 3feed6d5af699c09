// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rundown-cli/pkg/rundownfile"
)

var (
	validateFile string

	// validateCmd checks the rundown file without running anything.
	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Validate the rundown file",
		Long: `Parse and validate the rundown file without resolving bindings or
running any recipe. Reports schema violations, duplicate recipes,
invalid parameter orderings, and empty recipes.`,
		RunE: runValidate,
	}
)

func init() {
	validateCmd.Flags().StringVarP(&validateFile, "file", "f", "", "rundown file to use (default: ./rundown.cue)")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	path := validateFile
	if path == "" {
		path = rundownfile.DefaultFileName
	}

	file, err := loadRundownfile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("✗ ")+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: 1, Err: err}
	}

	recipes := "recipes"
	if len(file.Recipes) == 1 {
		recipes = "recipe"
	}
	fmt.Printf("%s %s is valid (%d %s, %d bindings)\n",
		SuccessStyle.Render("✓"), path, len(file.Recipes), recipes, len(file.Bindings))

	return nil
}
