// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

var (
	bindingsFile    string
	bindingsRuntime string
	bindingsFormat  string

	// bindingsCmd resolves and prints the binding table.
	bindingsCmd = &cobra.Command{
		Use:   "bindings",
		Short: "Show resolved binding values",
		Long: `Resolve all global bindings and print their values.

Command-substitution bindings are executed exactly as they would be for
a recipe run, so a failing helper surfaces here too.`,
		RunE: runBindings,
	}
)

func init() {
	bindingsCmd.Flags().StringVarP(&bindingsFile, "file", "f", "", "rundown file to use (default: ./rundown.cue)")
	bindingsCmd.Flags().StringVarP(&bindingsRuntime, "runtime", "r", "", "execution runtime (native, virtual)")
	bindingsCmd.Flags().StringVar(&bindingsFormat, "format", "text", "output format (text, json, toml)")
}

func runBindings(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	file, err := loadRundownfile(bindingsFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: 1, Err: err}
	}

	rt, err := newRuntime(bindingsRuntime)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: 1, Err: err}
	}

	resolved, _, err := resolveBindings(cmd.Context(), file, rt)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: 1, Err: err}
	}

	switch bindingsFormat {
	case "json":
		out, marshalErr := json.MarshalIndent(resolved, "", "  ")
		if marshalErr != nil {
			return marshalErr
		}
		fmt.Println(string(out))

	case "toml":
		out, marshalErr := toml.Marshal(map[string]string(resolved))
		if marshalErr != nil {
			return marshalErr
		}
		fmt.Print(string(out))

	case "text":
		fmt.Println(TitleStyle.Render("Resolved bindings"))
		fmt.Println()
		// Declaration order, like the file itself
		for i := range file.Bindings {
			name := file.Bindings[i].Name
			fmt.Printf("  %s = %s\n", RecipeStyle.Render(name), resolved[name])
		}
		if len(file.Bindings) == 0 {
			fmt.Printf("  %s\n", SubtitleStyle.Render("(none declared)"))
		}

	default:
		return fmt.Errorf("unknown format %q (valid: text, json, toml)", bindingsFormat)
	}

	return nil
}
