// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	listFile string

	// listCmd lists all recipes in the rundown file.
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List available recipes",
		Long: `List all recipes defined in the rundown file, with their
parameters and descriptions. Required parameters are shown as <name>,
defaulted ones as [name].`,
		RunE: runList,
	}
)

func init() {
	listCmd.Flags().StringVarP(&listFile, "file", "f", "", "rundown file to use (default: ./rundown.cue)")
}

func runList(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	file, err := loadRundownfile(listFile)
	if err != nil {
		return err
	}

	fmt.Println(TitleStyle.Render("Available recipes"))
	fmt.Println()

	for _, name := range file.RecipeNames() {
		recipe := file.FindRecipe(name)

		fmt.Printf("  %s", RecipeStyle.Render(recipe.Usage()))
		if recipe.Description != "" {
			fmt.Printf("  %s", SubtitleStyle.Render(recipe.Description))
		}
		fmt.Println()
	}

	if len(file.Recipes) == 0 {
		fmt.Printf("  %s\n", SubtitleStyle.Render("(none defined)"))
	}

	return nil
}
