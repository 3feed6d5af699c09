// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"rundown-cli/pkg/rundownfile"
)

var (
	initForce    bool
	initTemplate string

	// initCmd creates a new rundown.cue
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Create a new rundown.cue in the current directory",
		Long: `Create a new rundown.cue in the current directory with example recipes.

This command generates a starter rundown.cue with sample recipes,
bindings, and env exports to help you get started quickly.`,
		RunE: runInit,
	}
)

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing rundown.cue")
	initCmd.Flags().StringVarP(&initTemplate, "template", "t", "default", "template to use (default, minimal, full)")
}

func runInit(cmd *cobra.Command, args []string) error {
	filename := rundownfile.DefaultFileName
	if len(args) > 0 {
		filename = args[0]
	}

	// Check if file exists
	if _, err := os.Stat(filename); err == nil && !initForce {
		return fmt.Errorf("file '%s' already exists. Use --force to overwrite", filename)
	}

	// Generate content based on template
	content := generateRundownfile(initTemplate)

	// Write file
	if err := os.WriteFile(filename, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	absPath, _ := filepath.Abs(filename)
	fmt.Printf("%s Created %s\n", SuccessStyle.Render("✓"), absPath)
	fmt.Println()
	fmt.Println(SubtitleStyle.Render("Next steps:"))
	fmt.Println("  1. Edit the rundown.cue to add your recipes")
	fmt.Println("  2. Run 'rundown list' to see available recipes")
	fmt.Println("  3. Run 'rundown run <recipe>' to execute a recipe")

	return nil
}

func generateRundownfile(template string) string {
	switch template {
	case "minimal":
		return `recipes: [
	{
		name: "hello"
		description: "Print a greeting"
		steps: ["echo 'Hello from rundown!'"]
	},
]
`

	case "full":
		return `bindings: [
	{name: "project", value: "myproject"},
	{name: "version", exec: "git describe --tags --always"},
]

env: {
	vars: {
		CGO_ENABLED: "0"
	}
}

recipes: [
	{
		name: "build"
		description: "Build the project"
		steps: [
			"echo 'Building {{project}} {{version}}...'",
			"go build -o bin/{{project}} ./...",
		]
	},
	{
		name: "test"
		description: "Run tests"
		params: [
			{name: "pkg", default: "./..."},
		]
		steps: ["go test -v {{pkg}}"]
	},
	{
		name: "publish"
		description: "Publish a release"
		params: [
			{name: "tag"},
			{name: "target", default: "local"},
		]
		steps: [
			"echo 'Publishing {{project}} {{tag}} to {{target}}'",
			"git push origin {{tag}}",
		]
	},
	{
		name: "clean"
		description: "Clean build artifacts"
		steps: ["rm -rf bin/ dist/"]
	},
]
`

	default: // "default"
		return `bindings: [
	{name: "project", value: "myproject"},
]

recipes: [
	{
		name: "build"
		description: "Build the project"
		steps: [
			"echo 'Building {{project}}...'",
			"# Add your build commands here",
		]
	},
	{
		name: "test"
		description: "Run tests"
		steps: [
			"echo 'Testing {{project}}...'",
			"# Add your test commands here",
		]
	},
	{
		name: "clean"
		description: "Clean build artifacts"
		steps: ["echo 'Cleaning...'"]
	},
]
`
	}
}
