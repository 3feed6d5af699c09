// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"rundown-cli/internal/config"
	"rundown-cli/internal/issue"
)

// configCmd is the `rundown config` command tree.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage rundown configuration",
	Long: `Manage rundown configuration.

Configuration is stored in:
  - Linux: ~/.config/rundown/config.cue
  - macOS: ~/Library/Application Support/rundown/config.cue
  - Windows: %APPDATA%\rundown\config.cue`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath()
		},
	})
}

func showConfig() error {
	cfg, err := config.Get()
	if err != nil {
		renderIssue(issue.ConfigLoadFailedId)
		return err
	}

	// Style definitions using shared color palette
	headerStyle := TitleStyle
	keyStyle := RecipeStyle
	valueStyle := SuccessStyle

	fmt.Println(headerStyle.Render("Current Configuration"))
	fmt.Println()

	if path := config.Path(); path != "" {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Println()

	// Show values
	fmt.Printf("%s: %s\n", keyStyle.Render("default_runtime"), valueStyle.Render(string(cfg.DefaultRuntime)))
	if cfg.Shell != "" {
		fmt.Printf("%s: %s\n", keyStyle.Render("shell"), valueStyle.Render(cfg.Shell))
	} else {
		fmt.Printf("%s: %s\n", keyStyle.Render("shell"), SubtitleStyle.Render("(system default)"))
	}

	fmt.Println()
	fmt.Printf("%s:\n", keyStyle.Render("ui"))
	fmt.Printf("  color_scheme: %s\n", valueStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Printf("  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	return nil
}

func showConfigPath() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	cfgPath := filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
	fmt.Printf("Config directory: %s\n", cfgDir)
	fmt.Printf("Config file: %s\n", cfgPath)

	if _, err := os.Stat(cfgPath); err != nil {
		fmt.Println(SubtitleStyle.Render("(file does not exist; defaults are in effect)"))
	}

	return nil
}
