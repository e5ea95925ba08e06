package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"sandtimer.dev/mcp/internal/infrastructure/config"
)

// NewConfigCommand creates the config command
func NewConfigCommand(app *App) *cobra.Command {
	var configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration settings",
		Long: `Inspect the effective configuration of sandtimer-mcp.

Values are layered from defaults, the config file, SANDTIMER_* environment
variables (for example SANDTIMER_BRIDGE_PORT) and command line flags, each
overriding the previous one.`,
	}

	// Add subcommands
	configCmd.AddCommand(NewConfigShowCommand(app))
	configCmd.AddCommand(NewConfigPathCommand(app))

	return configCmd
}

// NewConfigShowCommand creates the show subcommand
func NewConfigShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printConfig(cmd, app.Config)
			return nil
		},
	}
}

func printConfig(cmd *cobra.Command, cfg *config.Config) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render("Current Configuration:"))
	for _, entry := range cfg.Entries() {
		value := entry.Value
		if value == "" {
			value = mutedStyle.Render("(not set)")
		}
		fmt.Fprintf(out, "%s %s\n", keyStyle.Render(entry.Key), value)
	}
}

// NewConfigPathCommand creates the path subcommand
func NewConfigPathCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the configuration file in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if app.Config.File != "" {
				fmt.Fprintf(out, "Configuration file path: %s\n", app.Config.File)
				return nil
			}

			fmt.Fprintln(out, "No configuration file found. Searched:")
			for _, candidate := range config.CandidateFiles() {
				fmt.Fprintf(out, "  %s\n", candidate)
			}
			return nil
		},
	}
}
