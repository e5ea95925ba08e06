package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"sandtimer.dev/mcp/internal/core/apperr"
)

// NewDoctorCommand creates the doctor command
func NewDoctorCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the sandtimer application is reachable",
		Long: `Check the effective configuration and try to connect to the sandtimer
application without sending a command. Exits with status 1 when the
application cannot be reached.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg := app.Config
			client := app.Container.Bridge

			fmt.Fprintln(out, titleStyle.Render("sandtimer-mcp doctor"))
			fmt.Fprintf(out, "%s %s\n", keyStyle.Render("config file"), displayPath(cfg.File))
			fmt.Fprintf(out, "%s %s\n", keyStyle.Render("bridge"), client.Addr())
			fmt.Fprintf(out, "%s %s\n", keyStyle.Render("timeout"), client.Timeout())

			ctx, cancel := context.WithTimeout(cmd.Context(), client.Timeout())
			defer cancel()

			if err := client.Probe(ctx); err != nil {
				unavailable := apperr.BridgeUnavailable(err)
				fmt.Fprintf(out, "%s %s\n", keyStyle.Render("status"), errorStyle.Render("unreachable"))
				return unavailable
			}

			fmt.Fprintf(out, "%s %s\n", keyStyle.Render("status"), successStyle.Render("reachable"))
			return nil
		},
	}
}

func displayPath(path string) string {
	if path == "" {
		return mutedStyle.Render("(none, using defaults)")
	}
	return path
}
