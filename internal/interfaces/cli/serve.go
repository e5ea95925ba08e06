package cli

import (
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command
func NewServeCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP over stdin/stdout (default)",
		Long: `Serve the Model Context Protocol over stdin/stdout.

Protocol messages are read from stdin and answered on stdout, one JSON-RPC
message per line. Logs are written to stderr. The server exits cleanly when
stdin is closed or on SIGINT/SIGTERM.

Example MCP client configuration:
  {"command": "sandtimer-mcp", "args": ["serve"]}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, app)
		},
	}
}

func runServe(cmd *cobra.Command, app *App) error {
	server := app.Container.NewProtocolServer()
	return server.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
}
