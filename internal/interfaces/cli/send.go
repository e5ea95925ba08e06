package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// NewSendCommand creates the send command
func NewSendCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <start|reset|cancel> <label> [seconds]",
		Short: "Send a single timer command and exit",
		Long: `Send one command to the sandtimer application without an MCP client.

The command goes through the same validation as an MCP tools/call and
exits with status 1 if it is rejected or cannot be delivered.

Examples:
  sandtimer-mcp send start coffee 300
  sandtimer-mcp send reset coffee
  sandtimer-mcp send cancel "green tea"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			call, err := parseToolCall(args[0], args[1:])
			if err != nil {
				return err
			}

			result, err := app.Container.ToolService.Call(cmd.Context(), call.Tool, call.Arguments)
			if err != nil {
				return fmt.Errorf("%s failed: %w", call.Tool, err)
			}
			if result.IsError {
				return errors.New(result.Text())
			}

			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓ "+result.Text()))
			return nil
		},
	}

	return cmd
}
