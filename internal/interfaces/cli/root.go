package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"sandtimer.dev/mcp/internal/infrastructure/config"
	"sandtimer.dev/mcp/internal/interfaces/di"
)

var (
	Version   = "dev"     // Overridden by ldflags
	BuildTime = "unknown" // Overridden by ldflags
)

// App holds the state shared by the commands of one invocation. The
// container is built once flags are parsed.
type App struct {
	configFile string

	Config    *config.Config
	Container *di.Container
}

// load reads configuration and builds the container for cmd
func (a *App) load(cmd *cobra.Command) error {
	if a.Container != nil {
		return nil
	}

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: a.configFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	container, err := di.NewContainer(cmd.Context(), cfg, di.Options{
		LogOutput: cmd.ErrOrStderr(),
		Version:   Version,
	})
	if err != nil {
		return err
	}

	a.Config = cfg
	a.Container = container
	return nil
}

// Close releases resources held by the container
func (a *App) Close(ctx context.Context) error {
	if a.Container == nil {
		return nil
	}
	return a.Container.Shutdown(ctx)
}

// needsContainer reports whether cmd runs against the loaded configuration
func needsContainer(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations["skipLoad"] == "true" {
			return false
		}
	}
	return true
}

// NewRootCommand creates the sandtimer-mcp command tree
func NewRootCommand(app *App) *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "sandtimer-mcp",
		Short: "MCP server controlling desktop sand timers",
		Long: `sandtimer-mcp exposes the sandtimer desktop application to AI assistants
through the Model Context Protocol.

Run without a subcommand it serves MCP over stdin/stdout and forwards
start_timer, reset_timer and cancel_timer calls to the sandtimer
application's local TCP listener.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsContainer(cmd) {
				return nil
			}
			return app.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, app)
		},
	}

	// Set custom version template
	rootCmd.SetVersionTemplate(versionTemplate())

	// Add persistent flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.configFile, "config", "", "Config file path (default is $HOME/.sandtimer/config.yaml, then ./sandtimer.yaml)")
	flags.String("host", config.DefaultHost, "Host of the sandtimer application")
	flags.Int("port", config.DefaultPort, "Port of the sandtimer application")
	flags.Duration("timeout", config.DefaultTimeout, "Timeout for delivering one command")
	flags.String("log-level", config.DefaultLogLevel, "Log level (trace, debug, info, warn, error)")
	flags.String("log-format", config.DefaultLogFormat, "Log format (json, console)")

	// Add subcommands
	rootCmd.AddCommand(NewServeCommand(app))
	rootCmd.AddCommand(NewSendCommand(app))
	rootCmd.AddCommand(NewConsoleCommand(app))
	rootCmd.AddCommand(NewDoctorCommand(app))
	rootCmd.AddCommand(NewConfigCommand(app))
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

func versionTemplate() string {
	return fmt.Sprintf("{{.Name}} version {{.Version}}\nBuild time: %s\nGo version: %s\nPlatform: %s/%s\n",
		BuildTime, goVersion(), runtime.GOOS, runtime.GOARCH)
}

// goVersion returns the Go version used to build the binary
func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}

// Run executes the command tree with the given arguments and streams
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	app := &App{}
	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if closeErr := app.Close(context.WithoutCancel(ctx)); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// Execute runs the command line and returns the process exit code
func Execute(ctx context.Context) int {
	if err := Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
