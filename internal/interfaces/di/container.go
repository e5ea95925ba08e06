package di

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"sandtimer.dev/mcp/internal/application/services"
	"sandtimer.dev/mcp/internal/core/session"
	"sandtimer.dev/mcp/internal/core/tool"
	"sandtimer.dev/mcp/internal/infrastructure/bridge"
	"sandtimer.dev/mcp/internal/infrastructure/config"
	"sandtimer.dev/mcp/internal/infrastructure/logging"
	"sandtimer.dev/mcp/internal/infrastructure/telemetry"
)

// ServerName is reported to clients in serverInfo
const ServerName = "sandtimer-mcp"

// Options controls container construction
type Options struct {
	// LogOutput receives structured logs; defaults to stderr
	LogOutput io.Writer

	// Version is reported in serverInfo and trace resources
	Version string
}

// Container holds all application dependencies
type Container struct {
	// Configuration
	Config *config.Config

	// Infrastructure
	Logger   zerolog.Logger
	Bridge   *bridge.Client
	Observer *telemetry.Observer

	// Core services
	Registry    *tool.Registry
	ToolService *services.ToolService

	version           string
	shutdownTelemetry func(context.Context) error
}

// NewContainer creates and configures the dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config, opts Options) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}

	container := &Container{
		Config:  cfg,
		version: opts.Version,
	}

	if err := container.initializeComponents(ctx, opts); err != nil {
		return nil, fmt.Errorf("failed to initialize components: %w", err)
	}

	return container, nil
}

// initializeComponents initializes all components with proper dependencies
func (c *Container) initializeComponents(ctx context.Context, opts Options) error {
	// 1. Logging
	logger, err := logging.New(logging.Options{
		Level:  c.Config.Log.Level,
		Format: c.Config.Log.Format,
	}, opts.LogOutput)
	if err != nil {
		return err
	}
	c.Logger = logger

	// 2. Telemetry
	shutdown, err := telemetry.Setup(ctx, telemetry.Config{
		OTLPEndpoint: c.Config.Telemetry.OTLPEndpoint,
		ServiceName:  c.Config.Telemetry.ServiceName,
		Version:      c.version,
	})
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	c.shutdownTelemetry = shutdown

	observer, err := telemetry.NewGlobalObserver()
	if err != nil {
		return fmt.Errorf("failed to create telemetry instruments: %w", err)
	}
	c.Observer = observer

	// 3. Bridge client
	c.Bridge = bridge.NewClient(bridge.Config{
		Host:    c.Config.Bridge.Host,
		Port:    c.Config.Bridge.Port,
		Timeout: c.Config.Bridge.Timeout,
	}, bridge.WithLogger(c.Logger))

	// 4. Tools
	c.Registry, err = tool.NewBuiltinRegistry()
	if err != nil {
		return fmt.Errorf("failed to build tool registry: %w", err)
	}
	c.ToolService = services.NewToolService(c.Registry, c.Bridge, c.Observer, c.Logger)

	c.Logger.Debug().
		Str("bridge", c.Bridge.Addr()).
		Str("config_file", c.Config.File).
		Msg("Dependency injection container initialized")
	return nil
}

// NewProtocolServer creates a protocol server with a fresh session
func (c *Container) NewProtocolServer() *services.ProtocolServer {
	sess := session.NewSession()
	sessionLogger := c.Logger.With().Str("session_id", sess.ID().String()).Logger()

	tools := services.NewToolService(c.Registry, c.Bridge, c.Observer, sessionLogger)
	return services.NewProtocolServer(
		sess,
		tools,
		services.ServerInfo{Name: ServerName, Version: c.version},
		c.Config.Server.MaxMessageBytes,
		c.Logger,
	)
}

// Shutdown flushes telemetry
func (c *Container) Shutdown(ctx context.Context) error {
	if c.shutdownTelemetry == nil {
		return nil
	}
	if err := c.shutdownTelemetry(ctx); err != nil {
		return fmt.Errorf("failed to flush telemetry: %w", err)
	}
	return nil
}
