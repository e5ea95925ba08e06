package ports

import (
	"context"

	"sandtimer.dev/mcp/internal/core/tool"
)

// CommandSender delivers bridge commands to the timer application
type CommandSender interface {
	// Send delivers exactly one command; a nil error means the payload was fully written
	Send(ctx context.Context, cmd tool.Command) error

	// Addr returns the endpoint commands are delivered to
	Addr() string
}

// BridgeProber checks whether the timer application is accepting connections
type BridgeProber interface {
	Probe(ctx context.Context) error
}
