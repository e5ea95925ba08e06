package ports

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"sandtimer.dev/mcp/internal/core/apperr"
	"sandtimer.dev/mcp/internal/core/tool"
)

// ToolObserver records traces and metrics for tool calls and bridge deliveries
type ToolObserver interface {
	StartToolCall(ctx context.Context, toolName string) (context.Context, trace.Span)
	EndToolCall(ctx context.Context, span trace.Span, toolName string, failure *apperr.Error)
	StartDelivery(ctx context.Context, cmd tool.Command, addr string) (context.Context, trace.Span)
	EndDelivery(ctx context.Context, span trace.Span, cmd tool.Command, elapsed time.Duration, err error)
}
