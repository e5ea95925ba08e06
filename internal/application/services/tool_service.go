package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"sandtimer.dev/mcp/internal/core/apperr"
	"sandtimer.dev/mcp/internal/core/ports"
	"sandtimer.dev/mcp/internal/core/tool"
)

// ToolInfo is the tools/list entry for one tool
type ToolInfo struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema tool.Schema `json:"inputSchema"`
}

// ToolService validates tool calls and delivers the resulting commands to the bridge
type ToolService struct {
	registry *tool.Registry
	sender   ports.CommandSender
	observer ports.ToolObserver
	logger   zerolog.Logger
}

// NewToolService creates a new tool service
func NewToolService(
	registry *tool.Registry,
	sender ports.CommandSender,
	observer ports.ToolObserver,
	logger zerolog.Logger,
) *ToolService {
	return &ToolService{
		registry: registry,
		sender:   sender,
		observer: observer,
		logger:   logger,
	}
}

// ListTools returns the descriptors of every registered tool in registration order
func (s *ToolService) ListTools() []ToolInfo {
	descriptors := s.registry.List()
	infos := make([]ToolInfo, 0, len(descriptors))
	for _, d := range descriptors {
		infos = append(infos, ToolInfo{
			Name:        d.Name(),
			Description: d.Description(),
			InputSchema: d.Schema(),
		})
	}
	return infos
}

// Call validates the arguments of the named tool and, only if they are valid,
// delivers exactly one bridge command. Validation and delivery failures are
// returned as error results; a non-nil error is a protocol-level failure.
func (s *ToolService) Call(ctx context.Context, name string, rawArgs json.RawMessage) (*tool.Result, error) {
	ctx, span := s.observer.StartToolCall(ctx, name)

	_, args, err := s.registry.Resolve(name, rawArgs)
	if err != nil {
		return s.fail(ctx, span, name, err)
	}

	cmd := args.Command()
	if err := s.deliver(ctx, cmd); err != nil {
		return s.fail(ctx, span, name, err)
	}

	s.observer.EndToolCall(ctx, span, name, nil)
	s.logger.Info().
		Str("tool", name).
		Str("command", cmd.String()).
		Msg("Command delivered")

	return tool.Success(args.SuccessText()), nil
}

func (s *ToolService) deliver(ctx context.Context, cmd tool.Command) error {
	ctx, span := s.observer.StartDelivery(ctx, cmd, s.sender.Addr())
	start := time.Now()

	err := s.sender.Send(ctx, cmd)

	s.observer.EndDelivery(ctx, span, cmd, time.Since(start), err)
	return err
}

func (s *ToolService) fail(ctx context.Context, span trace.Span, name string, err error) (*tool.Result, error) {
	mapped := apperr.Map(err)
	s.observer.EndToolCall(ctx, span, name, mapped)

	event := s.logger.Warn()
	if mapped.Kind == apperr.KindProtocol {
		event = s.logger.Error()
	}
	event.Err(mapped.Unwrap()).
		Str("tool", name).
		Str("code", mapped.Code()).
		Msg(mapped.Message)

	if !mapped.IsToolLevel() {
		return nil, mapped
	}
	return tool.Failure(mapped), nil
}
