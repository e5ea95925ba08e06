package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"sandtimer.dev/mcp/internal/core/apperr"
	"sandtimer.dev/mcp/internal/core/session"
	"sandtimer.dev/mcp/internal/jsonrpc"
)

// Protocol method names
const (
	MethodInitialize        = "initialize"
	MethodInitialized       = "notifications/initialized"
	MethodInitializedLegacy = "initialized"
	MethodToolsList         = "tools/list"
	MethodToolsCall         = "tools/call"
	MethodPing              = "ping"
)

// ServerInfo identifies this server in the initialize response
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Capabilities advertised in the initialize response
type Capabilities struct {
	Tools struct{} `json:"tools"`
}

// InitializeResult is the result of a successful initialize request
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
}

// ToolsListResult is the result of tools/list
type ToolsListResult struct {
	Tools []ToolInfo `json:"tools"`
}

// ProtocolServer drives one MCP session over a newline-delimited JSON-RPC stream
type ProtocolServer struct {
	session         *session.Session
	tools           *ToolService
	info            ServerInfo
	maxMessageBytes int
	logger          zerolog.Logger
}

// NewProtocolServer creates a protocol server for a fresh session
func NewProtocolServer(
	sess *session.Session,
	tools *ToolService,
	info ServerInfo,
	maxMessageBytes int,
	logger zerolog.Logger,
) *ProtocolServer {
	return &ProtocolServer{
		session:         sess,
		tools:           tools,
		info:            info,
		maxMessageBytes: maxMessageBytes,
		logger:          logger.With().Str("session_id", sess.ID().String()).Logger(),
	}
}

// Session returns the session driven by this server
func (p *ProtocolServer) Session() *session.Session {
	return p.session
}

type frame struct {
	line []byte
	err  error
}

// Serve processes messages from in until it reaches EOF or ctx is canceled,
// writing responses to out in request order. It returns an error only when
// the stream itself fails.
func (p *ProtocolServer) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	reader := jsonrpc.NewReader(in, p.maxMessageBytes)
	writer := jsonrpc.NewWriter(out)

	frames := make(chan frame)
	go func() {
		defer close(frames)
		for {
			line, err := reader.Next()
			select {
			case frames <- frame{line: line, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	p.logger.Info().Msg("Serving MCP over stdio")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("Shutdown requested")
			return nil
		case f, ok := <-frames:
			if !ok {
				return nil
			}
			if f.err != nil {
				if errors.Is(f.err, io.EOF) {
					p.logger.Info().Msg("Input closed")
					return nil
				}
				return fmt.Errorf("failed to read message: %w", f.err)
			}

			resp := p.Handle(ctx, f.line)
			if resp == nil {
				continue
			}
			if err := writer.Write(resp); err != nil {
				return fmt.Errorf("failed to write response: %w", err)
			}
		}
	}
}

// Handle processes one framed message and returns the response to send, or
// nil when the message gets none.
func (p *ProtocolServer) Handle(ctx context.Context, raw []byte) *jsonrpc.Response {
	msg, err := jsonrpc.Decode(raw)
	if err != nil {
		var id json.RawMessage
		if msg != nil {
			id = msg.ID
		}
		mapped := apperr.Map(err)
		p.logger.Warn().Int("code", mapped.RPCCode).Msg(mapped.Message)
		return jsonrpc.NewError(id, mapped)
	}

	switch msg.Type {
	case jsonrpc.MessageTypeNotification:
		p.handleNotification(msg)
		return nil
	case jsonrpc.MessageTypeRequest:
		result, err := p.dispatch(ctx, msg)
		if err != nil {
			return jsonrpc.NewError(msg.ID, apperr.Map(err))
		}
		return jsonrpc.NewResult(msg.ID, result)
	default:
		p.logger.Debug().Str("type", string(msg.Type)).Msg("Ignoring message without method")
		return nil
	}
}

func (p *ProtocolServer) dispatch(ctx context.Context, msg *jsonrpc.Message) (interface{}, error) {
	state := p.session.State()

	if msg.Method == MethodInitialize {
		if state != session.StateUninitialized {
			return nil, apperr.OutOfSequence(msg.Method, string(state))
		}
		return p.initialize(msg.Params)
	}

	if state != session.StateReady {
		return nil, apperr.OutOfSequence(msg.Method, string(state))
	}

	switch msg.Method {
	case MethodToolsList:
		return ToolsListResult{Tools: p.tools.ListTools()}, nil
	case MethodToolsCall:
		return p.callTool(ctx, msg.Params)
	case MethodPing:
		return struct{}{}, nil
	default:
		return nil, apperr.Protocol(apperr.CodeMethodNotFound, "Method not found: %s", msg.Method)
	}
}

func (p *ProtocolServer) initialize(params json.RawMessage) (interface{}, error) {
	fields, err := objectParams(params)
	if err != nil {
		return nil, err
	}

	requested := ""
	if raw, ok := fields["protocolVersion"]; ok {
		if err := json.Unmarshal(raw, &requested); err != nil || requested == "" {
			return nil, apperr.Protocol(apperr.CodeInvalidParams, "Invalid params: protocolVersion must be a non-empty string")
		}
	}

	var client session.ClientInfo
	if raw, ok := fields["clientInfo"]; ok {
		if err := json.Unmarshal(raw, &client); err != nil {
			p.logger.Debug().Err(err).Msg("Ignoring malformed clientInfo")
		}
	}

	version, err := p.session.Initialize(requested, client)
	if err != nil {
		return nil, apperr.OutOfSequence(MethodInitialize, string(p.session.State()))
	}

	p.logger.Info().
		Str("client", client.Name).
		Str("client_version", client.Version).
		Str("requested_version", requested).
		Str("protocol_version", version).
		Msg("Session initialized")

	return InitializeResult{
		ProtocolVersion: version,
		ServerInfo:      p.info,
	}, nil
}

func (p *ProtocolServer) handleNotification(msg *jsonrpc.Message) {
	switch msg.Method {
	case MethodInitialized, MethodInitializedLegacy:
		if err := p.session.MarkReady(); err != nil {
			p.logger.Debug().Err(err).Msg("Ignoring initialized notification")
			return
		}
		p.logger.Info().Msg("Session ready")
	default:
		p.logger.Debug().Str("method", msg.Method).Msg("Dropping notification")
	}
}

func (p *ProtocolServer) callTool(ctx context.Context, params json.RawMessage) (interface{}, error) {
	fields, err := objectParams(params)
	if err != nil {
		return nil, err
	}

	var name string
	rawName, ok := fields["name"]
	if !ok || string(rawName) == "null" || json.Unmarshal(rawName, &name) != nil {
		return nil, apperr.Protocol(apperr.CodeInvalidParams, "Invalid params: name must be a string")
	}

	return p.tools.Call(ctx, name, fields["arguments"])
}

// objectParams decodes params as an object; absent or null params decode as empty
func objectParams(params json.RawMessage) (map[string]json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	if len(params) == 0 || string(params) == "null" {
		return fields, nil
	}
	if err := json.Unmarshal(params, &fields); err != nil {
		return nil, apperr.Protocol(apperr.CodeInvalidParams, "Invalid params: params must be an object")
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}
	return fields, nil
}
