package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"sandtimer.dev/mcp/internal/core/apperr"
)

// Version is the only JSON-RPC version accepted
const Version = "2.0"

// MessageType represents the type of JSON-RPC message
type MessageType string

const (
	MessageTypeRequest      MessageType = "request"
	MessageTypeResponse     MessageType = "response"
	MessageTypeNotification MessageType = "notification"
	MessageTypeError        MessageType = "error"
)

// Message is one decoded inbound JSON-RPC message
type Message struct {
	Type   MessageType
	ID     json.RawMessage
	Method string
	Params json.RawMessage
}

// IsRequest returns true if this message expects a response
func (m *Message) IsRequest() bool {
	return m.Type == MessageTypeRequest
}

// IsNotification returns true if this is a one-way notification
func (m *Message) IsNotification() bool {
	return m.Type == MessageTypeNotification
}

// String returns a human-readable representation of the message
func (m *Message) String() string {
	if m.Method != "" {
		return fmt.Sprintf("%s %s", m.Type, m.Method)
	}
	return string(m.Type)
}

// ErrorInfo contains details about JSON-RPC errors
type ErrorInfo struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Response is an outbound JSON-RPC response. A nil ID is encoded as null.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *ErrorInfo      `json:"error,omitempty"`
}

// NewResult builds a success response
func NewResult(id json.RawMessage, result interface{}) *Response {
	return &Response{JSONRPC: Version, ID: id, Result: result}
}

// NewError builds an error response from a mapped error
func NewError(id json.RawMessage, err *apperr.Error) *Response {
	return &Response{
		JSONRPC: Version,
		ID:      id,
		Error: &ErrorInfo{
			Code:    err.RPCCode,
			Message: err.Message,
		},
	}
}

// Decode parses one framed message. On failure the returned error is an
// *apperr.Error and the returned message, when non-nil, carries the request ID
// that could still be recovered.
func Decode(raw []byte) (*Message, error) {
	trimmed := bytes.TrimSpace(raw)

	if !json.Valid(trimmed) {
		return nil, apperr.Protocol(apperr.CodeParseError, "Parse error")
	}
	if trimmed[0] != '{' {
		if trimmed[0] == '[' {
			return nil, apperr.Protocol(apperr.CodeInvalidRequest, "Invalid request: batch messages are not supported")
		}
		return nil, apperr.Protocol(apperr.CodeInvalidRequest, "Invalid request: message must be an object")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, apperr.Protocol(apperr.CodeInvalidRequest, "Invalid request")
	}

	msg := &Message{}
	id, hasID := fields["id"]
	if hasID {
		if !validID(id) {
			return nil, apperr.Protocol(apperr.CodeInvalidRequest, "Invalid request: id must be a string, number or null")
		}
		msg.ID = append(json.RawMessage(nil), id...)
	}

	var version string
	if err := json.Unmarshal(fields["jsonrpc"], &version); err != nil || version != Version {
		return msg, apperr.Protocol(apperr.CodeInvalidRequest, "Invalid request: jsonrpc must be %q", Version)
	}

	rawMethod, hasMethod := fields["method"]
	if !hasMethod {
		if _, hasError := fields["error"]; hasError {
			msg.Type = MessageTypeError
		} else {
			msg.Type = MessageTypeResponse
		}
		return msg, nil
	}

	var method string
	if err := json.Unmarshal(rawMethod, &method); err != nil || method == "" {
		return msg, apperr.Protocol(apperr.CodeInvalidRequest, "Invalid request: method must be a non-empty string")
	}
	msg.Method = method
	msg.Params = fields["params"]

	if hasID {
		msg.Type = MessageTypeRequest
	} else {
		msg.Type = MessageTypeNotification
	}

	return msg, nil
}

func validID(id json.RawMessage) bool {
	trimmed := bytes.TrimSpace(id)
	if len(trimmed) == 0 {
		return false
	}
	switch trimmed[0] {
	case '"', 'n', '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return true
	default:
		return false
	}
}
