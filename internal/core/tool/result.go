package tool

import "sandtimer.dev/mcp/internal/core/apperr"

// Content is one text block of a tool result
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ErrorDetail is the machine-readable part of a failed tool result
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the outcome of one tool call as returned to the client
type Result struct {
	Content           []Content    `json:"content"`
	IsError           bool         `json:"isError"`
	StructuredContent *ErrorDetail `json:"structuredContent,omitempty"`
}

// Success builds a successful result carrying text
func Success(text string) *Result {
	return &Result{
		Content: []Content{{Type: "text", Text: text}},
	}
}

// Failure builds a tool-level error result
func Failure(err *apperr.Error) *Result {
	return &Result{
		Content: []Content{{Type: "text", Text: err.Message}},
		IsError: true,
		StructuredContent: &ErrorDetail{
			Code:    err.Code(),
			Message: err.Message,
		},
	}
}

// Text returns the first text block, or an empty string
func (r *Result) Text() string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	return r.Content[0].Text
}
