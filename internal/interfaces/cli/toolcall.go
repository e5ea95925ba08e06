package cli

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"sandtimer.dev/mcp/internal/core/tool"
)

// toolCall is a tools/call request assembled from command line words
type toolCall struct {
	Tool      string
	Arguments json.RawMessage
}

// parseToolCall turns "<action> <label...> [seconds]" into a tool call.
// Only the shape is checked here; argument validation is left to the
// tool registry so the CLI reports the same errors as MCP clients get.
func parseToolCall(action string, words []string) (toolCall, error) {
	args := map[string]interface{}{}

	switch tool.Action(strings.ToLower(action)) {
	case tool.ActionStart:
		if len(words) < 2 {
			return toolCall{}, fmt.Errorf("usage: start <label> <seconds>")
		}
		args["label"] = strings.Join(words[:len(words)-1], " ")
		args["time"] = secondsValue(words[len(words)-1])
		return newToolCall(tool.StartTimer, args)

	case tool.ActionReset:
		if len(words) < 1 {
			return toolCall{}, fmt.Errorf("usage: reset <label>")
		}
		args["label"] = strings.Join(words, " ")
		return newToolCall(tool.ResetTimer, args)

	case tool.ActionCancel:
		if len(words) < 1 {
			return toolCall{}, fmt.Errorf("usage: cancel <label>")
		}
		args["label"] = strings.Join(words, " ")
		return newToolCall(tool.CancelTimer, args)

	default:
		return toolCall{}, fmt.Errorf("unknown action %q (expected start, reset or cancel)", action)
	}
}

// secondsValue keeps numeric input numeric so that "1.5" or "abc" reach
// the validator with their original type
func secondsValue(word string) interface{} {
	if n, err := strconv.ParseFloat(word, 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
		return json.Number(strconv.FormatFloat(n, 'f', -1, 64))
	}
	return word
}

func newToolCall(name string, args map[string]interface{}) (toolCall, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return toolCall{}, fmt.Errorf("failed to encode arguments: %w", err)
	}
	return toolCall{Tool: name, Arguments: raw}, nil
}
