package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sandtimer.dev/mcp/internal/core/tool"
	"sandtimer.dev/mcp/internal/testutil/bridgetest"
)

type runResult struct {
	stdout string
	stderr string
	err    error
}

// run executes the command tree in an isolated HOME and working directory
func run(t *testing.T, stdin string, args ...string) runResult {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return runResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func bridgeFlags(t *testing.T, addr string) []string {
	t.Helper()
	host, port := bridgetest.SplitAddr(t, addr)
	return []string{"--host", host, "--port", strconv.Itoa(port)}
}

func TestParseToolCall(t *testing.T) {
	tests := []struct {
		name     string
		action   string
		words    []string
		wantTool string
		wantArgs string
		wantErr  string
	}{
		{
			name:     "start",
			action:   "start",
			words:    []string{"coffee", "300"},
			wantTool: tool.StartTimer,
			wantArgs: `{"label":"coffee","time":300}`,
		},
		{
			name:     "start with multi word label",
			action:   "START",
			words:    []string{"green", "tea", "180"},
			wantTool: tool.StartTimer,
			wantArgs: `{"label":"green tea","time":180}`,
		},
		{
			name:     "non numeric seconds stay strings",
			action:   "start",
			words:    []string{"coffee", "soon"},
			wantTool: tool.StartTimer,
			wantArgs: `{"label":"coffee","time":"soon"}`,
		},
		{
			name:     "fractional seconds stay numeric",
			action:   "start",
			words:    []string{"coffee", "1.5"},
			wantTool: tool.StartTimer,
			wantArgs: `{"label":"coffee","time":1.5}`,
		},
		{
			name:     "reset",
			action:   "reset",
			words:    []string{"coffee"},
			wantTool: tool.ResetTimer,
			wantArgs: `{"label":"coffee"}`,
		},
		{
			name:     "cancel",
			action:   "cancel",
			words:    []string{"green", "tea"},
			wantTool: tool.CancelTimer,
			wantArgs: `{"label":"green tea"}`,
		},
		{name: "start without seconds", action: "start", words: []string{"coffee"}, wantErr: "usage: start"},
		{name: "reset without label", action: "reset", wantErr: "usage: reset"},
		{name: "unknown action", action: "pause", words: []string{"coffee"}, wantErr: `unknown action "pause"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call, err := parseToolCall(tt.action, tt.words)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantTool, call.Tool)
			assert.JSONEq(t, tt.wantArgs, string(call.Arguments))
		})
	}
}

func TestRun_SendDeliversCommand(t *testing.T) {
	fake := bridgetest.NewServer(t)

	args := append([]string{"send", "start", "coffee", "300"}, bridgeFlags(t, fake.Addr())...)
	res := run(t, "", args...)

	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Timer 'coffee' started for 300 seconds.")
	assert.Equal(t,
		[]tool.Command{{Action: tool.ActionStart, Label: "coffee", Seconds: 300}},
		fake.WaitForRecords(t, 1))
}

func TestRun_SendRejectsInvalidArgumentsWithoutDialing(t *testing.T) {
	fake := bridgetest.NewServer(t)

	args := append([]string{"send", "start", "coffee", "0"}, bridgeFlags(t, fake.Addr())...)
	res := run(t, "", args...)

	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "time")
	assert.Equal(t, 0, fake.Connections())
}

func TestRun_SendReportsUnavailableBridge(t *testing.T) {
	addr := bridgetest.ClosedAddr(t)

	args := append([]string{"send", "cancel", "coffee"}, bridgeFlags(t, addr)...)
	res := run(t, "", args...)

	require.Error(t, res.err)
	assert.Equal(t, "sandtimer service unavailable at "+addr+": connection refused", res.err.Error())
}

func TestRun_ServeIsTheDefaultCommand(t *testing.T) {
	fake := bridgetest.NewServer(t)
	stdin := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05"}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"reset_timer","arguments":{"label":"coffee"}}}`,
	}, "\n") + "\n"

	for _, args := range [][]string{bridgeFlags(t, fake.Addr()), append([]string{"serve"}, bridgeFlags(t, fake.Addr())...)} {
		res := run(t, stdin, args...)
		require.NoError(t, res.err)

		lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
		require.Len(t, lines, 2, "stdout must only carry protocol responses")
		for _, line := range lines {
			assert.True(t, json.Valid([]byte(line)), line)
		}
		assert.Contains(t, lines[1], "Timer 'coffee' reset.")
		assert.Contains(t, res.stderr, "session_id")
	}

	assert.Len(t, fake.WaitForRecords(t, 2), 2)
}

func TestRun_ConfigShow(t *testing.T) {
	t.Setenv("SANDTIMER_BRIDGE_PORT", "7000")

	res := run(t, "", "config", "show", "--log-level", "debug")
	require.NoError(t, res.err)

	assert.Contains(t, res.stdout, "Current Configuration:")
	assert.Contains(t, res.stdout, "bridge.port")
	assert.Contains(t, res.stdout, "7000")
	assert.Contains(t, res.stdout, "debug")
	assert.Contains(t, res.stdout, "(not set)")
}

func TestRun_ConfigPathWithoutFile(t *testing.T) {
	res := run(t, "", "config", "path")
	require.NoError(t, res.err)

	assert.Contains(t, res.stdout, "No configuration file found")
	assert.Contains(t, res.stdout, "sandtimer.yaml")
}

func TestRun_InvalidConfiguration(t *testing.T) {
	res := run(t, "", "config", "show", "--log-format", "xml")

	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "log.format")
}

func TestRun_Doctor(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		fake := bridgetest.NewServer(t)
		res := run(t, "", append([]string{"doctor"}, bridgeFlags(t, fake.Addr())...)...)

		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, fake.Addr())
		assert.Contains(t, res.stdout, "reachable")
		assert.Empty(t, fake.Records(), "doctor must not send commands")
	})

	t.Run("unreachable", func(t *testing.T) {
		addr := bridgetest.ClosedAddr(t)
		res := run(t, "", append([]string{"doctor"}, bridgeFlags(t, addr)...)...)

		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "sandtimer service unavailable at "+addr)
		assert.Contains(t, res.stdout, "unreachable")
	})
}

func TestRun_Version(t *testing.T) {
	res := run(t, "", "version", "--log-format", "xml")

	require.NoError(t, res.err, "version must not load configuration")
	assert.Contains(t, res.stdout, "sandtimer-mcp version dev")
	assert.Contains(t, res.stdout, "Go version:")
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24)
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
