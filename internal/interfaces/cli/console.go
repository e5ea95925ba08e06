package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"sandtimer.dev/mcp/internal/application/services"
	"sandtimer.dev/mcp/internal/core/tool"
)

const consoleHelp = "start <label> <seconds> | reset <label> | cancel <label> | help | quit"

// NewConsoleCommand creates the console command
func NewConsoleCommand(app *App) *cobra.Command {
	var maxHistory int

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Interactive terminal console for controlling timers",
		Long: `Launch an interactive terminal console that sends timer commands to the
sandtimer application. Every line is validated exactly like an MCP
tools/call before it is delivered.

Commands:
  start <label> <seconds>   start or restart a timer
  reset <label>             reset a timer to its original duration
  cancel <label>            cancel and close a timer
  help                      show the command list
  quit                      leave the console (also Esc or Ctrl+C)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			model := newConsoleModel(cmd.Context(), app.Container.ToolService, app.Container.Bridge.Addr(), maxHistory)

			program := tea.NewProgram(model,
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("console failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxHistory, "history", 20, "Number of past commands to display")

	return cmd
}

// consoleEntry is one line of console history
type consoleEntry struct {
	At      time.Time
	Input   string
	Text    string
	IsError bool
}

// callResultMsg is sent when a tool call finished
type callResultMsg struct {
	input  string
	result *tool.Result
	err    error
}

// consoleModel holds the state for the Bubble Tea console
type consoleModel struct {
	ctx        context.Context
	tools      *services.ToolService
	addr       string
	input      []rune
	history    []consoleEntry
	maxHistory int
	busy       bool
	quitting   bool
}

// newConsoleModel creates a new console model
func newConsoleModel(ctx context.Context, tools *services.ToolService, addr string, maxHistory int) consoleModel {
	if maxHistory <= 0 {
		maxHistory = 20
	}
	return consoleModel{
		ctx:        ctx,
		tools:      tools,
		addr:       addr,
		maxHistory: maxHistory,
	}
}

// Init implements the Bubble Tea init method
func (m consoleModel) Init() tea.Cmd {
	return nil
}

// Update implements the Bubble Tea update method
func (m consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit

		case tea.KeyEnter:
			return m.submit()

		case tea.KeyBackspace:
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
			}
			return m, nil

		case tea.KeySpace:
			m.input = append(m.input, ' ')
			return m, nil

		case tea.KeyRunes:
			m.input = append(m.input, msg.Runes...)
			return m, nil
		}

	case callResultMsg:
		m.busy = false
		switch {
		case msg.err != nil:
			m.record(msg.input, msg.err.Error(), true)
		default:
			m.record(msg.input, msg.result.Text(), msg.result.IsError)
		}
		return m, nil
	}

	return m, nil
}

func (m consoleModel) submit() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	line := strings.TrimSpace(string(m.input))
	m.input = nil
	if line == "" {
		return m, nil
	}

	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case "quit", "exit":
		m.quitting = true
		return m, tea.Quit
	case "help":
		m.record(line, consoleHelp, false)
		return m, nil
	}

	call, err := parseToolCall(fields[0], fields[1:])
	if err != nil {
		m.record(line, err.Error(), true)
		return m, nil
	}

	m.busy = true
	return m, m.callCmd(line, call)
}

// callCmd runs the tool call outside the update loop
func (m consoleModel) callCmd(input string, call toolCall) tea.Cmd {
	return func() tea.Msg {
		result, err := m.tools.Call(m.ctx, call.Tool, call.Arguments)
		return callResultMsg{input: input, result: result, err: err}
	}
}

func (m *consoleModel) record(input, text string, isError bool) {
	m.history = append(m.history, consoleEntry{
		At:      time.Now(),
		Input:   input,
		Text:    text,
		IsError: isError,
	})
	if len(m.history) > m.maxHistory {
		m.history = m.history[len(m.history)-m.maxHistory:]
	}
}

// View implements the Bubble Tea view method
func (m consoleModel) View() string {
	if m.quitting {
		return ""
	}

	header := lipgloss.JoinHorizontal(lipgloss.Left,
		titleStyle.Render("⏳ Sandtimer Console"),
		"  ",
		mutedStyle.Render("bridge "+m.addr),
	)

	rows := []string{header, ""}
	if len(m.history) == 0 {
		rows = append(rows, mutedStyle.Render("  No commands yet. Type 'help' for the command list."))
	}
	for _, entry := range m.history {
		status := successStyle.Render("✓ " + entry.Text)
		if entry.IsError {
			status = errorStyle.Render("✗ " + entry.Text)
		}
		rows = append(rows, fmt.Sprintf("%s  %s  %s",
			mutedStyle.Render(entry.At.Format("15:04:05")),
			entry.Input,
			status,
		))
	}

	prompt := "> " + string(m.input) + "█"
	if m.busy {
		prompt = mutedStyle.Render("sending...")
	}

	footer := mutedStyle.Render("Controls: [Enter] Send | [Esc/Ctrl+C] Quit | " + consoleHelp)

	rows = append(rows, "", prompt, "", footer)
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
