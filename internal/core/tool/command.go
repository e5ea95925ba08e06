package tool

import "fmt"

// Action is the bridge verb sent to the timer application
type Action string

const (
	ActionStart  Action = "start"
	ActionReset  Action = "reset"
	ActionCancel Action = "cancel"
)

// Command is a bridge command derived 1:1 from validated tool arguments.
// Its JSON form is the bridge wire format.
type Command struct {
	Action  Action `json:"cmd"`
	Label   string `json:"label"`
	Seconds int    `json:"time,omitempty"`
}

// String returns a human-readable representation of the command
func (c Command) String() string {
	if c.Action == ActionStart {
		return fmt.Sprintf("%s %q %ds", c.Action, c.Label, c.Seconds)
	}
	return fmt.Sprintf("%s %q", c.Action, c.Label)
}

// Arguments is implemented by the validated argument struct of each tool
type Arguments interface {
	// Command builds the bridge command for these arguments
	Command() Command

	// SuccessText is the message returned to the client once the command was delivered
	SuccessText() string
}

// StartTimerArgs are the validated arguments of start_timer
type StartTimerArgs struct {
	Label   string
	Seconds int
}

func (a StartTimerArgs) Command() Command {
	return Command{Action: ActionStart, Label: a.Label, Seconds: a.Seconds}
}

func (a StartTimerArgs) SuccessText() string {
	return fmt.Sprintf("Timer '%s' started for %d seconds.", a.Label, a.Seconds)
}

// ResetTimerArgs are the validated arguments of reset_timer
type ResetTimerArgs struct {
	Label string
}

func (a ResetTimerArgs) Command() Command {
	return Command{Action: ActionReset, Label: a.Label}
}

func (a ResetTimerArgs) SuccessText() string {
	return fmt.Sprintf("Timer '%s' reset.", a.Label)
}

// CancelTimerArgs are the validated arguments of cancel_timer
type CancelTimerArgs struct {
	Label string
}

func (a CancelTimerArgs) Command() Command {
	return Command{Action: ActionCancel, Label: a.Label}
}

func (a CancelTimerArgs) SuccessText() string {
	return fmt.Sprintf("Timer '%s' canceled.", a.Label)
}
