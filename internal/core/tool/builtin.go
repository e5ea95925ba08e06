package tool

// Names of the built-in tools
const (
	StartTimer  = "start_timer"
	ResetTimer  = "reset_timer"
	CancelTimer = "cancel_timer"
)

func labelProperty(description string) Property {
	return Property{
		Name:        "label",
		Type:        "string",
		Description: description,
		Required:    true,
		MinLength:   intPtr(1),
	}
}

// NewBuiltinRegistry returns the registry holding start_timer, reset_timer and cancel_timer
func NewBuiltinRegistry() (*Registry, error) {
	start, err := NewDescriptor(
		StartTimer,
		"Start or restart a named sand timer.",
		Schema{Properties: []Property{
			labelProperty("Human readable timer name."),
			{
				Name:        "time",
				Type:        "integer",
				Description: "Duration of the timer in seconds.",
				Required:    true,
				Minimum:     intPtr(1),
			},
		}},
		func(values map[string]interface{}) (Arguments, error) {
			label, err := requireLabel(values, "label")
			if err != nil {
				return nil, err
			}
			seconds, err := requireSeconds(values, "time", 1)
			if err != nil {
				return nil, err
			}
			return StartTimerArgs{Label: label, Seconds: seconds}, nil
		},
	)
	if err != nil {
		return nil, err
	}

	reset, err := NewDescriptor(
		ResetTimer,
		"Reset an existing sand timer to its original duration.",
		Schema{Properties: []Property{labelProperty("Timer name to reset.")}},
		func(values map[string]interface{}) (Arguments, error) {
			label, err := requireLabel(values, "label")
			if err != nil {
				return nil, err
			}
			return ResetTimerArgs{Label: label}, nil
		},
	)
	if err != nil {
		return nil, err
	}

	cancel, err := NewDescriptor(
		CancelTimer,
		"Cancel and close a sand timer window.",
		Schema{Properties: []Property{labelProperty("Timer name to cancel.")}},
		func(values map[string]interface{}) (Arguments, error) {
			label, err := requireLabel(values, "label")
			if err != nil {
				return nil, err
			}
			return CancelTimerArgs{Label: label}, nil
		},
	)
	if err != nil {
		return nil, err
	}

	return NewRegistry(start, reset, cancel)
}
