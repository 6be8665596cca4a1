// types holds the small shared value types the luxd services exchange
// over datapipes.
package types

// DisplayState is the current state of the display as published on the
// display_state pipe.
type DisplayState int

const (
	DisplayUndef DisplayState = iota
	DisplayOff
	DisplayLPMOff
	DisplayLPMOn
	DisplayDim
	DisplayOn
)

func (s DisplayState) String() string {
	switch s {
	case DisplayOff:
		return "off"
	case DisplayLPMOff:
		return "lpm-off"
	case DisplayLPMOn:
		return "lpm-on"
	case DisplayDim:
		return "dim"
	case DisplayOn:
		return "on"
	default:
		return "undef"
	}
}

// Dark reports whether the display is off or in a low-power mode, i.e.
// the backlight is not driven and ambient samples go stale.
func (s DisplayState) Dark() bool {
	return s == DisplayOff || s == DisplayLPMOff || s == DisplayLPMOn
}

// Lit reports whether the display is on or dimmed.
func (s DisplayState) Lit() bool {
	return s == DisplayOn || s == DisplayDim
}

// CoverState is the proximity-sensor cover state.
type CoverState int

const (
	CoverUndef CoverState = iota
	CoverOpen
	CoverClosed
)

// Consumer identifies a brightness consumer with its own ALS level.
type Consumer int

const (
	ConsumerDisplay Consumer = iota
	ConsumerLED
	ConsumerKeyboard

	NumConsumers = 3
)

func (c Consumer) String() string {
	switch c {
	case ConsumerDisplay:
		return "display"
	case ConsumerLED:
		return "led"
	case ConsumerKeyboard:
		return "keyboard"
	default:
		return "unknown"
	}
}

// StepPolicy selects how brightness step-downs are applied.
type StepPolicy int

const (
	// StepDirect applies a step-down as soon as the delay elapses.
	StepDirect StepPolicy = iota
	// StepUnblank defers step-downs until the next blank->unblank cycle.
	StepUnblank
)

// ParseStepPolicy maps the settings-store string to a policy,
// falling back to StepDirect for unknown values.
func ParseStepPolicy(s string) StepPolicy {
	if s == "unblank" {
		return StepUnblank
	}
	return StepDirect
}

func (p StepPolicy) String() string {
	if p == StepUnblank {
		return "unblank"
	}
	return "direct"
}
