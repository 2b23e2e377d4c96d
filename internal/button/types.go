// Package button contains the debounce and press-classification state machine
// for a single push button.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time source).
// Time is counted in ticks: one call to Tick is one tick.
package button

// State is the position of the debounce state machine.
type State uint8

const (
	Released State = iota
	DebouncingPress
	Held
	DebouncingRelease
)

func (s State) String() string {
	switch s {
	case Released:
		return "RELEASED"
	case DebouncingPress:
		return "DEBOUNCING_PRESS"
	case Held:
		return "HELD"
	case DebouncingRelease:
		return "DEBOUNCING_RELEASE"
	}
	return "UNKNOWN"
}

// Mode is fixed at initialization and decides when a short press is reported.
type Mode uint8

const (
	// ShortPressMode reports a short press as soon as the press is debounced.
	ShortPressMode Mode = iota
	// LongPressMode reports a long press once the hold reaches the long-press
	// threshold, and a short press on release if it never did.
	LongPressMode
)

func (m Mode) String() string {
	if m == LongPressMode {
		return "LONG_PRESS"
	}
	return "SHORT_PRESS"
}

// Event names a sticky flag raised by the state machine.
type Event string

const (
	EventButtonDown Event = "BUTTON_DOWN"
	EventButtonUp   Event = "BUTTON_UP"
	EventShortPress Event = "SHORT_PRESS"
	EventLongPress  Event = "LONG_PRESS"
)

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	ButtonDown int
	ButtonUp   int
	ShortPress int
	LongPress  int
}

// Add increments the counter for e.
func (c *EventCounts) Add(e Event) {
	switch e {
	case EventButtonDown:
		c.ButtonDown++
	case EventButtonUp:
		c.ButtonUp++
	case EventShortPress:
		c.ShortPress++
	case EventLongPress:
		c.LongPress++
	}
}
