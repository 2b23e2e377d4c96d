// Package gpio provides the sampled button input with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Reader reads the button input.
type Reader interface {
	// Read returns true while the button is pressed.
	// Polarity is already normalized: an active-low line reads true when low.
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Defaults for a Raspberry Pi header.
const (
	DefaultChip = "gpiochip0"
	DefaultLine = 17 // BCM17, header pin 11
)

// Bias is the internal resistor applied to the input line.
type Bias string

const (
	BiasPullUp   Bias = "pull-up"
	BiasPullDown Bias = "pull-down"
	BiasDisabled Bias = "disabled"
)

// LineConfig selects and configures the input line.
type LineConfig struct {
	Chip      string
	Line      int
	Bias      Bias
	ActiveLow bool
}
