//go:build linux

package gpio

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads the button from actual hardware using the Linux GPIO
// character device.
type RealReader struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealReader requests the configured line as an input.
func NewRealReader(cfg LineConfig) (*RealReader, error) {
	bias, err := biasOption(cfg.Bias)
	if err != nil {
		return nil, err
	}

	chip, err := gpiocdev.NewChip(cfg.Chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", cfg.Chip, err)
	}

	opts := []gpiocdev.LineReqOption{gpiocdev.AsInput, bias}
	if cfg.ActiveLow {
		// Let the kernel invert so Value() already reports "pressed".
		opts = append(opts, gpiocdev.AsActiveLow)
	}

	line, err := chip.RequestLine(cfg.Line, opts...)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request line %d: %w", cfg.Line, err)
	}

	return &RealReader{
		chip: chip,
		line: line,
	}, nil
}

func biasOption(b Bias) (gpiocdev.LineReqOption, error) {
	switch b {
	case BiasPullUp:
		return gpiocdev.WithPullUp, nil
	case BiasPullDown, "":
		return gpiocdev.WithPullDown, nil
	case BiasDisabled:
		return gpiocdev.WithBiasDisabled, nil
	}
	return nil, fmt.Errorf("gpio: unknown bias %q", b)
}

// Read returns true while the line is logically active.
func (r *RealReader) Read() (bool, error) {
	v, err := r.line.Value()
	if err != nil {
		return false, fmt.Errorf("read line: %w", err)
	}
	return v == 1, nil
}

// Close releases GPIO resources.
// The line is returned to input with pull-down (Pi boot default) before
// closing so an attached button cannot hold it in an odd state across reboot.
func (r *RealReader) Close() error {
	var errs []error

	if r.line != nil {
		if err := r.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure line: %w", err))
		}
		if err := r.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %w", errors.Join(errs...))
	}
	return nil
}
