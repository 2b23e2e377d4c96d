//go:build !linux

package gpio

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned by RealReader off Linux, where there is no GPIO
// character device.
var ErrUnsupported = errors.New("gpio: character device requires linux")

type RealReader struct{}

func NewRealReader(cfg LineConfig) (*RealReader, error) {
	return nil, fmt.Errorf("%s line %d: %w", cfg.Chip, cfg.Line, ErrUnsupported)
}

func (r *RealReader) Read() (bool, error) { return false, ErrUnsupported }

func (r *RealReader) Close() error { return nil }
