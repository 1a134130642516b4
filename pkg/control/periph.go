package control

import (
	"context"
	"errors"
)

// I2CBus performs one atomic transaction with a single device address:
// write the given bytes (if any), then read readLen bytes (if nonzero)
// without releasing the bus in between. Implementations may block for bus
// arbitration or clock stretch and must honor ctx cancellation.
type I2CBus interface {
	Tx(ctx context.Context, addr byte, w []byte, readLen int) ([]byte, error)
}

// GPIOBank sets output levels of the board's pins. A pin outside the
// board's valid range is an error, not a silent no-op.
type GPIOBank interface {
	SetPin(pin byte, high bool) error
}

// RGBLED sets the indicator's three color channels.
type RGBLED interface {
	SetColor(r, g, b byte) error
}

// ErrInvalidPin is returned by GPIOBank implementations for pins outside
// the board's valid range.
var ErrInvalidPin = errors.New("invalid pin")

// Peripherals bundles the capability handles consumed by the dispatcher.
// All mutable hardware state lives behind these interfaces.
type Peripherals struct {
	I2C  I2CBus
	GPIO GPIOBank
	LED  RGBLED
}
