package sim

import (
	"sync"

	"github.com/emberone/bridge.go/pkg/control"
)

// PinBank is a simulated GPIO bank of output pins numbered from zero.
type PinBank struct {
	lock   sync.Mutex
	levels []bool
}

// NewPinBank creates a bank with numPins valid pins, all low.
func NewPinBank(numPins int) *PinBank {
	return &PinBank{levels: make([]bool, numPins)}
}

// SetPin implements control.GPIOBank.
func (b *PinBank) SetPin(pin byte, high bool) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	if int(pin) >= len(b.levels) {
		return control.ErrInvalidPin
	}
	b.levels[pin] = high
	return nil
}

// Pin reports the last applied level; false for pins out of range.
func (b *PinBank) Pin(pin byte) bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	if int(pin) >= len(b.levels) {
		return false
	}
	return b.levels[pin]
}
