// Package sim provides in-memory peripheral backends implementing the
// control capability interfaces. They stand in for the physical drivers,
// which live outside this core.
package sim

import (
	"context"
	"errors"
	"sync"
)

// ErrNoDevice is the simulated equivalent of an address NACK.
var ErrNoDevice = errors.New("no device at address")

// Device models one I2C target able to serve a single transaction.
type Device interface {
	Tx(ctx context.Context, w []byte, readLen int) ([]byte, error)
}

// Bus is an in-memory I2C bus with addressable devices.
type Bus struct {
	lock    sync.Mutex
	devices map[byte]Device
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{devices: make(map[byte]Device)}
}

// AddDevice attaches a device at the given 7-bit address, replacing any
// previous occupant.
func (b *Bus) AddDevice(addr byte, d Device) *Bus {
	b.lock.Lock()
	b.devices[addr] = d
	b.lock.Unlock()
	return b
}

// Tx implements control.I2CBus.
func (b *Bus) Tx(ctx context.Context, addr byte, w []byte, readLen int) ([]byte, error) {
	b.lock.Lock()
	d := b.devices[addr]
	b.lock.Unlock()
	if d == nil {
		return nil, ErrNoDevice
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return d.Tx(ctx, w, readLen)
}
