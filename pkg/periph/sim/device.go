package sim

import (
	"context"
	"sync"
)

// MemDevice is a 256-register device with an auto-incrementing register
// pointer: a write sets the pointer from its first byte and stores the
// rest, a read returns bytes from the current pointer. This matches the
// register/address setup semantics of a readwrite transaction.
type MemDevice struct {
	lock sync.Mutex
	regs [256]byte
	ptr  byte
}

// NewMemDevice creates a zeroed MemDevice.
func NewMemDevice() *MemDevice {
	return &MemDevice{}
}

// Tx implements Device.
func (d *MemDevice) Tx(_ context.Context, w []byte, readLen int) ([]byte, error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if len(w) > 0 {
		d.ptr = w[0]
		for _, b := range w[1:] {
			d.regs[d.ptr] = b
			d.ptr++
		}
	}
	if readLen == 0 {
		return nil, nil
	}
	out := make([]byte, readLen)
	for i := range out {
		out[i] = d.regs[d.ptr]
		d.ptr++
	}
	return out, nil
}

// Poke stores a register value directly.
func (d *MemDevice) Poke(reg, val byte) {
	d.lock.Lock()
	d.regs[reg] = val
	d.lock.Unlock()
}

// Peek reads a register value directly.
func (d *MemDevice) Peek(reg byte) byte {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.regs[reg]
}

// StallDevice never completes a transaction, like a target stretching the
// clock until the transaction budget aborts it.
type StallDevice struct{}

// Tx implements Device.
func (StallDevice) Tx(ctx context.Context, _ []byte, _ int) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
