// Package serial provides a serial port transport whose baud rate can
// be changed while the port stays open from the caller's view.
package serial

import (
	"errors"
	"sync"

	tarm "github.com/tarm/serial"
)

// ErrClosed indicates the port has been closed.
var ErrClosed = errors.New("serial port closed")

// Port wraps a serial device. SetRate reopens the device at the new
// baud rate under the covers while readers and writers keep using the
// same Port value.
type Port struct {
	device string

	port *tarm.Port
	baud int
	lock sync.Mutex
}

// Open opens the serial device at the given baud rate.
func Open(device string, baud int) (*Port, error) {
	port, err := tarm.OpenPort(&tarm.Config{Name: device, Baud: baud})
	if err != nil {
		return nil, err
	}
	return &Port{device: device, port: port, baud: baud}, nil
}

func (p *Port) current() (*tarm.Port, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.port == nil {
		return nil, ErrClosed
	}
	return p.port, nil
}

// Read implements io.Reader.
func (p *Port) Read(b []byte) (int, error) {
	port, err := p.current()
	if err != nil {
		return 0, err
	}
	return port.Read(b)
}

// Write implements io.Writer.
func (p *Port) Write(b []byte) (int, error) {
	port, err := p.current()
	if err != nil {
		return 0, err
	}
	return port.Write(b)
}

// Rate returns the current baud rate.
func (p *Port) Rate() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.baud
}

// SetRate reopens the device at a new baud rate.
func (p *Port) SetRate(rate int) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.port == nil {
		return ErrClosed
	}
	if rate == p.baud {
		return nil
	}
	if err := p.port.Close(); err != nil {
		return err
	}
	port, err := tarm.OpenPort(&tarm.Config{Name: p.device, Baud: rate})
	if err != nil {
		p.port = nil
		return err
	}
	p.port, p.baud = port, rate
	return nil
}

// Close implements io.Closer.
func (p *Port) Close() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.port == nil {
		return nil
	}
	err := p.port.Close()
	p.port = nil
	return err
}
