package sim

import (
	"io"
	"sync"
)

// LoopbackUART echoes written bytes back to the reader, standing in for
// the downstream UART peripheral when no physical device is attached. When
// its buffer overruns, bytes are dropped and counted; buffer-overrun
// handling is a transport concern, not a bridge one.
type LoopbackUART struct {
	ch chan byte

	lock    sync.Mutex
	rate    int
	dropped int
	closed  bool
}

// NewLoopbackUART creates a LoopbackUART with a 4 KiB buffer.
func NewLoopbackUART() *LoopbackUART {
	return &LoopbackUART{ch: make(chan byte, 4096)}
}

// Read returns at least one echoed byte, draining what is available.
func (u *LoopbackUART) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	b, ok := <-u.ch
	if !ok {
		return 0, io.EOF
	}
	p[0] = b
	n := 1
	for n < len(p) {
		select {
		case b, ok := <-u.ch:
			if !ok {
				return n, nil
			}
			p[n] = b
			n++
		default:
			return n, nil
		}
	}
	return n, nil
}

// Write implements io.Writer. The lock keeps the send ordered against
// Close, so shutdown never races a write into a closed channel.
func (u *LoopbackUART) Write(p []byte) (int, error) {
	u.lock.Lock()
	defer u.lock.Unlock()
	if u.closed {
		return 0, io.ErrClosedPipe
	}
	for _, b := range p {
		select {
		case u.ch <- b:
		default:
			u.dropped++
		}
	}
	return len(p), nil
}

// Close ends the echo stream.
func (u *LoopbackUART) Close() error {
	u.lock.Lock()
	defer u.lock.Unlock()
	if !u.closed {
		u.closed = true
		close(u.ch)
	}
	return nil
}

// SetRate implements bridge.RateSetter by recording the mirrored rate.
func (u *LoopbackUART) SetRate(baud int) error {
	u.lock.Lock()
	u.rate = baud
	u.lock.Unlock()
	return nil
}

// Rate reports the last mirrored rate, zero if never set.
func (u *LoopbackUART) Rate() int {
	u.lock.Lock()
	defer u.lock.Unlock()
	return u.rate
}

// Dropped reports how many bytes were lost to buffer overrun.
func (u *LoopbackUART) Dropped() int {
	u.lock.Lock()
	defer u.lock.Unlock()
	return u.dropped
}
