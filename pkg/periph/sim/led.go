package sim

import "sync"

// LED is a simulated RGB indicator.
type LED struct {
	lock    sync.Mutex
	r, g, b byte
}

// NewLED creates an LED with all channels off.
func NewLED() *LED {
	return &LED{}
}

// SetColor implements control.RGBLED.
func (l *LED) SetColor(r, g, b byte) error {
	l.lock.Lock()
	l.r, l.g, l.b = r, g, b
	l.lock.Unlock()
	return nil
}

// Color reports the current channel values.
func (l *LED) Color() (r, g, b byte) {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.r, l.g, l.b
}
