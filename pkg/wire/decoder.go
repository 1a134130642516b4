package wire

// Decoder assembles frames from the command channel one byte at a time.
// It exclusively owns the in-progress accumulation; a completed frame is
// handed off by value and the internal state reset for the next frame.
type Decoder struct {
	state decodeState
	total int
	frame Frame
	recv  int
}

type decodeState int

const (
	stateLengthLo decodeState = iota
	stateLengthHi
	stateID
	stateBus
	statePage
	stateCommand
	stateData
)

// Feed consumes one received byte and produces at most one complete frame
// or framing error; otherwise it accumulates silently. After either
// outcome the decoder is resynchronized on the next length field.
func (d *Decoder) Feed(b byte) (*Frame, error) {
	switch d.state {
	case stateLengthLo:
		d.total = int(b)
		d.state = stateLengthHi
	case stateLengthHi:
		d.total |= int(b) << 8
		if d.total < HeaderLen {
			d.Reset()
			return nil, ErrLengthBelowMin
		}
		if d.total > MaxFrameLen {
			d.Reset()
			return nil, ErrFrameTooLarge
		}
		d.state = stateID
	case stateID:
		d.frame.ID = b
		d.state = stateBus
	case stateBus:
		d.frame.Bus = b
		d.state = statePage
	case statePage:
		d.frame.Page = b
		d.state = stateCommand
	case stateCommand:
		d.frame.Command = b
		if d.total == HeaderLen {
			return d.frameReady(), nil
		}
		d.frame.Data = make([]byte, d.total-HeaderLen)
		d.recv = 0
		d.state = stateData
	case stateData:
		d.frame.Data[d.recv] = b
		d.recv++
		if d.recv == len(d.frame.Data) {
			return d.frameReady(), nil
		}
	}
	return nil, nil
}

// Receiving reports whether a frame is partially accumulated.
func (d *Decoder) Receiving() bool {
	return d.state != stateLengthLo
}

// Timeout abandons a partially accumulated frame after channel idle.
// It returns a framing error when a partial frame was dropped, nil when
// the decoder was already between frames.
func (d *Decoder) Timeout() error {
	if !d.Receiving() {
		return nil
	}
	d.Reset()
	return ErrFrameAbandoned
}

// Reset discards accumulated state and resynchronizes on a length field.
func (d *Decoder) Reset() {
	d.state = stateLengthLo
	d.total = 0
	d.frame = Frame{}
	d.recv = 0
}

func (d *Decoder) frameReady() *Frame {
	f := d.frame
	d.Reset()
	return &f
}
