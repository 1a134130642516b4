package wire

import "io"

// Pages select the peripheral subsystem addressed by a frame.
// 0x07 is unassigned and answered as an unknown page.
const (
	PageI2C  byte = 0x05
	PageGPIO byte = 0x06
	PageLED  byte = 0x08
)

// I2C operation selectors. For GPIO the command byte is overloaded as the
// pin number itself and has no selector constants.
const (
	I2CWrite     byte = 0x20
	I2CRead      byte = 0x30
	I2CReadWrite byte = 0x40
)

// LED operation selectors.
const (
	LEDSetColor byte = 0x10
)

// Response status carried in the bus position. Requests reserve it as 0x00.
const (
	StatusOK  byte = 0x00
	StatusErr byte = 0xff
)

// Error codes carried as the first data byte of an error response.
const (
	ErrCodeTimeout  byte = 0x10
	ErrCodeInvalid  byte = 0x11
	ErrCodeOverflow byte = 0x12
	ErrCodeMessage  byte = 0xff
)

// HeaderLen is the fixed byte count before data, length field included.
const HeaderLen = 6

// MaxFrameLen bounds the accepted total length of a single frame.
const MaxFrameLen = 4098

// Frame is one length-delimited command-channel message, request or
// response. The Bus field holds the reserved bus byte of a request or the
// status byte of a response.
type Frame struct {
	ID      byte
	Bus     byte
	Page    byte
	Command byte
	Data    []byte
}

// TotalLen is the wire length of the encoded frame, header included.
func (f *Frame) TotalLen() int {
	return HeaderLen + len(f.Data)
}

// Bytes returns encoded bytes for sending, with total_length recomputed
// from the actual data size.
func (f *Frame) Bytes() []byte {
	b := make([]byte, f.TotalLen())
	total := uint16(len(b))
	b[0], b[1] = byte(total), byte(total>>8)
	b[2], b[3], b[4], b[5] = f.ID, f.Bus, f.Page, f.Command
	copy(b[HeaderLen:], f.Data)
	return b
}

// WriteTo writes encoded bytes.
func (f *Frame) WriteTo(w io.Writer) (int, error) {
	return w.Write(f.Bytes())
}
