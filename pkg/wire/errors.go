package wire

// FramingError indicates the byte stream violated the length-driven
// framing. It is recovered locally by discarding the partial frame and
// resynchronizing on the next length field; there is no valid id to answer,
// so it never becomes a response.
type FramingError struct {
	msg string
}

// Error implements error.
func (e *FramingError) Error() string {
	return e.msg
}

var (
	// ErrLengthBelowMin reports a declared total length below the header size.
	ErrLengthBelowMin = &FramingError{msg: "declared length below minimum"}
	// ErrFrameTooLarge reports a declared total length beyond MaxFrameLen.
	ErrFrameTooLarge = &FramingError{msg: "declared length exceeds receive bound"}
	// ErrFrameAbandoned reports a partial frame dropped after channel idle.
	ErrFrameAbandoned = &FramingError{msg: "partial frame abandoned on idle"}
)

// IsFraming reports whether err is a FramingError.
func IsFraming(err error) bool {
	_, ok := err.(*FramingError)
	return ok
}
