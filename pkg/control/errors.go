package control

import (
	"fmt"

	"github.com/emberone/bridge.go/pkg/wire"
)

// CommandError carries the wire error code for an error response.
type CommandError struct {
	Code    byte
	Message string
}

// Error implements error.
func (e *CommandError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("command error %#02x: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("command error %#02x", e.Code)
}

// errMalformed rejects frames whose page, command or data shape is not in
// the protocol table.
var errMalformed = &CommandError{Code: wire.ErrCodeInvalid}
