package control

import (
	"context"

	"github.com/emberone/bridge.go/pkg/wire"
)

// maxErrDetail caps the ASCII detail attached to failure responses so an
// error response always fits the framing bound.
const maxErrDetail = 128

func okResponse(req *wire.Frame, data []byte) *wire.Frame {
	return &wire.Frame{
		ID:      req.ID,
		Bus:     wire.StatusOK,
		Page:    req.Page,
		Command: req.Command,
		Data:    data,
	}
}

func errResponse(req *wire.Frame, code byte, msg string) *wire.Frame {
	if len(msg) > maxErrDetail {
		msg = msg[:maxErrDetail]
	}
	data := make([]byte, 0, 1+len(msg))
	data = append(data, code)
	data = append(data, msg...)
	return &wire.Frame{
		ID:      req.ID,
		Bus:     wire.StatusErr,
		Page:    req.Page,
		Command: req.Command,
		Data:    data,
	}
}

func failureResponse(req *wire.Frame, err error) *wire.Frame {
	if cmdErr, ok := err.(*CommandError); ok {
		return errResponse(req, cmdErr.Code, cmdErr.Message)
	}
	if err == context.DeadlineExceeded {
		return errResponse(req, wire.ErrCodeTimeout, "")
	}
	return errResponse(req, wire.ErrCodeMessage, err.Error())
}
