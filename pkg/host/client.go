// Package host drives the bridge command channel from the host side.
package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/golang/glog"

	"github.com/emberone/bridge.go/pkg/wire"
)

// ErrNoReply indicates no response was received for a request.
// This happens when a response arrives for a later request; all earlier
// pending requests fail with this error.
var ErrNoReply = errors.New("no reply")

// CommandError is an error response from the bridge.
type CommandError struct {
	Code    byte
	Message string
}

// Error implements error.
func (e *CommandError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("bridge error %#02x: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("bridge error %#02x", e.Code)
}

// Result is the outcome of one command.
type Result struct {
	Err  error
	Data []byte
}

// Call is a pending command waiting for its response.
type Call struct {
	id       byte
	resultCh chan Result
	next     *Call
}

// ID returns the request id assigned to the call.
func (c *Call) ID() byte {
	return c.id
}

// ResultChan returns the chan to retrieve the result.
func (c *Call) ResultChan() <-chan Result {
	return c.resultCh
}

// Client assigns request ids, sends frames over the command channel and
// correlates responses back to pending calls. The bridge answers in
// request order, so correlation walks the pending queue front to back.
type Client struct {
	rw io.ReadWriter

	dec      wire.Decoder
	nextID   byte
	callHead *Call
	callTail *Call
	lock     sync.Mutex
}

// NewClient wraps a command-channel transport.
func NewClient(rw io.ReadWriter) *Client {
	return &Client{rw: rw, nextID: 1}
}

// Do sends one request and returns the pending Call.
func (c *Client) Do(page, command byte, data []byte) *Call {
	call := &Call{resultCh: make(chan Result, 1)}

	c.lock.Lock()
	defer c.lock.Unlock()
	// The id is an opaque token echoed by the bridge; wrap-around is fine
	// because correlation is queue-ordered, not uniqueness-checked.
	call.id = c.nextID
	c.nextID++
	if c.nextID == 0 {
		c.nextID = 1
	}
	req := &wire.Frame{ID: call.id, Page: page, Command: command, Data: data}
	if _, err := req.WriteTo(c.rw); err != nil {
		call.resultCh <- Result{Err: err}
		return call
	}
	if c.callHead == nil {
		c.callHead = call
	} else {
		c.callTail.next = call
	}
	c.callTail = call
	return call
}

// DoCtx sends one request and waits for its result or ctx expiry.
func (c *Client) DoCtx(ctx context.Context, page, command byte, data []byte) ([]byte, error) {
	call := c.Do(page, command, data)
	select {
	case res := <-call.ResultChan():
		return res.Data, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run reads and correlates responses until the transport fails or ctx
// ends. It implements framework.Runnable.
func (c *Client) Run(ctx context.Context) error {
	buf := make([]byte, 64)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n, err := c.rw.Read(buf)
		if err != nil {
			return err
		}
		for _, b := range buf[:n] {
			frame, err := c.dec.Feed(b)
			if err != nil {
				// The bridge should never misframe its responses;
				// resynchronize and keep going.
				glog.Warningf("response stream: %v", err)
				continue
			}
			if frame != nil {
				c.settle(frame)
			}
		}
	}
}

func (c *Client) settle(resp *wire.Frame) {
	c.lock.Lock()
	head := c.callHead
	curr := c.callHead
	for ; curr != nil; curr = curr.next {
		if curr.id == resp.ID {
			if c.callHead = curr.next; c.callHead == nil {
				c.callTail = nil
			}
			curr.next = nil
			break
		}
	}
	c.lock.Unlock()
	if curr == nil {
		return
	}
	for ; head != curr; head = head.next {
		head.resultCh <- Result{Err: ErrNoReply}
	}
	if resp.Bus == wire.StatusErr {
		curr.resultCh <- Result{Err: commandErrorFrom(resp.Data)}
		return
	}
	curr.resultCh <- Result{Data: resp.Data}
}

func commandErrorFrom(data []byte) *CommandError {
	e := &CommandError{Code: wire.ErrCodeMessage}
	if len(data) > 0 {
		e.Code = data[0]
		e.Message = string(data[1:])
	}
	return e
}
