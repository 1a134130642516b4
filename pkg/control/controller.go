package control

import (
	"context"
	"sync"
	"time"

	"github.com/emberone/bridge.go/pkg/wire"
)

// DefaultI2CBudget bounds one I2C transaction so a stalled bus (e.g. a
// target stretching the clock indefinitely) aborts as a timeout error
// instead of hanging the shared execution context.
const DefaultI2CBudget = 100 * time.Millisecond

// Controller dispatches decoded request frames against the peripheral
// capabilities. Dispatch is a pure function of (frame, peripherals): no
// state is kept across frames, and each physical resource is held
// exclusively for the duration of one operation.
type Controller struct {
	Periph    Peripherals
	I2CBudget time.Duration

	i2cLock  sync.Mutex
	gpioLock sync.Mutex
	ledLock  sync.Mutex
}

// NewController creates a Controller with the default transaction budget.
func NewController(p Peripherals) *Controller {
	return &Controller{Periph: p, I2CBudget: DefaultI2CBudget}
}

// Dispatch executes one request and returns the correlated response.
// A bad frame never fails irrecoverably: unknown pages or commands,
// malformed data and peripheral failures all come back as error responses
// with the request id echoed.
func (c *Controller) Dispatch(ctx context.Context, req *wire.Frame) *wire.Frame {
	if req.Bus != 0x00 {
		return errResponse(req, wire.ErrCodeInvalid, "")
	}

	var (
		data []byte
		err  error
	)
	switch req.Page {
	case wire.PageI2C:
		data, err = c.handleI2C(ctx, req)
	case wire.PageGPIO:
		err = c.handleGPIO(req)
	case wire.PageLED:
		err = c.handleLED(req)
	default:
		err = errMalformed
	}
	if err != nil {
		return failureResponse(req, err)
	}
	return okResponse(req, data)
}

func (c *Controller) handleI2C(ctx context.Context, req *wire.Frame) ([]byte, error) {
	budget := c.I2CBudget
	if budget == 0 {
		budget = DefaultI2CBudget
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	c.i2cLock.Lock()
	defer c.i2cLock.Unlock()

	data := req.Data
	switch req.Command {
	case wire.I2CWrite:
		// [addr, byte...]
		if len(data) < 1 {
			return nil, errMalformed
		}
		return c.Periph.I2C.Tx(ctx, data[0], data[1:], 0)
	case wire.I2CRead:
		// [addr, count]
		if len(data) != 2 {
			return nil, errMalformed
		}
		return c.Periph.I2C.Tx(ctx, data[0], nil, int(data[1]))
	case wire.I2CReadWrite:
		// [addr, byte..., count]; two bytes means a zero-byte write
		// followed by a count-byte read.
		if len(data) < 2 {
			return nil, errMalformed
		}
		n := len(data)
		return c.Periph.I2C.Tx(ctx, data[0], data[1:n-1], int(data[n-1]))
	}
	return nil, errMalformed
}

func (c *Controller) handleGPIO(req *wire.Frame) error {
	// The command byte is the pin number itself; the bank validates it.
	if len(req.Data) != 1 {
		return errMalformed
	}
	c.gpioLock.Lock()
	defer c.gpioLock.Unlock()
	return c.Periph.GPIO.SetPin(req.Command, req.Data[0] != 0)
}

func (c *Controller) handleLED(req *wire.Frame) error {
	if req.Command != wire.LEDSetColor || len(req.Data) != 3 {
		return errMalformed
	}
	c.ledLock.Lock()
	defer c.ledLock.Unlock()
	return c.Periph.LED.SetColor(req.Data[0], req.Data[1], req.Data[2])
}
