package host

import (
	"context"

	"github.com/emberone/bridge.go/pkg/wire"
)

// I2CWrite writes data to the I2C device at addr.
func (c *Client) I2CWrite(ctx context.Context, addr byte, data []byte) error {
	payload := append([]byte{addr}, data...)
	_, err := c.DoCtx(ctx, wire.PageI2C, wire.I2CWrite, payload)
	return err
}

// I2CRead reads count bytes from the I2C device at addr.
func (c *Client) I2CRead(ctx context.Context, addr, count byte) ([]byte, error) {
	return c.DoCtx(ctx, wire.PageI2C, wire.I2CRead, []byte{addr, count})
}

// I2CReadWrite writes w to the device at addr (register/address setup) and
// reads count bytes back in a single transaction.
func (c *Client) I2CReadWrite(ctx context.Context, addr byte, w []byte, count byte) ([]byte, error) {
	payload := make([]byte, 0, len(w)+2)
	payload = append(payload, addr)
	payload = append(payload, w...)
	payload = append(payload, count)
	return c.DoCtx(ctx, wire.PageI2C, wire.I2CReadWrite, payload)
}

// SetPin sets the output level of a GPIO pin. The pin number rides in the
// command byte per the protocol.
func (c *Client) SetPin(ctx context.Context, pin byte, high bool) error {
	level := byte(0)
	if high {
		level = 1
	}
	_, err := c.DoCtx(ctx, wire.PageGPIO, pin, []byte{level})
	return err
}

// SetLED sets the indicator color.
func (c *Client) SetLED(ctx context.Context, r, g, b byte) error {
	_, err := c.DoCtx(ctx, wire.PageLED, wire.LEDSetColor, []byte{r, g, b})
	return err
}
