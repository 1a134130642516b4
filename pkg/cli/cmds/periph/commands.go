// Package periph exposes the peripheral commands of the bridge in the
// CLI. Numeric arguments accept Go literal syntax, so 0x4c and 76 both
// work.
package periph

import (
	"context"
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/emberone/bridge.go/pkg/cli/sh"
	"github.com/emberone/bridge.go/pkg/host"
)

func parseByte(arg string) (byte, error) {
	val, err := strconv.ParseUint(arg, 0, 8)
	if err != nil {
		return 0, err
	}
	return byte(val), nil
}

func parseBytes(args []string) ([]byte, error) {
	out := make([]byte, len(args))
	for n, arg := range args {
		b, err := parseByte(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid byte %q: %v", arg, err)
		}
		out[n] = b
	}
	return out, nil
}

var (
	// I2CWriteCmd writes bytes to an I2C device.
	I2CWriteCmd = ishell.Cmd{
		Name:    "i2c.write",
		Aliases: []string{"iw"},
		Help:    "ADDR [BYTE...]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("ADDR required"))
				return
			}
			args, err := parseBytes(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCall(c, func(ctx context.Context, client *host.Client) ([]byte, error) {
				return nil, client.I2CWrite(ctx, args[0], args[1:])
			})
		}),
	}

	// I2CReadCmd reads bytes from an I2C device.
	I2CReadCmd = ishell.Cmd{
		Name:    "i2c.read",
		Aliases: []string{"ir"},
		Help:    "ADDR COUNT",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("ADDR and COUNT required"))
				return
			}
			args, err := parseBytes(c.Args[:2])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCall(c, func(ctx context.Context, client *host.Client) ([]byte, error) {
				return client.I2CRead(ctx, args[0], args[1])
			})
		}),
	}

	// I2CReadWriteCmd runs a combined write-then-read transaction.
	I2CReadWriteCmd = ishell.Cmd{
		Name:    "i2c.readwrite",
		Aliases: []string{"irw"},
		Help:    "ADDR COUNT [WRITE-BYTE...]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("ADDR and COUNT required"))
				return
			}
			args, err := parseBytes(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCall(c, func(ctx context.Context, client *host.Client) ([]byte, error) {
				return client.I2CReadWrite(ctx, args[0], args[2:], args[1])
			})
		}),
	}

	// GPIOSetCmd drives an output pin.
	GPIOSetCmd = ishell.Cmd{
		Name:    "gpio.set",
		Aliases: []string{"gs"},
		Help:    "PIN LEVEL(0|1)",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("PIN and LEVEL required"))
				return
			}
			args, err := parseBytes(c.Args[:2])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCall(c, func(ctx context.Context, client *host.Client) ([]byte, error) {
				return nil, client.SetPin(ctx, args[0], args[1] != 0)
			})
		}),
	}

	// RawCmd sends an arbitrary frame, for poking at unassigned pages.
	RawCmd = ishell.Cmd{
		Name: "raw",
		Help: "PAGE COMMAND [DATA-BYTE...]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("PAGE and COMMAND required"))
				return
			}
			args, err := parseBytes(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCall(c, func(ctx context.Context, client *host.Client) ([]byte, error) {
				return client.DoCtx(ctx, args[0], args[1], args[2:])
			})
		}),
	}

	// LEDSetCmd sets the indicator color.
	LEDSetCmd = ishell.Cmd{
		Name:    "led.set",
		Aliases: []string{"ls"},
		Help:    "R G B",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 3 {
				c.Err(fmt.Errorf("R, G and B required"))
				return
			}
			args, err := parseBytes(c.Args[:3])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCall(c, func(ctx context.Context, client *host.Client) ([]byte, error) {
				return nil, client.SetLED(ctx, args[0], args[1], args[2])
			})
		}),
	}
)

func init() {
	sh.AddCmds(
		&I2CWriteCmd,
		&I2CReadCmd,
		&I2CReadWriteCmd,
		&GPIOSetCmd,
		&LEDSetCmd,
		&RawCmd,
	)
}
