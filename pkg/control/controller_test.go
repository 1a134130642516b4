package control_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/emberone/bridge.go/pkg/control"
	"github.com/emberone/bridge.go/pkg/periph/sim"
	"github.com/emberone/bridge.go/pkg/wire"
)

type testRig struct {
	ctrl *control.Controller
	dev  *sim.MemDevice
	bank *sim.PinBank
	led  *sim.LED
}

func newTestRig() *testRig {
	rig := &testRig{
		dev:  sim.NewMemDevice(),
		bank: sim.NewPinBank(4),
		led:  sim.NewLED(),
	}
	bus := sim.NewBus().
		AddDevice(0x4c, rig.dev).
		AddDevice(0x4f, rig.dev).
		AddDevice(0x32, rig.dev).
		AddDevice(0x66, sim.StallDevice{})
	rig.ctrl = control.NewController(control.Peripherals{I2C: bus, GPIO: rig.bank, LED: rig.led})
	rig.ctrl.I2CBudget = 20 * time.Millisecond
	return rig
}

func (r *testRig) dispatch(req *wire.Frame) *wire.Frame {
	return r.ctrl.Dispatch(context.TODO(), req)
}

func TestDispatchSuccess(t *testing.T) {
	testCases := []struct {
		name    string
		prepare func(*testRig)
		req     wire.Frame
		expect  []byte // full response wire bytes
		check   func(*testing.T, *testRig)
	}{
		{
			name:   "i2c write",
			req:    wire.Frame{ID: 0x01, Page: wire.PageI2C, Command: wire.I2CWrite, Data: []byte{0x4f, 0xde}},
			expect: []byte{0x06, 0x00, 0x01, 0x00, 0x05, 0x20},
		},
		{
			name: "i2c read",
			prepare: func(r *testRig) {
				// Point the register pointer at a known value first.
				r.dev.Poke(0x00, 0x42)
			},
			req:    wire.Frame{ID: 0x01, Page: wire.PageI2C, Command: wire.I2CRead, Data: []byte{0x4c, 0x01}},
			expect: []byte{0x07, 0x00, 0x01, 0x00, 0x05, 0x30, 0x42},
		},
		{
			name: "i2c readwrite",
			prepare: func(r *testRig) {
				r.dev.Poke(0xfe, 0xab)
				r.dev.Poke(0xff, 0xcd)
			},
			req:    wire.Frame{ID: 0x01, Page: wire.PageI2C, Command: wire.I2CReadWrite, Data: []byte{0x32, 0xfe, 0x02}},
			expect: []byte{0x08, 0x00, 0x01, 0x00, 0x05, 0x40, 0xab, 0xcd},
		},
		{
			name: "i2c readwrite zero write bytes",
			prepare: func(r *testRig) {
				r.dev.Poke(0x00, 0x99)
			},
			req:    wire.Frame{ID: 0x02, Page: wire.PageI2C, Command: wire.I2CReadWrite, Data: []byte{0x4c, 0x01}},
			expect: []byte{0x07, 0x00, 0x02, 0x00, 0x05, 0x40, 0x99},
		},
		{
			name:   "gpio set pin high",
			req:    wire.Frame{ID: 0x03, Page: wire.PageGPIO, Command: 0x01, Data: []byte{0x01}},
			expect: []byte{0x06, 0x00, 0x03, 0x00, 0x06, 0x01},
			check: func(t *testing.T, r *testRig) {
				require.True(t, r.bank.Pin(1))
			},
		},
		{
			name:   "led set magenta",
			req:    wire.Frame{Page: wire.PageLED, Command: wire.LEDSetColor, Data: []byte{0xff, 0x00, 0xff}},
			expect: []byte{0x06, 0x00, 0x00, 0x00, 0x08, 0x10},
			check: func(t *testing.T, r *testRig) {
				cr, cg, cb := r.led.Color()
				require.Equal(t, []byte{0xff, 0x00, 0xff}, []byte{cr, cg, cb})
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rig := newTestRig()
			if tc.prepare != nil {
				tc.prepare(rig)
			}
			resp := rig.dispatch(&tc.req)
			require.Equal(t, tc.expect, resp.Bytes())
			require.Equal(t, tc.req.ID, resp.ID)
			if tc.check != nil {
				tc.check(t, rig)
			}
		})
	}
}

func TestDispatchErrors(t *testing.T) {
	testCases := []struct {
		name string
		req  wire.Frame
		code byte
	}{
		{"unknown page", wire.Frame{ID: 5, Page: 0x07, Command: 0x01}, wire.ErrCodeInvalid},
		{"unknown i2c command", wire.Frame{ID: 5, Page: wire.PageI2C, Command: 0x50, Data: []byte{0x4c}}, wire.ErrCodeInvalid},
		{"nonzero bus", wire.Frame{ID: 5, Bus: 0x01, Page: wire.PageLED, Command: wire.LEDSetColor, Data: []byte{1, 2, 3}}, wire.ErrCodeInvalid},
		{"i2c write without address", wire.Frame{ID: 5, Page: wire.PageI2C, Command: wire.I2CWrite}, wire.ErrCodeInvalid},
		{"i2c read wrong shape", wire.Frame{ID: 5, Page: wire.PageI2C, Command: wire.I2CRead, Data: []byte{0x4c}}, wire.ErrCodeInvalid},
		{"i2c readwrite short", wire.Frame{ID: 5, Page: wire.PageI2C, Command: wire.I2CReadWrite, Data: []byte{0x4c}}, wire.ErrCodeInvalid},
		{"i2c absent device", wire.Frame{ID: 5, Page: wire.PageI2C, Command: wire.I2CRead, Data: []byte{0x11, 0x01}}, wire.ErrCodeMessage},
		{"i2c stalled transaction", wire.Frame{ID: 5, Page: wire.PageI2C, Command: wire.I2CRead, Data: []byte{0x66, 0x01}}, wire.ErrCodeTimeout},
		{"gpio invalid pin", wire.Frame{ID: 5, Page: wire.PageGPIO, Command: 0x1d, Data: []byte{0x01}}, wire.ErrCodeMessage},
		{"gpio wrong shape", wire.Frame{ID: 5, Page: wire.PageGPIO, Command: 0x01, Data: []byte{0x01, 0x02}}, wire.ErrCodeInvalid},
		{"led wrong length", wire.Frame{ID: 5, Page: wire.PageLED, Command: wire.LEDSetColor, Data: []byte{1, 2}}, wire.ErrCodeInvalid},
		{"led unknown command", wire.Frame{ID: 5, Page: wire.PageLED, Command: 0x20, Data: []byte{1, 2, 3}}, wire.ErrCodeInvalid},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rig := newTestRig()
			resp := rig.dispatch(&tc.req)
			require.Equal(t, tc.req.ID, resp.ID, "id must correlate on error")
			require.Equal(t, tc.req.Page, resp.Page)
			require.Equal(t, tc.req.Command, resp.Command)
			require.Equal(t, wire.StatusErr, resp.Bus)
			require.NotEmpty(t, resp.Data)
			require.Equal(t, tc.code, resp.Data[0])

			// A bad frame must not poison the next one.
			ok := rig.dispatch(&wire.Frame{ID: 6, Page: wire.PageLED, Command: wire.LEDSetColor, Data: []byte{9, 9, 9}})
			require.Equal(t, wire.StatusOK, ok.Bus)
			require.Empty(t, ok.Data)
		})
	}
}

func TestEffectCommandsIdempotent(t *testing.T) {
	rig := newTestRig()

	gpio := wire.Frame{ID: 0x0a, Page: wire.PageGPIO, Command: 0x02, Data: []byte{0x01}}
	first := rig.dispatch(&gpio)
	second := rig.dispatch(&gpio)
	require.Equal(t, first.Bytes(), second.Bytes())
	require.Empty(t, second.Data)
	require.True(t, rig.bank.Pin(2))

	led := wire.Frame{ID: 0x0b, Page: wire.PageLED, Command: wire.LEDSetColor, Data: []byte{0x10, 0x20, 0x30}}
	first = rig.dispatch(&led)
	second = rig.dispatch(&led)
	require.Equal(t, first.Bytes(), second.Bytes())
	r, g, b := rig.led.Color()
	require.Equal(t, []byte{0x10, 0x20, 0x30}, []byte{r, g, b})
}
