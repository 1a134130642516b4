package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/emberone/bridge.go/pkg/bridge"
	"github.com/emberone/bridge.go/pkg/control"
	fx "github.com/emberone/bridge.go/pkg/framework"
	"github.com/emberone/bridge.go/pkg/periph/sim"
	"github.com/emberone/bridge.go/pkg/transport"
)

var conf = struct {
	CommandURL  string
	DataURL     string
	UARTURL     string
	Pins        int
	I2CDevices  string
	I2CBudget   time.Duration
	IdleTimeout time.Duration
}{
	CommandURL:  "tcp-listen://:7770",
	DataURL:     "tcp-listen://:7771",
	UARTURL:     "loopback:",
	Pins:        30,
	I2CDevices:  "0x4c",
	I2CBudget:   control.DefaultI2CBudget,
	IdleTimeout: bridge.DefaultIdleTimeout,
}

func init() {
	flag.StringVar(&conf.CommandURL, "cmd", conf.CommandURL, "Command channel URL.")
	flag.StringVar(&conf.DataURL, "data", conf.DataURL, "Data channel URL.")
	flag.StringVar(&conf.UARTURL, "uart", conf.UARTURL, "UART URL, or loopback: for a loopback device.")
	flag.IntVar(&conf.Pins, "pins", conf.Pins, "Number of GPIO pins.")
	flag.StringVar(&conf.I2CDevices, "i2c-dev", conf.I2CDevices, "Comma separated I2C addresses to simulate.")
	flag.DurationVar(&conf.I2CBudget, "i2c-budget", conf.I2CBudget, "Time budget per I2C transaction.")
	flag.DurationVar(&conf.IdleTimeout, "idle-timeout", conf.IdleTimeout, "Idle timeout for partial command frames.")
}

// endpointCloser closes whichever endpoints are closable, so a stop
// request unblocks the service's pending reads.
type endpointCloser []io.ReadWriter

func (e endpointCloser) Close() error {
	var errs fx.AggregatedError
	for _, ep := range e {
		if closer, ok := ep.(io.Closer); ok {
			errs.Add(closer.Close())
		}
	}
	return errs.Aggregate()
}

func mustDial(rawurl string) io.ReadWriter {
	if rawurl == "loopback:" {
		return sim.NewLoopbackUART()
	}
	rwc, err := transport.Dial(rawurl)
	if err != nil {
		glog.Exitf("dial %q: %v", rawurl, err)
	}
	return rwc
}

func newBus() *sim.Bus {
	bus := sim.NewBus()
	for _, item := range strings.Split(conf.I2CDevices, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		addr, err := strconv.ParseUint(item, 0, 7)
		if err != nil {
			glog.Exitf("bad i2c address %q: %v", item, err)
		}
		bus.AddDevice(byte(addr), sim.NewMemDevice())
	}
	return bus
}

func main() {
	flag.Parse()

	ctrl := control.NewController(control.Peripherals{
		I2C:  newBus(),
		GPIO: sim.NewPinBank(conf.Pins),
		LED:  sim.NewLED(),
	})
	ctrl.I2CBudget = conf.I2CBudget

	cmdEnd := mustDial(conf.CommandURL)
	dataEnd := mustDial(conf.DataURL)
	uartEnd := mustDial(conf.UARTURL)

	svc := bridge.NewService(cmdEnd, dataEnd, uartEnd, ctrl)
	svc.IdleTimeout = conf.IdleTimeout

	run := fx.RunFunc(func(ctx context.Context) error {
		return fx.RunWithContextCloser(ctx, endpointCloser{cmdEnd, dataEnd, uartEnd}, func() error {
			return svc.Run(ctx)
		})
	})
	err := fx.NewRunner().
		HandleSignals().
		Go(fx.NamedRun("bridge", run)).
		Wait()
	if err != nil {
		glog.Exit(err)
	}
}
