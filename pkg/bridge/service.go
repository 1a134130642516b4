package bridge

import (
	"context"
	"io"
	"time"

	"github.com/golang/glog"

	"github.com/emberone/bridge.go/pkg/control"
	"github.com/emberone/bridge.go/pkg/wire"
)

// DefaultIdleTimeout bounds how long a partially received frame may sit
// before the decoder abandons it and resynchronizes.
const DefaultIdleTimeout = 4 * time.Millisecond

// DefaultRatePoll is the interval for checking the data channel rate.
const DefaultRatePoll = 250 * time.Millisecond

// RateSource reports the current line rate of an endpoint.
// A zero rate means unknown.
type RateSource interface {
	Rate() int
}

// RateSetter reconfigures the line rate of an endpoint.
type RateSetter interface {
	SetRate(rate int) error
}

// Service wires the two channels of the bridge: Command carries framed
// requests answered by the Controller, Data is relayed byte for byte to
// and from UART. If Data exposes its line rate and UART accepts one,
// the rate is mirrored so the passthrough runs at the speed the host
// selected.
type Service struct {
	Command io.ReadWriter
	Data    io.ReadWriter
	UART    io.ReadWriter

	Controller  *control.Controller
	IdleTimeout time.Duration
	RatePoll    time.Duration

	dec  wire.Decoder
	rate int
}

// NewService creates a Service with default timings.
func NewService(command, data, uart io.ReadWriter, ctrl *control.Controller) *Service {
	return &Service{
		Command:     command,
		Data:        data,
		UART:        uart,
		Controller:  ctrl,
		IdleTimeout: DefaultIdleTimeout,
		RatePoll:    DefaultRatePoll,
	}
}

// Run processes both channels until ctx ends or a channel fails.
// It implements framework.Runnable.
func (s *Service) Run(ctx context.Context) error {
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmdCh, cmdErrCh := readChunks(subCtx, s.Command)
	dataCh, dataErrCh := readChunks(subCtx, s.Data)
	uartCh, uartErrCh := readChunks(subCtx, s.UART)

	var rateTick <-chan time.Time
	rateSrc, srcOK := s.Data.(RateSource)
	rateDst, dstOK := s.UART.(RateSetter)
	if srcOK && dstOK {
		ticker := time.NewTicker(s.RatePoll)
		defer ticker.Stop()
		rateTick = ticker.C
	}

	var idle <-chan time.Time
	for {
		select {
		case chunk := <-cmdCh:
			if err := s.feedCommand(ctx, chunk); err != nil {
				return err
			}
			if s.dec.Receiving() {
				idle = time.After(s.IdleTimeout)
			} else {
				idle = nil
			}
		case <-idle:
			idle = nil
			if err := s.dec.Timeout(); err != nil {
				glog.Warningf("command channel: %v", err)
			}
		case chunk := <-dataCh:
			if _, err := s.UART.Write(chunk); err != nil {
				return err
			}
		case chunk := <-uartCh:
			if _, err := s.Data.Write(chunk); err != nil {
				return err
			}
		case <-rateTick:
			s.mirrorRate(rateSrc, rateDst)
		case err := <-cmdErrCh:
			return err
		case err := <-dataErrCh:
			return err
		case err := <-uartErrCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// feedCommand runs received bytes through the decoder and answers every
// completed frame before looking at the next byte. Framing errors only
// resynchronize the decoder; write failures on the command channel are
// fatal because the host would be left waiting forever.
func (s *Service) feedCommand(ctx context.Context, chunk []byte) error {
	for _, b := range chunk {
		frame, err := s.dec.Feed(b)
		if err != nil {
			glog.Warningf("command channel: %v", err)
			continue
		}
		if frame == nil {
			continue
		}
		resp := s.Controller.Dispatch(ctx, frame)
		if _, err := resp.WriteTo(s.Command); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) mirrorRate(src RateSource, dst RateSetter) {
	r := src.Rate()
	if r == 0 || r == s.rate {
		return
	}
	if err := dst.SetRate(r); err != nil {
		glog.Warningf("uart rate %d: %v", r, err)
		return
	}
	s.rate = r
	glog.V(1).Infof("uart rate %d", r)
}

// readChunks pumps reads from r into a channel so Run can multiplex all
// endpoints in one select loop. Chunks are copied because the buffer is
// reused between reads.
func readChunks(ctx context.Context, r io.Reader) (<-chan []byte, <-chan error) {
	chunkCh, errCh := make(chan []byte), make(chan error, 1)
	go func() {
		buf := make([]byte, 256)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				select {
				case chunkCh <- chunk:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				errCh <- err
				return
			}
		}
	}()
	return chunkCh, errCh
}
