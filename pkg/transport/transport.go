// Package transport resolves endpoint URLs to byte streams. The same
// URL syntax is used for the daemon's channel endpoints and for the
// host tools connecting to a bridge.
//
//	serial:/dev/ttyACM0?baud=115200
//	tcp://host:port
//	tcp-listen://:port
//	mqtt://broker/prefix?role=host
//	ws://host:port/path
package transport

import (
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"

	"github.com/golang/glog"

	"github.com/emberone/bridge.go/pkg/transport/mqtt"
	"github.com/emberone/bridge.go/pkg/transport/serial"
	"github.com/emberone/bridge.go/pkg/transport/ws"
)

// DefaultBaud is used when a serial URL carries no baud parameter.
const DefaultBaud = 115200

// Dial resolves a transport URL into a connected byte stream.
func Dial(rawurl string) (io.ReadWriteCloser, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "serial":
		device := u.Path
		if device == "" {
			device = u.Opaque
		}
		if device == "" {
			return nil, fmt.Errorf("serial url missing device: %q", rawurl)
		}
		baud := DefaultBaud
		if v := u.Query().Get("baud"); v != "" {
			if baud, err = strconv.Atoi(v); err != nil {
				return nil, fmt.Errorf("bad baud %q: %v", v, err)
			}
		}
		return serial.Open(device, baud)
	case "tcp":
		return net.Dial("tcp", u.Host)
	case "tcp-listen":
		return listenOne(u.Host)
	case "mqtt", "mqtts":
		return mqtt.Dial(rawurl)
	case "ws", "wss":
		return ws.Dial(rawurl)
	}
	return nil, fmt.Errorf("unsupported transport %q", u.Scheme)
}

// listenOne accepts a single connection and closes the listener. The
// daemon serves one host at a time per channel.
func listenOne(addr string) (io.ReadWriteCloser, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	defer ln.Close()
	glog.Infof("listening on %s", ln.Addr())
	conn, err := ln.Accept()
	if err != nil {
		return nil, err
	}
	glog.Infof("accepted %s", conn.RemoteAddr())
	return conn, nil
}
