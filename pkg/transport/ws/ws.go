// Package ws provides a websocket byte-stream transport.
package ws

import (
	"io"

	"golang.org/x/net/websocket"
)

// Dial connects to a ws:// or wss:// endpoint carrying raw binary
// frames.
func Dial(rawurl string) (io.ReadWriteCloser, error) {
	conn, err := websocket.Dial(rawurl, "", "http://localhost/")
	if err != nil {
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	return conn, nil
}
