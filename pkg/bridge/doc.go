// Package bridge runs the board service: it decodes command frames from
// the command channel, dispatches them to the peripheral controller, and
// relays the data channel to the UART transparently in both directions.
//
// All frame processing happens on a single goroutine. Reader goroutines
// only move bytes into channels; decoding, dispatch and response writes
// are serialized in Run, so one command completes before the next one
// is looked at.
package bridge
