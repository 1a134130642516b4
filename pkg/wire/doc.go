// Package wire implements the command-channel framing.
package wire

// A frame is length-delimited with no start marker and no checksum:
//
//	0: length_lo  1: length_hi  2: id  3: bus  4: page  5: command  6..: data
//
// total_length is little-endian and counts the whole frame, header included.
// Synchronization is entirely length-driven, so a corrupted length byte
// desynchronizes the stream until the decoder resets; that is a property of
// the protocol, not of this implementation.
//
// Requests reserve the bus byte as 0x00. Responses echo id, page and
// command, reuse the bus position as a status byte (StatusOK/StatusErr) and
// recompute total_length for the outgoing data. An error response carries
// an error code byte followed by an optional ASCII detail.
