package avr

import "errors"

var (
	// ErrConnect covers socket-level failures: unreachable host, refused
	// connection, DNS failure. Retryable by the caller.
	ErrConnect = errors.New("avr: cannot connect to device")

	// ErrDevice means the device was reachable but rejected the handshake,
	// so no device information could be received.
	ErrDevice = errors.New("avr: device rejected handshake")

	// ErrTimeout means the device never finished introducing itself within
	// the configured bound.
	ErrTimeout = errors.New("avr: device initialisation timed out")

	// ErrClosed is returned for operations on a closed session. A closed
	// session is never reused; create a new one to reconnect.
	ErrClosed = errors.New("avr: session closed")
)
