// Package link carries newline framed records between the host and the
// terminal over a serial port, or simulates the other end.
package link

// Device defines the interface for record links (real or mocked).
type Device interface {
	Connect() error
	Close() error
	// Records delivers received records without their delimiter. The
	// channel is closed after Close.
	Records() <-chan []byte
	Send(p []byte) error
	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
