package link

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the baud rate of the terminal's USB serial port.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the records channel buffer.
	DefaultBufferSize = 100
	// MaxRecordSize is the longest record. Longer lines are split at the
	// limit.
	MaxRecordSize = 255
	// Delimiter terminates every record on the wire.
	Delimiter = '\n'
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial is a record link over a serial port.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn      serial.Port
	records   chan []byte
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// New creates a new Serial link with the specified port, baud rate, and buffer size.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		records:  make(chan []byte, bufSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(names))
	for _, name := range names {
		result = append(result, Port{Name: name, Description: name})
	}
	return result, nil
}

// Connect opens the serial port and starts reading records.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	port, err := serial.Open(d.port, &serial.Mode{BaudRate: d.baudRate})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.connected = true

	go d.readRecords(port)

	return nil
}

// Close closes the port. The records channel is closed once the reader
// has stopped.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.cancel()

	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		d.conn = nil
	}

	d.connected = false

	return nil
}

// Records returns the channel for reading records.
func (d *Serial) Records() <-chan []byte {
	return d.records
}

// Send writes p followed by the delimiter.
func (d *Serial) Send(p []byte) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.connected {
		return fmt.Errorf("not connected")
	}

	if _, err := d.conn.Write(frame(p)); err != nil {
		return fmt.Errorf("failed to send record: %w", err)
	}

	return nil
}

// IsConnected returns whether the port is currently open.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// readRecords splits r into records until it fails or the link is closed.
func (d *Serial) readRecords(r io.Reader) {
	defer close(d.records)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readRecords: %v", r)
		}
	}()

	scanner := bufio.NewScanner(r)
	scanner.Split(splitRecords)
	for scanner.Scan() {
		rec := trimRecord(scanner.Bytes())
		if len(rec) == 0 {
			continue
		}

		select {
		case d.records <- bytes.Clone(rec):
		case <-d.ctx.Done():
			return
		default:
			log.Printf("Records channel full, dropping record")
		}
	}

	if err := scanner.Err(); err != nil && d.ctx.Err() == nil {
		log.Printf("Error reading from serial port: %v", err)
	}
}

// splitRecords is a bufio.SplitFunc yielding delimited records of at most
// MaxRecordSize bytes. An over-long line is cut into several records.
func splitRecords(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data[:min(len(data), MaxRecordSize+1)], Delimiter); i >= 0 {
		return i + 1, data[:i], nil
	}
	if len(data) >= MaxRecordSize {
		return MaxRecordSize, data[:MaxRecordSize], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// frame appends the delimiter to a copy of p.
func frame(p []byte) []byte {
	out := make([]byte, 0, len(p)+1)
	out = append(out, p...)
	return append(out, Delimiter)
}

// trimRecord drops the carriage return of CRLF terminated lines.
func trimRecord(line []byte) []byte {
	return bytes.TrimSuffix(line, []byte{'\r'})
}
