// Package bitbang implements a software-timed two-wire (I²C style) bus on top
// of two GPIO lines.
//
// Every line transition is followed by a calibrated busy-wait. All operations
// block; the attached device samples on real elapsed time.
package bitbang

import (
	"errors"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
)

const (
	// DefaultHalfPeriod is the settle time after every line transition.
	DefaultHalfPeriod = 2 * time.Microsecond
	// DefaultPollDelay is the wait between two acknowledge samples.
	DefaultPollDelay = 1 * time.Microsecond
	// DefaultAckRetries is the number of released (high) acknowledge samples
	// tolerated before a transaction is aborted.
	DefaultAckRetries = 250
)

// ErrBusTimeout is returned when the device does not pull the data line low
// to acknowledge a byte.
var ErrBusTimeout = errors.New("bitbang: acknowledge timeout")

// Pin is the subset of gpio.PinIO the bus needs. Any periph.io pin satisfies
// it; TinyGo targets wrap machine.Pin.
type Pin interface {
	Out(l gpio.Level) error
	In(pull gpio.Pull, edge gpio.Edge) error
	Read() gpio.Level
}

// Config holds the timing calibration of the bus.
type Config struct {
	HalfPeriod time.Duration
	PollDelay  time.Duration
	AckRetries int
	// Delay waits for the given duration. Defaults to Spin.
	Delay func(time.Duration)
}

// Bus is a bit-banged two-wire master. It also serves as the lock that keeps
// a single logical transaction in flight.
type Bus struct {
	sync.Mutex

	scl Pin
	sda Pin
	cfg Config
}

// New creates a bus on the given clock and data lines and leaves both lines
// released (idle high).
func New(scl, sda Pin, cfg Config) (*Bus, error) {
	if cfg.HalfPeriod <= 0 {
		cfg.HalfPeriod = DefaultHalfPeriod
	}
	if cfg.PollDelay <= 0 {
		cfg.PollDelay = DefaultPollDelay
	}
	if cfg.AckRetries <= 0 {
		cfg.AckRetries = DefaultAckRetries
	}
	if cfg.Delay == nil {
		cfg.Delay = Spin
	}
	b := &Bus{scl: scl, sda: sda, cfg: cfg}
	if err := sda.Out(gpio.High); err != nil {
		return nil, err
	}
	if err := scl.Out(gpio.High); err != nil {
		return nil, err
	}
	return b, nil
}

// Spin busy-waits for d. It never yields, which keeps the bit timing
// independent of the scheduler.
func Spin(d time.Duration) {
	start := time.Now()
	for time.Since(start) < d {
	}
}

// Line errors after New are not reported; a dead line shows up as a missing
// acknowledge.
func (b *Bus) clock(l gpio.Level) { _ = b.scl.Out(l) }

func (b *Bus) data(l gpio.Level) { _ = b.sda.Out(l) }

func (b *Bus) release() { _ = b.sda.In(gpio.PullUp, gpio.NoEdge) }

func (b *Bus) wait() { b.cfg.Delay(b.cfg.HalfPeriod) }

// Start issues a start condition: data falls while the clock is high. The
// clock is left low, holding the bus.
func (b *Bus) Start() {
	b.data(gpio.High)
	b.clock(gpio.High)
	b.wait()
	b.data(gpio.Low)
	b.wait()
	b.clock(gpio.Low)
	b.wait()
}

// Stop issues a stop condition: data rises while the clock is high.
func (b *Bus) Stop() {
	b.clock(gpio.Low)
	b.data(gpio.Low)
	b.wait()
	b.clock(gpio.High)
	b.wait()
	b.data(gpio.High)
	b.wait()
}

// SendByte clocks out c, most significant bit first. The caller must follow
// with WaitAck.
func (b *Bus) SendByte(c byte) {
	b.clock(gpio.Low)
	for i := 0; i < 8; i++ {
		b.data(c&0x80 != 0)
		b.wait()
		b.clock(gpio.High)
		b.wait()
		b.clock(gpio.Low)
		b.wait()
		c <<= 1
	}
}

// WaitAck releases the data line, raises the clock and samples until the
// device pulls data low. After AckRetries released samples the transaction
// is aborted with a stop condition and ErrBusTimeout.
func (b *Bus) WaitAck() error {
	b.release()
	b.wait()
	b.clock(gpio.High)
	b.wait()
	for n := 0; b.sda.Read() == gpio.High; n++ {
		if n >= b.cfg.AckRetries {
			b.Stop()
			return ErrBusTimeout
		}
		b.cfg.Delay(b.cfg.PollDelay)
	}
	b.clock(gpio.Low)
	b.wait()
	return nil
}

// Ack drives an acknowledge bit (data low) after a received byte.
func (b *Bus) Ack() { b.respond(gpio.Low) }

// Nack drives a not-acknowledge bit (data high), ending a read.
func (b *Bus) Nack() { b.respond(gpio.High) }

func (b *Bus) respond(l gpio.Level) {
	b.clock(gpio.Low)
	b.data(l)
	b.wait()
	b.clock(gpio.High)
	b.wait()
	b.clock(gpio.Low)
	b.wait()
}

// ReadByte clocks in one byte, most significant bit first, and answers with
// Ack when ack is set or Nack otherwise.
func (b *Bus) ReadByte(ack bool) byte {
	var c byte
	b.release()
	for i := 0; i < 8; i++ {
		b.clock(gpio.Low)
		b.wait()
		b.clock(gpio.High)
		c <<= 1
		if b.sda.Read() == gpio.High {
			c |= 1
		}
		b.wait()
	}
	if ack {
		b.Ack()
	} else {
		b.Nack()
	}
	return c
}
