// Package gt9147 drives a Goodix GT9147 capacitive touch controller over a
// two-wire bus: register framing, configuration upload, start-up and the per
// poll contact scan.
package gt9147

import (
	"fmt"
	"sync"
	"time"

	"github.com/itohio/touchterm/pkg/bitbang"
	"github.com/itohio/touchterm/pkg/touch"
	"periph.io/x/conn/v3/gpio"
)

// Bus addresses with the INT line held high during reset.
const (
	WriteAddress byte = 0x28
	ReadAddress  byte = 0x29
)

// Registers.
const (
	RegControl  uint16 = 0x8040
	RegConfig   uint16 = 0x8047
	RegChecksum uint16 = 0x80FF
	RegProduct  uint16 = 0x8140
	RegStatus   uint16 = 0x814E
	RegPoint1   uint16 = 0x8150

	pointStride = 8
	recordSize  = 4
)

const (
	// ProductID is the identity tag reported at RegProduct.
	ProductID = "9147"
	// ConfigRevision is the lowest stored config version accepted without
	// uploading the built-in table.
	ConfigRevision = 0x60

	controlSoftReset = 0x02
	controlRun       = 0x00

	statusReady     = 0x80
	statusCountMask = 0x0F
)

// Bus is the two-wire master the controller is attached to. A failed WaitAck
// must already have ended the transaction with a stop condition.
type Bus interface {
	sync.Locker
	Start()
	Stop()
	SendByte(c byte)
	WaitAck() error
	ReadByte(ack bool) byte
}

// DeviceNotFoundError is returned by Init when the controller does not
// identify itself as a GT9147.
type DeviceNotFoundError struct {
	Got string
	Err error
}

func (e *DeviceNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gt9147: device not found: %v", e.Err)
	}
	return fmt.Sprintf("gt9147: device not found: product id %q, want %q", e.Got, ProductID)
}

func (e *DeviceNotFoundError) Unwrap() error { return e.Err }

// Config describes the panel the controller is mounted on.
type Config struct {
	Width       int
	Height      int
	Orientation touch.Orientation
	// Sleep waits during the reset sequence. Defaults to time.Sleep.
	Sleep func(time.Duration)
}

// Device is a GT9147 on a bus. It implements touch.Scanner once Init has
// succeeded.
type Device struct {
	bus Bus
	rst bitbang.Pin
	irq bitbang.Pin
	cfg Config

	status [1]byte
	record [recordSize]byte
}

var _ touch.Scanner = (*Device)(nil)

// New binds a controller to its bus and reset line. irq is optional.
func New(bus Bus, rst, irq bitbang.Pin) *Device {
	return &Device{bus: bus, rst: rst, irq: irq}
}

// Init resets the controller, checks its identity and uploads the
// configuration when the stored revision is too old. A wrong identity is
// reported as *DeviceNotFoundError and is not retried.
func (d *Device) Init(cfg Config) error {
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	d.cfg = cfg

	if d.irq != nil {
		if err := d.irq.Out(gpio.High); err != nil {
			return fmt.Errorf("gt9147: int line: %w", err)
		}
	}
	if err := d.rst.Out(gpio.Low); err != nil {
		return fmt.Errorf("gt9147: reset line: %w", err)
	}
	cfg.Sleep(10 * time.Millisecond)
	if err := d.rst.Out(gpio.High); err != nil {
		return fmt.Errorf("gt9147: reset line: %w", err)
	}
	cfg.Sleep(10 * time.Millisecond)
	if d.irq != nil {
		if err := d.irq.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return fmt.Errorf("gt9147: int line: %w", err)
		}
	}
	cfg.Sleep(100 * time.Millisecond)

	var id [4]byte
	if err := d.ReadRegister(RegProduct, id[:]); err != nil {
		return &DeviceNotFoundError{Err: err}
	}
	if string(id[:]) != ProductID {
		return &DeviceNotFoundError{Got: string(id[:])}
	}

	if err := d.WriteRegister(RegControl, []byte{controlSoftReset}); err != nil {
		return err
	}
	var rev [1]byte
	if err := d.ReadRegister(RegConfig, rev[:]); err != nil {
		return err
	}
	if rev[0] < ConfigRevision {
		if err := d.SendConfig(1); err != nil {
			return err
		}
	}
	cfg.Sleep(10 * time.Millisecond)
	return d.WriteRegister(RegControl, []byte{controlRun})
}

// WriteRegister writes data starting at register addr. Every byte must be
// acknowledged; the first missing acknowledge aborts the transaction.
func (d *Device) WriteRegister(addr uint16, data []byte) error {
	d.bus.Lock()
	defer d.bus.Unlock()

	if err := d.address(addr); err != nil {
		return fmt.Errorf("gt9147: write %#04x: %w", addr, err)
	}
	for i, c := range data {
		d.bus.SendByte(c)
		if err := d.bus.WaitAck(); err != nil {
			return fmt.Errorf("gt9147: write %#04x byte %d: %w", addr, i, err)
		}
	}
	d.bus.Stop()
	return nil
}

// ReadRegister fills buf starting at register addr. All bytes but the last
// are acknowledged.
func (d *Device) ReadRegister(addr uint16, buf []byte) error {
	d.bus.Lock()
	defer d.bus.Unlock()

	if err := d.address(addr); err != nil {
		return fmt.Errorf("gt9147: read %#04x: %w", addr, err)
	}
	d.bus.Start()
	d.bus.SendByte(ReadAddress)
	if err := d.bus.WaitAck(); err != nil {
		return fmt.Errorf("gt9147: read %#04x: %w", addr, err)
	}
	for i := range buf {
		buf[i] = d.bus.ReadByte(i != len(buf)-1)
	}
	d.bus.Stop()
	return nil
}

// address starts a write transaction and sets the register pointer.
func (d *Device) address(addr uint16) error {
	d.bus.Start()
	for _, c := range [...]byte{WriteAddress, byte(addr >> 8), byte(addr)} {
		d.bus.SendByte(c)
		if err := d.bus.WaitAck(); err != nil {
			return err
		}
	}
	return nil
}
