package gt9147

import (
	"encoding/binary"

	"github.com/itohio/touchterm/pkg/touch"
)

// Scan fetches the current frame into dst, at most len(dst) contacts.
//
// A frame is consumed by clearing the status register. This happens exactly
// once for every ready frame, including empty ones; a frame that is not
// ready is left untouched. Contacts outside the panel are dropped.
func (d *Device) Scan(dst []touch.Contact) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if err := d.ReadRegister(RegStatus, d.status[:]); err != nil {
		return 0, err
	}
	status := d.status[0]
	if status&statusReady == 0 {
		return 0, nil
	}
	d.status[0] = 0
	if err := d.WriteRegister(RegStatus, d.status[:]); err != nil {
		return 0, err
	}

	count := int(status & statusCountMask)
	if count == 0 || count > touch.MaxContacts {
		return 0, nil
	}
	count = min(count, len(dst))

	n := 0
	for i := 0; i < count; i++ {
		if err := d.ReadRegister(RegPoint1+uint16(i*pointStride), d.record[:]); err != nil {
			return n, err
		}
		rawX := int(binary.LittleEndian.Uint16(d.record[0:]))
		rawY := int(binary.LittleEndian.Uint16(d.record[2:]))
		x, y := d.cfg.Orientation.Transform(rawX, rawY, d.cfg.Width)
		if !touch.Inside(x, y, d.cfg.Width, d.cfg.Height) {
			continue
		}
		dst[n] = touch.Contact{ID: uint8(i), X: x, Y: y}
		n++
	}
	return n, nil
}
