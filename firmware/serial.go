//go:build tinygo

package main

// port is what the firmware needs from machine.Serial.
type port interface {
	Buffered() int
	ReadByte() (byte, error)
	Write(p []byte) (int, error)
}

// lineTransport frames records on newlines. It is polled, never blocks, and
// yields at most one record per call.
type lineTransport struct {
	port port
	buf  [MAX_RECORD]byte
	pos  int
	out  []byte
}

func (t *lineTransport) Receive() ([]byte, bool) {
	for t.port.Buffered() > 0 {
		data, err := t.port.ReadByte()
		if err != nil {
			break
		}

		if data == '\n' || data == '\r' {
			if t.pos == 0 {
				continue
			}
			rec := t.take()
			return rec, true
		}

		t.buf[t.pos] = data
		t.pos++
		if t.pos == len(t.buf) {
			return t.take(), true
		}
	}
	return nil, false
}

func (t *lineTransport) take() []byte {
	rec := make([]byte, t.pos)
	copy(rec, t.buf[:t.pos])
	t.pos = 0
	return rec
}

func (t *lineTransport) Send(p []byte) error {
	t.out = append(t.out[:0], p...)
	t.out = append(t.out, '\n')
	_, err := t.port.Write(t.out)
	return err
}
