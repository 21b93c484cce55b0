package link

// Poller adapts a Device to the terminal's non-blocking transport.
type Poller struct {
	dev Device
	in  <-chan []byte
}

// NewPoller wraps dev. dev's records channel is captured once, so the
// Poller must be created after dev is connected.
func NewPoller(dev Device) *Poller {
	return &Poller{dev: dev, in: dev.Records()}
}

// Receive returns the next pending record, if any.
func (p *Poller) Receive() ([]byte, bool) {
	select {
	case rec, ok := <-p.in:
		if !ok {
			return nil, false
		}
		return rec, true
	default:
		return nil, false
	}
}

// Send transmits one record.
func (p *Poller) Send(rec []byte) error {
	return p.dev.Send(rec)
}
