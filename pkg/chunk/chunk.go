// Package chunk reassembles payloads that arrive as short records framed by
// START and END sentinel records, and splits payloads for sending.
package chunk

import (
	"bytes"
	"errors"
)

// Sentinel records.
const (
	Start = "START"
	End   = "END"
)

// DefaultCapacity is the reassembly buffer size of the terminal.
const DefaultCapacity = 256

// ErrOverflow is reported when a payload does not fit the buffer.
var ErrOverflow = errors.New("chunk: buffer overflow")

// Kind classifies the outcome of feeding one record.
type Kind uint8

const (
	// Passthrough is a record received outside a framed payload.
	Passthrough Kind = iota + 1
	// Started opens a framed payload.
	Started
	// Fragment was appended to the payload.
	Fragment
	// Complete carries the reassembled payload.
	Complete
	// Overflow aborted the payload; Err is ErrOverflow.
	Overflow
)

func (k Kind) String() string {
	switch k {
	case Passthrough:
		return "passthrough"
	case Started:
		return "started"
	case Fragment:
		return "fragment"
	case Complete:
		return "complete"
	case Overflow:
		return "overflow"
	default:
		return "unknown"
	}
}

// Event is the result of one record. Data is a copy owned by the receiver:
// the record for Passthrough and Fragment, the payload for Complete.
type Event struct {
	Kind Kind
	Data []byte
	Err  error
}

// Assembler is the receive side state. It is owned by a single loop.
type Assembler struct {
	capacity  int
	receiving bool
	buf       []byte
}

// NewAssembler creates an assembler holding at most capacity payload bytes.
func NewAssembler(capacity int) *Assembler {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Assembler{capacity: capacity, buf: make([]byte, 0, capacity)}
}

// Receiving reports whether a framed payload is open.
func (a *Assembler) Receiving() bool { return a.receiving }

// Len returns the number of payload bytes accumulated so far.
func (a *Assembler) Len() int { return len(a.buf) }

// Reset drops any open payload.
func (a *Assembler) Reset() {
	a.receiving = false
	a.buf = a.buf[:0]
}

// Feed processes one record. A payload is only produced by END; a payload
// that exactly fills the buffer stays open until then.
func (a *Assembler) Feed(rec []byte) Event {
	if !a.receiving {
		if string(rec) == Start {
			a.buf = a.buf[:0]
			a.receiving = true
			return Event{Kind: Started}
		}
		return Event{Kind: Passthrough, Data: bytes.Clone(rec)}
	}

	if string(rec) == End {
		ev := Event{Kind: Complete, Data: bytes.Clone(a.buf)}
		a.Reset()
		return ev
	}
	if len(a.buf)+len(rec) > a.capacity {
		a.Reset()
		return Event{Kind: Overflow, Err: ErrOverflow}
	}
	a.buf = append(a.buf, rec...)
	return Event{Kind: Fragment, Data: bytes.Clone(rec)}
}

// Split frames payload for sending: START, payload in pieces of at most size
// bytes, END. The pieces alias payload; the sentinels are fresh slices.
func Split(payload []byte, size int) [][]byte {
	if size <= 0 {
		size = len(payload)
	}
	out := make([][]byte, 0, 2+(len(payload)+max(size, 1)-1)/max(size, 1))
	out = append(out, []byte(Start))
	for len(payload) > 0 {
		n := min(size, len(payload))
		out = append(out, payload[:n])
		payload = payload[n:]
	}
	return append(out, []byte(End))
}
