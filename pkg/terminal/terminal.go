// Package terminal is the application core of the touch serial terminal. It
// owns the gesture machine, the reassembly buffer, the logs, the storage
// slots and the input line, and advances all of them once per Poll.
package terminal

import (
	"fmt"
	"log"
	"time"

	"github.com/itohio/touchterm/pkg/chunk"
	"github.com/itohio/touchterm/pkg/gesture"
	"github.com/itohio/touchterm/pkg/keys"
	"github.com/itohio/touchterm/pkg/touch"
)

// Direction selects the received or sent side of the terminal.
type Direction uint8

const (
	RX Direction = iota
	TX
)

func (d Direction) String() string {
	if d == RX {
		return "rx"
	}
	return "tx"
}

// Messages written to the logs.
const (
	MsgTouchFailed  = "Touch Init FAILED! Check I2C."
	MsgCancelled    = "[Touch] Cancelled (slid out)"
	MsgStored       = "--> Data Stored."
	MsgQueryStart   = "--- Query Storage Start ---"
	MsgQueryEnd     = "--- Query Storage End ---"
	MsgStorageEmpty = "Storage is empty."
	MsgRXCleared    = "Receive Storage Cleared."
	MsgTXCleared    = "Send Storage Cleared."
	MsgRecvStart    = "[Chunked] RECV START."
	MsgRecvEnd      = "[Chunked] RECV END."
	MsgOverflow     = "[Chunked] Buffer Overflow!"
	MsgSendStart    = "[Chunked] SEND START."
	MsgSendEnd      = "[Chunked] SEND END."
	MsgInputCleared = "[Long Press] Input cleared."
	MsgAllCleared   = "[Long Press] All cleared."
)

// Renderer paints what the terminal reports. The terminal never draws.
type Renderer interface {
	// DrawRegion repaints a key after its Pressed flag changed.
	DrawRegion(r *gesture.Region)
	AppendLog(dir Direction, text string)
	ClearLog(dir Direction)
	RefreshInput(text string)
}

// Transport moves framed records. Receive must not block; it reports false
// when no record is pending.
type Transport interface {
	Receive() ([]byte, bool)
	Send(p []byte) error
}

type side struct {
	log   *Log
	store *Storage
}

// Terminal is driven by a single poll loop and is not safe for concurrent
// use.
type Terminal struct {
	cfg Config
	tr  Transport
	r   Renderer

	scanner  touch.Scanner
	contacts [touch.MaxContacts]touch.Contact
	scanErr  error

	regions []gesture.Region
	gesture *gesture.Machine
	asm     *chunk.Assembler
	input   *Input
	sides   [2]side
}

// New creates a terminal without touch input; see InitTouch.
func New(cfg Config, gcfg gesture.Config, tr Transport, r Renderer) *Terminal {
	cfg.ensureDefaults()
	t := &Terminal{
		cfg:     cfg,
		tr:      tr,
		r:       r,
		regions: Layout(),
		asm:     chunk.NewAssembler(cfg.ChunkCapacity),
		input:   NewInput(cfg.InputLength),
	}
	t.gesture = gesture.New(gcfg, t.regions)
	for i := range t.sides {
		t.sides[i] = side{
			log:   NewLog(cfg.LogLines, cfg.LogWidth),
			store: NewStorage(cfg.StorageSlots, cfg.StorageWidth),
		}
	}
	return t
}

// Regions returns the key regions. Their Pressed flags reflect the gesture
// in progress.
func (t *Terminal) Regions() []gesture.Region { return t.regions }

// Gesture returns the gesture machine, e.g. to retune it between polls.
func (t *Terminal) Gesture() *gesture.Machine { return t.gesture }

// Log returns the log of one side.
func (t *Terminal) Log(dir Direction) *Log { return t.sides[dir].log }

// Storage returns the storage slots of one side.
func (t *Terminal) Storage(dir Direction) *Storage { return t.sides[dir].store }

// Input returns the current input line.
func (t *Terminal) Input() string { return t.input.String() }

// InitTouch runs the controller start-up and attaches s when it succeeds.
// On failure the terminal keeps serving the transport without touch input
// and the error is returned once.
func (t *Terminal) InitTouch(s touch.Scanner, init func() error) error {
	if err := init(); err != nil {
		t.scanner = nil
		t.append(TX, MsgTouchFailed)
		log.Printf("touch init failed: %v", err)
		return fmt.Errorf("terminal: touch init: %w", err)
	}
	t.scanner = s
	return nil
}

// TouchErr returns touch.ErrDisabled without a scanner, the error of the
// last scan if it failed, or nil.
func (t *Terminal) TouchErr() error {
	if t.scanner == nil {
		return touch.ErrDisabled
	}
	return t.scanErr
}

// Poll runs one iteration: one touch scan and gesture update, then at most
// one received record.
func (t *Terminal) Poll(now time.Time) {
	t.pollTouch(now)
	t.pollTransport()
}

func (t *Terminal) pollTouch(now time.Time) {
	if t.scanner == nil {
		return
	}
	n, err := t.scanner.Scan(t.contacts[:])
	if err != nil {
		if t.scanErr == nil {
			log.Printf("touch scan failed: %v", err)
		}
		t.scanErr = err
		n = 0
	} else if t.scanErr != nil {
		log.Printf("touch scan recovered")
		t.scanErr = nil
	}

	ev, ok := t.gesture.Update(now, t.contacts[:n])
	if !ok {
		return
	}
	switch ev.Kind {
	case gesture.Down:
		t.r.DrawRegion(ev.Region)
	case gesture.LongPress:
		t.LongPress(ev.Region.Action)
	case gesture.Activate:
		t.r.DrawRegion(ev.Region)
		t.Do(ev.Region.Action)
	case gesture.Cancel:
		t.r.DrawRegion(ev.Region)
		t.append(TX, MsgCancelled)
	}
}

func (t *Terminal) pollTransport() {
	rec, ok := t.tr.Receive()
	if !ok {
		return
	}
	t.Receive(rec)
}

// Receive handles one inbound record.
func (t *Terminal) Receive(rec []byte) {
	ev := t.asm.Feed(rec)
	switch ev.Kind {
	case chunk.Passthrough:
		t.append(RX, string(ev.Data))
		t.store(RX, string(ev.Data))
	case chunk.Started:
		t.append(RX, MsgRecvStart)
	case chunk.Fragment:
		t.append(RX, string(ev.Data))
	case chunk.Complete:
		t.append(RX, MsgRecvEnd)
		t.append(RX, string(ev.Data))
		t.store(RX, string(ev.Data))
	case chunk.Overflow:
		t.append(RX, MsgOverflow)
	}
}

// Do runs the action of an activated key.
func (t *Terminal) Do(a keys.Action) {
	switch a.Kind {
	case keys.None:
	case keys.Char:
		if t.input.Type(a.C) {
			t.r.RefreshInput(t.input.String())
		}
	case keys.Backspace:
		if t.input.Backspace() {
			t.r.RefreshInput(t.input.String())
		}
	case keys.Send:
		if t.input.Len() == 0 {
			return
		}
		t.send(t.input.Bytes())
		t.append(TX, t.input.String())
		t.input.Reset()
		t.r.RefreshInput("")
	case keys.StoreTX:
		if t.input.Len() > 0 {
			t.store(TX, t.input.String())
		}
	case keys.StoreRX:
		if last := t.sides[RX].log.Last(); last != "" {
			t.store(RX, last)
		}
	case keys.QueryTX:
		t.query(TX)
	case keys.QueryRX:
		t.query(RX)
	case keys.ClearTX:
		t.clear(TX)
	case keys.ClearRX:
		t.clear(RX)
	case keys.SendChunks:
		t.SendChunked([]byte(t.cfg.ChunkPayload))
	}
}

// LongPress runs the long press action of a key, if it has one.
func (t *Terminal) LongPress(a keys.Action) {
	switch a.Kind {
	case keys.StoreTX:
		t.input.Reset()
		t.r.RefreshInput("")
		t.append(TX, MsgInputCleared)
	case keys.Backspace:
		t.input.Reset()
		t.r.RefreshInput("")
		t.append(TX, MsgAllCleared)
	}
}

// SendChunked transmits payload framed by START and END, pausing
// ChunkDelay after every record but the last.
func (t *Terminal) SendChunked(payload []byte) {
	parts := chunk.Split(payload, t.cfg.ChunkSize)
	last := len(parts) - 1
	for i, p := range parts {
		switch i {
		case 0:
			t.append(TX, MsgSendStart)
		case last:
			t.append(TX, MsgSendEnd)
		default:
			t.append(TX, string(p))
		}
		t.send(p)
		if i != last {
			t.cfg.Sleep(t.cfg.ChunkDelay)
		}
	}
}

func (t *Terminal) send(p []byte) {
	if err := t.tr.Send(p); err != nil {
		log.Printf("send failed: %v", err)
	}
}

func (t *Terminal) append(dir Direction, text string) {
	t.r.AppendLog(dir, t.sides[dir].log.Append(text))
}

func (t *Terminal) store(dir Direction, text string) {
	t.sides[dir].store.Add(text)
	t.append(dir, MsgStored)
}

func (t *Terminal) query(dir Direction) {
	t.append(dir, MsgQueryStart)
	entries := t.sides[dir].store.Entries()
	for _, e := range entries {
		t.append(dir, fmt.Sprintf("Slot %d: %s", e.Slot, e.Text))
	}
	if len(entries) == 0 {
		t.append(dir, MsgStorageEmpty)
	}
	t.append(dir, MsgQueryEnd)
}

func (t *Terminal) clear(dir Direction) {
	s := t.sides[dir]
	s.store.Clear()
	s.log.Clear()
	t.r.ClearLog(dir)
	if dir == RX {
		t.append(dir, MsgRXCleared)
	} else {
		t.append(dir, MsgTXCleared)
	}
}
