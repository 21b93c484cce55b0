package terminal

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

type storageSnapshot struct {
	Slots []string `cbor:"1,keyasint"`
	Next  int      `cbor:"2,keyasint"`
}

type snapshot struct {
	RX storageSnapshot `cbor:"1,keyasint"`
	TX storageSnapshot `cbor:"2,keyasint"`
}

func (s *Storage) snapshot() storageSnapshot {
	return storageSnapshot{Slots: append([]string(nil), s.slots...), Next: s.next}
}

// restore loads a snapshot taken with a possibly different slot count.
// Slots beyond the current count are dropped.
func (s *Storage) restore(snap storageSnapshot) {
	s.Clear()
	for i, text := range snap.Slots {
		if i >= len(s.slots) {
			break
		}
		s.slots[i] = truncate(text, s.width-1)
	}
	if snap.Next >= 0 && snap.Next <= len(s.slots) {
		s.next = snap.Next
	}
}

// SaveStorage writes both storage sets to w as CBOR.
func (t *Terminal) SaveStorage(w io.Writer) error {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return fmt.Errorf("terminal: storage encoder: %w", err)
	}
	snap := snapshot{
		RX: t.sides[RX].store.snapshot(),
		TX: t.sides[TX].store.snapshot(),
	}
	if err := em.NewEncoder(w).Encode(snap); err != nil {
		return fmt.Errorf("terminal: save storage: %w", err)
	}
	return nil
}

// LoadStorage replaces both storage sets with a snapshot read from r.
func (t *Terminal) LoadStorage(r io.Reader) error {
	dm, err := cbor.DecOptions{
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		return fmt.Errorf("terminal: storage decoder: %w", err)
	}
	var snap snapshot
	if err := dm.NewDecoder(r).Decode(&snap); err != nil {
		return fmt.Errorf("terminal: load storage: %w", err)
	}
	t.sides[RX].store.restore(snap.RX)
	t.sides[TX].store.restore(snap.TX)
	return nil
}
