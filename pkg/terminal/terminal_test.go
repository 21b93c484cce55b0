package terminal

import (
	"bytes"
	"errors"
	"image"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/itohio/touchterm/pkg/gesture"
	"github.com/itohio/touchterm/pkg/keys"
	"github.com/itohio/touchterm/pkg/touch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	contacts []touch.Contact
	err      error
}

type fakeScanner struct {
	frames []frame
}

func (s *fakeScanner) Scan(dst []touch.Contact) (int, error) {
	if len(s.frames) == 0 {
		return 0, nil
	}
	f := s.frames[0]
	s.frames = s.frames[1:]
	return copy(dst, f.contacts), f.err
}

type fakeTransport struct {
	inbound [][]byte
	sent    []string
	err     error
}

func (t *fakeTransport) Receive() ([]byte, bool) {
	if len(t.inbound) == 0 {
		return nil, false
	}
	rec := t.inbound[0]
	t.inbound = t.inbound[1:]
	return rec, true
}

func (t *fakeTransport) Send(p []byte) error {
	t.sent = append(t.sent, string(p))
	return t.err
}

type fakeRenderer struct {
	drawn   []string
	logs    map[Direction][]string
	cleared []Direction
	input   []string
}

func (r *fakeRenderer) DrawRegion(g *gesture.Region) {
	state := "up"
	if g.Pressed {
		state = "down"
	}
	r.drawn = append(r.drawn, g.Label+":"+state)
}

func (r *fakeRenderer) AppendLog(dir Direction, text string) {
	if r.logs == nil {
		r.logs = map[Direction][]string{}
	}
	r.logs[dir] = append(r.logs[dir], text)
}

func (r *fakeRenderer) ClearLog(dir Direction) { r.cleared = append(r.cleared, dir) }

func (r *fakeRenderer) RefreshInput(text string) { r.input = append(r.input, text) }

type rig struct {
	term   *Terminal
	scan   *fakeScanner
	tr     *fakeTransport
	r      *fakeRenderer
	sleeps []time.Duration
	now    time.Time
}

const testDebounce = 3

func newRig(t *testing.T, cfg Config) *rig {
	t.Helper()
	rg := &rig{
		scan: &fakeScanner{},
		tr:   &fakeTransport{},
		r:    &fakeRenderer{},
		now:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	cfg.Sleep = func(d time.Duration) { rg.sleeps = append(rg.sleeps, d) }
	rg.term = New(cfg, gesture.Config{DebounceFrames: testDebounce}, rg.tr, rg.r)
	require.NoError(t, rg.term.InitTouch(rg.scan, func() error { return nil }))
	return rg
}

func (rg *rig) poll(n int) {
	for i := 0; i < n; i++ {
		rg.now = rg.now.Add(10 * time.Millisecond)
		rg.term.Poll(rg.now)
	}
}

func (rg *rig) region(t *testing.T, label string) *gesture.Region {
	t.Helper()
	regions := rg.term.Regions()
	for i := range regions {
		if regions[i].Label == label {
			return &regions[i]
		}
	}
	t.Fatalf("no region %q", label)
	return nil
}

func center(r image.Rectangle) touch.Contact {
	c := r.Min.Add(r.Max).Div(2)
	return touch.Contact{X: c.X, Y: c.Y}
}

// tap presses the center of each labelled key and releases it.
func (rg *rig) tap(t *testing.T, labels ...string) {
	t.Helper()
	for _, l := range labels {
		c := center(rg.region(t, l).Rect)
		rg.scan.frames = append(rg.scan.frames, frame{contacts: []touch.Contact{c}})
		rg.poll(1 + testDebounce)
	}
}

func TestLayout(t *testing.T) {
	regions := Layout()
	require.Len(t, regions, 45)

	labels := map[string]bool{}
	screen := image.Rect(0, 0, ScreenWidth, ScreenHeight)
	for i, r := range regions {
		assert.False(t, labels[r.Label], "duplicate %q", r.Label)
		labels[r.Label] = true
		assert.True(t, r.Rect.In(screen), "%q off screen", r.Label)
		assert.NotEqual(t, keys.None, r.Action.Kind, r.Label)
		for _, o := range regions[i+1:] {
			assert.False(t, r.Rect.Overlaps(o.Rect), "%q overlaps %q", r.Label, o.Label)
		}
	}

	find := func(label string) gesture.Region {
		for _, r := range regions {
			if r.Label == label {
				return r
			}
		}
		t.Fatalf("no region %q", label)
		return gesture.Region{}
	}
	assert.Equal(t, image.Rect(5, 310, 45, 345), find("1").Rect)
	assert.Equal(t, image.Rect(50, 390, 90, 425), find("A").Rect)
	assert.Equal(t, image.Rect(5, 430, 90, 465), find("SEND").Rect)
	assert.Equal(t, image.Rect(410, 430, 450, 465), find("Bksp").Rect)
	assert.Equal(t, image.Rect(583, 346, 683, 374), find("Query RX").Rect)
	assert.Equal(t, image.Rect(475, 436, 683, 464), find("Send 8-Byte Chunks").Rect)
	assert.Equal(t, keys.Rune('M'), find("M").Action)
}

func TestTerminal_TypeAndSend(t *testing.T) {
	rg := newRig(t, DefaultConfig())

	rg.tap(t, "H", "I", "1")
	assert.Equal(t, "HI1", rg.term.Input())
	assert.Equal(t, []string{"H", "HI", "HI1"}, rg.r.input)
	assert.Equal(t, []string{"H:down", "H:up", "I:down", "I:up", "1:down", "1:up"}, rg.r.drawn)

	rg.tap(t, "Bksp", "SEND")
	assert.Equal(t, []string{"HI"}, rg.tr.sent)
	assert.Equal(t, "HI", rg.term.Log(TX).Last())
	assert.Empty(t, rg.term.Input())

	rg.tap(t, "SEND")
	assert.Len(t, rg.tr.sent, 1, "empty input is not sent")
}

func TestTerminal_SlideOffCancels(t *testing.T) {
	rg := newRig(t, DefaultConfig())
	q := center(rg.region(t, "Q").Rect)
	w := center(rg.region(t, "W").Rect)

	rg.scan.frames = []frame{{contacts: []touch.Contact{q}}, {contacts: []touch.Contact{w}}}
	rg.poll(2 + testDebounce)

	assert.Empty(t, rg.term.Input())
	assert.Equal(t, MsgCancelled, rg.term.Log(TX).Last())
	assert.False(t, rg.region(t, "Q").Pressed)
	assert.Equal(t, []string{"Q:down", "Q:up"}, rg.r.drawn)
}

func TestTerminal_LongPress(t *testing.T) {
	rg := newRig(t, DefaultConfig())
	rg.tap(t, "A", "B")

	bksp := center(rg.region(t, "Bksp").Rect)
	for i := 0; i < 120; i++ {
		rg.scan.frames = append(rg.scan.frames, frame{contacts: []touch.Contact{bksp}})
	}
	rg.poll(120)

	assert.Empty(t, rg.term.Input())
	assert.Equal(t, MsgAllCleared, rg.term.Log(TX).Last())

	rg.poll(testDebounce)
	assert.Equal(t, MsgAllCleared, rg.term.Log(TX).Last(), "release on empty input is a no-op")
}

func TestTerminal_LongPressStoreTX(t *testing.T) {
	rg := newRig(t, DefaultConfig())
	rg.term.Do(keys.Rune('Z'))
	rg.term.LongPress(keys.Of(keys.StoreTX))
	assert.Empty(t, rg.term.Input())
	assert.Equal(t, MsgInputCleared, rg.term.Log(TX).Last())

	rg.term.LongPress(keys.Rune('Z'))
	assert.Equal(t, MsgInputCleared, rg.term.Log(TX).Last())
}

func TestTerminal_InputBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InputLength = 4
	rg := newRig(t, cfg)
	for _, c := range []byte("ABCDE") {
		rg.term.Do(keys.Rune(c))
	}
	assert.Equal(t, "ABC", rg.term.Input())
	assert.Len(t, rg.r.input, 3)
}

func TestTerminal_ReceivePassthrough(t *testing.T) {
	rg := newRig(t, DefaultConfig())
	rg.tr.inbound = [][]byte{[]byte("hello")}
	rg.poll(1)

	lines := rg.term.Log(RX).Lines()
	assert.Equal(t, []string{"hello", MsgStored}, lines[len(lines)-2:])
	assert.Equal(t, []Entry{{Slot: 0, Text: "hello"}}, rg.term.Storage(RX).Entries())
}

func TestTerminal_ReceiveChunked(t *testing.T) {
	rg := newRig(t, DefaultConfig())
	for _, r := range []string{"START", "Hello Wo", "rld", "END"} {
		rg.tr.inbound = append(rg.tr.inbound, []byte(r))
	}
	rg.poll(4)

	assert.Equal(t, []string{
		MsgRecvStart, "Hello Wo", "rld", MsgRecvEnd, "Hello World", MsgStored,
	}, rg.term.Log(RX).Lines())
	assert.Equal(t, []Entry{{Slot: 0, Text: "Hello World"}}, rg.term.Storage(RX).Entries())
}

func TestTerminal_ReceiveOverflow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ChunkCapacity = 8
	rg := newRig(t, cfg)
	for _, r := range []string{"START", "12345678", "9", "END"} {
		rg.tr.inbound = append(rg.tr.inbound, []byte(r))
	}
	rg.poll(4)

	lines := rg.term.Log(RX).Lines()
	assert.Equal(t, []string{MsgRecvStart, "12345678", MsgOverflow, "END", MsgStored}, lines[1:])
	assert.NotContains(t, lines, MsgRecvEnd)
}

func TestTerminal_SendChunks(t *testing.T) {
	rg := newRig(t, DefaultConfig())
	rg.term.Do(keys.Of(keys.SendChunks))

	assert.Equal(t, []string{
		"START", "ThisIsAL", "ongDataS", "tringSen", "tIn8Byte", "ChunksBy", "STM32", "END",
	}, rg.tr.sent)
	assert.Len(t, rg.sleeps, 7)
	for _, d := range rg.sleeps {
		assert.Equal(t, 5*time.Millisecond, d)
	}
	assert.Equal(t, MsgSendStart, rg.r.logs[TX][0])
	assert.Equal(t, MsgSendEnd, rg.term.Log(TX).Last())
}

func TestTerminal_StoreQueryClear(t *testing.T) {
	rg := newRig(t, DefaultConfig())

	rg.term.Do(keys.Of(keys.QueryTX))
	assert.Equal(t, []string{MsgQueryStart, MsgStorageEmpty, MsgQueryEnd}, rg.r.logs[TX])

	for _, s := range []string{"one", "two", "three", "four", "five"} {
		for _, c := range []byte(s) {
			rg.term.Do(keys.Rune(c))
		}
		rg.term.Do(keys.Of(keys.StoreTX))
		rg.term.LongPress(keys.Of(keys.StoreTX))
	}
	assert.Equal(t, []Entry{
		{Slot: 0, Text: "five"},
		{Slot: 1, Text: "two"},
		{Slot: 2, Text: "three"},
		{Slot: 3, Text: "four"},
	}, rg.term.Storage(TX).Entries())

	rg.term.Do(keys.Of(keys.QueryTX))
	lines := rg.term.Log(TX).Lines()
	assert.Equal(t, []string{
		MsgQueryStart, "Slot 0: five", "Slot 1: two", "Slot 2: three", "Slot 3: four", MsgQueryEnd,
	}, lines)

	rg.term.Do(keys.Of(keys.ClearTX))
	assert.Equal(t, []Direction{TX}, rg.r.cleared)
	assert.Empty(t, rg.term.Storage(TX).Entries())
	assert.Equal(t, []string{"", "", "", "", "", MsgTXCleared}, rg.term.Log(TX).Lines())
}

func TestTerminal_StoreRXLastLine(t *testing.T) {
	rg := newRig(t, DefaultConfig())
	rg.term.Do(keys.Of(keys.StoreRX))
	assert.Empty(t, rg.term.Storage(RX).Entries(), "empty log stores nothing")

	rg.term.Receive([]byte("START"))
	rg.term.Do(keys.Of(keys.StoreRX))
	assert.Equal(t, []Entry{{Slot: 0, Text: MsgRecvStart}}, rg.term.Storage(RX).Entries())

	rg.term.Do(keys.Of(keys.ClearRX))
	assert.Equal(t, MsgRXCleared, rg.term.Log(RX).Last())
	assert.Empty(t, rg.term.Storage(RX).Entries())
}

func TestTerminal_TouchInitFailure(t *testing.T) {
	r := &fakeRenderer{}
	tr := &fakeTransport{inbound: [][]byte{[]byte("ping")}}
	term := New(DefaultConfig(), gesture.Config{}, tr, r)

	errDead := errors.New("dead bus")
	err := term.InitTouch(&fakeScanner{}, func() error { return errDead })
	assert.ErrorIs(t, err, errDead)
	assert.ErrorIs(t, term.TouchErr(), touch.ErrDisabled)
	assert.Equal(t, MsgTouchFailed, term.Log(TX).Last())

	term.Poll(time.Now())
	assert.Equal(t, []Entry{{Slot: 0, Text: "ping"}}, term.Storage(RX).Entries())
}

func TestTerminal_ScanErrorIsEmptyPoll(t *testing.T) {
	rg := newRig(t, DefaultConfig())
	errScan := errors.New("nack")
	k := center(rg.region(t, "K").Rect)

	rg.scan.frames = []frame{{contacts: []touch.Contact{k}}}
	for i := 0; i < testDebounce; i++ {
		rg.scan.frames = append(rg.scan.frames, frame{contacts: []touch.Contact{k}, err: errScan})
	}
	rg.poll(1)
	assert.NoError(t, rg.term.TouchErr())

	rg.poll(testDebounce)
	assert.ErrorIs(t, rg.term.TouchErr(), errScan)
	assert.Equal(t, "K", rg.term.Input())

	rg.poll(1)
	assert.NoError(t, rg.term.TouchErr())
}

func TestTerminal_StorageSnapshot(t *testing.T) {
	rg := newRig(t, DefaultConfig())
	rg.term.Receive([]byte("alpha"))
	rg.term.Receive([]byte("beta"))
	rg.term.Do(keys.Rune('X'))
	rg.term.Do(keys.Of(keys.StoreTX))

	var buf bytes.Buffer
	require.NoError(t, rg.term.SaveStorage(&buf))

	cfg := DefaultConfig()
	cfg.StorageSlots = 1
	other := New(cfg, gesture.Config{}, &fakeTransport{}, &fakeRenderer{})
	require.NoError(t, other.LoadStorage(bytes.NewReader(buf.Bytes())))
	assert.Equal(t, []Entry{{Slot: 0, Text: "alpha"}}, other.Storage(RX).Entries())
	assert.Equal(t, []Entry{{Slot: 0, Text: "X"}}, other.Storage(TX).Entries())

	same := New(DefaultConfig(), gesture.Config{}, &fakeTransport{}, &fakeRenderer{})
	require.NoError(t, same.LoadStorage(bytes.NewReader(buf.Bytes())))
	assert.Equal(t, rg.term.Storage(RX).Entries(), same.Storage(RX).Entries())
	same.Storage(RX).Add("gamma")
	assert.Equal(t, "gamma", same.Storage(RX).Entries()[2].Text)

	assert.Error(t, same.LoadStorage(bytes.NewReader([]byte{0xFF, 0x00})))
}

func TestBuffers(t *testing.T) {
	l := NewLog(3, 5)
	l.Append("a")
	l.Append("bcdefgh")
	assert.Equal(t, []string{"", "a", "bcde"}, l.Lines())
	l.Append("x")
	l.Append("y")
	assert.Equal(t, []string{"bcde", "x", "y"}, l.Lines())
	l.Clear()
	assert.Equal(t, "", l.Last())

	s := NewStorage(2, 4)
	s.Add("abcdef")
	s.Add("g")
	s.Add("h")
	assert.Equal(t, []Entry{{0, "h"}, {1, "g"}}, s.Entries())

	in := NewInput(3)
	assert.True(t, in.Type('a'))
	assert.True(t, in.Type('b'))
	assert.False(t, in.Type('c'))
	assert.True(t, in.Backspace())
	assert.True(t, in.Backspace())
	assert.False(t, in.Backspace())
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		s    string
		n    int
		want string
	}{
		{"short", "abc", 5, "abc"},
		{"ascii", "abcdef", 3, "abc"},
		{"rune boundary", "aé", 2, "a"},
		{"whole rune", "aéb", 3, "aé"},
		{"three byte rune", "€€", 4, "€"},
		{"zero", "abc", 0, ""},
		{"negative", "abc", -1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.s, tt.n)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestLog_AppendKeepsRunes(t *testing.T) {
	l := NewLog(2, 4)
	assert.Equal(t, "ab", l.Append("abéé"))
	assert.Equal(t, "ab", l.Last())
}
