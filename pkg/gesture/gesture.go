// Package gesture turns per-poll touch contacts into press, hold and release
// transitions bound to rectangular on-screen regions.
package gesture

import (
	"image"
	"image/color"
	"time"

	"github.com/itohio/touchterm/pkg/keys"
	"github.com/itohio/touchterm/pkg/touch"
)

const (
	// DefaultDebounceFrames is the run of empty polls that confirms a release.
	DefaultDebounceFrames = 40
	// DefaultLongPress is the hold time after which a long press fires.
	DefaultLongPress = time.Second
)

// State of the gesture.
type State uint8

const (
	Idle State = iota
	// Pressed lasts exactly one poll after the first contact.
	Pressed
	Holding
	// Released lasts exactly one poll after the release was confirmed.
	Released
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pressed:
		return "pressed"
	case Holding:
		return "holding"
	case Released:
		return "released"
	default:
		return "unknown"
	}
}

// Region is a caller-owned hit area. The machine only reads its geometry
// and toggles Pressed.
type Region struct {
	Rect    image.Rectangle
	Label   string
	Color   color.RGBA
	Action  keys.Action
	Pressed bool
}

// Hit reports whether (x, y) lies strictly inside the region. Points on the
// border do not count.
func (r *Region) Hit(x, y int) bool {
	return x > r.Rect.Min.X && x < r.Rect.Max.X &&
		y > r.Rect.Min.Y && y < r.Rect.Max.Y
}

// EventKind identifies what a poll produced.
type EventKind uint8

const (
	// Down is emitted when a press lands on a region. Nothing is activated
	// yet.
	Down EventKind = iota + 1
	// LongPress fires once per press after the configured hold time.
	LongPress
	// Activate is emitted when the release point is still on the pressed
	// region.
	Activate
	// Cancel is emitted when the finger slid off the pressed region.
	Cancel
)

func (k EventKind) String() string {
	switch k {
	case Down:
		return "down"
	case LongPress:
		return "long-press"
	case Activate:
		return "activate"
	case Cancel:
		return "cancel"
	default:
		return "none"
	}
}

// Event is a gesture outcome for a region.
type Event struct {
	Kind   EventKind
	Region *Region
	X, Y   int
}

// Config tunes the machine. Zero values select the defaults.
type Config struct {
	DebounceFrames int
	LongPress      time.Duration
}

func (c *Config) ensureDefaults() {
	if c.DebounceFrames <= 0 {
		c.DebounceFrames = DefaultDebounceFrames
	}
	if c.LongPress <= 0 {
		c.LongPress = DefaultLongPress
	}
}

// Machine tracks a single-finger gesture. Only the first contact of each poll
// is considered. It is not safe for concurrent use; one poll loop owns it.
type Machine struct {
	cfg     Config
	regions []Region

	state     State
	pressX    int
	pressY    int
	pressTime time.Time
	curX      int
	curY      int
	active    *Region
	empty     int
	longFired bool
}

// New creates a machine hit-testing against regions. The slice is shared
// with the caller.
func New(cfg Config, regions []Region) *Machine {
	cfg.ensureDefaults()
	return &Machine{cfg: cfg, regions: regions}
}

// SetConfig replaces the timings. A gesture in progress keeps its state.
func (m *Machine) SetConfig(cfg Config) {
	cfg.ensureDefaults()
	m.cfg = cfg
}

// State returns the state after the last Update.
func (m *Machine) State() State { return m.state }

// Active returns the region the current press started on, or nil.
func (m *Machine) Active() *Region { return m.active }

// Position returns the last known contact coordinates.
func (m *Machine) Position() (x, y int) { return m.curX, m.curY }

// PressPosition returns where the current press started.
func (m *Machine) PressPosition() (x, y int) { return m.pressX, m.pressY }

// Find returns the region containing (x, y), or nil.
func (m *Machine) Find(x, y int) *Region {
	for i := range m.regions {
		if m.regions[i].Hit(x, y) {
			return &m.regions[i]
		}
	}
	return nil
}

// Update advances the machine by one poll. contacts holds the accepted
// contacts of the poll; a failed scan is passed as an empty slice. At most
// one event is returned.
func (m *Machine) Update(now time.Time, contacts []touch.Contact) (Event, bool) {
	if len(contacts) > 0 {
		m.empty = 0
		m.curX, m.curY = contacts[0].X, contacts[0].Y
		if m.state == Idle || m.state == Released {
			return m.press(now)
		}
		m.state = Holding
		return m.hold(now)
	}

	switch m.state {
	case Pressed, Holding:
		m.empty++
		if m.empty < m.cfg.DebounceFrames {
			return Event{}, false
		}
		return m.release()
	default:
		m.state = Idle
		m.empty = 0
		return Event{}, false
	}
}

func (m *Machine) press(now time.Time) (Event, bool) {
	m.state = Pressed
	m.pressX, m.pressY = m.curX, m.curY
	m.pressTime = now
	m.longFired = false
	m.active = m.Find(m.pressX, m.pressY)
	if m.active == nil {
		return Event{}, false
	}
	m.active.Pressed = true
	return Event{Kind: Down, Region: m.active, X: m.pressX, Y: m.pressY}, true
}

func (m *Machine) hold(now time.Time) (Event, bool) {
	if m.longFired || m.active == nil || now.Sub(m.pressTime) < m.cfg.LongPress {
		return Event{}, false
	}
	m.longFired = true
	return Event{Kind: LongPress, Region: m.active, X: m.curX, Y: m.curY}, true
}

func (m *Machine) release() (Event, bool) {
	m.state = Released
	m.empty = 0
	pressed := m.active
	m.active = nil
	if pressed == nil {
		return Event{}, false
	}
	pressed.Pressed = false
	ev := Event{Kind: Cancel, Region: pressed, X: m.curX, Y: m.curY}
	if m.Find(m.curX, m.curY) == pressed {
		ev.Kind = Activate
	}
	return ev, true
}
