package gesture

import (
	"image"
	"testing"
	"time"

	"github.com/itohio/touchterm/pkg/keys"
	"github.com/itohio/touchterm/pkg/touch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func testRegions() []Region {
	return []Region{
		{Rect: image.Rect(10, 10, 50, 45), Label: "A", Action: keys.Rune('A')},
		{Rect: image.Rect(60, 10, 100, 45), Label: "B", Action: keys.Rune('B')},
	}
}

func at(x, y int) []touch.Contact {
	return []touch.Contact{{X: x, Y: y}}
}

// releaseAfter feeds n empty polls and returns the last result.
func releaseAfter(m *Machine, now time.Time, n int) (Event, bool) {
	var (
		ev Event
		ok bool
	)
	for i := 0; i < n; i++ {
		ev, ok = m.Update(now, nil)
	}
	return ev, ok
}

func TestRegionHit_Strict(t *testing.T) {
	r := Region{Rect: image.Rect(10, 10, 50, 45)}
	tests := []struct {
		x, y int
		want bool
	}{
		{11, 11, true},
		{49, 44, true},
		{30, 20, true},
		{10, 20, false},
		{50, 20, false},
		{30, 10, false},
		{30, 45, false},
		{0, 0, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Hit(tt.x, tt.y), "(%d,%d)", tt.x, tt.y)
	}
}

func TestMachine_Tap(t *testing.T) {
	regions := testRegions()
	m := New(Config{}, regions)

	ev, ok := m.Update(t0, at(20, 20))
	require.True(t, ok)
	assert.Equal(t, Down, ev.Kind)
	assert.Same(t, &regions[0], ev.Region)
	assert.Equal(t, Pressed, m.State())
	assert.True(t, regions[0].Pressed)

	_, ok = m.Update(t0.Add(10*time.Millisecond), at(21, 21))
	assert.False(t, ok)
	assert.Equal(t, Holding, m.State())

	ev, ok = releaseAfter(m, t0.Add(20*time.Millisecond), DefaultDebounceFrames-1)
	assert.False(t, ok)
	assert.Equal(t, Holding, m.State(), "39 empty polls keep holding")
	assert.True(t, regions[0].Pressed)

	ev, ok = m.Update(t0.Add(30*time.Millisecond), nil)
	require.True(t, ok)
	assert.Equal(t, Activate, ev.Kind)
	assert.Same(t, &regions[0], ev.Region)
	assert.Equal(t, keys.Rune('A'), ev.Region.Action)
	assert.Equal(t, Released, m.State())
	assert.False(t, regions[0].Pressed)
	assert.Nil(t, m.Active())

	_, ok = m.Update(t0.Add(40*time.Millisecond), nil)
	assert.False(t, ok)
	assert.Equal(t, Idle, m.State(), "released lasts one poll")
}

func TestMachine_SlideOffCancels(t *testing.T) {
	regions := testRegions()
	m := New(Config{}, regions)

	m.Update(t0, at(20, 20))
	m.Update(t0, at(70, 20))

	ev, ok := releaseAfter(m, t0, DefaultDebounceFrames)
	require.True(t, ok)
	assert.Equal(t, Cancel, ev.Kind)
	assert.Same(t, &regions[0], ev.Region)
	assert.False(t, regions[0].Pressed)
	assert.False(t, regions[1].Pressed)
}

func TestMachine_SlideToBorderCancels(t *testing.T) {
	regions := testRegions()
	m := New(Config{}, regions)

	m.Update(t0, at(20, 20))
	m.Update(t0, at(50, 20))

	ev, ok := releaseAfter(m, t0, DefaultDebounceFrames)
	require.True(t, ok)
	assert.Equal(t, Cancel, ev.Kind)
}

func TestMachine_ChatterDoesNotRelease(t *testing.T) {
	regions := testRegions()
	m := New(Config{}, regions)

	m.Update(t0, at(20, 20))
	for round := 0; round < 5; round++ {
		_, ok := releaseAfter(m, t0, DefaultDebounceFrames-1)
		assert.False(t, ok)
		_, ok = m.Update(t0, at(20, 20))
		assert.False(t, ok)
		assert.Equal(t, Holding, m.State())
	}

	ev, ok := releaseAfter(m, t0, DefaultDebounceFrames)
	require.True(t, ok)
	assert.Equal(t, Activate, ev.Kind)
}

func TestMachine_PressOutsideRegions(t *testing.T) {
	regions := testRegions()
	m := New(Config{}, regions)

	_, ok := m.Update(t0, at(200, 200))
	assert.False(t, ok)
	assert.Equal(t, Pressed, m.State())
	assert.Nil(t, m.Active())

	_, ok = m.Update(t0, at(20, 20))
	assert.False(t, ok, "sliding onto a region does not press it")

	_, ok = releaseAfter(m, t0, DefaultDebounceFrames)
	assert.False(t, ok)
	assert.Equal(t, Released, m.State())
}

func TestMachine_LongPressOnce(t *testing.T) {
	regions := testRegions()
	m := New(Config{LongPress: 500 * time.Millisecond}, regions)

	m.Update(t0, at(70, 20))
	_, ok := m.Update(t0.Add(499*time.Millisecond), at(70, 20))
	assert.False(t, ok)

	ev, ok := m.Update(t0.Add(500*time.Millisecond), at(70, 20))
	require.True(t, ok)
	assert.Equal(t, LongPress, ev.Kind)
	assert.Same(t, &regions[1], ev.Region)

	_, ok = m.Update(t0.Add(2*time.Second), at(70, 20))
	assert.False(t, ok, "long press fires once per press")

	ev, ok = releaseAfter(m, t0.Add(3*time.Second), DefaultDebounceFrames)
	require.True(t, ok)
	assert.Equal(t, Activate, ev.Kind)

	// A new press re-arms the latch.
	m.Update(t0.Add(4*time.Second), at(70, 20))
	ev, ok = m.Update(t0.Add(5*time.Second), at(70, 20))
	require.True(t, ok)
	assert.Equal(t, LongPress, ev.Kind)
}

func TestMachine_ReleasedThenPress(t *testing.T) {
	regions := testRegions()
	m := New(Config{DebounceFrames: 2}, regions)

	m.Update(t0, at(20, 20))
	_, ok := releaseAfter(m, t0, 2)
	require.True(t, ok)
	require.Equal(t, Released, m.State())

	ev, ok := m.Update(t0, at(70, 20))
	require.True(t, ok)
	assert.Equal(t, Down, ev.Kind)
	assert.Same(t, &regions[1], ev.Region)
	assert.Equal(t, Pressed, m.State())
	x, y := m.PressPosition()
	assert.Equal(t, []int{70, 20}, []int{x, y})
}

func TestMachine_OnlyFirstContact(t *testing.T) {
	regions := testRegions()
	m := New(Config{}, regions)

	ev, ok := m.Update(t0, []touch.Contact{{ID: 0, X: 70, Y: 20}, {ID: 1, X: 20, Y: 20}})
	require.True(t, ok)
	assert.Same(t, &regions[1], ev.Region)
	assert.False(t, regions[0].Pressed)
}

func TestMachine_IdleStaysIdle(t *testing.T) {
	m := New(Config{}, testRegions())
	for i := 0; i < 100; i++ {
		_, ok := m.Update(t0, nil)
		assert.False(t, ok)
	}
	assert.Equal(t, Idle, m.State())
}

func TestMachine_SetConfig(t *testing.T) {
	m := New(Config{}, testRegions())
	m.SetConfig(Config{DebounceFrames: 3})
	assert.Equal(t, 3, m.cfg.DebounceFrames)
	assert.Equal(t, DefaultLongPress, m.cfg.LongPress)

	m.Update(t0, at(20, 20))
	ev, ok := releaseAfter(m, t0, 3)
	require.True(t, ok)
	assert.Equal(t, Activate, ev.Kind)
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "holding", Holding.String())
	assert.Equal(t, "unknown", State(9).String())
	assert.Equal(t, "cancel", Cancel.String())
	assert.Equal(t, "none", EventKind(0).String())
}
