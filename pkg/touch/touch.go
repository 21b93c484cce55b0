// Package touch holds the types shared between touch controller drivers and
// the code consuming their contacts.
package touch

import "errors"

// MaxContacts is the largest number of contacts a single poll may report.
const MaxContacts = 5

// ErrDisabled is reported when touch input is not available.
var ErrDisabled = errors.New("touch: disabled")

// Contact is one accepted touch point in screen coordinates.
type Contact struct {
	ID uint8
	X  int
	Y  int
}

// Scanner fetches the contacts of one poll into dst and returns how many were
// accepted. Zero means no change this poll, not necessarily no touch.
type Scanner interface {
	Scan(dst []Contact) (int, error)
}

// Orientation selects how raw panel coordinates map to the screen.
type Orientation int

const (
	Portrait Orientation = iota
	Landscape
)

func (o Orientation) String() string {
	switch o {
	case Portrait:
		return "portrait"
	case Landscape:
		return "landscape"
	default:
		return "unknown"
	}
}

// ParseOrientation maps a configuration name onto an Orientation.
func ParseOrientation(s string) (Orientation, bool) {
	switch s {
	case "portrait":
		return Portrait, true
	case "landscape":
		return Landscape, true
	}
	return Portrait, false
}

// Transform maps a raw panel coordinate to the screen. Landscape is the
// panel rotated by 90 degrees: screen y follows raw x and screen x runs
// against raw y.
func (o Orientation) Transform(rawX, rawY, width int) (x, y int) {
	if o == Landscape {
		return width - rawY, rawX
	}
	return rawX, rawY
}

// Inside reports whether the point lies within [0,width) x [0,height).
func Inside(x, y, width, height int) bool {
	return x >= 0 && x < width && y >= 0 && y < height
}
