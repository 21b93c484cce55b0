// Package logview provides a Fyne widget that shows a terminal log zone: a
// title bar over a fixed number of scrolling lines.
package logview

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/touchterm/pkg/terminal"
)

// Zone colors, matching the panel.
var (
	ColorBackground = color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xFF}
	ColorTitleBar   = color.RGBA{R: 0x00, G: 0x39, B: 0x7B, A: 0xFF}
	ColorTitle      = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	ColorText       = color.RGBA{R: 0x00, G: 0xFF, B: 0x00, A: 0xFF}
)

// Widget is a scrolling log zone.
type Widget struct {
	widget.BaseWidget

	title string

	mu  sync.RWMutex
	log *terminal.Log
}

// New creates a log zone showing lines lines of at most width-1 characters.
// Sizes that cannot hold a line fall back to the panel's.
func New(title string, lines, width int) *Widget {
	def := terminal.DefaultConfig()
	if lines <= 0 {
		lines = def.LogLines
	}
	if width <= 1 {
		width = def.LogWidth
	}

	w := &Widget{
		title: title,
		log:   terminal.NewLog(lines, width),
	}
	w.ExtendBaseWidget(w)
	return w
}

// Append scrolls the zone up by one line and shows text at the bottom.
// Call it on the Fyne goroutine (fyne.Do from elsewhere).
func (w *Widget) Append(text string) {
	w.mu.Lock()
	w.log.Append(text)
	w.mu.Unlock()

	w.Refresh()
}

// Clear blanks every line.
func (w *Widget) Clear() {
	w.mu.Lock()
	w.log.Clear()
	w.mu.Unlock()

	w.Refresh()
}

// Lines returns a copy of the shown lines, oldest first.
func (w *Widget) Lines() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.log.Lines()
}

// Title returns the zone title.
func (w *Widget) Title() string { return w.title }

// CreateRenderer creates the widget renderer.
func (w *Widget) CreateRenderer() fyne.WidgetRenderer {
	r := &renderer{
		view:       w,
		background: canvas.NewRectangle(ColorBackground),
		titleBar:   canvas.NewRectangle(ColorTitleBar),
		titleText:  canvas.NewText(w.title, ColorTitle),
	}
	r.titleText.TextSize = textSize
	r.titleText.TextStyle = fyne.TextStyle{Bold: true}

	for range w.Lines() {
		t := canvas.NewText("", ColorText)
		t.TextSize = textSize
		t.TextStyle = fyne.TextStyle{Monospace: true}
		r.lines = append(r.lines, t)
	}
	r.Refresh()
	return r
}
