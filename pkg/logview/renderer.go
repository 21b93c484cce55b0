package logview

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

const (
	textSize   = 12
	lineHeight = 16
	titleH     = 22
	padding    = 5
)

// renderer draws the title bar and one text object per log line.
type renderer struct {
	view *Widget

	background *canvas.Rectangle
	titleBar   *canvas.Rectangle
	titleText  *canvas.Text
	lines      []*canvas.Text
}

// MinSize fits the title bar and every line.
func (r *renderer) MinSize() fyne.Size {
	return fyne.NewSize(300, titleH+float32(len(r.lines))*lineHeight+2*padding)
}

// Layout arranges the title bar and lines top to bottom.
func (r *renderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	r.background.Move(fyne.NewPos(0, 0))

	r.titleBar.Resize(fyne.NewSize(size.Width, titleH))
	r.titleBar.Move(fyne.NewPos(0, 0))
	r.titleText.Move(fyne.NewPos(padding, (titleH-lineHeight)/2))

	for i, t := range r.lines {
		t.Move(fyne.NewPos(padding*2, titleH+padding+float32(i)*lineHeight))
	}
}

// Refresh copies the log lines into the text objects.
func (r *renderer) Refresh() {
	lines := r.view.Lines()
	for i, t := range r.lines {
		if i < len(lines) {
			t.Text = lines[i]
		}
		t.Refresh()
	}
	r.titleText.Refresh()
}

// Objects returns all canvas objects for rendering.
func (r *renderer) Objects() []fyne.CanvasObject {
	objs := []fyne.CanvasObject{r.background, r.titleBar, r.titleText}
	for _, t := range r.lines {
		objs = append(objs, t)
	}
	return objs
}

// Destroy cleans up resources.
func (r *renderer) Destroy() {}
