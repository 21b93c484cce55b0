package terminal

import (
	"image"
	"image/color"

	"github.com/itohio/touchterm/pkg/gesture"
	"github.com/itohio/touchterm/pkg/keys"
)

// Screen geometry of the landscape panel.
const (
	ScreenWidth  = 800
	ScreenHeight = 480

	titleHeight = 30
	logHeight   = 120
	zoneGap     = 5

	rxLogY    = titleHeight
	txLogY    = rxLogY + logHeight + zoneGap
	keyboardY = txLogY + logHeight + zoneGap
	inputY    = keyboardY + 5
	gridY     = inputY + 25

	keyW = 40
	keyH = 35
	keyM = 5

	ctrlW = 100
	ctrlH = 28
	ctrlM = 8
	ctrlX = keyM*11 + keyW*10 + 20
)

// Screen areas owned by the renderer.
var (
	TitleArea = image.Rect(0, 0, ScreenWidth, titleHeight)
	RXLogArea = image.Rect(0, rxLogY, ScreenWidth, rxLogY+logHeight)
	TXLogArea = image.Rect(0, txLogY, ScreenWidth, txLogY+logHeight)
	InputArea = image.Rect(10, inputY, ctrlX-10, inputY+16)
)

// Key colors.
var (
	ColorKey     = color.RGBA{R: 0x00, G: 0x39, B: 0x7B, A: 0xFF}
	ColorSpecial = color.RGBA{R: 0xFF, A: 0xFF}
	ColorPressed = color.RGBA{G: 0xFF, A: 0xFF}
)

var charRows = [...]struct {
	first int
	keys  string
}{
	{0, "1234567890"},
	{0, "QWERTYUIOP"},
	{1, "ASDFGHJKL"},
	{2, "ZXCVBNM"},
}

// keyRect is the cell at column col of grid row row.
func keyRect(col, row int) image.Rectangle {
	x := keyM*(col+1) + keyW*col
	y := gridY + (keyH+keyM)*row
	return image.Rect(x, y, x+keyW, y+keyH)
}

func ctrlRect(col, row int) image.Rectangle {
	x := ctrlX + (ctrlW+ctrlM)*col
	y := gridY + (ctrlH+ctrlM)*row
	return image.Rect(x, y, x+ctrlW, y+ctrlH)
}

// Layout returns a fresh set of key regions: the character grid, SEND and
// Bksp, followed by the control buttons.
func Layout() []gesture.Region {
	var regions []gesture.Region
	for row, r := range charRows {
		for i := 0; i < len(r.keys); i++ {
			c := r.keys[i]
			regions = append(regions, gesture.Region{
				Rect:   keyRect(r.first+i, row),
				Label:  string(c),
				Color:  ColorKey,
				Action: keys.Rune(c),
			})
		}
	}

	send := keyRect(0, 3)
	send.Max.X = send.Min.X + keyW*2 + keyM
	regions = append(regions,
		gesture.Region{Rect: send, Label: "SEND", Color: ColorSpecial, Action: keys.Of(keys.Send)},
		gesture.Region{Rect: keyRect(9, 3), Label: "Bksp", Color: ColorSpecial, Action: keys.Of(keys.Backspace)},
	)

	controls := []struct {
		col, row int
		label    string
		kind     keys.Kind
	}{
		{0, 0, "Store TX", keys.StoreTX},
		{0, 1, "Query TX", keys.QueryTX},
		{0, 2, "Clear TX", keys.ClearTX},
		{1, 0, "Store RX", keys.StoreRX},
		{1, 1, "Query RX", keys.QueryRX},
		{1, 2, "Clear RX", keys.ClearRX},
	}
	for _, c := range controls {
		regions = append(regions, gesture.Region{
			Rect:   ctrlRect(c.col, c.row),
			Label:  c.label,
			Color:  ColorKey,
			Action: keys.Of(c.kind),
		})
	}

	y := gridY + (ctrlH+ctrlM)*7/2
	regions = append(regions, gesture.Region{
		Rect:   image.Rect(ctrlX, y, ctrlX+ctrlW*2+ctrlM, y+ctrlH),
		Label:  "Send 8-Byte Chunks",
		Color:  ColorSpecial,
		Action: keys.Of(keys.SendChunks),
	})
	return regions
}
