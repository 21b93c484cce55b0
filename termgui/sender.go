package main

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"github.com/itohio/touchterm/pkg/chunk"
	"github.com/itohio/touchterm/pkg/terminal"
)

// handleSend sends the entry text as one record.
func handleSend(state *appState) {
	if !state.connected() || state.entry.Text == "" {
		return
	}

	text := state.entry.Text
	if err := state.device.Send([]byte(text)); err != nil {
		dialog.ShowError(fmt.Errorf("failed to send: %w", err), state.window)
		return
	}

	state.tx.Append(text)
	state.entry.SetText("")
}

// handleSendChunked sends the entry text framed by START and END in
// chunk_size pieces. Records are paced off the UI goroutine.
func handleSendChunked(state *appState) {
	if !state.connected() || state.entry.Text == "" {
		return
	}

	payload := []byte(state.entry.Text)
	device := state.device
	size := state.cfg.Terminal.ChunkSize
	delay := state.cfg.Terminal.ChunkDelay

	state.entry.SetText("")
	state.chunkBtn.Disable()

	go func() {
		err := sendChunked(device.Send, payload, size, delay, time.Sleep, func(line string) {
			fyne.Do(func() { state.tx.Append(line) })
		})
		fyne.Do(func() {
			if err != nil {
				dialog.ShowError(fmt.Errorf("failed to send chunked: %w", err), state.window)
			}
			if state.connected() {
				state.chunkBtn.Enable()
			}
		})
	}()
}

// sendChunked transmits payload as START, pieces of size bytes and END,
// sleeping delay between records, and reports each step to logf the way the
// terminal logs its own chunked sends.
func sendChunked(send func([]byte) error, payload []byte, size int, delay time.Duration, sleep func(time.Duration), logf func(string)) error {
	parts := chunk.Split(payload, size)
	last := len(parts) - 1
	for i, p := range parts {
		if err := send(p); err != nil {
			return err
		}
		switch i {
		case 0:
			logf(terminal.MsgSendStart)
		case last:
			logf(terminal.MsgSendEnd)
		default:
			logf(string(p))
		}
		if i != last {
			sleep(delay)
		}
	}
	return nil
}

// describeEvent renders a received message for the RX view.
func describeEvent(ev chunk.Event) string {
	switch ev.Kind {
	case chunk.Complete:
		return "[Chunked] " + string(ev.Data)
	case chunk.Overflow:
		return terminal.MsgOverflow
	default:
		return string(ev.Data)
	}
}
