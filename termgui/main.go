// Command termgui is the PC side of the touch terminal: it talks to the
// terminal over its USB serial port (or a mock), shows both directions of
// traffic and sends plain or chunked lines.
package main

import (
	"flag"
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/touchterm/pkg/chunk"
	"github.com/itohio/touchterm/pkg/config"
	"github.com/itohio/touchterm/pkg/link"
	"github.com/itohio/touchterm/pkg/logview"
)

const logLines = 16

func main() {
	var (
		portFlag      = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag    = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag      = flag.Bool("mock", false, "Use mocked terminal instead of serial port")
		chunkSizeFlag = flag.Int("chunk-size", 0, "Bytes per chunk for chunked sends (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *chunkSizeFlag > 0 {
		cfg.Terminal.ChunkSize = *chunkSizeFlag
	}

	application := app.NewWithID("com.itohio.touchterm")

	window := application.NewWindow("Serial Touch Terminal")
	window.Resize(fyne.NewSize(900, 700))
	window.CenterOnScreen()

	state := &appState{
		cfg:     cfg,
		cfgPath: *configFlag,
		window:  window,
		useMock: *mockFlag,
		rx:      logview.New("MCU -> PC (Received)", logLines, cfg.Terminal.LogWidth),
		tx:      logview.New("PC -> MCU (Sent)", logLines, cfg.Terminal.LogWidth),
	}

	toolbar := createToolbar(state)
	input := createInput(state)

	content := container.NewBorder(
		toolbar,
		input,
		nil,
		nil,
		container.NewGridWithRows(2, state.rx, state.tx),
	)

	window.SetContent(content)
	window.SetOnClosed(func() {
		closeSession(state.session)
	})
	window.ShowAndRun()
}

// session tracks one connection for graceful shutdown.
type session struct {
	device link.Device
	events <-chan chunk.Event
	done   chan struct{} // Closed when the event goroutine exits
}

// appState holds the application state.
type appState struct {
	cfg     *config.Config
	cfgPath string
	window  fyne.Window
	useMock bool

	device  link.Device
	session *session

	connectBtn *widget.Button
	sendBtn    *widget.Button
	chunkBtn   *widget.Button
	entry      *widget.Entry

	rx *logview.Widget
	tx *logview.Widget
}

func (s *appState) connected() bool {
	return s.device != nil && s.device.IsConnected()
}

// createToolbar creates the toolbar with Connect and Settings buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("Connect", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	clearBtn := widget.NewButtonWithIcon("", theme.ContentClearIcon(), func() {
		state.rx.Clear()
		state.tx.Clear()
	})

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(connectBtn, settingsBtn),
		clearBtn,
		nil,
	)
}

// createInput creates the line entry with its Send and Send Chunked buttons.
func createInput(state *appState) fyne.CanvasObject {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("Line to send")
	entry.OnSubmitted = func(string) { handleSend(state) }
	state.entry = entry

	state.sendBtn = widget.NewButtonWithIcon("Send", theme.MailSendIcon(), func() {
		handleSend(state)
	})
	state.chunkBtn = widget.NewButton("Send Chunked", func() {
		handleSendChunked(state)
	})
	state.sendBtn.Disable()
	state.chunkBtn.Disable()

	return container.NewBorder(nil, nil, nil, container.NewHBox(state.sendBtn, state.chunkBtn), entry)
}

// closeSession closes the device and waits for the event goroutine to drain.
func closeSession(s *session) {
	if s == nil {
		return
	}

	if s.device != nil {
		s.device.Close()
	}

	if s.done != nil {
		<-s.done
	}
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.connected() {
		closeSession(state.session)
		state.session = nil
		state.device = nil
		state.connectBtn.SetText("Connect")
		state.sendBtn.Disable()
		state.chunkBtn.Disable()
		log.Printf("Disconnected")
		return
	}

	var device link.Device
	if state.useMock {
		device = link.NewMock(&state.cfg.Mock)
	} else {
		device = link.New(state.cfg.Serial.Port, state.cfg.Serial.BaudRate, link.DefaultBufferSize)
	}

	if err := device.Connect(); err != nil {
		dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", describeTarget(state), err), state.window)
		return
	}
	state.device = device
	log.Printf("Connected to %s", describeTarget(state))

	state.connectBtn.SetText("Disconnect")
	state.sendBtn.Enable()
	state.chunkBtn.Enable()

	events := chunk.Messages(chunk.NewStream(state.cfg.Terminal.ChunkCapacity, link.DefaultBufferSize)(device.Records()))
	done := make(chan struct{})

	go func() {
		defer close(done)
		for ev := range events {
			line := describeEvent(ev)
			fyne.Do(func() {
				state.rx.Append(line)
			})
		}
	}()

	state.session = &session{
		device: device,
		events: events,
		done:   done,
	}
}

func describeTarget(state *appState) string {
	if state.useMock {
		return "mocked terminal"
	}
	return state.cfg.Serial.Port
}
