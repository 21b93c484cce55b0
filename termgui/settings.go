package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/touchterm/pkg/link"
)

// showSettingsDialog displays a settings dialog with tabs for the link and
// chunking options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createChunkTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(500, 350))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(500, 350))
	d.Show()
}

func saveConfig(state *appState) {
	if err := state.cfg.Save(state.cfgPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
	}
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	var portOptions []string
	ports, err := link.Ports()
	if err == nil {
		for _, port := range ports {
			portOptions = append(portOptions, port.Name)
		}
	}

	current := state.cfg.Serial.Port
	found := false
	for _, opt := range portOptions {
		if opt == current {
			found = true
			break
		}
	}
	if !found && current != "" {
		portOptions = append(portOptions, current)
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if current != "" {
		portSelect.SetSelected(current)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			changed := false
			if portSelect.Selected != "" && portSelect.Selected != state.cfg.Serial.Port {
				state.cfg.Serial.Port = portSelect.Selected
				changed = true
			}
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 && baud != state.cfg.Serial.BaudRate {
				state.cfg.Serial.BaudRate = baud
				changed = true
			}
			saveConfig(state)

			// Reconnect on the new port
			if changed && state.connected() && !state.useMock {
				handleConnect(state)
				handleConnect(state)
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createChunkTab creates the chunked send configuration tab.
func createChunkTab(state *appState) *container.TabItem {
	sizeEntry := widget.NewEntry()
	sizeEntry.SetText(strconv.Itoa(state.cfg.Terminal.ChunkSize))

	delayEntry := widget.NewEntry()
	delayEntry.SetText(state.cfg.Terminal.ChunkDelay.String())

	capacityEntry := widget.NewEntry()
	capacityEntry.SetText(strconv.Itoa(state.cfg.Terminal.ChunkCapacity))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Chunk Size (bytes)", Widget: sizeEntry},
			{Text: "Delay Between Chunks", Widget: delayEntry},
			{Text: "Receive Capacity (bytes)", Widget: capacityEntry},
		},
		OnSubmit: func() {
			if n, err := strconv.Atoi(sizeEntry.Text); err == nil && n > 0 {
				state.cfg.Terminal.ChunkSize = n
			}
			if d, err := time.ParseDuration(delayEntry.Text); err == nil {
				state.cfg.Terminal.ChunkDelay = d
			}
			if n, err := strconv.Atoi(capacityEntry.Text); err == nil && n > 0 {
				state.cfg.Terminal.ChunkCapacity = n
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Chunks", form)
}

// createMockTab creates the Mock terminal configuration tab.
func createMockTab(state *appState) *container.TabItem {
	periodEntry := widget.NewEntry()
	periodEntry.SetText(state.cfg.Mock.Period.String())

	payloadEntry := widget.NewEntry()
	payloadEntry.SetText(state.cfg.Mock.Payload)

	sizeEntry := widget.NewEntry()
	sizeEntry.SetText(strconv.Itoa(state.cfg.Mock.ChunkSize))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Payload Period", Widget: periodEntry},
			{Text: "Payload", Widget: payloadEntry},
			{Text: "Chunk Size (bytes)", Widget: sizeEntry},
		},
		OnSubmit: func() {
			if p, err := time.ParseDuration(periodEntry.Text); err == nil && p > 0 {
				state.cfg.Mock.Period = p
			}
			if payloadEntry.Text != "" {
				state.cfg.Mock.Payload = payloadEntry.Text
			}
			if n, err := strconv.Atoi(sizeEntry.Text); err == nil && n > 0 {
				state.cfg.Mock.ChunkSize = n
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Mock", form)
}
