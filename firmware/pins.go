//go:build tinygo

package main

import "machine"

const (
	// Touch controller wiring
	PIN_TOUCH_SCL = machine.D5
	PIN_TOUCH_SDA = machine.D4
	PIN_TOUCH_RST = machine.D2
	PIN_TOUCH_INT = machine.D3

	// Poll loop pacing. The gesture debounce counts polls, so this sets the
	// release delay (40 polls).
	POLL_INTERVAL_US = 100

	// Records longer than this are split at the limit
	MAX_RECORD = 255

	// Debug console (hardware UART, the USB port carries records)
	CONSOLE_BAUD_RATE = 115200
)
