//go:build tinygo

package main

import (
	"github.com/itohio/touchterm/pkg/gesture"
	"github.com/itohio/touchterm/pkg/terminal"
)

// console mirrors what the panel would show on the debug UART.
type console struct {
	w interface {
		Write(p []byte) (int, error)
	}
}

func (c console) line(parts ...string) {
	for _, s := range parts {
		c.w.Write([]byte(s))
	}
	c.w.Write([]byte("\r\n"))
}

func (c console) DrawRegion(r *gesture.Region) {
	if r.Pressed {
		c.line("key [", r.Label, "] down")
	} else {
		c.line("key [", r.Label, "] up")
	}
}

func (c console) AppendLog(dir terminal.Direction, text string) {
	c.line(dir.String(), "| ", text)
}

func (c console) ClearLog(dir terminal.Direction) {
	c.line(dir.String(), "| --")
}

func (c console) RefreshInput(text string) {
	c.line("Input: ", text)
}
