//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"

	"github.com/itohio/touchterm/pkg/bitbang"
	"github.com/itohio/touchterm/pkg/gesture"
	"github.com/itohio/touchterm/pkg/gt9147"
	"github.com/itohio/touchterm/pkg/terminal"
	"github.com/itohio/touchterm/pkg/touch"
)

func main() {
	uart := machine.DefaultUART
	uart.Configure(machine.UARTConfig{BaudRate: CONSOLE_BAUD_RATE})
	out := console{w: uart}

	cfg := terminal.DefaultConfig()
	term := terminal.New(cfg, gesture.Config{}, &lineTransport{port: machine.Serial}, out)

	scl := &pin{p: PIN_TOUCH_SCL}
	sda := &pin{p: PIN_TOUCH_SDA}
	rst := &pin{p: PIN_TOUCH_RST}
	irq := &pin{p: PIN_TOUCH_INT}

	bus, err := bitbang.New(scl, sda, bitbang.Config{})
	if err != nil {
		println("bus:", err.Error())
	} else {
		dev := gt9147.New(bus, rst, irq)
		err := term.InitTouch(dev, func() error {
			return dev.Init(gt9147.Config{
				Width:       cfg.Width,
				Height:      cfg.Height,
				Orientation: touch.Landscape,
			})
		})
		if err != nil {
			println(err.Error())
		}
	}

	for _, r := range term.Regions() {
		out.DrawRegion(&r)
	}
	out.RefreshInput("")

	for {
		term.Poll(time.Now())
		time.Sleep(POLL_INTERVAL_US * time.Microsecond)
	}
}
