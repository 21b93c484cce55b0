//go:build tinygo

package main

import (
	"machine"

	"periph.io/x/conn/v3/gpio"
)

// pin adapts machine.Pin to bitbang.Pin. Direction changes reconfigure the
// pin, as the two-wire bus releases its data line by switching to input.
type pin struct {
	p      machine.Pin
	output bool
}

func (p *pin) Out(l gpio.Level) error {
	if !p.output {
		p.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.output = true
	}
	p.p.Set(bool(l))
	return nil
}

func (p *pin) In(pull gpio.Pull, _ gpio.Edge) error {
	mode := machine.PinInput
	switch pull {
	case gpio.PullUp:
		mode = machine.PinInputPullup
	case gpio.PullDown:
		mode = machine.PinInputPulldown
	}
	p.p.Configure(machine.PinConfig{Mode: mode})
	p.output = false
	return nil
}

func (p *pin) Read() gpio.Level {
	return gpio.Level(p.p.Get())
}
