// Command termpi runs the touch terminal on a Linux board: the GT9147 is
// bit-banged on two GPIO lines and records travel over a serial port.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itohio/touchterm/pkg/bitbang"
	"github.com/itohio/touchterm/pkg/config"
	"github.com/itohio/touchterm/pkg/gesture"
	"github.com/itohio/touchterm/pkg/gt9147"
	"github.com/itohio/touchterm/pkg/link"
	"github.com/itohio/touchterm/pkg/terminal"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

const pollInterval = 200 * time.Microsecond

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., /dev/ttyGS0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use mocked host instead of serial port")
		noTouch    = flag.Bool("no-touch", false, "Run without the touch controller")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var device link.Device
	if *mockFlag {
		device = link.NewMock(&cfg.Mock)
	} else {
		device = link.New(cfg.Serial.Port, cfg.Serial.BaudRate, link.DefaultBufferSize)
	}
	if err := device.Connect(); err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer device.Close()

	term := terminal.New(cfg.TerminalOptions(), cfg.GestureTiming(), link.NewPoller(device), console{})

	if cfg.Terminal.StorePath != "" {
		if err := loadStorage(term, cfg.Terminal.StorePath); err != nil {
			log.Printf("Storage not restored: %v", err)
		}
		defer func() {
			if err := saveStorage(term, cfg.Terminal.StorePath); err != nil {
				log.Printf("Storage not saved: %v", err)
			}
		}()
	}

	if !*noTouch {
		if err := attachTouch(term, cfg); err != nil {
			log.Printf("Running without touch: %v", err)
		}
	}

	timings := make(chan gesture.Config, 1)
	if err := config.Watch(ctx, *configFlag, func(c *config.Config) {
		select {
		case timings <- c.GestureTiming():
		default:
		}
	}); err != nil {
		log.Printf("Config changes will not be applied: %v", err)
	}

	log.Printf("Terminal running on %s", cfg.Serial.Port)
	run(ctx, term, timings)
	log.Printf("Terminal stopped")
}

// run polls the terminal until ctx is done, applying gesture timing updates
// between polls.
func run(ctx context.Context, term *terminal.Terminal, timings <-chan gesture.Config) {
	for {
		select {
		case <-ctx.Done():
			return
		case g := <-timings:
			term.Gesture().SetConfig(g)
			log.Printf("Gesture timing updated: debounce %d polls, long press %v", g.DebounceFrames, g.LongPress)
		default:
		}

		term.Poll(time.Now())
		time.Sleep(pollInterval)
	}
}

// attachTouch brings up the bit-banged bus and the controller.
func attachTouch(term *terminal.Terminal, cfg *config.Config) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize GPIO: %w", err)
	}

	scl, err := lookupPin(cfg.Bus.SCL)
	if err != nil {
		return err
	}
	sda, err := lookupPin(cfg.Bus.SDA)
	if err != nil {
		return err
	}
	rst, err := lookupPin(cfg.Bus.RST)
	if err != nil {
		return err
	}
	var irq bitbang.Pin
	if cfg.Bus.INT != "" {
		p, err := lookupPin(cfg.Bus.INT)
		if err != nil {
			return err
		}
		irq = p
	}

	bus, err := bitbang.New(scl, sda, cfg.BitBang())
	if err != nil {
		return fmt.Errorf("failed to set up bus: %w", err)
	}

	dev := gt9147.New(bus, rst, irq)
	return term.InitTouch(dev, func() error {
		return dev.Init(cfg.Touch())
	})
}

func lookupPin(name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("unknown GPIO pin %q", name)
	}
	return p, nil
}
