package config

import (
	"fmt"
	"os"
	"time"

	"github.com/itohio/touchterm/pkg/bitbang"
	"github.com/itohio/touchterm/pkg/gesture"
	"github.com/itohio/touchterm/pkg/gt9147"
	"github.com/itohio/touchterm/pkg/terminal"
	"github.com/itohio/touchterm/pkg/touch"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial   SerialConfig   `yaml:"serial"`
	Display  DisplayConfig  `yaml:"display"`
	Bus      BusConfig      `yaml:"bus"`
	Gesture  GestureConfig  `yaml:"gesture"`
	Terminal TerminalConfig `yaml:"terminal"`
	Mock     MockConfig     `yaml:"mock"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// DisplayConfig describes the panel.
type DisplayConfig struct {
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Orientation string `yaml:"orientation"` // portrait or landscape
}

// BusConfig contains the touch controller wiring and bus timing calibration.
type BusConfig struct {
	SCL        string        `yaml:"scl"`
	SDA        string        `yaml:"sda"`
	RST        string        `yaml:"rst"`
	INT        string        `yaml:"int"` // Optional
	HalfPeriod time.Duration `yaml:"half_period"`
	PollDelay  time.Duration `yaml:"poll_delay"`
	AckRetries int           `yaml:"ack_retries"`
}

// GestureConfig contains press/release timing.
type GestureConfig struct {
	DebounceFrames int           `yaml:"debounce_frames"`
	LongPress      time.Duration `yaml:"long_press"`
}

// TerminalConfig contains buffer sizes and the chunked sender settings.
type TerminalConfig struct {
	LogLines      int           `yaml:"log_lines"`
	LogWidth      int           `yaml:"log_width"`
	StorageSlots  int           `yaml:"storage_slots"`
	StorageWidth  int           `yaml:"storage_width"`
	InputLength   int           `yaml:"input_length"`
	ChunkCapacity int           `yaml:"chunk_capacity"`
	ChunkSize     int           `yaml:"chunk_size"`
	ChunkDelay    time.Duration `yaml:"chunk_delay"`
	ChunkPayload  string        `yaml:"chunk_payload"`
	StorePath     string        `yaml:"store_path"` // Storage snapshot file, empty disables
}

// MockConfig contains mock device configuration.
type MockConfig struct {
	Period    time.Duration `yaml:"period"`     // Time between chunked payloads
	Payload   string        `yaml:"payload"`    // Payload sent in chunks
	ChunkSize int           `yaml:"chunk_size"` // Bytes per chunk
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	term := terminal.DefaultConfig()
	return &Config{
		Serial: SerialConfig{
			Port:     "COM3", // Default for Windows, should be "/dev/ttyACM0" on Linux/Mac
			BaudRate: 115200,
		},
		Display: DisplayConfig{
			Width:       terminal.ScreenWidth,
			Height:      terminal.ScreenHeight,
			Orientation: touch.Landscape.String(),
		},
		Bus: BusConfig{
			SCL:        "GPIO3",
			SDA:        "GPIO2",
			RST:        "GPIO17",
			INT:        "GPIO27",
			HalfPeriod: bitbang.DefaultHalfPeriod,
			PollDelay:  bitbang.DefaultPollDelay,
			AckRetries: bitbang.DefaultAckRetries,
		},
		Gesture: GestureConfig{
			DebounceFrames: gesture.DefaultDebounceFrames,
			LongPress:      gesture.DefaultLongPress,
		},
		Terminal: TerminalConfig{
			LogLines:      term.LogLines,
			LogWidth:      term.LogWidth,
			StorageSlots:  term.StorageSlots,
			StorageWidth:  term.StorageWidth,
			InputLength:   term.InputLength,
			ChunkCapacity: term.ChunkCapacity,
			ChunkSize:     term.ChunkSize,
			ChunkDelay:    term.ChunkDelay,
			ChunkPayload:  term.ChunkPayload,
			StorePath:     "storage.cbor",
		},
		Mock: MockConfig{
			Period:    10 * time.Second,
			Payload:   "HelloFromTheHostSideInSmallPieces",
			ChunkSize: 8,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate <= 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Display.Width <= 0 {
		c.Display.Width = def.Display.Width
	}
	if c.Display.Height <= 0 {
		c.Display.Height = def.Display.Height
	}
	if _, ok := touch.ParseOrientation(c.Display.Orientation); !ok {
		c.Display.Orientation = def.Display.Orientation
	}

	if c.Bus.SCL == "" {
		c.Bus.SCL = def.Bus.SCL
	}
	if c.Bus.SDA == "" {
		c.Bus.SDA = def.Bus.SDA
	}
	if c.Bus.RST == "" {
		c.Bus.RST = def.Bus.RST
	}
	if c.Bus.HalfPeriod <= 0 {
		c.Bus.HalfPeriod = def.Bus.HalfPeriod
	}
	if c.Bus.PollDelay <= 0 {
		c.Bus.PollDelay = def.Bus.PollDelay
	}
	if c.Bus.AckRetries <= 0 {
		c.Bus.AckRetries = def.Bus.AckRetries
	}

	if c.Gesture.DebounceFrames <= 0 {
		c.Gesture.DebounceFrames = def.Gesture.DebounceFrames
	}
	if c.Gesture.LongPress <= 0 {
		c.Gesture.LongPress = def.Gesture.LongPress
	}

	if c.Terminal.LogLines <= 0 {
		c.Terminal.LogLines = def.Terminal.LogLines
	}
	if c.Terminal.LogWidth <= 0 {
		c.Terminal.LogWidth = def.Terminal.LogWidth
	}
	if c.Terminal.StorageSlots <= 0 {
		c.Terminal.StorageSlots = def.Terminal.StorageSlots
	}
	if c.Terminal.StorageWidth <= 0 {
		c.Terminal.StorageWidth = def.Terminal.StorageWidth
	}
	if c.Terminal.InputLength <= 0 {
		c.Terminal.InputLength = def.Terminal.InputLength
	}
	if c.Terminal.ChunkCapacity <= 0 {
		c.Terminal.ChunkCapacity = def.Terminal.ChunkCapacity
	}
	if c.Terminal.ChunkSize <= 0 {
		c.Terminal.ChunkSize = def.Terminal.ChunkSize
	}
	if c.Terminal.ChunkDelay < 0 {
		c.Terminal.ChunkDelay = def.Terminal.ChunkDelay
	}
	if c.Terminal.ChunkPayload == "" {
		c.Terminal.ChunkPayload = def.Terminal.ChunkPayload
	}

	if c.Mock.Period <= 0 {
		c.Mock.Period = def.Mock.Period
	}
	if c.Mock.Payload == "" {
		c.Mock.Payload = def.Mock.Payload
	}
	if c.Mock.ChunkSize <= 0 {
		c.Mock.ChunkSize = def.Mock.ChunkSize
	}
}

// Orientation returns the parsed display orientation.
func (c *Config) Orientation() touch.Orientation {
	o, _ := touch.ParseOrientation(c.Display.Orientation)
	return o
}

// BitBang returns the bus calibration.
func (c *Config) BitBang() bitbang.Config {
	return bitbang.Config{
		HalfPeriod: c.Bus.HalfPeriod,
		PollDelay:  c.Bus.PollDelay,
		AckRetries: c.Bus.AckRetries,
	}
}

// Touch returns the controller panel description.
func (c *Config) Touch() gt9147.Config {
	return gt9147.Config{
		Width:       c.Display.Width,
		Height:      c.Display.Height,
		Orientation: c.Orientation(),
	}
}

// GestureTiming returns the gesture machine settings.
func (c *Config) GestureTiming() gesture.Config {
	return gesture.Config{
		DebounceFrames: c.Gesture.DebounceFrames,
		LongPress:      c.Gesture.LongPress,
	}
}

// TerminalOptions returns the terminal buffer and sender settings.
func (c *Config) TerminalOptions() terminal.Config {
	return terminal.Config{
		Width:         c.Display.Width,
		Height:        c.Display.Height,
		LogLines:      c.Terminal.LogLines,
		LogWidth:      c.Terminal.LogWidth,
		StorageSlots:  c.Terminal.StorageSlots,
		StorageWidth:  c.Terminal.StorageWidth,
		InputLength:   c.Terminal.InputLength,
		ChunkCapacity: c.Terminal.ChunkCapacity,
		ChunkSize:     c.Terminal.ChunkSize,
		ChunkDelay:    c.Terminal.ChunkDelay,
		ChunkPayload:  c.Terminal.ChunkPayload,
	}
}
