package terminal

import (
	"time"

	"github.com/itohio/touchterm/pkg/chunk"
)

// Config sizes the terminal buffers and the chunked sender.
type Config struct {
	Width  int
	Height int

	LogLines     int
	LogWidth     int
	StorageSlots int
	StorageWidth int
	InputLength  int

	ChunkCapacity int
	ChunkSize     int
	ChunkDelay    time.Duration
	ChunkPayload  string

	// Sleep paces the chunked sender. Defaults to time.Sleep.
	Sleep func(time.Duration)
}

// DefaultConfig returns the layout of the 800x480 landscape panel.
func DefaultConfig() Config {
	return Config{
		Width:         ScreenWidth,
		Height:        ScreenHeight,
		LogLines:      6,
		LogWidth:      98,
		StorageSlots:  4,
		StorageWidth:  100,
		InputLength:   90,
		ChunkCapacity: chunk.DefaultCapacity,
		ChunkSize:     8,
		ChunkDelay:    5 * time.Millisecond,
		ChunkPayload:  "ThisIsALongDataStringSentIn8ByteChunksBySTM32",
	}
}

func (c *Config) ensureDefaults() {
	def := DefaultConfig()
	if c.Width <= 0 {
		c.Width = def.Width
	}
	if c.Height <= 0 {
		c.Height = def.Height
	}
	if c.LogLines <= 0 {
		c.LogLines = def.LogLines
	}
	if c.LogWidth <= 1 {
		c.LogWidth = def.LogWidth
	}
	if c.StorageSlots <= 0 {
		c.StorageSlots = def.StorageSlots
	}
	if c.StorageWidth <= 1 {
		c.StorageWidth = def.StorageWidth
	}
	if c.InputLength <= 1 {
		c.InputLength = def.InputLength
	}
	if c.ChunkCapacity <= 0 {
		c.ChunkCapacity = def.ChunkCapacity
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = def.ChunkSize
	}
	if c.ChunkDelay < 0 {
		c.ChunkDelay = 0
	}
	if c.ChunkPayload == "" {
		c.ChunkPayload = def.ChunkPayload
	}
	if c.Sleep == nil {
		c.Sleep = time.Sleep
	}
}
