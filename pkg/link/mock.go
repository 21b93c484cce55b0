package link

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/itohio/touchterm/pkg/chunk"
	"github.com/itohio/touchterm/pkg/config"
)

// Mock simulates a terminal on the other end of the link. It echoes every
// record it is sent and periodically transmits a chunked payload.
type Mock struct {
	cfg *config.MockConfig

	records   chan []byte
	echo      chan []byte
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// NewMock creates a new mocked link instance.
func NewMock(cfg *config.MockConfig) *Mock {
	def := config.Default().Mock
	if cfg == nil {
		cfg = &def
	}
	if cfg.Period <= 0 {
		c := *cfg
		c.Period = def.Period
		cfg = &c
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:     cfg,
		records: make(chan []byte, DefaultBufferSize),
		echo:    make(chan []byte, DefaultBufferSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Connect starts the simulated peer.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	m.connected = true

	go m.generateRecords()

	return nil
}

// Close stops the simulated peer. The records channel is closed by the
// generator once it has stopped.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	m.connected = false

	return nil
}

// Records returns the channel for reading records.
func (m *Mock) Records() <-chan []byte {
	return m.records
}

// Send queues p to be echoed back.
func (m *Mock) Send(p []byte) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected {
		return fmt.Errorf("not connected")
	}

	select {
	case m.echo <- bytes.Clone(p):
		return nil
	default:
		return fmt.Errorf("echo queue full")
	}
}

// IsConnected returns whether the mock is connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

func (m *Mock) generateRecords() {
	defer close(m.records)

	ticker := time.NewTicker(m.cfg.Period)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return

		case p := <-m.echo:
			if !m.emit(p) {
				return
			}

		case <-ticker.C:
			for _, rec := range chunk.Split([]byte(m.cfg.Payload), m.cfg.ChunkSize) {
				if !m.emit(rec) {
					return
				}
			}
		}
	}
}

// emit delivers rec unless the mock is stopping.
func (m *Mock) emit(rec []byte) bool {
	select {
	case m.records <- rec:
		return true
	case <-m.ctx.Done():
		return false
	default:
		log.Printf("Mock records channel full, dropping record")
		return true
	}
}
