// Package capture sniffs game traffic and hands decoded payload text to
// the detection pipeline.
package capture

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
	"github.com/rs/zerolog/log"
)

const (
	snapshotLen = 65535
	promiscuous = false
)

// Manager owns one live pcap session filtered to the configured port.
// Payloads are sanitized to valid UTF-8 and delivered on the capture
// goroutine; the callback is expected to hand off quickly.
type Manager struct {
	device   string
	port     int
	onPacket func(text string)

	mu      sync.Mutex
	handle  *pcap.Handle
	stop    chan struct{}
	running bool
}

// NewManager builds a manager for the given device ("any" is a fine
// default on Linux) and port.
func NewManager(device string, port int, onPacket func(text string)) *Manager {
	if device == "" {
		device = "any"
	}
	return &Manager{device: device, port: port, onPacket: onPacket}
}

// Running reports whether a capture session is active.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// SetPort changes the capture port for the next Start. Out-of-range values
// are rejected.
func (m *Manager) SetPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("capture port %d out of range", port)
	}
	m.mu.Lock()
	m.port = port
	m.mu.Unlock()
	return nil
}

// Start opens the device and begins delivering payloads. Starting an
// already-running manager is a no-op.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}

	handle, err := pcap.OpenLive(m.device, snapshotLen, promiscuous, pcap.BlockForever)
	if err != nil {
		return fmt.Errorf("open capture device %s: %w", m.device, err)
	}
	filter := fmt.Sprintf("port %d", m.port)
	if err := handle.SetBPFFilter(filter); err != nil {
		handle.Close()
		return fmt.Errorf("set capture filter %q: %w", filter, err)
	}

	m.handle = handle
	m.stop = make(chan struct{})
	m.running = true
	go m.loop(handle, m.stop)
	log.Info().Str("device", m.device).Int("port", m.port).Msg("packet capture started")
	return nil
}

// Stop ends the capture session.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	close(m.stop)
	m.handle.Close()
	m.handle = nil
	m.stop = nil
	m.running = false
	log.Info().Msg("packet capture stopped")
}

func (m *Manager) loop(handle *pcap.Handle, stop chan struct{}) {
	source := gopacket.NewPacketSource(handle, handle.LinkType())
	for {
		select {
		case <-stop:
			return
		case packet, ok := <-source.Packets():
			if !ok {
				return
			}
			app := packet.ApplicationLayer()
			if app == nil {
				continue
			}
			payload := app.Payload()
			if len(payload) == 0 {
				continue
			}
			text := strings.ToValidUTF8(string(payload), "")
			if text == "" {
				continue
			}
			m.onPacket(text)
		}
	}
}
