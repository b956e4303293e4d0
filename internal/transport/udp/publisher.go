// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	applog "nitemix/internal/log"
)

// StrengthProvider yields the most recent blend strength. Implementations
// must be safe to call from the publisher goroutine.
type StrengthProvider interface {
	LatestStrength() float64
}

// Publisher periodically reads the current blend strength, packs it into a
// small binary packet and sends it over UDP. It runs in its own goroutine
// managed by Start and Stop.
type Publisher struct {
	sender   *Sender
	provider StrengthProvider
	interval time.Duration

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex

	sequenceNum  uint32
	packetBuffer *bytes.Buffer
}

// NewPublisher requires a sender and a strength provider. An interval <= 0
// defaults to 16ms (~60Hz).
func NewPublisher(interval time.Duration, sender *Sender, provider StrengthProvider) (*Publisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("udp publisher: sender cannot be nil")
	}
	if provider == nil {
		return nil, fmt.Errorf("udp publisher: strength provider cannot be nil")
	}
	if interval <= 0 {
		interval = 16 * time.Millisecond
		applog.Warnf("UDP publisher: invalid interval provided, defaulting to %s", interval)
	}

	applog.Infof("UDP publisher: initializing (interval: %s)", interval)
	return &Publisher{
		sender:       sender,
		provider:     provider,
		interval:     interval,
		packetBuffer: new(bytes.Buffer),
	}, nil
}

// Start begins publishing. Safe to call multiple times; subsequent calls
// are no-ops while running.
func (p *Publisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("UDP publisher: Start called but already running")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	ticker := p.ticker
	doneChan := p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Infof("UDP publisher: goroutine started (interval: %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.buildAndSendPacket()
			case <-doneChan:
				applog.Infof("UDP publisher: goroutine received stop signal")
				return
			}
		}
	}()
}

// Stop signals the goroutine to terminate and waits for it to exit. Safe to
// call multiple times.
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		applog.Debugf("UDP publisher: Stop called but not running")
		return nil
	}

	p.stopOnce.Do(func() {
		applog.Infof("UDP publisher: initiating stop sequence")
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

/*
Packet layout (BigEndian):

|<-- 4 Bytes -->|<---- 8 Bytes ---->|<-- 4 Bytes -->|
+---------------+-------------------+---------------+
|   Sequence    |     Timestamp     |   Strength    |
|   (uint32)    |  (int64, ns)      |   (float32)   |
+---------------+-------------------+---------------+
*/

func (p *Publisher) buildAndSendPacket() {
	p.sequenceNum++
	p.packetBuffer.Reset()

	strength := p.provider.LatestStrength()
	packPacket(p.packetBuffer, p.sequenceNum, time.Now().UnixNano(), float32(strength))

	if err := p.sender.Send(p.packetBuffer.Bytes()); err != nil {
		applog.Errorf("UDP publisher: error sending packet: %v", err)
	}
}

// packPacket writes one strength packet into buf.
func packPacket(buf *bytes.Buffer, sequence uint32, timestampNS int64, strength float32) {
	_ = binary.Write(buf, binary.BigEndian, sequence)
	_ = binary.Write(buf, binary.BigEndian, timestampNS)
	_ = binary.Write(buf, binary.BigEndian, strength)
}
