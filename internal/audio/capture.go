// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"runtime"
	"time"

	"github.com/gordonklaus/portaudio"

	applog "nitemix/internal/log"
)

// ChunkHandler receives one mono chunk of raw (un-normalized) samples per
// capture callback. The slice is reused between callbacks; handlers must
// copy what they keep.
type ChunkHandler func(samples []float64)

// CaptureConfig sizes the input stream.
type CaptureConfig struct {
	DeviceID        int
	SampleRate      float64
	Channels        int
	FramesPerBuffer int
	LowLatency      bool
}

// Capture owns a PortAudio input stream and converts its callbacks into
// mono float64 chunks for the analysis pipeline.
type Capture struct {
	config       CaptureConfig
	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream

	inputBuffer []int32
	monoBuffer  []float64
	handler     ChunkHandler
}

// NewCapture resolves the device and pre-allocates all stream buffers.
func NewCapture(config CaptureConfig, handler ChunkHandler) (*Capture, error) {
	if handler == nil {
		return nil, fmt.Errorf("capture: chunk handler cannot be nil")
	}
	if config.SampleRate <= 0 {
		return nil, fmt.Errorf("capture: invalid sample rate %v", config.SampleRate)
	}
	if config.Channels < 1 {
		return nil, fmt.Errorf("capture: invalid channel count %d", config.Channels)
	}
	if config.FramesPerBuffer < 1 {
		return nil, fmt.Errorf("capture: invalid frames per buffer %d", config.FramesPerBuffer)
	}

	inputDevice, err := InputDevice(config.DeviceID)
	if err != nil {
		return nil, err
	}

	c := &Capture{
		config:      config,
		inputDevice: inputDevice,
		inputBuffer: make([]int32, config.FramesPerBuffer*config.Channels),
		monoBuffer:  make([]float64, config.FramesPerBuffer),
		handler:     handler,
	}
	if config.LowLatency {
		c.inputLatency = inputDevice.DefaultLowInputLatency
	} else {
		c.inputLatency = inputDevice.DefaultHighInputLatency
	}

	applog.Infof("Capture: device %q at %.0fHz, %d frames per buffer",
		inputDevice.Name, config.SampleRate, config.FramesPerBuffer)
	return c, nil
}

// Start opens and starts the input stream.
func (c *Capture) Start() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: c.config.Channels,
			Device:   c.inputDevice,
			Latency:  c.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0,
			Device:   nil,
		},
		FramesPerBuffer: c.config.FramesPerBuffer,
		SampleRate:      c.config.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, c.processInputStream)
	if err != nil {
		return err
	}
	c.inputStream = stream

	if err := c.inputStream.Start(); err != nil {
		c.inputStream.Close()
		return err
	}
	return nil
}

// Stop stops and closes the input stream.
func (c *Capture) Stop() error {
	if c.inputStream != nil {
		if err := c.inputStream.Stop(); err != nil {
			return err
		}
		if err := c.inputStream.Close(); err != nil {
			return err
		}
		c.inputStream = nil
	}
	return nil
}

// processInputStream is the capture callback. It downmixes to mono by taking
// the first channel of each frame, using only pre-allocated buffers.
func (c *Capture) processInputStream(in []int32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	copy(c.inputBuffer, in)
	for i := 0; i < c.config.FramesPerBuffer; i++ {
		idx := i * c.config.Channels
		if idx < len(c.inputBuffer) {
			c.monoBuffer[i] = float64(c.inputBuffer[idx])
		} else {
			c.monoBuffer[i] = 0
		}
	}
	c.handler(c.monoBuffer)
}
