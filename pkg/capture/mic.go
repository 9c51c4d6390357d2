package capture

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/listenkit/listenkit/pkg/audio"
)

const (
	// DefaultSampleRate matches the rate expected by downstream
	// transcription models.
	DefaultSampleRate = 16000

	DefaultChannels = 1

	// DefaultFrameDuration is the capture period requested from the device.
	DefaultFrameDuration = 100 * time.Millisecond
)

// MicConfig holds the device parameters for a MicSource.
type MicConfig struct {
	// SampleRate in Hz. Defaults to 16000.
	SampleRate int

	// Channels is the capture channel count. Defaults to 1 (mono).
	Channels int

	// FrameDuration is the length of each delivered frame.
	// Defaults to 100ms.
	FrameDuration time.Duration
}

func (c *MicConfig) applyDefaults() {
	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.Channels == 0 {
		c.Channels = DefaultChannels
	}
	if c.FrameDuration == 0 {
		c.FrameDuration = DefaultFrameDuration
	}
}

// IsValid validates the configuration.
func (c MicConfig) IsValid() error {
	if c.SampleRate < 0 {
		return fmt.Errorf("invalid SampleRate: must be positive")
	}
	if c.Channels < 0 || c.Channels > 2 {
		return fmt.Errorf("invalid Channels: valid values are 1 and 2")
	}
	if c.FrameDuration < 0 {
		return fmt.Errorf("invalid FrameDuration: must be positive")
	}
	return nil
}

// MicSource captures microphone audio through malgo (miniaudio). The device
// delivers periods on its own thread; the data callback copies each period
// into a Frame and pushes it onto an internal queue, never blocking on the
// consumer.
type MicSource struct {
	cfg MicConfig

	mu      sync.Mutex
	running bool

	audioCtx *malgo.AllocatedContext
	device   *malgo.Device
	queue    *audio.FrameQueue
}

var _ Source = (*MicSource)(nil)

// NewMicSource creates a microphone source. The device itself is not opened
// until Start.
func NewMicSource(cfg MicConfig) (*MicSource, error) {
	if err := cfg.IsValid(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.applyDefaults()
	return &MicSource{cfg: cfg}, nil
}

// SampleRate implements Source.
func (m *MicSource) SampleRate() int { return m.cfg.SampleRate }

// Channels implements Source.
func (m *MicSource) Channels() int { return m.cfg.Channels }

// FrameDuration implements Source.
func (m *MicSource) FrameDuration() time.Duration { return m.cfg.FrameDuration }

// Start opens the default capture device and begins delivery.
func (m *MicSource) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("mic source already started")
	}

	audioCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize audio context: %w", err)
	}

	queue := audio.NewFrameQueue()

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.PeriodSizeInMilliseconds = uint32(m.cfg.FrameDuration / time.Millisecond)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = uint32(m.cfg.Channels)
	deviceConfig.SampleRate = uint32(m.cfg.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	device, err := malgo.InitDevice(audioCtx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: func(outputSamples, inputSamples []byte, framecount uint32) {
			// The callback's buffer is reused by the device; copy before
			// handing off.
			data := make([]byte, len(inputSamples))
			copy(data, inputSamples)

			queue.Push(&audio.Frame{
				Data:       data,
				SampleRate: m.cfg.SampleRate,
				Channels:   m.cfg.Channels,
				Timestamp:  time.Now(),
			})
		},
	})
	if err != nil {
		audioCtx.Uninit()
		return fmt.Errorf("failed to initialize capture device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		audioCtx.Uninit()
		return fmt.Errorf("failed to start capture device: %w", err)
	}

	m.audioCtx = audioCtx
	m.device = device
	m.queue = queue
	m.running = true

	log.Printf("[MicSource] capture started: %dHz, %dch, %v frames",
		m.cfg.SampleRate, m.cfg.Channels, m.cfg.FrameDuration)
	return nil
}

// ReadFrame implements Source.
func (m *MicSource) ReadFrame(timeout time.Duration) (*audio.Frame, bool) {
	m.mu.Lock()
	queue := m.queue
	m.mu.Unlock()

	if queue == nil {
		return nil, false
	}
	return queue.Pop(timeout)
}

// Stop stops the device and releases it.
func (m *MicSource) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil
	}

	if m.device != nil {
		m.device.Stop()
		m.device.Uninit()
		m.device = nil
	}
	if m.audioCtx != nil {
		m.audioCtx.Uninit()
		m.audioCtx = nil
	}
	if m.queue != nil {
		m.queue.Close()
		m.queue = nil
	}

	m.running = false
	log.Printf("[MicSource] capture stopped")
	return nil
}
