package capture

import (
	"sync"
	"time"

	"github.com/listenkit/listenkit/pkg/audio"
)

// MockSource is a scripted Source for tests. On Start it plays the Script
// frames into its queue, optionally spaced by Interval; tests can also Push
// frames live while the source is running.
type MockSource struct {
	// Script frames delivered after Start, in order.
	Script []*audio.Frame

	// Interval spaces script frame delivery in real time. Zero delivers the
	// whole script immediately.
	Interval time.Duration

	// StartErr, when set, is returned by Start to simulate device failure.
	StartErr error

	// Rate, NumChannels, and FrameDur describe the advertised format.
	Rate        int
	NumChannels int
	FrameDur    time.Duration

	// StartCalls and StopCalls record lifecycle invocations.
	StartCalls int
	StopCalls  int

	mu    sync.Mutex
	queue *audio.FrameQueue
}

var _ Source = (*MockSource)(nil)

// NewMockSource creates a mock 16kHz mono source with 100ms frames.
func NewMockSource(script []*audio.Frame) *MockSource {
	return &MockSource{
		Script:      script,
		Rate:        DefaultSampleRate,
		NumChannels: DefaultChannels,
		FrameDur:    DefaultFrameDuration,
	}
}

// Start implements Source.
func (m *MockSource) Start() error {
	m.mu.Lock()
	m.StartCalls++
	if m.StartErr != nil {
		err := m.StartErr
		m.mu.Unlock()
		return err
	}
	queue := audio.NewFrameQueue()
	m.queue = queue
	script := m.Script
	interval := m.Interval
	m.mu.Unlock()

	if interval <= 0 {
		for _, f := range script {
			queue.Push(f)
		}
		return nil
	}

	go func() {
		for _, f := range script {
			time.Sleep(interval)
			queue.Push(f)
		}
	}()
	return nil
}

// Push injects a frame into the running source.
func (m *MockSource) Push(f *audio.Frame) {
	m.mu.Lock()
	queue := m.queue
	m.mu.Unlock()
	if queue != nil {
		queue.Push(f)
	}
}

// ReadFrame implements Source.
func (m *MockSource) ReadFrame(timeout time.Duration) (*audio.Frame, bool) {
	m.mu.Lock()
	queue := m.queue
	m.mu.Unlock()
	if queue == nil {
		return nil, false
	}
	return queue.Pop(timeout)
}

// Stop implements Source.
func (m *MockSource) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StopCalls++
	if m.queue != nil {
		m.queue.Close()
		m.queue = nil
	}
	return nil
}

// SampleRate implements Source.
func (m *MockSource) SampleRate() int { return m.Rate }

// Channels implements Source.
func (m *MockSource) Channels() int { return m.NumChannels }

// FrameDuration implements Source.
func (m *MockSource) FrameDuration() time.Duration { return m.FrameDur }
