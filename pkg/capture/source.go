// Package capture abstracts the audio input device behind the Source
// capability. Any implementation satisfies the engine's contract as long as
// it delivers exactly one frame per captured block, in order, without loss:
// the built-in MicSource wraps a real capture device via malgo, and
// MockSource replays scripted frames for tests.
package capture

import (
	"time"

	"github.com/listenkit/listenkit/pkg/audio"
)

// Source delivers fixed-size audio frames at a fixed sample rate once
// started. Sample rate, channel count, and frame size are fixed at
// construction and stable for the lifetime of the source.
//
// A Source must be restartable: Start after Stop begins a fresh delivery
// session. ReadFrame is intended for a single consumer.
type Source interface {
	// Start opens the underlying device and begins delivering frames on an
	// internal goroutine. Fails if the device cannot be opened or started,
	// or if the source is already running.
	Start() error

	// ReadFrame returns the next captured frame, waiting up to timeout.
	// Returns (nil, false) on timeout or when the source is stopped; a
	// timeout is not an error.
	ReadFrame(timeout time.Duration) (*audio.Frame, bool)

	// Stop stops frame delivery and releases the device. Stopping a source
	// that is not running is a no-op.
	Stop() error

	// SampleRate returns the configured sample rate in Hz.
	SampleRate() int

	// Channels returns the configured channel count.
	Channels() int

	// FrameDuration returns the nominal duration of one delivered frame.
	FrameDuration() time.Duration
}
