package audio

import (
	"sync"
	"time"
)

// FrameRing keeps the most recent frames up to a fixed total duration.
// It backs the segmenter's optional pre-roll: audio heard just before the
// energy threshold was crossed can be prepended to the phrase so plosive
// onsets are not clipped.
//
// Frames are evicted oldest-first once the buffered duration exceeds the
// capacity. Eviction is whole-frame, so the buffered duration may briefly
// exceed the capacity by less than one frame.
type FrameRing struct {
	mu       sync.Mutex
	frames   []*Frame
	buffered time.Duration
	capacity time.Duration
}

// NewFrameRing creates a ring holding at most capacity worth of audio.
// A non-positive capacity yields a ring that buffers nothing.
func NewFrameRing(capacity time.Duration) *FrameRing {
	return &FrameRing{capacity: capacity}
}

// Write appends a frame, evicting the oldest frames as needed.
func (r *FrameRing) Write(f *Frame) {
	if f == nil || r.capacity <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frames = append(r.frames, f)
	r.buffered += f.Duration()
	for len(r.frames) > 1 && r.buffered > r.capacity {
		r.buffered -= r.frames[0].Duration()
		r.frames[0] = nil
		r.frames = r.frames[1:]
	}
}

// TakeAll returns the buffered frames in chronological order and resets the
// ring to empty.
func (r *FrameRing) TakeAll() []*Frame {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := r.frames
	r.frames = nil
	r.buffered = 0
	return frames
}

// Clear resets the ring to empty.
func (r *FrameRing) Clear() {
	r.mu.Lock()
	r.frames = nil
	r.buffered = 0
	r.mu.Unlock()
}

// Buffered returns the total duration currently held.
func (r *FrameRing) Buffered() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buffered
}
