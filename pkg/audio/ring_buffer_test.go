package audio

import (
	"testing"
	"time"
)

// 100ms mono frame at 16kHz.
func ringFrame(v int16) *Frame {
	return frameOf(constSamples(v, 1600), 16000)
}

func TestFrameRing_Eviction(t *testing.T) {
	r := NewFrameRing(300 * time.Millisecond)

	for i := int16(0); i < 10; i++ {
		r.Write(ringFrame(i))
	}

	frames := r.TakeAll()
	if len(frames) != 3 {
		t.Fatalf("TakeAll() = %d frames, want 3 (300ms of 100ms frames)", len(frames))
	}
	// The newest frames survive, in chronological order.
	for i, want := range []int16{7, 8, 9} {
		if got := frames[i].Int16()[0]; got != want {
			t.Errorf("frame %d = sample %d, want %d", i, got, want)
		}
	}
}

func TestFrameRing_TakeAllResets(t *testing.T) {
	r := NewFrameRing(time.Second)
	r.Write(ringFrame(1))

	if r.Buffered() != 100*time.Millisecond {
		t.Errorf("Buffered() = %v, want 100ms", r.Buffered())
	}
	if got := r.TakeAll(); len(got) != 1 {
		t.Fatalf("TakeAll() = %d frames, want 1", len(got))
	}
	if r.Buffered() != 0 {
		t.Errorf("Buffered() after TakeAll = %v, want 0", r.Buffered())
	}
	if got := r.TakeAll(); got != nil {
		t.Errorf("second TakeAll() = %d frames, want none", len(got))
	}
}

func TestFrameRing_ZeroCapacity(t *testing.T) {
	r := NewFrameRing(0)
	r.Write(ringFrame(1))
	if got := r.TakeAll(); got != nil {
		t.Errorf("zero-capacity ring buffered %d frames", len(got))
	}
}
