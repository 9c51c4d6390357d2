package audio

import (
	"math"
	"testing"
	"time"
)

func frameOf(samples []int16, rate int) *Frame {
	return &Frame{
		Data:       Int16ToBytes(samples),
		SampleRate: rate,
		Channels:   1,
		Timestamp:  time.Now(),
	}
}

func constSamples(v int16, n int) []int16 {
	s := make([]int16, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func TestEnergyInt16(t *testing.T) {
	tests := []struct {
		name    string
		samples []int16
		want    float64
	}{
		{"silence", constSamples(0, 160), 0.0},
		{"full scale", constSamples(math.MaxInt16, 160), 1.0},
		{"full scale negative", constSamples(-math.MaxInt16, 160), 1.0},
		{"half scale", constSamples(16384, 160), 16384.0 / 32767.0},
		{"mixed signs", []int16{100, -100, 100, -100}, 100.0 / 32767.0},
		{"empty", nil, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnergyInt16(Int16ToBytes(tt.samples))
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("EnergyInt16() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnergyFrame(t *testing.T) {
	if got := Energy(nil); got != 0 {
		t.Errorf("Energy(nil) = %v, want 0", got)
	}
	if got := Energy(&Frame{}); got != 0 {
		t.Errorf("Energy(empty frame) = %v, want 0", got)
	}

	f := frameOf(constSamples(math.MaxInt16, 1600), 16000)
	if got := Energy(f); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Energy(full scale) = %v, want 1.0", got)
	}
}

func TestEnergyFloat32(t *testing.T) {
	if got := EnergyFloat32(nil); got != 0 {
		t.Errorf("EnergyFloat32(nil) = %v, want 0", got)
	}

	samples := []float32{0.5, -0.5, 0.5, -0.5}
	if got := EnergyFloat32(samples); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("EnergyFloat32() = %v, want 0.5", got)
	}
}

// Energy must be pure: same frame, same result, input untouched.
func TestEnergyDeterministic(t *testing.T) {
	f := frameOf([]int16{1000, -2000, 3000, -4000}, 16000)
	before := append([]byte(nil), f.Data...)

	first := Energy(f)
	for i := 0; i < 10; i++ {
		if got := Energy(f); got != first {
			t.Fatalf("Energy() not deterministic: %v != %v", got, first)
		}
	}
	for i, b := range f.Data {
		if b != before[i] {
			t.Fatal("Energy() mutated the frame data")
		}
	}
}

func TestFrameDuration(t *testing.T) {
	f := frameOf(constSamples(0, 1600), 16000) // 0.1s at 16kHz mono
	if got := f.Duration(); got != 100*time.Millisecond {
		t.Errorf("Duration() = %v, want 100ms", got)
	}

	stereo := &Frame{Data: make([]byte, 1600*2*2), SampleRate: 16000, Channels: 2}
	if got := stereo.Duration(); got != 100*time.Millisecond {
		t.Errorf("stereo Duration() = %v, want 100ms", got)
	}
}

func TestInt16BytesRoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, math.MaxInt16, math.MinInt16, 12345, -12345}
	got := BytesToInt16(Int16ToBytes(samples))
	if len(got) != len(samples) {
		t.Fatalf("round trip length = %d, want %d", len(got), len(samples))
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Errorf("round trip [%d] = %d, want %d", i, got[i], samples[i])
		}
	}
}
