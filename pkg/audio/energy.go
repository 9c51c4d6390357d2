package audio

import "math"

// maxInt16Magnitude normalizes integer PCM so that a full-scale signal
// yields an energy of 1.0.
const maxInt16Magnitude = math.MaxInt16

// Energy returns the normalized energy of a frame in [0, 1], the mean
// absolute amplitude divided by the maximum representable magnitude of the
// sample type. A nil or empty frame yields 0.
//
// Energy is pure and deterministic: it keeps no state and can be evaluated
// against any frame independent of a live stream.
func Energy(f *Frame) float64 {
	if f == nil {
		return 0
	}
	return EnergyInt16(f.Data)
}

// EnergyInt16 computes the normalized energy of raw S16LE PCM bytes.
func EnergyInt16(data []byte) float64 {
	n := len(data) / BytesPerSample
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		s := int16(uint16(data[i*2]) | uint16(data[i*2+1])<<8)
		sum += math.Abs(float64(s))
	}
	return sum / float64(n) / maxInt16Magnitude
}

// EnergyFloat32 computes the mean absolute amplitude of samples already
// normalized to [-1, 1]. No further scaling is applied.
func EnergyFloat32(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += math.Abs(float64(s))
	}
	return sum / float64(len(samples))
}
