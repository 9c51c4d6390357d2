// Package audio provides the PCM building blocks of the capture engine:
// the Frame type, normalized energy computation, the producer/consumer
// frame queue, a pre-roll buffer, and WAV encoding.
package audio

import (
	"encoding/binary"
	"time"
)

// BytesPerSample is the sample width of all PCM handled by this module
// (signed 16-bit little-endian).
const BytesPerSample = 2

// Frame is one fixed-size block of consecutive audio samples captured in a
// single device delivery. Data is raw S16LE PCM, interleaved when Channels > 1.
// A Frame is immutable once produced; ownership transfers frame-by-frame
// from the capture device to the detection loop.
type Frame struct {
	Data       []byte
	SampleRate int
	Channels   int
	Timestamp  time.Time
}

// SampleCount returns the number of samples in the frame across all channels.
func (f *Frame) SampleCount() int {
	if f == nil {
		return 0
	}
	return len(f.Data) / BytesPerSample
}

// Duration returns the playback duration of the frame.
func (f *Frame) Duration() time.Duration {
	if f == nil || f.SampleRate <= 0 || f.Channels <= 0 {
		return 0
	}
	frames := f.SampleCount() / f.Channels
	return time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
}

// Int16 decodes the frame's PCM bytes into int16 samples (little-endian).
func (f *Frame) Int16() []int16 {
	if f == nil {
		return nil
	}
	return BytesToInt16(f.Data)
}

// BytesToInt16 converts S16LE PCM bytes to int16 samples.
func BytesToInt16(data []byte) []int16 {
	samples := make([]int16, len(data)/BytesPerSample)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2 : i*2+2]))
	}
	return samples
}

// Int16ToBytes converts int16 samples to S16LE PCM bytes.
func Int16ToBytes(samples []int16) []byte {
	data := make([]byte, len(samples)*BytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:i*2+2], uint16(s))
	}
	return data
}
