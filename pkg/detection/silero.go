//go:build vad

package detection

import (
	"fmt"

	"github.com/streamer45/silero-vad-go/speech"

	"github.com/listenkit/listenkit/pkg/audio"
)

// sileroWindow is the model's analysis window at 16kHz.
const sileroWindow = 512

// SileroClassifier scores frames with the Silero VAD model instead of raw
// energy. Scores are effectively binary: 1.0 while the model reports an
// open speech segment, 0.0 otherwise, so it composes with the same
// threshold comparison the energy classifier uses.
//
// Requires the 'vad' build tag and the ONNX runtime at runtime.
type SileroClassifier struct {
	detector *speech.Detector

	// window accumulates samples until a full model window is available;
	// carry holds the speaking state between frames.
	window   []float32
	speaking bool
}

// NewSileroClassifier loads the Silero model from modelPath for 16kHz audio.
func NewSileroClassifier(modelPath string, threshold float32) (*SileroClassifier, error) {
	if modelPath == "" {
		return nil, fmt.Errorf("model path is required")
	}
	if threshold == 0 {
		threshold = 0.5
	}

	detector, err := speech.NewDetector(speech.DetectorConfig{
		ModelPath:            modelPath,
		SampleRate:           16000,
		Threshold:            threshold,
		MinSilenceDurationMs: 100,
		SpeechPadMs:          30,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create silero detector: %w", err)
	}

	return &SileroClassifier{
		detector: detector,
		window:   make([]float32, 0, sileroWindow),
	}, nil
}

// Score implements Classifier.
func (c *SileroClassifier) Score(f *audio.Frame) (float64, error) {
	if f.SampleRate != 16000 {
		return 0, fmt.Errorf("silero classifier requires 16kHz audio, got %dHz", f.SampleRate)
	}

	for _, s := range f.Int16() {
		c.window = append(c.window, float32(s)/32768.0)
	}

	for len(c.window) >= sileroWindow {
		chunk := c.window[:sileroWindow]
		c.window = c.window[sileroWindow:]

		segments, err := c.detector.Detect(chunk)
		if err != nil {
			return 0, fmt.Errorf("silero inference failed: %w", err)
		}
		for _, seg := range segments {
			if seg.SpeechStartAt > 0 {
				c.speaking = true
			}
			if seg.SpeechEndAt > 0 {
				c.speaking = false
			}
		}
	}

	if c.speaking {
		return 1.0, nil
	}
	return 0.0, nil
}

// Close releases the model session.
func (c *SileroClassifier) Close() error {
	if c.detector == nil {
		return nil
	}
	err := c.detector.Destroy()
	c.detector = nil
	return err
}

var _ Classifier = (*SileroClassifier)(nil)
