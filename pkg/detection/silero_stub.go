//go:build !vad

package detection

import (
	"fmt"

	"github.com/listenkit/listenkit/pkg/audio"
)

// SileroClassifier is a stub when built without the 'vad' build tag.
type SileroClassifier struct{}

// NewSileroClassifier returns an error indicating that model-based VAD is
// not built in.
func NewSileroClassifier(modelPath string, threshold float32) (*SileroClassifier, error) {
	return nil, fmt.Errorf("silero VAD support is not enabled; rebuild with '-tags vad' and ensure ONNX Runtime is installed")
}

// Score implements Classifier for the stub.
func (c *SileroClassifier) Score(f *audio.Frame) (float64, error) {
	return 0, fmt.Errorf("silero VAD support is not enabled")
}

// Close is a no-op for the stub.
func (c *SileroClassifier) Close() error { return nil }
