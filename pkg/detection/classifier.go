package detection

import "github.com/listenkit/listenkit/pkg/audio"

// Classifier scores a frame's speech likelihood in [0, 1]. The score is
// compared against Config.EnergyThreshold by the segmenter.
//
// Implementations are called from the detection loop only, one frame at a
// time, so they need not be safe for concurrent use.
type Classifier interface {
	Score(f *audio.Frame) (float64, error)
}

// EnergyClassifier is the default discriminator: normalized mean absolute
// amplitude, as computed by audio.Energy. It is stateless and never fails.
type EnergyClassifier struct{}

// Score implements Classifier.
func (EnergyClassifier) Score(f *audio.Frame) (float64, error) {
	return audio.Energy(f), nil
}

var _ Classifier = EnergyClassifier{}
