package detection

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/listenkit/listenkit/pkg/capture"
)

// ErrNoAmbientFrames reports a calibration window during which the source
// delivered nothing. The prior threshold stays in effect; detection may
// still proceed with it.
var ErrNoAmbientFrames = errors.New("calibration observed no audio frames")

// calibrationPollTimeout is the per-frame wait inside the window; short so
// the window length, not the poll, bounds the run.
const calibrationPollTimeout = 100 * time.Millisecond

// CalibrateThreshold samples ambient audio for the given window and derives
// an energy threshold: 1.1x the mean ambient score, capped at capValue so a
// loud room cannot push the threshold above all speech.
//
// The source is started for the duration of the window and stopped before
// returning. The call runs to completion; it is a bounded, known-duration
// operation and not cancellable mid-run.
func CalibrateThreshold(src capture.Source, c Classifier, window time.Duration, capValue float64) (float64, error) {
	if err := src.Start(); err != nil {
		return 0, fmt.Errorf("calibration failed to start source: %w", err)
	}
	defer src.Stop()

	var sum float64
	var n int
	deadline := time.Now().Add(window)
	for time.Now().Before(deadline) {
		f, ok := src.ReadFrame(calibrationPollTimeout)
		if !ok {
			continue
		}
		score, err := c.Score(f)
		if err != nil {
			log.Printf("[Calibrate] classifier error: %v", err)
			continue
		}
		sum += score
		n++
	}

	if n == 0 {
		return 0, ErrNoAmbientFrames
	}

	threshold := math.Min(capValue, sum/float64(n)*1.1)
	log.Printf("[Calibrate] ambient mean %.4f over %d frames, threshold %.4f", sum/float64(n), n, threshold)
	return threshold, nil
}
