// Package detection turns a live audio stream into discrete utterances. It
// classifies each frame's energy against a threshold, runs a hysteresis
// state machine that opens and closes phrase sessions, and delivers every
// accepted phrase to a caller-supplied callback.
package detection

import (
	"fmt"
	"time"
)

// Defaults for Config. The thresholds come from field tuning of the speech
// detector against a close-talking microphone; calibrate against ambient
// noise before relying on the energy default.
const (
	DefaultEnergyThreshold   = 0.05
	DefaultPauseThreshold    = 1 * time.Second
	DefaultPhraseThreshold   = 300 * time.Millisecond
	DefaultMaxPhraseTime     = 10 * time.Second
	DefaultCalibrationWindow = 2 * time.Second
	DefaultThresholdCap      = 0.2
	DefaultPollTimeout       = 200 * time.Millisecond
	DefaultStopTimeout       = 2 * time.Second
)

// Config holds the detection parameters. It is immutable while detection is
// running; only calibration may rewrite EnergyThreshold, and only between
// runs.
type Config struct {
	// EnergyThreshold is the normalized energy above which a frame counts
	// as speech. Range (0, 1].
	EnergyThreshold float64

	// PauseThreshold is the trailing silence that closes an open phrase.
	PauseThreshold time.Duration

	// PhraseThreshold is the minimum speech span (first speech to last
	// speech) required for a phrase to be accepted rather than discarded.
	// It filters transient noise spikes.
	PhraseThreshold time.Duration

	// MaxPhraseTime is the hard ceiling on one phrase session. It bounds
	// worst-case memory and downstream latency on continuous speech.
	MaxPhraseTime time.Duration

	// PreRoll, when positive, prepends up to this much of the most recent
	// idle audio to each phrase so soft onsets are not clipped. Off by
	// default.
	PreRoll time.Duration

	// CalibrationWindow is how long Calibrate samples ambient audio.
	CalibrationWindow time.Duration

	// ThresholdCap bounds the calibrated threshold so a loud environment
	// cannot disable detection entirely.
	ThresholdCap float64

	// PollTimeout is how long the detection loop waits for the next frame
	// before re-checking for a stop request. A missed poll is a retry, not
	// an error.
	PollTimeout time.Duration

	// StopTimeout bounds how long Stop waits for the loop to exit.
	StopTimeout time.Duration
}

// DefaultConfig returns a Config with the default parameters.
func DefaultConfig() Config {
	return Config{
		EnergyThreshold:   DefaultEnergyThreshold,
		PauseThreshold:    DefaultPauseThreshold,
		PhraseThreshold:   DefaultPhraseThreshold,
		MaxPhraseTime:     DefaultMaxPhraseTime,
		CalibrationWindow: DefaultCalibrationWindow,
		ThresholdCap:      DefaultThresholdCap,
		PollTimeout:       DefaultPollTimeout,
		StopTimeout:       DefaultStopTimeout,
	}
}

// IsValid validates the configuration.
func (c Config) IsValid() error {
	if c.EnergyThreshold <= 0 || c.EnergyThreshold > 1 {
		return fmt.Errorf("invalid EnergyThreshold: must be in (0, 1]")
	}
	if c.PauseThreshold <= 0 {
		return fmt.Errorf("invalid PauseThreshold: must be positive")
	}
	if c.PhraseThreshold < 0 {
		return fmt.Errorf("invalid PhraseThreshold: must not be negative")
	}
	if c.MaxPhraseTime <= 0 {
		return fmt.Errorf("invalid MaxPhraseTime: must be positive")
	}
	if c.MaxPhraseTime <= c.PauseThreshold {
		return fmt.Errorf("invalid MaxPhraseTime: must exceed PauseThreshold")
	}
	if c.PreRoll < 0 {
		return fmt.Errorf("invalid PreRoll: must not be negative")
	}
	if c.CalibrationWindow <= 0 {
		return fmt.Errorf("invalid CalibrationWindow: must be positive")
	}
	if c.ThresholdCap <= 0 || c.ThresholdCap > 1 {
		return fmt.Errorf("invalid ThresholdCap: must be in (0, 1]")
	}
	if c.PollTimeout <= 0 {
		return fmt.Errorf("invalid PollTimeout: must be positive")
	}
	if c.StopTimeout <= 0 {
		return fmt.Errorf("invalid StopTimeout: must be positive")
	}
	return nil
}
