package detection

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenkit/listenkit/pkg/audio"
	"github.com/listenkit/listenkit/pkg/capture"
)

// utteranceScript builds speech frames followed by silence frames, with
// consecutive 100ms timestamps starting at frame index offset.
func utteranceScript(offset, speech, silence int) []*audio.Frame {
	var frames []*audio.Frame
	for i := 0; i < speech; i++ {
		frames = append(frames, testFrame(offset+i, 26214)) // ~0.8 energy
	}
	for i := 0; i < silence; i++ {
		frames = append(frames, testFrame(offset+speech+i, 0))
	}
	return frames
}

func collectPhrases() (PhraseCallback, chan *Phrase) {
	ch := make(chan *Phrase, 16)
	return func(p *Phrase) { ch <- p }, ch
}

func waitPhrase(t *testing.T, ch chan *Phrase) *Phrase {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a phrase")
		return nil
	}
}

func fastConfig() Config {
	cfg := testConfig()
	cfg.PollTimeout = 20 * time.Millisecond
	cfg.CalibrationWindow = 150 * time.Millisecond
	return cfg
}

func TestNewDetector_Validation(t *testing.T) {
	_, err := NewDetector(nil, DefaultConfig())
	assert.Error(t, err)

	bad := DefaultConfig()
	bad.EnergyThreshold = 2.0
	_, err = NewDetector(capture.NewMockSource(nil), bad)
	assert.Error(t, err)
}

func TestDetector_EndToEnd(t *testing.T) {
	src := capture.NewMockSource(utteranceScript(0, 6, 11))
	d, err := NewDetector(src, fastConfig())
	require.NoError(t, err)

	callback, phrases := collectPhrases()
	require.NoError(t, d.Start(callback))
	defer d.Stop()

	p := waitPhrase(t, phrases)
	assert.Equal(t, 17, p.FrameCount)
	assert.Equal(t, 16000, p.SampleRate)
	assert.False(t, p.Forced)

	// Exactly one phrase: no duplicates from the trailing silence.
	select {
	case extra := <-phrases:
		t.Fatalf("unexpected second phrase %s", extra.ID)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDetector_StartRequiresCallback(t *testing.T) {
	d, err := NewDetector(capture.NewMockSource(nil), fastConfig())
	require.NoError(t, err)
	assert.Error(t, d.Start(nil))
}

func TestDetector_SourceFailureIsFatalToStart(t *testing.T) {
	src := capture.NewMockSource(nil)
	src.StartErr = errors.New("no capture device")

	d, err := NewDetector(src, fastConfig())
	require.NoError(t, err)

	callback, _ := collectPhrases()
	err = d.Start(callback)
	require.Error(t, err)
	assert.ErrorContains(t, err, "no capture device")
	assert.False(t, d.Running())
}

func TestDetector_DoubleStart(t *testing.T) {
	src := capture.NewMockSource(nil)
	d, err := NewDetector(src, fastConfig())
	require.NoError(t, err)

	callback, _ := collectPhrases()
	require.NoError(t, d.Start(callback))
	defer d.Stop()

	assert.ErrorIs(t, d.Start(callback), ErrAlreadyRunning)
	assert.Equal(t, 1, src.StartCalls, "second start must not touch the source")
	assert.True(t, d.Running())
}

func TestDetector_StopIdempotent(t *testing.T) {
	src := capture.NewMockSource(nil)
	d, err := NewDetector(src, fastConfig())
	require.NoError(t, err)

	assert.NoError(t, d.Stop(), "stop before start is a no-op")

	callback, _ := collectPhrases()
	require.NoError(t, d.Start(callback))
	assert.NoError(t, d.Stop())
	assert.False(t, d.Running())
	assert.Equal(t, 1, src.StopCalls)

	assert.NoError(t, d.Stop())
	assert.Equal(t, 1, src.StopCalls)
}

func TestDetector_RestartAfterStop(t *testing.T) {
	src := capture.NewMockSource(utteranceScript(0, 6, 11))
	d, err := NewDetector(src, fastConfig())
	require.NoError(t, err)

	callback, phrases := collectPhrases()
	require.NoError(t, d.Start(callback))
	waitPhrase(t, phrases)
	require.NoError(t, d.Stop())

	require.NoError(t, d.Start(callback))
	waitPhrase(t, phrases)
	require.NoError(t, d.Stop())
	assert.Equal(t, 2, src.StartCalls)
}

func TestDetector_CallbackPanicDoesNotKillLoop(t *testing.T) {
	script := append(utteranceScript(0, 6, 11), utteranceScript(20, 6, 11)...)
	src := capture.NewMockSource(script)
	d, err := NewDetector(src, fastConfig())
	require.NoError(t, err)

	var mu sync.Mutex
	var seen []*Phrase
	callback := func(p *Phrase) {
		mu.Lock()
		seen = append(seen, p)
		n := len(seen)
		mu.Unlock()
		if n == 1 {
			panic("consumer bug")
		}
	}

	require.NoError(t, d.Start(callback))
	defer d.Stop()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	}, 2*time.Second, 10*time.Millisecond, "loop should survive the panic and deliver the second phrase")
}

func TestDetector_OpenSessionDiscardedOnStop(t *testing.T) {
	// Speech with no closing pause: the session is still open when
	// detection stops, so nothing is emitted.
	src := capture.NewMockSource(utteranceScript(0, 8, 0))
	d, err := NewDetector(src, fastConfig())
	require.NoError(t, err)

	callback, phrases := collectPhrases()
	require.NoError(t, d.Start(callback))
	time.Sleep(100 * time.Millisecond) // let the loop drain the script
	require.NoError(t, d.Stop())

	select {
	case p := <-phrases:
		t.Fatalf("open session %s should have been discarded", p.ID)
	default:
	}
}

func TestDetector_CalibrateWhileRunning(t *testing.T) {
	src := capture.NewMockSource(nil)
	d, err := NewDetector(src, fastConfig())
	require.NoError(t, err)

	callback, _ := collectPhrases()
	require.NoError(t, d.Start(callback))
	defer d.Stop()

	prior := d.Threshold()
	threshold, err := d.Calibrate()
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Equal(t, prior, threshold)
}

func TestDetector_SetClassifier(t *testing.T) {
	d, err := NewDetector(capture.NewMockSource(nil), fastConfig())
	require.NoError(t, err)

	assert.Error(t, d.SetClassifier(nil))
	assert.NoError(t, d.SetClassifier(EnergyClassifier{}))

	callback, _ := collectPhrases()
	require.NoError(t, d.Start(callback))
	defer d.Stop()
	assert.ErrorIs(t, d.SetClassifier(EnergyClassifier{}), ErrAlreadyRunning)
}

func TestConfigIsValid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero threshold", func(c *Config) { c.EnergyThreshold = 0 }, true},
		{"threshold above one", func(c *Config) { c.EnergyThreshold = 1.5 }, true},
		{"negative pause", func(c *Config) { c.PauseThreshold = -time.Second }, true},
		{"max below pause", func(c *Config) { c.MaxPhraseTime = 500 * time.Millisecond }, true},
		{"negative pre-roll", func(c *Config) { c.PreRoll = -time.Second }, true},
		{"zero cap", func(c *Config) { c.ThresholdCap = 0 }, true},
		{"zero poll timeout", func(c *Config) { c.PollTimeout = 0 }, true},
		{"zero stop timeout", func(c *Config) { c.StopTimeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.IsValid()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
