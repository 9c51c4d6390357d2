package detection

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/listenkit/listenkit/pkg/capture"
	"github.com/listenkit/listenkit/pkg/trace"
)

var (
	// ErrAlreadyRunning reports a Start (or Calibrate) while the detection
	// loop is active. The running loop is unaffected.
	ErrAlreadyRunning = errors.New("detection already running")

	// ErrStopTimeout reports a Stop that gave up waiting for the loop to
	// exit. The device stop is still attempted, but the caller should treat
	// this as a possible resource leak.
	ErrStopTimeout = errors.New("detection loop did not exit before timeout")
)

// PhraseCallback receives each accepted phrase. It runs synchronously on
// the detection goroutine: a slow callback delays ingestion of subsequent
// frames (growing the frame queue, never losing frames), so hand off to a
// worker if the work is not quick. Panics are recovered and logged.
type PhraseCallback func(*Phrase)

// Detector owns the detection lifecycle: it starts the audio source, runs
// the classify/segment loop on its own goroutine, and delivers phrases to
// the registered callback. Exactly two goroutines touch audio while it runs:
// the source's delivery goroutine (queue producer) and the detection loop
// (queue consumer, sole owner of segmenter state).
type Detector struct {
	mu         sync.Mutex
	cfg        Config
	source     capture.Source
	classifier Classifier

	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewDetector creates a detector over the given source using the default
// energy classifier.
func NewDetector(src capture.Source, cfg Config) (*Detector, error) {
	if src == nil {
		return nil, fmt.Errorf("source is required")
	}
	if err := cfg.IsValid(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Detector{
		cfg:        cfg,
		source:     src,
		classifier: EnergyClassifier{},
	}, nil
}

// SetClassifier swaps the frame classifier. Fails while running.
func (d *Detector) SetClassifier(c Classifier) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return ErrAlreadyRunning
	}
	if c == nil {
		return fmt.Errorf("classifier is required")
	}
	d.classifier = c
	return nil
}

// Threshold returns the energy threshold currently in effect.
func (d *Detector) Threshold() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg.EnergyThreshold
}

// Running reports whether the detection loop is active.
func (d *Detector) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// Calibrate measures ambient energy for the configured window and adopts
// the derived threshold. On failure the prior threshold is retained and the
// error returned is a warning, not a fatal condition. Calibration is
// refused while detection runs: the threshold never moves under an active
// session.
func (d *Detector) Calibrate() (float64, error) {
	d.mu.Lock()
	if d.running {
		prior := d.cfg.EnergyThreshold
		d.mu.Unlock()
		return prior, ErrAlreadyRunning
	}
	cfg := d.cfg
	classifier := d.classifier
	d.mu.Unlock()

	_, span := trace.InstrumentCalibration(context.Background(), cfg.CalibrationWindow)
	defer span.End()

	threshold, err := CalibrateThreshold(d.source, classifier, cfg.CalibrationWindow, cfg.ThresholdCap)
	if err != nil {
		trace.RecordError(span, err)
		return cfg.EnergyThreshold, err
	}

	d.mu.Lock()
	d.cfg.EnergyThreshold = threshold
	d.mu.Unlock()
	return threshold, nil
}

// Start begins detection, delivering phrases to callback. It starts the
// audio source first; a device failure is returned and no goroutine is
// spawned. Calling Start on a running detector leaves the active loop
// untouched and reports ErrAlreadyRunning.
func (d *Detector) Start(callback PhraseCallback) error {
	if callback == nil {
		return fmt.Errorf("callback is required")
	}

	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		log.Printf("[Detector] start ignored: already running")
		return ErrAlreadyRunning
	}

	if err := d.source.Start(); err != nil {
		d.mu.Unlock()
		return fmt.Errorf("failed to start audio source: %w", err)
	}

	seg := NewSegmenter(d.cfg)
	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	d.running = true
	stop, done := d.stop, d.done
	pollTimeout := d.cfg.PollTimeout
	classifier := d.classifier
	d.mu.Unlock()

	log.Printf("[Detector] listening (threshold %.4f)", seg.cfg.EnergyThreshold)
	go d.run(seg, classifier, callback, pollTimeout, stop, done)
	return nil
}

// run is the detection loop: pop, classify, segment, deliver. It owns the
// segmenter exclusively. The stop check sits before the pop so a stop
// request is observed within one poll timeout; the frame in flight is always
// processed to completion first.
func (d *Detector) run(seg *Segmenter, classifier Classifier, callback PhraseCallback, pollTimeout time.Duration, stop, done chan struct{}) {
	defer close(done)
	defer seg.Reset()

	ctx := context.Background()
	for {
		select {
		case <-stop:
			return
		default:
		}

		f, ok := d.source.ReadFrame(pollTimeout)
		if !ok {
			// No frame this cycle; retry.
			continue
		}

		score, err := classifier.Score(f)
		if err != nil {
			log.Printf("[Detector] classifier error, frame skipped: %v", err)
			continue
		}

		if phrase := seg.Process(f, score); phrase != nil {
			d.deliver(ctx, callback, phrase)
		}
	}
}

// deliver invokes the callback for one phrase. Callback failures belong to
// the caller; they are logged here and never crash the loop.
func (d *Detector) deliver(ctx context.Context, callback PhraseCallback, p *Phrase) {
	_, span := trace.InstrumentPhraseDeliver(ctx, p.ID, p.FrameCount, p.Duration(), p.Forced)
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("phrase callback panic: %v", r)
			trace.RecordError(span, err)
			log.Printf("[Detector] %v", err)
		}
	}()

	log.Printf("[Detector] phrase %s: %.2fs audio, %d frames, forced=%v",
		p.ID, p.Duration().Seconds(), p.FrameCount, p.Forced)
	callback(p)
}

// Stop signals the loop to exit, waits up to StopTimeout for it, then stops
// the audio source. Any open session is discarded, not emitted. Stopping an
// already-stopped detector is a no-op.
func (d *Detector) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil
	}
	d.running = false
	close(d.stop)
	done := d.done
	stopTimeout := d.cfg.StopTimeout
	d.mu.Unlock()

	var timedOut bool
	select {
	case <-done:
	case <-time.After(stopTimeout):
		timedOut = true
		log.Printf("[Detector] loop did not exit within %v", stopTimeout)
	}

	if err := d.source.Stop(); err != nil {
		log.Printf("[Detector] source stop error: %v", err)
	}

	if timedOut {
		return ErrStopTimeout
	}
	log.Printf("[Detector] stopped")
	return nil
}
