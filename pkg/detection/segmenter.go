package detection

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/listenkit/listenkit/pkg/audio"
)

// State is the segmenter's hysteresis state.
type State int

const (
	// StateIdle means no phrase session is open.
	StateIdle State = iota
	// StateSpeaking means a phrase session is accumulating frames.
	StateSpeaking
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSpeaking:
		return "speaking"
	default:
		return "unknown"
	}
}

// Phrase is one contiguous speech-plus-trailing-silence segment accepted by
// the segmenter. Data is the in-order concatenation of every session frame,
// in the source's sample format.
type Phrase struct {
	// ID uniquely identifies the phrase, for logs and trace correlation.
	ID string

	Data       []byte
	SampleRate int
	Channels   int

	// FrameCount is the number of source frames concatenated into Data,
	// pre-roll included.
	FrameCount int

	// Start is the timestamp of the frame that opened the session; End is
	// the timestamp of the frame that closed it.
	Start time.Time
	End   time.Time

	// SpeechDuration is the span from first speech to last speech, the
	// quantity the accept filter measures.
	SpeechDuration time.Duration

	// Forced marks a phrase closed by the MaxPhraseTime cutoff rather than
	// by a pause.
	Forced bool
}

// Duration returns the playback duration of the phrase audio.
func (p *Phrase) Duration() time.Duration {
	if p.SampleRate <= 0 || p.Channels <= 0 {
		return 0
	}
	frames := len(p.Data) / audio.BytesPerSample / p.Channels
	return time.Duration(frames) * time.Second / time.Duration(p.SampleRate)
}

// session is one in-progress candidate utterance. At most one session is
// open at any time.
type session struct {
	frames     []*audio.Frame
	start      time.Time
	lastSpeech time.Time
}

// Segmenter is the phrase state machine. It consumes classified frames in
// arrival order and decides when a phrase begins, continues, and ends. All
// timing derives from frame timestamps, never the wall clock, so the machine
// is deterministic under test.
//
// The segmenter has a single writer (the detection loop) and is not safe for
// concurrent use.
type Segmenter struct {
	cfg     Config
	state   State
	sess    *session
	preRoll *audio.FrameRing
}

// NewSegmenter creates a segmenter in the idle state. cfg must already be
// validated.
func NewSegmenter(cfg Config) *Segmenter {
	s := &Segmenter{cfg: cfg}
	if cfg.PreRoll > 0 {
		s.preRoll = audio.NewFrameRing(cfg.PreRoll)
	}
	return s
}

// State returns the current hysteresis state.
func (s *Segmenter) State() State { return s.state }

// Process feeds one classified frame through the state machine. It returns
// a completed phrase when this frame closed an accepted session, nil
// otherwise.
//
// Transitions, evaluated at the frame's timestamp t:
//   - idle, score > threshold: open a session, t is both session start and
//     last-speech time.
//   - speaking, score > threshold: append, refresh last-speech time.
//   - speaking, score <= threshold: append anyway (pauses between words
//     stay in the recording); close once t-lastSpeech exceeds PauseThreshold.
//   - speaking, t-start > MaxPhraseTime: force-close regardless of score.
//     If the talker is still going, the next frame opens a fresh session,
//     which keeps memory bounded on continuous speech.
func (s *Segmenter) Process(f *audio.Frame, score float64) *Phrase {
	if f == nil {
		return nil
	}
	t := f.Timestamp

	switch s.state {
	case StateIdle:
		if score <= s.cfg.EnergyThreshold {
			if s.preRoll != nil {
				s.preRoll.Write(f)
			}
			return nil
		}

		sess := &session{start: t, lastSpeech: t}
		if s.preRoll != nil {
			sess.frames = s.preRoll.TakeAll()
		}
		sess.frames = append(sess.frames, f)
		s.sess = sess
		s.state = StateSpeaking
		log.Printf("[Segmenter] speech detected (score %.4f), session open", score)
		return nil

	case StateSpeaking:
		s.sess.frames = append(s.sess.frames, f)

		var phrase *Phrase
		if score > s.cfg.EnergyThreshold {
			s.sess.lastSpeech = t
		} else if t.Sub(s.sess.lastSpeech) > s.cfg.PauseThreshold {
			phrase = s.close(t, false)
		}

		// The hard ceiling applies even when the talker never pauses.
		if s.state == StateSpeaking && t.Sub(s.sess.start) > s.cfg.MaxPhraseTime {
			phrase = s.close(t, true)
		}
		return phrase
	}
	return nil
}

// close ends the open session and returns the assembled phrase, or nil when
// the session is discarded by the accept filter. Forced cutoffs are emitted
// unconditionally: a session that ran the full MaxPhraseTime has long
// outlived any sane PhraseThreshold, so the filter does not apply there.
func (s *Segmenter) close(t time.Time, forced bool) *Phrase {
	sess := s.sess
	s.sess = nil
	s.state = StateIdle

	speech := sess.lastSpeech.Sub(sess.start)
	if !forced && speech < s.cfg.PhraseThreshold {
		log.Printf("[Segmenter] discarding %.2fs speech span, below phrase threshold", speech.Seconds())
		return nil
	}

	var size int
	for _, f := range sess.frames {
		size += len(f.Data)
	}
	data := make([]byte, 0, size)
	for _, f := range sess.frames {
		data = append(data, f.Data...)
	}

	first := sess.frames[0]
	return &Phrase{
		ID:             uuid.NewString(),
		Data:           data,
		SampleRate:     first.SampleRate,
		Channels:       first.Channels,
		FrameCount:     len(sess.frames),
		Start:          sess.start,
		End:            t,
		SpeechDuration: speech,
		Forced:         forced,
	}
}

// Reset discards any open session and returns the segmenter to idle. Used
// when detection stops: a session never closed by the normal policy is not
// emitted.
func (s *Segmenter) Reset() {
	if s.sess != nil {
		log.Printf("[Segmenter] discarding open session (%d frames) on reset", len(s.sess.frames))
	}
	s.sess = nil
	s.state = StateIdle
	if s.preRoll != nil {
		s.preRoll.Clear()
	}
}
