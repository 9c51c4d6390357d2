// Package asr is the boundary to the downstream speech-to-text collaborator.
// The capture engine hands each completed phrase buffer to a Provider; what
// happens after that (retries, queuing, model choice) is the consumer's
// concern, not the engine's.
package asr

import (
	"context"
	"io"
	"time"
)

// RecognitionResult represents the output of speech recognition.
type RecognitionResult struct {
	// Text is the recognized text.
	Text string

	// Confidence score (0.0-1.0) if available, otherwise -1.
	Confidence float32

	// Language used for recognition.
	Language string

	// Duration of the recognition call.
	Duration time.Duration

	// Timestamp when recognition completed.
	Timestamp time.Time

	// Additional provider-specific metadata.
	Metadata map[string]interface{}
}

// AudioConfig specifies the audio format of the submitted segment.
type AudioConfig struct {
	// SampleRate in Hz (e.g., 16000).
	SampleRate int

	// Channels (1 for mono, 2 for stereo).
	Channels int

	// Encoding format. "pcm" (or empty) means raw S16LE samples, which the
	// provider wraps in a container itself; anything else is submitted
	// verbatim.
	Encoding string
}

// RecognitionConfig contains settings for speech recognition.
type RecognitionConfig struct {
	// Language code (e.g., "en", "ko"); empty for auto-detection.
	Language string

	// Model to use (provider-specific, e.g., "whisper-1").
	Model string

	// Prompt or context to guide the recognition, if supported.
	Prompt string

	// Temperature for sampling (0.0-1.0), if supported.
	Temperature float32
}

// Provider transcribes complete, already-segmented utterance buffers. The
// engine's phrase callback is the natural call site.
type Provider interface {
	// Name returns the provider name (e.g., "openai-whisper").
	Name() string

	// Recognize performs speech recognition on a complete audio segment.
	Recognize(ctx context.Context, audio io.Reader, audioConfig AudioConfig, config RecognitionConfig) (*RecognitionResult, error)

	// Close releases any resources held by the provider.
	Close() error
}

// Error is the typed error returned by providers.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

type ErrorCode int

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeInvalidConfig
	ErrCodeInvalidAudio
	ErrCodeAuthenticationFailed
	ErrCodeQuotaExceeded
	ErrCodeNetworkError
	ErrCodeProviderError
)
