package trace

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used by the detection engine.
const (
	AttrPhraseID       = "phrase.id"
	AttrPhraseFrames   = "phrase.frames"
	AttrPhraseDuration = "phrase.duration_ms"
	AttrPhraseForced   = "phrase.forced"

	AttrCalibrationWindow = "calibration.window_ms"

	AttrSTTProvider = "stt.provider"
)

// InstrumentPhraseDeliver creates a span covering the delivery of one
// accepted phrase to the registered callback.
func InstrumentPhraseDeliver(ctx context.Context, phraseID string, frames int, duration time.Duration, forced bool) (context.Context, trace.Span) {
	return StartSpan(ctx, "detection.phrase.deliver",
		trace.WithAttributes(
			attribute.String(AttrPhraseID, phraseID),
			attribute.Int(AttrPhraseFrames, frames),
			attribute.Int64(AttrPhraseDuration, duration.Milliseconds()),
			attribute.Bool(AttrPhraseForced, forced),
		),
	)
}

// InstrumentCalibration creates a span covering one ambient calibration run.
func InstrumentCalibration(ctx context.Context, window time.Duration) (context.Context, trace.Span) {
	return StartSpan(ctx, "detection.calibrate",
		trace.WithAttributes(
			attribute.Int64(AttrCalibrationWindow, window.Milliseconds()),
		),
	)
}

// InstrumentTranscription creates a span covering one downstream STT call.
func InstrumentTranscription(ctx context.Context, provider string) (context.Context, trace.Span) {
	return StartSpan(ctx, "stt.recognize",
		trace.WithAttributes(
			attribute.String(AttrSTTProvider, provider),
		),
	)
}
