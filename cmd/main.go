package main

import (
	"bytes"
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/listenkit/listenkit/pkg/asr"
	"github.com/listenkit/listenkit/pkg/audio"
	"github.com/listenkit/listenkit/pkg/capture"
	"github.com/listenkit/listenkit/pkg/detection"
	"github.com/listenkit/listenkit/pkg/trace"
)

// phraseConsumer handles accepted phrases: optional WAV dump, optional
// Whisper transcription. Work runs on the detection goroutine, so both
// steps are kept short; the Whisper upload is handed to its own goroutine.
type phraseConsumer struct {
	dumper   *audio.Dumper
	provider asr.Provider
	language string
}

func (c *phraseConsumer) OnPhrase(p *detection.Phrase) {
	log.Printf("[Main] phrase %s: %.2fs, %d frames", p.ID, p.Duration().Seconds(), p.FrameCount)

	if c.dumper != nil {
		path, err := c.dumper.Dump(p.Data)
		if err != nil {
			log.Printf("[Main] WAV dump failed: %v", err)
		} else {
			log.Printf("[Main] saved %s", path)
		}
	}

	if c.provider != nil {
		phrase := p
		go c.transcribe(phrase)
	}
}

func (c *phraseConsumer) transcribe(p *detection.Phrase) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ctx, span := trace.InstrumentTranscription(ctx, c.provider.Name())
	defer span.End()

	result, err := c.provider.Recognize(ctx, bytes.NewReader(p.Data),
		asr.AudioConfig{SampleRate: p.SampleRate, Channels: p.Channels, Encoding: "pcm"},
		asr.RecognitionConfig{Language: c.language})
	if err != nil {
		trace.RecordError(span, err)
		log.Printf("[Main] transcription failed for %s: %v", p.ID, err)
		return
	}
	log.Printf("[Main] transcript %s: %s", p.ID, result.Text)
}

func main() {
	godotenv.Load()

	ctx := context.Background()
	if err := trace.Initialize(ctx, trace.DefaultConfig()); err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := trace.Shutdown(ctx); err != nil {
			log.Printf("Failed to shutdown tracing: %v", err)
		}
	}()

	source, err := capture.NewMicSource(capture.MicConfig{})
	if err != nil {
		log.Fatalf("Failed to open microphone: %v", err)
	}

	cfg := detection.DefaultConfig()
	detector, err := detection.NewDetector(source, cfg)
	if err != nil {
		log.Fatalf("Failed to create detector: %v", err)
	}

	// A fixed threshold from the environment skips ambient calibration.
	if v := os.Getenv("LISTENKIT_THRESHOLD"); v != "" {
		threshold, err := strconv.ParseFloat(v, 64)
		if err != nil {
			log.Fatalf("Invalid LISTENKIT_THRESHOLD %q: %v", v, err)
		}
		cfg.EnergyThreshold = threshold
		detector, err = detection.NewDetector(source, cfg)
		if err != nil {
			log.Fatalf("Failed to create detector: %v", err)
		}
		log.Printf("[Main] using fixed threshold %.4f", threshold)
	} else {
		log.Printf("[Main] calibrating for %v, please stay quiet...", cfg.CalibrationWindow)
		threshold, err := detector.Calibrate()
		if err != nil {
			log.Printf("[Main] calibration failed, keeping threshold %.4f: %v", threshold, err)
		} else {
			log.Printf("[Main] calibrated threshold %.4f", threshold)
		}
	}

	consumer := &phraseConsumer{
		language: os.Getenv("LISTENKIT_LANGUAGE"),
	}

	if dir := os.Getenv("LISTENKIT_DUMP_DIR"); dir != "" {
		dumper, err := audio.NewDumper(dir, "phrase", source.SampleRate(), source.Channels())
		if err != nil {
			log.Fatalf("Failed to create WAV dumper: %v", err)
		}
		consumer.dumper = dumper
		log.Printf("[Main] dumping phrases to %s", dir)
	}

	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		provider, err := asr.NewWhisperProvider(apiKey)
		if err != nil {
			log.Fatalf("Failed to create Whisper provider: %v", err)
		}
		defer provider.Close()
		consumer.provider = provider
		log.Printf("[Main] transcription enabled (%s)", provider.Name())
	}

	if err := detector.Start(consumer.OnPhrase); err != nil {
		log.Fatalf("Failed to start detection: %v", err)
	}

	log.Println("[Main] listening. Press Ctrl+C to stop...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("\nShutting down...")
	if err := detector.Stop(); err != nil {
		log.Printf("[Main] stop error: %v", err)
	}
}
