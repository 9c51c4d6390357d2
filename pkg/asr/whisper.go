package asr

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/listenkit/listenkit/pkg/audio"
)

// WhisperProvider implements Provider using OpenAI's Whisper API.
type WhisperProvider struct {
	client *openai.Client
}

// NewWhisperProvider creates a new OpenAI Whisper provider. apiKey is
// required; OPENAI_BASE_URL overrides the API endpoint when set.
func NewWhisperProvider(apiKey string) (*WhisperProvider, error) {
	if apiKey == "" {
		return nil, &Error{
			Code:    ErrCodeInvalidConfig,
			Message: "OpenAI API key is required",
		}
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		clientConfig.BaseURL = baseURL
		log.Printf("[Whisper] using BaseURL: %s", clientConfig.BaseURL)
	}

	return &WhisperProvider{
		client: openai.NewClientWithConfig(clientConfig),
	}, nil
}

// Name implements Provider.
func (w *WhisperProvider) Name() string {
	return "openai-whisper"
}

// Recognize implements Provider. Raw PCM input is wrapped in a WAV
// container before upload; the API does not accept bare samples.
func (w *WhisperProvider) Recognize(ctx context.Context, reader io.Reader, audioConfig AudioConfig, config RecognitionConfig) (*RecognitionResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, &Error{
			Code:    ErrCodeInvalidAudio,
			Message: "failed to read audio data",
			Err:     err,
		}
	}
	if len(data) == 0 {
		return nil, &Error{
			Code:    ErrCodeInvalidAudio,
			Message: "audio data is empty",
		}
	}

	fileBytes := data
	if audioConfig.Encoding == "pcm" || audioConfig.Encoding == "" {
		fileBytes = audio.EncodeWAV(data, audioConfig.SampleRate, audioConfig.Channels)
	}

	req := openai.AudioRequest{
		Model:    config.Model,
		FilePath: "phrase.wav", // filename hint for the API
		Reader:   bytes.NewReader(fileBytes),
		Prompt:   config.Prompt,
		Language: config.Language,
	}
	if req.Model == "" {
		req.Model = openai.Whisper1
	}
	if config.Temperature > 0 {
		req.Temperature = config.Temperature
	}

	startTime := time.Now()
	resp, err := w.client.CreateTranscription(ctx, req)
	if err != nil {
		return nil, &Error{
			Code:    ErrCodeProviderError,
			Message: "Whisper API request failed",
			Err:     err,
		}
	}

	return &RecognitionResult{
		Text:       resp.Text,
		Confidence: -1, // Whisper API does not provide confidence scores
		Language:   config.Language,
		Duration:   time.Since(startTime),
		Timestamp:  time.Now(),
		Metadata: map[string]interface{}{
			"model": req.Model,
		},
	}, nil
}

// Close implements Provider. The Whisper client holds no resources.
func (w *WhisperProvider) Close() error {
	return nil
}

var _ Provider = (*WhisperProvider)(nil)
