package asr

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestWhisperProvider_Name(t *testing.T) {
	provider, err := NewWhisperProvider("test-api-key")
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if provider.Name() != "openai-whisper" {
		t.Errorf("Expected name 'openai-whisper', got '%s'", provider.Name())
	}
}

func TestNewWhisperProvider_NoAPIKey(t *testing.T) {
	_, err := NewWhisperProvider("")
	if err == nil {
		t.Fatal("Expected error when API key is empty")
	}

	var asrErr *Error
	if !errors.As(err, &asrErr) {
		t.Errorf("Expected *Error, got %T", err)
	} else if asrErr.Code != ErrCodeInvalidConfig {
		t.Errorf("Expected ErrCodeInvalidConfig, got %v", asrErr.Code)
	}
}

func TestWhisperProvider_RecognizeEmptyAudio(t *testing.T) {
	provider, err := NewWhisperProvider("test-api-key")
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Recognize(context.Background(), bytes.NewReader(nil),
		AudioConfig{SampleRate: 16000, Channels: 1}, RecognitionConfig{})
	if err == nil {
		t.Fatal("Expected error for empty audio")
	}

	var asrErr *Error
	if !errors.As(err, &asrErr) {
		t.Errorf("Expected *Error, got %T", err)
	} else if asrErr.Code != ErrCodeInvalidAudio {
		t.Errorf("Expected ErrCodeInvalidAudio, got %v", asrErr.Code)
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &Error{Code: ErrCodeNetworkError, Message: "request failed", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("Error should unwrap to the inner error")
	}
	if err.Error() != "request failed: boom" {
		t.Errorf("Error() = %q", err.Error())
	}
}
