package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"quiztube/internal/config"
	"quiztube/internal/domain"

	"go.uber.org/zap"
)

const transcriptionsPath = "/v1/audio/transcriptions"

// HTTPTranscriber implements domain.Transcriber against an OpenAI-compatible
// whisper server. Every sub-cause (unreachable server, bad audio, model load
// failure) is folded into a single TRANSCRIPTION_FAILED error; callers are
// not expected to distinguish them.
type HTTPTranscriber struct {
	serverURL    string
	defaultModel string
	httpClient   *http.Client
	logger       *zap.Logger
}

// NewHTTPTranscriber creates a transcriber for the configured whisper server.
func NewHTTPTranscriber(whisperCfg config.WhisperConfig, logger *zap.Logger) (*HTTPTranscriber, error) {
	if whisperCfg.ServerURL == "" {
		return nil, fmt.Errorf("whisper server URL cannot be empty")
	}

	defaultModel := whisperCfg.Model
	if defaultModel == "" {
		defaultModel = "base"
	}

	return &HTTPTranscriber{
		serverURL:    strings.TrimRight(whisperCfg.ServerURL, "/"),
		defaultModel: defaultModel,
		// Whole-file transcription of long videos is slow; the context on
		// the request still allows earlier cancellation.
		httpClient: &http.Client{Timeout: 10 * time.Minute},
		logger:     logger,
	}, nil
}

// Transcribe implements domain.Transcriber. An empty modelName selects the
// configured default. The returned transcript is whitespace-trimmed; an
// empty transcript is a valid result.
func (t *HTTPTranscriber) Transcribe(ctx context.Context, audioPath string, modelName string) (string, error) {
	if modelName == "" {
		modelName = t.defaultModel
	}

	file, err := os.Open(audioPath)
	if err != nil {
		return "", domain.NewTranscriptionFailedError(fmt.Errorf("cannot open audio file: %w", err))
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", domain.NewTranscriptionFailedError(err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", domain.NewTranscriptionFailedError(err)
	}
	if err := writer.WriteField("model", modelName); err != nil {
		return "", domain.NewTranscriptionFailedError(err)
	}
	if err := writer.WriteField("response_format", "json"); err != nil {
		return "", domain.NewTranscriptionFailedError(err)
	}
	if err := writer.Close(); err != nil {
		return "", domain.NewTranscriptionFailedError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.serverURL+transcriptionsPath, &body)
	if err != nil {
		return "", domain.NewTranscriptionFailedError(err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	t.logger.Info("Transcribing audio",
		zap.String("audioPath", audioPath),
		zap.String("model", modelName))

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", domain.NewTranscriptionFailedError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", domain.NewTranscriptionFailedError(
			fmt.Errorf("whisper server returned %d: %s", resp.StatusCode, string(snippet)))
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", domain.NewTranscriptionFailedError(fmt.Errorf("invalid transcription response: %w", err))
	}

	return strings.TrimSpace(payload.Text), nil
}

var _ domain.Transcriber = (*HTTPTranscriber)(nil)
