package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"chat-relay/internal/domain/dto"
	"chat-relay/internal/domain/entities"
	"chat-relay/internal/infra/logger"
)

const maxErrorBody = 400

// AssemblyAIProvider implements the remote transcription API: raw upload, job creation, and job lookup.
type AssemblyAIProvider struct {
	Logger     *logger.Logger
	HttpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewAssemblyAIProvider(logger *logger.Logger, httpClient *http.Client, baseURL, apiKey string) *AssemblyAIProvider {
	return &AssemblyAIProvider{
		Logger:     logger,
		HttpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// UploadAudio stores raw audio bytes remotely and returns the reference URL for job creation.
func (p *AssemblyAIProvider) UploadAudio(ctx context.Context, audio []byte) (string, error) {
	var out dto.UploadAudioResponse
	if err := p.do(ctx, http.MethodPost, "/upload", "application/octet-stream", bytes.NewReader(audio), &out); err != nil {
		return "", err
	}
	if out.UploadURL == "" {
		return "", fmt.Errorf("upload response has no upload_url")
	}
	return out.UploadURL, nil
}

// CreateTranscript registers a transcription job for audioURL.
func (p *AssemblyAIProvider) CreateTranscript(ctx context.Context, audioURL string) (entities.TranscriptionJob, error) {
	payload, err := json.Marshal(dto.CreateTranscriptRequest{AudioURL: audioURL})
	if err != nil {
		return entities.TranscriptionJob{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	var out dto.TranscriptResponse
	if err := p.do(ctx, http.MethodPost, "/transcript", "application/json", bytes.NewReader(payload), &out); err != nil {
		return entities.TranscriptionJob{}, err
	}
	if out.ID == "" {
		return entities.TranscriptionJob{}, fmt.Errorf("transcript response has no id")
	}
	return toJob(out), nil
}

// GetTranscript fetches the current state of job jobID.
func (p *AssemblyAIProvider) GetTranscript(ctx context.Context, jobID string) (entities.TranscriptionJob, error) {
	var out dto.TranscriptResponse
	if err := p.do(ctx, http.MethodGet, "/transcript/"+url.PathEscape(jobID), "", nil, &out); err != nil {
		return entities.TranscriptionJob{}, err
	}
	if out.ID == "" {
		out.ID = jobID
	}
	return toJob(out), nil
}

func (p *AssemblyAIProvider) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Authorization", p.apiKey)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := p.HttpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("unexpected HTTP status %s from %s %s: %s", res.Status, method, path, truncate(string(data), maxErrorBody))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response from %s %s: %w", method, path, err)
	}
	return nil
}

func toJob(res dto.TranscriptResponse) entities.TranscriptionJob {
	job := entities.TranscriptionJob{
		ID:     res.ID,
		Status: entities.JobStatus(strings.ToLower(res.Status)),
		Error:  res.Error,
	}
	if res.Text != nil {
		job.Transcript = *res.Text
	}
	return job
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
