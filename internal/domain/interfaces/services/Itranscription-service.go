package Iservices

import (
	"context"
	"time"

	"chat-relay/internal/domain/entities"
)

// ITranscriptionAPI is the remote side of a transcription job.
type ITranscriptionAPI interface {
	UploadAudio(ctx context.Context, audio []byte) (string, error)
	CreateTranscript(ctx context.Context, audioURL string) (entities.TranscriptionJob, error)
	GetTranscript(ctx context.Context, jobID string) (entities.TranscriptionJob, error)
}

type ITranscriptionService interface {
	Submit(ctx context.Context, audio []byte) (entities.TranscriptionJob, error)
	AwaitCompletion(ctx context.Context, job entities.TranscriptionJob, pollInterval, maxWait time.Duration) (string, error)
	Transcribe(ctx context.Context, audio []byte) (string, error)
}
