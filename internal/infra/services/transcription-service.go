package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chat-relay/internal/domain/apperr"
	"chat-relay/internal/domain/entities"
	Iservices "chat-relay/internal/domain/interfaces/services"
	"chat-relay/internal/infra/logger"

	"github.com/sirupsen/logrus"
)

// TranscriptionService drives a remote transcription job from upload to a terminal state.
type TranscriptionService struct {
	API          Iservices.ITranscriptionAPI
	Logger       *logger.Logger
	PollInterval time.Duration
	MaxWait      time.Duration
}

func NewTranscriptionService(api Iservices.ITranscriptionAPI, logger *logger.Logger, pollInterval, maxWait time.Duration) *TranscriptionService {
	return &TranscriptionService{
		API:          api,
		Logger:       logger,
		PollInterval: pollInterval,
		MaxWait:      maxWait,
	}
}

// Submit uploads audio and registers a transcription job for it.
func (ts *TranscriptionService) Submit(ctx context.Context, audio []byte) (entities.TranscriptionJob, error) {
	if len(audio) == 0 {
		return entities.TranscriptionJob{}, apperr.New(apperr.ErrEmptyAudio, nil)
	}
	log := ts.Logger.WithContext(ctx)

	audioURL, err := ts.API.UploadAudio(ctx, audio)
	if err != nil {
		log.Error("Failed to upload audio", logrus.Fields{"error": err.Error(), "bytes": len(audio)})
		return entities.TranscriptionJob{}, apperr.New(apperr.ErrUploadFailed, err)
	}

	job, err := ts.API.CreateTranscript(ctx, audioURL)
	if err != nil {
		log.Error("Failed to create transcription job", logrus.Fields{"error": err.Error()})
		return entities.TranscriptionJob{}, apperr.New(apperr.ErrJobCreationFailed, err)
	}

	log.Info("Transcription job submitted", logrus.Fields{"job_id": job.ID, "status": job.Status})
	return job, nil
}

// AwaitCompletion polls job every pollInterval until it reaches a terminal state or maxWait elapses.
// The first poll is immediate. Cancelling ctx aborts the loop and any in-flight poll and returns ctx's error.
func (ts *TranscriptionService) AwaitCompletion(ctx context.Context, job entities.TranscriptionJob, pollInterval, maxWait time.Duration) (string, error) {
	if pollInterval <= 0 {
		return "", fmt.Errorf("poll interval must be positive, got %s", pollInterval)
	}
	log := ts.Logger.WithContext(ctx)

	waitCtx, cancel := context.WithTimeout(ctx, maxWait)
	defer cancel()

	timer := time.NewTimer(pollInterval)
	timer.Stop()
	defer timer.Stop()

	for attempt := 1; ; attempt++ {
		current, err := ts.API.GetTranscript(waitCtx, job.ID)
		if err != nil {
			if stop := stopReason(ctx, waitCtx, job.ID, maxWait); stop != nil {
				return "", stop
			}
			log.Error("Failed to poll transcription job", logrus.Fields{"job_id": job.ID, "attempt": attempt, "error": err.Error()})
			return "", apperr.New(apperr.ErrTranscriptionFailed, fmt.Errorf("poll %d of job %s: %w", attempt, job.ID, err))
		}

		switch current.Status {
		case entities.JobCompleted:
			log.Info("Transcription completed", logrus.Fields{"job_id": job.ID, "polls": attempt})
			return current.Transcript, nil
		case entities.JobFailed:
			log.Warn("Transcription failed", logrus.Fields{"job_id": job.ID, "polls": attempt, "reason": current.Error})
			return "", apperr.Newf(apperr.ErrTranscriptionFailed, "job %s: %s", job.ID, current.Error)
		}

		timer.Reset(pollInterval)
		select {
		case <-waitCtx.Done():
			return "", stopReason(ctx, waitCtx, job.ID, maxWait)
		case <-timer.C:
		}
	}
}

// Transcribe runs the whole lifecycle with the configured interval and bound.
func (ts *TranscriptionService) Transcribe(ctx context.Context, audio []byte) (string, error) {
	job, err := ts.Submit(ctx, audio)
	if err != nil {
		return "", err
	}
	return ts.AwaitCompletion(ctx, job, ts.PollInterval, ts.MaxWait)
}

// stopReason tells a caller cancellation apart from the polling bound expiring. It is nil while waitCtx is live.
func stopReason(parent, waitCtx context.Context, jobID string, maxWait time.Duration) error {
	if err := parent.Err(); err != nil {
		return err
	}
	if errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
		return apperr.Newf(apperr.ErrTranscriptionTimeout, "job %s not finished after %s", jobID, maxWait)
	}
	return nil
}

// DisabledTranscriptionService stands in when no transcription API key is configured.
// Every call fails with ErrTranscriptionDisabled so text chat keeps working.
type DisabledTranscriptionService struct {
	Reason error
}

func (d DisabledTranscriptionService) Submit(context.Context, []byte) (entities.TranscriptionJob, error) {
	return entities.TranscriptionJob{}, apperr.New(apperr.ErrTranscriptionDisabled, d.Reason)
}

func (d DisabledTranscriptionService) AwaitCompletion(context.Context, entities.TranscriptionJob, time.Duration, time.Duration) (string, error) {
	return "", apperr.New(apperr.ErrTranscriptionDisabled, d.Reason)
}

func (d DisabledTranscriptionService) Transcribe(context.Context, []byte) (string, error) {
	return "", apperr.New(apperr.ErrTranscriptionDisabled, d.Reason)
}
