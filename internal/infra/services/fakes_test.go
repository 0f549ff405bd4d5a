package services

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"chat-relay/internal/domain/entities"
	"chat-relay/internal/infra/logger"
	"chat-relay/internal/infra/repository"
	client "chat-relay/internal/pkg"

	"github.com/stretchr/testify/require"
)

func testLogger() *logger.Logger {
	log := logger.NewLogger(context.Background(), true, "debug")
	log.SetOutput(io.Discard)
	return log
}

func testHistory(t *testing.T) *HistoryService {
	t.Helper()
	db, err := client.SQLiteClient(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	repo := repository.NewSQLiteTurnRepository(db)
	require.NoError(t, repo.Migrate(context.Background()))
	return NewHistoryService(repo, testLogger())
}

type completionCall struct {
	System string
	User   string
}

type fakeCompletion struct {
	mu    sync.Mutex
	reply string
	err   error
	calls []completionCall
}

func (f *fakeCompletion) Complete(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, completionCall{System: systemPrompt, User: userPrompt})
	return f.reply, f.err
}

func (f *fakeCompletion) Calls() []completionCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]completionCall(nil), f.calls...)
}

type failingRepository struct{}

func (failingRepository) Create(context.Context, entities.ChatTurn) (entities.ChatTurn, error) {
	return entities.ChatTurn{}, errors.New("database is locked")
}

func (failingRepository) FindAllNewestFirst(context.Context) ([]entities.ChatTurn, error) {
	return nil, errors.New("database is locked")
}

// scriptedTranscriptionAPI reports each status in order, then repeats the last one.
type scriptedTranscriptionAPI struct {
	uploadErr error
	createErr error
	pollErr   error
	statuses  []entities.JobStatus
	text      string
	reason    string

	uploaded []byte
	polls    atomic.Int32
}

func (s *scriptedTranscriptionAPI) UploadAudio(_ context.Context, audio []byte) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.uploaded = audio
	return "https://cdn.example/upload/1", nil
}

func (s *scriptedTranscriptionAPI) CreateTranscript(_ context.Context, audioURL string) (entities.TranscriptionJob, error) {
	if s.createErr != nil {
		return entities.TranscriptionJob{}, s.createErr
	}
	return entities.TranscriptionJob{ID: "job-" + filepath.Base(audioURL), Status: entities.JobQueued}, nil
}

func (s *scriptedTranscriptionAPI) GetTranscript(ctx context.Context, jobID string) (entities.TranscriptionJob, error) {
	n := int(s.polls.Add(1))
	if err := ctx.Err(); err != nil {
		return entities.TranscriptionJob{}, err
	}
	if s.pollErr != nil {
		return entities.TranscriptionJob{}, s.pollErr
	}

	status := entities.JobProcessing
	if len(s.statuses) > 0 {
		idx := n - 1
		if idx >= len(s.statuses) {
			idx = len(s.statuses) - 1
		}
		status = s.statuses[idx]
	}

	job := entities.TranscriptionJob{ID: jobID, Status: status}
	switch status {
	case entities.JobCompleted:
		job.Transcript = s.text
	case entities.JobFailed:
		job.Error = s.reason
	}
	return job, nil
}
