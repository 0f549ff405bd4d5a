package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"chat-relay/internal/config"
	"chat-relay/internal/domain/interfaces/repository"
	"chat-relay/internal/infra/logger"
	"chat-relay/internal/infra/provider"
	repo "chat-relay/internal/infra/repository"
	"chat-relay/internal/infra/services"
	client "chat-relay/internal/pkg"

	"github.com/sirupsen/logrus"
)

// transcriptionRequestTimeout bounds a single API call. TRANSCRIPTION_MAX_WAIT bounds the whole job.
const transcriptionRequestTimeout = 60 * time.Second

// app holds the services shared by every command.
type app struct {
	cfg     config.Config
	log     *logger.Logger
	history *services.HistoryService

	documents *services.DocumentContext
	closers   []func(context.Context) error
}

func loadApp(ctx context.Context, envFile string, logOutput io.Writer) (*app, error) {
	if err := config.LoadEnv(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.NewLogger(ctx, cfg.LogJSON, cfg.LogLevel)
	if logOutput != nil {
		log.SetOutput(logOutput)
	}

	a := &app{cfg: cfg, log: log, documents: services.NewDocumentContext()}

	turns, err := a.openHistory(ctx)
	if err != nil {
		return nil, err
	}
	a.history = services.NewHistoryService(turns, log)
	return a, nil
}

func (a *app) openHistory(ctx context.Context) (repository.TurnRepository, error) {
	switch a.cfg.HistoryBackend {
	case config.BackendMongo:
		mongoClient, err := client.MongoClient(ctx, a.cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, mongoClient.Disconnect)

		turns := repo.NewMongoTurnRepository(mongoClient.Database(a.cfg.MongoDatabase))
		if err := turns.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		a.log.Info("Chat history stored in MongoDB", logrus.Fields{"database": a.cfg.MongoDatabase})
		return turns, nil

	default:
		db, err := client.SQLiteClient(a.cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, func(context.Context) error { return sqlDB.Close() })
		}

		turns := repo.NewSQLiteTurnRepository(db)
		if err := turns.Migrate(ctx); err != nil {
			return nil, err
		}
		a.log.Debug("Chat history stored in SQLite", logrus.Fields{"path": a.cfg.DatabasePath})
		return turns, nil
	}
}

func (a *app) chatService() (*services.ChatService, error) {
	if err := a.cfg.RequireCompletion(); err != nil {
		return nil, err
	}
	completion := provider.NewCompletionProvider(a.log, a.cfg.CompletionAPIKey, a.cfg.CompletionBaseURL, a.cfg.CompletionModel, a.cfg.CompletionTimeout)
	return services.NewChatService(a.log, a.documents, services.NewPromptBuilder(a.cfg.AssistantName), completion, a.history), nil
}

func (a *app) documentService() *services.DocumentService {
	return services.NewDocumentService(a.log, provider.NewPDFProvider(a.log), a.documents)
}

func (a *app) transcriptionService() (*services.TranscriptionService, error) {
	if err := a.cfg.RequireTranscription(); err != nil {
		return nil, err
	}
	httpClient := &http.Client{Timeout: transcriptionRequestTimeout}
	api := provider.NewAssemblyAIProvider(a.log, httpClient, a.cfg.TranscriptionBaseURL, a.cfg.TranscriptionAPIKey)
	return services.NewTranscriptionService(api, a.log, a.cfg.TranscriptionPollInterval, a.cfg.TranscriptionMaxWait), nil
}

func (a *app) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.log.Warn("Failed to close resource", logrus.Fields{"error": err.Error()})
		}
	}
}
