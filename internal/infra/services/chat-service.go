package services

import (
	"context"
	"strings"

	"chat-relay/internal/domain/apperr"
	Iservices "chat-relay/internal/domain/interfaces/services"
	"chat-relay/internal/infra/logger"

	"github.com/sirupsen/logrus"
)

// ChatService handles one text turn: prompt assembly, completion, then persistence.
type ChatService struct {
	Logger            *logger.Logger
	Documents         *DocumentContext
	Prompts           PromptBuilder
	CompletionService Iservices.ICompletionService
	HistoryService    Iservices.IHistoryService
}

func NewChatService(logger *logger.Logger, documents *DocumentContext, prompts PromptBuilder, completionService Iservices.ICompletionService, historyService Iservices.IHistoryService) *ChatService {
	return &ChatService{
		Logger:            logger,
		Documents:         documents,
		Prompts:           prompts,
		CompletionService: completionService,
		HistoryService:    historyService,
	}
}

// HandleTurn returns the assistant reply only after the turn has been stored.
// If the store fails the reply is discarded and ErrPersistenceFailed is returned.
func (cs *ChatService) HandleTurn(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", apperr.New(apperr.ErrEmptyMessage, nil)
	}
	log := cs.Logger.WithContext(ctx)

	doc := cs.Documents.Current()
	prompt := cs.Prompts.Build(doc.Text, message)

	reply, err := cs.CompletionService.Complete(ctx, prompt.System, prompt.User)
	if err != nil {
		log.Error("Completion failed", logrus.Fields{"error": err.Error(), "code": apperr.CodeOf(err)})
		return "", err
	}

	turnID, err := cs.HistoryService.Append(ctx, message, reply)
	if err != nil {
		return "", err
	}

	log.Info("Chat turn stored", logrus.Fields{
		"turn_id":      turnID,
		"document":     doc.Filename,
		"with_context": doc.Loaded(),
	})
	return reply, nil
}
