package services

import (
	"context"

	"chat-relay/internal/domain/apperr"
	"chat-relay/internal/domain/entities"
	"chat-relay/internal/domain/interfaces/repository"
	"chat-relay/internal/infra/logger"

	"github.com/sirupsen/logrus"
)

// HistoryService is the append-only log of chat turns.
type HistoryService struct {
	TurnRepository repository.TurnRepository
	Logger         *logger.Logger
}

func NewHistoryService(turnRepository repository.TurnRepository, logger *logger.Logger) *HistoryService {
	return &HistoryService{
		TurnRepository: turnRepository,
		Logger:         logger,
	}
}

// Append records one turn and returns its id. The insert is a single row; it either lands whole or not at all.
func (hs *HistoryService) Append(ctx context.Context, userMessage string, botReply string) (uint, error) {
	turn, err := hs.TurnRepository.Create(ctx, entities.ChatTurn{
		UserMessage: userMessage,
		BotReply:    botReply,
	})
	if err != nil {
		hs.Logger.WithContext(ctx).Error("Failed to append chat turn", logrus.Fields{"error": err.Error()})
		return 0, apperr.New(apperr.ErrPersistenceFailed, err)
	}
	return turn.ID, nil
}

// ListAll returns every stored turn, newest first.
func (hs *HistoryService) ListAll(ctx context.Context) ([]entities.ChatTurn, error) {
	turns, err := hs.TurnRepository.FindAllNewestFirst(ctx)
	if err != nil {
		hs.Logger.WithContext(ctx).Error("Failed to read chat history", logrus.Fields{"error": err.Error()})
		return nil, apperr.New(apperr.ErrPersistenceFailed, err)
	}
	if turns == nil {
		turns = []entities.ChatTurn{}
	}
	return turns, nil
}
