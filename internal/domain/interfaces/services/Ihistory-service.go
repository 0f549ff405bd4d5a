package Iservices

import (
	"context"

	"chat-relay/internal/domain/entities"
)

type IHistoryService interface {
	Append(ctx context.Context, userMessage string, botReply string) (uint, error)
	ListAll(ctx context.Context) ([]entities.ChatTurn, error)
}
