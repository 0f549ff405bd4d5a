package repository

import (
	"context"

	"chat-relay/internal/domain/entities"
)

// TurnRepository is the append-only chat history storage.
type TurnRepository interface {
	Create(ctx context.Context, turn entities.ChatTurn) (entities.ChatTurn, error)
	FindAllNewestFirst(ctx context.Context) ([]entities.ChatTurn, error)
}
