package repository

import (
	"context"
	"fmt"

	"chat-relay/internal/domain/entities"

	"gorm.io/gorm"
)

type SQLiteTurnRepository struct {
	db *gorm.DB
}

func NewSQLiteTurnRepository(db *gorm.DB) *SQLiteTurnRepository {
	return &SQLiteTurnRepository{db: db}
}

// Migrate creates the chat_history table if it does not exist.
func (r *SQLiteTurnRepository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&entities.ChatTurn{}); err != nil {
		return fmt.Errorf("migrate %s: %w", entities.ChatHistoryTable, err)
	}
	return nil
}

func (r *SQLiteTurnRepository) Create(ctx context.Context, turn entities.ChatTurn) (entities.ChatTurn, error) {
	turn.ID = 0
	if err := r.db.WithContext(ctx).Create(&turn).Error; err != nil {
		return entities.ChatTurn{}, err
	}
	return turn, nil
}

func (r *SQLiteTurnRepository) FindAllNewestFirst(ctx context.Context) ([]entities.ChatTurn, error) {
	var turns []entities.ChatTurn
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&turns).Error; err != nil {
		return nil, err
	}
	return turns, nil
}
