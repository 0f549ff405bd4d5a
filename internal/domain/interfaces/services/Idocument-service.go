package Iservices

import (
	"context"

	"chat-relay/internal/domain/entities"
)

// IDocumentExtractor turns raw PDF bytes into text.
type IDocumentExtractor interface {
	Extract(ctx context.Context, data []byte) (text string, pages int, err error)
}

type IDocumentService interface {
	Ingest(ctx context.Context, filename string, data []byte) (entities.Document, error)
	Current() entities.Document
}
