package services

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"chat-relay/internal/domain/apperr"
	"chat-relay/internal/domain/entities"
	Iservices "chat-relay/internal/domain/interfaces/services"
	"chat-relay/internal/infra/logger"

	"github.com/sirupsen/logrus"
)

// DocumentService turns an uploaded PDF into the current document context.
type DocumentService struct {
	Logger    *logger.Logger
	Extractor Iservices.IDocumentExtractor
	Documents *DocumentContext
	now       func() time.Time
}

func NewDocumentService(logger *logger.Logger, extractor Iservices.IDocumentExtractor, documents *DocumentContext) *DocumentService {
	return &DocumentService{
		Logger:    logger,
		Extractor: extractor,
		Documents: documents,
		now:       time.Now,
	}
}

// Ingest extracts the text of a PDF upload and replaces the document context with it.
// A PDF without extractable text still replaces the context, with entities.NoTextFound.
func (ds *DocumentService) Ingest(ctx context.Context, filename string, data []byte) (entities.Document, error) {
	if filename == "" || !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return entities.Document{}, apperr.Newf(apperr.ErrInvalidUpload, "file %q is not a .pdf", filename)
	}

	text, pages, err := ds.Extractor.Extract(ctx, data)
	if err != nil {
		ds.Logger.WithContext(ctx).Warn("Rejected document upload", logrus.Fields{"filename": filename, "error": err.Error()})
		return entities.Document{}, err
	}
	if strings.TrimSpace(text) == "" {
		text = entities.NoTextFound
	}

	doc := entities.Document{
		Filename: filepath.Base(filename),
		Text:     text,
		Pages:    pages,
		LoadedAt: ds.now(),
	}
	ds.Documents.Replace(doc)

	ds.Logger.WithContext(ctx).Info("Document context replaced", logrus.Fields{
		"filename":   doc.Filename,
		"pages":      pages,
		"characters": len(text),
	})
	return doc, nil
}

func (ds *DocumentService) Current() entities.Document {
	return ds.Documents.Current()
}
