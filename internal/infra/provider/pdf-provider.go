package provider

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"chat-relay/internal/domain/apperr"
	"chat-relay/internal/infra/logger"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sirupsen/logrus"
)

var pdfMagic = []byte("%PDF-")

func init() {
	// pdfcpu would otherwise create a config directory under the user's home.
	api.DisableConfigDir()
}

// PDFProvider validates PDF uploads with pdfcpu and extracts their plain text.
type PDFProvider struct {
	Logger *logger.Logger
}

func NewPDFProvider(logger *logger.Logger) *PDFProvider {
	return &PDFProvider{Logger: logger}
}

// Extract returns the text of every page joined by newlines, and the page count.
// Input that is not a structurally valid PDF is rejected before any text extraction.
func (p *PDFProvider) Extract(ctx context.Context, data []byte) (string, int, error) {
	if !bytes.HasPrefix(data, pdfMagic) {
		return "", 0, apperr.Newf(apperr.ErrInvalidUpload, "content is not a PDF")
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		return "", 0, apperr.New(apperr.ErrInvalidUpload, err)
	}
	pages, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return "", 0, apperr.New(apperr.ErrInvalidUpload, err)
	}

	text, err := extractText(data)
	if err != nil {
		return "", 0, apperr.New(apperr.ErrExtractionFailed, err)
	}

	p.Logger.WithContext(ctx).Debug("PDF text extracted", logrus.Fields{
		"pages":      pages,
		"characters": len(text),
	})
	return text, pages, nil
}

func extractText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, content)
	}
	return strings.Join(pages, "\n"), nil
}
