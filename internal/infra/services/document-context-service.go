package services

import (
	"sync"

	"chat-relay/internal/domain/entities"
)

// DocumentContext is the single process-wide document slot. Readers always get a whole snapshot.
type DocumentContext struct {
	mu  sync.RWMutex
	doc entities.Document
}

func NewDocumentContext() *DocumentContext {
	return &DocumentContext{}
}

// Replace overwrites the current document unconditionally.
func (d *DocumentContext) Replace(doc entities.Document) {
	d.mu.Lock()
	d.doc = doc
	d.mu.Unlock()
}

func (d *DocumentContext) Current() entities.Document {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.doc
}
