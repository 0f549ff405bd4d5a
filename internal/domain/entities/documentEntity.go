package entities

import "time"

// NoTextFound replaces the document text when extraction yields only whitespace.
const NoTextFound = "No text found in PDF."

// Document is an immutable snapshot of the currently loaded document.
type Document struct {
	Filename string
	Text     string
	Pages    int
	LoadedAt time.Time
}

func (d Document) Loaded() bool { return d.Text != "" }
