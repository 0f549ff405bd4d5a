package dto

import "time"

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Reply string     `json:"reply"`
	Error *ErrorBody `json:"error,omitempty"`
}

type VoiceResponse struct {
	Transcript string     `json:"transcript"`
	Reply      string     `json:"reply,omitempty"`
	Error      *ErrorBody `json:"error,omitempty"`
}

type UploadResponse struct {
	Message string     `json:"message"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type DocumentStatusResponse struct {
	Loaded     bool       `json:"loaded"`
	Filename   string     `json:"filename,omitempty"`
	Pages      int        `json:"pages"`
	Characters int        `json:"characters"`
	LoadedAt   *time.Time `json:"loaded_at,omitempty"`
}

type HistoryItem struct {
	ID        uint      `json:"id"`
	User      string    `json:"user"`
	Bot       string    `json:"bot"`
	CreatedAt time.Time `json:"created_at"`
}

type HistoryResponse struct {
	History []HistoryItem `json:"history"`
}

type ErrorBody struct {
	Kind    string `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status         string `json:"status"`
	DocumentLoaded bool   `json:"document_loaded"`
}
