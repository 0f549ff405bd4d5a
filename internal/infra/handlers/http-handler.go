package handlers

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"chat-relay/internal/domain/apperr"
	"chat-relay/internal/domain/dto"
	Iservices "chat-relay/internal/domain/interfaces/services"
	"chat-relay/internal/infra/logger"

	"github.com/sirupsen/logrus"
)

//go:embed web/index.html
var indexPage []byte

type HttpHandlers struct {
	Logger               *logger.Logger
	ChatService          Iservices.IChatService
	DocumentService      Iservices.IDocumentService
	HistoryService       Iservices.IHistoryService
	TranscriptionService Iservices.ITranscriptionService
	MaxUploadBytes       int64
}

func NewHttpHandlers(
	logger *logger.Logger,
	chatService Iservices.IChatService,
	documentService Iservices.IDocumentService,
	historyService Iservices.IHistoryService,
	transcriptionService Iservices.ITranscriptionService,
	maxUploadBytes int64,
) *HttpHandlers {
	return &HttpHandlers{
		Logger:               logger,
		ChatService:          chatService,
		DocumentService:      documentService,
		HistoryService:       historyService,
		TranscriptionService: transcriptionService,
		MaxUploadBytes:       maxUploadBytes,
	}
}

func (th *HttpHandlers) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(indexPage)
}

// Upload accepts a multipart "file" field holding a PDF and makes its text the current document context.
func (th *HttpHandlers) Upload(w http.ResponseWriter, r *http.Request) {
	data, filename, err := th.readUpload(w, r, "file")
	if err != nil {
		message := "No file uploaded"
		if errors.Is(err, apperr.ErrUploadTooLarge) {
			message = th.sizeLimitMessage()
		}
		writeJSON(w, statusFor(err), dto.UploadResponse{Message: message, Error: errorBody(err)})
		return
	}

	if _, err := th.DocumentService.Ingest(r.Context(), filename, data); err != nil {
		if apperr.KindOf(err) == apperr.KindValidation {
			writeJSON(w, http.StatusBadRequest, dto.UploadResponse{Message: "Invalid file type", Error: errorBody(err)})
			return
		}
		th.Logger.WithContext(r.Context()).Error("Failed to process PDF", logrus.Fields{"filename": filename, "error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, dto.UploadResponse{
			Message: fmt.Sprintf("Error processing PDF: %s", err.Error()),
			Error:   errorBody(err),
		})
		return
	}

	writeJSON(w, http.StatusOK, dto.UploadResponse{Message: "PDF uploaded successfully"})
}

func (th *HttpHandlers) Document(w http.ResponseWriter, r *http.Request) {
	doc := th.DocumentService.Current()
	resp := dto.DocumentStatusResponse{
		Loaded:     doc.Loaded(),
		Filename:   doc.Filename,
		Pages:      doc.Pages,
		Characters: len(doc.Text),
	}
	if doc.Loaded() {
		loadedAt := doc.LoadedAt
		resp.LoadedAt = &loadedAt
	}
	writeJSON(w, http.StatusOK, resp)
}

// Chat handles one typed message.
func (th *HttpHandlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req dto.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, dto.ChatResponse{
			Reply: "Invalid request body",
			Error: errorBody(apperr.New(apperr.ErrEmptyMessage, err)),
		})
		return
	}

	reply, err := th.ChatService.HandleTurn(r.Context(), req.Message)
	if err != nil {
		if errors.Is(err, apperr.ErrEmptyMessage) {
			writeJSON(w, http.StatusBadRequest, dto.ChatResponse{Reply: "Please enter a message", Error: errorBody(err)})
			return
		}
		writeJSON(w, statusFor(err), dto.ChatResponse{Reply: fmt.Sprintf("Error: %s", err.Error()), Error: errorBody(err)})
		return
	}

	writeJSON(w, http.StatusOK, dto.ChatResponse{Reply: reply})
}

// Voice transcribes a multipart "audio" field and runs the transcript as a chat turn.
func (th *HttpHandlers) Voice(w http.ResponseWriter, r *http.Request) {
	transcript, ok := th.transcribe(w, r)
	if !ok {
		return
	}

	reply, err := th.ChatService.HandleTurn(r.Context(), transcript)
	if err != nil {
		writeJSON(w, statusFor(err), dto.VoiceResponse{Transcript: transcript, Error: errorBody(err)})
		return
	}

	writeJSON(w, http.StatusOK, dto.VoiceResponse{Transcript: transcript, Reply: reply})
}

// Transcribe only runs the transcription job and returns its text.
func (th *HttpHandlers) Transcribe(w http.ResponseWriter, r *http.Request) {
	transcript, ok := th.transcribe(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, dto.VoiceResponse{Transcript: transcript})
}

func (th *HttpHandlers) History(w http.ResponseWriter, r *http.Request) {
	turns, err := th.HistoryService.ListAll(r.Context())
	if err != nil {
		writeJSON(w, statusFor(err), map[string]any{"error": errorBody(err)})
		return
	}

	resp := dto.HistoryResponse{History: make([]dto.HistoryItem, 0, len(turns))}
	for _, turn := range turns {
		resp.History = append(resp.History, dto.HistoryItem{
			ID:        turn.ID,
			User:      turn.UserMessage,
			Bot:       turn.BotReply,
			CreatedAt: turn.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (th *HttpHandlers) transcribe(w http.ResponseWriter, r *http.Request) (string, bool) {
	audio, _, err := th.readUpload(w, r, "audio")
	if err != nil {
		writeJSON(w, statusFor(err), dto.VoiceResponse{Error: errorBody(err)})
		return "", false
	}

	transcript, err := th.TranscriptionService.Transcribe(r.Context(), audio)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			th.Logger.WithContext(r.Context()).Warn("Client went away during transcription")
			return "", false
		}
		th.Logger.WithContext(r.Context()).Error("Transcription failed", logrus.Fields{"error": err.Error(), "code": apperr.CodeOf(err)})
		writeJSON(w, statusFor(err), dto.VoiceResponse{Error: errorBody(err)})
		return "", false
	}
	return strings.TrimSpace(transcript), true
}

// Health reports liveness and whether a document is loaded.
func (th *HttpHandlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.HealthResponse{
		Status:         "healthy",
		DocumentLoaded: th.DocumentService.Current().Loaded(),
	})
}

func (th *HttpHandlers) readUpload(w http.ResponseWriter, r *http.Request, field string) ([]byte, string, error) {
	if r.ContentLength > th.MaxUploadBytes {
		return nil, "", apperr.Newf(apperr.ErrUploadTooLarge, "request body is %d bytes, limit is %d", r.ContentLength, th.MaxUploadBytes)
	}
	r.Body = http.MaxBytesReader(w, r.Body, th.MaxUploadBytes)

	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", uploadError(field, err, th.MaxUploadBytes)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", uploadError(field, err, th.MaxUploadBytes)
	}
	return data, header.Filename, nil
}

func uploadError(field string, err error, limit int64) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.Newf(apperr.ErrUploadTooLarge, "request body exceeds %d bytes", limit)
	}
	return apperr.Newf(apperr.ErrInvalidUpload, "missing %q file field: %v", field, err)
}

func (th *HttpHandlers) sizeLimitMessage() string {
	return fmt.Sprintf("File exceeds the %d byte upload limit", th.MaxUploadBytes)
}

func statusFor(err error) int {
	if errors.Is(err, apperr.ErrUploadTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUpstream:
		return http.StatusBadGateway
	case apperr.KindTimeout:
		return http.StatusGatewayTimeout
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(err error) *dto.ErrorBody {
	return &dto.ErrorBody{
		Kind:    string(apperr.KindOf(err)),
		Code:    apperr.CodeOf(err),
		Message: err.Error(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
