package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chat-relay/internal/domain/apperr"
	"chat-relay/internal/domain/dto"
	"chat-relay/internal/domain/entities"
	"chat-relay/internal/infra/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChat struct {
	reply    string
	err      error
	messages []string
}

func (s *stubChat) HandleTurn(_ context.Context, message string) (string, error) {
	s.messages = append(s.messages, message)
	if strings.TrimSpace(message) == "" {
		return "", apperr.New(apperr.ErrEmptyMessage, nil)
	}
	return s.reply, s.err
}

type stubDocuments struct {
	doc      entities.Document
	err      error
	ingested []byte
}

func (s *stubDocuments) Ingest(_ context.Context, filename string, data []byte) (entities.Document, error) {
	if s.err != nil {
		return entities.Document{}, s.err
	}
	s.ingested = data
	s.doc = entities.Document{Filename: filename, Text: "Course X meets Mondays.", Pages: 1, LoadedAt: time.Now()}
	return s.doc, nil
}

func (s *stubDocuments) Current() entities.Document { return s.doc }

type stubHistory struct {
	turns []entities.ChatTurn
	err   error
}

func (s *stubHistory) Append(context.Context, string, string) (uint, error) { return 0, nil }

func (s *stubHistory) ListAll(context.Context) ([]entities.ChatTurn, error) { return s.turns, s.err }

type stubTranscription struct {
	text string
	err  error
}

func (s *stubTranscription) Submit(context.Context, []byte) (entities.TranscriptionJob, error) {
	return entities.TranscriptionJob{}, nil
}

func (s *stubTranscription) AwaitCompletion(context.Context, entities.TranscriptionJob, time.Duration, time.Duration) (string, error) {
	return s.text, s.err
}

func (s *stubTranscription) Transcribe(_ context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", apperr.New(apperr.ErrEmptyAudio, nil)
	}
	return s.text, s.err
}

type fixture struct {
	chat          *stubChat
	documents     *stubDocuments
	history       *stubHistory
	transcription *stubTranscription
	handlers      *HttpHandlers
}

func newFixture() *fixture {
	log := logger.NewLogger(context.Background(), true, "debug")
	log.SetOutput(io.Discard)

	f := &fixture{
		chat:          &stubChat{reply: "Course X meets on Mondays."},
		documents:     &stubDocuments{},
		history:       &stubHistory{},
		transcription: &stubTranscription{text: "When does Course X meet?"},
	}
	f.handlers = NewHttpHandlers(log, f.chat, f.documents, f.history, f.transcription, 1<<20)
	return f
}

func multipartRequest(t *testing.T, path, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestChat(t *testing.T) {
	f := newFixture()

	rec := httptest.NewRecorder()
	f.handlers.Chat(rec, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"When does Course X meet?"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decode[dto.ChatResponse](t, rec)
	assert.Equal(t, "Course X meets on Mondays.", resp.Reply)
	assert.Nil(t, resp.Error)
	assert.Equal(t, []string{"When does Course X meet?"}, f.chat.messages)
}

func TestChat_EmptyMessage(t *testing.T) {
	for name, body := range map[string]string{
		"blank":      `{"message":"   "}`,
		"missing":    `{}`,
		"empty body": ``,
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			rec := httptest.NewRecorder()
			f.handlers.Chat(rec, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decode[dto.ChatResponse](t, rec)
			assert.Equal(t, "Please enter a message", resp.Reply)
			require.NotNil(t, resp.Error)
			assert.Equal(t, apperr.ErrEmptyMessage.Error(), resp.Error.Code)
		})
	}
}

func TestChat_InvalidJSON(t *testing.T) {
	f := newFixture()
	rec := httptest.NewRecorder()
	f.handlers.Chat(rec, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.chat.messages)
}

func TestChat_ErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.New(apperr.ErrCompletionUnavailable, errors.New("429")), http.StatusBadGateway},
		{apperr.New(apperr.ErrMalformedResponse, nil), http.StatusBadGateway},
		{apperr.New(apperr.ErrPersistenceFailed, errors.New("disk full")), http.StatusInternalServerError},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(apperr.CodeOf(tc.err), func(t *testing.T) {
			f := newFixture()
			f.chat.err = tc.err

			rec := httptest.NewRecorder()
			f.handlers.Chat(rec, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hi"}`)))

			assert.Equal(t, tc.want, rec.Code)
			resp := decode[dto.ChatResponse](t, rec)
			assert.True(t, strings.HasPrefix(resp.Reply, "Error: "))
			require.NotNil(t, resp.Error)
			assert.Equal(t, apperr.CodeOf(tc.err), resp.Error.Code)
		})
	}
}

func TestUpload(t *testing.T) {
	f := newFixture()

	rec := httptest.NewRecorder()
	f.handlers.Upload(rec, multipartRequest(t, "/upload", "file", "courses.pdf", []byte("%PDF-1.4 ...")))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PDF uploaded successfully", decode[dto.UploadResponse](t, rec).Message)
	assert.Equal(t, []byte("%PDF-1.4 ..."), f.documents.ingested)
}

func TestUpload_MissingFile(t *testing.T) {
	f := newFixture()

	rec := httptest.NewRecorder()
	f.handlers.Upload(rec, multipartRequest(t, "/upload", "", "", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file uploaded", decode[dto.UploadResponse](t, rec).Message)
}

func TestUpload_Rejected(t *testing.T) {
	f := newFixture()
	f.documents.err = apperr.Newf(apperr.ErrInvalidUpload, "notes.txt is not a .pdf file")

	rec := httptest.NewRecorder()
	f.handlers.Upload(rec, multipartRequest(t, "/upload", "file", "notes.txt", []byte("hello")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid file type", decode[dto.UploadResponse](t, rec).Message)
}

func TestUpload_ExtractionFailure(t *testing.T) {
	f := newFixture()
	f.documents.err = apperr.New(apperr.ErrExtractionFailed, errors.New("bad xref"))

	rec := httptest.NewRecorder()
	f.handlers.Upload(rec, multipartRequest(t, "/upload", "file", "broken.pdf", []byte("%PDF-")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decode[dto.UploadResponse](t, rec).Message, "Error processing PDF")
}

func TestUpload_TooLarge(t *testing.T) {
	f := newFixture()
	f.handlers.MaxUploadBytes = 64

	rec := httptest.NewRecorder()
	f.handlers.Upload(rec, multipartRequest(t, "/upload", "file", "big.pdf", bytes.Repeat([]byte("x"), 4096)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	resp := decode[dto.UploadResponse](t, rec)
	assert.Equal(t, "File exceeds the 64 byte upload limit", resp.Message)
	require.NotNil(t, resp.Error)
	assert.Equal(t, apperr.ErrUploadTooLarge.Error(), resp.Error.Code)
	assert.Nil(t, f.documents.ingested)
}

func TestUpload_TooLargeWithoutContentLength(t *testing.T) {
	f := newFixture()
	f.handlers.MaxUploadBytes = 64

	req := multipartRequest(t, "/upload", "file", "big.pdf", bytes.Repeat([]byte("x"), 4096))
	req.ContentLength = -1

	rec := httptest.NewRecorder()
	f.handlers.Upload(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Nil(t, f.documents.ingested)
}

func TestVoice_AudioTooLarge(t *testing.T) {
	f := newFixture()
	f.handlers.MaxUploadBytes = 64

	rec := httptest.NewRecorder()
	f.handlers.Voice(rec, multipartRequest(t, "/voice", "audio", "q.wav", bytes.Repeat([]byte("x"), 4096)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, f.chat.messages)
}

func TestDocument(t *testing.T) {
	f := newFixture()

	rec := httptest.NewRecorder()
	f.handlers.Document(rec, httptest.NewRequest(http.MethodGet, "/document", nil))
	empty := decode[dto.DocumentStatusResponse](t, rec)
	assert.False(t, empty.Loaded)
	assert.Nil(t, empty.LoadedAt)

	f.handlers.Upload(httptest.NewRecorder(), multipartRequest(t, "/upload", "file", "courses.pdf", []byte("%PDF-")))

	rec = httptest.NewRecorder()
	f.handlers.Document(rec, httptest.NewRequest(http.MethodGet, "/document", nil))
	loaded := decode[dto.DocumentStatusResponse](t, rec)
	assert.True(t, loaded.Loaded)
	assert.Equal(t, "courses.pdf", loaded.Filename)
	assert.Equal(t, 1, loaded.Pages)
	assert.Equal(t, len("Course X meets Mondays."), loaded.Characters)
	assert.NotNil(t, loaded.LoadedAt)
}

func TestVoice(t *testing.T) {
	f := newFixture()

	rec := httptest.NewRecorder()
	f.handlers.Voice(rec, multipartRequest(t, "/voice", "audio", "q.wav", []byte("RIFF....")))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decode[dto.VoiceResponse](t, rec)
	assert.Equal(t, "When does Course X meet?", resp.Transcript)
	assert.Equal(t, "Course X meets on Mondays.", resp.Reply)
	assert.Equal(t, []string{"When does Course X meet?"}, f.chat.messages)
}

func TestVoice_TranscriptionErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"failed", apperr.Newf(apperr.ErrTranscriptionFailed, "job-1: unsupported format"), http.StatusBadGateway},
		{"timeout", apperr.Newf(apperr.ErrTranscriptionTimeout, "job-1 not finished"), http.StatusGatewayTimeout},
		{"upload", apperr.New(apperr.ErrUploadFailed, errors.New("413")), http.StatusBadGateway},
		{"not configured", apperr.New(apperr.ErrTranscriptionDisabled, errors.New("ASSEMBLYAI_API_KEY is not set")), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.transcription.err = tc.err

			rec := httptest.NewRecorder()
			f.handlers.Voice(rec, multipartRequest(t, "/voice", "audio", "q.wav", []byte("RIFF")))

			assert.Equal(t, tc.want, rec.Code)
			resp := decode[dto.VoiceResponse](t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, apperr.CodeOf(tc.err), resp.Error.Code)
			assert.Empty(t, f.chat.messages)
		})
	}
}

func TestVoice_ChatFailureKeepsTranscript(t *testing.T) {
	f := newFixture()
	f.chat.err = apperr.New(apperr.ErrCompletionUnavailable, errors.New("503"))

	rec := httptest.NewRecorder()
	f.handlers.Voice(rec, multipartRequest(t, "/voice", "audio", "q.wav", []byte("RIFF")))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decode[dto.VoiceResponse](t, rec)
	assert.Equal(t, "When does Course X meet?", resp.Transcript)
	assert.Empty(t, resp.Reply)
}

func TestVoice_MissingAudio(t *testing.T) {
	f := newFixture()

	rec := httptest.NewRecorder()
	f.handlers.Voice(rec, multipartRequest(t, "/voice", "", "", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperr.ErrInvalidUpload.Error(), decode[dto.VoiceResponse](t, rec).Error.Code)
}

func TestTranscribe(t *testing.T) {
	f := newFixture()
	f.transcription.text = "  hello  "

	rec := httptest.NewRecorder()
	f.handlers.Transcribe(rec, multipartRequest(t, "/transcribe", "audio", "q.wav", []byte("RIFF")))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", decode[dto.VoiceResponse](t, rec).Transcript)
	assert.Empty(t, f.chat.messages)
}

func TestHistory(t *testing.T) {
	f := newFixture()
	now := time.Now().UTC().Truncate(time.Second)
	f.history.turns = []entities.ChatTurn{
		{ID: 2, UserMessage: "second", BotReply: "b", CreatedAt: now},
		{ID: 1, UserMessage: "first", BotReply: "a", CreatedAt: now},
	}

	rec := httptest.NewRecorder()
	f.handlers.History(rec, httptest.NewRequest(http.MethodGet, "/history", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decode[dto.HistoryResponse](t, rec)
	require.Len(t, resp.History, 2)
	assert.Equal(t, uint(2), resp.History[0].ID)
	assert.Equal(t, "second", resp.History[0].User)
	assert.Equal(t, "b", resp.History[0].Bot)
}

func TestHistory_EmptyIsArray(t *testing.T) {
	f := newFixture()

	rec := httptest.NewRecorder()
	f.handlers.History(rec, httptest.NewRequest(http.MethodGet, "/history", nil))

	assert.JSONEq(t, `{"history":[]}`, rec.Body.String())
}

func TestHistory_PersistenceFailure(t *testing.T) {
	f := newFixture()
	f.history.err = apperr.New(apperr.ErrPersistenceFailed, errors.New("database is locked"))

	rec := httptest.NewRecorder()
	f.handlers.History(rec, httptest.NewRequest(http.MethodGet, "/history", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), apperr.ErrPersistenceFailed.Error())
}

func TestIndex(t *testing.T) {
	f := newFixture()

	rec := httptest.NewRecorder()
	f.handlers.Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<title>KiitGPT</title>")
}

func TestHealth(t *testing.T) {
	f := newFixture()

	rec := httptest.NewRecorder()
	f.handlers.Health(rec, httptest.NewRequest(http.MethodGet, "/healthCheck", nil))
	assert.JSONEq(t, `{"status":"healthy","document_loaded":false}`, rec.Body.String())

	f.handlers.Upload(httptest.NewRecorder(), multipartRequest(t, "/upload", "file", "courses.pdf", []byte("%PDF-")))

	rec = httptest.NewRecorder()
	f.handlers.Health(rec, httptest.NewRequest(http.MethodGet, "/healthCheck", nil))
	assert.JSONEq(t, `{"status":"healthy","document_loaded":true}`, rec.Body.String())
}
