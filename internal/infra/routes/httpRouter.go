package routes

import (
	"net/http"

	"chat-relay/internal/infra/handlers"

	"github.com/gorilla/mux"
)

type Routes struct {
	Mux         *mux.Router
	HttpHandler *handlers.HttpHandlers
}

func NewRoutes(mux *mux.Router, HttpHandler *handlers.HttpHandlers) *Routes {
	return &Routes{mux, HttpHandler}
}

func (r *Routes) Init() {
	r.Mux.HandleFunc("/", r.HttpHandler.Index).Methods(http.MethodGet)
	r.Mux.HandleFunc("/upload", r.HttpHandler.Upload).Methods(http.MethodPost)
	r.Mux.HandleFunc("/document", r.HttpHandler.Document).Methods(http.MethodGet)
	r.Mux.HandleFunc("/chat", r.HttpHandler.Chat).Methods(http.MethodPost)
	r.Mux.HandleFunc("/voice", r.HttpHandler.Voice).Methods(http.MethodPost)
	r.Mux.HandleFunc("/transcribe", r.HttpHandler.Transcribe).Methods(http.MethodPost)
	r.Mux.HandleFunc("/history", r.HttpHandler.History).Methods(http.MethodGet)

	r.Mux.HandleFunc("/healthCheck", r.HttpHandler.Health).Methods(http.MethodGet)
}
