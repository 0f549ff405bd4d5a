package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	Iservices "chat-relay/internal/domain/interfaces/services"
	"chat-relay/internal/infra/handlers"
	"chat-relay/internal/infra/routes"
	"chat-relay/internal/infra/services"
	"chat-relay/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP relay (default command)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, *envFile)
		},
	}
}

func runServe(cmd *cobra.Command, envFile string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := loadApp(ctx, envFile, nil)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())
	log := a.log

	router, err := newRouter(a)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", a.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(fmt.Sprintf("Server is running on port %s", a.cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error running HTTP server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		log.Info("Server stopped gracefully.")
		return nil
	})
	return g.Wait()
}

// newRouter wires the HTTP surface. Text chat needs the completion key; without a
// transcription key the voice routes answer 503 instead of blocking startup.
func newRouter(a *app) (*mux.Router, error) {
	chatService, err := a.chatService()
	if err != nil {
		return nil, err
	}

	var transcriptionService Iservices.ITranscriptionService
	if ts, err := a.transcriptionService(); err != nil {
		a.log.Warn("Voice transcription disabled", logrus.Fields{"reason": err.Error()})
		transcriptionService = services.DisabledTranscriptionService{Reason: err}
	} else {
		transcriptionService = ts
	}

	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware(a.log), middleware.RecoveryMiddleware(a.log))

	httpHandlers := handlers.NewHttpHandlers(
		a.log,
		chatService,
		a.documentService(),
		a.history,
		transcriptionService,
		a.cfg.MaxUploadBytes,
	)
	routes.NewRoutes(router, httpHandlers).Init()
	return router, nil
}
