package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"chat-relay/internal/domain/dto"

	"github.com/spf13/cobra"
)

func newAskCmd(envFile *string) *cobra.Command {
	var pdfPath string

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Run one chat turn from the command line",
		Long:  "Sends a message through the same prompt, completion and history path as POST /chat, optionally grounded on a local PDF.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(ctx, *envFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			if pdfPath != "" {
				data, err := os.ReadFile(pdfPath)
				if err != nil {
					return fmt.Errorf("read %s: %w", pdfPath, err)
				}
				if _, err := a.documentService().Ingest(ctx, filepath.Base(pdfPath), data); err != nil {
					return err
				}
			}

			chat, err := a.chatService()
			if err != nil {
				return err
			}
			reply, err := chat.HandleTurn(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}

	cmd.Flags().StringVar(&pdfPath, "pdf", "", "PDF whose text grounds the answer")
	return cmd
}

func newHistoryCmd(envFile *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the stored chat history, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), *envFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			turns, err := a.history.ListAll(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				resp := dto.HistoryResponse{History: make([]dto.HistoryItem, 0, len(turns))}
				for _, turn := range turns {
					resp.History = append(resp.History, dto.HistoryItem{ID: turn.ID, User: turn.UserMessage, Bot: turn.BotReply, CreatedAt: turn.CreatedAt})
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			if len(turns) == 0 {
				fmt.Fprintln(out, "No chat history.")
				return nil
			}
			for _, turn := range turns {
				fmt.Fprintf(out, "#%d  %s\n  You: %s\n  Bot: %s\n", turn.ID, turn.CreatedAt.Local().Format(time.DateTime), turn.UserMessage, turn.BotReply)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the same JSON document as GET /history")
	return cmd
}

func newTranscribeCmd(envFile *string) *cobra.Command {
	var pollInterval, maxWait time.Duration

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe a local audio file and print the text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(ctx, *envFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			audio, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			ts, err := a.transcriptionService()
			if err != nil {
				return err
			}
			if pollInterval > 0 {
				ts.PollInterval = pollInterval
			}
			if maxWait > 0 {
				ts.MaxWait = maxWait
			}

			job, err := ts.Submit(ctx, audio)
			if err != nil {
				return err
			}
			text, err := ts.AwaitCompletion(ctx, job, ts.PollInterval, ts.MaxWait)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 0, "override TRANSCRIPTION_POLL_INTERVAL")
	cmd.Flags().DurationVar(&maxWait, "max-wait", 0, "override TRANSCRIPTION_MAX_WAIT")
	return cmd
}
