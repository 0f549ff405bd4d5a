package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

func newRootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           "chat-relay",
		Short:         "Conversational relay over a PDF document and voice input",
		Long:          "Relays typed or spoken questions to a chat completion API, grounded on an uploaded PDF, and keeps the chat history.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, envFile)
		},
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "path to a dotenv file; ignored when missing")

	cmd.AddCommand(newServeCmd(&envFile))
	cmd.AddCommand(newAskCmd(&envFile))
	cmd.AddCommand(newHistoryCmd(&envFile))
	cmd.AddCommand(newTranscribeCmd(&envFile))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "chat-relay %s (commit: %s)\n", Version, Commit)
		},
	}
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
