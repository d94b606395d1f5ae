package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/deepgram/minichat/internal/services"
	"github.com/deepgram/minichat/internal/services/chat"
	"github.com/deepgram/minichat/pkg/logger"
	"github.com/spf13/cobra"
)

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [message...]",
		Short: "Send one message and print the answer",
		Long: "Send one message and print \"AI says: <answer>\". The message is the " +
			"arguments joined by spaces, or standard input when no arguments are given. " +
			"Any failure terminates the process with exit status 1.",
		RunE: func(cmd *cobra.Command, args []string) error {
			useMemory, _ := cmd.Flags().GetBool("memory")

			input, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			svcs := services.InitializeServices(cmd.Context(), cmd.OutOrStdout())
			defer svcs.Close()

			if err := svcs.GetChatService().RunMessage(cmd.Context(), input, useMemory); err != nil {
				logger.For(logger.CLI).Fatal().
					Err(err).
					Str("step", failedStep(err)).
					Msg("Chat request failed")
			}
			return nil
		},
	}

	cmd.Flags().Bool("memory", false, "Augment the message with stored knowledge.")
	return cmd
}

func readInput(in io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read message from stdin: %w", err)
	}

	input := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(input, "\r"), nil
}

// failedStep names the exchange step an executor error came from
func failedStep(err error) string {
	switch {
	case errors.Is(err, chat.ErrTransport):
		return "send"
	case errors.Is(err, chat.ErrMalformedBody):
		return "decode"
	case errors.Is(err, chat.ErrShapeMismatch):
		return "extract"
	default:
		return "output"
	}
}
