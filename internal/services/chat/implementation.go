package chat

import (
	"context"

	"github.com/deepgram/minichat/pkg/logger"
)

var _ Service = (*Implementation)(nil)

type Implementation struct {
	executor  *Executor
	augmenter Augmenter
}

func NewService(executor *Executor, augmenter Augmenter) *Implementation {
	return &Implementation{
		executor:  executor,
		augmenter: augmenter,
	}
}

func (s *Implementation) Executor() *Executor {
	return s.executor
}

// ProcessMessage optionally augments message with stored knowledge and runs a
// single exchange. A failed retrieval falls back to the plain message.
func (s *Implementation) ProcessMessage(ctx context.Context, message string, useMemory bool) (string, error) {
	prompt := s.prompt(ctx, message, useMemory)

	content, err := s.executor.Complete(ctx, prompt)
	if err != nil {
		logger.Error(logger.CHAT, "Failed to get chat completion: %v", err)
		return "", err
	}
	return content, nil
}

// RunMessage is ProcessMessage that writes the labelled answer to the
// executor's output.
func (s *Implementation) RunMessage(ctx context.Context, message string, useMemory bool) error {
	return s.executor.Run(ctx, s.prompt(ctx, message, useMemory))
}

func (s *Implementation) prompt(ctx context.Context, message string, useMemory bool) string {
	if !useMemory {
		return message
	}
	if s.augmenter == nil {
		logger.Warn(logger.CHAT, "Memory requested but no knowledge store is configured")
		return message
	}

	prompt, err := s.augmenter.Augment(ctx, message)
	if err != nil {
		logger.Warn(logger.CHAT, "Knowledge retrieval failed, sending message as-is: %v", err)
		return message
	}
	return prompt
}
