package chat

import (
	"context"
)

// Service defines the interface for answering a single message
type Service interface {
	// ProcessMessage sends one message upstream and returns the answer text
	ProcessMessage(ctx context.Context, message string, useMemory bool) (string, error)
}

// Augmenter rewrites a prompt with retrieved context before it is sent
type Augmenter interface {
	Augment(ctx context.Context, input string) (string, error)
}
