package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/deepgram/minichat/internal/config"
	"github.com/deepgram/minichat/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

var ErrNoEmbedding = errors.New("no embedding returned")

// Service wraps the go-openai client used for embeddings. Chat completions
// go through the chat executor so that the wire body stays exact.
type Service struct {
	mu             sync.RWMutex
	client         *openai.Client
	embeddingModel openai.EmbeddingModel
}

// NewService returns nil when key is empty or the placeholder, which leaves
// the knowledge memory disabled.
func NewService(key string, httpClient *http.Client) *Service {
	logger.Info(logger.SERVICE, "Initialising OpenAI service")

	if key == "" || key == config.PlaceholderAPIKey {
		logger.Warn(logger.SERVICE, "OpenAI embeddings not configured - OPENAI_API_KEY missing")
		return nil
	}

	cfg := openai.DefaultConfig(key)
	cfg.BaseURL = config.GetOpenAIBaseURL()
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}

	return &Service{
		client:         openai.NewClientWithConfig(cfg),
		embeddingModel: openai.EmbeddingModel(config.GetEmbeddingModel()),
	}
}

// Embed returns the embedding vector for a single text
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	s.mu.RLock()
	client, model := s.client, s.embeddingModel
	s.mu.RUnlock()

	resp, err := client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, ErrNoEmbedding
	}

	logger.Debug(logger.SERVICE, "Embedded %d characters into %d dimensions", len(text), len(resp.Data[0].Embedding))
	return resp.Data[0].Embedding, nil
}
