package knowledge

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/deepgram/minichat/internal/infrastructure/redis"
	"github.com/deepgram/minichat/pkg/logger"
	"github.com/google/uuid"
)

const (
	augmentHeader    = "Use this knowledge to answer the question:\n\n"
	augmentSeparator = "\n---\n"
	augmentQuestion  = "\n\nQuestion: "
)

var (
	ErrEmptyFact   = errors.New("fact text is empty")
	ErrNoEmbedder  = errors.New("knowledge memory has no embedder configured")
	ErrDimMismatch = errors.New("embedding dimensions differ")
)

// Embedder turns text into a vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Service struct {
	embedder Embedder
	store    Store
	topK     int
	now      func() time.Time
}

// NewService prefers Redis when it is reachable, then the JSON file at path,
// and keeps facts in memory when neither is available. A nil embedder leaves
// the service usable for Augment, which then passes prompts through unchanged.
func NewService(ctx context.Context, redisService *redis.Service, key, path string, embedder Embedder, topK int) *Service {
	var store Store
	switch {
	case redisService != nil && redisService.Ping(ctx) == nil:
		logger.Info(logger.KNOWLEDGE, "Using Redis knowledge store at key %s", key)
		store = NewRedisStore(redisService, key)
	case path != "":
		logger.Info(logger.KNOWLEDGE, "Using knowledge file %s", path)
		store = NewFileStore(path)
	default:
		logger.Info(logger.KNOWLEDGE, "Using in-memory knowledge store")
		store = NewMemoryStore()
	}

	return NewServiceWithStore(store, embedder, topK)
}

func NewServiceWithStore(store Store, embedder Embedder, topK int) *Service {
	if topK <= 0 {
		topK = 3
	}
	return &Service{
		embedder: embedder,
		store:    store,
		topK:     topK,
		now:      time.Now,
	}
}

// Enabled reports whether facts can be added and searched
func (s *Service) Enabled() bool {
	return s != nil && s.embedder != nil
}

// Add embeds and stores a fact, returning its id
func (s *Service) Add(ctx context.Context, text string) (string, error) {
	if !s.Enabled() {
		return "", ErrNoEmbedder
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyFact
	}

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return "", fmt.Errorf("failed to embed fact: %w", err)
	}

	fact := Fact{
		ID:        uuid.New().String(),
		Text:      text,
		Embedding: embedding,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Add(ctx, fact); err != nil {
		return "", fmt.Errorf("failed to store fact: %w", err)
	}

	logger.Info(logger.KNOWLEDGE, "Stored fact %s (%d characters)", fact.ID, len(text))
	return fact.ID, nil
}

// List returns every stored fact, oldest first. It works without an embedder.
func (s *Service) List(ctx context.Context) ([]Fact, error) {
	if s == nil {
		return nil, nil
	}
	return s.store.All(ctx)
}

// Clear removes every stored fact
func (s *Service) Clear(ctx context.Context) error {
	if s == nil {
		return nil
	}
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear facts: %w", err)
	}
	logger.Info(logger.KNOWLEDGE, "Cleared knowledge store")
	return nil
}

type scored struct {
	text  string
	score float64
}

// Search returns up to k fact texts ordered by cosine similarity to query
func (s *Service) Search(ctx context.Context, query string, k int) ([]string, error) {
	if !s.Enabled() {
		return nil, ErrNoEmbedder
	}
	if k <= 0 {
		k = s.topK
	}

	facts, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load facts: %w", err)
	}
	if len(facts) == 0 {
		return nil, nil
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results := make([]scored, 0, len(facts))
	for _, fact := range facts {
		score, err := cosine(queryVec, fact.Embedding)
		if err != nil {
			logger.Warn(logger.KNOWLEDGE, "Skipping fact %s: %v", fact.ID, err)
			continue
		}
		results = append(results, scored{text: fact.Text, score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if len(results) > k {
		results = results[:k]
	}

	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.text
	}
	return texts, nil
}

// Augment prefixes input with the most relevant stored facts. The input is
// returned unchanged when nothing relevant is stored.
func (s *Service) Augment(ctx context.Context, input string) (string, error) {
	if !s.Enabled() {
		return input, nil
	}

	texts, err := s.Search(ctx, input, s.topK)
	if err != nil {
		return "", err
	}
	if len(texts) == 0 {
		return input, nil
	}

	logger.Debug(logger.KNOWLEDGE, "Augmenting prompt with %d facts", len(texts))
	return augmentHeader + strings.Join(texts, augmentSeparator) + augmentQuestion + input, nil
}

func cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
