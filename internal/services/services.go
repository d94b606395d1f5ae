package services

import (
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/deepgram/minichat/internal/config"
	"github.com/deepgram/minichat/internal/infrastructure/openai"
	"github.com/deepgram/minichat/internal/infrastructure/redis"
	"github.com/deepgram/minichat/internal/services/chat"
	"github.com/deepgram/minichat/internal/services/knowledge"
	"github.com/rs/zerolog/log"
)

var (
	// Mutex for thread-safe initialization
	servicesMu sync.RWMutex
)

type Services struct {
	chatService      *chat.Implementation
	knowledgeService *knowledge.Service
	openAIService    *openai.Service
	redisService     *redis.Service
}

// InitializeServices builds every service from configuration. Answers
// written by the executor go to out.
func InitializeServices(ctx context.Context, out io.Writer) *Services {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	log.Debug().Msg("Initializing core services")

	httpClient := &http.Client{Timeout: config.GetOpenAITimeout()}
	apiKey := config.GetOpenAIKey()

	// Optional infrastructure
	redisService := redis.NewService(ctx)
	openAIService := openai.NewService(apiKey, httpClient)

	var embedder knowledge.Embedder
	if openAIService != nil {
		embedder = openAIService
	}
	knowledgeService := knowledge.NewService(ctx, redisService, config.GetKnowledgeKey(), config.GetKnowledgeFile(), embedder, config.GetKnowledgeTopK())

	executor := chat.NewExecutor(chat.ExecutorConfig{
		Endpoint:   config.GetOpenAIBaseURL() + "/chat/completions",
		Token:      apiKey,
		Model:      config.GetOpenAIModel(),
		HTTPClient: httpClient,
		Output:     out,
	})
	chatService := chat.NewService(executor, knowledgeService)

	log.Debug().
		Str("model", executor.Model()).
		Bool("knowledge_enabled", knowledgeService.Enabled()).
		Bool("redis", redisService != nil).
		Msg("All services initialized successfully")

	return &Services{
		chatService:      chatService,
		knowledgeService: knowledgeService,
		openAIService:    openAIService,
		redisService:     redisService,
	}
}

// NewServices assembles Services from already built parts
func NewServices(chatService *chat.Implementation, knowledgeService *knowledge.Service) *Services {
	return &Services{
		chatService:      chatService,
		knowledgeService: knowledgeService,
	}
}

// GetChatService returns the chat service
func (s *Services) GetChatService() *chat.Implementation {
	servicesMu.RLock()
	defer servicesMu.RUnlock()
	return s.chatService
}

// GetKnowledgeService returns the knowledge service
func (s *Services) GetKnowledgeService() *knowledge.Service {
	servicesMu.RLock()
	defer servicesMu.RUnlock()
	return s.knowledgeService
}

// Close releases the Redis connection, if any
func (s *Services) Close() error {
	if s.redisService == nil {
		return nil
	}
	return s.redisService.Close()
}
