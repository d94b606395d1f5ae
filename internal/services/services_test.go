package services

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deepgram/minichat/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeServicesFromEnvironment(t *testing.T) {
	var gotAuth, gotPath string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"configured"}}]}`))
	}))
	defer upstream.Close()

	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_BASE_URL", upstream.URL+"/v1")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("KNOWLEDGE_FILE", filepath.Join(t.TempDir(), "knowledge.json"))

	var out bytes.Buffer
	svcs := InitializeServices(context.Background(), &out)
	defer svcs.Close()

	require.NotNil(t, svcs.GetChatService())
	assert.True(t, svcs.GetKnowledgeService().Enabled())
	assert.Equal(t, "gpt-4o-mini", svcs.GetChatService().Executor().Model())

	require.NoError(t, svcs.GetChatService().RunMessage(context.Background(), "hi", false))
	assert.Equal(t, "AI says: configured\n", out.String())
	assert.Equal(t, "Bearer sk-env", gotAuth)
	assert.Equal(t, "/v1/chat/completions", gotPath)
}

func TestInitializeServicesPlaceholderKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("KNOWLEDGE_FILE", filepath.Join(t.TempDir(), "knowledge.json"))

	var logs bytes.Buffer
	logger.Setup(&logs, "WARN", false)
	t.Cleanup(func() { logger.Setup(os.Stderr, "INFO", true) })

	svcs := InitializeServices(context.Background(), nil)
	defer svcs.Close()

	assert.False(t, svcs.GetKnowledgeService().Enabled(), "embeddings need a real key")
	assert.NotNil(t, svcs.GetChatService())
	assert.Equal(t, 1, strings.Count(logs.String(), "OPENAI_API_KEY not set"), "key is read once")
}
