package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAugmenter struct {
	mock.Mock
}

func (m *MockAugmenter) Augment(ctx context.Context, input string) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func sentContent(t *testing.T, captured *capturedRequest) string {
	t.Helper()
	var body struct {
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(captured.body, &body))
	require.Len(t, body.Messages, 1)
	return body.Messages[0].Content
}

func TestProcessMessage(t *testing.T) {
	tests := []struct {
		name       string
		useMemory  bool
		setupMocks func(*MockAugmenter)
		wantSent   string
	}{
		{
			name:       "Memory disabled sends message as-is",
			useMemory:  false,
			setupMocks: func(m *MockAugmenter) {},
			wantSent:   "hello",
		},
		{
			name:      "Memory enabled sends augmented prompt",
			useMemory: true,
			setupMocks: func(m *MockAugmenter) {
				m.On("Augment", mock.Anything, "hello").Return("context\n\nQuestion: hello", nil)
			},
			wantSent: "context\n\nQuestion: hello",
		},
		{
			name:      "Retrieval failure falls back to message",
			useMemory: true,
			setupMocks: func(m *MockAugmenter) {
				m.On("Augment", mock.Anything, "hello").Return("", errors.New("redis down"))
			},
			wantSent: "hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, captured := newUpstream(t, http.StatusOK, `{"choices":[{"message":{"content":"Hi!"}}]}`)
			augmenter := &MockAugmenter{}
			tt.setupMocks(augmenter)

			svc := NewService(newTestExecutor(server, nil), augmenter)
			answer, err := svc.ProcessMessage(context.Background(), "hello", tt.useMemory)

			require.NoError(t, err)
			assert.Equal(t, "Hi!", answer)
			assert.Equal(t, tt.wantSent, sentContent(t, captured))
			augmenter.AssertExpectations(t)
		})
	}
}

func TestProcessMessageWithoutAugmenter(t *testing.T) {
	server, captured := newUpstream(t, http.StatusOK, `{"choices":[{"message":{"content":"Hi!"}}]}`)

	svc := NewService(newTestExecutor(server, nil), nil)
	_, err := svc.ProcessMessage(context.Background(), "hello", true)

	require.NoError(t, err)
	assert.Equal(t, "hello", sentContent(t, captured))
}

func TestProcessMessageUpstreamFailure(t *testing.T) {
	server, _ := newUpstream(t, http.StatusOK, `{"choices":[]}`)

	svc := NewService(newTestExecutor(server, nil), nil)
	_, err := svc.ProcessMessage(context.Background(), "hello", false)

	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestRunMessage(t *testing.T) {
	server, _ := newUpstream(t, http.StatusOK, `{"choices":[{"message":{"content":"Hello!"}}]}`)

	var out bytes.Buffer
	svc := NewService(newTestExecutor(server, &out), nil)
	require.NoError(t, svc.RunMessage(context.Background(), "hi", false))

	assert.Equal(t, "AI says: Hello!\n", out.String())
}
