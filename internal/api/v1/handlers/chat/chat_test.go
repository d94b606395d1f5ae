package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deepgram/minichat/internal/services/chat"
	"github.com/deepgram/minichat/pkg/httpext"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockChatService mocks the chat service
type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) ProcessMessage(ctx context.Context, message string, useMemory bool) (string, error) {
	args := m.Called(ctx, message, useMemory)
	return args.String(0), args.Error(1)
}

func TestHandleChat(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    string
		expectedStatus int
		setupMocks     func(*MockChatService)
		expectedAnswer string
	}{
		{
			name:           "Valid request with successful response",
			requestBody:    `{"message":"Hello!"}`,
			expectedStatus: http.StatusOK,
			setupMocks: func(m *MockChatService) {
				m.On("ProcessMessage", mock.Anything, "Hello!", false).Return("Hi there", nil)
			},
			expectedAnswer: "Hi there",
		},
		{
			name:           "Empty message is passed through",
			requestBody:    `{"message":""}`,
			expectedStatus: http.StatusOK,
			setupMocks: func(m *MockChatService) {
				m.On("ProcessMessage", mock.Anything, "", false).Return("You said nothing", nil)
			},
			expectedAnswer: "You said nothing",
		},
		{
			name:           "Memory flag is forwarded",
			requestBody:    `{"message":"What is Go?","use_memory":true}`,
			expectedStatus: http.StatusOK,
			setupMocks: func(m *MockChatService) {
				m.On("ProcessMessage", mock.Anything, "What is Go?", true).Return("A language", nil)
			},
			expectedAnswer: "A language",
		},
		{
			name:           "Invalid request - missing message",
			requestBody:    `{"use_memory":true}`,
			expectedStatus: http.StatusBadRequest,
			setupMocks:     func(m *MockChatService) {},
		},
		{
			name:           "Invalid request - malformed JSON",
			requestBody:    "invalid json",
			expectedStatus: http.StatusBadRequest,
			setupMocks:     func(m *MockChatService) {},
		},
		{
			name:           "Upstream shape mismatch",
			requestBody:    `{"message":"Hello!"}`,
			expectedStatus: http.StatusBadGateway,
			setupMocks: func(m *MockChatService) {
				m.On("ProcessMessage", mock.Anything, "Hello!", false).
					Return("", fmt.Errorf("%w: choices[0] is out of range", chat.ErrShapeMismatch))
			},
		},
		{
			name:           "Unexpected failure",
			requestBody:    `{"message":"Hello!"}`,
			expectedStatus: http.StatusInternalServerError,
			setupMocks: func(m *MockChatService) {
				m.On("ProcessMessage", mock.Anything, "Hello!", false).Return("", errors.New("boom"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chatService := &MockChatService{}
			tt.setupMocks(chatService)

			req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(tt.requestBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			HandleChat(chatService, w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			chatService.AssertExpectations(t)

			if tt.expectedStatus == http.StatusOK {
				var response Response
				require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
				assert.Equal(t, tt.expectedAnswer, response.Response)
				_, err := uuid.Parse(response.ID)
				assert.NoError(t, err)
			} else {
				var response httpext.ErrorResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
				assert.NotEmpty(t, response.Error)
			}
		})
	}
}

func TestParseMessage(t *testing.T) {
	t.Run("bare text", func(t *testing.T) {
		req, err := ParseMessage([]byte("hello there"))
		require.NoError(t, err)
		assert.Equal(t, "hello there", *req.Message)
		assert.False(t, req.UseMemory)
	})

	t.Run("empty frame", func(t *testing.T) {
		req, err := ParseMessage([]byte(""))
		require.NoError(t, err)
		assert.Equal(t, "", *req.Message)
	})

	t.Run("json object", func(t *testing.T) {
		req, err := ParseMessage([]byte(` {"message":"hi","use_memory":true}`))
		require.NoError(t, err)
		assert.Equal(t, "hi", *req.Message)
		assert.True(t, req.UseMemory)
	})

	t.Run("json without message", func(t *testing.T) {
		_, err := ParseMessage([]byte(`{"use_memory":true}`))
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("broken json", func(t *testing.T) {
		_, err := ParseMessage([]byte(`{"message":`))
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadGateway, StatusFor(fmt.Errorf("%w: refused", chat.ErrTransport)))
	assert.Equal(t, http.StatusBadGateway, StatusFor(fmt.Errorf("%w: eof", chat.ErrMalformedBody)))
	assert.Equal(t, http.StatusBadGateway, StatusFor(chat.ErrShapeMismatch))
	assert.Equal(t, http.StatusGatewayTimeout, StatusFor(fmt.Errorf("%w: %w", chat.ErrTransport, context.DeadlineExceeded)))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("other")))
}
