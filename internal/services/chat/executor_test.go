package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	method      string
	path        string
	auth        string
	contentType string
	body        []byte
}

func newUpstream(t *testing.T, status int, response string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		captured.method = r.Method
		captured.path = r.URL.Path
		captured.auth = r.Header.Get("Authorization")
		captured.contentType = r.Header.Get("Content-Type")
		captured.body = body

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)

	return server, captured
}

func newTestExecutor(server *httptest.Server, out io.Writer) *Executor {
	return NewExecutor(ExecutorConfig{
		Endpoint:   server.URL + "/v1/chat/completions",
		Token:      "sk-test",
		HTTPClient: server.Client(),
		Output:     out,
	})
}

func TestRunHappyPath(t *testing.T) {
	server, captured := newUpstream(t, http.StatusOK, `{"choices":[{"message":{"content":"Hello!"}}]}`)

	var out bytes.Buffer
	err := newTestExecutor(server, &out).Run(context.Background(), "Hi there")
	require.NoError(t, err)

	assert.Equal(t, "AI says: Hello!\n", out.String())
	assert.Equal(t, http.MethodPost, captured.method)
	assert.Equal(t, "/v1/chat/completions", captured.path)
	assert.Equal(t, "Bearer sk-test", captured.auth)
	assert.Equal(t, "application/json", captured.contentType)
	assert.JSONEq(t, `{"model":"gpt-4o-mini","messages":[{"role":"user","content":"Hi there"}]}`, string(captured.body))
}

func TestRunRequestShape(t *testing.T) {
	inputs := []string{
		"",
		"What is Go?",
		`she said "hi" \o/`,
		"<html> & friends",
		"emoji 🚀 and ümlauts",
		"multi\nline",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			server, captured := newUpstream(t, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`)

			err := newTestExecutor(server, io.Discard).Run(context.Background(), input)
			require.NoError(t, err)

			var body struct {
				Model    string `json:"model"`
				Messages []struct {
					Role    string `json:"role"`
					Content string `json:"content"`
				} `json:"messages"`
			}
			require.NoError(t, json.Unmarshal(captured.body, &body))

			assert.Equal(t, "gpt-4o-mini", body.Model)
			require.Len(t, body.Messages, 1)
			assert.Equal(t, "user", body.Messages[0].Role)
			assert.Equal(t, input, body.Messages[0].Content)
		})
	}
}

func TestRunEmptyInputPassesThrough(t *testing.T) {
	server, captured := newUpstream(t, http.StatusOK, `{"choices":[{"message":{"content":"You said nothing"}}]}`)

	var out bytes.Buffer
	require.NoError(t, newTestExecutor(server, &out).Run(context.Background(), ""))

	assert.Contains(t, string(captured.body), `"content":""`)
	assert.Equal(t, "AI says: You said nothing\n", out.String())
}

func TestRunFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		response string
		wantErr  error
	}{
		{"empty choices", http.StatusOK, `{"choices":[]}`, ErrShapeMismatch},
		{"missing choices", http.StatusOK, `{"id":"x"}`, ErrShapeMismatch},
		{"choices not an array", http.StatusOK, `{"choices":{"0":{}}}`, ErrShapeMismatch},
		{"missing message", http.StatusOK, `{"choices":[{}]}`, ErrShapeMismatch},
		{"missing content", http.StatusOK, `{"choices":[{"message":{"role":"assistant"}}]}`, ErrShapeMismatch},
		{"numeric content", http.StatusOK, `{"choices":[{"message":{"content":42}}]}`, ErrShapeMismatch},
		{"null content", http.StatusOK, `{"choices":[{"message":{"content":null}}]}`, ErrShapeMismatch},
		{"body is an array", http.StatusOK, `[1,2,3]`, ErrShapeMismatch},
		{"malformed JSON", http.StatusOK, `{"choices":[`, ErrMalformedBody},
		{"empty body", http.StatusOK, ``, ErrMalformedBody},
		{"html error page", http.StatusBadGateway, `<html>bad gateway</html>`, ErrMalformedBody},
		{"api error object", http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided"}}`, ErrShapeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newUpstream(t, tt.status, tt.response)

			var out bytes.Buffer
			err := newTestExecutor(server, &out).Run(context.Background(), "hello")

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, out.String(), "nothing is written on failure")
		})
	}
}

func TestRunNonStringContentMessage(t *testing.T) {
	server, _ := newUpstream(t, http.StatusOK, `{"choices":[{"message":{"content":42}}]}`)

	_, err := newTestExecutor(server, io.Discard).Complete(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "choices[0].message.content is a number, not a string")
}

func TestRunEmptyChoicesMessage(t *testing.T) {
	server, _ := newUpstream(t, http.StatusOK, `{"choices":[]}`)

	_, err := newTestExecutor(server, io.Discard).Complete(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "choices[0] is out of range (length 0)")
}

func TestRunNon2xxWithValidShape(t *testing.T) {
	server, _ := newUpstream(t, http.StatusInternalServerError, `{"choices":[{"message":{"content":"still parsed"}}]}`)

	var out bytes.Buffer
	require.NoError(t, newTestExecutor(server, &out).Run(context.Background(), "hello"))
	assert.Equal(t, "AI says: still parsed\n", out.String())
}

func TestRunConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	var out bytes.Buffer
	executor := NewExecutor(ExecutorConfig{
		Endpoint: url + "/v1/chat/completions",
		Token:    "sk-test",
		Output:   &out,
	})

	err := executor.Run(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Empty(t, out.String())
}

func TestRunCancelledContext(t *testing.T) {
	server, _ := newUpstream(t, http.StatusOK, `{"choices":[{"message":{"content":"late"}}]}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newTestExecutor(server, io.Discard).Run(ctx, "hello")
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewExecutorDefaults(t *testing.T) {
	executor := NewExecutor(ExecutorConfig{Token: "sk-test"})

	assert.Equal(t, "https://api.openai.com/v1/chat/completions", executor.endpoint)
	assert.Equal(t, "gpt-4o-mini", executor.Model())
	assert.Zero(t, executor.client.Timeout)
}

func TestRunCustomModel(t *testing.T) {
	server, captured := newUpstream(t, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`)

	executor := NewExecutor(ExecutorConfig{
		Endpoint:   server.URL,
		Token:      "sk-test",
		Model:      "gpt-4o",
		HTTPClient: server.Client(),
		Output:     io.Discard,
	})
	require.NoError(t, executor.Run(context.Background(), "hello"))
	assert.Contains(t, string(captured.body), `"model":"gpt-4o"`)
}
