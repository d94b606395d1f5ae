package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/deepgram/minichat/internal/services/chat/models"
	"github.com/deepgram/minichat/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

// OutputLabel prefixes every answer written by Run
const OutputLabel = "AI says: "

// DefaultEndpoint is the chat-completion URL used when none is configured
var DefaultEndpoint = openai.DefaultConfig("").BaseURL + "/chat/completions"

type ExecutorConfig struct {
	// Endpoint is the full chat-completion URL
	Endpoint string
	// Token is sent as the bearer credential
	Token string
	// Model defaults to gpt-4o-mini
	Model string
	// HTTPClient defaults to a client without a timeout
	HTTPClient *http.Client
	// Output receives the labelled answer, stdout by default
	Output io.Writer
}

// Executor performs one blocking request/response exchange per call
type Executor struct {
	endpoint string
	token    string
	model    string
	client   *http.Client
	out      io.Writer
}

func NewExecutor(cfg ExecutorConfig) *Executor {
	e := &Executor{
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		model:    cfg.Model,
		client:   cfg.HTTPClient,
		out:      cfg.Output,
	}
	if e.endpoint == "" {
		e.endpoint = DefaultEndpoint
	}
	if e.model == "" {
		e.model = openai.GPT4oMini
	}
	if e.client == nil {
		e.client = &http.Client{}
	}
	if e.out == nil {
		e.out = os.Stdout
	}
	return e
}

// Model returns the model name sent with every request
func (e *Executor) Model() string {
	return e.model
}

// Complete sends input as a single user message and returns
// choices[0].message.content from the response. The status code is not
// inspected: any body is parsed, and only its shape decides success.
func (e *Executor) Complete(ctx context.Context, input string) (string, error) {
	log := logger.For(logger.CHAT)

	body, err := models.NewChatRequest(e.model, input).Encode()
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.token)
	req.Header.Set("Content-Type", "application/json")

	log.Debug().
		Str("endpoint", e.endpoint).
		Str("model", e.model).
		Int("input_bytes", len(input)).
		Msg("Sending chat completion request")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: send request: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response body: %w", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn().
			Int("status", resp.StatusCode).
			Msg("Chat completion returned a non-2xx status, parsing body anyway")
	}

	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("%w: decode response (status %d): %w", ErrMalformedBody, resp.StatusCode, err)
	}

	content, err := extractContent(doc)
	if err != nil {
		return "", fmt.Errorf("%w (status %d)", err, resp.StatusCode)
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Int("content_bytes", len(content)).
		Msg("Chat completion received")

	return content, nil
}

// Run completes input and writes "AI says: <content>" as one line. Nothing is
// written when the exchange fails.
func (e *Executor) Run(ctx context.Context, input string) error {
	content, err := e.Complete(ctx, input)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(e.out, "%s%s\n", OutputLabel, content); err != nil {
		return fmt.Errorf("failed to write answer: %w", err)
	}
	return nil
}
