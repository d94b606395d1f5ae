package models

import (
	"bytes"
	"encoding/json"

	"github.com/sashabaranov/go-openai"
)

// Message is a single chat message in the upstream wire format
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body posted to the chat-completion endpoint
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// NewChatRequest wraps input as the single user message of a request
func NewChatRequest(model, input string) ChatRequest {
	return ChatRequest{
		Model: model,
		Messages: []Message{{
			Role:    openai.ChatMessageRoleUser,
			Content: input,
		}},
	}
}

// Encode serialises the request without HTML escaping so the content
// reaches the upstream byte-for-byte.
func (r ChatRequest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
