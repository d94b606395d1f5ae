package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/deepgram/minichat/internal/services/chat"
	"github.com/deepgram/minichat/pkg/httpext"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidFormat  = errors.New("invalid request format")
	ErrInvalidRequest = errors.New("invalid request")
)

// use a single instance of Validate, it caches struct info
var validate = validator.New(validator.WithRequiredStructEnabled())

// Request is the body accepted by POST /chat and by websocket frames.
// Message is a pointer so that a missing field is rejected while an empty
// string is passed through.
type Request struct {
	Message   *string `json:"message" validate:"required"`
	UseMemory bool    `json:"use_memory"`
}

type Response struct {
	ID       string `json:"id"`
	Response string `json:"response"`
}

// ParseMessage accepts a JSON Request object, or treats the whole payload as
// the message text.
func ParseMessage(data []byte) (Request, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		message := string(data)
		return Request{Message: &message}, nil
	}
	return decodeRequest(trimmed)
}

func decodeRequest(data []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	if err := validate.Struct(req); err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return req, nil
}

// Answer runs one exchange for req. On failure it also returns the HTTP
// status that best describes the error.
func Answer(ctx context.Context, chatService chat.Service, req Request) (Response, int, error) {
	content, err := chatService.ProcessMessage(ctx, *req.Message, req.UseMemory)
	if err != nil {
		return Response{}, StatusFor(err), err
	}

	return Response{
		ID:       uuid.New().String(),
		Response: content,
	}, http.StatusOK, nil
}

// StatusFor maps an executor error onto an HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, chat.ErrTransport),
		errors.Is(err, chat.ErrMalformedBody),
		errors.Is(err, chat.ErrShapeMismatch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HandleChat handles POST /chat
func HandleChat(chatService chat.Service, w http.ResponseWriter, r *http.Request) {
	log := zerolog.Ctx(r.Context())

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r.Body); err != nil {
		log.Warn().Err(err).Msg("Failed to read request body")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	req, err := decodeRequest(buf.Bytes())
	switch {
	case errors.Is(err, ErrInvalidFormat):
		log.Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	case err != nil:
		log.Warn().Err(err).Msg("Request validation failed")
		httpext.JsonError(w, "Invalid request: message is required", http.StatusBadRequest)
		return
	}

	// trace level log of the JSON request body
	if log.Trace().Enabled() {
		log.Trace().RawJSON("request_body", buf.Bytes()).Msg("Incoming chat request")
	}

	log.Info().
		Int("message_bytes", len(*req.Message)).
		Bool("use_memory", req.UseMemory).
		Str("client_ip", r.RemoteAddr).
		Msg("Received chat request")

	resp, status, err := Answer(r.Context(), chatService, req)
	if err != nil {
		log.Error().Err(err).Int("status", status).Msg("Failed to process chat")
		httpext.JsonError(w, "Failed to process chat", status)
		return
	}

	httpext.JsonResponse(w, http.StatusOK, resp)
}
