package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/deepgram/minichat/internal/services/knowledge"
	"github.com/deepgram/minichat/pkg/httpext"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Request struct {
	Fact string `json:"fact" validate:"required"`
}

type Response struct {
	ID string `json:"id"`
}

// Adder is the part of the knowledge service used by this handler
type Adder interface {
	Enabled() bool
	Add(ctx context.Context, text string) (string, error)
}

// HandleAddFact handles POST /knowledge
func HandleAddFact(knowledgeService Adder, w http.ResponseWriter, r *http.Request) {
	log := zerolog.Ctx(r.Context())

	if knowledgeService == nil || !knowledgeService.Enabled() {
		httpext.JsonErrorWithDetails(w, http.StatusServiceUnavailable, httpext.ErrorResponse{
			Error:            "Knowledge memory unavailable",
			ErrorDescription: "Set OPENAI_API_KEY to enable embeddings",
		})
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		log.Warn().Err(err).Msg("Request validation failed")
		httpext.JsonError(w, "Invalid request: fact is required", http.StatusBadRequest)
		return
	}

	id, err := knowledgeService.Add(r.Context(), req.Fact)
	switch {
	case errors.Is(err, knowledge.ErrEmptyFact):
		httpext.JsonError(w, "Invalid request: fact is required", http.StatusBadRequest)
		return
	case err != nil:
		log.Error().Err(err).Msg("Failed to store fact")
		httpext.JsonError(w, "Failed to store fact", http.StatusBadGateway)
		return
	}

	log.Info().Str("fact_id", id).Msg("Stored knowledge fact")
	httpext.JsonResponse(w, http.StatusCreated, Response{ID: id})
}
