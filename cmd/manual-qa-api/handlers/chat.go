// Package handlers provides HTTP handlers for the manual QA API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wladywlady/t3-render/internal/observability"
	"github.com/wladywlady/t3-render/internal/qa"
)

// Answerer runs the retrieval-to-answer pipeline for one request.
type Answerer interface {
	Answer(ctx context.Context, req qa.Request) (*qa.Response, error)
}

// ChatHandler handles manual question requests.
type ChatHandler struct {
	logger   *observability.Logger
	pipeline Answerer
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(logger *observability.Logger, pipeline Answerer) *ChatHandler {
	return &ChatHandler{
		logger:   logger,
		pipeline: pipeline,
	}
}

// Chat handles POST /api/chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req qa.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Cuerpo de la solicitud inválido")
		return
	}

	resp, err := h.pipeline.Answer(ctx, req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError maps a pipeline failure onto the external response contract.
// This is the single place internal error kinds become HTTP statuses.
func (h *ChatHandler) respondError(w http.ResponseWriter, err error) {
	var qaErr *qa.Error
	if !errors.As(err, &qaErr) {
		h.logger.Error().Err(err).Msg("Unhandled pipeline error")
		h.writeError(w, http.StatusInternalServerError, qa.MsgInternal)
		return
	}

	switch qaErr.Kind {
	case qa.KindClientInput:
		if qaErr.Fields != nil {
			h.writeError(w, http.StatusBadRequest, qaErr.Fields)
			return
		}
		h.writeError(w, http.StatusBadRequest, qaErr.Message)
	case qa.KindNoContext:
		h.writeError(w, http.StatusNotFound, qaErr.Message)
	case qa.KindUpstream:
		h.writeError(w, http.StatusBadGateway, qaErr.Message)
	default:
		h.logger.Error().Err(qaErr).Msg("Unhandled pipeline error")
		h.writeError(w, http.StatusInternalServerError, qa.MsgInternal)
	}
}

func (h *ChatHandler) writeError(w http.ResponseWriter, status int, detail interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{"error": detail})
}
