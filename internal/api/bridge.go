package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minebridge/minebridge/internal/bridge"
	"github.com/minebridge/minebridge/internal/rcon"
	"github.com/minebridge/minebridge/internal/styled"
)

// Bridge is the operation surface the handlers expose over HTTP.
type Bridge interface {
	SendRichText(ctx context.Context, channelKey, descriptorJSON string) error
	ExecuteRconCommands(ctx context.Context, channelKey string, commands []string, continueOnError bool) (string, error)
}

type BridgeHandler struct {
	bridge Bridge
}

func NewBridgeHandler(b Bridge) *BridgeHandler {
	return &BridgeHandler{bridge: b}
}

// RichText sends styled chat into the channel's server. Validation
// failures map to 400, a missing connection to 502, anything else to a
// wrapped 500.
func (h *BridgeHandler) RichText(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req struct {
		// Segments is the agent-built JSON list of styled segments,
		// passed through as a string.
		Segments string `json:"segments"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.bridge.SendRichText(r.Context(), key, req.Segments)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
	case errors.Is(err, bridge.ErrInvalidChannelKey),
		errors.Is(err, styled.ErrInvalidInput),
		errors.Is(err, styled.ErrEmptyResult):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, bridge.ErrConnectionUnavailable):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// Rcon executes a command batch. Per-command failures never surface as
// HTTP errors - the report string carries them, in original order.
func (h *BridgeHandler) Rcon(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req struct {
		Commands        []string `json:"commands"`
		ContinueOnError bool     `json:"continue_on_error"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.bridge.ExecuteRconCommands(r.Context(), key, req.Commands, req.ContinueOnError)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"report": report})
	case errors.Is(err, bridge.ErrInvalidChannelKey), errors.Is(err, rcon.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
