package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minebridge/minebridge/internal/channel"
)

// ChannelLister reports which channels currently have a live connection.
type ChannelLister interface {
	Keys() []string
}

type ChannelHandler struct {
	store *channel.Store
	live  ChannelLister
}

func NewChannelHandler(store *channel.Store, live ChannelLister) *ChannelHandler {
	return &ChannelHandler{store: store, live: live}
}

type channelView struct {
	channel.Channel
	Online bool `json:"online"`
}

func (h *ChannelHandler) List(w http.ResponseWriter, r *http.Request) {
	channels, err := h.store.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query channels")
		return
	}

	online := map[string]bool{}
	for _, key := range h.live.Keys() {
		online[key] = true
	}

	views := make([]channelView, 0, len(channels))
	for _, ch := range channels {
		views = append(views, channelView{Channel: ch, Online: online[ch.Key]})
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *ChannelHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	ch, err := h.store.Get(key)
	if err != nil {
		writeError(w, http.StatusNotFound, "channel not found")
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

func (h *ChannelHandler) Update(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req struct {
		PresetName string `json:"preset_name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PresetName == "" {
		writeError(w, http.StatusBadRequest, "preset_name required")
		return
	}

	if err := h.store.SetPreset(key, req.PresetName); err != nil {
		if errors.Is(err, channel.ErrNotFound) {
			writeError(w, http.StatusNotFound, "channel not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update channel")
		return
	}

	ch, err := h.store.Get(key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reload channel")
		return
	}
	writeJSON(w, http.StatusOK, ch)
}
