package gateway

import (
	"crypto/subtle"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/minebridge/minebridge/internal/bridge"
	"github.com/minebridge/minebridge/internal/message"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler accepts websocket connections from server-side companion mods
// and registers them as live channels.
type Handler struct {
	registry  *Registry
	token     string
	onEvent   func(message.ChatEvent)
	onConnect func(channelKey, serverName string)
	log       *zap.Logger
}

func NewHandler(registry *Registry, token string, onEvent func(message.ChatEvent), onConnect func(channelKey, serverName string), log *zap.Logger) *Handler {
	return &Handler{
		registry:  registry,
		token:     token,
		onEvent:   onEvent,
		onConnect: onConnect,
		log:       log,
	}
}

// Handle upgrades the request and pumps frames until the server drops.
// The mod identifies itself with X-Server-Name and X-Access-Token
// headers (query params accepted for clients that cannot set headers).
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	serverName := headerOrQuery(r, "X-Server-Name", "server_name")
	if serverName == "" {
		http.Error(w, "server name required", http.StatusBadRequest)
		return
	}

	token := headerOrQuery(r, "X-Access-Token", "access_token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.token)) != 1 {
		h.log.Warn("gateway connection rejected: bad token",
			zap.String("server_name", serverName),
			zap.String("remote", r.RemoteAddr))
		http.Error(w, "invalid access token", http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	key := bridge.ChannelKey(serverName)
	conn := newConn(key, serverName, ws, h.onEvent, h.log)
	if replaced := h.registry.add(conn); replaced != nil {
		h.log.Warn("replacing existing server connection",
			zap.String("channel_key", key))
		replaced.close()
	}
	if h.onConnect != nil {
		h.onConnect(key, serverName)
	}
	h.log.Info("server connected",
		zap.String("channel_key", key),
		zap.String("remote", r.RemoteAddr))

	go func() {
		conn.readLoop()
		h.registry.remove(conn)
		h.log.Info("server disconnected", zap.String("channel_key", key))
	}()
}

func headerOrQuery(r *http.Request, header, query string) string {
	if v := r.Header.Get(header); v != "" {
		return v
	}
	return r.URL.Query().Get(query)
}
