package sink

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/minebridge/minebridge/internal/message"
)

// Webhook delivers normalized messages to the orchestrator's HTTP
// endpoint. The hand-off is at-most-once and non-blocking: delivery runs
// on its own goroutine and failures are logged and dropped. Callers that
// need stronger guarantees need a different sink.
type Webhook struct {
	url    string
	client *http.Client
	log    *zap.Logger
}

type payload struct {
	ChannelKey string `json:"channel_key"`
	message.Normalized
}

func NewWebhook(url string, log *zap.Logger) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

// Push hands one message off for delivery and returns immediately. With
// no sink URL configured messages are dropped silently, which keeps the
// bridge usable for command execution alone.
func (w *Webhook) Push(channelKey string, msg message.Normalized) {
	if w.url == "" {
		return
	}
	go w.deliver(channelKey, msg)
}

func (w *Webhook) deliver(channelKey string, msg message.Normalized) {
	body, err := json.Marshal(payload{ChannelKey: channelKey, Normalized: msg})
	if err != nil {
		w.log.Error("sink payload marshal failed",
			zap.String("channel_key", channelKey),
			zap.Error(err))
		return
	}

	resp, err := w.client.Post(w.url, "application/json", bytes.NewReader(body))
	if err != nil {
		w.log.Warn("sink delivery failed, message dropped",
			zap.String("channel_key", channelKey),
			zap.String("message_id", msg.Message.MessageID),
			zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		w.log.Warn("sink rejected message, dropped",
			zap.String("channel_key", channelKey),
			zap.String("message_id", msg.Message.MessageID),
			zap.Int("status", resp.StatusCode))
	}
}
