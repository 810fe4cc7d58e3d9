package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/minebridge/minebridge/internal/message"
	"github.com/minebridge/minebridge/internal/styled"
)

// ErrConnClosed is returned for calls pending when the server link drops.
var ErrConnClosed = errors.New("server connection closed")

// frame is the single JSON shape exchanged with the companion mod. A
// frame with a non-empty echo is a response to one of our api requests;
// a frame with post_type "message" is an inbound chat event.
type frame struct {
	// Inbound events
	PostType   string      `json:"post_type,omitempty"`
	ServerName string      `json:"server_name,omitempty"`
	Player     *playerInfo `json:"player,omitempty"`
	Message    string      `json:"message,omitempty"`
	MessageID  string      `json:"message_id,omitempty"`
	Timestamp  int64       `json:"timestamp,omitempty"`

	// API responses
	Echo   string          `json:"echo,omitempty"`
	Status string          `json:"status,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

type playerInfo struct {
	UUID     string `json:"uuid"`
	Nickname string `json:"nickname"`
}

type apiRequest struct {
	API  string `json:"api"`
	Data any    `json:"data"`
	Echo string `json:"echo"`
}

type rconResult struct {
	Result string `json:"result"`
}

// Conn is one live websocket link to a server's companion mod. Writes
// are serialized by writeMu; responses are matched to in-flight requests
// by echo id. One Conn serializes frames, not batches - callers running
// concurrent batches over the same Conn interleave at the command level.
type Conn struct {
	key        string
	serverName string
	ws         *websocket.Conn
	log        *zap.Logger
	onEvent    func(message.ChatEvent)

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan frame
	closed  bool
}

func newConn(key, serverName string, ws *websocket.Conn, onEvent func(message.ChatEvent), log *zap.Logger) *Conn {
	return &Conn{
		key:        key,
		serverName: serverName,
		ws:         ws,
		log:        log,
		onEvent:    onEvent,
		pending:    make(map[string]chan frame),
	}
}

// SendRconCommand sends one command and waits for the mod's response.
// There is no timeout at this layer; callers needing bounded latency
// pass a deadline on ctx.
func (c *Conn) SendRconCommand(ctx context.Context, command string) (string, error) {
	resp, err := c.call(ctx, "send_rcon_cmd", map[string]string{"command": command})
	if err != nil {
		return "", err
	}
	var result rconResult
	if len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, &result); err != nil {
			return "", fmt.Errorf("malformed rcon response: %w", err)
		}
	}
	return result.Result, nil
}

// SendStyledMessage wraps components in a single root text element with
// an extra list, the encoding the mod's tellraw path expects.
func (c *Conn) SendStyledMessage(ctx context.Context, components []styled.Component) error {
	root := styled.Component{Text: "", Extra: components}
	_, err := c.call(ctx, "send_msg", map[string]any{"message": root})
	return err
}

func (c *Conn) call(ctx context.Context, api string, data any) (frame, error) {
	echo := uuid.NewString()
	ch := make(chan frame, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return frame{}, ErrConnClosed
	}
	c.pending[echo] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, echo)
		c.mu.Unlock()
	}()

	c.writeMu.Lock()
	err := c.ws.WriteJSON(apiRequest{API: api, Data: data, Echo: echo})
	c.writeMu.Unlock()
	if err != nil {
		return frame{}, fmt.Errorf("write %s frame: %w", api, err)
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return frame{}, ErrConnClosed
		}
		if resp.Status != "" && resp.Status != "ok" {
			return frame{}, fmt.Errorf("%s rejected by server: %s", api, string(resp.Data))
		}
		return resp, nil
	case <-ctx.Done():
		return frame{}, ctx.Err()
	}
}

// readLoop pumps frames until the link drops, dispatching api responses
// to their waiters and chat events to the bridge. It owns the only
// reader on the websocket.
func (c *Conn) readLoop() {
	defer c.close()
	for {
		var f frame
		if err := c.ws.ReadJSON(&f); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Warn("server link read error",
					zap.String("channel_key", c.key),
					zap.Error(err))
			}
			return
		}

		if f.Echo != "" {
			// Claim the pending entry under the lock so close() can
			// never close a channel this send is about to use.
			c.mu.Lock()
			ch, ok := c.pending[f.Echo]
			if ok {
				delete(c.pending, f.Echo)
			}
			c.mu.Unlock()
			if ok {
				ch <- f
			}
			continue
		}

		if f.PostType == "message" && f.Player != nil {
			serverName := f.ServerName
			if serverName == "" {
				serverName = c.serverName
			}
			c.onEvent(message.ChatEvent{
				ServerName: serverName,
				PlayerUUID: f.Player.UUID,
				PlayerName: f.Player.Nickname,
				Content:    f.Message,
				MessageID:  f.MessageID,
				Timestamp:  f.Timestamp,
			})
		}
	}
}

// close fails every pending call and releases the socket. Safe to call
// more than once.
func (c *Conn) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	pending := c.pending
	c.pending = make(map[string]chan frame)
	c.mu.Unlock()

	for _, ch := range pending {
		close(ch)
	}
	c.ws.Close()
}
