package bridge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/minebridge/minebridge/internal/message"
	"github.com/minebridge/minebridge/internal/rcon"
	"github.com/minebridge/minebridge/internal/styled"
)

// ChannelKeyPrefix is the mandatory prefix of every channel key handled
// by this adapter: "minecraft-<servername>".
const ChannelKeyPrefix = "minecraft-"

var (
	ErrInvalidChannelKey     = errors.New("channel key must have the form 'minecraft-<servername>'")
	ErrConnectionUnavailable = errors.New("no live connection for channel")
)

// Connection is one live server link, able to carry both styled chat
// output and RCON commands.
type Connection interface {
	rcon.Connection
	SendStyledMessage(ctx context.Context, components []styled.Component) error
}

// ConnectionProvider resolves a channel key to a live connection, if any.
// Injected rather than looked up through ambient globals so the core is
// testable without a gateway.
type ConnectionProvider interface {
	Connection(channelKey string) (Connection, bool)
}

// MessageSink receives normalized messages. Delivery is at-most-once and
// non-blocking; loss on sink failure is accepted.
type MessageSink interface {
	Push(channelKey string, msg message.Normalized)
}

// PresetLookup returns the speaker label prefixed to outgoing messages.
type PresetLookup interface {
	PresetName(channelKey string) string
}

// Service is the operation surface exposed to the orchestrator.
type Service struct {
	provider ConnectionProvider
	sink     MessageSink
	presets  PresetLookup
	composer *styled.Composer
	executor *rcon.Executor
	log      *zap.Logger
}

func NewService(provider ConnectionProvider, sink MessageSink, presets PresetLookup, log *zap.Logger) *Service {
	return &Service{
		provider: provider,
		sink:     sink,
		presets:  presets,
		composer: styled.NewComposer(log),
		executor: rcon.NewExecutor(log),
		log:      log,
	}
}

// ChannelKey builds the channel key for a server name.
func ChannelKey(serverName string) string {
	return ChannelKeyPrefix + serverName
}

// ServerName extracts the server name from a channel key, reporting
// whether the key is well-formed.
func ServerName(channelKey string) (string, bool) {
	name, ok := strings.CutPrefix(channelKey, ChannelKeyPrefix)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// HandleChatEvent normalizes an inbound chat event and hands it to the
// message sink. Fire-and-forget: normalization never fails and sink
// delivery is the sink's problem.
func (s *Service) HandleChatEvent(event message.ChatEvent) {
	normalized := message.Normalize(event)
	key := ChannelKey(event.ServerName)
	s.log.Info("chat message received",
		zap.String("channel_key", key),
		zap.String("sender_id", normalized.Sender.UserID),
		zap.String("content", normalized.Message.PlainText))
	s.sink.Push(key, normalized)
}

// SendRichText validates descriptorJSON, prefixes the speaker label, and
// sends the styled components over the channel's live connection. The
// plain-text projection is pushed to the sink first so the conversation
// history records what the bot said.
func (s *Service) SendRichText(ctx context.Context, channelKey, descriptorJSON string) error {
	serverName, ok := ServerName(channelKey)
	if !ok {
		return ErrInvalidChannelKey
	}
	if strings.TrimSpace(descriptorJSON) == "" {
		return styled.ErrInvalidInput
	}

	conn, ok := s.provider.Connection(channelKey)
	if !ok {
		return fmt.Errorf("%w: %s", ErrConnectionUnavailable, channelKey)
	}

	components, err := s.composer.Compose(descriptorJSON)
	if err != nil {
		return err
	}

	presetName := s.presets.PresetName(channelKey)
	s.pushBotMessage(channelKey, serverName, presetName, styled.PlainText(components))

	// Speaker prefix first, then the composed content, in order.
	outgoing := make([]styled.Component, 0, len(components)+1)
	outgoing = append(outgoing, styled.Component{
		Text:  fmt.Sprintf("<%s>", presetName),
		Color: "green",
	})
	outgoing = append(outgoing, components...)

	if err := conn.SendStyledMessage(ctx, outgoing); err != nil {
		s.log.Error("rich text send failed",
			zap.String("channel_key", channelKey),
			zap.Error(err))
		return fmt.Errorf("send rich text to %s: %w", channelKey, err)
	}
	s.log.Info("rich text sent", zap.String("channel_key", channelKey))
	return nil
}

// ExecuteRconCommands runs a command batch against the channel's live
// connection. Validation failures are returned as errors before any
// command is sent; everything after that point - including a missing
// connection - is folded into the returned report, because the caller is
// an autonomous agent that consumes free text, not typed errors.
func (s *Service) ExecuteRconCommands(ctx context.Context, channelKey string, commands []string, continueOnError bool) (string, error) {
	if _, ok := ServerName(channelKey); !ok {
		return "", ErrInvalidChannelKey
	}
	if len(commands) == 0 {
		return "", rcon.ErrInvalidInput
	}
	for _, cmd := range commands {
		if strings.TrimSpace(cmd) == "" {
			return "", rcon.ErrInvalidInput
		}
	}

	conn, ok := s.provider.Connection(channelKey)
	if !ok {
		s.log.Warn("rcon batch against offline channel",
			zap.String("channel_key", channelKey))
		return fmt.Sprintf("Error: no live connection for Minecraft server: %s", channelKey), nil
	}

	return s.executor.Execute(ctx, channelKey, conn, commands, continueOnError)
}

func (s *Service) pushBotMessage(channelKey, serverName, presetName, plainText string) {
	event := message.ChatEvent{
		ServerName: serverName,
		PlayerUUID: "bot:" + presetName,
		PlayerName: presetName,
		Content:    plainText,
		Timestamp:  time.Now().Unix(),
	}
	s.sink.Push(channelKey, message.Normalize(event))
}
