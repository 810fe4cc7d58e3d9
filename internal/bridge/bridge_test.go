package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/minebridge/minebridge/internal/message"
	"github.com/minebridge/minebridge/internal/rcon"
	"github.com/minebridge/minebridge/internal/styled"
)

type fakeConn struct {
	rconResponses map[string]string
	sentStyled    [][]styled.Component
	styledErr     error
}

func (f *fakeConn) SendRconCommand(_ context.Context, command string) (string, error) {
	return f.rconResponses[command], nil
}

func (f *fakeConn) SendStyledMessage(_ context.Context, components []styled.Component) error {
	if f.styledErr != nil {
		return f.styledErr
	}
	f.sentStyled = append(f.sentStyled, components)
	return nil
}

type fakeProvider struct {
	conns map[string]Connection
}

func (f *fakeProvider) Connection(channelKey string) (Connection, bool) {
	conn, ok := f.conns[channelKey]
	return conn, ok
}

type recordingSink struct {
	pushed []message.Normalized
	keys   []string
}

func (s *recordingSink) Push(channelKey string, msg message.Normalized) {
	s.keys = append(s.keys, channelKey)
	s.pushed = append(s.pushed, msg)
}

type staticPresets struct{ name string }

func (p staticPresets) PresetName(string) string { return p.name }

func newTestService(conn Connection) (*Service, *recordingSink) {
	sink := &recordingSink{}
	provider := &fakeProvider{conns: map[string]Connection{}}
	if conn != nil {
		provider.conns["minecraft-survival"] = conn
	}
	svc := NewService(provider, sink, staticPresets{name: "Luna"}, zap.NewNop())
	return svc, sink
}

func TestChannelKey(t *testing.T) {
	assert.Equal(t, "minecraft-survival", ChannelKey("survival"))

	name, ok := ServerName("minecraft-survival")
	require.True(t, ok)
	assert.Equal(t, "survival", name)

	for _, key := range []string{"", "minecraft-", "discord-survival", "survival"} {
		_, ok := ServerName(key)
		assert.False(t, ok, key)
	}
}

func TestHandleChatEvent(t *testing.T) {
	svc, sink := newTestService(nil)

	svc.HandleChatEvent(message.ChatEvent{
		ServerName: "survival",
		PlayerUUID: "069a79f4-44e9-4726-a5be-fca90e38aaf5",
		PlayerName: "Notch",
		Content:    "hi there",
		Timestamp:  1700000000,
	})

	require.Len(t, sink.pushed, 1)
	assert.Equal(t, []string{"minecraft-survival"}, sink.keys)
	assert.Equal(t, "hi there", sink.pushed[0].Message.PlainText)
	assert.Equal(t, "survival", sink.pushed[0].Channel.ChannelID)
}

func TestSendRichText(t *testing.T) {
	descriptors := `[{"text": "Hello"}, {"text": " world", "color": "gold", "bold": true}]`

	t.Run("happy path prefixes the speaker label", func(t *testing.T) {
		conn := &fakeConn{}
		svc, sink := newTestService(conn)

		err := svc.SendRichText(context.Background(), "minecraft-survival", descriptors)
		require.NoError(t, err)

		require.Len(t, conn.sentStyled, 1)
		sent := conn.sentStyled[0]
		require.Len(t, sent, 3)
		assert.Equal(t, "<Luna>", sent[0].Text)
		assert.Equal(t, "green", sent[0].Color)
		assert.Equal(t, "Hello", sent[1].Text)
		assert.Equal(t, " world", sent[2].Text)

		// Plain-text projection recorded as the bot's own message.
		require.Len(t, sink.pushed, 1)
		assert.Equal(t, "Hello world", sink.pushed[0].Message.PlainText)
		assert.Equal(t, "Luna", sink.pushed[0].Sender.DisplayName)
	})

	t.Run("malformed channel key", func(t *testing.T) {
		svc, _ := newTestService(&fakeConn{})
		err := svc.SendRichText(context.Background(), "survival", descriptors)
		assert.ErrorIs(t, err, ErrInvalidChannelKey)
	})

	t.Run("no live connection", func(t *testing.T) {
		svc, _ := newTestService(nil)
		err := svc.SendRichText(context.Background(), "minecraft-survival", descriptors)
		assert.ErrorIs(t, err, ErrConnectionUnavailable)
	})

	t.Run("bad descriptor json", func(t *testing.T) {
		svc, sink := newTestService(&fakeConn{})
		err := svc.SendRichText(context.Background(), "minecraft-survival", `{"not": "a list"}`)
		assert.ErrorIs(t, err, styled.ErrInvalidInput)
		assert.Empty(t, sink.pushed)
	})

	t.Run("blank descriptor json", func(t *testing.T) {
		svc, _ := newTestService(&fakeConn{})
		err := svc.SendRichText(context.Background(), "minecraft-survival", "   ")
		assert.ErrorIs(t, err, styled.ErrInvalidInput)
	})

	t.Run("zero valid segments", func(t *testing.T) {
		svc, _ := newTestService(&fakeConn{})
		err := svc.SendRichText(context.Background(), "minecraft-survival", `["x", 1]`)
		assert.ErrorIs(t, err, styled.ErrEmptyResult)
	})

	t.Run("send failure is wrapped", func(t *testing.T) {
		conn := &fakeConn{styledErr: errors.New("write failed")}
		svc, _ := newTestService(conn)
		err := svc.SendRichText(context.Background(), "minecraft-survival", descriptors)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "minecraft-survival")
		assert.Contains(t, err.Error(), "write failed")
	})
}

func TestExecuteRconCommands(t *testing.T) {
	t.Run("report built from connection responses", func(t *testing.T) {
		conn := &fakeConn{rconResponses: map[string]string{
			"say Hello":    "Hello",
			"time set day": "Set the time to 24000",
		}}
		svc, _ := newTestService(conn)

		report, err := svc.ExecuteRconCommands(context.Background(), "minecraft-survival",
			[]string{"say Hello", "time set day"}, false)
		require.NoError(t, err)
		assert.Equal(t, "Command 'say Hello': Hello\nCommand 'time set day': Set the time to 24000", report)
	})

	t.Run("malformed channel key", func(t *testing.T) {
		svc, _ := newTestService(&fakeConn{})
		_, err := svc.ExecuteRconCommands(context.Background(), "bad-key", []string{"say hi"}, false)
		assert.ErrorIs(t, err, ErrInvalidChannelKey)
	})

	t.Run("invalid command list", func(t *testing.T) {
		svc, _ := newTestService(&fakeConn{})
		_, err := svc.ExecuteRconCommands(context.Background(), "minecraft-survival", nil, false)
		assert.ErrorIs(t, err, rcon.ErrInvalidInput)

		_, err = svc.ExecuteRconCommands(context.Background(), "minecraft-survival", []string{""}, false)
		assert.ErrorIs(t, err, rcon.ErrInvalidInput)
	})

	t.Run("offline channel reports instead of failing", func(t *testing.T) {
		svc, _ := newTestService(nil)
		report, err := svc.ExecuteRconCommands(context.Background(), "minecraft-survival", []string{"say hi"}, false)
		require.NoError(t, err)
		assert.Equal(t, "Error: no live connection for Minecraft server: minecraft-survival", report)
	})
}
