package message

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// PlatformName identifies this adapter on the agent platform.
	PlatformName = "minecraft"

	// ChannelKindGroup is the only channel kind this source produces:
	// one group-like channel per server.
	ChannelKindGroup = "group"

	SegmentText = "text"
)

// ChannelRef identifies a server-backed channel. The server name doubles
// as both id and display name.
type ChannelRef struct {
	ChannelID   string `json:"channel_id"`
	ChannelName string `json:"channel_name"`
	ChannelKind string `json:"channel_kind"`
}

// UserRef identifies a sender. UserID is a stable pseudonym derived from
// the player's native UUID, never the UUID itself.
type UserRef struct {
	PlatformName string `json:"platform_name"`
	UserID       string `json:"user_id"`
	DisplayName  string `json:"display_name"`
	AvatarURL    string `json:"avatar_url"`
}

// Segment is one piece of message content. Inbound normalization only
// ever produces text segments.
type Segment struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CanonicalMessage is the platform-neutral envelope every inbound chat
// event is normalized into.
type CanonicalMessage struct {
	MessageID             string    `json:"message_id"`
	SenderID              string    `json:"sender_id"`
	SenderName            string    `json:"sender_name"`
	Segments              []Segment `json:"segments"`
	PlainText             string    `json:"plain_text"`
	IsDirectedAtRecipient bool      `json:"is_directed_at_recipient"`
	TimestampSeconds      int64     `json:"timestamp_seconds"`
}

// ChatEvent is an inbound chat event as delivered by the gateway.
type ChatEvent struct {
	ServerName string
	PlayerUUID string
	PlayerName string
	Content    string
	MessageID  string
	Timestamp  int64
}

// Normalized bundles the channel, sender, and message produced from one
// chat event, ready for hand-off to the message sink.
type Normalized struct {
	Channel ChannelRef       `json:"channel"`
	Sender  UserRef          `json:"sender"`
	Message CanonicalMessage `json:"message"`
}

// ShortUserID derives the stable pseudonymous user id from a native
// player identifier: the first 10 hex chars of its SHA-1. The truncation
// keeps ids chat-friendly; the collision risk is accepted as negligible.
func ShortUserID(nativeID string) string {
	sum := sha1.Sum([]byte(nativeID))
	return hex.EncodeToString(sum[:])[:10]
}

// Normalize converts a chat event into the canonical envelope. It never
// fails: missing display names pass through empty, and a missing protocol
// message id is replaced with a deterministic synthesized one.
func Normalize(event ChatEvent) Normalized {
	userID := ShortUserID(event.PlayerUUID)

	msgID := strings.TrimSpace(event.MessageID)
	if msgID == "" {
		msgID = fmt.Sprintf("mc_%s_%s_%d", event.ServerName, userID, event.Timestamp)
	} else {
		msgID = event.MessageID
	}

	return Normalized{
		Channel: ChannelRef{
			ChannelID:   event.ServerName,
			ChannelName: event.ServerName,
			ChannelKind: ChannelKindGroup,
		},
		Sender: UserRef{
			PlatformName: PlatformName,
			UserID:       userID,
			DisplayName:  event.PlayerName,
		},
		Message: CanonicalMessage{
			MessageID:  msgID,
			SenderID:   userID,
			SenderName: event.PlayerName,
			Segments: []Segment{
				{Type: SegmentText, Text: event.Content},
			},
			PlainText:             event.Content,
			IsDirectedAtRecipient: false,
			TimestampSeconds:      event.Timestamp,
		},
	}
}
