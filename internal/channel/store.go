package channel

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a channel key has never been registered.
var ErrNotFound = errors.New("channel not found")

// Channel is one registered server channel. PresetName is the speaker
// label prefixed to messages the agent sends into the server.
type Channel struct {
	Key        string `json:"key"`
	ServerName string `json:"server_name"`
	PresetName string `json:"preset_name"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// Store persists channel records and resolves preset names. Channels are
// auto-registered when their server first connects to the gateway.
type Store struct {
	db            *sql.DB
	defaultPreset string
}

func NewStore(db *sql.DB, defaultPreset string) *Store {
	return &Store{db: db, defaultPreset: defaultPreset}
}

// Ensure registers a channel if it is not already known. Existing records
// keep their preset.
func (s *Store) Ensure(key, serverName string) error {
	_, err := s.db.Exec(
		`INSERT INTO channels (key, server_name, preset_name) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO NOTHING`,
		key, serverName, s.defaultPreset,
	)
	if err != nil {
		return fmt.Errorf("ensure channel %s: %w", key, err)
	}
	return nil
}

// PresetName returns the speaker label for a channel, falling back to the
// configured default for unknown channels.
func (s *Store) PresetName(key string) string {
	var name string
	err := s.db.QueryRow("SELECT preset_name FROM channels WHERE key = ?", key).Scan(&name)
	if err != nil || name == "" {
		return s.defaultPreset
	}
	return name
}

func (s *Store) Get(key string) (*Channel, error) {
	var ch Channel
	err := s.db.QueryRow(
		"SELECT key, server_name, preset_name, created_at, updated_at FROM channels WHERE key = ?",
		key,
	).Scan(&ch.Key, &ch.ServerName, &ch.PresetName, &ch.CreatedAt, &ch.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (s *Store) List() ([]Channel, error) {
	rows, err := s.db.Query("SELECT key, server_name, preset_name, created_at, updated_at FROM channels ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	channels := []Channel{}
	for rows.Next() {
		var ch Channel
		if err := rows.Scan(&ch.Key, &ch.ServerName, &ch.PresetName, &ch.CreatedAt, &ch.UpdatedAt); err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// SetPreset updates the speaker label for a known channel.
func (s *Store) SetPreset(key, presetName string) error {
	res, err := s.db.Exec(
		"UPDATE channels SET preset_name = ?, updated_at = CURRENT_TIMESTAMP WHERE key = ?",
		presetName, key,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
