package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Service authenticates the two kinds of API callers: the orchestrator,
// which holds a static bearer token, and human operators, who log in for
// a session token.
type Service struct {
	db       *sql.DB
	apiToken string
}

func NewService(db *sql.DB, apiToken string) *Service {
	return &Service{db: db, apiToken: apiToken}
}

// EnsureDefaultUser creates the initial operator account when the users
// table is empty.
func (s *Service) EnsureDefaultUser(username, password string) error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.db.Exec("INSERT INTO users (username, password_hash) VALUES (?, ?)", username, string(hash))
	return err
}

// Login verifies the password and issues a session token.
func (s *Service) Login(username, password string) (string, error) {
	var id int64
	var hash string
	err := s.db.QueryRow("SELECT id, password_hash FROM users WHERE username = ?", username).Scan(&id, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := generateToken()
	if err != nil {
		return "", err
	}
	expires := time.Now().Add(7 * 24 * time.Hour)
	if _, err := s.db.Exec("INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)", token, id, expires); err != nil {
		return "", err
	}
	return token, nil
}

// ValidateToken accepts either the orchestrator's static token or a live
// operator session.
func (s *Service) ValidateToken(token string) error {
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.apiToken)) == 1 {
		return nil
	}

	var expiresAt time.Time
	err := s.db.QueryRow("SELECT expires_at FROM sessions WHERE token = ?", token).Scan(&expiresAt)
	if err != nil {
		return ErrInvalidToken
	}
	if time.Now().After(expiresAt) {
		s.db.Exec("DELETE FROM sessions WHERE token = ?", token)
		return ErrInvalidToken
	}
	return nil
}

// Logout revokes a session token. Revoking the static orchestrator token
// is not possible here; rotate it through configuration.
func (s *Service) Logout(token string) error {
	_, err := s.db.Exec("DELETE FROM sessions WHERE token = ?", token)
	return err
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
