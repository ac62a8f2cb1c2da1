package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/taskmaster/internal/model"
)

// TokenStore keeps the tokens of the signed-in user.
type TokenStore interface {
	Save(t model.Tokens) error
	AccessToken() string
	RefreshToken() string
	Clear() error
}

type tokenFile struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// FileTokenStore persists tokens as JSON in dir/token.json.
type FileTokenStore struct {
	dir string
	now func() time.Time

	mu sync.Mutex
}

// NewFileTokenStore returns a store rooted at dir.
func NewFileTokenStore(dir string) *FileTokenStore {
	return &FileTokenStore{dir: dir, now: time.Now}
}

func (s *FileTokenStore) path() string { return filepath.Join(s.dir, "token.json") }

// Save writes the tokens atomically with 0600 permissions.
// A zero ExpiresAt is taken from the access token's exp claim.
func (s *FileTokenStore) Save(t model.Tokens) error {
	exp := t.ExpiresAt
	if exp.IsZero() {
		exp = ExpiryFromJWT(t.AccessToken)
	}

	b, err := json.MarshalIndent(tokenFile{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    exp,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tokens: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, "token-*.json")
	if err != nil {
		return fmt.Errorf("create temp token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod token file: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close token file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path()); err != nil {
		return fmt.Errorf("replace token file: %w", err)
	}
	return nil
}

func (s *FileTokenStore) load() (tokenFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tf tokenFile
	b, err := os.ReadFile(s.path())
	if err != nil {
		return tf, err
	}
	if err := json.Unmarshal(b, &tf); err != nil {
		return tf, err
	}
	return tf, nil
}

// AccessToken returns the stored access token, or "" when missing or expired.
func (s *FileTokenStore) AccessToken() string {
	tf, err := s.load()
	if err != nil || tf.AccessToken == "" {
		return ""
	}
	if !tf.ExpiresAt.IsZero() && s.now().After(tf.ExpiresAt) {
		return ""
	}
	return tf.AccessToken
}

// RefreshToken returns the stored refresh token, or "".
func (s *FileTokenStore) RefreshToken() string {
	tf, err := s.load()
	if err != nil {
		return ""
	}
	return tf.RefreshToken
}

// Clear removes the token file. Missing files are not an error.
func (s *FileTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

// ExpiryFromJWT reads the exp claim without verifying the signature.
// It returns the zero time for opaque tokens or tokens without exp.
func ExpiryFromJWT(token string) time.Time {
	if token == "" {
		return time.Time{}
	}
	var claims jwt.RegisteredClaims
	p := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := p.ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// MemoryTokenStore keeps tokens in memory only.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens model.Tokens
}

func (m *MemoryTokenStore) Save(t model.Tokens) error {
	m.mu.Lock()
	m.tokens = t
	m.mu.Unlock()
	return nil
}

func (m *MemoryTokenStore) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tokens.AccessToken
}

func (m *MemoryTokenStore) RefreshToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tokens.RefreshToken
}

func (m *MemoryTokenStore) Clear() error {
	m.mu.Lock()
	m.tokens = model.Tokens{}
	m.mu.Unlock()
	return nil
}
