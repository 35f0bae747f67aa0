package console

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token is a bearer credential as the user pasted it, without the "Bearer "
// scheme.
type Token string

// CredentialStore keeps the token used for the Authorization header default.
type CredentialStore interface {
	Get() (Token, bool, error)
	Set(Token) error
	Clear() error
}

// MemoryStore holds a token for the lifetime of the process.
type MemoryStore struct {
	mu    sync.Mutex
	token Token
	ok    bool
}

func (s *MemoryStore) Get() (Token, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.ok, nil
}

func (s *MemoryStore) Set(t Token) error {
	t = normalizeToken(t)
	if t == "" {
		return errEmptyToken
	}
	s.mu.Lock()
	s.token, s.ok = t, true
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	s.token, s.ok = "", false
	s.mu.Unlock()
	return nil
}

var errEmptyToken = errors.New("empty token")

const credentialFileMode = 0o600

// FileStore persists the token as JSON in a file readable only by its owner.
type FileStore struct {
	path string
	mu   sync.Mutex
}

type credentialFile struct {
	Authorization Token `json:"authorization"`
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultCredentialPath is $XDG_CONFIG_HOME/tryout/credentials.json or its
// platform equivalent.
func DefaultCredentialPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "tryout", "credentials.json"), nil
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get() (Token, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read credentials: %w", err)
	}
	var cf credentialFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return "", false, fmt.Errorf("decode credentials %s: %w", s.path, err)
	}
	if cf.Authorization == "" {
		return "", false, nil
	}
	return cf.Authorization, true, nil
}

func (s *FileStore) Set(t Token) error {
	t = normalizeToken(t)
	if t == "" {
		return errEmptyToken
	}
	data, err := json.Marshal(credentialFile{Authorization: t})
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, credentialFileMode); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

func normalizeToken(t Token) Token {
	s := strings.TrimSpace(string(t))
	if len(s) > 7 && strings.EqualFold(s[:7], "bearer ") {
		s = strings.TrimSpace(s[7:])
	}
	return Token(s)
}

// TokenInfo describes what can be read from a token without verifying it.
type TokenInfo struct {
	JWT       bool
	Subject   string
	Issuer    string
	ExpiresAt time.Time
	Expired   bool
}

// InspectToken decodes t as a JWT without checking its signature. Opaque
// tokens yield a zero TokenInfo.
func InspectToken(t Token, now time.Time) TokenInfo {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(string(normalizeToken(t)), claims); err != nil {
		return TokenInfo{}
	}
	info := TokenInfo{JWT: true}
	info.Subject, _ = claims.GetSubject()
	info.Issuer, _ = claims.GetIssuer()
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
		info.Expired = !now.Before(exp.Time)
	}
	return info
}

// MaskToken keeps the last few characters of t for display.
func MaskToken(t Token) string {
	s := string(t)
	const keep = 6
	if len(s) <= keep {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", 8) + s[len(s)-keep:]
}
