package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"gallery-go/internal/gallery"
)

// sessionFile is the on-disk shape of a stored session.
type sessionFile struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Admin        bool   `json:"admin"`
}

// TokenStore holds the session tokens, persisted to a file so the CLI stays
// logged in between invocations. It is safe for concurrent use, since
// machines mutate from background goroutines.
type TokenStore struct {
	path string

	mu      sync.Mutex
	session sessionFile
}

// NewTokenStore loads any stored session from path. A missing file yields
// an unauthenticated store, not an error.
func NewTokenStore(path string) (*TokenStore, error) {
	s := &TokenStore{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}
	if err := json.Unmarshal(data, &s.session); err != nil {
		return nil, fmt.Errorf("decoding session file: %w", err)
	}
	return s, nil
}

// AccessToken returns the current access token, or "".
func (s *TokenStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.AccessToken
}

// IsAdmin reports whether the stored session has mutation privileges.
func (s *TokenStore) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Admin
}

var _ gallery.Session = (*TokenStore)(nil)

// Login authenticates against the server and persists the session.
func (s *TokenStore) Login(baseURL string, client *http.Client, username, password string) error {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return fmt.Errorf("encoding login request: %w", err)
	}

	resp, err := client.Post(baseURL+"/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("requesting login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &gallery.ServerError{StatusCode: resp.StatusCode, Message: "login failed"}
	}

	var session sessionFile
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return fmt.Errorf("decoding login response: %w", err)
	}

	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	return s.persist()
}

// Refresh exchanges the refresh token for a new access token. Called by the
// HTTP client on 401, at most once per request.
func (s *TokenStore) Refresh(baseURL string, client *http.Client) error {
	s.mu.Lock()
	refreshToken := s.session.RefreshToken
	s.mu.Unlock()

	if refreshToken == "" {
		return gallery.ErrSessionExpired
	}

	body, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return fmt.Errorf("encoding refresh request: %w", err)
	}

	resp, err := client.Post(baseURL+"/refresh", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("requesting token refresh: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return gallery.ErrSessionExpired
	}

	var session sessionFile
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return fmt.Errorf("decoding refresh response: %w", err)
	}

	s.mu.Lock()
	s.session.AccessToken = session.AccessToken
	if session.RefreshToken != "" {
		s.session.RefreshToken = session.RefreshToken
	}
	s.mu.Unlock()

	return s.persist()
}

// Logout forgets the session in memory and on disk.
func (s *TokenStore) Logout() error {
	s.mu.Lock()
	s.session = sessionFile{}
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

func (s *TokenStore) persist() error {
	s.mu.Lock()
	data, err := json.Marshal(s.session)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}
