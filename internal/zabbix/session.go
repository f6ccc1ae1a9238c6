package zabbix

import (
	"context"
	"sync"
	"time"
)

// LoginFunc obtains a fresh authentication token.
type LoginFunc func(ctx context.Context) (string, error)

// Session owns the cached API token. The token is established lazily on
// first use and shared by all callers; Invalidate drops it so the next
// Token call logs in again.
type Session struct {
	login LoginFunc
	now   func() time.Time

	mu         sync.Mutex
	token      string
	acquiredAt time.Time
}

// NewSession creates a Session that uses login to obtain tokens.
func NewSession(login LoginFunc) *Session {
	return &Session{login: login, now: time.Now}
}

// Token returns the cached token, logging in first if there is none.
// Concurrent first callers wait for a single login.
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" {
		return s.token, nil
	}
	token, err := s.login(ctx)
	if err != nil {
		return "", err
	}
	s.token = token
	s.acquiredAt = s.now()
	return token, nil
}

// Invalidate clears the cached token if it is still stale. A token that was
// already replaced by another caller is left alone.
func (s *Session) Invalidate(stale string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == stale {
		s.token = ""
		s.acquiredAt = time.Time{}
	}
}

// AcquiredAt reports when the current token was obtained; zero if none.
func (s *Session) AcquiredAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acquiredAt
}
