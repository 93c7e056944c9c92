package client

import "sync"

// Session holds the bearer token returned by SignUp or Login. It is valid
// until Client.Logout invalidates it; after that every call fails with
// ErrNoSession.
type Session struct {
	mu    sync.RWMutex
	token string
	user  User
}

func newSession(token string, user User) *Session {
	return &Session{token: token, user: user}
}

// User returns the account the session was opened for.
func (s *Session) User() User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Active reports whether the session can still be used.
func (s *Session) Active() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

func (s *Session) bearer() (string, error) {
	if s == nil {
		return "", ErrNoSession
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", ErrNoSession
	}
	return s.token, nil
}

func (s *Session) invalidate() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}
