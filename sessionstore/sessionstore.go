// Package sessionstore maps opaque session tokens to the id of the user who
// logged in with them
package sessionstore

import (
	"errors"
	"sync"

	"github.com/gorilla/securecookie"
)

const TokenLength = 32

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var ErrEntropy = errors.New("couldn't read random bytes")

type Store interface {
	// Create starts a session for the user and returns its token
	Create(userID int) (string, error)
	// Resolve returns the user id for a token, if the session exists
	Resolve(token string) (int, bool)
	// Invalidate ends a session. ending a session that doesn't exist is a no-op
	Invalidate(token string)
}

// Memory is a Store that lives only as long as the process. a user may hold any
// number of sessions
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]int
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{sessions: map[string]int{}}
}

func (m *Memory) Create(userID int) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.sessions[token] = userID
	m.mu.Unlock()
	return token, nil
}

func (m *Memory) Resolve(token string) (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	userID, ok := m.sessions[token]
	return userID, ok
}

func (m *Memory) Invalidate(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// NewToken returns TokenLength characters drawn uniformly from [A-Za-z0-9]
func NewToken() (string, error) {
	// bytes at or above this are dropped so that the modulo isn't biased
	const limit = 256 - 256%len(alphabet)

	token := make([]byte, 0, TokenLength)
	for len(token) < TokenLength {
		key := securecookie.GenerateRandomKey(TokenLength)
		if key == nil {
			return "", ErrEntropy
		}
		for _, b := range key {
			if int(b) >= limit {
				continue
			}
			token = append(token, alphabet[int(b)%len(alphabet)])
			if len(token) == TokenLength {
				break
			}
		}
	}
	return string(token), nil
}
