package memory

import (
	"context"
	"sync"

	"persona-quiz-service/internal/domain"
)

// TokenStore is an in-memory implementation of app.TokenResolver.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewTokenStore seeds the store with token -> user id pairs.
func NewTokenStore(tokens map[string]string) *TokenStore {
	s := &TokenStore{tokens: make(map[string]string, len(tokens))}
	for token, userID := range tokens {
		s.tokens[token] = userID
	}
	return s
}

func (s *TokenStore) Resolve(_ context.Context, token string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.tokens[token]
	if !ok || token == "" {
		return "", domain.ErrUnauthorized
	}
	return userID, nil
}
