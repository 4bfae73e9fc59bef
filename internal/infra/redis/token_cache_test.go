package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"persona-quiz-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestTokenCacheSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	tokens := &mapResolver{tokens: map[string]string{"token-1": "u1"}}
	cache := NewTokenCache(newClient(mr), tokens, time.Minute)
	ctx := context.Background()

	userID, err := cache.Resolve(ctx, "token-1")
	if err != nil || userID != "u1" {
		t.Fatalf("expected u1, got %q (%v)", userID, err)
	}
	if got, _ := mr.Get("quiz:token:token-1"); got != "u1" {
		t.Fatalf("expected redis key to be set, got %q", got)
	}

	// Served from cache even after the backing store forgets it.
	tokens.remove("token-1")
	if userID, err := cache.Resolve(ctx, "token-1"); err != nil || userID != "u1" {
		t.Fatalf("expected cached u1, got %q (%v)", userID, err)
	}

	if err := cache.Forget(ctx, "token-1"); err != nil {
		t.Fatalf("forget: %v", err)
	}
	if mr.Exists("quiz:token:token-1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, err := cache.Resolve(ctx, "token-1"); err != domain.ErrUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if mr.Exists("quiz:token:token-1") {
		t.Fatalf("expected rejected token not to be cached")
	}
}

type mapResolver struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (r *mapResolver) Resolve(_ context.Context, token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	userID, ok := r.tokens[token]
	if !ok {
		return "", domain.ErrUnauthorized
	}
	return userID, nil
}

func (r *mapResolver) remove(token string) {
	r.mu.Lock()
	delete(r.tokens, token)
	r.mu.Unlock()
}
