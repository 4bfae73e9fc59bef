package memory

import (
	"context"
	"sort"
	"sync"

	"persona-quiz-service/internal/domain"
)

// AvatarStore is an in-memory implementation of app.AvatarStore.
type AvatarStore struct {
	mu      sync.RWMutex
	avatars map[string]domain.Avatar
	choices map[string]domain.UserAvatar
}

func NewAvatarStore(avatars ...domain.Avatar) *AvatarStore {
	s := &AvatarStore{
		avatars: make(map[string]domain.Avatar, len(avatars)),
		choices: make(map[string]domain.UserAvatar),
	}
	for _, a := range avatars {
		s.avatars[a.ID] = a
	}
	return s
}

func (s *AvatarStore) ListAvatars(_ context.Context) ([]domain.Avatar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Avatar, 0, len(s.avatars))
	for _, a := range s.avatars {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *AvatarStore) GetAvatar(_ context.Context, avatarID string) (domain.Avatar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.avatars[avatarID]
	if !ok {
		return domain.Avatar{}, domain.ErrAvatarNotFound
	}
	return a, nil
}

func (s *AvatarStore) CreateAvatar(_ context.Context, avatar domain.Avatar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.avatars {
		if a.Name == avatar.Name {
			return domain.ErrConflict
		}
	}
	s.avatars[avatar.ID] = avatar
	return nil
}

func (s *AvatarStore) SaveUserAvatar(_ context.Context, choice domain.UserAvatar) error {
	s.mu.Lock()
	s.choices[choice.UserID] = choice
	s.mu.Unlock()
	return nil
}

func (s *AvatarStore) UserAvatar(_ context.Context, userID string) (domain.UserAvatar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	choice, ok := s.choices[userID]
	if !ok {
		return domain.UserAvatar{}, domain.ErrAvatarNotFound
	}
	return choice, nil
}
