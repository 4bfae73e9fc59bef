package app

import (
	"context"

	"persona-quiz-service/internal/domain"
	"github.com/google/uuid"
)

// AvatarStore keeps the avatar catalog and each user's choice.
type AvatarStore interface {
	ListAvatars(ctx context.Context) ([]domain.Avatar, error)
	GetAvatar(ctx context.Context, avatarID string) (domain.Avatar, error)
	// CreateAvatar fails with domain.ErrConflict when the name is taken.
	CreateAvatar(ctx context.Context, avatar domain.Avatar) error
	SaveUserAvatar(ctx context.Context, choice domain.UserAvatar) error
	UserAvatar(ctx context.Context, userID string) (domain.UserAvatar, error)
}

// AvatarService lets users pick one of the catalog avatar links.
type AvatarService struct {
	avatars AvatarStore
	tokens  TokenResolver
}

func NewAvatarService(avatars AvatarStore, tokens TokenResolver) *AvatarService {
	return &AvatarService{avatars: avatars, tokens: tokens}
}

func (s *AvatarService) ListAvatars(ctx context.Context) ([]domain.Avatar, error) {
	avatars, err := s.avatars.ListAvatars(ctx)
	if err != nil {
		return nil, domain.Internal("list avatars", err)
	}
	return avatars, nil
}

func (s *AvatarService) Avatar(ctx context.Context, avatarID string) (domain.Avatar, error) {
	avatar, err := s.avatars.GetAvatar(ctx, avatarID)
	if err != nil {
		return domain.Avatar{}, domain.Internal("get avatar", err)
	}
	return avatar, nil
}

// CreateAvatar stores a catalog entry and returns its id.
func (s *AvatarService) CreateAvatar(ctx context.Context, name string, links []string) (string, error) {
	avatar := domain.Avatar{ID: uuid.NewString(), Name: name, Links: links}
	if err := s.avatars.CreateAvatar(ctx, avatar); err != nil {
		return "", domain.Internal("create avatar", err)
	}
	return avatar.ID, nil
}

// SaveUserAvatar records link as the user's avatar. The link must belong to the avatar.
func (s *AvatarService) SaveUserAvatar(ctx context.Context, token, avatarID, link string) error {
	userID, err := s.tokens.Resolve(ctx, token)
	if err != nil {
		return domain.Internal("resolve token", err)
	}
	avatar, err := s.avatars.GetAvatar(ctx, avatarID)
	if err != nil {
		return domain.Internal("get avatar", err)
	}
	if !avatar.HasLink(link) {
		return domain.ErrLinkNotRelated
	}
	err = s.avatars.SaveUserAvatar(ctx, domain.UserAvatar{UserID: userID, AvatarID: avatarID, Link: link})
	return domain.Internal("save user avatar", err)
}

// UserAvatarLink returns the link the user picked.
func (s *AvatarService) UserAvatarLink(ctx context.Context, token string) (string, error) {
	userID, err := s.tokens.Resolve(ctx, token)
	if err != nil {
		return "", domain.Internal("resolve token", err)
	}
	choice, err := s.avatars.UserAvatar(ctx, userID)
	if err != nil {
		return "", domain.Internal("user avatar", err)
	}
	return choice.Link, nil
}
