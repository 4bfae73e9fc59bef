package postgres

import (
	"context"
	"errors"
	"fmt"

	"persona-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// AvatarStore keeps the avatar catalog and per-user choices.
type AvatarStore struct {
	pool *pgxpool.Pool
}

func NewAvatarStore(pool *pgxpool.Pool) *AvatarStore {
	return &AvatarStore{pool: pool}
}

func (s *AvatarStore) ListAvatars(ctx context.Context) ([]domain.Avatar, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, links FROM avatars ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list avatars: %w", err)
	}
	defer rows.Close()

	avatars := []domain.Avatar{}
	for rows.Next() {
		var a domain.Avatar
		if err := rows.Scan(&a.ID, &a.Name, &a.Links); err != nil {
			return nil, fmt.Errorf("scan avatar: %w", err)
		}
		avatars = append(avatars, a)
	}
	return avatars, rows.Err()
}

func (s *AvatarStore) GetAvatar(ctx context.Context, avatarID string) (domain.Avatar, error) {
	var a domain.Avatar
	err := s.pool.QueryRow(ctx, `SELECT id, name, links FROM avatars WHERE id=$1`, avatarID).
		Scan(&a.ID, &a.Name, &a.Links)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Avatar{}, domain.ErrAvatarNotFound
	}
	if err != nil {
		return domain.Avatar{}, fmt.Errorf("get avatar: %w", err)
	}
	return a, nil
}

func (s *AvatarStore) CreateAvatar(ctx context.Context, avatar domain.Avatar) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO avatars (id, name, links) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
		avatar.ID, avatar.Name, avatar.Links)
	if err != nil {
		return fmt.Errorf("create avatar: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (s *AvatarStore) SaveUserAvatar(ctx context.Context, choice domain.UserAvatar) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_avatars (user_id, avatar_id, link) VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET avatar_id = EXCLUDED.avatar_id, link = EXCLUDED.link`,
		choice.UserID, choice.AvatarID, choice.Link)
	if err != nil {
		return fmt.Errorf("save user avatar: %w", err)
	}
	return nil
}

func (s *AvatarStore) UserAvatar(ctx context.Context, userID string) (domain.UserAvatar, error) {
	choice := domain.UserAvatar{UserID: userID}
	err := s.pool.QueryRow(ctx, `SELECT avatar_id, link FROM user_avatars WHERE user_id=$1`, userID).
		Scan(&choice.AvatarID, &choice.Link)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserAvatar{}, domain.ErrAvatarNotFound
	}
	if err != nil {
		return domain.UserAvatar{}, fmt.Errorf("user avatar: %w", err)
	}
	return choice, nil
}
