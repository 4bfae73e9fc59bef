package postgres

import (
	"context"
	"errors"
	"fmt"

	"persona-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// TokenResolver looks access tokens up in the tokens table written by the auth service.
type TokenResolver struct {
	pool *pgxpool.Pool
}

func NewTokenResolver(pool *pgxpool.Pool) *TokenResolver {
	return &TokenResolver{pool: pool}
}

func (r *TokenResolver) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", domain.ErrUnauthorized
	}
	var userID string
	err := r.pool.QueryRow(ctx, `SELECT user_id FROM tokens WHERE access_token=$1`, token).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrUnauthorized
	}
	if err != nil {
		return "", fmt.Errorf("resolve token: %w", err)
	}
	return userID, nil
}
