package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"persona-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// GameLoader loads games with their JSONB questions and linked persons.
type GameLoader struct {
	pool *pgxpool.Pool
}

func NewGameLoader(pool *pgxpool.Pool) *GameLoader {
	return &GameLoader{pool: pool}
}

func (l *GameLoader) LoadGame(ctx context.Context, gameID string) (domain.Game, error) {
	var (
		game domain.Game
		raw  []byte
	)
	err := l.pool.QueryRow(ctx,
		`SELECT id, title, description, link, questions FROM games WHERE id=$1`, gameID,
	).Scan(&game.ID, &game.Title, &game.Description, &game.Link, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Game{}, domain.ErrGameNotFound
	}
	if err != nil {
		return domain.Game{}, fmt.Errorf("load game: %w", err)
	}
	if err := json.Unmarshal(raw, &game.Questions); err != nil {
		return domain.Game{}, fmt.Errorf("unmarshal questions: %w", err)
	}

	rows, err := l.pool.Query(ctx, `
		SELECT p.id, p.count, p.name, p.description, p.image_link
		FROM game_persons gp
		JOIN persons p ON p.id = gp.person_id
		WHERE gp.game_id = $1
		ORDER BY p.count, p.id`, gameID)
	if err != nil {
		return domain.Game{}, fmt.Errorf("load persons: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p domain.Person
		if err := rows.Scan(&p.ID, &p.Count, &p.Name, &p.Description, &p.ImageLink); err != nil {
			return domain.Game{}, fmt.Errorf("scan person: %w", err)
		}
		game.Persons = append(game.Persons, p)
	}
	if err := rows.Err(); err != nil {
		return domain.Game{}, fmt.Errorf("load persons: %w", err)
	}
	return game, nil
}

func (l *GameLoader) ListGames(ctx context.Context) ([]domain.GameBrief, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT g.id, g.title, g.description, g.link,
		       COALESCE(array_agg(gp.person_id ORDER BY gp.person_id) FILTER (WHERE gp.person_id IS NOT NULL), '{}')
		FROM games g
		LEFT JOIN game_persons gp ON gp.game_id = g.id
		GROUP BY g.id
		ORDER BY g.title`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	games := []domain.GameBrief{}
	for rows.Next() {
		var g domain.GameBrief
		if err := rows.Scan(&g.ID, &g.Title, &g.Description, &g.Link, &g.PersonIDs); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}
