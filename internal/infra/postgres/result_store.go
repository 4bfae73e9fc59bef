package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"persona-quiz-service/internal/domain"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const (
	foreignKeyViolation = "23503"
	userGamesGameFK     = "user_games_game_id_fkey"
)

// ResultStore keeps one user_games row per (game_id, user_id).
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

// Upsert relies on the composite primary key; concurrent writers for the same
// pair serialize on the row and the last one wins.
func (s *ResultStore) Upsert(ctx context.Context, record domain.ResultRecord) error {
	answers, err := json.Marshal(record.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO user_games (game_id, user_id, right_answers_count, person_id, answers, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (game_id, user_id) DO UPDATE SET
			right_answers_count = EXCLUDED.right_answers_count,
			person_id = EXCLUDED.person_id,
			answers = EXCLUDED.answers,
			updated_at = EXCLUDED.updated_at`,
		record.GameID, record.UserID, record.RightAnswersCount, record.PersonID, answers, record.UpdatedAt)
	return upsertError(err)
}

// upsertError reports a game deleted after it was loaded as not found.
func upsertError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation && pgErr.ConstraintName == userGamesGameFK {
		return domain.ErrGameNotFound
	}
	return fmt.Errorf("upsert result: %w", err)
}

func (s *ResultStore) FindByUser(ctx context.Context, userID string) (domain.ResultView, error) {
	var (
		view        domain.ResultView
		raw         []byte
		personID    *string
		personCount *int
		name        *string
		description *string
		imageLink   *string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT ug.game_id, g.title, ug.right_answers_count, ug.answers,
		       p.id, p.count, p.name, p.description, p.image_link
		FROM user_games ug
		JOIN games g ON g.id = ug.game_id
		LEFT JOIN persons p ON p.id = ug.person_id
		WHERE ug.user_id = $1
		ORDER BY ug.updated_at DESC, ug.game_id
		LIMIT 1`, userID,
	).Scan(&view.GameID, &view.GameTitle, &view.RightAnswersCount, &raw,
		&personID, &personCount, &name, &description, &imageLink)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ResultView{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.ResultView{}, fmt.Errorf("find result: %w", err)
	}
	if err := json.Unmarshal(raw, &view.Answers); err != nil {
		return domain.ResultView{}, fmt.Errorf("unmarshal answers: %w", err)
	}
	if personID != nil {
		view.Person = &domain.Person{
			ID:          *personID,
			Count:       deref(personCount),
			Name:        deref(name),
			Description: deref(description),
			ImageLink:   deref(imageLink),
		}
	}
	return view, nil
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
