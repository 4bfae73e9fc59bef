package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"persona-quiz-service/internal/domain"
	"github.com/uptrace/bun"
)

type personModel struct {
	bun.BaseModel `bun:"table:persons,alias:p"`

	ID          string `bun:"id,pk"`
	Count       int    `bun:"count,notnull"`
	Name        string `bun:"name"`
	Description string `bun:"description"`
	ImageLink   string `bun:"image_link"`
}

type gameModel struct {
	bun.BaseModel `bun:"table:games,alias:g"`

	ID          string            `bun:"id,pk"`
	Title       string            `bun:"title,notnull"`
	Description string            `bun:"description"`
	Link        string            `bun:"link"`
	Questions   []domain.Question `bun:"questions,type:jsonb"`
}

type gamePersonModel struct {
	bun.BaseModel `bun:"table:game_persons,alias:gp"`

	GameID   string `bun:"game_id,pk"`
	PersonID string `bun:"person_id,pk"`
}

// Catalog writes games and persons through bun. Reads on the play path go
// through GameLoader instead.
type Catalog struct {
	db *bun.DB
}

func NewCatalog(db *bun.DB) *Catalog {
	return &Catalog{db: db}
}

func (c *Catalog) CreatePerson(ctx context.Context, person domain.Person) error {
	m := toPersonModel(person)
	res, err := c.db.NewInsert().Model(&m).On("CONFLICT DO NOTHING").Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert person: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (c *Catalog) ListPersons(ctx context.Context) ([]domain.Person, error) {
	var models []personModel
	if err := c.db.NewSelect().Model(&models).Order("count ASC", "id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	return fromPersonModels(models), nil
}

func (c *Catalog) FindPersons(ctx context.Context, ids []string) ([]domain.Person, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []personModel
	err := c.db.NewSelect().Model(&models).
		Where("id IN (?)", bun.In(ids)).
		Order("count ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("find persons: %w", err)
	}
	return fromPersonModels(models), nil
}

// CreateGame inserts the game and its person links in one transaction.
func (c *Catalog) CreateGame(ctx context.Context, game domain.Game) error {
	return c.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		m := gameModel{
			ID:          game.ID,
			Title:       game.Title,
			Description: game.Description,
			Link:        game.Link,
			Questions:   game.Questions,
		}
		res, err := tx.NewInsert().Model(&m).On("CONFLICT DO NOTHING").Exec(ctx)
		if err != nil {
			return fmt.Errorf("insert game: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrConflict
		}
		if len(game.Persons) == 0 {
			return nil
		}
		links := make([]gamePersonModel, 0, len(game.Persons))
		for _, p := range game.Persons {
			links = append(links, gamePersonModel{GameID: game.ID, PersonID: p.ID})
		}
		if _, err := tx.NewInsert().Model(&links).Exec(ctx); err != nil {
			return fmt.Errorf("link persons: %w", err)
		}
		return nil
	})
}

func (c *Catalog) DeleteGame(ctx context.Context, gameID string) (string, error) {
	var title string
	err := c.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var m gameModel
		err := tx.NewSelect().Model(&m).Column("title").Where("id = ?", gameID).For("UPDATE").Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrGameNotFound
		}
		if err != nil {
			return fmt.Errorf("select game: %w", err)
		}
		if _, err := tx.NewDelete().Model((*gameModel)(nil)).Where("id = ?", gameID).Exec(ctx); err != nil {
			return fmt.Errorf("delete game: %w", err)
		}
		title = m.Title
		return nil
	})
	if err != nil {
		return "", err
	}
	return title, nil
}

// AddToken registers an access token for a user. Tokens are normally written
// by the auth service; this exists for seeding and tests.
func (c *Catalog) AddToken(ctx context.Context, token, userID string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO tokens (access_token, user_id) VALUES (?, ?) ON CONFLICT (access_token) DO UPDATE SET user_id = EXCLUDED.user_id`,
		token, userID,
	)
	if err != nil {
		return fmt.Errorf("add token: %w", err)
	}
	return nil
}

// RevokeToken deletes an access token. Unknown tokens are ignored.
func (c *Catalog) RevokeToken(ctx context.Context, token string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM tokens WHERE access_token = ?`, token); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func toPersonModel(p domain.Person) personModel {
	return personModel{
		ID:          p.ID,
		Count:       p.Count,
		Name:        p.Name,
		Description: p.Description,
		ImageLink:   p.ImageLink,
	}
}

func fromPersonModels(models []personModel) []domain.Person {
	out := make([]domain.Person, 0, len(models))
	for _, m := range models {
		out = append(out, domain.Person{
			ID:          m.ID,
			Count:       m.Count,
			Name:        m.Name,
			Description: m.Description,
			ImageLink:   m.ImageLink,
		})
	}
	return out
}
