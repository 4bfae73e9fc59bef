package memory

import (
	"context"
	"sort"
	"sync"

	"persona-quiz-service/internal/domain"
)

// Catalog is an in-memory game and person store (useful for tests/demos).
// It implements both GameLoader and app.Catalog.
type Catalog struct {
	mu      sync.RWMutex
	games   map[string]domain.Game
	persons map[string]domain.Person
}

// NewCatalog seeds the catalog with games and the persons they reference.
func NewCatalog(games ...domain.Game) *Catalog {
	c := &Catalog{
		games:   make(map[string]domain.Game, len(games)),
		persons: make(map[string]domain.Person),
	}
	for _, g := range games {
		c.games[g.ID] = g
		for _, p := range g.Persons {
			c.persons[p.ID] = p
		}
	}
	return c
}

func (c *Catalog) LoadGame(_ context.Context, gameID string) (domain.Game, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	game, ok := c.games[gameID]
	if !ok {
		return domain.Game{}, domain.ErrGameNotFound
	}
	return game, nil
}

func (c *Catalog) ListGames(_ context.Context) ([]domain.GameBrief, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.GameBrief, 0, len(c.games))
	for _, g := range c.games {
		ids := make([]string, 0, len(g.Persons))
		for _, p := range g.Persons {
			ids = append(ids, p.ID)
		}
		out = append(out, domain.GameBrief{
			ID:          g.ID,
			Title:       g.Title,
			Description: g.Description,
			Link:        g.Link,
			PersonIDs:   ids,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (c *Catalog) CreatePerson(_ context.Context, person domain.Person) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.persons[person.ID]; ok {
		return domain.ErrConflict
	}
	c.persons[person.ID] = person
	return nil
}

func (c *Catalog) ListPersons(_ context.Context) ([]domain.Person, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Person, 0, len(c.persons))
	for _, p := range c.persons {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count < out[j].Count
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (c *Catalog) FindPersons(_ context.Context, ids []string) ([]domain.Person, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Person, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := c.persons[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *Catalog) CreateGame(_ context.Context, game domain.Game) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, g := range c.games {
		if g.Title == game.Title {
			return domain.ErrConflict
		}
	}
	c.games[game.ID] = game
	return nil
}

func (c *Catalog) DeleteGame(_ context.Context, gameID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	game, ok := c.games[gameID]
	if !ok {
		return "", domain.ErrGameNotFound
	}
	delete(c.games, gameID)
	return game.Title, nil
}
