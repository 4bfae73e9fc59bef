package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"persona-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// GameLoader fetches game content from a backing store.
type GameLoader interface {
	LoadGame(ctx context.Context, gameID string) (domain.Game, error)
	ListGames(ctx context.Context) ([]domain.GameBrief, error)
}

// GameRepository caches games with TTL to avoid repeated DB hits.
type GameRepository struct {
	loader GameLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedGame
}

type cachedGame struct {
	game      domain.Game
	expiresAt time.Time
}

func NewGameRepository(loader GameLoader, ttl time.Duration) *GameRepository {
	return &GameRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedGame),
	}
}

func (r *GameRepository) GetGame(ctx context.Context, gameID string) (domain.Game, error) {
	if game, ok := r.cached(gameID); ok {
		return game, nil
	}

	result, err, _ := r.sf.Do(gameID, func() (interface{}, error) {
		if game, ok := r.cached(gameID); ok {
			return game, nil
		}

		game, err := r.loader.LoadGame(ctx, gameID)
		if err != nil {
			return domain.Game{}, err
		}

		r.mu.Lock()
		r.cache[gameID] = cachedGame{
			game:      game,
			expiresAt: r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return game, nil
	})
	if err != nil {
		return domain.Game{}, err
	}
	return result.(domain.Game), nil
}

// ListGames is not cached; listings change whenever an admin adds a game.
func (r *GameRepository) ListGames(ctx context.Context) ([]domain.GameBrief, error) {
	return r.loader.ListGames(ctx)
}

func (r *GameRepository) cached(gameID string) (domain.Game, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[gameID]
	if !ok || !entry.expiresAt.After(now) {
		return domain.Game{}, false
	}
	return entry.game, true
}

func (r *GameRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
