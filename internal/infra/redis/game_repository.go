package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"persona-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// GameLoader fetches game content from a backing store.
type GameLoader interface {
	LoadGame(ctx context.Context, gameID string) (domain.Game, error)
	ListGames(ctx context.Context) ([]domain.GameBrief, error)
}

// GameRepository caches whole games as JSON and falls back to a loader on cache miss.
// Games are stored as: SET game:{gameID} {json} EX ttl
type GameRepository struct {
	client *redis.Client
	loader GameLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewGameRepository(client *redis.Client, loader GameLoader, ttl time.Duration) *GameRepository {
	return &GameRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *GameRepository) GetGame(ctx context.Context, gameID string) (domain.Game, error) {
	if game, ok := r.cached(ctx, gameID); ok {
		return game, nil
	}

	result, err, _ := r.sf.Do(gameID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if game, ok := r.cached(ctx, gameID); ok {
			return game, nil
		}

		game, err := r.loader.LoadGame(ctx, gameID)
		if err != nil {
			return domain.Game{}, err
		}

		if data, err := json.Marshal(game); err == nil {
			// best-effort fill; the loaded game is still served on failure
			_ = r.client.Set(ctx, r.key(gameID), data, r.ttlWithJitter()).Err()
		}
		return game, nil
	})
	if err != nil {
		return domain.Game{}, err
	}
	return result.(domain.Game), nil
}

// ListGames always reads through to the loader.
func (r *GameRepository) ListGames(ctx context.Context) ([]domain.GameBrief, error) {
	return r.loader.ListGames(ctx)
}

// Invalidate drops a cached game.
func (r *GameRepository) Invalidate(ctx context.Context, gameID string) error {
	return r.client.Del(ctx, r.key(gameID)).Err()
}

func (r *GameRepository) cached(ctx context.Context, gameID string) (domain.Game, bool) {
	data, err := r.client.Get(ctx, r.key(gameID)).Bytes()
	if err != nil {
		// redis.Nil is a plain miss; other errors also fall back to the loader.
		return domain.Game{}, false
	}
	var game domain.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return domain.Game{}, false
	}
	return game, true
}

func (r *GameRepository) key(gameID string) string {
	return "game:" + gameID
}

func (r *GameRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
