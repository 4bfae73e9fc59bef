package memory

import (
	"context"
	"errors"
	"sync"

	"persona-quiz-service/internal/domain"
)

type resultKey struct {
	gameID string
	userID string
}

// ResultStore is an in-memory implementation of app.ResultStore. Games and
// persons for result views are joined through the loader.
type ResultStore struct {
	games GameLoader

	mu      sync.RWMutex
	records map[resultKey]domain.ResultRecord
}

func NewResultStore(games GameLoader) *ResultStore {
	return &ResultStore{
		games:   games,
		records: make(map[resultKey]domain.ResultRecord),
	}
}

// Upsert replaces the whole record for (game, user); last writer wins.
func (s *ResultStore) Upsert(_ context.Context, record domain.ResultRecord) error {
	record.Answers = append([]domain.ScoredAnswer(nil), record.Answers...)
	s.mu.Lock()
	s.records[resultKey{gameID: record.GameID, userID: record.UserID}] = record
	s.mu.Unlock()
	return nil
}

func (s *ResultStore) FindByUser(ctx context.Context, userID string) (domain.ResultView, error) {
	s.mu.RLock()
	var (
		latest domain.ResultRecord
		found  bool
	)
	for key, rec := range s.records {
		if key.userID != userID {
			continue
		}
		if !found || newer(rec, latest) {
			latest, found = rec, true
		}
	}
	s.mu.RUnlock()
	if !found {
		return domain.ResultView{}, domain.ErrResultNotFound
	}

	view := domain.ResultView{
		GameID:            latest.GameID,
		RightAnswersCount: latest.RightAnswersCount,
		Answers:           latest.Answers,
	}
	game, err := s.games.LoadGame(ctx, latest.GameID)
	if err != nil && !errors.Is(err, domain.ErrGameNotFound) {
		return domain.ResultView{}, err
	}
	view.GameTitle = game.Title
	if latest.PersonID != nil {
		for i := range game.Persons {
			if game.Persons[i].ID == *latest.PersonID {
				p := game.Persons[i]
				view.Person = &p
				break
			}
		}
	}
	return view, nil
}

// newer orders by UpdatedAt descending, then by game id.
func newer(a, b domain.ResultRecord) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.GameID < b.GameID
}

// Count returns the number of stored records.
func (s *ResultStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Get returns the record for (game, user).
func (s *ResultStore) Get(gameID, userID string) (domain.ResultRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[resultKey{gameID: gameID, userID: userID}]
	return rec, ok
}
