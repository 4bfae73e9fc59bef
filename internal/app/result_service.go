package app

import (
	"context"
	"time"

	"persona-quiz-service/internal/domain"
	"golang.org/x/sync/errgroup"
)

// GameRepository loads game content (from cache/backing store).
type GameRepository interface {
	GetGame(ctx context.Context, gameID string) (domain.Game, error)
	ListGames(ctx context.Context) ([]domain.GameBrief, error)
}

// TokenResolver maps an access token to a user id.
// Unknown or malformed tokens fail with domain.ErrUnauthorized.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// ResultStore persists one result per (game, user).
type ResultStore interface {
	// Upsert replaces the record for (GameID, UserID) or creates it.
	Upsert(ctx context.Context, record domain.ResultRecord) error
	// FindByUser returns the most recently updated result of the user joined
	// with its game and person.
	FindByUser(ctx context.Context, userID string) (domain.ResultView, error)
}

// ResultService scores submissions and serves stored results.
type ResultService struct {
	games   GameRepository
	tokens  TokenResolver
	results ResultStore
	now     func() time.Time
}

func NewResultService(games GameRepository, tokens TokenResolver, results ResultStore) *ResultService {
	return NewResultServiceWithClock(games, tokens, results, time.Now)
}

// NewResultServiceWithClock is test-only for deterministic timestamps.
func NewResultServiceWithClock(games GameRepository, tokens TokenResolver, results ResultStore, now func() time.Time) *ResultService {
	return &ResultService{games: games, tokens: tokens, results: results, now: now}
}

// ListGames returns every game without its questions.
func (s *ResultService) ListGames(ctx context.Context) ([]domain.GameBrief, error) {
	games, err := s.games.ListGames(ctx)
	if err != nil {
		return nil, domain.Internal("list games", err)
	}
	return games, nil
}

// Questions returns the questions of a game with the right answers stripped.
func (s *ResultService) Questions(ctx context.Context, gameID string) ([]domain.PublicQuestion, error) {
	game, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return nil, domain.Internal("load game", err)
	}
	out := make([]domain.PublicQuestion, 0, len(game.Questions))
	for _, q := range game.Questions {
		out = append(out, domain.PublicQuestion{
			Index:    q.Index,
			Question: q.Question,
			Answers:  q.Answers,
		})
	}
	return out, nil
}

// SubmitAnswers validates and scores a submission, matches a person by the
// number of right answers and stores the outcome for the token's user.
func (s *ResultService) SubmitAnswers(ctx context.Context, gameID string, answers []domain.SubmittedAnswer, token string) (domain.SubmissionResult, error) {
	var (
		game     domain.Game
		gameErr  error
		userID   string
		tokenErr error
		g        errgroup.Group
	)
	// No shared context: a rejected token must not cancel the game load.
	// Both reads always finish and their errors are reported in a fixed order
	// below, so the first error from Wait is not used.
	g.Go(func() error {
		game, gameErr = s.games.GetGame(ctx, gameID)
		return gameErr
	})
	g.Go(func() error {
		userID, tokenErr = s.tokens.Resolve(ctx, token)
		return tokenErr
	})
	_ = g.Wait()

	if gameErr != nil {
		return domain.SubmissionResult{}, domain.Internal("load game", gameErr)
	}
	if err := validateSubmission(game, answers); err != nil {
		return domain.SubmissionResult{}, err
	}

	scored := scoreAnswers(game, answers)
	rightCount := countRight(scored)
	person := matchPerson(game.Persons, rightCount)

	if tokenErr != nil {
		return domain.SubmissionResult{}, domain.Internal("resolve token", tokenErr)
	}

	record := domain.ResultRecord{
		GameID:            game.ID,
		UserID:            userID,
		RightAnswersCount: rightCount,
		Answers:           scored,
		UpdatedAt:         s.now(),
	}
	if person != nil {
		id := person.ID
		record.PersonID = &id
	}
	if err := s.results.Upsert(ctx, record); err != nil {
		return domain.SubmissionResult{}, domain.Internal("store result", err)
	}

	return domain.SubmissionResult{Person: person, Answers: scored}, nil
}

// UserResult returns the stored result of the token's user. The lookup is not
// scoped to a game: the most recently updated result wins.
func (s *ResultService) UserResult(ctx context.Context, token string) (domain.ResultView, error) {
	userID, err := s.tokens.Resolve(ctx, token)
	if err != nil {
		return domain.ResultView{}, domain.Internal("resolve token", err)
	}
	view, err := s.results.FindByUser(ctx, userID)
	if err != nil {
		return domain.ResultView{}, domain.Internal("find result", err)
	}
	return view, nil
}

// validateSubmission rejects submissions that miss a question, reference an
// unknown index or answer the same question twice.
func validateSubmission(game domain.Game, answers []domain.SubmittedAnswer) error {
	if len(answers) == 0 {
		return domain.ErrMalformedSubmission
	}
	canonical := make(map[int]struct{}, len(game.Questions))
	for _, q := range game.Questions {
		canonical[q.Index] = struct{}{}
	}
	submitted := make(map[int]struct{}, len(answers))
	for _, a := range answers {
		if _, ok := canonical[a.Index]; !ok {
			return domain.ErrMalformedSubmission
		}
		submitted[a.Index] = struct{}{}
	}
	if len(submitted) != len(canonical) || len(submitted) != len(answers) {
		return domain.ErrMalformedSubmission
	}
	return nil
}

// scoreAnswers expects a validated submission and keeps its order.
func scoreAnswers(game domain.Game, answers []domain.SubmittedAnswer) []domain.ScoredAnswer {
	byIndex := make(map[int]domain.Question, len(game.Questions))
	for _, q := range game.Questions {
		byIndex[q.Index] = q
	}
	scored := make([]domain.ScoredAnswer, 0, len(answers))
	for _, a := range answers {
		q := byIndex[a.Index]
		scored = append(scored, domain.ScoredAnswer{
			Index:       a.Index,
			RightAnswer: q.RightAnswer,
			UserAnswer:  a.Answer,
			IsRight:     a.Answer == q.RightAnswer,
		})
	}
	return scored
}

func countRight(scored []domain.ScoredAnswer) int {
	n := 0
	for _, a := range scored {
		if a.IsRight {
			n++
		}
	}
	return n
}

// matchPerson returns the first person whose count equals rightCount, or nil.
func matchPerson(persons []domain.Person, rightCount int) *domain.Person {
	for i := range persons {
		if persons[i].Count == rightCount {
			p := persons[i]
			return &p
		}
	}
	return nil
}
