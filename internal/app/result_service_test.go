package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"persona-quiz-service/internal/app"
	"persona-quiz-service/internal/domain"
	"persona-quiz-service/internal/infra/memory"
)

func TestSubmitAnswersScoresAndMatches(t *testing.T) {
	ctx := context.Background()
	service, results := newTestService()

	res, err := service.SubmitAnswers(ctx, "game-1", []domain.SubmittedAnswer{
		{Index: 0, Answer: 1},
		{Index: 1, Answer: 0},
		{Index: 2, Answer: 0},
		{Index: 3, Answer: 1},
	}, "token-1")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	want := []bool{true, true, false, true}
	if len(res.Answers) != len(want) {
		t.Fatalf("expected %d scored answers, got %d", len(want), len(res.Answers))
	}
	for i, w := range want {
		if res.Answers[i].IsRight != w {
			t.Fatalf("answer %d: expected isRight=%v, got %+v", i, w, res.Answers[i])
		}
	}
	if res.Person == nil || res.Person.ID != "p3" {
		t.Fatalf("expected person p3, got %+v", res.Person)
	}

	rec, ok := results.Get("game-1", "u1")
	if !ok {
		t.Fatalf("expected stored result")
	}
	if rec.RightAnswersCount != 3 || rec.PersonID == nil || *rec.PersonID != "p3" {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestSubmitAnswersKeepsSubmissionOrder(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	res, err := service.SubmitAnswers(ctx, "game-1", []domain.SubmittedAnswer{
		{Index: 3, Answer: 1},
		{Index: 0, Answer: 0},
		{Index: 2, Answer: 2},
		{Index: 1, Answer: 0},
	}, "token-1")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	order := []int{3, 0, 2, 1}
	for i, idx := range order {
		if res.Answers[i].Index != idx {
			t.Fatalf("expected index %d at position %d, got %+v", idx, i, res.Answers)
		}
	}
	if res.Answers[1].RightAnswer != 1 || res.Answers[1].UserAnswer != 0 || res.Answers[1].IsRight {
		t.Fatalf("unexpected scoring for index 0: %+v", res.Answers[1])
	}
}

func TestSubmitAnswersRejectsMalformed(t *testing.T) {
	ctx := context.Background()
	cases := map[string][]domain.SubmittedAnswer{
		"missing index":  {{Index: 0, Answer: 1}, {Index: 1, Answer: 0}, {Index: 2, Answer: 2}},
		"unknown index":  {{Index: 0, Answer: 1}, {Index: 1, Answer: 0}, {Index: 2, Answer: 2}, {Index: 7, Answer: 1}},
		"extra index":    {{Index: 0, Answer: 1}, {Index: 1, Answer: 0}, {Index: 2, Answer: 2}, {Index: 3, Answer: 1}, {Index: 4, Answer: 1}},
		"duplicate":      {{Index: 0, Answer: 1}, {Index: 0, Answer: 0}, {Index: 1, Answer: 2}, {Index: 2, Answer: 1}},
		"duplicate full": {{Index: 0, Answer: 1}, {Index: 1, Answer: 0}, {Index: 2, Answer: 2}, {Index: 3, Answer: 1}, {Index: 3, Answer: 0}},
		"duplicate only": {{Index: 0, Answer: 1}, {Index: 0, Answer: 1}, {Index: 0, Answer: 1}, {Index: 0, Answer: 1}},
		"empty":          nil,
	}
	for name, answers := range cases {
		t.Run(name, func(t *testing.T) {
			service, results := newTestService()
			_, err := service.SubmitAnswers(ctx, "game-1", answers, "token-1")
			if !errors.Is(err, domain.ErrMalformedSubmission) {
				t.Fatalf("expected malformed submission, got %v", err)
			}
			if results.Count() != 0 {
				t.Fatalf("expected no stored result, got %d", results.Count())
			}
		})
	}
}

func TestSubmitAnswersUnknownGame(t *testing.T) {
	service, _ := newTestService()
	_, err := service.SubmitAnswers(context.Background(), "missing", allRight(), "bad-token")
	if !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected game not found, got %v", err)
	}
	if err.Error() != "game not found" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestSubmitAnswersUnauthorizedWritesNothing(t *testing.T) {
	service, results := newTestService()
	_, err := service.SubmitAnswers(context.Background(), "game-1", allRight(), "bad-token")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if results.Count() != 0 {
		t.Fatalf("expected no stored result, got %d", results.Count())
	}
}

func TestSubmitAnswersValidationBeforeToken(t *testing.T) {
	service, _ := newTestService()
	_, err := service.SubmitAnswers(context.Background(), "game-1", []domain.SubmittedAnswer{{Index: 0, Answer: 1}}, "bad-token")
	if !errors.Is(err, domain.ErrMalformedSubmission) {
		t.Fatalf("expected malformed submission first, got %v", err)
	}
}

func TestSubmitAnswersRejectedTokenDoesNotCancelGameLoad(t *testing.T) {
	catalog := memory.NewCatalog(sampleGame())
	games := slowGames{GameRepository: memory.NewGameRepository(catalog, time.Minute), delay: 20 * time.Millisecond}
	tokens := memory.NewTokenStore(map[string]string{"token-1": "u1"})
	service := app.NewResultService(games, tokens, memory.NewResultStore(catalog))

	_, err := service.SubmitAnswers(context.Background(), "game-1", []domain.SubmittedAnswer{{Index: 0, Answer: 1}}, "bad-token")
	if !errors.Is(err, domain.ErrMalformedSubmission) {
		t.Fatalf("expected malformed submission after slow load, got %v", err)
	}
}

func TestSubmitAnswersGameDeletedBeforeStore(t *testing.T) {
	catalog := memory.NewCatalog(sampleGame())
	tokens := memory.NewTokenStore(map[string]string{"token-1": "u1"})
	service := app.NewResultService(memory.NewGameRepository(catalog, time.Minute), tokens, deletedGameStore{})

	_, err := service.SubmitAnswers(context.Background(), "game-1", allRight(), "token-1")
	if !errors.Is(err, domain.ErrGameNotFound) || domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("expected game not found, got %v", err)
	}
}

func TestSubmitAnswersNoMatchingPerson(t *testing.T) {
	ctx := context.Background()
	service, results := newTestService()

	// Two right answers; no person has count 2.
	res, err := service.SubmitAnswers(ctx, "game-1", []domain.SubmittedAnswer{
		{Index: 0, Answer: 1},
		{Index: 1, Answer: 0},
		{Index: 2, Answer: 0},
		{Index: 3, Answer: 0},
	}, "token-1")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if res.Person != nil {
		t.Fatalf("expected no person, got %+v", res.Person)
	}
	rec, _ := results.Get("game-1", "u1")
	if rec.RightAnswersCount != 2 || rec.PersonID != nil {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestResubmissionKeepsSingleRecord(t *testing.T) {
	ctx := context.Background()
	service, results := newTestService()

	first, err := service.SubmitAnswers(ctx, "game-1", allRight(), "token-1")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	second, err := service.SubmitAnswers(ctx, "game-1", allRight(), "token-1")
	if err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if results.Count() != 1 {
		t.Fatalf("expected one record, got %d", results.Count())
	}
	for i := range first.Answers {
		if first.Answers[i] != second.Answers[i] {
			t.Fatalf("expected identical answers, got %+v and %+v", first.Answers, second.Answers)
		}
	}
	if first.Person == nil || second.Person == nil || first.Person.ID != second.Person.ID {
		t.Fatalf("expected same person, got %+v and %+v", first.Person, second.Person)
	}
}

func TestResubmissionReplacesRecord(t *testing.T) {
	ctx := context.Background()
	service, results := newTestService()

	if _, err := service.SubmitAnswers(ctx, "game-1", allRight(), "token-1"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	wrong := []domain.SubmittedAnswer{
		{Index: 0, Answer: 0},
		{Index: 1, Answer: 1},
		{Index: 2, Answer: 0},
		{Index: 3, Answer: 0},
	}
	if _, err := service.SubmitAnswers(ctx, "game-1", wrong, "token-1"); err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}

	rec, _ := results.Get("game-1", "u1")
	if results.Count() != 1 || rec.RightAnswersCount != 0 || rec.PersonID == nil || *rec.PersonID != "p0" {
		t.Fatalf("expected replaced record, got %+v", rec)
	}
	for _, a := range rec.Answers {
		if a.IsRight {
			t.Fatalf("expected answers replaced, got %+v", rec.Answers)
		}
	}
}

func TestConcurrentSubmissionsKeepSingleRecord(t *testing.T) {
	ctx := context.Background()
	service, results := newTestService()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := service.SubmitAnswers(ctx, "game-1", allRight(), "token-1"); err != nil {
				t.Errorf("submit failed: %v", err)
			}
		}()
	}
	wg.Wait()
	if results.Count() != 1 {
		t.Fatalf("expected one record, got %d", results.Count())
	}
}

func TestSubmitAnswersStoreFailureIsInternal(t *testing.T) {
	catalog := memory.NewCatalog(sampleGame())
	tokens := memory.NewTokenStore(map[string]string{"token-1": "u1"})
	service := app.NewResultService(memory.NewGameRepository(catalog, time.Minute), tokens, failingStore{})

	_, err := service.SubmitAnswers(context.Background(), "game-1", allRight(), "token-1")
	if !errors.Is(err, domain.ErrInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if domain.KindOf(err) != domain.KindInternal {
		t.Fatalf("expected internal kind, got %v", domain.KindOf(err))
	}
}

func TestUserResult(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	if _, err := service.UserResult(ctx, "token-1"); !errors.Is(err, domain.ErrResultNotFound) {
		t.Fatalf("expected results not found, got %v", err)
	}
	if _, err := service.UserResult(ctx, "bad-token"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	if _, err := service.SubmitAnswers(ctx, "game-1", allRight(), "token-1"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	view, err := service.UserResult(ctx, "token-1")
	if err != nil {
		t.Fatalf("user result: %v", err)
	}
	if view.GameID != "game-1" || view.GameTitle != "Heroes" || view.Person == nil || view.Person.Name != "Genius" {
		t.Fatalf("unexpected view %+v", view)
	}
	if len(view.Answers) != 4 {
		t.Fatalf("expected 4 answers, got %d", len(view.Answers))
	}
}

func TestQuestionsHideRightAnswers(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	questions, err := service.Questions(ctx, "game-1")
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if len(questions) != 4 || questions[2].Question != "q2" || len(questions[2].Answers) != 3 {
		t.Fatalf("unexpected questions %+v", questions)
	}
	if _, err := service.Questions(ctx, "missing"); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected game not found, got %v", err)
	}

	games, err := service.ListGames(ctx)
	if err != nil || len(games) != 1 || games[0].ID != "game-1" {
		t.Fatalf("unexpected games %+v (%v)", games, err)
	}
}

type failingStore struct{}

func (failingStore) Upsert(context.Context, domain.ResultRecord) error {
	return errors.New("connection refused")
}

func (failingStore) FindByUser(context.Context, string) (domain.ResultView, error) {
	return domain.ResultView{}, errors.New("connection refused")
}

type slowGames struct {
	app.GameRepository
	delay time.Duration
}

func (g slowGames) GetGame(ctx context.Context, gameID string) (domain.Game, error) {
	select {
	case <-time.After(g.delay):
	case <-ctx.Done():
		return domain.Game{}, ctx.Err()
	}
	return g.GameRepository.GetGame(ctx, gameID)
}

type deletedGameStore struct{ failingStore }

func (deletedGameStore) Upsert(context.Context, domain.ResultRecord) error {
	return domain.ErrGameNotFound
}

func allRight() []domain.SubmittedAnswer {
	return []domain.SubmittedAnswer{
		{Index: 0, Answer: 1},
		{Index: 1, Answer: 0},
		{Index: 2, Answer: 2},
		{Index: 3, Answer: 1},
	}
}

func newTestService() (*app.ResultService, *memory.ResultStore) {
	catalog := memory.NewCatalog(sampleGame())
	games := memory.NewGameRepository(catalog, 5*time.Minute)
	tokens := memory.NewTokenStore(map[string]string{"token-1": "u1"})
	results := memory.NewResultStore(catalog)
	return app.NewResultService(games, tokens, results), results
}

func sampleGame() domain.Game {
	question := func(i, right int) domain.Question {
		return domain.Question{
			Index:       i,
			Question:    "q" + string(rune('0'+i)),
			Answers:     []string{"a", "b", "c"},
			RightAnswer: right,
		}
	}
	return domain.Game{
		ID:    "game-1",
		Title: "Heroes",
		Questions: []domain.Question{
			question(0, 1),
			question(1, 0),
			question(2, 2),
			question(3, 1),
		},
		Persons: []domain.Person{
			{ID: "p0", Count: 0, Name: "Sidekick"},
			{ID: "p1", Count: 1, Name: "Rookie"},
			{ID: "p3", Count: 3, Name: "Hero"},
			{ID: "p4", Count: 4, Name: "Genius"},
		},
	}
}
