package memory

import (
	"context"
	"testing"
	"time"

	"persona-quiz-service/internal/domain"
)

func TestResultStoreUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewResultStore(NewCatalog(sampleGame()))
	p0, p1 := "p0", "p1"

	first := domain.ResultRecord{
		GameID: "game-1", UserID: "u1", RightAnswersCount: 1, PersonID: &p1,
		Answers:   []domain.ScoredAnswer{{Index: 0, RightAnswer: 1, UserAnswer: 1, IsRight: true}},
		UpdatedAt: time.Unix(100, 0),
	}
	if err := store.Upsert(ctx, first); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	second := domain.ResultRecord{
		GameID: "game-1", UserID: "u1", RightAnswersCount: 0, PersonID: &p0,
		Answers:   []domain.ScoredAnswer{{Index: 0, RightAnswer: 1, UserAnswer: 0, IsRight: false}},
		UpdatedAt: time.Unix(200, 0),
	}
	if err := store.Upsert(ctx, second); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if store.Count() != 1 {
		t.Fatalf("expected one record, got %d", store.Count())
	}
	view, err := store.FindByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if view.GameTitle != "Heroes" || view.Person == nil || view.Person.ID != "p0" {
		t.Fatalf("expected replaced view joined with game and person, got %+v", view)
	}
	if len(view.Answers) != 1 || view.Answers[0].IsRight {
		t.Fatalf("expected replaced answers, got %+v", view.Answers)
	}
}

func TestResultStoreFindByUserPicksLatest(t *testing.T) {
	ctx := context.Background()
	other := sampleGame()
	other.ID, other.Title = "game-2", "Villains"
	store := NewResultStore(NewCatalog(sampleGame(), other))

	_ = store.Upsert(ctx, domain.ResultRecord{GameID: "game-1", UserID: "u1", UpdatedAt: time.Unix(100, 0)})
	_ = store.Upsert(ctx, domain.ResultRecord{GameID: "game-2", UserID: "u1", UpdatedAt: time.Unix(300, 0)})
	_ = store.Upsert(ctx, domain.ResultRecord{GameID: "game-1", UserID: "u2", UpdatedAt: time.Unix(500, 0)})

	view, err := store.FindByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if view.GameID != "game-2" || view.GameTitle != "Villains" || view.Person != nil {
		t.Fatalf("expected latest result without person, got %+v", view)
	}

	if _, err := store.FindByUser(ctx, "u3"); err != domain.ErrResultNotFound {
		t.Fatalf("expected results not found, got %v", err)
	}
}

func TestResultStoreFindByUserBreaksTiesOnGame(t *testing.T) {
	ctx := context.Background()
	other := sampleGame()
	other.ID, other.Title = "game-2", "Villains"
	at := time.Unix(100, 0)

	for i := 0; i < 20; i++ {
		store := NewResultStore(NewCatalog(sampleGame(), other))
		_ = store.Upsert(ctx, domain.ResultRecord{GameID: "game-2", UserID: "u1", UpdatedAt: at})
		_ = store.Upsert(ctx, domain.ResultRecord{GameID: "game-1", UserID: "u1", UpdatedAt: at})

		view, err := store.FindByUser(ctx, "u1")
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if view.GameID != "game-1" {
			t.Fatalf("run %d: expected game-1 on equal timestamps, got %s", i, view.GameID)
		}
	}
}
