package app

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"persona-quiz-service/internal/domain"
	"github.com/google/uuid"
)

// Catalog is the write side of games and persons.
type Catalog interface {
	CreatePerson(ctx context.Context, person domain.Person) error
	ListPersons(ctx context.Context) ([]domain.Person, error)
	// FindPersons returns the persons that exist among ids.
	FindPersons(ctx context.Context, ids []string) ([]domain.Person, error)
	// CreateGame fails with domain.ErrConflict when the title is taken.
	CreateGame(ctx context.Context, game domain.Game) error
	// DeleteGame returns the title of the removed game.
	DeleteGame(ctx context.Context, gameID string) (string, error)
}

const (
	fakeQuestions = 8
	fakeAnswers   = 4
)

// AdminService authors games and persons. It is reached from the CLI only.
type AdminService struct {
	catalog Catalog
	rnd     *rand.Rand
}

func NewAdminService(catalog Catalog) *AdminService {
	return &AdminService{
		catalog: catalog,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreatePerson stores a person and returns its id.
func (s *AdminService) CreatePerson(ctx context.Context, person domain.Person) (string, error) {
	if person.ID == "" {
		person.ID = uuid.NewString()
	}
	if err := s.catalog.CreatePerson(ctx, person); err != nil {
		return "", domain.Internal("create person", err)
	}
	return person.ID, nil
}

// ListPersons returns every person ordered by count.
func (s *AdminService) ListPersons(ctx context.Context) ([]domain.Person, error) {
	persons, err := s.catalog.ListPersons(ctx)
	if err != nil {
		return nil, domain.Internal("list persons", err)
	}
	return persons, nil
}

// CreateGame checks that every referenced person exists and that question
// indexes are unique with in-range right answers, then stores the game.
func (s *AdminService) CreateGame(ctx context.Context, in domain.NewGame) (string, error) {
	if err := validateQuestions(in.Questions); err != nil {
		return "", err
	}
	persons, err := s.catalog.FindPersons(ctx, in.PersonIDs)
	if err != nil {
		return "", domain.Internal("find persons", err)
	}
	if len(persons) != len(in.PersonIDs) {
		return "", domain.ErrPersonNotFound
	}

	game := domain.Game{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Link:        in.Link,
		Questions:   in.Questions,
		Persons:     persons,
	}
	if err := s.catalog.CreateGame(ctx, game); err != nil {
		return "", domain.Internal("create game", err)
	}
	return game.ID, nil
}

// DeleteGame removes a game and returns its title.
func (s *AdminService) DeleteGame(ctx context.Context, gameID string) (string, error) {
	title, err := s.catalog.DeleteGame(ctx, gameID)
	if err != nil {
		return "", domain.Internal("delete game", err)
	}
	return title, nil
}

// CreateFakeGame builds a demo game with random right answers linked to the
// first persons of the catalog.
func (s *AdminService) CreateFakeGame(ctx context.Context, title string) (string, error) {
	persons, err := s.ListPersons(ctx)
	if err != nil {
		return "", err
	}
	if len(persons) > fakeQuestions {
		persons = persons[:fakeQuestions]
	}
	ids := make([]string, 0, len(persons))
	for _, p := range persons {
		ids = append(ids, p.ID)
	}

	questions := make([]domain.Question, 0, fakeQuestions)
	for i := 0; i < fakeQuestions; i++ {
		answers := make([]string, 0, fakeAnswers)
		for a := 1; a <= fakeAnswers; a++ {
			answers = append(answers, fmt.Sprintf("q-%d answer-%d", i, a))
		}
		questions = append(questions, domain.Question{
			Index:       i,
			Question:    fmt.Sprintf("question-%d", i+1),
			Answers:     answers,
			RightAnswer: s.rnd.Intn(fakeAnswers),
		})
	}

	return s.CreateGame(ctx, domain.NewGame{
		Title:       title,
		Description: title + "-description",
		Link:        "https://" + title + "-link",
		Questions:   questions,
		PersonIDs:   ids,
	})
}

func validateQuestions(questions []domain.Question) error {
	if len(questions) == 0 {
		return domain.ErrInvalidGame
	}
	seen := make(map[int]struct{}, len(questions))
	for _, q := range questions {
		if _, dup := seen[q.Index]; dup {
			return domain.ErrInvalidGame
		}
		seen[q.Index] = struct{}{}
		if q.RightAnswer < 0 || q.RightAnswer >= len(q.Answers) {
			return domain.ErrInvalidGame
		}
	}
	return nil
}
