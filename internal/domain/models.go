package domain

import "time"

// Person is a result category selected by the number of right answers.
type Person struct {
	ID          string `json:"id"`
	Count       int    `json:"count"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageLink   string `json:"imageLink"`
}

// Question models an MCQ question; RightAnswer indexes into Answers.
type Question struct {
	Index       int      `json:"index"`
	Question    string   `json:"question"`
	Answers     []string `json:"answers"`
	RightAnswer int      `json:"rightAnswer"`
}

// Game is a set of indexed questions plus the persons a player can be matched to.
type Game struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Link        string     `json:"link"`
	Questions   []Question `json:"questions"`
	Persons     []Person   `json:"persons"`
}

// GameBrief is the listing view of a game.
type GameBrief struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Link        string   `json:"link"`
	PersonIDs   []string `json:"persons"`
}

// PublicQuestion is a question as shown to players, without the right answer.
type PublicQuestion struct {
	Index    int      `json:"index"`
	Question string   `json:"question"`
	Answers  []string `json:"answers"`
}

// NewGame is the admin input for creating a game; persons are referenced by id.
type NewGame struct {
	Title       string
	Description string
	Link        string
	Questions   []Question
	PersonIDs   []string
}

// SubmittedAnswer is one answer sent by a player.
type SubmittedAnswer struct {
	Index  int `json:"index"`
	Answer int `json:"answer"`
}

// ScoredAnswer records the outcome of a single submitted answer.
type ScoredAnswer struct {
	Index       int  `json:"index"`
	RightAnswer int  `json:"rightAnswer"`
	UserAnswer  int  `json:"userAnswer"`
	IsRight     bool `json:"isRight"`
}

// SubmissionResult is returned to the player after scoring.
// Person is nil when no eligible person matches the right answer count.
type SubmissionResult struct {
	Person  *Person        `json:"person,omitempty"`
	Answers []ScoredAnswer `json:"answers"`
}

// ResultRecord is the persisted outcome, unique per (GameID, UserID).
type ResultRecord struct {
	GameID            string
	UserID            string
	RightAnswersCount int
	PersonID          *string
	Answers           []ScoredAnswer
	UpdatedAt         time.Time
}

// ResultView is a result record joined with its game and person.
type ResultView struct {
	GameID            string         `json:"gameId"`
	GameTitle         string         `json:"gameTitle"`
	RightAnswersCount int            `json:"rightAnswersCount"`
	Person            *Person        `json:"person,omitempty"`
	Answers           []ScoredAnswer `json:"answers"`
}

// Avatar is a catalog entry with the image links a user may pick from.
type Avatar struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Links []string `json:"links"`
}

// UserAvatar is the avatar link a user has chosen.
type UserAvatar struct {
	UserID   string
	AvatarID string
	Link     string
}

// HasLink reports whether link belongs to the avatar.
func (a Avatar) HasLink(link string) bool {
	for _, l := range a.Links {
		if l == link {
			return true
		}
	}
	return false
}
