package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrGameNotFound is returned when a game id does not reference a stored game.
	ErrGameNotFound = errors.New("game not found")
	// ErrResultNotFound is returned when the user has no stored result.
	ErrResultNotFound = errors.New("results not found")
	// ErrPersonNotFound is returned when a referenced person does not exist.
	ErrPersonNotFound = errors.New("person not found")
	// ErrAvatarNotFound is returned when an avatar id is unknown.
	ErrAvatarNotFound = errors.New("avatar not found")
	// ErrUnauthorized indicates the user token could not be resolved.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrMalformedSubmission indicates missing, unknown or duplicated question indexes.
	ErrMalformedSubmission = errors.New("wrong question data")
	// ErrInvalidGame indicates duplicate question indexes or out-of-range right answers.
	ErrInvalidGame = errors.New("invalid game data")
	// ErrConflict indicates a uniqueness violation when creating catalog entries.
	ErrConflict = errors.New("already exists")
	// ErrLinkNotRelated indicates an avatar link that is not one of the avatar's links.
	ErrLinkNotRelated = errors.New("link does not relate to avatar")
	// ErrInternal marks failures of the system rather than of the caller's input.
	ErrInternal = errors.New("internal error")
)

// Kind groups errors so transports can map them to responses.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindUnauthorized
	KindMalformed
	KindConflict
	KindUnprocessable
)

// KindOf classifies err. Anything outside the taxonomy is internal.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrGameNotFound),
		errors.Is(err, ErrResultNotFound),
		errors.Is(err, ErrPersonNotFound),
		errors.Is(err, ErrAvatarNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrMalformedSubmission), errors.Is(err, ErrInvalidGame):
		return KindMalformed
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrLinkNotRelated):
		return KindUnprocessable
	default:
		return KindInternal
	}
}

// Internal wraps a lower-level failure as ErrInternal, keeping the cause.
// Errors that already belong to the taxonomy are returned unchanged.
func Internal(op string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != KindInternal || errors.Is(err, ErrInternal) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
}
