package streaks

import (
	"errors"
	"strings"
	"unicode"
)

var (
	ErrInvalidParticipant  = errors.New("participantId is required")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrInvalidMonth        = errors.New("month must be formatted as YYYY-MM")
)

// PersistenceError wraps a datastore failure with the operation that hit it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistenceError(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// NormalizeParticipantID trims the identifier and rejects blank or malformed
// values. Both UUIDs and numeric ids are accepted.
func NormalizeParticipantID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > 64 {
		return "", ErrInvalidParticipant
	}
	if strings.IndexFunc(id, unicode.IsSpace) >= 0 {
		return "", ErrInvalidParticipant
	}
	return id, nil
}
