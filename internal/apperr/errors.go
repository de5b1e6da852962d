package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
)

// Severity tells the host how to present a domain error.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

// EmptySourceError means the vocabulary deck produced no notes under the
// current review filter. The user has to widen the criteria.
type EmptySourceError struct {
	Deck string
}

func (e *EmptySourceError) Error() string {
	return fmt.Sprintf("Deck '%s' is empty or does not match your criteria.", e.Deck)
}

// Severity implements Severe.
func (e *EmptySourceError) Severity() Severity { return SeverityCritical }

// EmptyDeckError means the sentence deck has no cards; nothing is changed.
type EmptyDeckError struct {
	Deck string
}

func (e *EmptyDeckError) Error() string {
	return fmt.Sprintf("No sentence cards in the deck %q were found. Nothing will happen.", e.Deck)
}

// Severity implements Severe.
func (e *EmptyDeckError) Severity() Severity { return SeverityWarning }

// Severe is implemented by errors that carry a presentation severity.
type Severe interface {
	error
	Severity() Severity
}

// SeverityOf returns the severity of the first Severe error in err's chain.
func SeverityOf(err error) (Severity, bool) {
	var s Severe
	if errors.As(err, &s) {
		return s.Severity(), true
	}
	return "", false
}
