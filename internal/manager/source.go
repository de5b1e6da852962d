// Package manager decides which sentence cards a learner is ready to study.
//
// Known words are collected from a vocabulary deck, every sentence card is
// classified against them, and the cards whose suspend state disagrees with
// the verdict are returned as transitions for the card store to apply.
package manager

import (
	"context"

	"github.com/starford/kwm/internal/models"
)

// Source is the read side of the card collection.
type Source interface {
	// FindNoteIDs returns the notes of deck (and its sub-decks). When
	// reviewedOnly is set only notes with at least one review are returned.
	FindNoteIDs(ctx context.Context, deck string, reviewedOnly bool) ([]models.NoteID, error)
	// FindCardIDs returns every card of deck (and its sub-decks).
	FindCardIDs(ctx context.Context, deck string) ([]models.CardID, error)
	GetNote(ctx context.Context, id models.NoteID) (*models.Note, error)
	GetCard(ctx context.Context, id models.CardID) (*models.Card, error)
}

// Applier applies a set of transitions as one undoable operation and returns
// a token identifying it.
type Applier interface {
	ApplyTransitions(ctx context.Context, label string, suspend, unsuspend []models.CardID) (string, error)
}

// Store is a collection the manager can both read and update.
type Store interface {
	Source
	Applier
}
