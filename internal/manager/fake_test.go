package manager

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/kwm/internal/apperr"
	"github.com/starford/kwm/internal/models"
)

// memStore is an in-memory Store. Card ids are returned in insertion order,
// which tests use to check that the manager sorts them itself.
type memStore struct {
	notes     map[models.NoteID]*models.Note
	cards     map[models.CardID]*models.Card
	cardOrder []models.CardID
	nextNote  models.NoteID

	applied  int
	findErr  error
	getCalls int
}

func newMemStore() *memStore {
	return &memStore{
		notes: make(map[models.NoteID]*models.Note),
		cards: make(map[models.CardID]*models.Card),
	}
}

// addNote stores a note in deck with the given reviews and fields given as
// alternating name, value pairs.
func (s *memStore) addNote(deck string, reviews int, kv ...string) models.NoteID {
	s.nextNote++
	n := &models.Note{ID: s.nextNote, Deck: deck, Reviews: reviews}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Fields = append(n.Fields, models.Field{Name: kv[i], Value: kv[i+1]})
	}
	s.notes[n.ID] = n
	return n.ID
}

func (s *memStore) addCard(id models.CardID, note models.NoteID, state models.CardState) {
	s.cards[id] = &models.Card{ID: id, NoteID: note, State: state}
	s.cardOrder = append(s.cardOrder, id)
}

func inDeck(noteDeck, deck string) bool {
	return noteDeck == deck || strings.HasPrefix(noteDeck, deck+"::")
}

func (s *memStore) FindNoteIDs(_ context.Context, deck string, reviewedOnly bool) ([]models.NoteID, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	var out []models.NoteID
	for id := models.NoteID(1); id <= s.nextNote; id++ {
		n, ok := s.notes[id]
		if !ok || !inDeck(n.Deck, deck) {
			continue
		}
		if reviewedOnly && !n.Reviewed() {
			continue
		}
		out = append(out, id)
	}
	return out, nil
}

func (s *memStore) FindCardIDs(_ context.Context, deck string) ([]models.CardID, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	var out []models.CardID
	for _, id := range s.cardOrder {
		if inDeck(s.notes[s.cards[id].NoteID].Deck, deck) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *memStore) GetNote(_ context.Context, id models.NoteID) (*models.Note, error) {
	s.getCalls++
	n, ok := s.notes[id]
	if !ok {
		return nil, fmt.Errorf("note %d: %w", id, apperr.ErrNotFound)
	}
	return n, nil
}

func (s *memStore) GetCard(_ context.Context, id models.CardID) (*models.Card, error) {
	c, ok := s.cards[id]
	if !ok {
		return nil, fmt.Errorf("card %d: %w", id, apperr.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) ApplyTransitions(_ context.Context, _ string, suspend, unsuspend []models.CardID) (string, error) {
	for _, id := range suspend {
		s.cards[id].State = models.CardStateSuspended
	}
	for _, id := range unsuspend {
		s.cards[id].State = models.CardStateActive
	}
	s.applied++
	return fmt.Sprintf("undo-%d", s.applied), nil
}
