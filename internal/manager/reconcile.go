package manager

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/starford/kwm/internal/apperr"
	"github.com/starford/kwm/internal/models"
	"github.com/starford/kwm/internal/tokenize"
)

// Transition is one card whose suspend state has to change.
type Transition struct {
	CardID  models.CardID `json:"card_id"`
	Summary string        `json:"summary"`
}

// Result is the outcome of one reconciliation pass.
type Result struct {
	ToSuspend   []Transition
	ToUnsuspend []Transition
	// Ignored counts cards skipped because their note was ignorable.
	Ignored int
}

// SuspendIDs returns the ids of ToSuspend in pass order.
func (r *Result) SuspendIDs() []models.CardID { return transitionIDs(r.ToSuspend) }

// UnsuspendIDs returns the ids of ToUnsuspend in pass order.
func (r *Result) UnsuspendIDs() []models.CardID { return transitionIDs(r.ToUnsuspend) }

// Empty reports whether the pass produced no transition.
func (r *Result) Empty() bool {
	return len(r.ToSuspend) == 0 && len(r.ToUnsuspend) == 0
}

func transitionIDs(ts []Transition) []models.CardID {
	out := make([]models.CardID, len(ts))
	for i, t := range ts {
		out[i] = t.CardID
	}
	return out
}

// Reconcile walks the cards of sentencesDeck in ascending id order and
// returns the cards whose current state differs from their verdict.
// Ineligible cards should be suspended, eligible ones active. Cards that
// already match are left out.
//
// Every non-ignored note adds its words to the seen set after it is
// classified, whether or not it was eligible.
func (m *Manager) Reconcile(ctx context.Context, sentencesDeck string, known tokenize.WordSet, strategy tokenize.Strategy, requireAllKnown bool) (*Result, error) {
	ids, err := m.src.FindCardIDs(ctx, sentencesDeck)
	if err != nil {
		return nil, fmt.Errorf("manager: find sentence cards: %w", err)
	}
	if len(ids) == 0 {
		return nil, &apperr.EmptyDeckError{Deck: sentencesDeck}
	}
	ids = slices.Clone(ids)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	res := &Result{}
	seen := make(tokenize.WordSet)
	notes := make(map[models.NoteID]*models.Note)

	for _, id := range ids {
		card, err := m.src.GetCard(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("manager: load card %d: %w", id, err)
		}
		note, ok := notes[card.NoteID]
		if !ok {
			note, err = m.src.GetNote(ctx, card.NoteID)
			if err != nil {
				return nil, fmt.Errorf("manager: load note %d of card %d: %w", card.NoteID, id, err)
			}
			notes[card.NoteID] = note
		}

		c := Classify(note, strategy, known, seen, requireAllKnown)
		if c.Ignored {
			res.Ignored++
			continue
		}

		switch {
		case !c.Eligible && !card.Suspended():
			res.ToSuspend = append(res.ToSuspend, Transition{CardID: id, Summary: SummarizeNote(note)})
			m.logger.Debug("card ineligible",
				slog.Int64("card_id", int64(id)),
				slog.Int("unknown", len(c.Unknown)),
				slog.Bool("redundant", c.Redundant))
		case c.Eligible && card.Suspended():
			res.ToUnsuspend = append(res.ToUnsuspend, Transition{CardID: id, Summary: SummarizeNote(note)})
			m.logger.Debug("card eligible", slog.Int64("card_id", int64(id)))
		}
		seen.Union(c.Words)
	}

	return res, nil
}
