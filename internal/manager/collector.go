package manager

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/kwm/internal/apperr"
	"github.com/starford/kwm/internal/tokenize"
)

// CollectKnownWords tokenizes wordField of every note in wordsDeck and
// returns the union. Unless includeUnreviewed is set only reviewed notes
// count. Notes without the field are skipped.
func (m *Manager) CollectKnownWords(ctx context.Context, wordsDeck, wordField string, strategy tokenize.Strategy, includeUnreviewed bool) (tokenize.WordSet, error) {
	ids, err := m.src.FindNoteIDs(ctx, wordsDeck, !includeUnreviewed)
	if err != nil {
		return nil, fmt.Errorf("manager: find vocabulary notes: %w", err)
	}
	if len(ids) == 0 {
		return nil, &apperr.EmptySourceError{Deck: wordsDeck}
	}

	known := make(tokenize.WordSet)
	skipped := 0
	for _, id := range ids {
		note, err := m.src.GetNote(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("manager: load vocabulary note %d: %w", id, err)
		}
		text, ok := note.Field(wordField)
		if !ok {
			skipped++
			continue
		}
		known.Union(tokenize.Tokenize(text, strategy))
	}

	m.logger.Debug("known words collected",
		slog.String("deck", wordsDeck),
		slog.Int("notes", len(ids)),
		slog.Int("skipped", skipped),
		slog.Int("words", known.Len()))
	return known, nil
}
