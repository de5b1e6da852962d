package manager

import (
	"github.com/starford/kwm/internal/models"
	"github.com/starford/kwm/internal/tokenize"
)

// Classification is the verdict for one sentence note.
type Classification struct {
	// Ignored notes are structurally unsuited to the strategy and are never
	// suspended or unsuspended.
	Ignored  bool
	Eligible bool
	// Redundant is set when every word already appeared in an earlier
	// sentence of the pass.
	Redundant bool
	// Unknown lists the words missing from the known set, sorted.
	Unknown []string
	// Words is the note's word set. Nil for ignored notes.
	Words tokenize.WordSet
}

// Ignorable reports whether a note has nothing the strategy can work with:
// no kanji under Kanji, blank text under SpaceSeparated.
func Ignorable(joined string, strategy tokenize.Strategy) bool {
	switch strategy {
	case tokenize.Kanji:
		return !tokenize.HasKanji(joined)
	case tokenize.SpaceSeparated:
		return tokenize.IsBlank(joined)
	}
	return false
}

// Classify decides whether note may be studied. seen is only read; folding
// the returned words into it is the caller's job.
func Classify(note *models.Note, strategy tokenize.Strategy, known, seen tokenize.WordSet, requireAllKnown bool) Classification {
	joined := note.JoinedFields()
	if Ignorable(joined, strategy) {
		return Classification{Ignored: true}
	}

	words := tokenize.Tokenize(joined, strategy)
	c := Classification{Words: words}
	c.Unknown = known.Missing(words)
	if requireAllKnown && words.Len() > 0 && seen.ContainsAll(words) {
		c.Redundant = true
	}
	c.Eligible = len(c.Unknown) == 0 && !c.Redundant
	return c
}
