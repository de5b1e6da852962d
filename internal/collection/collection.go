package collection

import (
	"context"
	"strings"

	"github.com/starford/kwm/internal/manager"
	"github.com/starford/kwm/internal/models"
)

// Indexer is the part of the collection that vault import writes to.
type Indexer interface {
	UpsertNote(n NoteRow, cards int) (models.NoteID, error)
	DeleteNote(path string) error
	AllChecksums() (map[string]string, error)
}

// Collection is the full card-collection surface used by the host.
// Consumers should depend on this interface rather than *DB.
type Collection interface {
	manager.Store
	Indexer

	ListDecks(ctx context.Context) ([]string, error)
	ListFields(ctx context.Context, deck string) ([]string, error)
	Undo(ctx context.Context, token string) (int, error)
	LoadSettings(ctx context.Context, key string, v any) (bool, error)
	SaveSettings(ctx context.Context, key string, v any) error
	Close() error
}

// Verify *DB satisfies Collection at compile time.
var _ Collection = (*DB)(nil)

// DefaultDeck holds notes stored at the vault root.
const DefaultDeck = "Default"

// DeckSeparator separates parent and child deck names.
const DeckSeparator = "::"

// DeckForPath derives a deck name from a note's vault path: the directory
// with "/" replaced by "::", or DefaultDeck for files at the root.
func DeckForPath(path string) string {
	i := strings.LastIndex(path, "/")
	if i <= 0 {
		return DefaultDeck
	}
	return strings.ReplaceAll(path[:i], "/", DeckSeparator)
}

// deckFilter returns a WHERE fragment matching deck and its sub-decks on
// column col, and its arguments. Deck names compare case-insensitively.
func deckFilter(col, deck string) (string, []any) {
	return "(" + col + " = ? COLLATE NOCASE OR " + col + ` LIKE ? ESCAPE '\')`,
		[]any{deck, escapeLike(deck) + DeckSeparator + "%"}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
