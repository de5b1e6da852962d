package manager

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/starford/kwm/internal/models"
	"github.com/starford/kwm/internal/tokenize"
)

const (
	maxSummaryRunes = 50
	maxWordsRunes   = 50
	maxListEntries  = 20
	emptyList       = "None"
)

// SummarizeNote returns the note's joined fields, truncated to 50 characters
// with a trailing "..." when longer. Field separators render as spaces.
func SummarizeNote(note *models.Note) string {
	s := strings.ReplaceAll(note.JoinedFields(), models.FieldSeparator, " ")
	if utf8.RuneCountInString(s) <= maxSummaryRunes {
		return s
	}
	return string([]rune(s)[:maxSummaryRunes]) + "..."
}

// SummarizeWords renders the known words sorted, space-joined for
// SpaceSeparated and concatenated for Kanji, truncated to 50 characters.
func SummarizeWords(words tokenize.WordSet, strategy tokenize.Strategy) string {
	sep := " "
	if strategy == tokenize.Kanji {
		sep = ""
	}
	s := strings.Join(words.Sorted(), sep)
	runes := []rune(s)
	if len(runes) <= maxWordsRunes {
		return s
	}
	return string(runes[:maxWordsRunes]) + moreMarker(len(runes)-maxWordsRunes)
}

// SummarizeList renders at most 20 transitions as "<id> (<summary>)" lines,
// followed by a marker counting the rest. An empty list renders as "None".
func SummarizeList(ts []Transition) []string {
	if len(ts) == 0 {
		return []string{emptyList}
	}
	n := min(len(ts), maxListEntries)
	out := make([]string, 0, n+1)
	for _, t := range ts[:n] {
		out = append(out, fmt.Sprintf("%d (%s)", t.CardID, t.Summary))
	}
	if len(ts) > maxListEntries {
		out = append(out, moreMarker(len(ts)-maxListEntries))
	}
	return out
}

func moreMarker(n int) string {
	return fmt.Sprintf("[...%d more...]", n)
}

// BuildReport renders the known words and both transition lists as a
// human-readable summary.
func BuildReport(known tokenize.WordSet, strategy tokenize.Strategy, suspended, unsuspended []Transition) string {
	var b strings.Builder
	b.WriteString("Known Words: ")
	b.WriteString(SummarizeWords(known, strategy))
	b.WriteString("\n\nSuspended cards:\n")
	b.WriteString(strings.Join(SummarizeList(suspended), "\n"))
	b.WriteString("\n\nUnsuspended cards:\n")
	b.WriteString(strings.Join(SummarizeList(unsuspended), "\n"))
	b.WriteString("\n")
	return b.String()
}
