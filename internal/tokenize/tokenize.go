// Package tokenize splits note text into word tokens using one of a closed
// set of strategies.
package tokenize

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Strategy selects how text is split into words.
type Strategy int

const (
	// SpaceSeparated treats every whitespace-delimited run as a word.
	SpaceSeparated Strategy = iota + 1
	// Kanji treats every CJK unified ideograph as a word.
	Kanji
)

// Strategies lists every supported strategy in display order.
var Strategies = []Strategy{SpaceSeparated, Kanji}

func (s Strategy) String() string {
	switch s {
	case SpaceSeparated:
		return "Space-separated"
	case Kanji:
		return "Kanji"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// IsValid reports whether s is one of the known strategies.
func (s Strategy) IsValid() bool {
	switch s {
	case SpaceSeparated, Kanji:
		return true
	}
	return false
}

// ParseStrategy resolves a strategy from its display name. Matching is
// case-insensitive and accepts a few common spellings.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "space-separated", "space_separated", "space separated", "space", "spaceseparated":
		return SpaceSeparated, nil
	case "kanji":
		return Kanji, nil
	}
	return 0, fmt.Errorf("tokenize: unknown strategy %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("tokenize: cannot marshal %s", s)
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	v, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// IsKanji reports whether r lies in the CJK Unified Ideographs block.
func IsKanji(r rune) bool {
	return r >= 0x4E00 && r < 0xA000
}

// HasKanji reports whether text contains at least one kanji.
func HasKanji(text string) bool {
	return strings.IndexFunc(text, IsKanji) >= 0
}

// IsSeparator reports whether r splits space-separated words. Besides Unicode
// whitespace this includes the ASCII information separators U+001C..U+001F,
// one of which joins note fields.
func IsSeparator(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1C && r <= 0x1F)
}

// IsBlank reports whether text holds nothing but separators.
func IsBlank(text string) bool {
	return strings.IndexFunc(text, func(r rune) bool { return !IsSeparator(r) }) < 0
}

// Tokenize returns the distinct words of text under strategy s.
// An unknown strategy yields an empty set.
func Tokenize(text string, s Strategy) WordSet {
	words := make(WordSet)
	switch s {
	case SpaceSeparated:
		for _, w := range strings.FieldsFunc(text, IsSeparator) {
			words.Add(w)
		}
	case Kanji:
		for _, r := range text {
			if IsKanji(r) {
				words.Add(string(r))
			}
		}
	}
	return words
}

// WordSet is an unordered set of words.
type WordSet map[string]struct{}

// NewWordSet returns a set holding words.
func NewWordSet(words ...string) WordSet {
	s := make(WordSet, len(words))
	for _, w := range words {
		s.Add(w)
	}
	return s
}

// Add inserts w.
func (s WordSet) Add(w string) { s[w] = struct{}{} }

// Has reports whether w is in the set.
func (s WordSet) Has(w string) bool {
	_, ok := s[w]
	return ok
}

// Len returns the number of words.
func (s WordSet) Len() int { return len(s) }

// Union adds every word of other to s.
func (s WordSet) Union(other WordSet) {
	for w := range other {
		s[w] = struct{}{}
	}
}

// ContainsAll reports whether every word of other is in s.
func (s WordSet) ContainsAll(other WordSet) bool {
	for w := range other {
		if _, ok := s[w]; !ok {
			return false
		}
	}
	return true
}

// Missing returns the words of other absent from s, sorted.
func (s WordSet) Missing(other WordSet) []string {
	var out []string
	for w := range other {
		if _, ok := s[w]; !ok {
			out = append(out, w)
		}
	}
	sort.Strings(out)
	return out
}

// Sorted returns the words in ascending order.
func (s WordSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of s.
func (s WordSet) Clone() WordSet {
	c := make(WordSet, len(s))
	c.Union(s)
	return c
}
