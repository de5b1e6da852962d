package manager

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/starford/kwm/internal/apperr"
	"github.com/starford/kwm/internal/tokenize"
)

func TestCollectKnownWords_ReviewedNote(t *testing.T) {
	s := newMemStore()
	s.addNote("Words", 1, "word", "猫 犬")
	m := New(s, nil)

	known, err := m.CollectKnownWords(context.Background(), "Words", "word", tokenize.SpaceSeparated, false)
	if err != nil {
		t.Fatalf("CollectKnownWords: %v", err)
	}
	if got := strings.Join(known.Sorted(), " "); got != "犬 猫" {
		t.Errorf("known = %q, want %q", got, "犬 猫")
	}
}

func TestCollectKnownWords_ReviewFilter(t *testing.T) {
	s := newMemStore()
	s.addNote("Words", 2, "word", "a")
	s.addNote("Words", 0, "word", "b")
	m := New(s, nil)

	known, err := m.CollectKnownWords(context.Background(), "Words", "word", tokenize.SpaceSeparated, false)
	if err != nil {
		t.Fatal(err)
	}
	if known.Has("b") || !known.Has("a") {
		t.Errorf("reviewed only: %v", known.Sorted())
	}

	known, err = m.CollectKnownWords(context.Background(), "Words", "word", tokenize.SpaceSeparated, true)
	if err != nil {
		t.Fatal(err)
	}
	if !known.Has("a") || !known.Has("b") {
		t.Errorf("include unreviewed: %v", known.Sorted())
	}
}

func TestCollectKnownWords_MissingFieldSkipped(t *testing.T) {
	s := newMemStore()
	s.addNote("Words", 1, "Front", "x")
	s.addNote("Words", 1, "word", "y", "Front", "z")
	m := New(s, nil)

	known, err := m.CollectKnownWords(context.Background(), "Words", "word", tokenize.SpaceSeparated, false)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(known.Sorted(), ","); got != "y" {
		t.Errorf("known = %q, want only the word field", got)
	}
}

func TestCollectKnownWords_Kanji(t *testing.T) {
	s := newMemStore()
	s.addNote("Words", 1, "word", "日本語")
	m := New(s, nil)

	known, err := m.CollectKnownWords(context.Background(), "Words", "word", tokenize.Kanji, false)
	if err != nil {
		t.Fatal(err)
	}
	if known.Len() != 3 || !known.Has("語") {
		t.Errorf("known = %v", known.Sorted())
	}
}

func TestCollectKnownWords_EmptySource(t *testing.T) {
	s := newMemStore()
	s.addNote("Words", 0, "word", "never reviewed")
	m := New(s, nil)

	_, err := m.CollectKnownWords(context.Background(), "Words", "word", tokenize.SpaceSeparated, false)
	var empty *apperr.EmptySourceError
	if !errors.As(err, &empty) {
		t.Fatalf("err = %v, want EmptySourceError", err)
	}
	if empty.Deck != "Words" {
		t.Errorf("deck = %q", empty.Deck)
	}
	if sev, _ := apperr.SeverityOf(err); sev != apperr.SeverityCritical {
		t.Errorf("severity = %q", sev)
	}
}

func TestCollectKnownWords_SourceErrorPropagates(t *testing.T) {
	s := newMemStore()
	boom := errors.New("collection locked")
	s.findErr = boom
	m := New(s, nil)

	_, err := m.CollectKnownWords(context.Background(), "Words", "word", tokenize.SpaceSeparated, false)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
	if _, ok := apperr.SeverityOf(err); ok {
		t.Error("collaborator errors must not carry a severity")
	}
}
