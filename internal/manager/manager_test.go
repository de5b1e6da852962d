package manager

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/starford/kwm/internal/apperr"
	"github.com/starford/kwm/internal/models"
	"github.com/starford/kwm/internal/tokenize"
)

func scenarioStore() *memStore {
	s := newMemStore()
	s.addNote("Words", 1, "word", "猫 犬")
	s.addNote("Words", 1, "word", "is")
	n1 := s.addNote("Sentences", 0, "Text", "猫 is cute")
	n2 := s.addNote("Sentences", 0, "Text", "犬 is")
	s.addCard(1, n1, models.CardStateActive)
	s.addCard(2, n2, models.CardStateSuspended)
	return s
}

func defaultOptions() Options {
	return Options{
		SentencesDeck: "Sentences",
		WordsDeck:     "Words",
		WordField:     "word",
		Strategy:      tokenize.SpaceSeparated,
	}
}

func TestUpdateManagedCards(t *testing.T) {
	s := scenarioStore()
	ctx := context.Background()

	changes, err := UpdateManagedCards(ctx, s, nil, defaultOptions())
	if err != nil {
		t.Fatalf("UpdateManagedCards: %v", err)
	}
	if changes.Suspended != 1 || changes.Unsuspended != 1 {
		t.Errorf("changes = %+v", changes)
	}
	if changes.Token == "" {
		t.Error("expected an undo token")
	}
	if s.cards[1].State != models.CardStateSuspended || s.cards[2].State != models.CardStateActive {
		t.Errorf("states not applied: 1=%s 2=%s", s.cards[1].State, s.cards[2].State)
	}
	for _, want := range []string{"Known Words: is 犬 猫", "1 (猫 is cute)", "2 (犬 is)"} {
		if !strings.Contains(changes.Report, want) {
			t.Errorf("report missing %q:\n%s", want, changes.Report)
		}
	}

	// Nothing left to do on the second run, and no undo entry is recorded.
	again, err := UpdateManagedCards(ctx, s, nil, defaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if again.Token != "" || again.Suspended != 0 || again.Unsuspended != 0 {
		t.Errorf("second run = %+v", again)
	}
	if s.applied != 1 {
		t.Errorf("applied %d times, want 1", s.applied)
	}
}

func TestPlan_HasNoSideEffects(t *testing.T) {
	s := scenarioStore()
	plan, err := New(s, nil).Plan(context.Background(), defaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if plan.Result.Empty() {
		t.Fatal("expected transitions")
	}
	if s.applied != 0 || s.cards[1].State != models.CardStateActive {
		t.Error("Plan must not change card states")
	}
}

func TestUpdateManagedCards_DomainErrorsBeforeMutation(t *testing.T) {
	ctx := context.Background()

	t.Run("empty vocabulary", func(t *testing.T) {
		s := newMemStore()
		n := s.addNote("Sentences", 0, "Text", "x")
		s.addCard(1, n, models.CardStateActive)
		_, err := UpdateManagedCards(ctx, s, nil, defaultOptions())
		var empty *apperr.EmptySourceError
		if !errors.As(err, &empty) {
			t.Fatalf("err = %v", err)
		}
		if s.applied != 0 {
			t.Error("store mutated")
		}
	})

	t.Run("empty sentence deck", func(t *testing.T) {
		s := newMemStore()
		s.addNote("Words", 1, "word", "猫")
		_, err := UpdateManagedCards(ctx, s, nil, defaultOptions())
		var empty *apperr.EmptyDeckError
		if !errors.As(err, &empty) {
			t.Fatalf("err = %v", err)
		}
		if s.applied != 0 {
			t.Error("store mutated")
		}
	})
}

func TestOptionsValidate(t *testing.T) {
	opts := defaultOptions()
	if err := opts.Validate(); err != nil {
		t.Fatalf("valid options rejected: %v", err)
	}

	bad := []func(o *Options){
		func(o *Options) { o.SentencesDeck = "" },
		func(o *Options) { o.WordsDeck = "" },
		func(o *Options) { o.WordField = "" },
		func(o *Options) { o.Strategy = 0 },
	}
	for i, mutate := range bad {
		o := defaultOptions()
		mutate(&o)
		if err := o.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}

	if _, err := New(newMemStore(), nil).Plan(context.Background(), Options{}); err == nil {
		t.Error("Plan should reject invalid options")
	}
}
