// Package cardservice is the host around the known-word manager: it resolves
// run options against saved settings, serializes update and undo runs, and
// keeps the collection in sync with the vault.
package cardservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/kwm/internal/apperr"
	"github.com/starford/kwm/internal/collection"
	"github.com/starford/kwm/internal/manager"
	"github.com/starford/kwm/internal/parser"
	"github.com/starford/kwm/internal/storage"
	"github.com/starford/kwm/internal/tokenize"
)

// settingsKey stores the last-used options.
const settingsKey = "manager.options"

// Overrides replaces individual options of a run. Nil fields keep the
// last-used value.
type Overrides struct {
	SentencesDeck     *string            `json:"sentences_deck,omitempty"`
	WordsDeck         *string            `json:"words_deck,omitempty"`
	WordField         *string            `json:"word_field,omitempty"`
	Strategy          *tokenize.Strategy `json:"strategy,omitempty"`
	RequireAllKnown   *bool              `json:"require_all_known,omitempty"`
	IncludeUnreviewed *bool              `json:"include_unreviewed,omitempty"`
}

// Apply returns opts with every non-nil override set.
func (o Overrides) Apply(opts manager.Options) manager.Options {
	if o.SentencesDeck != nil {
		opts.SentencesDeck = *o.SentencesDeck
	}
	if o.WordsDeck != nil {
		opts.WordsDeck = *o.WordsDeck
	}
	if o.WordField != nil {
		opts.WordField = *o.WordField
	}
	if o.Strategy != nil {
		opts.Strategy = *o.Strategy
	}
	if o.RequireAllKnown != nil {
		opts.RequireAllKnown = *o.RequireAllKnown
	}
	if o.IncludeUnreviewed != nil {
		opts.IncludeUnreviewed = *o.IncludeUnreviewed
	}
	return opts
}

// Service coordinates the collection, the vault and the manager.
type Service struct {
	db       collection.Collection
	store    storage.Provider
	defaults manager.Options
	logger   *slog.Logger

	// mu serializes passes, undos and syncs.
	mu sync.Mutex
}

// NewService creates a card service. defaults are used until a run saves
// its own settings.
func NewService(db collection.Collection, store storage.Provider, defaults manager.Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{db: db, store: store, defaults: defaults, logger: logger}
}

// Settings returns the last-used options, or the configured defaults when
// nothing has been saved.
func (s *Service) Settings(ctx context.Context) (manager.Options, error) {
	opts := s.defaults
	if _, err := s.db.LoadSettings(ctx, settingsKey, &opts); err != nil {
		return manager.Options{}, err
	}
	return opts, nil
}

// Update runs one pass with the saved settings merged with ov and saves the
// merged options once the pass succeeds. A dry run computes the report
// without changing cards or settings.
func (s *Service) Update(ctx context.Context, ov Overrides, dryRun bool) (*manager.Changes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	opts := ov.Apply(saved)
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("cardservice: invalid options: %w", err)
	}

	field, err := s.resolveField(ctx, opts.WordsDeck, opts.WordField)
	if err != nil {
		return nil, err
	}
	opts.WordField = field

	if dryRun {
		plan, err := manager.New(s.db, s.logger).Plan(ctx, opts)
		if err != nil {
			return nil, err
		}
		return &manager.Changes{
			Report:      plan.Report,
			Suspended:   len(plan.Result.ToSuspend),
			Unsuspended: len(plan.Result.ToUnsuspend),
		}, nil
	}

	changes, err := manager.UpdateManagedCards(ctx, s.db, s.logger, opts)
	if err != nil {
		return nil, err
	}
	if err := s.db.SaveSettings(ctx, settingsKey, opts); err != nil {
		return nil, err
	}
	s.logger.Info("update: applied",
		slog.Int("suspended", changes.Suspended),
		slog.Int("unsuspended", changes.Unsuspended),
		slog.String("token", changes.Token))
	return changes, nil
}

// resolveField matches name against the fields of deck ignoring case and
// returns the deck's spelling. Unknown names are returned unchanged.
func (s *Service) resolveField(ctx context.Context, deck, name string) (string, error) {
	fields, err := s.db.ListFields(ctx, deck)
	if err != nil {
		return "", err
	}
	for _, f := range fields {
		if f == name {
			return f, nil
		}
	}
	for _, f := range fields {
		if strings.EqualFold(f, name) {
			return f, nil
		}
	}
	return name, nil
}

// Undo reverts the update recorded under token and returns how many cards
// were restored.
func (s *Service) Undo(ctx context.Context, token string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.db.Undo(ctx, token)
	if err != nil {
		return 0, err
	}
	s.logger.Info("undo: applied", slog.String("token", token), slog.Int("restored", n))
	return n, nil
}

// ListDecks returns every deck name in the collection.
func (s *Service) ListDecks(ctx context.Context) ([]string, error) {
	return s.db.ListDecks(ctx)
}

// ListFields returns the field names used by notes of deck.
func (s *Service) ListFields(ctx context.Context, deck string) ([]string, error) {
	fields, err := s.db.ListFields(ctx, deck)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("cardservice: deck %q: %w", deck, apperr.ErrNotFound)
	}
	return fields, nil
}

// Sync re-imports the vault into the collection.
func (s *Service) Sync(_ context.Context) (collection.SyncStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return collection.Sync(s.db, s.store, s.logger)
}

// CreateNote writes a new note file into the vault and imports it. The
// content is parsed first so a malformed note never reaches the vault.
func (s *Service) CreateNote(_ context.Context, notePath string, content []byte) error {
	if err := validateNotePath(notePath); err != nil {
		return err
	}
	if _, err := parser.Parse(content); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.Read(notePath); err == nil {
		return fmt.Errorf("cardservice: note %s: %w", notePath, apperr.ErrAlreadyExists)
	}
	if err := s.store.Write(notePath, content); err != nil {
		return err
	}
	if err := collection.IndexFile(s.db, notePath, content); err != nil {
		return err
	}
	s.logger.Info("note created", slog.String("path", notePath))
	return nil
}

// DeleteNote removes a note file from the vault and its cards from the
// collection.
func (s *Service) DeleteNote(_ context.Context, notePath string) error {
	if err := validateNotePath(notePath); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(notePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("cardservice: note %s: %w", notePath, apperr.ErrNotFound)
		}
		return err
	}
	if err := s.db.DeleteNote(notePath); err != nil {
		return err
	}
	s.logger.Info("note deleted", slog.String("path", notePath))
	return nil
}

func validateNotePath(notePath string) error {
	return validation.Validate(notePath,
		validation.Required,
		validation.By(func(any) error {
			base := path.Base(notePath)
			if !strings.HasSuffix(base, storage.NoteExt) || strings.HasPrefix(base, ".") {
				return errors.New("must name a visible .md file")
			}
			return nil
		}),
	)
}

// AutoUpdate runs an update with the saved settings once changes has been
// quiet for delay, until ctx is cancelled or changes is closed. Failed runs
// are logged and do not stop the loop.
func (s *Service) AutoUpdate(ctx context.Context, changes <-chan struct{}, delay time.Duration) {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			if timer == nil {
				timer = time.NewTimer(delay)
				fire = timer.C
			} else {
				timer.Reset(delay)
			}
		case <-fire:
			if _, err := s.Update(ctx, Overrides{}, false); err != nil {
				level := slog.LevelError
				var sev apperr.Severe
				if errors.As(err, &sev) {
					level = slog.LevelWarn
				}
				s.logger.Log(ctx, level, "auto update failed", slog.String("error", err.Error()))
			}
		}
	}
}
