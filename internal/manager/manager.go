package manager

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/kwm/internal/tokenize"
)

// UndoLabel names the undo entry recorded for an update.
const UndoLabel = "Update managed cards"

// Manager runs known-word passes against a card source.
type Manager struct {
	src    Source
	logger *slog.Logger
}

// New creates a Manager reading from src. A nil logger discards output.
func New(src Source, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{src: src, logger: logger}
}

// Plan is the desired change set computed by a pass. Computing it has no
// side effects.
type Plan struct {
	KnownWords tokenize.WordSet
	Result     *Result
	Report     string
}

// Changes is what an applied update hands back to the host.
type Changes struct {
	Report string `json:"report"`
	// Token identifies the undo entry. Empty when nothing changed.
	Token       string `json:"token,omitempty"`
	Suspended   int    `json:"suspended"`
	Unsuspended int    `json:"unsuspended"`
}

// Plan collects known words, reconciles the sentence deck and renders the
// report. Both domain errors are returned before any card is read from the
// sentence deck or changed.
func (m *Manager) Plan(ctx context.Context, opts Options) (*Plan, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("manager: invalid options: %w", err)
	}

	known, err := m.CollectKnownWords(ctx, opts.WordsDeck, opts.WordField, opts.Strategy, opts.IncludeUnreviewed)
	if err != nil {
		return nil, err
	}
	res, err := m.Reconcile(ctx, opts.SentencesDeck, known, opts.Strategy, opts.RequireAllKnown)
	if err != nil {
		return nil, err
	}

	m.logger.Info("pass computed",
		slog.String("sentences_deck", opts.SentencesDeck),
		slog.String("words_deck", opts.WordsDeck),
		slog.String("strategy", opts.Strategy.String()),
		slog.Int("known_words", known.Len()),
		slog.Int("to_suspend", len(res.ToSuspend)),
		slog.Int("to_unsuspend", len(res.ToUnsuspend)),
		slog.Int("ignored", res.Ignored))

	return &Plan{
		KnownWords: known,
		Result:     res,
		Report:     BuildReport(known, opts.Strategy, res.ToSuspend, res.ToUnsuspend),
	}, nil
}

// UpdateManagedCards computes a plan and has store apply it as a single
// undoable operation.
func UpdateManagedCards(ctx context.Context, store Store, logger *slog.Logger, opts Options) (*Changes, error) {
	plan, err := New(store, logger).Plan(ctx, opts)
	if err != nil {
		return nil, err
	}

	changes := &Changes{
		Report:      plan.Report,
		Suspended:   len(plan.Result.ToSuspend),
		Unsuspended: len(plan.Result.ToUnsuspend),
	}
	if plan.Result.Empty() {
		return changes, nil
	}

	token, err := store.ApplyTransitions(ctx, UndoLabel, plan.Result.SuspendIDs(), plan.Result.UnsuspendIDs())
	if err != nil {
		return nil, fmt.Errorf("manager: apply transitions: %w", err)
	}
	changes.Token = token
	return changes, nil
}
