package api

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/kwm/internal/cardservice"
	"github.com/starford/kwm/internal/manager"
	"github.com/starford/kwm/internal/tokenize"
)

// UpdateRequest is the request body for an update run. Omitted fields fall
// back to the last-used settings.
type UpdateRequest struct {
	SentencesDeck     *string `json:"sentences_deck,omitempty" example:"Japanese::Sentences"`
	WordsDeck         *string `json:"words_deck,omitempty" example:"Japanese::Words"`
	WordField         *string `json:"word_field,omitempty" example:"Word"`
	Strategy          *string `json:"strategy,omitempty" example:"Kanji" enums:"Space-separated,Kanji"`
	RequireAllKnown   *bool   `json:"require_all_known,omitempty"`
	IncludeUnreviewed *bool   `json:"include_unreviewed,omitempty"`
}

// Validate validates the request.
func (r *UpdateRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.SentencesDeck, validation.NilOrNotEmpty),
		validation.Field(&r.WordsDeck, validation.NilOrNotEmpty),
		validation.Field(&r.WordField, validation.NilOrNotEmpty),
		validation.Field(&r.Strategy, validation.NilOrNotEmpty, validation.By(knownStrategy)),
	)
}

func knownStrategy(v any) error {
	iv, _ := validation.Indirect(v)
	s, ok := iv.(string)
	if !ok || s == "" {
		return nil
	}
	if _, err := tokenize.ParseStrategy(s); err != nil {
		return errors.New("must be Space-separated or Kanji")
	}
	return nil
}

// Overrides converts a validated request into service overrides.
func (r *UpdateRequest) Overrides() cardservice.Overrides {
	ov := cardservice.Overrides{
		SentencesDeck:     r.SentencesDeck,
		WordsDeck:         r.WordsDeck,
		WordField:         r.WordField,
		RequireAllKnown:   r.RequireAllKnown,
		IncludeUnreviewed: r.IncludeUnreviewed,
	}
	if r.Strategy != nil {
		if s, err := tokenize.ParseStrategy(*r.Strategy); err == nil {
			ov.Strategy = &s
		}
	}
	return ov
}

// UpdateResponse is returned by an update run.
type UpdateResponse = manager.Changes

// SettingsResponse holds the options the next run starts from.
type SettingsResponse = manager.Options

// DeckListResponse lists deck names.
type DeckListResponse struct {
	Decks []string `json:"decks" validate:"required"`
}

// FieldListResponse lists the field names of a deck.
type FieldListResponse struct {
	Fields []string `json:"fields" validate:"required"`
}
