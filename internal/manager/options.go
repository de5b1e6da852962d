package manager

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/kwm/internal/tokenize"
)

// Options are the user-facing knobs of one update run.
type Options struct {
	SentencesDeck string            `json:"sentences_deck" yaml:"sentences_deck"`
	WordsDeck     string            `json:"words_deck" yaml:"words_deck"`
	WordField     string            `json:"word_field" yaml:"word_field"`
	Strategy      tokenize.Strategy `json:"strategy" yaml:"strategy"`
	// RequireAllKnown additionally suspends sentences whose words all
	// appeared in an earlier sentence of the same pass.
	RequireAllKnown bool `json:"require_all_known" yaml:"require_all_known"`
	// IncludeUnreviewed counts words of vocabulary notes that were never
	// reviewed.
	IncludeUnreviewed bool `json:"include_unreviewed" yaml:"include_unreviewed"`
}

// Validate validates the options.
func (o *Options) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.SentencesDeck, validation.Required),
		validation.Field(&o.WordsDeck, validation.Required),
		validation.Field(&o.WordField, validation.Required),
		validation.Field(&o.Strategy, validation.By(validStrategy)),
	)
}

func validStrategy(v any) error {
	s, _ := v.(tokenize.Strategy)
	if !s.IsValid() {
		return errors.New("must be a known tokenization strategy")
	}
	return nil
}
