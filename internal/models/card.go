package models

// CardID identifies a card in the collection.
type CardID int64

// CardState is the suspend state of a card.
type CardState string

const (
	CardStateActive    CardState = "active"
	CardStateSuspended CardState = "suspended"
)

func (s CardState) String() string { return string(s) }

func (s CardState) IsValid() bool {
	switch s {
	case CardStateActive, CardStateSuspended:
		return true
	}
	return false
}

// Card is one studyable unit of a note. Several cards may share a note.
type Card struct {
	ID     CardID    `json:"id"`
	NoteID NoteID    `json:"note_id"`
	Ord    int       `json:"ord"`
	State  CardState `json:"state"`
}

// Suspended reports whether the card is currently suspended.
func (c *Card) Suspended() bool {
	return c.State == CardStateSuspended
}
