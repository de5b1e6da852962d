// Package models defines the domain types shared by the card collection and
// the known-word manager.
package models

import (
	"strings"
	"time"
)

// FieldSeparator joins field values in Note.JoinedFields.
const FieldSeparator = "\x1f"

// NoteID identifies a note in the collection.
type NoteID int64

// Field is one named value of a note. Field order is significant.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Note is a read-only view of a note and its fields.
type Note struct {
	ID        NoteID    `json:"id"`
	Path      string    `json:"path"`
	Deck      string    `json:"deck"`
	Fields    []Field   `json:"fields"`
	Reviews   int       `json:"reviews"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Field returns the value of the named field and whether the note has it.
func (n *Note) Field(name string) (string, bool) {
	for _, f := range n.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// FieldNames returns the field names in note order.
func (n *Note) FieldNames() []string {
	out := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		out[i] = f.Name
	}
	return out
}

// JoinedFields concatenates all field values in order, separated by
// FieldSeparator.
func (n *Note) JoinedFields() string {
	vals := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		vals[i] = f.Value
	}
	return strings.Join(vals, FieldSeparator)
}

// Reviewed reports whether at least one review was recorded for the note.
func (n *Note) Reviewed() bool {
	return n.Reviews > 0
}

// FileMeta describes a note file in the vault.
type FileMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
