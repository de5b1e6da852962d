package models

import "testing"

func TestNote_FieldAccess(t *testing.T) {
	n := &Note{Fields: []Field{
		{Name: "Word", Value: "猫 犬"},
		{Name: "Meaning", Value: "cat dog"},
	}}

	if v, ok := n.Field("Word"); !ok || v != "猫 犬" {
		t.Errorf("Field(Word) = %q, %v", v, ok)
	}
	if _, ok := n.Field("word"); ok {
		t.Error("field lookup should be case-sensitive")
	}
	if _, ok := n.Field("Reading"); ok {
		t.Error("missing field reported present")
	}
	if got := n.JoinedFields(); got != "猫 犬\x1fcat dog" {
		t.Errorf("JoinedFields = %q", got)
	}
	if names := n.FieldNames(); len(names) != 2 || names[0] != "Word" || names[1] != "Meaning" {
		t.Errorf("FieldNames = %v", names)
	}
}

func TestNote_Reviewed(t *testing.T) {
	if (&Note{}).Reviewed() {
		t.Error("note without reviews reported reviewed")
	}
	if !(&Note{Reviews: 1}).Reviewed() {
		t.Error("note with a review reported unreviewed")
	}
}

func TestCardState(t *testing.T) {
	if !CardStateActive.IsValid() || !CardStateSuspended.IsValid() {
		t.Error("known states should be valid")
	}
	if CardState("buried").IsValid() {
		t.Error("unknown state should be invalid")
	}
	c := &Card{State: CardStateSuspended}
	if !c.Suspended() {
		t.Error("Suspended() = false for suspended card")
	}
}
