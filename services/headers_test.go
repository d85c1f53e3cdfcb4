package services

import (
	"testing"

	"reservas/constants"
)

func TestMatchHeaders(t *testing.T) {
	present := []string{"habitacion", " TIPO  habitación", "Fecha Entrada", "Fecha Salda", "Precio Total", "Comentario"}
	m := MatchHeaders(present, constants.RoomRequiredColumns, constants.RoomOptionalColumns)

	if m.Columns[constants.ColRoom] != "habitacion" {
		t.Errorf("ColRoom matched %q, want accent-insensitive match", m.Columns[constants.ColRoom])
	}
	if m.Columns[constants.ColRoomType] != " TIPO  habitación" {
		t.Errorf("ColRoomType matched %q", m.Columns[constants.ColRoomType])
	}

	if len(m.Missing) != 1 || m.Missing[0].Column != constants.ColCheckOut {
		t.Fatalf("Missing = %+v, want only %s", m.Missing, constants.ColCheckOut)
	}
	if m.Missing[0].Suggestion != "Fecha Salda" {
		t.Errorf("Suggestion = %q, want Fecha Salda", m.Missing[0].Suggestion)
	}
	if len(m.Unknown) != 2 {
		t.Errorf("Unknown = %v, want the typo and Comentario", m.Unknown)
	}
}

func TestMatchHeadersNoSuggestionForUnrelated(t *testing.T) {
	m := MatchHeaders([]string{"Foo"}, []string{constants.ColTotalPrice}, nil)
	if len(m.Missing) != 1 || m.Missing[0].Suggestion != "" {
		t.Errorf("Missing = %+v, want no suggestion", m.Missing)
	}
}

func TestHeaderLookup(t *testing.T) {
	m := MatchHeaders([]string{"Precio total"}, []string{constants.ColTotalPrice}, nil)
	row := map[string]string{"Precio total": " 2450 "}
	if got := m.Lookup(row, constants.ColTotalPrice); got != "2450" {
		t.Errorf("Lookup() = %q, want 2450", got)
	}
	if got := m.Lookup(row, constants.ColNotes); got != "" {
		t.Errorf("Lookup(unmatched) = %q, want empty", got)
	}
}
