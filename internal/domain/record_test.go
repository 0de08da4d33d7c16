package domain

import (
	"reflect"
	"testing"
)

func TestGetStringNormalizesScalars(t *testing.T) {
	r := NewRecord(map[string]any{
		"str":      "  647328 ",
		"int":      648672,
		"float":    647328.0,
		"fraction": 0.5,
		"flag":     true,
		"empty":    nil,
	})

	cases := map[string]string{
		"str":      "647328",
		"int":      "648672",
		"float":    "647328",
		"fraction": "0.5",
		"flag":     "true",
		"empty":    "",
	}
	for field, want := range cases {
		got, ok := r.GetString(field)
		if !ok {
			t.Fatalf("field %s reported absent", field)
		}
		if got != want {
			t.Errorf("GetString(%s) = %q, want %q", field, got, want)
		}
	}

	if _, ok := r.GetString("missing"); ok {
		t.Fatalf("expected missing field to report absent")
	}
}

func TestMakeKeyUsesEmptyComponentForMissingFields(t *testing.T) {
	r := NewRecord(map[string]any{"NodeId": "430090", "cellId": "430090_1"})
	k := MakeKey(r, []string{"NodeId", "cellId", "relationId"})
	if got := k.Parts(); !reflect.DeepEqual(got, []string{"430090", "430090_1", ""}) {
		t.Fatalf("unexpected key parts: %v", got)
	}
	if k.Display() != "430090/430090_1/" {
		t.Fatalf("unexpected display: %q", k.Display())
	}
}

func TestWithFieldDoesNotMutateOriginal(t *testing.T) {
	r := NewRecord(map[string]any{"NodeId": "430090"})
	r2 := r.WithField("extra", "x")
	if r.Has("extra") {
		t.Fatalf("original record was mutated")
	}
	if v, _ := r2.GetString("extra"); v != "x" {
		t.Fatalf("new record missing added field")
	}
}

func TestTableStorePutAppendsOnNameCollision(t *testing.T) {
	store := NewTableStore()
	store.Put(NewTable("NRCellDU", []Record{NewRecord(map[string]any{"NodeId": "A"})}))
	store.Put(NewTable("NRCellDU", []Record{NewRecord(map[string]any{"NodeId": "B"})}))

	table, ok := store.Lookup("NRCellDU")
	if !ok {
		t.Fatalf("table missing after Put")
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected merged rows, got %d", len(table.Rows))
	}
}

func TestWithoutNodesFiltersEveryTable(t *testing.T) {
	store := NewTableStore()
	store.Put(NewTable("NRCellDU", []Record{
		NewRecord(map[string]any{"NodeId": "KEEP"}),
		NewRecord(map[string]any{"NodeId": "DROP"}),
	}))
	store.Put(NewTable("NRFrequency", []Record{
		NewRecord(map[string]any{"NodeId": "DROP"}),
	}))

	filtered := store.WithoutNodes(map[string]struct{}{"DROP": {}})

	cell, _ := filtered.Lookup("NRCellDU")
	if len(cell.Rows) != 1 {
		t.Fatalf("expected 1 row after filtering, got %d", len(cell.Rows))
	}
	frequency, _ := filtered.Lookup("NRFrequency")
	if !frequency.Empty() {
		t.Fatalf("expected NRFrequency to be emptied")
	}

	// The source store must stay untouched.
	original, _ := store.Lookup("NRCellDU")
	if len(original.Rows) != 2 {
		t.Fatalf("source store was mutated")
	}
}

func TestMetricValueSentinels(t *testing.T) {
	if got := CountValue(3).String(); got != "3" {
		t.Fatalf("count rendering = %q", got)
	}
	if got := NAValue().String(); got != "N/A" {
		t.Fatalf("NA rendering = %q", got)
	}
	if got := MissingTableValue().String(); got != "Table not found or empty" {
		t.Fatalf("missing-table rendering = %q", got)
	}
	row := ErrorValue(errTest{})
	if got := row.String(); got != "ERROR: boom" {
		t.Fatalf("error rendering = %q", got)
	}
	if _, ok := NAValue().Numeric(); ok {
		t.Fatalf("NA must not be numeric")
	}
	if n, ok := CountValue(7).Numeric(); !ok || n != 7 {
		t.Fatalf("count must be numeric")
	}
}

type errTest struct{}

func (errTest) Error() string { return "boom" }
