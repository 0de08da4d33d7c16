package diff

import (
	"reflect"
	"testing"

	"github.com/jaimetur/SSB-RetuningAutomations/internal/domain"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/freq"
)

var testPlan = freq.Plan{PreValue: "648672", PostValue: "647328"}

func testOptions() Options {
	return Options{
		TableName:     "NRCellRelation",
		KeyFields:     []string{"NodeId", "nRCellCUId", "nRCellRelationId"},
		FreqField:     "nRFreqRelationRef",
		IgnoredFields: map[string]struct{}{"timeOfCreation": {}},
		Plan:          testPlan,
	}
}

func relation(node, cell, rel, ref string, extra map[string]any) domain.Record {
	fields := map[string]any{
		"NodeId":            node,
		"nRCellCUId":        cell,
		"nRCellRelationId":  rel,
		"nRFreqRelationRef": ref,
	}
	for k, v := range extra {
		fields[k] = v
	}
	return domain.NewRecord(fields)
}

func table(rows ...domain.Record) domain.Table {
	return domain.NewTable("NRCellRelation", rows)
}

func TestRelationsPartitionsKeys(t *testing.T) {
	pre := table(
		relation("n1", "c1", "r1", "648672", nil),
		relation("n1", "c1", "r2", "648672", nil),
	)
	post := table(
		relation("n1", "c1", "r1", "648672", nil),
		relation("n1", "c1", "r3", "647328", nil),
	)

	delta := Relations(pre, post, testOptions())

	if len(delta.New) != 1 || delta.New[0].Key.Display() != "n1/c1/r3" {
		t.Fatalf("unexpected New: %+v", delta.New)
	}
	if len(delta.Missing) != 1 || delta.Missing[0].Key.Display() != "n1/c1/r2" {
		t.Fatalf("unexpected Missing: %+v", delta.Missing)
	}
	// r1: identical fields, freq did not reach post value -> freq discrepancy.
	if len(delta.Discrepancies) != 1 {
		t.Fatalf("expected one discrepancy, got %d", len(delta.Discrepancies))
	}
	d := delta.Discrepancies[0]
	if d.ParamDiff || !d.FreqDiff {
		t.Fatalf("expected pure frequency discrepancy, got %+v", d)
	}
	if d.Target != domain.TargetToPre {
		t.Fatalf("expected target classified from the POST reference, got %s", d.Target)
	}
}

func TestRelationsSymmetry(t *testing.T) {
	a := table(
		relation("n1", "c1", "r1", "648672", nil),
		relation("n1", "c1", "r2", "648672", nil),
	)
	b := table(
		relation("n1", "c1", "r1", "648672", nil),
		relation("n2", "c9", "r9", "647328", nil),
	)

	forward := Relations(a, b, testOptions())
	backward := Relations(b, a, testOptions())

	forwardNew := keysOf(forward.New)
	backwardMissing := keysOf(backward.Missing)
	if !reflect.DeepEqual(forwardNew, backwardMissing) {
		t.Fatalf("diff(A,B).New %v != diff(B,A).Missing %v", forwardNew, backwardMissing)
	}
}

func TestRelationsParameterCompareIgnoresConfiguredFields(t *testing.T) {
	pre := table(relation("n1", "c1", "r1", "647328", map[string]any{
		"cellIndividualOffset": "0",
		"timeOfCreation":       "2025-01-01",
	}))
	post := table(relation("n1", "c1", "r1", "647328", map[string]any{
		"cellIndividualOffset": "3",
		"timeOfCreation":       "2025-06-01",
	}))

	delta := Relations(pre, post, testOptions())
	if len(delta.Discrepancies) != 1 {
		t.Fatalf("expected one discrepancy, got %d", len(delta.Discrepancies))
	}
	d := delta.Discrepancies[0]
	if !d.ParamDiff || d.FreqDiff {
		t.Fatalf("expected pure parameter discrepancy, got %+v", d)
	}
	if !reflect.DeepEqual(d.DiffFields, []string{"cellIndividualOffset"}) {
		t.Fatalf("diff fields = %v", d.DiffFields)
	}
}

func TestRelationsIdenticalRowsCountAsUnchanged(t *testing.T) {
	row := relation("n1", "c1", "r1", "647328", map[string]any{"cellIndividualOffset": "0"})
	delta := Relations(table(row), table(row), testOptions())

	if delta.UnchangedCount != 1 {
		t.Fatalf("unchanged = %d, want 1", delta.UnchangedCount)
	}
	if len(delta.New)+len(delta.Missing)+len(delta.Discrepancies) != 0 {
		t.Fatalf("identical snapshots produced classifications: %+v", delta)
	}
}

func TestRelationsUnparsableFrequencyNeverTriggersFreqRule(t *testing.T) {
	pre := table(relation("n1", "c1", "r1", "no digits", map[string]any{"offset": "1"}))
	post := table(relation("n1", "c1", "r1", "no digits", map[string]any{"offset": "2"}))

	delta := Relations(pre, post, testOptions())
	if len(delta.Discrepancies) != 1 {
		t.Fatalf("expected one discrepancy, got %d", len(delta.Discrepancies))
	}
	d := delta.Discrepancies[0]
	if d.FreqDiff {
		t.Fatalf("unparsable reference must not raise a frequency discrepancy")
	}
	if !d.ParamDiff {
		t.Fatalf("unparsable reference must still be eligible for parameter compare")
	}
}

func TestRelationsReportsDuplicateKeysAndKeepsFirst(t *testing.T) {
	pre := table(
		relation("n1", "c1", "r1", "648672", map[string]any{"offset": "first"}),
		relation("n1", "c1", "r1", "648672", map[string]any{"offset": "second"}),
	)
	post := table(relation("n1", "c1", "r1", "648672", map[string]any{"offset": "first"}))

	delta := Relations(pre, post, testOptions())
	if len(delta.DuplicateKeys) != 1 {
		t.Fatalf("duplicate keys = %v", delta.DuplicateKeys)
	}
	// First occurrence kept: rows are equal apart from the dropped duplicate,
	// so only the frequency rule can fire.
	if len(delta.Discrepancies) != 1 || delta.Discrepancies[0].ParamDiff {
		t.Fatalf("expected first occurrence to win the compare: %+v", delta.Discrepancies)
	}
}

func TestRelationsRetunedFilterSuppressesUnmigratedNodes(t *testing.T) {
	pre := table(
		relation("430090_A", "c1", "r1", "648672", nil),
		relation("431200_B", "c2", "r2", "648672", nil),
	)
	post := table(
		relation("430090_A", "c1", "r9", "647328", nil),
	)

	opts := testOptions()
	opts.RetunedNodes = map[string]struct{}{"430090": {}}
	delta := Relations(pre, post, opts)

	if len(delta.Missing) != 1 || delta.Missing[0].NodeID != "430090_A" {
		t.Fatalf("expected only the retuned node's missing entry, got %+v", delta.Missing)
	}
	// New entries are never filtered.
	if len(delta.New) != 1 {
		t.Fatalf("New must not be filtered, got %+v", delta.New)
	}
}

func keysOf(entries []domain.DeltaEntry) []domain.Key {
	out := make([]domain.Key, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Key)
	}
	return domain.SortKeys(out)
}
