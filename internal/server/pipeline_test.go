package server

import (
	"testing"

	"github.com/jaimetur/SSB-RetuningAutomations/internal/config"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/domain"
)

func snapshot(relRef string) *domain.TableStore {
	store := domain.NewTableStore()
	store.Put(domain.NewTable("NRCellDU", []domain.Record{
		domain.NewRecord(map[string]any{"NodeId": "430090_A", "ssbFrequency": relRefFreq(relRef)}),
	}))
	store.Put(domain.NewTable("NRCellRelation", []domain.Record{
		domain.NewRecord(map[string]any{
			"NodeId": "430090_A", "nRCellCUId": "c1", "nRCellRelationId": "r1",
			"nRFreqRelationRef": relRef,
		}),
	}))
	return store
}

func relRefFreq(ref string) string {
	if ref == "NRFreqRelation=647328" {
		return "647328"
	}
	return "648672"
}

func TestRunReportProducesComparisonAndDeltas(t *testing.T) {
	cfg := config.Default()
	pre := snapshot("NRFreqRelation=648672")
	post := snapshot("NRFreqRelation=647328")

	report := RunReport(cfg, pre, post)

	if report.LedgerPre == nil || report.LedgerPost == nil {
		t.Fatalf("both ledgers expected")
	}
	if report.LedgerPre.Len() != report.LedgerPost.Len() {
		t.Fatalf("ledger lengths differ: %d vs %d", report.LedgerPre.Len(), report.LedgerPost.Len())
	}
	if report.Comparison == nil || len(report.Comparison.Rows) != report.LedgerPre.Len() {
		t.Fatalf("comparison missing or incomplete")
	}
	if len(report.Deltas) != 1 || report.Deltas[0].TableName != "NRCellRelation" {
		t.Fatalf("expected one NRCellRelation delta, got %+v", report.Deltas)
	}
	// Same key on both sides, frequency moved to the post value: unchanged
	// by the frequency rule, parameters identical apart from the reference.
	delta := report.Deltas[0]
	if len(delta.New)+len(delta.Missing) != 0 {
		t.Fatalf("matching keys classified as new/missing: %+v", delta)
	}
}

func TestRunReportSingleSnapshotSkipsDiff(t *testing.T) {
	cfg := config.Default()
	report := RunReport(cfg, snapshot("NRFreqRelation=648672"), nil)

	if report.LedgerPre == nil || report.LedgerPost != nil {
		t.Fatalf("expected pre-only ledgers")
	}
	if report.Comparison != nil || report.Deltas != nil {
		t.Fatalf("single snapshot must not produce comparison or deltas")
	}
}
