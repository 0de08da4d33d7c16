package export

import (
	"testing"

	"github.com/jaimetur/SSB-RetuningAutomations/internal/domain"
)

func sampleReport() Report {
	pre := &domain.MetricsLedger{}
	pre.Append(domain.MetricRow{
		Category: "NR Frequency Audit", SubCategory: "NRFrequency",
		Metric: "old nodes", Value: domain.CountValue(5), ExtraInfo: []string{"A", "B"},
	})
	post := &domain.MetricsLedger{}
	post.Append(domain.MetricRow{
		Category: "NR Frequency Audit", SubCategory: "NRFrequency",
		Metric: "old nodes", Value: domain.CountValue(1),
	})

	diff := 4
	preVal := domain.CountValue(5)
	postVal := domain.CountValue(1)
	comparison := &domain.LedgerComparison{Rows: []domain.ComparisonRow{{
		Category: "NR Frequency Audit", SubCategory: "NRFrequency", Metric: "old nodes",
		ValuePre: &preVal, ValuePost: &postVal, ValueDiff: &diff,
	}}}

	row := domain.NewRecord(map[string]any{
		"NodeId": "430090_A", "nRCellCUId": "430090_1", "nRCellRelationId": "r9",
		"nRFreqRelationRef": "NRFreqRelation=647328",
	})
	delta := domain.RelationDelta{
		TableName: "NRCellRelation",
		KeyFields: []string{"NodeId", "nRCellCUId", "nRCellRelationId"},
		New: []domain.DeltaEntry{{
			Key:    domain.MakeKey(row, []string{"NodeId", "nRCellCUId", "nRCellRelationId"}),
			NodeID: "430090_A", Row: row, FreqPost: "647328",
		}},
	}

	return Report{LedgerPre: pre, LedgerPost: post, Comparison: comparison, Deltas: []domain.RelationDelta{delta}}
}

func TestRenderProducesExpectedSheets(t *testing.T) {
	f, err := NewService().Render(sampleReport())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	defer func() { _ = f.Close() }()

	want := []string{
		"Summary",
		"SummaryAudit_Pre",
		"SummaryAudit_Post",
		"SummaryAuditComparison",
		"NRCellRelation_Discrepancies",
		"NRCellRelation_NewInPost",
		"NRCellRelation_MissingInPost",
	}
	have := map[string]struct{}{}
	for _, sheet := range f.GetSheetList() {
		have[sheet] = struct{}{}
	}
	for _, sheet := range want {
		if _, ok := have[sheet]; !ok {
			t.Fatalf("sheet %s missing; have %v", sheet, f.GetSheetList())
		}
	}
	if _, ok := have["Sheet1"]; ok {
		t.Fatalf("default sheet must be removed")
	}
}

func TestRenderWritesLedgerRows(t *testing.T) {
	f, err := NewService().Render(sampleReport())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	defer func() { _ = f.Close() }()

	value, err := f.GetCellValue("SummaryAudit_Pre", "D2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if value != "5" {
		t.Fatalf("ledger value cell = %q", value)
	}
	extra, err := f.GetCellValue("SummaryAudit_Pre", "E2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if extra != "A, B" {
		t.Fatalf("extra info cell = %q", extra)
	}
}

func TestRenderWritesDeltaEntries(t *testing.T) {
	f, err := NewService().Render(sampleReport())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	defer func() { _ = f.Close() }()

	node, err := f.GetCellValue("NRCellRelation_NewInPost", "A2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if node != "430090_A" {
		t.Fatalf("new-in-post node = %q", node)
	}
}

func TestRenderSkipsNilMembers(t *testing.T) {
	report := Report{LedgerPost: &domain.MetricsLedger{}}
	f, err := NewService().Render(report)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	defer func() { _ = f.Close() }()

	for _, sheet := range f.GetSheetList() {
		if sheet == "SummaryAudit_Pre" || sheet == "SummaryAuditComparison" {
			t.Fatalf("nil member rendered sheet %s", sheet)
		}
	}
}
