package audit

import (
	"testing"

	"github.com/jaimetur/SSB-RetuningAutomations/internal/domain"
)

func metricRow(category, sub, metric string, value domain.MetricValue) domain.MetricRow {
	return domain.MetricRow{Category: category, SubCategory: sub, Metric: metric, Value: value}
}

func TestCompareLedgersJoinsOnIdentity(t *testing.T) {
	pre := &domain.MetricsLedger{}
	pre.Append(
		metricRow("NR Frequency Audit", "NRFrequency", "old nodes", domain.CountValue(5)),
		metricRow("NR Frequency Audit", "NRFrequency", "new nodes", domain.CountValue(2)),
	)
	post := &domain.MetricsLedger{}
	post.Append(
		metricRow("NR Frequency Audit", "NRFrequency", "old nodes", domain.CountValue(1)),
		metricRow("NR Frequency Audit", "NRFrequency", "new nodes", domain.CountValue(6)),
	)

	cmp := CompareLedgers(pre, post)
	if len(cmp.Rows) != 2 {
		t.Fatalf("rows = %d", len(cmp.Rows))
	}

	first := cmp.Rows[0]
	if first.Metric != "old nodes" {
		t.Fatalf("row order must follow the PRE ledger, got %q first", first.Metric)
	}
	if first.ValueDiff == nil || *first.ValueDiff != 4 {
		t.Fatalf("diff must be pre minus post, got %v", first.ValueDiff)
	}
}

func TestCompareLedgersSkipsDiffForDegradedValues(t *testing.T) {
	pre := &domain.MetricsLedger{}
	pre.Append(metricRow("Termpoint Audit", "TermPointToGNB", "not OK", domain.MissingTableValue()))
	post := &domain.MetricsLedger{}
	post.Append(metricRow("Termpoint Audit", "TermPointToGNB", "not OK", domain.CountValue(3)))

	cmp := CompareLedgers(pre, post)
	if len(cmp.Rows) != 1 {
		t.Fatalf("rows = %d", len(cmp.Rows))
	}
	row := cmp.Rows[0]
	if row.ValueDiff != nil {
		t.Fatalf("degraded value must not produce a numeric diff")
	}
	if row.ValuePre.String() != "Table not found or empty" || row.ValuePost.String() != "3" {
		t.Fatalf("values not carried through: %v / %v", row.ValuePre, row.ValuePost)
	}
}

func TestCompareLedgersAppendsPostOnlyMetrics(t *testing.T) {
	pre := &domain.MetricsLedger{}
	pre.Append(metricRow("A", "S", "shared", domain.CountValue(1)))
	post := &domain.MetricsLedger{}
	post.Append(
		metricRow("A", "S", "shared", domain.CountValue(1)),
		metricRow("A", "S", "post only", domain.CountValue(9)),
	)

	cmp := CompareLedgers(pre, post)
	if len(cmp.Rows) != 2 {
		t.Fatalf("rows = %d", len(cmp.Rows))
	}
	last := cmp.Rows[1]
	if last.Metric != "post only" || last.ValuePre != nil || last.ValuePost == nil {
		t.Fatalf("post-only row malformed: %+v", last)
	}
	if last.ValueDiff != nil {
		t.Fatalf("post-only row must not carry a diff")
	}
}
