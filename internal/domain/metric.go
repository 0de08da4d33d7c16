package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// MetricValueKind enumerates the terminal outcomes a check can report.
type MetricValueKind int

const (
	// MetricCount is a successful check with an integer result.
	MetricCount MetricValueKind = iota
	// MetricNA marks a check skipped because a required field is absent.
	MetricNA
	// MetricMissingTable marks a check whose required table is absent or empty.
	MetricMissingTable
	// MetricFailed marks a check whose body failed; Text carries the reason.
	MetricFailed
)

// Sentinel texts match the values the report consumers expect verbatim.
const (
	naText           = "N/A"
	missingTableText = "Table not found or empty"
	errorPrefix      = "ERROR: "
)

// MetricValue is the tagged value of one metric row: an integer count or one
// of the degradation sentinels. Keeping the failure modes enumerable here is
// what lets the audit runner guarantee that nothing escapes it.
type MetricValue struct {
	Kind  MetricValueKind
	Count int
	Text  string
}

// CountValue builds a successful integer value.
func CountValue(n int) MetricValue {
	return MetricValue{Kind: MetricCount, Count: n}
}

// NAValue builds the missing-field sentinel.
func NAValue() MetricValue {
	return MetricValue{Kind: MetricNA}
}

// MissingTableValue builds the absent-or-empty-table sentinel.
func MissingTableValue() MetricValue {
	return MetricValue{Kind: MetricMissingTable}
}

// ErrorValue builds a check-failure value from the failure description.
func ErrorValue(err error) MetricValue {
	return MetricValue{Kind: MetricFailed, Text: fmt.Sprintf("%v", err)}
}

// String renders the value exactly as it appears in reports.
func (v MetricValue) String() string {
	switch v.Kind {
	case MetricCount:
		return strconv.Itoa(v.Count)
	case MetricNA:
		return naText
	case MetricMissingTable:
		return missingTableText
	case MetricFailed:
		return errorPrefix + v.Text
	default:
		return ""
	}
}

// Numeric returns the count and true for successful values.
func (v MetricValue) Numeric() (int, bool) {
	if v.Kind == MetricCount {
		return v.Count, true
	}
	return 0, false
}

// MetricRow is the atomic unit of audit output.
type MetricRow struct {
	Category    string
	SubCategory string
	Metric      string
	Value       MetricValue
	ExtraInfo   []string
}

// ExtraInfoText joins the affected identifiers the way the original reports
// render them.
func (r MetricRow) ExtraInfoText() string {
	return strings.Join(r.ExtraInfo, ", ")
}

// MetricsLedger is the ordered, append-only sequence of metric rows produced
// by one audit run.
type MetricsLedger struct {
	Rows []MetricRow
}

// Append adds rows to the ledger.
func (l *MetricsLedger) Append(rows ...MetricRow) {
	l.Rows = append(l.Rows, rows...)
}

// Len returns the number of rows.
func (l *MetricsLedger) Len() int {
	return len(l.Rows)
}

// Find returns the first row matching category, subcategory and metric.
func (l *MetricsLedger) Find(category, subCategory, metric string) (MetricRow, bool) {
	for _, row := range l.Rows {
		if row.Category == category && row.SubCategory == subCategory && row.Metric == metric {
			return row, true
		}
	}
	return MetricRow{}, false
}

// FindByMetricContains returns rows whose metric name contains the fragment,
// optionally restricted to a category. Consumers use it to recover node
// lists from ExtraInfo without depending on exact metric wording.
func (l *MetricsLedger) FindByMetricContains(category, fragment string) []MetricRow {
	var out []MetricRow
	for _, row := range l.Rows {
		if category != "" && row.Category != category {
			continue
		}
		if strings.Contains(strings.ToLower(row.Metric), strings.ToLower(fragment)) {
			out = append(out, row)
		}
	}
	return out
}

// ComparisonRow is one line of a PRE/POST ledger comparison. ValueDiff is
// only set when both sides carry numeric values (pre minus post).
type ComparisonRow struct {
	Category    string
	SubCategory string
	Metric      string
	ValuePre    *MetricValue
	ValuePost   *MetricValue
	ValueDiff   *int
}

// LedgerComparison is the ordered field-by-field diff of two ledgers,
// excluding ExtraInfo. Row order follows the PRE ledger, with POST-only
// metrics appended in POST order.
type LedgerComparison struct {
	Rows []ComparisonRow
}
