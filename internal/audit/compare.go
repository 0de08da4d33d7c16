package audit

import "github.com/jaimetur/SSB-RetuningAutomations/internal/domain"

// CompareLedgers joins a PRE and a POST ledger on (Category, SubCategory,
// Metric). Rows follow PRE order; POST-only metrics are appended in POST
// order. The numeric diff is pre minus post and only exists when both sides
// produced a count, degraded values compare as absent.
func CompareLedgers(pre, post *domain.MetricsLedger) *domain.LedgerComparison {
	type key struct {
		category    string
		subCategory string
		metric      string
	}

	postByKey := map[key]domain.MetricValue{}
	for _, row := range post.Rows {
		k := key{row.Category, row.SubCategory, row.Metric}
		if _, dup := postByKey[k]; !dup {
			postByKey[k] = row.Value
		}
	}

	out := &domain.LedgerComparison{}
	matched := map[key]struct{}{}
	for _, row := range pre.Rows {
		k := key{row.Category, row.SubCategory, row.Metric}
		cmp := domain.ComparisonRow{
			Category:    row.Category,
			SubCategory: row.SubCategory,
			Metric:      row.Metric,
		}
		preVal := row.Value
		cmp.ValuePre = &preVal
		if postVal, ok := postByKey[k]; ok {
			matched[k] = struct{}{}
			v := postVal
			cmp.ValuePost = &v
			if p, okPre := preVal.Numeric(); okPre {
				if q, okPost := postVal.Numeric(); okPost {
					diff := p - q
					cmp.ValueDiff = &diff
				}
			}
		}
		out.Rows = append(out.Rows, cmp)
	}

	for _, row := range post.Rows {
		k := key{row.Category, row.SubCategory, row.Metric}
		if _, ok := matched[k]; ok {
			continue
		}
		matched[k] = struct{}{}
		v := row.Value
		out.Rows = append(out.Rows, domain.ComparisonRow{
			Category:    row.Category,
			SubCategory: row.SubCategory,
			Metric:      row.Metric,
			ValuePost:   &v,
		})
	}
	return out
}
