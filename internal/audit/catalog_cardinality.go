package audit

import (
	"fmt"
	"sort"

	"github.com/jaimetur/SSB-RetuningAutomations/internal/domain"
)

// cardinalityCategory guards the vendor multiplicity limits. The retune
// temporarily duplicates frequencies and relations, so groups sitting at or
// over their limit will reject the new instance the campaign needs to
// create.
func (e *Engine) cardinalityCategory() Category {
	checks := make([]Check, 0, 2*len(e.cfg.CardinalityLimits))
	for _, limit := range e.cfg.CardinalityLimits {
		limit := limit
		checks = append(checks,
			Check{
				SubCategory: limit.Table,
				Metric:      fmt.Sprintf("Highest %s count per %s (limit %d)", limit.Table, limit.GroupBy, limit.Limit),
				Table:       limit.Table,
				Fields:      []string{limit.GroupBy},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					counts := groupCounts(t, limit.GroupBy)
					max := 0
					for _, n := range counts {
						if n > max {
							max = n
						}
					}
					return max, groupsAtCount(counts, max), nil
				},
			},
			Check{
				SubCategory: limit.Table + " Inconsistencies",
				Metric:      fmt.Sprintf("%s groups at or over the limit of %d instances per %s", limit.Table, limit.Limit, limit.GroupBy),
				Table:       limit.Table,
				Fields:      []string{limit.GroupBy},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					counts := groupCounts(t, limit.GroupBy)
					var over []string
					for group, n := range counts {
						if n >= limit.Limit {
							over = append(over, fmt.Sprintf("%s: %d", group, n))
						}
					}
					sort.Strings(over)
					return len(over), over, nil
				},
			},
		)
	}
	return Category{Name: "Cardinality Audit", Checks: checks}
}

// groupCounts counts rows per (node, group-field) pair. The node is part of
// the key because the limits apply per parent instance, not network-wide.
func groupCounts(t domain.Table, groupBy string) map[string]int {
	counts := map[string]int{}
	for _, row := range t.Rows {
		group, ok := row.GetString(groupBy)
		if !ok || group == "" {
			continue
		}
		key := group
		if groupBy != domain.NodeIDField {
			if node, _ := row.GetString(domain.NodeIDField); node != "" {
				key = node + "/" + group
			}
		}
		counts[key]++
	}
	return counts
}

func groupsAtCount(counts map[string]int, want int) []string {
	if want == 0 {
		return nil
	}
	var out []string
	for group, n := range counts {
		if n == want {
			out = append(out, fmt.Sprintf("%s: %d", group, n))
		}
	}
	sort.Strings(out)
	return out
}
