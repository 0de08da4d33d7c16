package audit

import (
	"strings"

	"github.com/jaimetur/SSB-RetuningAutomations/internal/domain"
)

const syncStatusField = "syncStatus"

// unsynchronizedNodes scans the whole store for nodes flagged as
// unsynchronized. Their data is stale by definition, so they are subtracted
// from every table before any other check runs.
func unsynchronizedNodes(store *domain.TableStore) map[string]struct{} {
	out := map[string]struct{}{}
	for _, name := range store.Names() {
		t, _ := store.Lookup(name)
		if !t.HasField(syncStatusField) {
			continue
		}
		for _, row := range t.Rows {
			status, _ := row.GetString(syncStatusField)
			if !strings.EqualFold(status, "UNSYNCHRONIZED") {
				continue
			}
			if node, ok := row.GetString(domain.NodeIDField); ok && node != "" {
				out[node] = struct{}{}
			}
		}
	}
	return out
}

// nodeEnumerationCategory counts the snapshot population and reports the
// exclusion set. It runs against the raw store, before the exclusion is
// applied.
func (e *Engine) nodeEnumerationCategory(excluded map[string]struct{}) Category {
	return Category{
		Name: "Node Enumeration",
		Checks: []Check{
			{
				SubCategory: "Nodes",
				Metric:      "Distinct nodes in snapshot",
				Run: func(ctx *Context, _ domain.Table) (int, []string, error) {
					nodes := map[string]struct{}{}
					for _, name := range ctx.Tables.Names() {
						t, _ := ctx.Tables.Lookup(name)
						for _, node := range t.Nodes() {
							nodes[node] = struct{}{}
						}
					}
					return len(nodes), sortedSet(nodes), nil
				},
			},
			{
				SubCategory: "Nodes",
				Metric:      "Unsynchronized nodes excluded from all checks",
				Run: func(_ *Context, _ domain.Table) (int, []string, error) {
					return len(excluded), sortedSet(excluded), nil
				},
			},
		},
	}
}
