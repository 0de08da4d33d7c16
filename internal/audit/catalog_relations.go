package audit

import (
	"fmt"
	"sort"

	"github.com/jaimetur/SSB-RetuningAutomations/internal/domain"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/freq"
)

// relationCategory audits the cell-relation layer: how many neighbor
// relations still point at the old frequency, how many already moved, and
// which references cannot be parsed at all.
func (e *Engine) relationCategory() Category {
	pre := e.cfg.SSBPre
	post := e.cfg.SSBPost
	return Category{
		Name: "Relation Audit",
		Checks: []Check{
			{
				SubCategory: "NRCellRelation",
				Metric:      fmt.Sprintf("NR cell relations targeting the old SSB (%s)", pre),
				Table:       "NRCellRelation",
				Fields:      []string{"nRFreqRelationRef"},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					return relationRowsWithTarget(t, "nRFreqRelationRef", pre)
				},
			},
			{
				SubCategory: "NRCellRelation",
				Metric:      fmt.Sprintf("NR cell relations targeting the new SSB (%s)", post),
				Table:       "NRCellRelation",
				Fields:      []string{"nRFreqRelationRef"},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					return relationRowsWithTarget(t, "nRFreqRelationRef", post)
				},
			},
			{
				SubCategory: "NRCellRelation Inconsistencies",
				Metric:      "NR cell relations whose frequency reference could not be parsed",
				Table:       "NRCellRelation",
				Fields:      []string{"nRFreqRelationRef"},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					return unparsableRelationRefs(t, "nRFreqRelationRef")
				},
			},
			{
				SubCategory: "GUtranCellRelation",
				Metric:      fmt.Sprintf("LTE cell relations targeting the old SSB (%s)", pre),
				Table:       "GUtranCellRelation",
				Fields:      []string{"neighborCellRef"},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					return relationRowsWithTarget(t, "neighborCellRef", pre)
				},
			},
			{
				SubCategory: "GUtranCellRelation",
				Metric:      fmt.Sprintf("LTE cell relations targeting the new SSB (%s)", post),
				Table:       "GUtranCellRelation",
				Fields:      []string{"neighborCellRef"},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					return relationRowsWithTarget(t, "neighborCellRef", post)
				},
			},
			{
				SubCategory: "GUtranCellRelation Inconsistencies",
				Metric:      "LTE cell relations whose frequency reference could not be parsed",
				Table:       "GUtranCellRelation",
				Fields:      []string{"neighborCellRef"},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					return unparsableRelationRefs(t, "neighborCellRef")
				},
			},
		},
	}
}

// relationRowsWithTarget counts rows whose reference resolves to the given
// base frequency and lists the nodes carrying them.
func relationRowsWithTarget(t domain.Table, field, want string) (int, []string, error) {
	count := 0
	nodes := map[string]struct{}{}
	for _, row := range t.Rows {
		ref, ok := row.GetString(field)
		if !ok || ref == "" {
			continue
		}
		if freq.ExtractBase(ref) != want {
			continue
		}
		count++
		if node, _ := row.GetString(domain.NodeIDField); node != "" {
			nodes[node] = struct{}{}
		}
	}
	return count, sortedSet(nodes), nil
}

// unparsableRelationRefs counts rows with a non-empty reference from which
// no base frequency token can be recovered.
func unparsableRelationRefs(t domain.Table, field string) (int, []string, error) {
	count := 0
	var refs []string
	seen := map[string]struct{}{}
	for _, row := range t.Rows {
		ref, ok := row.GetString(field)
		if !ok || ref == "" {
			continue
		}
		if freq.ExtractBase(ref) != "" {
			continue
		}
		count++
		node, _ := row.GetString(domain.NodeIDField)
		pair := node + ": " + ref
		if _, dup := seen[pair]; dup {
			continue
		}
		seen[pair] = struct{}{}
		refs = append(refs, pair)
	}
	sort.Strings(refs)
	return count, refs, nil
}
