package audit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jaimetur/SSB-RetuningAutomations/internal/domain"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/freq"
)

// mismatchCategory pairs, per cell, the relation to the old frequency with
// its replica to the new one and flags pairs whose parameters drifted. A
// clean retune duplicates the relation verbatim, so any differing field is
// a configuration mistake.
func (e *Engine) mismatchCategory() Category {
	pre := e.cfg.SSBPre
	post := e.cfg.SSBPost
	return Category{
		Name: "Mismatch Detection",
		Checks: []Check{
			{
				SubCategory: "NRFreqRelation Inconsistencies",
				Metric:      fmt.Sprintf("NR cells whose %s and %s relations carry different parameters", pre, post),
				Table:       "NRFreqRelation",
				Fields:      []string{"nRFreqRelationId", "nRCellCUId"},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					pairs := mismatchedRelationPairs(t, "nRCellCUId", "nRFreqRelationId", pre, post, mismatchIgnoredFields(ctx))
					return len(pairs), pairs, nil
				},
			},
			{
				SubCategory: "GUtranFreqRelation Inconsistencies",
				Metric:      fmt.Sprintf("LTE cells whose %s and %s relations carry different parameters", pre, post),
				Table:       "GUtranFreqRelation",
				Fields:      []string{"gUtranFreqRelationId", "eUtranCellFDDId"},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					pairs := mismatchedRelationPairs(t, "eUtranCellFDDId", "gUtranFreqRelationId", pre, post, mismatchIgnoredFields(ctx))
					return len(pairs), pairs, nil
				},
			},
		},
	}
}

// mismatchIgnoredFields extends the configured ignore list with the fields
// that legitimately differ between an old relation and its replica.
func mismatchIgnoredFields(ctx *Context) map[string]struct{} {
	ignored := ctx.Config.IgnoredFieldSet()
	ignored["reservedBy"] = struct{}{}
	return ignored
}

// mismatchedRelationPairs walks each (node, cell) group, picks the first
// relation whose id resolves to pre and the first resolving to post, and
// compares every field the two rows share except the identifiers and the
// ignored set. Output entries read "node/cell: field1|field2".
func mismatchedRelationPairs(t domain.Table, cellField, idField, pre, post string, ignored map[string]struct{}) []string {
	skip := map[string]struct{}{
		domain.NodeIDField: {},
		cellField:          {},
		idField:            {},
	}
	for f := range ignored {
		skip[f] = struct{}{}
	}

	type pair struct {
		preRow  *domain.Record
		postRow *domain.Record
	}
	pairs := map[string]*pair{}
	var order []string
	for i := range t.Rows {
		row := t.Rows[i]
		id, ok := row.GetString(idField)
		if !ok || id == "" {
			continue
		}
		base := freq.ExtractBase(id)
		if base != pre && base != post {
			continue
		}
		node, _ := row.GetString(domain.NodeIDField)
		cell, _ := row.GetString(cellField)
		key := node + "/" + cell
		p := pairs[key]
		if p == nil {
			p = &pair{}
			pairs[key] = p
			order = append(order, key)
		}
		if base == pre && p.preRow == nil {
			p.preRow = &t.Rows[i]
		}
		if base == post && p.postRow == nil {
			p.postRow = &t.Rows[i]
		}
	}

	var out []string
	for _, key := range order {
		p := pairs[key]
		if p.preRow == nil || p.postRow == nil {
			continue
		}
		diffs := sharedFieldDiffs(*p.preRow, *p.postRow, skip)
		if len(diffs) > 0 {
			out = append(out, key+": "+strings.Join(diffs, "|"))
		}
	}
	sort.Strings(out)
	return out
}

// sharedFieldDiffs returns the sorted names of fields present in both rows
// whose stringified values differ.
func sharedFieldDiffs(a, b domain.Record, skip map[string]struct{}) []string {
	var out []string
	for field := range a.Fields {
		if _, skipped := skip[field]; skipped {
			continue
		}
		if !b.Has(field) {
			continue
		}
		av, _ := a.GetString(field)
		bv, _ := b.GetString(field)
		if av != bv {
			out = append(out, field)
		}
	}
	sort.Strings(out)
	return out
}
