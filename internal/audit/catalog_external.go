package audit

import (
	"fmt"
	"sort"

	"github.com/jaimetur/SSB-RetuningAutomations/internal/domain"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/freq"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/scope"
)

// externalCategory audits the external/neighbor cell definitions: which
// frequency they reference, whether their termpoints are healthy, and
// whether they went stale against the retune state of the node they point
// at.
func (e *Engine) externalCategory() Category {
	pre := e.cfg.SSBPre
	post := e.cfg.SSBPost
	return Category{
		Name: "External Audit",
		Checks: []Check{
			{
				SubCategory: "ExternalNRCellCU",
				Metric:      fmt.Sprintf("External NR cells referencing the old SSB (%s)", pre),
				Table:       "ExternalNRCellCU",
				Fields:      []string{"nRFrequencyRef"},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					return relationRowsWithTarget(t, "nRFrequencyRef", pre)
				},
			},
			{
				SubCategory: "ExternalNRCellCU",
				Metric:      fmt.Sprintf("External NR cells referencing the new SSB (%s)", post),
				Table:       "ExternalNRCellCU",
				Fields:      []string{"nRFrequencyRef"},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					return relationRowsWithTarget(t, "nRFrequencyRef", post)
				},
			},
			{
				SubCategory: "ExternalNRCellCU",
				Metric:      "External NR cells referencing a frequency outside the campaign",
				Table:       "ExternalNRCellCU",
				Fields:      []string{"nRFrequencyRef"},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					return externalUnknownTargets(ctx, t, "nRFrequencyRef")
				},
			},
			{
				SubCategory: "ExternalNRCellCU Inconsistencies",
				Metric:      "External NR cells whose termpoint is not OK",
				Table:       "ExternalNRCellCU",
				Fields:      []string{"externalGNBCUCPFunctionId"},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					return externalsWithBadTermpoint(ctx, t, "externalGNBCUCPFunctionId", "TermPointToGNB")
				},
			},
			{
				SubCategory: "ExternalNRCellCU Inconsistencies",
				Metric:      fmt.Sprintf("External NR cells still referencing %s on nodes already retuned to %s", pre, post),
				Table:       "ExternalNRCellCU",
				Fields:      []string{"nRFrequencyRef", "externalGNBCUCPFunctionId"},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					return staleExternals(ctx, t, "nRFrequencyRef", "externalGNBCUCPFunctionId")
				},
			},
			{
				SubCategory: "ExternalGUtranCell",
				Metric:      fmt.Sprintf("External GUtran cells referencing the old SSB (%s)", pre),
				Table:       "ExternalGUtranCell",
				Fields:      []string{"gUtranSyncSignalFrequencyRef"},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					return relationRowsWithTarget(t, "gUtranSyncSignalFrequencyRef", pre)
				},
			},
			{
				SubCategory: "ExternalGUtranCell",
				Metric:      fmt.Sprintf("External GUtran cells referencing the new SSB (%s)", post),
				Table:       "ExternalGUtranCell",
				Fields:      []string{"gUtranSyncSignalFrequencyRef"},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					return relationRowsWithTarget(t, "gUtranSyncSignalFrequencyRef", post)
				},
			},
			{
				SubCategory: "ExternalGUtranCell",
				Metric:      "External GUtran cells referencing a frequency outside the campaign",
				Table:       "ExternalGUtranCell",
				Fields:      []string{"gUtranSyncSignalFrequencyRef"},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					return externalUnknownTargets(ctx, t, "gUtranSyncSignalFrequencyRef")
				},
			},
			{
				SubCategory: "ExternalGUtranCell Inconsistencies",
				Metric:      "External GUtran cells whose termpoint is not OK",
				Table:       "ExternalGUtranCell",
				Fields:      []string{"externalGNodeBFunctionId"},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					return externalsWithBadTermpoint(ctx, t, "externalGNodeBFunctionId", "TermPointToGNodeB")
				},
			},
			{
				SubCategory: "ExternalGUtranCell Inconsistencies",
				Metric:      fmt.Sprintf("External GUtran cells still referencing %s on nodes already retuned to %s", pre, post),
				Table:       "ExternalGUtranCell",
				Fields:      []string{"gUtranSyncSignalFrequencyRef", "externalGNodeBFunctionId"},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					return staleExternals(ctx, t, "gUtranSyncSignalFrequencyRef", "externalGNodeBFunctionId")
				},
			},
		},
	}
}

// termpointCategory reports unhealthy termpoints per table. A termpoint
// with every state column blank counts as OK because several dump formats
// omit the state columns.
func (e *Engine) termpointCategory() Category {
	tables := []string{"TermPointToGNB", "TermPointToGNodeB", "TermPointToENodeB"}
	checks := make([]Check, 0, len(tables))
	for _, name := range tables {
		name := name
		checks = append(checks, Check{
			SubCategory: name,
			Metric:      fmt.Sprintf("Termpoints not OK (from %s table)", name),
			Table:       name,
			Run: func(ctx *Context, t domain.Table) (int, []string, error) {
				count := 0
				nodes := map[string]struct{}{}
				for _, row := range t.Rows {
					if termpointOK(row) {
						continue
					}
					count++
					if node, _ := row.GetString(domain.NodeIDField); node != "" {
						nodes[node] = struct{}{}
					}
				}
				return count, sortedSet(nodes), nil
			},
		})
	}
	return Category{Name: "Termpoint Audit", Checks: checks}
}

// externalsWithBadTermpoint correlates external cells with the termpoint
// table through the external function identifier and counts cells whose
// termpoint exists and is not OK. A missing termpoint table yields zero,
// matching the permissive treatment of dumps collected without it.
func externalsWithBadTermpoint(ctx *Context, t domain.Table, functionField, termpointTable string) (int, []string, error) {
	tp, ok := ctx.Tables.Lookup(termpointTable)
	if !ok || tp.Empty() || !tp.HasField(functionField) {
		return 0, nil, nil
	}

	// Consolidated status per (node, function): NOT_OK wins over OK when a
	// function has several termpoints.
	badTermpoints := map[string]struct{}{}
	for _, row := range tp.Rows {
		if termpointOK(row) {
			continue
		}
		node, _ := row.GetString(domain.NodeIDField)
		fn, _ := row.GetString(functionField)
		if fn == "" {
			continue
		}
		badTermpoints[node+"/"+fn] = struct{}{}
	}

	count := 0
	var affected []string
	seen := map[string]struct{}{}
	for _, row := range t.Rows {
		node, _ := row.GetString(domain.NodeIDField)
		fn, _ := row.GetString(functionField)
		if fn == "" {
			continue
		}
		key := node + "/" + fn
		if _, bad := badTermpoints[key]; !bad {
			continue
		}
		count++
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		affected = append(affected, key)
	}
	sort.Strings(affected)
	return count, affected, nil
}

// externalUnknownTargets counts external cells whose frequency reference
// resolves to neither side of the campaign, unparsable references included.
func externalUnknownTargets(ctx *Context, t domain.Table, refField string) (int, []string, error) {
	count := 0
	nodes := map[string]struct{}{}
	for _, row := range t.Rows {
		ref, _ := row.GetString(refField)
		if ref == "" {
			continue
		}
		if ctx.Plan.ClassifyTarget(freq.ExtractBase(ref)) != domain.TargetUnknown {
			continue
		}
		count++
		if node, _ := row.GetString(domain.NodeIDField); node != "" {
			nodes[node] = struct{}{}
		}
	}
	return count, sortedSet(nodes), nil
}

// staleExternals finds external cells that still reference the old
// frequency although the node they point at, matched through the leading
// numeric identifier of the external function, is already classified as
// retuned by the node scope.
func staleExternals(ctx *Context, t domain.Table, refField, functionField string) (int, []string, error) {
	retuned := scope.LeadingIDs(ctx.Scope.Nodes(domain.StagePost))
	if len(retuned) == 0 {
		return 0, nil, nil
	}

	count := 0
	var affected []string
	seen := map[string]struct{}{}
	for _, row := range t.Rows {
		ref, _ := row.GetString(refField)
		if freq.ExtractBase(ref) != ctx.Plan.PreValue {
			continue
		}
		fn, _ := row.GetString(functionField)
		id := freq.LeadingID(fn)
		if id == "" {
			continue
		}
		if _, hit := retuned[id]; !hit {
			continue
		}
		count++
		node, _ := row.GetString(domain.NodeIDField)
		pair := node + ": " + fn
		if _, dup := seen[pair]; dup {
			continue
		}
		seen[pair] = struct{}{}
		affected = append(affected, pair)
	}
	sort.Strings(affected)
	return count, affected, nil
}
