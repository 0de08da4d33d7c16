// Package scope derives the per-node retune classification every dependent
// check and the relation diff engine consume.
package scope

import (
	"github.com/jaimetur/SSB-RetuningAutomations/internal/domain"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/freq"
)

// Resolver describes where the node classification comes from: one primary
// table, one frequency-indicator field, and an optional band restriction so
// carriers outside the campaign band don't pollute the classification.
type Resolver struct {
	Table string
	Field string
	Band  freq.Band
}

// Resolve classifies every node present in the primary table.
//
// A node whose frequency values intersect only the pre allow-list is Pre,
// only the post allow-list is Post, both is Mixed, neither is Unknown. When
// the primary table is absent or empty an all-unknown scope is returned and
// the audit proceeds in degraded mode rather than aborting.
func (r Resolver) Resolve(store *domain.TableStore, allowedPre, allowedPost []string) domain.NodeScope {
	table, ok := store.Lookup(r.Table)
	if !ok || table.Empty() || !table.HasFields(domain.NodeIDField, r.Field) {
		return domain.NewNodeScope(nil)
	}

	preSet := toSet(allowedPre)
	postSet := toSet(allowedPost)

	stages := map[string]domain.NodeStage{}
	for node, rows := range table.GroupByNode() {
		if node == "" {
			continue
		}
		var hitPre, hitPost bool
		for _, row := range rows {
			value, present := row.GetString(r.Field)
			if !present || value == "" {
				continue
			}
			if r.Band != (freq.Band{}) && !r.Band.Contains(value) {
				continue
			}
			base := freq.ExtractBase(value)
			if base == "" {
				continue
			}
			if _, ok := preSet[base]; ok {
				hitPre = true
			}
			if _, ok := postSet[base]; ok {
				hitPost = true
			}
		}
		switch {
		case hitPre && hitPost:
			stages[node] = domain.StageMixed
		case hitPre:
			stages[node] = domain.StagePre
		case hitPost:
			stages[node] = domain.StagePost
		default:
			stages[node] = domain.StageUnknown
		}
	}
	return domain.NewNodeScope(stages)
}

// LeadingIDs maps node names to their leading numeric identifiers, the form
// external references embed. Names without a numeric prefix are skipped.
func LeadingIDs(nodes []string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, node := range nodes {
		if id := freq.LeadingID(node); id != "" {
			out[id] = struct{}{}
		}
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v != "" {
			out[v] = struct{}{}
		}
	}
	return out
}
