package audit

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jaimetur/SSB-RetuningAutomations/internal/config"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/domain"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/freq"
)

// conformingRelationID accepts the vendor naming convention for relation
// identifiers: the target frequency alone or with an auto prefix.
var conformingRelationID = regexp.MustCompile(`(?i)^(auto_?)?\d+(_\d+)*$`)

// nrFrequencyCategory audits the NR side of the retune: SSB definitions on
// the cells, NRFrequency and NRFreqRelation instances for the old and new
// values, and sector carrier ARFCNs against the band and allow-lists.
func (e *Engine) nrFrequencyCategory() Category {
	return Category{
		Name:    "NR Frequency Audit",
		Enabled: func(cfg config.Config) bool { return cfg.Toggles.FrequencyAudit },
		Checks: append(
			e.nrCellDUChecks(),
			append(e.nrFrequencyChecks(),
				append(e.nrFreqRelationChecks(), e.nrSectorCarrierChecks()...)...)...),
	}
}

func (e *Engine) nrCellDUChecks() []Check {
	pre := e.cfg.SSBPre
	post := e.cfg.SSBPost
	return []Check{
		{
			SubCategory: "NRCellDU",
			Metric:      "NR nodes with SSB defined (from NRCellDU table)",
			Table:       "NRCellDU",
			Fields:      []string{"ssbFrequency"},
			Run: func(ctx *Context, t domain.Table) (int, []string, error) {
				nodes := nodesAny(baseValuesByNode(t, "ssbFrequency", ctx.Config.Band))
				return len(nodes), nodes, nil
			},
		},
		{
			SubCategory: "NRCellDU",
			Metric:      fmt.Sprintf("NR nodes with all SSB values in the pre-retune set (%s)", pre),
			Table:       "NRCellDU",
			Fields:      []string{"ssbFrequency"},
			Run: func(ctx *Context, t domain.Table) (int, []string, error) {
				sets := baseValuesByNode(t, "ssbFrequency", ctx.Config.Band)
				nodes := nodesOnlyWithin(sets, ctx.Config.EffectiveSSBPre())
				return len(nodes), nodes, nil
			},
		},
		{
			SubCategory: "NRCellDU",
			Metric:      fmt.Sprintf("NR nodes with all SSB values in the post-retune set (%s)", post),
			Table:       "NRCellDU",
			Fields:      []string{"ssbFrequency"},
			Run: func(ctx *Context, t domain.Table) (int, []string, error) {
				sets := baseValuesByNode(t, "ssbFrequency", ctx.Config.Band)
				nodes := nodesOnlyWithin(sets, ctx.Config.EffectiveSSBPost())
				return len(nodes), nodes, nil
			},
		},
		{
			SubCategory: "NRCellDU",
			Metric:      "NR nodes with SSB values in both the pre and post sets (mixed retune state)",
			Table:       "NRCellDU",
			Fields:      []string{"ssbFrequency"},
			Run: func(ctx *Context, t domain.Table) (int, []string, error) {
				sets := baseValuesByNode(t, "ssbFrequency", ctx.Config.Band)
				nodes := nodesTouchingBoth(sets, ctx.Config.EffectiveSSBPre(), ctx.Config.EffectiveSSBPost())
				return len(nodes), nodes, nil
			},
		},
		{
			SubCategory: "NRCellDU Inconsistencies",
			Metric:      "NR nodes with an SSB value outside both the pre and post sets",
			Table:       "NRCellDU",
			Fields:      []string{"ssbFrequency"},
			Run: func(ctx *Context, t domain.Table) (int, []string, error) {
				sets := baseValuesByNode(t, "ssbFrequency", ctx.Config.Band)
				nodes := nodesOutside(sets, ctx.Config.EffectiveSSBPre(), ctx.Config.EffectiveSSBPost())
				return len(nodes), nodes, nil
			},
		},
	}
}

func (e *Engine) nrFrequencyChecks() []Check {
	pre := e.cfg.SSBPre
	post := e.cfg.SSBPost
	return []Check{
		{
			SubCategory: "NRFrequency",
			Metric:      fmt.Sprintf("NR nodes with the old SSB (%s) (from NRFrequency table)", pre),
			Table:       "NRFrequency",
			Fields:      []string{"arfcnValueNRDl"},
			Run: func(ctx *Context, t domain.Table) (int, []string, error) {
				sets := baseValuesByNode(t, "arfcnValueNRDl", ctx.Config.Band)
				nodes := nodesWith(sets, pre)
				return len(nodes), nodes, nil
			},
		},
		{
			SubCategory: "NRFrequency",
			Metric:      fmt.Sprintf("NR nodes with the new SSB (%s) (from NRFrequency table)", post),
			Table:       "NRFrequency",
			Fields:      []string{"arfcnValueNRDl"},
			Run: func(ctx *Context, t domain.Table) (int, []string, error) {
				sets := baseValuesByNode(t, "arfcnValueNRDl", ctx.Config.Band)
				nodes := nodesWith(sets, post)
				return len(nodes), nodes, nil
			},
		},
		{
			SubCategory: "NRFrequency",
			Metric:      fmt.Sprintf("NR nodes with both SSB values (%s and %s) (from NRFrequency table)", pre, post),
			Table:       "NRFrequency",
			Fields:      []string{"arfcnValueNRDl"},
			Run: func(ctx *Context, t domain.Table) (int, []string, error) {
				sets := baseValuesByNode(t, "arfcnValueNRDl", ctx.Config.Band)
				nodes := nodesWithBoth(sets, pre, post)
				return len(nodes), nodes, nil
			},
		},
		{
			SubCategory: "NRFrequency",
			Metric:      fmt.Sprintf("NR nodes with the old SSB (%s) but without the new SSB (%s) (from NRFrequency table)", pre, post),
			Table:       "NRFrequency",
			Fields:      []string{"arfcnValueNRDl"},
			Run: func(ctx *Context, t domain.Table) (int, []string, error) {
				sets := baseValuesByNode(t, "arfcnValueNRDl", ctx.Config.Band)
				nodes := nodesWithFirstOnly(sets, pre, post)
				return len(nodes), nodes, nil
			},
		},
		{
			SubCategory: "NRFrequency Inconsistencies",
			Metric:      fmt.Sprintf("NR nodes with an in-band NRFrequency matching neither %s nor %s", pre, post),
			Table:       "NRFrequency",
			Fields:      []string{"arfcnValueNRDl"},
			Run: func(ctx *Context, t domain.Table) (int, []string, error) {
				sets := baseValuesByNode(t, "arfcnValueNRDl", ctx.Config.Band)
				nodes := nodesAllOutside(sets, []string{pre}, []string{post})
				return len(nodes), nodes, nil
			},
		},
	}
}

func (e *Engine) nrFreqRelationChecks() []Check {
	pre := e.cfg.SSBPre
	post := e.cfg.SSBPost
	return []Check{
		{
			SubCategory: "NRFreqRelation",
			Metric:      fmt.Sprintf("NR nodes with a relation to the old SSB (%s) (from NRFreqRelation table)", pre),
			Table:       "NRFreqRelation",
			Fields:      []string{"nRFreqRelationId"},
			Run: func(ctx *Context, t domain.Table) (int, []string, error) {
				sets := baseValuesByNode(t, "nRFreqRelationId", ctx.Config.Band)
				nodes := nodesWith(sets, pre)
				return len(nodes), nodes, nil
			},
		},
		{
			SubCategory: "NRFreqRelation",
			Metric:      fmt.Sprintf("NR nodes with a relation to the new SSB (%s) (from NRFreqRelation table)", post),
			Table:       "NRFreqRelation",
			Fields:      []string{"nRFreqRelationId"},
			Run: func(ctx *Context, t domain.Table) (int, []string, error) {
				sets := baseValuesByNode(t, "nRFreqRelationId", ctx.Config.Band)
				nodes := nodesWith(sets, post)
				return len(nodes), nodes, nil
			},
		},
		{
			SubCategory: "NRFreqRelation",
			Metric:      fmt.Sprintf("NR nodes with relations to both SSB values (%s and %s)", pre, post),
			Table:       "NRFreqRelation",
			Fields:      []string{"nRFreqRelationId"},
			Run: func(ctx *Context, t domain.Table) (int, []string, error) {
				sets := baseValuesByNode(t, "nRFreqRelationId", ctx.Config.Band)
				nodes := nodesWithBoth(sets, pre, post)
				return len(nodes), nodes, nil
			},
		},
		{
			SubCategory: "NRFreqRelation",
			Metric:      fmt.Sprintf("NR nodes with a relation to the old SSB (%s) but none to the new SSB (%s)", pre, post),
			Table:       "NRFreqRelation",
			Fields:      []string{"nRFreqRelationId"},
			Run: func(ctx *Context, t domain.Table) (int, []string, error) {
				sets := baseValuesByNode(t, "nRFreqRelationId", ctx.Config.Band)
				nodes := nodesWithFirstOnly(sets, pre, post)
				return len(nodes), nodes, nil
			},
		},
		{
			SubCategory: "NRFreqRelation Inconsistencies",
			Metric:      fmt.Sprintf("NRFreqRelation ids embedding %s or %s but not following the auto_<freq> naming", pre, post),
			Table:       "NRFreqRelation",
			Fields:      []string{"nRFreqRelationId"},
			Run: func(ctx *Context, t domain.Table) (int, []string, error) {
				return nonConformingRelationIDs(t, "nRFreqRelationId", pre, post)
			},
		},
	}
}

func (e *Engine) nrSectorCarrierChecks() []Check {
	return []Check{
		{
			SubCategory: "NRSectorCarrier",
			Metric: fmt.Sprintf("NR nodes with an in-band sector carrier ARFCN [%d..%d]",
				e.cfg.Band.Low, e.cfg.Band.High),
			Table:  "NRSectorCarrier",
			Fields: []string{"arfcnDL"},
			Run: func(ctx *Context, t domain.Table) (int, []string, error) {
				nodes := nodesAny(baseValuesByNode(t, "arfcnDL", ctx.Config.Band))
				return len(nodes), nodes, nil
			},
		},
		{
			SubCategory: "NRSectorCarrier",
			Metric:      "NR nodes with all sector carrier ARFCNs in the pre-retune set",
			Table:       "NRSectorCarrier",
			Fields:      []string{"arfcnDL"},
			Run: func(ctx *Context, t domain.Table) (int, []string, error) {
				sets := baseValuesByNode(t, "arfcnDL", ctx.Config.Band)
				nodes := nodesOnlyWithin(sets, effectiveARFCN(ctx.Config.AllowedARFCNPre, ctx.Config.SSBPre))
				return len(nodes), nodes, nil
			},
		},
		{
			SubCategory: "NRSectorCarrier",
			Metric:      "NR nodes with all sector carrier ARFCNs in the post-retune set",
			Table:       "NRSectorCarrier",
			Fields:      []string{"arfcnDL"},
			Run: func(ctx *Context, t domain.Table) (int, []string, error) {
				sets := baseValuesByNode(t, "arfcnDL", ctx.Config.Band)
				nodes := nodesOnlyWithin(sets, effectiveARFCN(ctx.Config.AllowedARFCNPost, ctx.Config.SSBPost))
				return len(nodes), nodes, nil
			},
		},
		{
			SubCategory: "NRSectorCarrier Inconsistencies",
			Metric:      "Sector carrier ARFCNs outside both the pre and post sets (node: arfcn)",
			Table:       "NRSectorCarrier",
			Fields:      []string{"arfcnDL"},
			Run: func(ctx *Context, t domain.Table) (int, []string, error) {
				sets := baseValuesByNode(t, "arfcnDL", ctx.Config.Band)
				pairs := pairsOutside(sets,
					effectiveARFCN(ctx.Config.AllowedARFCNPre, ctx.Config.SSBPre),
					effectiveARFCN(ctx.Config.AllowedARFCNPost, ctx.Config.SSBPost))
				return len(pairs), pairs, nil
			},
		},
	}
}

// effectiveARFCN falls back to the SSB campaign value when no explicit
// ARFCN allow-list is configured.
func effectiveARFCN(list []string, fallback string) []string {
	if len(list) > 0 {
		return list
	}
	return []string{fallback}
}

// nonConformingRelationIDs flags relation identifiers that embed one of the
// campaign frequencies yet carry extra characters beyond the vendor
// auto_<freq> convention, a symptom of half-migrated auto-created relations.
func nonConformingRelationIDs(t domain.Table, field, pre, post string) (int, []string, error) {
	var out []string
	seen := map[string]struct{}{}
	for _, row := range t.Rows {
		id, ok := row.GetString(field)
		if !ok || id == "" {
			continue
		}
		base := freq.ExtractBase(id)
		if base != pre && base != post {
			continue
		}
		if conformingRelationID.MatchString(strings.TrimSpace(id)) {
			continue
		}
		node, _ := row.GetString(domain.NodeIDField)
		pair := node + ": " + id
		if _, dup := seen[pair]; dup {
			continue
		}
		seen[pair] = struct{}{}
		out = append(out, pair)
	}
	sort.Strings(out)
	return len(out), out, nil
}
