package audit

import (
	"fmt"

	"github.com/jaimetur/SSB-RetuningAutomations/internal/config"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/domain"
)

// lteFrequencyCategory audits the LTE side: GUtranSyncSignalFrequency
// instances carrying the NR anchor frequencies, and the LTE-to-NR relation
// identifiers that embed them.
func (e *Engine) lteFrequencyCategory() Category {
	pre := e.cfg.SSBPre
	post := e.cfg.SSBPost
	return Category{
		Name:    "LTE Frequency Audit",
		Enabled: func(cfg config.Config) bool { return cfg.Toggles.FrequencyAudit },
		Checks: []Check{
			{
				SubCategory: "GUtranSyncSignalFrequency",
				Metric:      "LTE nodes with NR sync frequencies defined (from GUtranSyncSignalFrequency table)",
				Table:       "GUtranSyncSignalFrequency",
				Fields:      []string{"arfcn"},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					nodes := nodesAny(baseValuesByNode(t, "arfcn", ctx.Config.Band))
					return len(nodes), nodes, nil
				},
			},
			{
				SubCategory: "GUtranSyncSignalFrequency",
				Metric:      fmt.Sprintf("LTE nodes with the old SSB (%s) (from GUtranSyncSignalFrequency table)", pre),
				Table:       "GUtranSyncSignalFrequency",
				Fields:      []string{"arfcn"},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					sets := baseValuesByNode(t, "arfcn", ctx.Config.Band)
					nodes := nodesWith(sets, pre)
					return len(nodes), nodes, nil
				},
			},
			{
				SubCategory: "GUtranSyncSignalFrequency",
				Metric:      fmt.Sprintf("LTE nodes with the new SSB (%s) (from GUtranSyncSignalFrequency table)", post),
				Table:       "GUtranSyncSignalFrequency",
				Fields:      []string{"arfcn"},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					sets := baseValuesByNode(t, "arfcn", ctx.Config.Band)
					nodes := nodesWith(sets, post)
					return len(nodes), nodes, nil
				},
			},
			{
				SubCategory: "GUtranSyncSignalFrequency",
				Metric:      fmt.Sprintf("LTE nodes with both SSB values (%s and %s)", pre, post),
				Table:       "GUtranSyncSignalFrequency",
				Fields:      []string{"arfcn"},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					sets := baseValuesByNode(t, "arfcn", ctx.Config.Band)
					nodes := nodesWithBoth(sets, pre, post)
					return len(nodes), nodes, nil
				},
			},
			{
				SubCategory: "GUtranSyncSignalFrequency",
				Metric:      fmt.Sprintf("LTE nodes with the old SSB (%s) but without the new SSB (%s)", pre, post),
				Table:       "GUtranSyncSignalFrequency",
				Fields:      []string{"arfcn"},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					sets := baseValuesByNode(t, "arfcn", ctx.Config.Band)
					nodes := nodesWithFirstOnly(sets, pre, post)
					return len(nodes), nodes, nil
				},
			},
			{
				SubCategory: "GUtranSyncSignalFrequency Inconsistencies",
				Metric:      fmt.Sprintf("LTE nodes with an in-band sync frequency matching neither %s nor %s", pre, post),
				Table:       "GUtranSyncSignalFrequency",
				Fields:      []string{"arfcn"},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					sets := baseValuesByNode(t, "arfcn", ctx.Config.Band)
					nodes := nodesAllOutside(sets, []string{pre}, []string{post})
					return len(nodes), nodes, nil
				},
			},
			{
				SubCategory: "GUtranFreqRelation",
				Metric:      fmt.Sprintf("LTE nodes with a relation to the old SSB (%s) (from GUtranFreqRelation table)", pre),
				Table:       "GUtranFreqRelation",
				Fields:      []string{"gUtranFreqRelationId"},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					sets := baseValuesByNode(t, "gUtranFreqRelationId", ctx.Config.Band)
					nodes := nodesWith(sets, pre)
					return len(nodes), nodes, nil
				},
			},
			{
				SubCategory: "GUtranFreqRelation",
				Metric:      fmt.Sprintf("LTE nodes with a relation to the new SSB (%s) (from GUtranFreqRelation table)", post),
				Table:       "GUtranFreqRelation",
				Fields:      []string{"gUtranFreqRelationId"},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					sets := baseValuesByNode(t, "gUtranFreqRelationId", ctx.Config.Band)
					nodes := nodesWith(sets, post)
					return len(nodes), nodes, nil
				},
			},
			{
				SubCategory: "GUtranFreqRelation",
				Metric:      fmt.Sprintf("LTE nodes with a relation to the old SSB (%s) but none to the new SSB (%s)", pre, post),
				Table:       "GUtranFreqRelation",
				Fields:      []string{"gUtranFreqRelationId"},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					sets := baseValuesByNode(t, "gUtranFreqRelationId", ctx.Config.Band)
					nodes := nodesWithFirstOnly(sets, pre, post)
					return len(nodes), nodes, nil
				},
			},
			{
				SubCategory: "GUtranFreqRelation Inconsistencies",
				Metric:      fmt.Sprintf("GUtranFreqRelation ids embedding %s or %s but not following the auto_<freq> naming", pre, post),
				Table:       "GUtranFreqRelation",
				Fields:      []string{"gUtranFreqRelationId"},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					return nonConformingRelationIDs(t, "gUtranFreqRelationId", pre, post)
				},
			},
		},
	}
}
