package server

import (
	"github.com/jaimetur/SSB-RetuningAutomations/internal/audit"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/config"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/diff"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/domain"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/export"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/freq"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/scope"
)

// relationTable declares one relation table the diff engine compares
// between snapshots.
type relationTable struct {
	name      string
	keyFields []string
	freqField string
}

// diffedTables is the fixed set of relation tables compared PRE against
// POST.
var diffedTables = []relationTable{
	{
		name:      "NRCellRelation",
		keyFields: []string{domain.NodeIDField, "nRCellCUId", "nRCellRelationId"},
		freqField: "nRFreqRelationRef",
	},
	{
		name:      "GUtranCellRelation",
		keyFields: []string{domain.NodeIDField, "eUtranCellFDDId", "gUtranCellRelationId"},
		freqField: "neighborCellRef",
	},
}

// RunReport executes the full pipeline over a PRE and a POST snapshot: both
// audits, the ledger comparison and the relation diffs. Either snapshot may
// be nil, degrading to a single-ledger report without comparison or diffs.
func RunReport(cfg config.Config, pre, post *domain.TableStore) export.Report {
	engine := audit.New(cfg)
	resolver := scope.Resolver{Table: "NRCellDU", Field: "ssbFrequency", Band: cfg.Band}

	report := export.Report{}

	var preLedger, postLedger *domain.MetricsLedger
	if pre != nil && post != nil {
		// The two audits are independent reads over disjoint stores.
		done := make(chan struct{})
		go func() {
			defer close(done)
			preScope := resolver.Resolve(pre, cfg.EffectiveSSBPre(), cfg.EffectiveSSBPost())
			preLedger = engine.Run(pre, preScope)
		}()
		postScope := resolver.Resolve(post, cfg.EffectiveSSBPre(), cfg.EffectiveSSBPost())
		postLedger = engine.Run(post, postScope)
		<-done

		report.Comparison = audit.CompareLedgers(preLedger, postLedger)
		report.Deltas = runDiffs(cfg, pre, post, postScope)
	} else if pre != nil {
		preScope := resolver.Resolve(pre, cfg.EffectiveSSBPre(), cfg.EffectiveSSBPost())
		preLedger = engine.Run(pre, preScope)
	} else if post != nil {
		postScope := resolver.Resolve(post, cfg.EffectiveSSBPre(), cfg.EffectiveSSBPost())
		postLedger = engine.Run(post, postScope)
	}

	report.LedgerPre = preLedger
	report.LedgerPost = postLedger
	return report
}

// runDiffs compares every configured relation table. The retuned-node
// filter comes from the POST node scope so half-migrated nodes don't flood
// the missing/discrepancy sheets.
func runDiffs(cfg config.Config, pre, post *domain.TableStore, postScope domain.NodeScope) []domain.RelationDelta {
	retuned := retunedFilter(postScope)
	var deltas []domain.RelationDelta
	for _, rt := range diffedTables {
		preTable, preOK := pre.Lookup(rt.name)
		postTable, postOK := post.Lookup(rt.name)
		if !preOK && !postOK {
			continue
		}
		deltas = append(deltas, diff.Relations(preTable, postTable, diff.Options{
			TableName:     rt.name,
			KeyFields:     rt.keyFields,
			FreqField:     rt.freqField,
			IgnoredFields: cfg.IgnoredFieldSet(),
			Plan:          cfg.Plan(),
			RetunedNodes:  retuned,
		}))
	}
	return deltas
}

// retunedFilter keys the filter by both the node name and its leading
// numeric identifier, the two forms relation rows reference nodes by. An
// empty scope disables filtering rather than suppressing everything.
func retunedFilter(postScope domain.NodeScope) map[string]struct{} {
	retuned := postScope.RetunedSet()
	if len(retuned) == 0 {
		return nil
	}
	out := map[string]struct{}{}
	for node := range retuned {
		out[node] = struct{}{}
		if id := freq.LeadingID(node); id != "" {
			out[id] = struct{}{}
		}
	}
	return out
}
