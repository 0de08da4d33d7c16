package audit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jaimetur/SSB-RetuningAutomations/internal/config"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/domain"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/freq"
)

// profilesCategory verifies that every profile embedding the old frequency
// token has a replica named after the new token on the same node, and that
// the replica's parameters match the original. The frequency token check is
// whole-token, so 646656 never matches inside 6466560.
func (e *Engine) profilesCategory() Category {
	checks := make([]Check, 0, 2*len(e.cfg.ProfileTables))
	for _, pt := range e.cfg.ProfileTables {
		pt := pt
		checks = append(checks,
			Check{
				SubCategory: pt.Table + " Inconsistencies",
				Metric:      fmt.Sprintf("%s profiles with the old frequency token but no new-token replica", pt.Table),
				Table:       pt.Table,
				Fields:      []string{pt.IDField},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					return missingProfileReplicas(ctx, t, pt)
				},
			},
			Check{
				SubCategory: pt.Table + " Inconsistencies",
				Metric:      fmt.Sprintf("%s replicas whose parameters differ from the original profile", pt.Table),
				Table:       pt.Table,
				Fields:      []string{pt.IDField},
				Run: func(ctx *Context, t domain.Table) (int, []string, error) {
					return divergentProfileReplicas(ctx, t, pt)
				},
			},
		)
	}
	return Category{
		Name:    "Profiles Audit",
		Enabled: func(cfg config.Config) bool { return cfg.Toggles.ProfilesAudit },
		Checks:  checks,
	}
}

// profileTokens parses the campaign values as integers. Profiles embed the
// frequency as a numeric token inside longer identifiers.
func profileTokens(cfg config.Config) (int, int, bool) {
	pre, okPre := freq.ParseInt(cfg.SSBPre)
	post, okPost := freq.ParseInt(cfg.SSBPost)
	return pre, post, okPre && okPost
}

// missingProfileReplicas lists, per node, the old-token profiles whose
// expected new-token replica is absent.
func missingProfileReplicas(ctx *Context, t domain.Table, pt config.ProfileTable) (int, []string, error) {
	pre, post, ok := profileTokens(ctx.Config)
	if !ok {
		return 0, nil, fmt.Errorf("campaign values %q/%q are not numeric", ctx.Config.SSBPre, ctx.Config.SSBPost)
	}

	var out []string
	for node, rows := range t.GroupByNode() {
		ids := map[string]struct{}{}
		for _, row := range rows {
			if id, ok := row.GetString(pt.IDField); ok && id != "" {
				ids[id] = struct{}{}
			}
		}
		for id := range ids {
			if !freq.ContainsToken(id, pre) {
				continue
			}
			replica := freq.ReplaceToken(id, pre, post)
			if _, exists := ids[replica]; !exists {
				out = append(out, node+": "+id)
			}
		}
	}
	sort.Strings(out)
	return len(out), out, nil
}

// divergentProfileReplicas compares each old-token profile with its replica
// field by field. The identifier itself and reservation metadata both
// legitimately differ, everything else must match.
func divergentProfileReplicas(ctx *Context, t domain.Table, pt config.ProfileTable) (int, []string, error) {
	pre, post, ok := profileTokens(ctx.Config)
	if !ok {
		return 0, nil, fmt.Errorf("campaign values %q/%q are not numeric", ctx.Config.SSBPre, ctx.Config.SSBPost)
	}

	skip := map[string]struct{}{
		domain.NodeIDField: {},
		pt.IDField:         {},
		"reservedBy":       {},
	}
	for f := range ctx.Config.IgnoredFieldSet() {
		skip[f] = struct{}{}
	}

	var out []string
	for node, rows := range t.GroupByNode() {
		byID := map[string]domain.Record{}
		for _, row := range rows {
			id, ok := row.GetString(pt.IDField)
			if !ok || id == "" {
				continue
			}
			if _, dup := byID[id]; !dup {
				byID[id] = row
			}
		}
		for id, original := range byID {
			if !freq.ContainsToken(id, pre) {
				continue
			}
			replica, exists := byID[freq.ReplaceToken(id, pre, post)]
			if !exists {
				continue
			}
			diffs := sharedFieldDiffs(original, replica, skip)
			if len(diffs) > 0 {
				out = append(out, node+": "+id+" ("+strings.Join(diffs, "|")+")")
			}
		}
	}
	sort.Strings(out)
	return len(out), out, nil
}
