package audit

import (
	"sort"
	"strings"

	"github.com/jaimetur/SSB-RetuningAutomations/internal/domain"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/freq"
)

// baseValuesByNode collects, per node, the set of base frequency tokens a
// field carries, restricted to the campaign band when one is configured.
func baseValuesByNode(t domain.Table, field string, band freq.Band) map[string]map[string]struct{} {
	out := map[string]map[string]struct{}{}
	for node, rows := range t.GroupByNode() {
		if node == "" {
			continue
		}
		for _, row := range rows {
			raw, ok := row.GetString(field)
			if !ok || raw == "" {
				continue
			}
			base := freq.ExtractBase(raw)
			if base == "" {
				continue
			}
			if band != (freq.Band{}) && !band.Contains(base) {
				continue
			}
			if out[node] == nil {
				out[node] = map[string]struct{}{}
			}
			out[node][base] = struct{}{}
		}
	}
	return out
}

// nodesWith returns the sorted nodes whose value set contains the value.
func nodesWith(sets map[string]map[string]struct{}, value string) []string {
	var out []string
	for node, values := range sets {
		if _, ok := values[value]; ok {
			out = append(out, node)
		}
	}
	sort.Strings(out)
	return out
}

// nodesWithBoth returns the sorted nodes carrying both values.
func nodesWithBoth(sets map[string]map[string]struct{}, a, b string) []string {
	var out []string
	for node, values := range sets {
		_, hasA := values[a]
		_, hasB := values[b]
		if hasA && hasB {
			out = append(out, node)
		}
	}
	sort.Strings(out)
	return out
}

// nodesWithFirstOnly returns the sorted nodes carrying a but not b.
func nodesWithFirstOnly(sets map[string]map[string]struct{}, a, b string) []string {
	var out []string
	for node, values := range sets {
		_, hasA := values[a]
		_, hasB := values[b]
		if hasA && !hasB {
			out = append(out, node)
		}
	}
	sort.Strings(out)
	return out
}

// nodesAny returns the sorted nodes with at least one value.
func nodesAny(sets map[string]map[string]struct{}) []string {
	out := make([]string, 0, len(sets))
	for node := range sets {
		out = append(out, node)
	}
	sort.Strings(out)
	return out
}

// nodesOutside returns the sorted nodes whose value set contains at least
// one value not present in any of the allow-lists.
func nodesOutside(sets map[string]map[string]struct{}, allowed ...[]string) []string {
	union := map[string]struct{}{}
	for _, list := range allowed {
		for _, v := range list {
			union[v] = struct{}{}
		}
	}
	var out []string
	for node, values := range sets {
		for v := range values {
			if _, ok := union[v]; !ok {
				out = append(out, node)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// nodesAllOutside returns the sorted nodes none of whose values appear in
// any allow-list. Nodes with an empty value set are never reported.
func nodesAllOutside(sets map[string]map[string]struct{}, allowed ...[]string) []string {
	union := map[string]struct{}{}
	for _, list := range allowed {
		for _, v := range list {
			union[v] = struct{}{}
		}
	}
	var out []string
	for node, values := range sets {
		if len(values) == 0 {
			continue
		}
		hit := false
		for v := range values {
			if _, ok := union[v]; ok {
				hit = true
				break
			}
		}
		if !hit {
			out = append(out, node)
		}
	}
	sort.Strings(out)
	return out
}

// nodesTouchingBoth returns the sorted nodes carrying at least one value
// from each of the two lists.
func nodesTouchingBoth(sets map[string]map[string]struct{}, listA, listB []string) []string {
	setA := map[string]struct{}{}
	for _, v := range listA {
		setA[v] = struct{}{}
	}
	setB := map[string]struct{}{}
	for _, v := range listB {
		setB[v] = struct{}{}
	}
	var out []string
	for node, values := range sets {
		hitA, hitB := false, false
		for v := range values {
			if _, ok := setA[v]; ok {
				hitA = true
			}
			if _, ok := setB[v]; ok {
				hitB = true
			}
		}
		if hitA && hitB {
			out = append(out, node)
		}
	}
	sort.Strings(out)
	return out
}

// pairsOutside renders "node: value" pairs for every value outside the
// allow-lists, sorted, one pair per offending value.
func pairsOutside(sets map[string]map[string]struct{}, allowed ...[]string) []string {
	union := map[string]struct{}{}
	for _, list := range allowed {
		for _, v := range list {
			union[v] = struct{}{}
		}
	}
	var out []string
	for node, values := range sets {
		for v := range values {
			if _, ok := union[v]; !ok {
				out = append(out, node+": "+v)
			}
		}
	}
	sort.Strings(out)
	return out
}

// nodesOnlyWithin returns the sorted nodes all of whose values fall in the
// allow-list.
func nodesOnlyWithin(sets map[string]map[string]struct{}, allowed []string) []string {
	allowedSet := map[string]struct{}{}
	for _, v := range allowed {
		allowedSet[v] = struct{}{}
	}
	var out []string
	for node, values := range sets {
		all := len(values) > 0
		for v := range values {
			if _, ok := allowedSet[v]; !ok {
				all = false
				break
			}
		}
		if all {
			out = append(out, node)
		}
	}
	sort.Strings(out)
	return out
}

// normalizeState uppercases an administrative/operational state value;
// absent values normalize to the empty string.
func normalizeState(row domain.Record, field string) string {
	v, _ := row.GetString(field)
	return strings.ToUpper(strings.TrimSpace(v))
}

// termpointOK applies the consolidated-status rule: a termpoint is OK when
// its administrative state is blank or UNLOCKED, its operational state is
// blank or ENABLED, and its availability status is blank. Blank never
// forces NOT_OK because many dumps omit the state columns entirely.
func termpointOK(row domain.Record) bool {
	admin := normalizeState(row, "administrativeState")
	oper := normalizeState(row, "operationalState")
	avail := normalizeState(row, "availabilityStatus")
	adminOK := admin == "" || admin == "UNLOCKED"
	operOK := oper == "" || oper == "ENABLED"
	availOK := avail == ""
	return adminOK && operOK && availOK
}

// sortedSet renders a membership set as a sorted slice.
func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
