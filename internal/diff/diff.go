// Package diff compares one relation table across the PRE and POST
// snapshots and classifies every composite key as new, missing, discrepant
// or unchanged. The engine is a classifier, not a projector: retained
// entries keep their full source rows so the render layer can explain every
// classification.
package diff

import (
	"sort"

	"github.com/jaimetur/SSB-RetuningAutomations/internal/domain"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/freq"
)

// Options parameterises one relation comparison.
type Options struct {
	// TableName labels the delta for the render layer.
	TableName string
	// KeyFields is the ordered composite key, e.g. NodeId, NRCellCUId,
	// NRCellRelationId.
	KeyFields []string
	// FreqField is the frequency-indicator field, excluded from the field
	// compare and fed to the frequency rule instead.
	FreqField string
	// IgnoredFields are excluded from the field compare (volatile fields
	// such as creation timestamps).
	IgnoredFields map[string]struct{}
	// Plan carries the campaign pre/post values for the frequency rule.
	Plan freq.Plan
	// RetunedNodes, when non-nil, suppresses Missing and Discrepancy
	// entries for nodes outside the set. New entries are never filtered.
	RetunedNodes map[string]struct{}
}

// Relations diffs the PRE and POST snapshots of one relation table.
//
// Keys are projected with Options.KeyFields; duplicate keys within one
// snapshot keep the first occurrence and report the rest. A key present in
// exactly one snapshot becomes New (POST only) or Missing (PRE only). A
// common key is compared field by field excluding keys, ignored fields and
// the frequency field; the frequency itself goes through the retune rule.
// Parameter and frequency discrepancies are independent flags on the same
// entry.
func Relations(pre, post domain.Table, opts Options) domain.RelationDelta {
	delta := domain.RelationDelta{
		TableName: opts.TableName,
		KeyFields: opts.KeyFields,
	}

	preByKey, preOrder, preDups := project(pre, opts.KeyFields)
	postByKey, postOrder, postDups := project(post, opts.KeyFields)
	delta.DuplicateKeys = append(preDups, postDups...)

	preKeys := map[domain.Key]struct{}{}
	for _, k := range preOrder {
		preKeys[k] = struct{}{}
	}

	// New: POST keys not in PRE, in POST row order.
	for _, k := range postOrder {
		if _, common := preKeys[k]; common {
			continue
		}
		row := postByKey[k]
		delta.New = append(delta.New, entry(k, row, "", baseOf(row, opts)))
	}

	for _, k := range preOrder {
		preRow := preByKey[k]
		postRow, common := postByKey[k]
		if !common {
			if retained(preRow, opts) {
				delta.Missing = append(delta.Missing, entry(k, preRow, baseOf(preRow, opts), ""))
			}
			continue
		}

		diffFields := compareFields(preRow, postRow, opts)
		freqPre := baseOf(preRow, opts)
		freqPost := baseOf(postRow, opts)
		freqDiff, target := frequencyRule(freqPre, freqPost, opts.Plan)

		if len(diffFields) == 0 && !freqDiff {
			delta.UnchangedCount++
			continue
		}
		if !retained(preRow, opts) {
			continue
		}
		node, _ := preRow.GetString(domain.NodeIDField)
		delta.Discrepancies = append(delta.Discrepancies, domain.Discrepancy{
			Key:        k,
			NodeID:     node,
			PreRow:     preRow,
			PostRow:    postRow,
			ParamDiff:  len(diffFields) > 0,
			DiffFields: diffFields,
			FreqDiff:   freqDiff,
			FreqPre:    freqPre,
			FreqPost:   freqPost,
			Target:     target,
		})
	}
	return delta
}

func entry(k domain.Key, row domain.Record, freqPre, freqPost string) domain.DeltaEntry {
	node, _ := row.GetString(domain.NodeIDField)
	return domain.DeltaEntry{Key: k, NodeID: node, Row: row, FreqPre: freqPre, FreqPost: freqPost}
}

// project maps each row to its composite key, keeping the first occurrence
// of duplicated keys and reporting the rest.
func project(t domain.Table, keyFields []string) (map[domain.Key]domain.Record, []domain.Key, []domain.Key) {
	byKey := map[domain.Key]domain.Record{}
	var order []domain.Key
	var dups []domain.Key
	for _, row := range t.Rows {
		k := domain.MakeKey(row, keyFields)
		if _, seen := byKey[k]; seen {
			dups = append(dups, k)
			continue
		}
		byKey[k] = row
		order = append(order, k)
	}
	return byKey, order, dups
}

// compareFields returns the sorted names of differing fields over the union
// of both rows, excluding keys, ignored fields and the frequency field. A
// field present on one side only counts as a difference.
func compareFields(pre, post domain.Record, opts Options) []string {
	skip := map[string]struct{}{opts.FreqField: {}}
	for _, f := range opts.KeyFields {
		skip[f] = struct{}{}
	}
	for f := range opts.IgnoredFields {
		skip[f] = struct{}{}
	}

	fields := map[string]struct{}{}
	for f := range pre.Fields {
		fields[f] = struct{}{}
	}
	for f := range post.Fields {
		fields[f] = struct{}{}
	}

	var out []string
	for f := range fields {
		if _, skipped := skip[f]; skipped {
			continue
		}
		preVal, preOK := pre.GetString(f)
		postVal, postOK := post.GetString(f)
		if preOK != postOK || preVal != postVal {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

// frequencyRule applies the retune expectation: a PRE frequency on either
// campaign value whose POST counterpart did not land on the post value is a
// frequency discrepancy. Unparsable references never trigger the rule.
func frequencyRule(freqPre, freqPost string, plan freq.Plan) (bool, domain.Target) {
	if freqPre == "" || freqPost == "" {
		return false, domain.TargetUnknown
	}
	if freqPre != plan.PreValue && freqPre != plan.PostValue {
		return false, domain.TargetUnknown
	}
	if freqPost == plan.PostValue {
		return false, domain.TargetUnknown
	}
	return true, plan.ClassifyTarget(freqPost)
}

func baseOf(row domain.Record, opts Options) string {
	if opts.FreqField == "" {
		return ""
	}
	raw, ok := row.GetString(opts.FreqField)
	if !ok {
		return ""
	}
	return freq.ExtractBase(raw)
}

// retained applies the retuned-node filter to Missing and Discrepancy
// candidates.
func retained(row domain.Record, opts Options) bool {
	if opts.RetunedNodes == nil {
		return true
	}
	node, _ := row.GetString(domain.NodeIDField)
	_, ok := opts.RetunedNodes[freq.LeadingID(node)]
	if ok {
		return true
	}
	_, ok = opts.RetunedNodes[node]
	return ok
}
