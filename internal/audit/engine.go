// Package audit evaluates the rule catalog over one configuration snapshot
// and produces the metrics ledger. The engine is best-effort by contract:
// no failure inside a check ever escapes Run, it degrades to a row.
package audit

import (
	"fmt"

	"github.com/jaimetur/SSB-RetuningAutomations/internal/config"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/domain"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/freq"
)

// Context is the read-only input handed to every check body.
type Context struct {
	Tables *domain.TableStore
	Scope  domain.NodeScope
	Config config.Config
	Plan   freq.Plan
}

// Check declares one audit rule. The required table and fields form the
// check's contract, verified by the runner before the body executes; the
// body itself only runs against a table known to satisfy the contract.
//
// The body returns the metric count and the affected identifiers. Errors
// (and panics) degrade to an ERROR row for this check alone.
type Check struct {
	SubCategory string
	Metric      string
	Table       string
	Fields      []string
	Run         func(ctx *Context, t domain.Table) (int, []string, error)
}

// Category owns an ordered list of checks sharing one Category column
// value. Disabled categories are skipped entirely, emitting nothing.
type Category struct {
	Name    string
	Enabled func(config.Config) bool
	Checks  []Check
}

// Engine runs the audit catalog.
type Engine struct {
	cfg config.Config
}

// New creates an engine for one configuration.
func New(cfg config.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Run evaluates every enabled check in catalog order and returns the
// ledger. The node-enumeration category executes first against the raw
// store; the unsynchronized nodes it finds are subtracted from every table
// before any later category runs.
func (e *Engine) Run(store *domain.TableStore, nodeScope domain.NodeScope) *domain.MetricsLedger {
	ledger := &domain.MetricsLedger{}

	ctx := &Context{
		Tables: store,
		Scope:  nodeScope,
		Config: e.cfg,
		Plan:   e.cfg.Plan(),
	}

	excluded := unsynchronizedNodes(store)
	e.runCategory(e.nodeEnumerationCategory(excluded), ctx, ledger)

	// Every check after node enumeration sees the filtered store.
	ctx = &Context{
		Tables: store.WithoutNodes(excluded),
		Scope:  nodeScope,
		Config: e.cfg,
		Plan:   e.cfg.Plan(),
	}

	for _, cat := range e.categories() {
		e.runCategory(cat, ctx, ledger)
	}
	return ledger
}

// categories returns the fixed catalog order. Later categories read the
// node scope and identifier sets derived from earlier ones, so the order is
// part of the contract, not an implementation detail.
func (e *Engine) categories() []Category {
	return []Category{
		e.nrFrequencyCategory(),
		e.lteFrequencyCategory(),
		e.relationCategory(),
		e.mismatchCategory(),
		e.externalCategory(),
		e.termpointCategory(),
		e.cardinalityCategory(),
		e.profilesCategory(),
	}
}

func (e *Engine) runCategory(cat Category, ctx *Context, ledger *domain.MetricsLedger) {
	if cat.Enabled != nil && !cat.Enabled(e.cfg) {
		return
	}
	for _, chk := range cat.Checks {
		ledger.Append(e.runCheck(cat.Name, chk, ctx))
	}
}

// runCheck applies the resilience policy: missing/empty table, missing
// field, and body failure each produce exactly one terminal row.
func (e *Engine) runCheck(category string, chk Check, ctx *Context) domain.MetricRow {
	row := domain.MetricRow{
		Category:    category,
		SubCategory: chk.SubCategory,
		Metric:      chk.Metric,
	}

	var table domain.Table
	if chk.Table != "" {
		t, ok := ctx.Tables.Lookup(chk.Table)
		if !ok || t.Empty() {
			row.Value = domain.MissingTableValue()
			return row
		}
		for _, field := range chk.Fields {
			if !t.HasField(field) {
				row.Value = domain.NAValue()
				return row
			}
		}
		table = t
	}

	count, affected, err := safeRun(chk.Run, ctx, table)
	if err != nil {
		row.Value = domain.ErrorValue(err)
		return row
	}
	row.Value = domain.CountValue(count)
	row.ExtraInfo = capList(affected, e.cfg.ExtraInfoLimit)
	return row
}

// safeRun shields the engine from panicking check bodies.
func safeRun(fn func(*Context, domain.Table) (int, []string, error), ctx *Context, t domain.Table) (count int, affected []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			count, affected = 0, nil
			err = fmt.Errorf("check panicked: %v", r)
		}
	}()
	return fn(ctx, t)
}

func capList(values []string, limit int) []string {
	if limit > 0 && len(values) > limit {
		return values[:limit]
	}
	return values
}
