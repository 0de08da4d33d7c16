// Package export renders audit and comparison results into an XLSX
// workbook: one summary sheet per ledger, one comparison sheet, and three
// sheets per diffed relation table. Values only, no styling; the workbook
// is a data product, not a presentation.
package export

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/jaimetur/SSB-RetuningAutomations/internal/domain"
)

// Excel caps sheet names at 31 characters.
const maxSheetName = 31

// Report bundles everything one audit run produced. Nil members are
// skipped, so a single-snapshot run renders only its own ledger.
type Report struct {
	LedgerPre  *domain.MetricsLedger
	LedgerPost *domain.MetricsLedger
	Comparison *domain.LedgerComparison
	Deltas     []domain.RelationDelta
}

// Service writes report workbooks.
type Service struct {
	exportDir string
}

// Option customises the service.
type Option func(*Service)

// WithExportDirectory overrides where WriteWorkbook places files.
func WithExportDirectory(dir string) Option {
	return func(s *Service) {
		if strings.TrimSpace(dir) != "" {
			s.exportDir = dir
		}
	}
}

// NewService creates an export service.
func NewService(opts ...Option) *Service {
	s := &Service{exportDir: "exports"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WriteWorkbook renders the report and writes it under the export
// directory with a unique name, returning the file path.
func (s *Service) WriteWorkbook(report Report) (string, error) {
	f, err := s.Render(report)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	name := fmt.Sprintf("RetuningAudit_%s_%s.xlsx",
		time.Now().Format("20060102_150405"), uuid.NewString()[:8])
	path := filepath.Join(s.exportDir, name)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	log.Printf("[EXPORT] wrote %s", path)
	return path, nil
}

// Render builds the in-memory workbook. The caller owns the returned file
// and must close it.
func (s *Service) Render(report Report) (*excelize.File, error) {
	f := excelize.NewFile()

	used := map[string]struct{}{}
	var summary [][]any

	addLedger := func(title string, ledger *domain.MetricsLedger) error {
		if ledger == nil {
			return nil
		}
		sheet := uniqueSheetName(title, used)
		rows := make([][]any, 0, ledger.Len()+1)
		rows = append(rows, []any{"Category", "SubCategory", "Metric", "Value", "ExtraInfo"})
		for _, row := range ledger.Rows {
			rows = append(rows, []any{row.Category, row.SubCategory, row.Metric, row.Value.String(), row.ExtraInfoText()})
		}
		if err := writeSheet(f, sheet, rows); err != nil {
			return err
		}
		summary = append(summary, []any{sheet, ledger.Len()})
		return nil
	}

	if err := addLedger("SummaryAudit_Pre", report.LedgerPre); err != nil {
		return nil, err
	}
	if err := addLedger("SummaryAudit_Post", report.LedgerPost); err != nil {
		return nil, err
	}

	if report.Comparison != nil {
		sheet := uniqueSheetName("SummaryAuditComparison", used)
		rows := [][]any{{"Category", "SubCategory", "Metric", "Value_Pre", "Value_Post", "Value_Diff"}}
		for _, row := range report.Comparison.Rows {
			rows = append(rows, []any{
				row.Category, row.SubCategory, row.Metric,
				optionalValue(row.ValuePre), optionalValue(row.ValuePost), optionalDiff(row.ValueDiff),
			})
		}
		if err := writeSheet(f, sheet, rows); err != nil {
			return nil, err
		}
		summary = append(summary, []any{sheet, len(report.Comparison.Rows)})
	}

	for _, delta := range report.Deltas {
		if err := writeDelta(f, delta, used, &summary); err != nil {
			return nil, err
		}
	}

	// Summary sheet first so it opens as the landing page.
	summaryRows := append([][]any{{"Sheet", "Rows"}}, summary...)
	if err := writeSheet(f, "Summary", summaryRows); err != nil {
		return nil, err
	}
	idx, err := f.GetSheetIndex("Summary")
	if err != nil {
		return nil, fmt.Errorf("summary sheet index: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}
	return f, nil
}

// writeDelta renders the three sheets of one relation delta: parameter and
// frequency discrepancies, rows new in POST, and rows missing in POST.
func writeDelta(f *excelize.File, delta domain.RelationDelta, used map[string]struct{}, summary *[][]any) error {
	discSheet := uniqueSheetName(delta.TableName+"_Discrepancies", used)
	discRows := [][]any{{"Key", "NodeId", "ParamDiff", "DiffFields", "FreqPre", "FreqPost", "FreqDiff", "Target"}}
	for _, d := range delta.Discrepancies {
		discRows = append(discRows, []any{
			d.Key.Display(), d.NodeID,
			d.ParamDiff, strings.Join(d.DiffFields, ", "),
			d.FreqPre, d.FreqPost, d.FreqDiff, string(d.Target),
		})
	}
	if err := writeSheet(f, discSheet, discRows); err != nil {
		return err
	}
	*summary = append(*summary, []any{discSheet, len(delta.Discrepancies)})

	newSheet := uniqueSheetName(delta.TableName+"_NewInPost", used)
	if err := writeSheet(f, newSheet, entryRows(delta.KeyFields, delta.New)); err != nil {
		return err
	}
	*summary = append(*summary, []any{newSheet, len(delta.New)})

	missingSheet := uniqueSheetName(delta.TableName+"_MissingInPost", used)
	if err := writeSheet(f, missingSheet, entryRows(delta.KeyFields, delta.Missing)); err != nil {
		return err
	}
	*summary = append(*summary, []any{missingSheet, len(delta.Missing)})
	return nil
}

// entryRows renders delta entries with the key fields first, then every
// remaining field of the source row in sorted order.
func entryRows(keyFields []string, entries []domain.DeltaEntry) [][]any {
	extraFields := map[string]struct{}{}
	keySet := map[string]struct{}{}
	for _, k := range keyFields {
		keySet[k] = struct{}{}
	}
	for _, e := range entries {
		for field := range e.Row.Fields {
			if _, isKey := keySet[field]; !isKey {
				extraFields[field] = struct{}{}
			}
		}
	}
	extras := sortedFieldNames(extraFields)

	header := make([]any, 0, len(keyFields)+len(extras))
	for _, k := range keyFields {
		header = append(header, k)
	}
	for _, fld := range extras {
		header = append(header, fld)
	}
	rows := [][]any{header}

	for _, e := range entries {
		row := make([]any, 0, len(header))
		for _, k := range keyFields {
			v, _ := e.Row.GetString(k)
			row = append(row, v)
		}
		for _, fld := range extras {
			v, _ := e.Row.GetString(fld)
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return rows
}

func writeSheet(f *excelize.File, name string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell coordinates: %w", err)
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("write row %d of %s: %w", i+1, name, err)
		}
	}
	return nil
}

// uniqueSheetName sanitizes a candidate to the Excel naming rules and
// disambiguates collisions with a numeric suffix.
func uniqueSheetName(candidate string, used map[string]struct{}) string {
	name := sanitizeSheetName(candidate)
	final := name
	for i := 2; ; i++ {
		if _, taken := used[final]; !taken {
			break
		}
		suffix := fmt.Sprintf("_%d", i)
		if len(name)+len(suffix) > maxSheetName {
			final = name[:maxSheetName-len(suffix)] + suffix
		} else {
			final = name + suffix
		}
	}
	used[final] = struct{}{}
	return final
}

func sanitizeSheetName(name string) string {
	replacer := strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_")
	name = replacer.Replace(strings.TrimSpace(name))
	if name == "" {
		name = "Sheet"
	}
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return name
}

func sortedFieldNames(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func optionalValue(v *domain.MetricValue) string {
	if v == nil {
		return ""
	}
	return v.String()
}

func optionalDiff(d *int) any {
	if d == nil {
		return ""
	}
	return *d
}
