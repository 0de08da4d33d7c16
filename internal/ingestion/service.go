// Package ingestion turns raw configuration snapshots into a TableStore.
// Two input shapes are supported: the vendor log/text dump, where every MO
// table is a slice delimited by a SubNetwork header line, and XLSX
// workbooks with one sheet per table.
package ingestion

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jaimetur/SSB-RetuningAutomations/internal/domain"
)

var (
	// ErrUnsupportedFormat is returned when an uploaded file is not supported.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

	// summaryLineRe matches the "N instance(s)" terminator the dump prints
	// after every table.
	summaryLineRe = regexp.MustCompile(`(?i)^\s*\d+\s+instance\(s\)\s*$`)
)

// summarySheet is reserved by the export side and never ingested back.
const summarySheet = "Summary"

// ParseSnapshot parses one uploaded file and appends its tables to the
// store. Tables arriving under a name the store already holds are appended
// to the existing table, which is how a snapshot split over several dump
// files merges back together.
func ParseSnapshot(store *domain.TableStore, fileName string, payload []byte) error {
	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".log", ".logs", ".txt":
		return parseLog(store, fileName, payload)
	case ".xlsx":
		return parseWorkbook(store, payload)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// parseLog splits a dump file into MO table slices. Each slice starts at a
// line beginning with "SubNetwork"; the table name is the last
// comma-separated token of that line, and the next non-empty, non-summary
// line is the data header. Files without any SubNetwork line fall back to a
// single table named after the file.
func parseLog(store *domain.TableStore, fileName string, payload []byte) error {
	lines := readLines(payload)

	headerIndices := subNetworkHeaders(lines)
	if len(headerIndices) == 0 {
		name := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
		table, ok := parseSlice(name, lines, 0, len(lines))
		if !ok {
			return fmt.Errorf("no table found in %s", fileName)
		}
		store.Put(table)
		log.Printf("[INGEST] %s: table %s (%d rows)", fileName, table.Name, len(table.Rows))
		return nil
	}

	headerIndices = append(headerIndices, len(lines))
	parsed := 0
	for i := 0; i < len(headerIndices)-1; i++ {
		start, end := headerIndices[i], headerIndices[i+1]
		name := tableNameFromSubNetworkLine(lines[start])
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
		}
		table, ok := parseSlice(name, lines, start+1, end)
		if !ok {
			continue
		}
		store.Put(table)
		parsed++
		log.Printf("[INGEST] %s: table %s (%d rows)", fileName, table.Name, len(table.Rows))
	}
	if parsed == 0 {
		return fmt.Errorf("no table found in %s", fileName)
	}
	return nil
}

// parseSlice reads one table from lines[start:end): the first non-empty,
// non-summary line is the header, everything after it is data. Data rows
// prefer tab separation; a slice without any tab falls back to commas.
func parseSlice(name string, lines []string, start, end int) (domain.Table, bool) {
	headerIdx := -1
	for i := start; i < end; i++ {
		if strings.TrimSpace(lines[i]) == "" || summaryLineRe.MatchString(lines[i]) {
			continue
		}
		headerIdx = i
		break
	}
	if headerIdx < 0 {
		return domain.Table{}, false
	}

	sep := "\t"
	if !strings.Contains(lines[headerIdx], "\t") {
		sep = ","
	}
	headers := splitColumns(lines[headerIdx], sep)
	if len(headers) == 0 {
		return domain.Table{}, false
	}

	var rows []domain.Record
	for i := headerIdx + 1; i < end; i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" || summaryLineRe.MatchString(line) {
			continue
		}
		values := splitColumns(line, sep)
		fields := make(map[string]any, len(headers))
		for col, header := range headers {
			if header == "" {
				continue
			}
			if col < len(values) {
				fields[header] = values[col]
			} else {
				fields[header] = ""
			}
		}
		rows = append(rows, domain.NewRecord(fields))
	}
	return domain.NewTable(name, rows), true
}

// parseWorkbook ingests every sheet of an XLSX file as one table, first row
// as header. The Summary sheet written by exports is skipped.
func parseWorkbook(store *domain.TableStore, payload []byte) error {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return errors.New("excel file has no sheets")
	}

	parsed := 0
	for _, sheet := range sheets {
		if sheet == summarySheet {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		headers := rows[0]
		var records []domain.Record
		for _, row := range rows[1:] {
			if emptyRow(row) {
				continue
			}
			fields := make(map[string]any, len(headers))
			for col, header := range headers {
				header = strings.TrimSpace(header)
				if header == "" {
					continue
				}
				if col < len(row) {
					fields[header] = strings.TrimSpace(row[col])
				} else {
					fields[header] = ""
				}
			}
			records = append(records, domain.NewRecord(fields))
		}
		store.Put(domain.NewTable(sheet, records))
		parsed++
		log.Printf("[INGEST] sheet %s (%d rows)", sheet, len(records))
	}
	if parsed == 0 {
		return errors.New("excel file has no data sheets")
	}
	return nil
}

func readLines(payload []byte) []string {
	payload = bytes.TrimPrefix(payload, byteOrderMark)
	scanner := bufio.NewScanner(bytes.NewReader(payload))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	return lines
}

// subNetworkHeaders returns the indices of every SubNetwork delimiter line.
func subNetworkHeaders(lines []string) []int {
	var out []int
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "SubNetwork") {
			out = append(out, i)
		}
	}
	return out
}

// tableNameFromSubNetworkLine extracts the MO name as the last
// comma-separated token, e.g. "SubNetwork,MeContext,...,GUtranSyncSignalFrequency"
// names the GUtranSyncSignalFrequency table.
func tableNameFromSubNetworkLine(line string) string {
	parts := strings.Split(strings.TrimSpace(line), ",")
	name := strings.TrimSpace(parts[len(parts)-1])
	if name == "SubNetwork" {
		return ""
	}
	return name
}

func splitColumns(line, sep string) []string {
	parts := strings.Split(line, sep)
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

func emptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
