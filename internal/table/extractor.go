// Package table reads the order table out of a raw sheet grid: it finds the
// header row below any banner rows and classifies what follows into section
// headers, data rows and the grand total
package table

import (
	"errors"
	"strings"

	"github.com/mikey/orden-vaciado/internal/utils"
)

// ErrNoHeaderRow is returned when no row looks like the table header
var ErrNoHeaderRow = errors.New("no header row found")

// Options configures header detection and column roles. Column roles are found
// by case-insensitive substring match on the header text
type Options struct {
	HeaderScanRows  int
	LotMarkers      []string
	ExporterMarkers []string
	LotColumn       string
	ProducerColumn  string
	KilosColumn     string
	// Placeholders are cell values that mean "blank" in these spreadsheets
	Placeholders []string
}

// DefaultOptions matches the layout of the plant's order spreadsheets
func DefaultOptions() Options {
	return Options{
		HeaderScanRows:  60,
		LotMarkers:      []string{"N° DE LOTE", "Nº DE LOTE", "N° LOTE", "Nº LOTE", "LOTE"},
		ExporterMarkers: []string{"EXPORT"},
		LotColumn:       "LOTE",
		ProducerColumn:  "PRODUCTOR",
		KilosColumn:     "KILO",
		Placeholders:    []string{"0", "-", "—", "N/A", "NA", "NONE", "NULL"},
	}
}

// Table is the extraction result
type Table struct {
	HeaderRow      int
	Columns        []string
	Rows           []Row
	TotalKilos     float64
	LotColumn      string
	ProducerColumn string
	KilosColumn    string
}

type column struct {
	name  string
	index int
}

// Extractor turns sheet grids into Tables
type Extractor struct {
	opts         Options
	placeholders map[string]struct{}
}

// NewExtractor creates an extractor; zero-valued options fall back to defaults
func NewExtractor(opts Options) *Extractor {
	def := DefaultOptions()
	if opts.HeaderScanRows <= 0 {
		opts.HeaderScanRows = def.HeaderScanRows
	}
	if len(opts.LotMarkers) == 0 {
		opts.LotMarkers = def.LotMarkers
	}
	if len(opts.ExporterMarkers) == 0 {
		opts.ExporterMarkers = def.ExporterMarkers
	}
	if opts.LotColumn == "" {
		opts.LotColumn = def.LotColumn
	}
	if opts.ProducerColumn == "" {
		opts.ProducerColumn = def.ProducerColumn
	}
	if opts.KilosColumn == "" {
		opts.KilosColumn = def.KilosColumn
	}
	if opts.Placeholders == nil {
		opts.Placeholders = def.Placeholders
	}

	placeholders := make(map[string]struct{}, len(opts.Placeholders))
	for _, p := range opts.Placeholders {
		placeholders[strings.ToUpper(strings.TrimSpace(p))] = struct{}{}
	}
	return &Extractor{opts: opts, placeholders: placeholders}
}

// IsPlaceholder reports whether v is one of the "semantically blank" tokens
func (e *Extractor) IsPlaceholder(v string) bool {
	_, ok := e.placeholders[strings.ToUpper(strings.TrimSpace(v))]
	return ok
}

func (e *Extractor) meaningful(v string) bool {
	return v != "" && !e.IsPlaceholder(v)
}

// FindHeaderRow returns the index of the first row, among the first
// HeaderScanRows, mentioning both a lot marker and an exporter marker
func (e *Extractor) FindHeaderRow(rows [][]string) (int, error) {
	limit := min(len(rows), e.opts.HeaderScanRows)
	for i := 0; i < limit; i++ {
		cells := make([]string, len(rows[i]))
		for j, c := range rows[i] {
			cells[j] = strings.ToUpper(strings.TrimSpace(c))
		}
		joined := strings.Join(cells, " | ")
		if containsAny(joined, e.opts.LotMarkers) && containsAny(joined, e.opts.ExporterMarkers) {
			return i, nil
		}
	}
	return -1, ErrNoHeaderRow
}

// Extract locates the header and classifies the rows below it
func (e *Extractor) Extract(rows [][]string) (*Table, error) {
	headerRow, err := e.FindHeaderRow(rows)
	if err != nil {
		return nil, err
	}

	cols := headerColumns(rows[headerRow])
	t := &Table{
		HeaderRow:      headerRow,
		Columns:        make([]string, len(cols)),
		Rows:           []Row{},
		LotColumn:      findColumn(cols, e.opts.LotColumn),
		ProducerColumn: findColumn(cols, e.opts.ProducerColumn),
		KilosColumn:    findColumn(cols, e.opts.KilosColumn),
	}
	for i, c := range cols {
		t.Columns[i] = c.name
	}

	for _, raw := range rows[headerRow+1:] {
		values := make(map[string]string, len(cols))
		for _, c := range cols {
			values[c.name] = cellAt(raw, c.index)
		}

		if e.isTotalsRow(t, values) {
			t.TotalKilos = ParseNumber(values[t.KilosColumn])
			continue
		}

		if t.LotColumn != "" && values[t.LotColumn] == "" {
			if t.ProducerColumn == "" || values[t.ProducerColumn] == "" {
				break
			}
			if title, ok := e.sectionTitle(t, cols, values); ok {
				t.Rows = append(t.Rows, sectionRow(t.Columns, title))
				continue
			}
		}

		t.Rows = append(t.Rows, Row{Type: RowData, Fields: values})
		if t.KilosColumn != "" {
			t.TotalKilos += ParseNumber(values[t.KilosColumn])
		}
	}

	return t, nil
}

// isTotalsRow is true when only the kilos cell carries a value
func (e *Extractor) isTotalsRow(t *Table, values map[string]string) bool {
	if t.KilosColumn == "" || !e.meaningful(values[t.KilosColumn]) {
		return false
	}
	for name, v := range values {
		if name != t.KilosColumn && e.meaningful(v) {
			return false
		}
	}
	return true
}

func (e *Extractor) sectionTitle(t *Table, cols []column, values map[string]string) (string, bool) {
	var parts []string
	first := ""
	for _, c := range cols {
		v := values[c.name]
		if !e.meaningful(v) {
			continue
		}
		if first == "" {
			first = v
		}
		if c.name == t.KilosColumn {
			continue
		}
		parts = append(parts, v)
	}
	if first == "" {
		return "", false
	}
	if len(parts) == 0 {
		return first, true
	}
	return strings.Join(parts, " - "), true
}

// LotsInSheet returns the distinct normalized lot codes found below the header,
// at most limit of them (no limit when limit <= 0). A sheet without a
// recognizable header yields nil
func (e *Extractor) LotsInSheet(rows [][]string, limit int) []string {
	headerRow, err := e.FindHeaderRow(rows)
	if err != nil {
		return nil
	}
	cols := headerColumns(rows[headerRow])
	lotCol := -1
	for _, c := range cols {
		if strings.Contains(strings.ToUpper(c.name), strings.ToUpper(e.opts.LotColumn)) {
			lotCol = c.index
			break
		}
	}
	if lotCol < 0 {
		return nil
	}

	var lots []string
	seen := make(map[string]struct{})
	for _, raw := range rows[headerRow+1:] {
		n := utils.NormalizeLot(cellAt(raw, lotCol))
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		lots = append(lots, n)
		if limit > 0 && len(lots) >= limit {
			break
		}
	}
	return lots
}

func sectionRow(columns []string, title string) Row {
	fields := make(map[string]string, len(columns))
	for _, c := range columns {
		fields[c] = ""
	}
	return Row{Type: RowSection, Title: title, Fields: fields}
}

// headerColumns keeps named header cells; blank, "nan"/"None" and repeated
// names are dropped
func headerColumns(header []string) []column {
	cols := make([]column, 0, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" || name == "nan" || name == "None" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		cols = append(cols, column{name: name, index: i})
	}
	return cols
}

func findColumn(cols []column, marker string) string {
	marker = strings.ToUpper(marker)
	for _, c := range cols {
		if strings.Contains(strings.ToUpper(c.name), marker) {
			return c.name
		}
	}
	return ""
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, strings.ToUpper(sub)) {
			return true
		}
	}
	return false
}
