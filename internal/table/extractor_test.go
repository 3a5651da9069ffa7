package table

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var header = []string{"N° DE LOTE", "PRODUCTOR", "EXPORTADORA", "", "VARIEDAD", "KILOS"}

func orderGrid() [][]string {
	return [][]string{
		{"ORDEN DE VACIADO"},
		{"PLANTA 1", "", "22-12-2025"},
		{},
		header,
		{"", "CAMBIO A LINEA 2", "", "", "", "0"},
		{"00123", "AGRICOLA SUR", "FRUTEX", "x", "LAPINS", "1.200"},
		{"124", "AGRICOLA SUR", "FRUTEX", "", "LAPINS", "1.300,5"},
		{"", "CAMBIO VARIEDAD", "N/A", "", "SANTINA", "-"},
		{"L-77", "LOS ROBLES", "DOLE", "", "SANTINA", "1100"},
		{"", "", "", "", "", "3.600,5"},
		{"", "", "", "", "", ""},
		{"999", "IGNORED", "AFTER", "", "BLANK", "50"},
	}
}

func TestFindHeaderRow(t *testing.T) {
	e := NewExtractor(DefaultOptions())

	idx, err := e.FindHeaderRow(orderGrid())
	require.NoError(t, err)
	assert.Equal(t, 3, idx)

	_, err = e.FindHeaderRow([][]string{{"LOTE", "PRODUCTOR"}, {"1", "A"}})
	assert.True(t, errors.Is(err, ErrNoHeaderRow))
}

func TestFindHeaderRowScanLimit(t *testing.T) {
	opts := DefaultOptions()
	opts.HeaderScanRows = 2
	e := NewExtractor(opts)

	_, err := e.FindHeaderRow(orderGrid())
	assert.ErrorIs(t, err, ErrNoHeaderRow)
}

func TestExtract(t *testing.T) {
	e := NewExtractor(DefaultOptions())

	tbl, err := e.Extract(orderGrid())
	require.NoError(t, err)

	assert.Equal(t, []string{"N° DE LOTE", "PRODUCTOR", "EXPORTADORA", "VARIEDAD", "KILOS"}, tbl.Columns)
	assert.Equal(t, "N° DE LOTE", tbl.LotColumn)
	assert.Equal(t, "PRODUCTOR", tbl.ProducerColumn)
	assert.Equal(t, "KILOS", tbl.KilosColumn)

	require.Len(t, tbl.Rows, 5)
	assert.Equal(t, RowSection, tbl.Rows[0].Type)
	assert.Equal(t, "CAMBIO A LINEA 2", tbl.Rows[0].Title)
	assert.Equal(t, "", tbl.Rows[0].Fields["PRODUCTOR"])

	assert.Equal(t, RowData, tbl.Rows[1].Type)
	assert.Equal(t, "00123", tbl.Rows[1].Fields["N° DE LOTE"])
	assert.Equal(t, "1.200", tbl.Rows[1].Fields["KILOS"])

	assert.Equal(t, RowSection, tbl.Rows[3].Type)
	assert.Equal(t, "CAMBIO VARIEDAD - SANTINA", tbl.Rows[3].Title)

	assert.Equal(t, "L-77", tbl.Rows[4].Fields["N° DE LOTE"])
	assert.InDelta(t, 3600.5, tbl.TotalKilos, 1e-9)
}

func TestExtractSectionsDataAndTotal(t *testing.T) {
	e := NewExtractor(DefaultOptions())
	grid := [][]string{
		{"LOTE", "PRODUCTOR", "EXPORTADORA", "KILOS"},
		{"", "SECCION NORTE", "", ""},
		{"1", "A", "X", "100"},
		{"2", "B", "X", "200"},
		{"", "SECCION SUR", "", ""},
		{"3", "C", "Y", "300"},
		{"", "", "", "750"},
	}

	tbl, err := e.Extract(grid)
	require.NoError(t, err)

	var sections, data int
	for _, r := range tbl.Rows {
		switch r.Type {
		case RowSection:
			sections++
		case RowData:
			data++
		}
	}
	assert.Len(t, tbl.Rows, 5)
	assert.Equal(t, 2, sections)
	assert.Equal(t, 3, data)
	assert.Equal(t, 750.0, tbl.TotalKilos)
}

func TestExtractRunningTotalWithoutTotalsRow(t *testing.T) {
	e := NewExtractor(DefaultOptions())
	grid := [][]string{
		{"LOTE", "PRODUCTOR", "EXPORTADOR", "KILOS"},
		{"1", "A", "X", "1.000"},
		{"2", "B", "X", "250,5"},
		{"3", "C", "X", "-"},
	}

	tbl, err := e.Extract(grid)
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 3)
	assert.InDelta(t, 1250.5, tbl.TotalKilos, 1e-9)
}

func TestExtractTruncatesOnBlankKeyColumns(t *testing.T) {
	e := NewExtractor(DefaultOptions())
	grid := [][]string{
		{"LOTE", "PRODUCTOR", "EXPORTADORA", "KILOS"},
		{"1", "A", "X", "10"},
		{"", "", "NOTA AL PIE", ""},
		{"2", "B", "X", "20"},
	}

	tbl, err := e.Extract(grid)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, 10.0, tbl.TotalKilos)
}

func TestExtractNoHeader(t *testing.T) {
	e := NewExtractor(DefaultOptions())
	_, err := e.Extract([][]string{{"nothing", "here"}})
	assert.ErrorIs(t, err, ErrNoHeaderRow)
}

func TestPlaceholders(t *testing.T) {
	e := NewExtractor(DefaultOptions())
	for _, v := range []string{"0", "-", "—", "n/a", "N/A", "na", "None", "NULL", " - "} {
		assert.True(t, e.IsPlaceholder(v), v)
	}
	for _, v := range []string{"", "00", "X", "1"} {
		assert.False(t, e.IsPlaceholder(v), v)
	}

	opts := DefaultOptions()
	opts.Placeholders = []string{"S/D"}
	custom := NewExtractor(opts)
	assert.True(t, custom.IsPlaceholder("s/d"))
	assert.False(t, custom.IsPlaceholder("N/A"))
}

func TestLotsInSheet(t *testing.T) {
	e := NewExtractor(DefaultOptions())

	lots := e.LotsInSheet(orderGrid(), 0)
	assert.Equal(t, []string{"123", "124", "l-77", "999"}, lots)

	assert.Equal(t, []string{"123", "124"}, e.LotsInSheet(orderGrid(), 2))
	assert.Nil(t, e.LotsInSheet([][]string{{"x"}}, 0))
}

func TestRowJSON(t *testing.T) {
	data, err := json.Marshal(Row{Type: RowData, Fields: map[string]string{"LOTE": "1"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"LOTE":"1","row_type":"data"}`, string(data))

	data, err = json.Marshal(Row{Type: RowSection, Title: "CAMBIO", Fields: map[string]string{"LOTE": ""}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"LOTE":"","row_type":"section","section_title":"CAMBIO"}`, string(data))

	var back Row
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, RowSection, back.Type)
	assert.Equal(t, "CAMBIO", back.Title)
	assert.Equal(t, map[string]string{"LOTE": ""}, back.Fields)
}
