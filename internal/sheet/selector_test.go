package sheet

import (
	"fmt"
	"testing"
	"time"

	"github.com/mikey/orden-vaciado/internal/shift"
	"github.com/mikey/orden-vaciado/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBook struct {
	names  []string
	sheets map[string][][]string
	reads  map[string]int
}

func newFakeBook(names ...string) *fakeBook {
	return &fakeBook{names: names, sheets: map[string][][]string{}, reads: map[string]int{}}
}

func (b *fakeBook) with(name string, lots ...string) *fakeBook {
	grid := [][]string{
		{"ORDEN DE VACIADO " + name},
		{"N° DE LOTE", "PRODUCTOR", "EXPORTADORA", "KILOS"},
	}
	for _, lot := range lots {
		grid = append(grid, []string{lot, "AGRICOLA", "FRUTEX", "100"})
	}
	b.sheets[name] = grid
	return b
}

func (b *fakeBook) SheetNames() []string { return b.names }

func (b *fakeBook) Rows(sheet string, limit int) ([][]string, error) {
	b.reads[sheet]++
	grid, ok := b.sheets[sheet]
	if !ok {
		return nil, fmt.Errorf("sheet %q not found", sheet)
	}
	if limit > 0 && len(grid) > limit {
		grid = grid[:limit]
	}
	return grid, nil
}

func window(t *testing.T, day, hour int) shift.Window {
	t.Helper()
	c, err := shift.NewClock("08:00", "20:00")
	require.NoError(t, err)
	return c.Window(time.Date(2025, time.December, day, hour, 0, 0, 0, time.Local))
}

func newTestSelector(opts Options) *Selector {
	return NewSelector(opts, table.NewExtractor(table.DefaultOptions()), zap.NewNop())
}

func TestNameScore(t *testing.T) {
	w1 := window(t, 22, 10)
	assert.Equal(t, 100, NameScore("22-12-2025 T1", w1))
	assert.Equal(t, 20, NameScore("22-12", w1))
	assert.Equal(t, 20, NameScore("  22-12   T2 ", w1))
	assert.Equal(t, 0, NameScore("21-12", w1))

	w2 := window(t, 22, 21)
	assert.Equal(t, 70, NameScore("22-12 T2", w2))
	assert.Equal(t, 70, NameScore("22-12T2", w2))
}

func TestTurnMarkers(t *testing.T) {
	assert.Equal(t, 2, MentionedTurn("22-12 T2"))
	assert.Equal(t, 2, MentionedTurn("22-12t2"))
	assert.Equal(t, 1, MentionedTurn("T1-22-12"))
	assert.Equal(t, 0, MentionedTurn("LOTE2"))
	assert.Equal(t, 0, MentionedTurn("T12"))
	assert.Equal(t, 2, MentionedTurn("22-12_T2"))
	assert.Equal(t, 2, MentionedTurn("22-12T2"))
	assert.Equal(t, 2, MentionedTurn("T2A 22-12"))
	assert.Equal(t, 0, MentionedTurn("TURNO"))
	assert.True(t, HasTurnMarker("T1 T2", 2))
}

func TestMatchesTurnConvention(t *testing.T) {
	w1 := window(t, 22, 10)
	assert.True(t, MatchesTurnConvention("22-12", w1))
	assert.False(t, MatchesTurnConvention("22-12 T2", w1))
	assert.False(t, MatchesTurnConvention("21-12", w1))

	w2 := window(t, 23, 3)
	assert.True(t, MatchesTurnConvention("22-12 T2", w2))
	assert.True(t, MatchesTurnConvention("21-12 T2", w2))
	assert.False(t, MatchesTurnConvention("22-12", w2))
}

func TestContentScore(t *testing.T) {
	ctx := map[string]struct{}{"4": {}, "5": {}}
	assert.Equal(t, 10000+20+5, ContentScore([]string{"4", "5", "6"}, "6", ctx, true))
	assert.Equal(t, 10, ContentScore([]string{"4"}, "", ctx, false))
	assert.Equal(t, 0, ContentScore(nil, "6", ctx, false))
}

func TestSelectNeverPicksOtherTurnSheet(t *testing.T) {
	s := newTestSelector(DefaultOptions())
	w := window(t, 22, 10)

	sel, err := s.Select(newFakeBook("21-12", "22-12 T2", "23-12"), w, "", nil)
	require.NoError(t, err)
	assert.NotEqual(t, "22-12 T2", sel.Sheet)
	assert.Equal(t, StrategyTurnCorrected, sel.Strategy)

	sel, err = s.Select(newFakeBook("21-12", "22-12", "22-12 T2", "23-12"), w, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "22-12", sel.Sheet)
}

func TestSelectByNameTurn2(t *testing.T) {
	s := newTestSelector(DefaultOptions())
	book := newFakeBook("21-12", "22-12", "22-12 T2")

	sel, err := s.Select(book, window(t, 22, 21), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "22-12 T2", sel.Sheet)

	// after midnight the shift still belongs to the 22nd
	sel, err = s.Select(book, window(t, 23, 3), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "22-12 T2", sel.Sheet)
}

func TestSelectFallsBackToLastSheet(t *testing.T) {
	s := newTestSelector(DefaultOptions())

	sel, err := s.Select(newFakeBook("RESUMEN", "HOJA1", "HOJA2"), window(t, 22, 10), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "HOJA2", sel.Sheet)
	assert.Equal(t, StrategyName, sel.Strategy)
}

func TestSelectNoSheets(t *testing.T) {
	s := newTestSelector(DefaultOptions())
	_, err := s.Select(newFakeBook(), window(t, 22, 10), "123", nil)
	assert.ErrorIs(t, err, ErrNoSheets)
}

func TestSelectByContext(t *testing.T) {
	s := newTestSelector(DefaultOptions())
	book := newFakeBook("21-12", "22-12", "22-12 T2").
		with("21-12", "4", "5", "6").
		with("22-12", "1", "2", "3").
		with("22-12 T2", "4", "5", "6")

	sel, err := s.Select(book, window(t, 22, 21), "", []string{"004", "5"})
	require.NoError(t, err)
	assert.Equal(t, "22-12 T2", sel.Sheet)
	assert.Equal(t, StrategyContext, sel.Strategy)
	// only sheets dated with the business date are opened
	assert.Zero(t, book.reads["21-12"])
}

func TestSelectByContextTargetDominates(t *testing.T) {
	s := newTestSelector(DefaultOptions())
	book := newFakeBook("22-12 A", "22-12 B").
		with("22-12 A", "1", "2", "3").
		with("22-12 B", "9")

	sel, err := s.Select(book, window(t, 22, 10), "0009", []string{"1", "2", "3"})
	require.NoError(t, err)
	assert.Equal(t, "22-12 B", sel.Sheet)
}

func TestSelectByContextCorrectsTurn(t *testing.T) {
	s := newTestSelector(DefaultOptions())
	book := newFakeBook("22-12", "22-12 T2").
		with("22-12", "1", "2").
		with("22-12 T2", "7", "8")

	sel, err := s.Select(book, window(t, 22, 10), "7", []string{"7", "8"})
	require.NoError(t, err)
	assert.Equal(t, "22-12", sel.Sheet)
	assert.Equal(t, StrategyTurnCorrected, sel.Strategy)
}

func TestSelectByContextWithoutDatedSheets(t *testing.T) {
	s := newTestSelector(DefaultOptions())
	book := newFakeBook("HOJA1", "HOJA2").
		with("HOJA1", "10", "11").
		with("HOJA2", "12")

	sel, err := s.Select(book, window(t, 22, 10), "", []string{"10", "11"})
	require.NoError(t, err)
	assert.Equal(t, "HOJA1", sel.Sheet)
}

func TestSelectByTargetLot(t *testing.T) {
	s := newTestSelector(DefaultOptions())
	book := newFakeBook("22-12 A", "22-12 B", "22-12 T2").
		with("22-12 A", "1", "2").
		with("22-12 B", "00345").
		with("22-12 T2", "345")

	sel, err := s.Select(book, window(t, 22, 10), "345", nil)
	require.NoError(t, err)
	assert.Equal(t, "22-12 B", sel.Sheet)
	assert.Equal(t, StrategyTargetLot, sel.Strategy)
	assert.Zero(t, book.reads["22-12 T2"])
}

func TestSelectByTargetLotRespectsScanLimit(t *testing.T) {
	opts := DefaultOptions()
	opts.ScanLimit = 1
	s := newTestSelector(opts)
	book := newFakeBook("22-12 A", "22-12 B").
		with("22-12 A", "1").
		with("22-12 B", "2")

	sel, err := s.Select(book, window(t, 22, 10), "2", nil)
	require.NoError(t, err)
	assert.Equal(t, StrategyNameFallback, sel.Strategy)
	assert.Equal(t, "22-12 B", sel.Sheet)
	assert.Zero(t, book.reads["22-12 B"])
}

func TestSelectByTargetLotMissingFallsBack(t *testing.T) {
	s := newTestSelector(DefaultOptions())
	book := newFakeBook("21-12", "22-12", "22-12 T2").
		with("21-12", "1").
		with("22-12", "2").
		with("22-12 T2", "3")

	sel, err := s.Select(book, window(t, 22, 10), "99", nil)
	require.NoError(t, err)
	assert.Equal(t, "22-12", sel.Sheet)
}

func TestRankByNameIsStable(t *testing.T) {
	w := window(t, 22, 10)
	assert.Equal(t,
		[]string{"22-12", "22-12 bis", "A", "B"},
		RankByName([]string{"A", "22-12", "B", "22-12 bis"}, w))
}
