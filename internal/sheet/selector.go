// Package sheet picks, out of a multi-sheet order workbook, the sheet that
// describes the running shift
package sheet

import (
	"errors"
	"sort"
	"strings"

	"github.com/mikey/orden-vaciado/internal/shift"
	"github.com/mikey/orden-vaciado/internal/table"
	"github.com/mikey/orden-vaciado/internal/utils"
	"go.uber.org/zap"
)

// ErrNoSheets is returned for a workbook without sheets
var ErrNoSheets = errors.New("workbook has no sheets")

// Strategy names how a sheet was chosen
type Strategy string

const (
	StrategyContext       Strategy = "context-lots"
	StrategyTargetLot     Strategy = "target-lot"
	StrategyName          Strategy = "name-score"
	StrategyNameFallback  Strategy = "name-score-fallback"
	StrategyTurnCorrected Strategy = "turn-corrected"
)

// Workbook is the read access the selector needs. Rows returns at most limit
// rows of the named sheet (all rows when limit <= 0)
type Workbook interface {
	SheetNames() []string
	Rows(sheet string, limit int) ([][]string, error)
}

// Options bounds how much of each sheet is read while selecting
type Options struct {
	// ScanLimit is how many top-ranked sheets are opened to look for the target lot
	ScanLimit       int
	ContextScanRows int
	VerifyScanRows  int
	MaxSheetLots    int
}

// DefaultOptions returns the usual bounds
func DefaultOptions() Options {
	return Options{
		ScanLimit:       6,
		ContextScanRows: 180,
		VerifyScanRows:  120,
		MaxSheetLots:    60,
	}
}

// Selection is the chosen sheet and how it was found
type Selection struct {
	Sheet    string
	Strategy Strategy
}

// Selector implements the sheet disambiguation heuristic
type Selector struct {
	opts      Options
	extractor *table.Extractor
	logger    *zap.Logger
}

// NewSelector creates a selector. The extractor provides header detection for
// reading lot codes out of candidate sheets
func NewSelector(opts Options, extractor *table.Extractor, logger *zap.Logger) *Selector {
	def := DefaultOptions()
	if opts.ScanLimit <= 0 {
		opts.ScanLimit = def.ScanLimit
	}
	if opts.ContextScanRows <= 0 {
		opts.ContextScanRows = def.ContextScanRows
	}
	if opts.VerifyScanRows <= 0 {
		opts.VerifyScanRows = def.VerifyScanRows
	}
	if opts.MaxSheetLots <= 0 {
		opts.MaxSheetLots = def.MaxSheetLots
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{opts: opts, extractor: extractor, logger: logger}
}

// Select chooses the sheet for shift w. targetLot is the lot in progress and
// contextLots the lots recently seen on the line; both may be empty
func (s *Selector) Select(book Workbook, w shift.Window, targetLot string, contextLots []string) (Selection, error) {
	names := book.SheetNames()
	if len(names) == 0 {
		return Selection{}, ErrNoSheets
	}

	target := utils.NormalizeLot(targetLot)
	recent := utils.NormalizeLots(contextLots)

	var sel Selection
	switch {
	case len(recent) > 0:
		sel = s.byContext(book, names, w, target, recent)
	case target != "":
		sel = s.byTarget(book, names, w, target)
	default:
		sel = Selection{Sheet: BestByName(names, w), Strategy: StrategyName}
	}

	corrected := s.correctTurn(names, w, sel)
	s.logger.Debug("Selected sheet",
		zap.String("sheet", corrected.Sheet),
		zap.String("strategy", string(corrected.Strategy)),
		zap.Int("turn", w.Turn),
		zap.String("business_date", w.ISODate()))
	return corrected, nil
}

// byContext scores sheets dated today (every sheet when none is) by the lots
// they list
func (s *Selector) byContext(book Workbook, names []string, w shift.Window, target string, recent []string) Selection {
	ctxSet := make(map[string]struct{}, len(recent))
	for _, lot := range recent {
		ctxSet[lot] = struct{}{}
	}

	var candidates []string
	for _, name := range names {
		if strings.Contains(utils.CollapseSpaces(name), w.DDMM()) {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		candidates = names
	}

	best, bestScore := "", -1
	for _, name := range candidates {
		lots := s.sheetLots(book, name, s.opts.ContextScanRows, s.opts.MaxSheetLots)
		score := ContentScore(lots, target, ctxSet, MatchesTurnConvention(name, w))
		s.logger.Debug("Scored sheet by content",
			zap.String("sheet", name),
			zap.Int("lots", len(lots)),
			zap.Int("score", score))
		if score > bestScore {
			best, bestScore = name, score
		}
	}
	return Selection{Sheet: best, Strategy: StrategyContext}
}

// byTarget opens the best-named sheets of the current turn looking for the
// target lot
func (s *Selector) byTarget(book Workbook, names []string, w shift.Window, target string) Selection {
	ranked := RankByName(names, w)

	var candidates []string
	for _, name := range ranked {
		if MatchesTurnConvention(name, w) {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		candidates = ranked
	}
	if len(candidates) > s.opts.ScanLimit {
		candidates = candidates[:s.opts.ScanLimit]
	}

	for _, name := range candidates {
		for _, lot := range s.sheetLots(book, name, s.opts.VerifyScanRows, 0) {
			if lot == target {
				return Selection{Sheet: name, Strategy: StrategyTargetLot}
			}
		}
	}

	s.logger.Debug("Target lot not found in candidate sheets",
		zap.String("lot", target),
		zap.Strings("candidates", candidates))
	return Selection{Sheet: BestByName(names, w), Strategy: StrategyNameFallback}
}

// correctTurn replaces a sheet that explicitly names another turn with the
// best-named sheet of the current turn, when there is one
func (s *Selector) correctTurn(names []string, w shift.Window, sel Selection) Selection {
	mentioned := MentionedTurn(sel.Sheet)
	if mentioned == 0 || mentioned == w.Turn {
		return sel
	}

	var sameTurn []string
	for _, name := range names {
		hasT2 := HasTurnMarker(name, 2)
		if (w.Turn == 2 && hasT2) || (w.Turn == 1 && !hasT2) {
			sameTurn = append(sameTurn, name)
		}
	}
	if len(sameTurn) == 0 {
		return sel
	}

	preferred := BestByName(sameTurn, w)
	s.logger.Info("Chosen sheet belongs to another turn, correcting",
		zap.String("chosen", sel.Sheet),
		zap.String("preferred", preferred),
		zap.Int("turn", w.Turn))
	return Selection{Sheet: preferred, Strategy: StrategyTurnCorrected}
}

func (s *Selector) sheetLots(book Workbook, name string, rows, limit int) []string {
	grid, err := book.Rows(name, rows)
	if err != nil {
		s.logger.Debug("Failed to read sheet", zap.String("sheet", name), zap.Error(err))
		return nil
	}
	return s.extractor.LotsInSheet(grid, limit)
}

// BestByName returns the highest name-scored sheet. Ties, including the case
// where nothing scores, go to the sheet that comes last in the workbook
func BestByName(names []string, w shift.Window) string {
	best, bestScore := "", -1
	for _, name := range names {
		if score := NameScore(name, w); score >= bestScore {
			best, bestScore = name, score
		}
	}
	return best
}

// RankByName orders names by descending name score, keeping workbook order
// among equals
func RankByName(names []string, w shift.Window) []string {
	ranked := make([]string, len(names))
	copy(ranked, names)
	sort.SliceStable(ranked, func(i, j int) bool {
		return NameScore(ranked[i], w) > NameScore(ranked[j], w)
	})
	return ranked
}
