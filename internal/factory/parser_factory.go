package factory

import (
	"fmt"

	"github.com/mikey/orden-vaciado/internal/config"
	"github.com/mikey/orden-vaciado/internal/sheet"
	"github.com/mikey/orden-vaciado/internal/shift"
	"github.com/mikey/orden-vaciado/internal/table"
	"go.uber.org/zap"
)

// ParserFactory creates the shift clock, sheet selector and table extractor
type ParserFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewParserFactory creates a new ParserFactory
func NewParserFactory(cfg *config.Config, logger *zap.Logger) *ParserFactory {
	return &ParserFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateClock creates the shift clock from the configured turn starts
func (f *ParserFactory) CreateClock() (*shift.Clock, error) {
	sc := f.cfg.GetShift()
	clock, err := shift.NewClock(sc.Turn1Start, sc.Turn2Start)
	if err != nil {
		return nil, fmt.Errorf("invalid shift configuration: %w", err)
	}
	return clock, nil
}

// CreateExtractor creates a table extractor
func (f *ParserFactory) CreateExtractor() *table.Extractor {
	tc := f.cfg.GetTable()
	return table.NewExtractor(table.Options{
		HeaderScanRows:  tc.HeaderScanRows,
		LotMarkers:      tc.LotMarkers,
		ExporterMarkers: tc.ExporterMarkers,
		LotColumn:       tc.LotColumn,
		ProducerColumn:  tc.ProducerColumn,
		KilosColumn:     tc.KilosColumn,
		Placeholders:    tc.Placeholders,
	})
}

// CreateSelector creates a sheet selector reading lots through extractor
func (f *ParserFactory) CreateSelector(extractor *table.Extractor) *sheet.Selector {
	sc := f.cfg.GetSelector()
	return sheet.NewSelector(sheet.Options{
		ScanLimit:       sc.ScanLimit,
		ContextScanRows: sc.ContextScanRows,
		VerifyScanRows:  sc.VerifyScanRows,
		MaxSheetLots:    sc.MaxSheetLots,
	}, extractor, f.logger)
}
