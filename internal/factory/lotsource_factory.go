package factory

import (
	"fmt"

	"github.com/mikey/orden-vaciado/internal/adapters/lotsource"
	"github.com/mikey/orden-vaciado/internal/config"
	"github.com/mikey/orden-vaciado/internal/core"
	"go.uber.org/zap"
)

// LotSourceFactory creates the lot source based on configuration
type LotSourceFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLotSourceFactory creates a new lot source factory
func NewLotSourceFactory(cfg *config.Config, logger *zap.Logger) *LotSourceFactory {
	return &LotSourceFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateLotSource creates the configured lot source. It returns nil for
// "none": the service then selects sheets by name only
func (f *LotSourceFactory) CreateLotSource() (core.LotSource, error) {
	lc := f.cfg.GetLotSource()
	queries := lotsource.Queries{
		Current: lc.CurrentQuery,
		Recent:  lc.RecentQuery,
		Shift:   lc.ShiftQuery,
	}

	switch lc.Source {
	case "", "none":
		return nil, nil
	case "static":
		return lotsource.NewStaticSource(lc.StaticCurrent, lc.StaticContext), nil
	case "sqlite":
		src, err := lotsource.OpenSQLite(lc.SQLitePath, queries, f.logger)
		if err != nil {
			return nil, err
		}
		return src, nil
	case "mysql":
		src, err := lotsource.OpenMySQL(lc.MySQLDSN, queries, f.logger)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unsupported lot source: %s", lc.Source)
	}
}

// GetContextLimit returns how many recent lots are used as selection context
func (f *LotSourceFactory) GetContextLimit() int {
	return f.cfg.GetLotSource().ContextLimit
}
