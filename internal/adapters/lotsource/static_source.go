package lotsource

import (
	"context"

	"github.com/mikey/orden-vaciado/internal/core"
	"github.com/mikey/orden-vaciado/internal/utils"
)

// StaticSource serves a fixed lot and context, for installations without a
// plant database and for pinning the CLI to a known lot
type StaticSource struct {
	current string
	recent  []string
}

// NewStaticSource creates a static lot source
func NewStaticSource(current string, recent []string) *StaticSource {
	return &StaticSource{current: current, recent: recent}
}

func (s *StaticSource) CurrentLot(ctx context.Context) (string, error) {
	return s.current, nil
}

func (s *StaticSource) RecentLots(ctx context.Context, limit int) ([]string, error) {
	lots := utils.NormalizeLots(s.recent)
	if limit > 0 && len(lots) > limit {
		lots = lots[:limit]
	}
	return lots, nil
}

func (s *StaticSource) CurrentShift(ctx context.Context) (*core.ShiftInfo, error) {
	return nil, nil
}

var (
	_ core.LotSource = (*StaticSource)(nil)
	_ core.LotSource = (*SQLSource)(nil)
)
