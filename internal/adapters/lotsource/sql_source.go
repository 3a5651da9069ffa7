package lotsource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mikey/orden-vaciado/internal/core"
	"go.uber.org/zap"
)

// Queries are the statements run against the plant database. Recent takes the
// row limit as its only parameter; Shift is optional and must return a turn
// number and a business date
type Queries struct {
	Current string
	Recent  string
	Shift   string
}

// SQLSource reads lots from a database/sql connection
type SQLSource struct {
	db      *sql.DB
	queries Queries
	logger  *zap.Logger
}

// NewSQLSource creates a lot source over an open database
func NewSQLSource(db *sql.DB, queries Queries, logger *zap.Logger) *SQLSource {
	return &SQLSource{
		db:      db,
		queries: queries,
		logger:  logger,
	}
}

// CurrentLot returns the most recent lot, "" when the query yields nothing
func (s *SQLSource) CurrentLot(ctx context.Context) (string, error) {
	if s.queries.Current == "" {
		return "", nil
	}

	var lot sql.NullString
	err := s.db.QueryRowContext(ctx, s.queries.Current).Scan(&lot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to query current lot: %w", err)
	}
	return strings.TrimSpace(lot.String), nil
}

// RecentLots returns up to limit distinct lots, newest first
func (s *SQLSource) RecentLots(ctx context.Context, limit int) ([]string, error) {
	if s.queries.Recent == "" || limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, s.queries.Recent, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent lots: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	var lots []string
	for rows.Next() {
		var lot sql.NullString
		if err := rows.Scan(&lot); err != nil {
			return nil, fmt.Errorf("failed to scan lot: %w", err)
		}
		v := strings.TrimSpace(lot.String)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		lots = append(lots, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recent lots: %w", err)
	}
	return lots, nil
}

// CurrentShift returns the shift the database says is running, or nil when no
// shift query is configured or it yields nothing
func (s *SQLSource) CurrentShift(ctx context.Context) (*core.ShiftInfo, error) {
	if s.queries.Shift == "" {
		return nil, nil
	}

	var (
		turn int
		date sql.NullString
	)
	err := s.db.QueryRowContext(ctx, s.queries.Shift).Scan(&turn, &date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query current shift: %w", err)
	}
	if turn != 1 && turn != 2 {
		return nil, fmt.Errorf("invalid turn %d reported by shift query", turn)
	}

	businessDate, err := parseDate(date.String)
	if err != nil {
		return nil, err
	}
	return &core.ShiftInfo{Turn: turn, BusinessDate: businessDate}, nil
}

// Close closes the database connection
func (s *SQLSource) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close lot database: %w", err)
	}
	return nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"02-01-2006",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised business date %q", s)
}
