package lotsource

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// OpenSQLite opens a lot source over a SQLite database file, typically a
// local replica of the line's intake view
func OpenSQLite(path string, queries Queries, logger *zap.Logger) (*SQLSource, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	logger.Info("Using SQLite lot source", zap.String("path", path))
	return NewSQLSource(db, queries, logger), nil
}
