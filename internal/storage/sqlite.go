// Package storage provides the SQLite-backed food reference store: typical
// portion weights, gross-to-edible yield factors, and calorie band overrides.
//
// The store holds reference data only. Extraction results and attempt records
// are never persisted here.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/mealvoice/mealvoice/internal/service"
)

// SQLiteReference implements service.PortionReference and
// service.BandReference over a SQLite database, falling back to another
// reference for foods the database does not know.
type SQLiteReference struct {
	db       *sql.DB
	dbPath   string
	fallback service.PortionReference
}

const schema = `
CREATE TABLE IF NOT EXISTS portion_weights (
	key   TEXT PRIMARY KEY,
	grams REAL NOT NULL CHECK (grams > 0)
);
CREATE TABLE IF NOT EXISTS edible_yields (
	key   TEXT PRIMARY KEY,
	yield REAL NOT NULL CHECK (yield > 0 AND yield <= 1)
);
CREATE TABLE IF NOT EXISTS band_overrides (
	key         TEXT PRIMARY KEY,
	min_cal_100 REAL NOT NULL CHECK (min_cal_100 >= 0),
	max_cal_100 REAL NOT NULL,
	CHECK (max_cal_100 >= min_cal_100)
);
`

// NewSQLiteReference opens (creating if needed) the reference database.
// fallback may be nil; misses then simply report the food as unknown.
func NewSQLiteReference(dbPath string, fallback service.PortionReference) (*SQLiteReference, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, errors.New("dbPath cannot be empty")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteReference{db: db, dbPath: dbPath, fallback: fallback}, nil
}

// Close closes the database connection.
func (s *SQLiteReference) Close() error {
	return s.db.Close()
}

// TypicalPortionGrams resolves the edible weight of one counted unit. The
// longest key contained in the food name wins, so "chicken breast" shadows
// "chicken".
func (s *SQLiteReference) TypicalPortionGrams(name string) (float64, bool) {
	var grams float64
	err := s.db.QueryRow(
		`SELECT grams FROM portion_weights
		 WHERE instr(?, key) > 0
		 ORDER BY length(key) DESC LIMIT 1`,
		strings.ToLower(name),
	).Scan(&grams)
	if err == nil {
		return grams, true
	}
	if s.fallback != nil {
		return s.fallback.TypicalPortionGrams(name)
	}
	return 0, false
}

// EdibleYield resolves the gross-to-edible multiplier for whole mentions.
func (s *SQLiteReference) EdibleYield(name string) (float64, bool) {
	var yield float64
	err := s.db.QueryRow(
		`SELECT yield FROM edible_yields
		 WHERE instr(?, key) > 0
		 ORDER BY length(key) DESC LIMIT 1`,
		strings.ToLower(name),
	).Scan(&yield)
	if err == nil {
		return yield, true
	}
	if s.fallback != nil {
		return s.fallback.EdibleYield(name)
	}
	return 0, false
}

// CalorieBand resolves a per-food plausibility override in kcal per 100g.
func (s *SQLiteReference) CalorieBand(name string) (float64, float64, bool) {
	var minCal, maxCal float64
	err := s.db.QueryRow(
		`SELECT min_cal_100, max_cal_100 FROM band_overrides
		 WHERE instr(?, key) > 0
		 ORDER BY length(key) DESC LIMIT 1`,
		strings.ToLower(name),
	).Scan(&minCal, &maxCal)
	if err != nil {
		return 0, 0, false
	}
	return minCal, maxCal, true
}

// SetPortionWeight upserts the typical portion weight for a food key.
func (s *SQLiteReference) SetPortionWeight(key string, grams float64) error {
	return s.upsert(
		`INSERT INTO portion_weights (key, grams) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET grams = excluded.grams`,
		key, grams)
}

// SetEdibleYield upserts the gross-to-edible multiplier for a food key.
func (s *SQLiteReference) SetEdibleYield(key string, yield float64) error {
	return s.upsert(
		`INSERT INTO edible_yields (key, yield) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET yield = excluded.yield`,
		key, yield)
}

// SetCalorieBand upserts a plausibility override for a food key.
func (s *SQLiteReference) SetCalorieBand(key string, minCal100, maxCal100 float64) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return errors.New("key cannot be empty")
	}
	_, err := s.db.Exec(
		`INSERT INTO band_overrides (key, min_cal_100, max_cal_100) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET min_cal_100 = excluded.min_cal_100, max_cal_100 = excluded.max_cal_100`,
		key, minCal100, maxCal100)
	if err != nil {
		return fmt.Errorf("failed to upsert band override: %w", err)
	}
	return nil
}

func (s *SQLiteReference) upsert(query, key string, value float64) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return errors.New("key cannot be empty")
	}
	if _, err := s.db.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to upsert reference row: %w", err)
	}
	return nil
}
