package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"autodiag/internal/acoustic"
	"autodiag/internal/config"
	"autodiag/internal/diagnose"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users then need to clear the history database.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Record is one persisted diagnosis.
type Record struct {
	ID             int64
	CreatedAt      time.Time
	Vehicle        string
	SoundLocation  string
	PredictedIssue string
	Confidence     float64
	AIPowered      bool
	DataSources    []string
	Keywords       []string
	BestAudioMatch *acoustic.Match
}

// Store manages diagnosis history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// RecordDiagnosis persists a finished diagnosis. Implements diagnose.Recorder.
func (s *Store) RecordDiagnosis(ctx context.Context, vehicle diagnose.Vehicle, soundLocation string, result *diagnose.Result) error {
	if s == nil || s.db == nil {
		return errors.New("history: store not open")
	}
	if result == nil {
		return errors.New("history: nil result")
	}

	sources, err := json.Marshal(result.DataSources)
	if err != nil {
		return fmt.Errorf("history: encode data sources: %w", err)
	}
	keywords, err := json.Marshal(result.Keywords)
	if err != nil {
		return fmt.Errorf("history: encode keywords: %w", err)
	}

	var matchItem sql.NullString
	var matchSimilarity sql.NullFloat64
	if result.BestAudioMatch != nil {
		matchItem = sql.NullString{String: result.BestAudioMatch.ItemID, Valid: true}
		matchSimilarity = sql.NullFloat64{Float64: result.BestAudioMatch.Similarity, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO diagnoses (
			created_at, vehicle, sound_location, predicted_issue, confidence,
			ai_powered, data_sources, keywords, best_match_item, best_match_similarity
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339),
		vehicleLabel(vehicle),
		strings.TrimSpace(soundLocation),
		result.PredictedIssue,
		result.Confidence,
		result.AIPowered,
		string(sources),
		string(keywords),
		matchItem,
		matchSimilarity,
	)
	if err != nil {
		return fmt.Errorf("history: insert diagnosis: %w", err)
	}
	return nil
}

// Recent returns the most recent diagnoses, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("history: store not open")
	}
	if limit < 1 {
		limit = 1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, vehicle, sound_location, predicted_issue,
			confidence, ai_powered, data_sources, keywords,
			best_match_item, best_match_similarity
		FROM diagnoses
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query recent: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var createdAt, sources, keywords string
		var matchItem sql.NullString
		var matchSimilarity sql.NullFloat64
		if err := rows.Scan(&rec.ID, &createdAt, &rec.Vehicle, &rec.SoundLocation,
			&rec.PredictedIssue, &rec.Confidence, &rec.AIPowered,
			&sources, &keywords, &matchItem, &matchSimilarity); err != nil {
			return nil, fmt.Errorf("history: scan row: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
			rec.CreatedAt = ts
		}
		if err := json.Unmarshal([]byte(sources), &rec.DataSources); err != nil {
			return nil, fmt.Errorf("history: decode data sources: %w", err)
		}
		if err := json.Unmarshal([]byte(keywords), &rec.Keywords); err != nil {
			return nil, fmt.Errorf("history: decode keywords: %w", err)
		}
		if matchItem.Valid {
			rec.BestAudioMatch = &acoustic.Match{
				ItemID:     matchItem.String,
				Similarity: matchSimilarity.Float64,
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func vehicleLabel(v diagnose.Vehicle) string {
	return strings.TrimSpace(fmt.Sprintf("%d %s %s", v.Year, v.Manufacturer, v.Model))
}
