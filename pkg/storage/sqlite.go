package storage

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/XiaoConstantine/evoidea-go/pkg/config"
	"github.com/XiaoConstantine/evoidea-go/pkg/errors"
	"github.com/XiaoConstantine/evoidea-go/pkg/idea"
)

// SQLiteStorage keeps all runs in one database file under the base
// directory. Artifacts are stored as JSON documents, one table per
// artifact kind, so both backends share the same wire format.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id     TEXT PRIMARY KEY,
	config     TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS states (
	run_id     TEXT PRIMARY KEY,
	state      TEXT NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS events (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	event  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id);
CREATE TABLE IF NOT EXISTS finals (
	run_id TEXT PRIMARY KEY,
	result TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS preferences (
	run_id TEXT PRIMARY KEY,
	prefs  TEXT NOT NULL
);
`

// NewSQLiteStorage opens (or creates) <baseDir>/evoidea.db.
func NewSQLiteStorage(baseDir string) (*SQLiteStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.PersistenceFailed, "failed to create storage directory"),
			errors.Fields{"path": baseDir})
	}
	path := filepath.Join(baseDir, "evoidea.db")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.PersistenceFailed, "failed to open sqlite database"),
			errors.Fields{"path": path})
	}

	// Single-writer workload; the pool only needs one connection and
	// that sidesteps sqlite lock contention entirely.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrap(err, errors.PersistenceFailed, "failed to configure sqlite database")
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.PersistenceFailed, "failed to initialize sqlite schema")
	}
	return &SQLiteStorage{db: db, path: path}, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) upsertJSON(table, column string, runID uuid.UUID, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, errors.PersistenceFailed, "failed to marshal")
	}
	query := "INSERT INTO " + table + " (run_id, " + column + ") VALUES (?, ?) " +
		"ON CONFLICT(run_id) DO UPDATE SET " + column + " = excluded." + column
	if _, err := s.db.Exec(query, runID.String(), string(data)); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.PersistenceFailed, "failed to write row"),
			errors.Fields{"table": table, "run_id": runID.String()})
	}
	return nil
}

func (s *SQLiteStorage) loadJSON(table, column string, runID uuid.UUID, v interface{}) error {
	query := "SELECT " + column + " FROM " + table + " WHERE run_id = ?"
	var data string
	err := s.db.QueryRow(query, runID.String()).Scan(&data)
	if err == sql.ErrNoRows {
		return errors.WithFields(
			errors.New(errors.ResourceNotFound, "run artifact not found"),
			errors.Fields{"table": table, "run_id": runID.String()})
	}
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.PersistenceFailed, "failed to read row"),
			errors.Fields{"table": table, "run_id": runID.String()})
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return errors.Wrap(err, errors.PersistenceFailed, "failed to decode row")
	}
	return nil
}

func (s *SQLiteStorage) InitRun(runID uuid.UUID, cfg *config.RunConfig) error {
	if err := s.upsertJSON("runs", "config", runID, cfg); err != nil {
		return err
	}
	state := idea.NewState(runID)
	return s.SaveState(&state)
}

func (s *SQLiteStorage) LoadConfig(runID uuid.UUID) (config.RunConfig, error) {
	var cfg config.RunConfig
	err := s.loadJSON("runs", "config", runID, &cfg)
	return cfg, err
}

func (s *SQLiteStorage) SaveConfig(runID uuid.UUID, cfg *config.RunConfig) error {
	return s.upsertJSON("runs", "config", runID, cfg)
}

func (s *SQLiteStorage) LoadState(runID uuid.UUID) (idea.State, error) {
	var state idea.State
	err := s.loadJSON("states", "state", runID, &state)
	return state, err
}

func (s *SQLiteStorage) SaveState(state *idea.State) error {
	return s.upsertJSON("states", "state", state.RunID, state)
}

func (s *SQLiteStorage) AppendEvent(runID uuid.UUID, event idea.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, errors.PersistenceFailed, "failed to marshal event")
	}
	if _, err := s.db.Exec(
		"INSERT INTO events (run_id, event) VALUES (?, ?)",
		runID.String(), string(data)); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.PersistenceFailed, "failed to append event"),
			errors.Fields{"run_id": runID.String()})
	}
	return nil
}

func (s *SQLiteStorage) LoadEvents(runID uuid.UUID) ([]idea.Event, error) {
	rows, err := s.db.Query(
		"SELECT event FROM events WHERE run_id = ? ORDER BY id",
		runID.String())
	if err != nil {
		return nil, errors.Wrap(err, errors.PersistenceFailed, "failed to query events")
	}
	defer rows.Close()

	var events []idea.Event
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, errors.Wrap(err, errors.PersistenceFailed, "failed to scan event row")
		}
		var event idea.Event
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			return nil, errors.Wrap(err, errors.PersistenceFailed, "failed to decode event")
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (s *SQLiteStorage) SaveFinal(result *idea.FinalResult) error {
	return s.upsertJSON("finals", "result", result.RunID, result)
}

func (s *SQLiteStorage) LoadFinal(runID uuid.UUID) (idea.FinalResult, error) {
	var result idea.FinalResult
	err := s.loadJSON("finals", "result", runID, &result)
	return result, err
}

func (s *SQLiteStorage) LoadPreferences(runID uuid.UUID) (*idea.Preferences, error) {
	prefs := idea.NewPreferences()
	err := s.loadJSON("preferences", "prefs", runID, prefs)
	if err != nil {
		if errors.CodeOf(err) == errors.ResourceNotFound {
			return idea.NewPreferences(), nil
		}
		return nil, err
	}
	return prefs, nil
}

func (s *SQLiteStorage) SavePreferences(runID uuid.UUID, prefs *idea.Preferences) error {
	return s.upsertJSON("preferences", "prefs", runID, prefs)
}

func (s *SQLiteStorage) ListRuns() ([]uuid.UUID, error) {
	rows, err := s.db.Query("SELECT run_id FROM runs ORDER BY created_at")
	if err != nil {
		return nil, errors.Wrap(err, errors.PersistenceFailed, "failed to query runs")
	}
	defer rows.Close()

	var runs []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, errors.Wrap(err, errors.PersistenceFailed, "failed to scan run row")
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		runs = append(runs, id)
	}
	return runs, rows.Err()
}
