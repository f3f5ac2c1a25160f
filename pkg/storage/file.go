package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/XiaoConstantine/evoidea-go/pkg/config"
	"github.com/XiaoConstantine/evoidea-go/pkg/errors"
	"github.com/XiaoConstantine/evoidea-go/pkg/idea"
)

// FileStorage lays each run out as a directory:
//
//	<base>/<run_id>/config.json
//	<base>/<run_id>/state.json
//	<base>/<run_id>/history.ndjson
//	<base>/<run_id>/final.json
//	<base>/<run_id>/preferences.json
type FileStorage struct {
	baseDir string
}

// NewFileStorage creates a file backend rooted at baseDir. The directory
// is created lazily on the first InitRun.
func NewFileStorage(baseDir string) *FileStorage {
	return &FileStorage{baseDir: baseDir}
}

func (f *FileStorage) runDir(runID uuid.UUID) string {
	return filepath.Join(f.baseDir, runID.String())
}

func (f *FileStorage) configPath(runID uuid.UUID) string {
	return filepath.Join(f.runDir(runID), "config.json")
}

func (f *FileStorage) statePath(runID uuid.UUID) string {
	return filepath.Join(f.runDir(runID), "state.json")
}

func (f *FileStorage) historyPath(runID uuid.UUID) string {
	return filepath.Join(f.runDir(runID), "history.ndjson")
}

func (f *FileStorage) finalPath(runID uuid.UUID) string {
	return filepath.Join(f.runDir(runID), "final.json")
}

func (f *FileStorage) preferencesPath(runID uuid.UUID) string {
	return filepath.Join(f.runDir(runID), "preferences.json")
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.PersistenceFailed, "failed to marshal")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.PersistenceFailed, "failed to write file"),
			errors.Fields{"path": path})
	}
	return nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		code := errors.PersistenceFailed
		if os.IsNotExist(err) {
			code = errors.ResourceNotFound
		}
		return errors.WithFields(
			errors.Wrap(err, code, "failed to read file"),
			errors.Fields{"path": path})
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.PersistenceFailed, "failed to decode file"),
			errors.Fields{"path": path})
	}
	return nil
}

func (f *FileStorage) InitRun(runID uuid.UUID, cfg *config.RunConfig) error {
	dir := f.runDir(runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.PersistenceFailed, "failed to create run directory"),
			errors.Fields{"path": dir})
	}
	if err := writeJSON(f.configPath(runID), cfg); err != nil {
		return err
	}
	state := idea.NewState(runID)
	if err := f.SaveState(&state); err != nil {
		return err
	}
	// Touch the history file so the run directory is complete from the start.
	file, err := os.OpenFile(f.historyPath(runID), os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.PersistenceFailed, "failed to create history file"),
			errors.Fields{"path": f.historyPath(runID)})
	}
	return file.Close()
}

func (f *FileStorage) LoadConfig(runID uuid.UUID) (config.RunConfig, error) {
	var cfg config.RunConfig
	err := readJSON(f.configPath(runID), &cfg)
	return cfg, err
}

func (f *FileStorage) SaveConfig(runID uuid.UUID, cfg *config.RunConfig) error {
	return writeJSON(f.configPath(runID), cfg)
}

func (f *FileStorage) LoadState(runID uuid.UUID) (idea.State, error) {
	var state idea.State
	err := readJSON(f.statePath(runID), &state)
	return state, err
}

func (f *FileStorage) SaveState(state *idea.State) error {
	return writeJSON(f.statePath(state.RunID), state)
}

func (f *FileStorage) AppendEvent(runID uuid.UUID, event idea.Event) error {
	path := f.historyPath(runID)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.PersistenceFailed, "failed to open history file"),
			errors.Fields{"path": path})
	}
	defer file.Close()

	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, errors.PersistenceFailed, "failed to marshal event")
	}
	if _, err := file.Write(append(data, '\n')); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.PersistenceFailed, "failed to append event"),
			errors.Fields{"path": path})
	}
	return nil
}

func (f *FileStorage) LoadEvents(runID uuid.UUID) ([]idea.Event, error) {
	path := f.historyPath(runID)
	file, err := os.Open(path)
	if err != nil {
		code := errors.PersistenceFailed
		if os.IsNotExist(err) {
			code = errors.ResourceNotFound
		}
		return nil, errors.WithFields(
			errors.Wrap(err, code, "failed to open history file"),
			errors.Fields{"path": path})
	}
	defer file.Close()

	var events []idea.Event
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event idea.Event
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, errors.WithFields(
				errors.Wrap(err, errors.PersistenceFailed, "failed to decode event"),
				errors.Fields{"path": path})
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.PersistenceFailed, "failed to scan history file")
	}
	return events, nil
}

func (f *FileStorage) SaveFinal(result *idea.FinalResult) error {
	return writeJSON(f.finalPath(result.RunID), result)
}

func (f *FileStorage) LoadFinal(runID uuid.UUID) (idea.FinalResult, error) {
	var result idea.FinalResult
	err := readJSON(f.finalPath(runID), &result)
	return result, err
}

func (f *FileStorage) LoadPreferences(runID uuid.UUID) (*idea.Preferences, error) {
	path := f.preferencesPath(runID)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return idea.NewPreferences(), nil
	}
	prefs := idea.NewPreferences()
	if err := readJSON(path, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

func (f *FileStorage) SavePreferences(runID uuid.UUID, prefs *idea.Preferences) error {
	return writeJSON(f.preferencesPath(runID), prefs)
}

func (f *FileStorage) Close() error { return nil }

func (f *FileStorage) ListRuns() ([]uuid.UUID, error) {
	entries, err := os.ReadDir(f.baseDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.PersistenceFailed, "failed to read runs directory"),
			errors.Fields{"path": f.baseDir})
	}

	var runs []uuid.UUID
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id, err := uuid.Parse(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, id)
	}
	return runs, nil
}
