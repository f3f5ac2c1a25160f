// Package storage persists run artifacts: the immutable config, the
// state snapshot written after every phase, the append-only event log,
// the final result, and the tournament preferences. Two backends are
// provided, a plain directory layout and a SQLite database.
package storage

import (
	"github.com/google/uuid"

	"github.com/XiaoConstantine/evoidea-go/pkg/config"
	"github.com/XiaoConstantine/evoidea-go/pkg/errors"
	"github.com/XiaoConstantine/evoidea-go/pkg/idea"
)

// Storage is the persistence collaborator of a run. State and final
// result use full-overwrite snapshot semantics; events are append-only.
type Storage interface {
	// InitRun creates the run's storage area, persists its config and an
	// empty initial state.
	InitRun(runID uuid.UUID, cfg *config.RunConfig) error
	LoadConfig(runID uuid.UUID) (config.RunConfig, error)
	// SaveConfig overwrites a run's config. Only resume uses this, to
	// extend max_rounds.
	SaveConfig(runID uuid.UUID, cfg *config.RunConfig) error
	LoadState(runID uuid.UUID) (idea.State, error)
	SaveState(state *idea.State) error
	AppendEvent(runID uuid.UUID, event idea.Event) error
	LoadEvents(runID uuid.UUID) ([]idea.Event, error)
	SaveFinal(result *idea.FinalResult) error
	LoadFinal(runID uuid.UUID) (idea.FinalResult, error)
	// LoadPreferences returns the run's tournament preferences, or a
	// fresh empty record when none were saved yet.
	LoadPreferences(runID uuid.UUID) (*idea.Preferences, error)
	SavePreferences(runID uuid.UUID, prefs *idea.Preferences) error
	// ListRuns returns the ids of all runs known to this backend.
	ListRuns() ([]uuid.UUID, error)
	// Close releases backend resources. A no-op for the file backend.
	Close() error
}

// New opens the backend named by kind rooted at baseDir.
func New(kind, baseDir string) (Storage, error) {
	switch kind {
	case "file":
		return NewFileStorage(baseDir), nil
	case "sqlite":
		return NewSQLiteStorage(baseDir)
	default:
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "unsupported storage backend"),
			errors.Fields{"kind": kind})
	}
}
