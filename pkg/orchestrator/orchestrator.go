// Package orchestrator drives the evolution loop: one phase pipeline
// pass per round, a state snapshot after every phase, and three stop
// predicates evaluated in priority order.
package orchestrator

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/XiaoConstantine/evoidea-go/pkg/config"
	"github.com/XiaoConstantine/evoidea-go/pkg/core"
	"github.com/XiaoConstantine/evoidea-go/pkg/idea"
	"github.com/XiaoConstantine/evoidea-go/pkg/llms"
	"github.com/XiaoConstantine/evoidea-go/pkg/logging"
	"github.com/XiaoConstantine/evoidea-go/pkg/phases"
	"github.com/XiaoConstantine/evoidea-go/pkg/storage"
)

// Status is the orchestrator's lifecycle state.
type Status string

const (
	StatusRunning             Status = "running"
	StatusStoppedByThreshold  Status = "stopped_by_threshold"
	StatusStoppedByStagnation Status = "stopped_by_stagnation"
	StatusStoppedByMaxRounds  Status = "stopped_by_max_rounds"
	StatusFinalized           Status = "finalized"
)

// StopReason is recorded in the Stopped audit event.
type StopReason string

const (
	StopThreshold  StopReason = "threshold"
	StopStagnation StopReason = "stagnation"
	StopMaxRounds  StopReason = "max_rounds"
)

// ThresholdReached reports whether the best score meets the configured
// threshold.
func ThresholdReached(best *float64, threshold float64) bool {
	return best != nil && *best >= threshold
}

// StagnationExceeded reports whether the run has gone patience rounds
// without improvement.
func StagnationExceeded(counter, patience int) bool {
	return counter >= patience
}

// MaxRoundsReached reports whether the round budget is spent.
func MaxRoundsReached(round, maxRounds int) bool {
	return round >= maxRounds
}

// EvaluateStop applies the three predicates in priority order and
// returns the first that fires.
func EvaluateStop(state *idea.State, cfg *config.RunConfig) (StopReason, bool) {
	if ThresholdReached(state.BestScore, cfg.ScoreThreshold) {
		return StopThreshold, true
	}
	if StagnationExceeded(state.StagnationCounter, cfg.StagnationPatience) {
		return StopStagnation, true
	}
	if MaxRoundsReached(state.Iteration, cfg.MaxRounds) {
		return StopMaxRounds, true
	}
	return "", false
}

// Orchestrator owns the population state for the duration of a run.
type Orchestrator struct {
	cfg    config.RunConfig
	store  storage.Storage
	llm    core.Provider
	state  idea.State
	status Status
}

// New initializes a fresh run: resolves the storage backend and provider
// from config, allocates a run id and persists the initial artifacts.
func New(cfg config.RunConfig) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	store, err := storage.New(cfg.Storage, cfg.OutDir)
	if err != nil {
		return nil, err
	}
	llm, err := llms.NewProvider(cfg.Mode, cfg.Model)
	if err != nil {
		return nil, err
	}
	return NewWith(cfg, store, llm)
}

// NewWith initializes a fresh run with injected collaborators.
func NewWith(cfg config.RunConfig, store storage.Storage, llm core.Provider) (*Orchestrator, error) {
	runID := uuid.New()
	if err := store.InitRun(runID, &cfg); err != nil {
		return nil, err
	}
	return &Orchestrator{
		cfg:    cfg,
		store:  store,
		llm:    llm,
		state:  idea.NewState(runID),
		status: StatusRunning,
	}, nil
}

// Resume reopens a stopped run. A maxRounds above the stored value
// extends the budget; the updated config is persisted, the rest of the
// config stays immutable.
func Resume(store storage.Storage, runID uuid.UUID, maxRounds int) (*Orchestrator, error) {
	cfg, err := store.LoadConfig(runID)
	if err != nil {
		return nil, err
	}
	if maxRounds > cfg.MaxRounds {
		cfg.MaxRounds = maxRounds
		if err := store.SaveConfig(runID, &cfg); err != nil {
			return nil, err
		}
	}
	state, err := store.LoadState(runID)
	if err != nil {
		return nil, err
	}
	llm, err := llms.NewProvider(cfg.Mode, cfg.Model)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		cfg:    cfg,
		store:  store,
		llm:    llm,
		state:  state,
		status: StatusRunning,
	}, nil
}

// RunID returns the run's identifier.
func (o *Orchestrator) RunID() uuid.UUID { return o.state.RunID }

// Status returns the current lifecycle state.
func (o *Orchestrator) Status() Status { return o.status }

var stopStatus = map[StopReason]Status{
	StopThreshold:  StatusStoppedByThreshold,
	StopStagnation: StatusStoppedByStagnation,
	StopMaxRounds:  StatusStoppedByMaxRounds,
}

// Run executes rounds until a stop predicate fires, then runs Final once
// and returns the persisted result.
func (o *Orchestrator) Run(ctx context.Context) (idea.FinalResult, error) {
	logger := logging.GetLogger()
	ctx = logging.WithRunID(ctx, o.state.RunID.String())

	pc := &phases.Context{
		Config:  &o.cfg,
		Storage: o.store,
		LLM:     o.llm,
		Rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	round := []phases.Phase{
		phases.Generate{},
		phases.Critic{},
		phases.Select{},
		phases.Refine{TopK: o.cfg.RefineTopK},
	}

	for o.status == StatusRunning {
		o.state.Iteration++
		roundCtx := logging.WithRound(ctx, o.state.Iteration)
		logger.Info(roundCtx, "Starting round %d", o.state.Iteration)

		for _, phase := range round {
			phaseCtx := logging.WithPhase(roundCtx, phase.Name())
			next, err := phase.Run(phaseCtx, o.state, pc)
			if err != nil {
				return idea.FinalResult{}, err
			}
			o.state = next
			if err := o.store.SaveState(&o.state); err != nil {
				return idea.FinalResult{}, err
			}
		}

		if reason, stop := EvaluateStop(&o.state, &o.cfg); stop {
			o.status = stopStatus[reason]
			event := idea.NewEvent(o.state.Iteration, idea.EventStopped, map[string]any{
				"reason":       string(reason),
				"best_score":   o.state.BestScore,
				"best_idea_id": o.state.BestIdeaID,
			})
			if err := o.store.AppendEvent(o.state.RunID, event); err != nil {
				return idea.FinalResult{}, err
			}
			logger.Info(roundCtx, "Run stopped: %s", reason)
		}
	}

	finalCtx := logging.WithPhase(ctx, "final")
	next, err := (phases.Final{}).Run(finalCtx, o.state, pc)
	if err != nil {
		return idea.FinalResult{}, err
	}
	o.state = next
	if err := o.store.SaveState(&o.state); err != nil {
		return idea.FinalResult{}, err
	}
	o.status = StatusFinalized

	return o.store.LoadFinal(o.state.RunID)
}
