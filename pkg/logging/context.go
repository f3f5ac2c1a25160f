package logging

import "context"

type contextKey string

const (
	runIDKey contextKey = "run_id"
	roundKey contextKey = "round"
	phaseKey contextKey = "phase"
)

// WithRunID tags a context with the current run identifier.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// GetRunID extracts the run identifier from a context.
func GetRunID(ctx context.Context) (string, bool) {
	runID, ok := ctx.Value(runIDKey).(string)
	return runID, ok
}

// WithRound tags a context with the current evolution round.
func WithRound(ctx context.Context, round int) context.Context {
	return context.WithValue(ctx, roundKey, round)
}

// GetRound extracts the evolution round from a context.
func GetRound(ctx context.Context) (int, bool) {
	round, ok := ctx.Value(roundKey).(int)
	return round, ok
}

// WithPhase tags a context with the pipeline phase in progress.
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, phaseKey, phase)
}

// GetPhase extracts the pipeline phase from a context.
func GetPhase(ctx context.Context) (string, bool) {
	phase, ok := ctx.Value(phaseKey).(string)
	return phase, ok
}
