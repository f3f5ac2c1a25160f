// Package evoidea evolves a population of product ideas with a language
// model. Each round an idea population is expanded by generation,
// scored against eight weighted criteria by a critic, culled to the
// elite plus a diversity sample, and topped up by refining the
// strongest candidates. The loop stops on a score threshold,
// stagnation, or a round budget, then composes a ranked final result.
//
// Key components:
//
//   - pkg/idea: the shared data model. Idea records with origin
//     lineage, the population State, the append-only event log and the
//     FinalResult, plus the invariant checks over a persisted state.
//
//   - pkg/phases: the four pipeline phases (generate, critic, select,
//     refine) and the terminal final phase, each a small Phase
//     implementation the orchestrator sequences.
//
//   - pkg/orchestrator: the run loop. Threads the state through the
//     phases, snapshots it after every phase, evaluates the stopping
//     rules and supports resuming a stopped run with a larger budget.
//
//   - pkg/scoring: weighted overall scores (risk contributes inverted)
//     and the elite-plus-diversity selection rule.
//
//   - pkg/llms: the provider abstraction with an Anthropic
//     implementation and a deterministic mock for offline runs.
//
//   - pkg/storage: run persistence as a plain directory layout or a
//     SQLite database, behind one Storage interface.
//
//   - pkg/tournament: interactive pairwise preference tournaments with
//     Elo ratings and adaptive pair selection.
//
//   - pkg/profile: preference profiles fitted from tournament
//     comparisons with multiplicative weights, portable across runs.
//
//   - pkg/report: run listings, result rendering, export presets,
//     lineage trees and artifact validation.
//
// The evoidea CLI under cmd/evoidea fronts all of it.
package evoidea
