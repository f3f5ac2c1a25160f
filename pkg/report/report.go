// Package report renders run artifacts for human consumption: run
// listings, result summaries, export presets, lineage trees, artifact
// validation and preference profiles. Everything returns strings so the
// CLI layer decides where output goes.
package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/XiaoConstantine/evoidea-go/pkg/errors"
	"github.com/XiaoConstantine/evoidea-go/pkg/idea"
	"github.com/XiaoConstantine/evoidea-go/pkg/storage"
)

const listConcurrency = 8

// RunInfo is one row of the run listing.
type RunInfo struct {
	ID        uuid.UUID
	Status    string
	BestScore *float64
	Iteration int
}

// Run listing statuses.
const (
	StatusComplete   = "complete"
	StatusInProgress = "in_progress"
	StatusUnknown    = "unknown"
)

// ListRuns inspects every known run concurrently and reports its status
// and, for completed runs, the winning score.
func ListRuns(store storage.Storage) ([]RunInfo, error) {
	ids, err := store.ListRuns()
	if err != nil {
		return nil, err
	}

	p := pool.NewWithResults[RunInfo]().WithMaxGoroutines(listConcurrency)
	for _, id := range ids {
		id := id
		p.Go(func() RunInfo {
			return inspectRun(store, id)
		})
	}
	infos := p.Wait()

	// Newest first; uuids have no time component so string order is the
	// stable tie-break.
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ID.String() > infos[j].ID.String()
	})
	return infos, nil
}

func inspectRun(store storage.Storage, id uuid.UUID) RunInfo {
	info := RunInfo{ID: id, Status: StatusUnknown}

	if final, err := store.LoadFinal(id); err == nil {
		info.Status = StatusComplete
		score := final.Best.OverallScore
		info.BestScore = &score
	} else if state, err := store.LoadState(id); err == nil {
		info.Status = StatusInProgress
		info.Iteration = state.Iteration
	}
	return info
}

// FormatRunList renders the listing as a fixed-width table.
func FormatRunList(infos []RunInfo) string {
	if len(infos) == 0 {
		return "No runs found.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-38s %-12s BEST SCORE\n", "RUN ID", "STATUS")
	b.WriteString(strings.Repeat("-", 62) + "\n")
	for _, info := range infos {
		score := "-"
		if info.BestScore != nil {
			score = fmt.Sprintf("%.2f", *info.BestScore)
		}
		fmt.Fprintf(&b, "%-38s %-12s %s\n", info.ID, info.Status, score)
	}
	return b.String()
}

// Show renders a run's result. Completed runs render as raw JSON or
// markdown depending on format; in-progress runs get a short status
// summary regardless of format.
func Show(store storage.Storage, runID uuid.UUID, format string) (string, error) {
	final, err := store.LoadFinal(runID)
	if err != nil {
		state, stateErr := store.LoadState(runID)
		if stateErr != nil {
			return "", errors.WithFields(
				errors.New(errors.ResourceNotFound, "run not found"),
				errors.Fields{"run_id": runID.String()})
		}
		return formatInProgress(&state), nil
	}

	switch format {
	case "md":
		return formatFinalMarkdown(&final), nil
	default:
		data, err := json.MarshalIndent(final, "", "  ")
		if err != nil {
			return "", errors.Wrap(err, errors.PersistenceFailed, "failed to marshal final result")
		}
		return string(data) + "\n", nil
	}
}

func formatInProgress(state *idea.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s has not completed yet.\n", state.RunID)
	fmt.Fprintf(&b, "Current iteration: %d\n", state.Iteration)
	fmt.Fprintf(&b, "Active ideas: %d\n", len(state.ActiveIdeas()))
	if state.BestScore != nil {
		fmt.Fprintf(&b, "Best score: %.2f\n", *state.BestScore)
	}
	return b.String()
}

func formatFinalMarkdown(final *idea.FinalResult) string {
	best := final.Best
	var b strings.Builder

	fmt.Fprintf(&b, "# Best Idea: %s\n\n", best.Title)
	fmt.Fprintf(&b, "**Score:** %.2f/10\n\n", best.OverallScore)
	fmt.Fprintf(&b, "%s\n\n", best.Summary)

	b.WriteString("## Why It Won\n\n")
	for _, reason := range best.WhyWon {
		fmt.Fprintf(&b, "- %s\n", reason)
	}
	b.WriteString("\n")

	b.WriteString("## Details\n\n")
	f := best.Facets
	fmt.Fprintf(&b, "**Audience:** %s\n", f.Audience)
	fmt.Fprintf(&b, "**Problem:** %s\n", f.JTBD)
	fmt.Fprintf(&b, "**Unique:** %s\n", f.Differentiator)
	fmt.Fprintf(&b, "**Monetization:** %s\n", f.Monetization)
	fmt.Fprintf(&b, "**Distribution:** %s\n", f.Distribution)
	fmt.Fprintf(&b, "**Risks:** %s\n", f.Risks)

	if len(final.RunnersUp) > 0 {
		b.WriteString("\n## Runners Up\n\n")
		for _, r := range final.RunnersUp {
			fmt.Fprintf(&b, "- %s (%.2f/10)\n", r.Title, r.OverallScore)
		}
	}
	return b.String()
}

// ProfileSummary reports the recorded comparisons and the Elo ranking
// for a run's tournament preferences.
func ProfileSummary(store storage.Storage, runID uuid.UUID, state *idea.State) (string, error) {
	prefs, err := store.LoadPreferences(runID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== Profile for %s ===\n\n", runID)
	fmt.Fprintf(&b, "Comparisons: %d\n", len(prefs.Comparisons))

	if len(prefs.EloRatings) == 0 {
		b.WriteString("No ideas rated yet. Run a tournament to record preferences.\n")
		return b.String(), nil
	}
	fmt.Fprintf(&b, "Ideas rated: %d\n", len(prefs.EloRatings))

	type rated struct {
		id  string
		elo float64
	}
	ranked := make([]rated, 0, len(prefs.EloRatings))
	for id, elo := range prefs.EloRatings {
		ranked = append(ranked, rated{id: id, elo: elo})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].elo != ranked[j].elo {
			return ranked[i].elo > ranked[j].elo
		}
		return ranked[i].id < ranked[j].id
	})

	b.WriteString("\nElo Rankings:\n")
	for rank, r := range ranked {
		label := r.id
		if state != nil {
			if id, err := uuid.Parse(r.id); err == nil {
				if found := state.FindIdea(id); found != nil {
					label = found.Title
				}
			}
		}
		fmt.Fprintf(&b, "  %d. [%.0f] %s\n", rank+1, r.elo, label)
	}
	return b.String(), nil
}
