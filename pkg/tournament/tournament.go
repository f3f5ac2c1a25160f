// Package tournament runs pairwise preference tournaments over a
// completed run's surviving ideas and maintains their Elo ratings. Three
// modes exist: automatic (score ranking, read only), exhaustive (every
// pair once) and pairwise (adaptive sampling capped at 2n comparisons).
package tournament

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/XiaoConstantine/evoidea-go/pkg/errors"
	"github.com/XiaoConstantine/evoidea-go/pkg/idea"
	"github.com/XiaoConstantine/evoidea-go/pkg/storage"
)

const (
	// KFactor is the Elo update step size.
	KFactor = 32.0
	// DefaultElo is the rating assigned to unseen ideas.
	DefaultElo = 1000.0
)

// Mode selects the tournament strategy.
type Mode string

const (
	ModeAuto       Mode = "auto"
	ModeExhaustive Mode = "exhaustive"
	ModePairwise   Mode = "pairwise"
)

// Eligible returns the ideas a tournament may rank: Active with a known
// overall score. The second result is the number of Active ideas that
// were excluded for missing scores.
func Eligible(state *idea.State) ([]idea.Idea, int) {
	var eligible []idea.Idea
	excluded := 0
	for _, i := range state.Ideas {
		if i.Status != idea.StatusActive {
			continue
		}
		if i.OverallScore == nil {
			excluded++
			continue
		}
		eligible = append(eligible, i)
	}
	return eligible, excluded
}

// Rating returns an idea's current Elo, defaulting for unseen ideas.
func Rating(prefs *idea.Preferences, id uuid.UUID) float64 {
	if r, ok := prefs.EloRatings[id.String()]; ok {
		return r
	}
	return DefaultElo
}

// UpdateElo applies the standard logistic update for one comparison
// outcome. The update is zero-sum: the winner gains exactly what the
// loser drops.
func UpdateElo(prefs *idea.Preferences, winner, loser uuid.UUID) {
	winnerElo := Rating(prefs, winner)
	loserElo := Rating(prefs, loser)

	expectedWinner := 1.0 / (1.0 + math.Pow(10, (loserElo-winnerElo)/400.0))
	delta := KFactor * (1.0 - expectedWinner)

	prefs.EloRatings[winner.String()] = winnerElo + delta
	prefs.EloRatings[loser.String()] = loserElo - delta
}

// PairwiseLimit caps adaptive sampling at 2n comparisons, enough to
// establish a ranking without the full n(n-1)/2 grid.
func PairwiseLimit(n int) int {
	return 2 * n
}

type pairKey [2]string

func keyOf(a, b uuid.UUID) pairKey {
	sa, sb := a.String(), b.String()
	if sa < sb {
		return pairKey{sa, sb}
	}
	return pairKey{sb, sa}
}

// ComparedPairs builds the order-independent set of already-compared
// pairs from the stored comparison log.
func ComparedPairs(prefs *idea.Preferences) map[pairKey]struct{} {
	compared := make(map[pairKey]struct{}, len(prefs.Comparisons))
	for _, c := range prefs.Comparisons {
		compared[keyOf(c.IdeaA, c.IdeaB)] = struct{}{}
	}
	return compared
}

// SelectNextPair picks the uncompared pair with the smallest Elo gap.
// Ties keep the first pair found in index order, which makes the choice
// deterministic for equal ratings. Returns false when every pair has
// been compared.
func SelectNextPair(ids []uuid.UUID, prefs *idea.Preferences, compared map[pairKey]struct{}) (uuid.UUID, uuid.UUID, bool) {
	var bestA, bestB uuid.UUID
	found := false
	smallest := math.MaxFloat64

	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if _, done := compared[keyOf(ids[i], ids[j])]; done {
				continue
			}
			diff := math.Abs(Rating(prefs, ids[i]) - Rating(prefs, ids[j]))
			if diff < smallest {
				smallest = diff
				bestA, bestB = ids[i], ids[j]
				found = true
			}
		}
	}
	return bestA, bestB, found
}

// Runner executes a tournament session. In and Out carry the interactive
// dialogue; persistence goes through Store after every recorded
// comparison so an interrupted session never loses a decision.
type Runner struct {
	Store storage.Storage
	In    io.Reader
	Out   io.Writer
}

// Run executes one tournament session over the run's current state.
func (r *Runner) Run(runID uuid.UUID, mode Mode) error {
	state, err := r.Store.LoadState(runID)
	if err != nil {
		return err
	}

	eligible, excluded := Eligible(&state)
	if len(eligible) < 2 {
		return errors.WithFields(
			errors.New(errors.EmptyResult, "need at least 2 scored active ideas for tournament"),
			errors.Fields{"eligible": len(eligible), "excluded": excluded})
	}

	fmt.Fprintf(r.Out, "Tournament Mode for run: %s\n", runID)
	fmt.Fprintf(r.Out, "Active ideas: %d\n", len(eligible)+excluded)
	if excluded > 0 {
		fmt.Fprintf(r.Out, "Warning: %d active ideas have missing scores and were excluded.\n", excluded)
	}
	fmt.Fprintln(r.Out)

	if mode == ModeAuto {
		r.printScoreRanking(eligible)
		return nil
	}

	prefs, err := r.Store.LoadPreferences(runID)
	if err != nil {
		return err
	}
	for _, i := range eligible {
		if _, ok := prefs.EloRatings[i.ID.String()]; !ok {
			prefs.EloRatings[i.ID.String()] = DefaultElo
		}
	}

	scanner := bufio.NewScanner(r.In)
	var recorded int
	switch mode {
	case ModeExhaustive:
		recorded, err = r.runExhaustive(runID, eligible, prefs, scanner)
	case ModePairwise:
		recorded, err = r.runPairwise(runID, eligible, prefs, scanner)
	default:
		return errors.WithFields(
			errors.New(errors.InvalidInput, "unsupported tournament mode"),
			errors.Fields{"mode": string(mode)})
	}
	if err != nil {
		return err
	}

	r.printEloRanking(eligible, prefs)
	fmt.Fprintf(r.Out, "\nComparisons made: %d\n", recorded)
	return nil
}

func (r *Runner) record(runID uuid.UUID, prefs *idea.Preferences, a, b, winner uuid.UUID) error {
	prefs.Comparisons = append(prefs.Comparisons, idea.Comparison{IdeaA: a, IdeaB: b, Winner: winner})
	loser := a
	if winner == a {
		loser = b
	}
	UpdateElo(prefs, winner, loser)
	return r.Store.SavePreferences(runID, prefs)
}

func readChoice(scanner *bufio.Scanner) (string, bool) {
	if !scanner.Scan() {
		return "", false
	}
	return strings.ToUpper(strings.TrimSpace(scanner.Text())), true
}

func (r *Runner) runExhaustive(runID uuid.UUID, eligible []idea.Idea, prefs *idea.Preferences, scanner *bufio.Scanner) (int, error) {
	fmt.Fprintln(r.Out, "=== Interactive Tournament ===")
	fmt.Fprintln(r.Out, "Commands: [A] Choose A | [B] Choose B | [S] Skip | [Q] Quit")
	fmt.Fprintln(r.Out)

	compared := ComparedPairs(prefs)
	count := 0
	for i := 0; i < len(eligible); i++ {
		for j := i + 1; j < len(eligible); j++ {
			a, b := eligible[i], eligible[j]
			if _, done := compared[keyOf(a.ID, b.ID)]; done {
				continue
			}

			fmt.Fprintf(r.Out, "--- Comparison %d ---\n\n", count+1)
			fmt.Fprintf(r.Out, "[A] %s (score: %.2f)\n\n", a.Title, *a.OverallScore)
			fmt.Fprintf(r.Out, "[B] %s (score: %.2f)\n\n", b.Title, *b.OverallScore)
			fmt.Fprint(r.Out, "Your choice [A/B/S/Q]: ")

			choice, ok := readChoice(scanner)
			if !ok {
				return count, nil
			}
			switch choice {
			case "A":
				if err := r.record(runID, prefs, a.ID, b.ID, a.ID); err != nil {
					return count, err
				}
				count++
				fmt.Fprintf(r.Out, "Recorded: %s wins\n\n", a.Title)
			case "B":
				if err := r.record(runID, prefs, a.ID, b.ID, b.ID); err != nil {
					return count, err
				}
				count++
				fmt.Fprintf(r.Out, "Recorded: %s wins\n\n", b.Title)
			case "S":
				fmt.Fprintln(r.Out, "Skipped")
			case "Q":
				fmt.Fprintln(r.Out, "Quitting tournament...")
				return count, nil
			default:
				fmt.Fprintln(r.Out, "Invalid choice, skipping")
			}
		}
	}
	return count, nil
}

func (r *Runner) runPairwise(runID uuid.UUID, eligible []idea.Idea, prefs *idea.Preferences, scanner *bufio.Scanner) (int, error) {
	limit := PairwiseLimit(len(eligible))
	fmt.Fprintln(r.Out, "=== Pairwise Comparison Mode ===")
	fmt.Fprintf(r.Out, "Smart sampling: up to %d comparisons (vs %d for exhaustive)\n",
		limit, len(eligible)*(len(eligible)-1)/2)
	fmt.Fprintln(r.Out, "Pick your preference: [A] or [B]. [S] Skip | [Q] Quit")
	fmt.Fprintln(r.Out)

	byID := make(map[uuid.UUID]idea.Idea, len(eligible))
	ids := make([]uuid.UUID, len(eligible))
	for i, e := range eligible {
		ids[i] = e.ID
		byID[e.ID] = e
	}
	compared := ComparedPairs(prefs)

	count := 0
	for count < limit {
		idA, idB, found := SelectNextPair(ids, prefs, compared)
		if !found {
			fmt.Fprintln(r.Out, "All pairs compared!")
			break
		}
		a, b := byID[idA], byID[idB]

		fmt.Fprintf(r.Out, "--- Comparison %d/%d ---\n\n", count+1, limit)
		fmt.Fprintf(r.Out, "[A] %s (Elo: %.0f)\n\n", a.Title, Rating(prefs, idA))
		fmt.Fprintf(r.Out, "[B] %s (Elo: %.0f)\n\n", b.Title, Rating(prefs, idB))
		fmt.Fprint(r.Out, "Which is better? [A/B/S/Q]: ")

		choice, ok := readChoice(scanner)
		if !ok {
			return count, nil
		}
		switch choice {
		case "A":
			compared[keyOf(idA, idB)] = struct{}{}
			if err := r.record(runID, prefs, idA, idB, idA); err != nil {
				return count, err
			}
			count++
			fmt.Fprintf(r.Out, "-> %s wins\n\n", a.Title)
		case "B":
			compared[keyOf(idA, idB)] = struct{}{}
			if err := r.record(runID, prefs, idA, idB, idB); err != nil {
				return count, err
			}
			count++
			fmt.Fprintf(r.Out, "-> %s wins\n\n", b.Title)
		case "S":
			// Skips are session-local: the pair stays uncompared on disk
			// and may come back in a later session.
			compared[keyOf(idA, idB)] = struct{}{}
			fmt.Fprintln(r.Out, "Skipped")
		case "Q":
			fmt.Fprintln(r.Out, "Quitting tournament...")
			return count, nil
		default:
			fmt.Fprintln(r.Out, "Invalid choice, try again")
		}
	}
	return count, nil
}

func (r *Runner) printScoreRanking(eligible []idea.Idea) {
	fmt.Fprintln(r.Out, "=== Auto Mode: Ranking by Score ===")
	fmt.Fprintln(r.Out)

	ranked := make([]idea.Idea, len(eligible))
	copy(ranked, eligible)
	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].OverallScore > *ranked[j].OverallScore
	})
	for rank, i := range ranked {
		fmt.Fprintf(r.Out, "%d. [%.2f] %s\n", rank+1, *i.OverallScore, truncate(i.Title, 60))
	}
}

func (r *Runner) printEloRanking(eligible []idea.Idea, prefs *idea.Preferences) {
	fmt.Fprintln(r.Out, "=== Current Rankings (by Elo) ===")
	fmt.Fprintln(r.Out)

	ranked := make([]idea.Idea, len(eligible))
	copy(ranked, eligible)
	sort.SliceStable(ranked, func(i, j int) bool {
		return Rating(prefs, ranked[i].ID) > Rating(prefs, ranked[j].ID)
	})
	for rank, i := range ranked {
		fmt.Fprintf(r.Out, "%d. [Elo: %.0f] %s\n", rank+1, Rating(prefs, i.ID), truncate(i.Title, 50))
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
