// Package scoring implements the pure numeric core of a run: the
// weighted overall score, the elite-plus-diversity survivor selection,
// and the stagnation counter update.
package scoring

import (
	"math"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/XiaoConstantine/evoidea-go/pkg/config"
	"github.com/XiaoConstantine/evoidea-go/pkg/errors"
	"github.com/XiaoConstantine/evoidea-go/pkg/idea"
)

// riskIndex is the position of the risk criterion in the score vector.
// Risk is the one criterion where a lower raw value is better, so it
// contributes as (10 - risk).
const riskIndex = 6

// Overall computes the weighted mean of the eight criteria. It is
// deterministic and has no side effects.
func Overall(s idea.Scores, w config.Weights) (float64, error) {
	weights := w.Vector()
	values := s.Vector()

	var weightSum float64
	for _, wv := range weights {
		weightSum += wv
	}
	if weightSum == 0 {
		return 0, errors.New(errors.InvalidInput, "sum of scoring weights is zero")
	}

	var total float64
	for i, v := range values {
		if i == riskIndex {
			v = 10 - v
		}
		total += v * weights[i]
	}
	return total / weightSum, nil
}

// SelectIdeas picks the survivor set from candidates, which must be the
// Active, fully scored ideas of the current round. The top
// min(eliteCount, n) by overall score always survive. Remaining slots up
// to populationSize are filled by sampling without replacement from the
// mid-rank band [ceil(0.3n), floor(0.7n)): the bottom third is unlikely
// to be worth further generation budget and the top third already
// survives as elite.
func SelectIdeas(candidates []idea.Idea, eliteCount, populationSize int, rng *rand.Rand) map[uuid.UUID]struct{} {
	n := len(candidates)
	selected := make(map[uuid.UUID]struct{}, eliteCount)
	if n == 0 {
		return selected
	}

	sorted := make([]idea.Idea, n)
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return overallOf(sorted[i]) > overallOf(sorted[j])
	})

	eliteTaken := eliteCount
	if eliteTaken > n {
		eliteTaken = n
	}
	for _, i := range sorted[:eliteTaken] {
		selected[i.ID] = struct{}{}
	}

	diversitySlots := populationSize - eliteTaken
	if diversitySlots <= 0 || n <= eliteTaken {
		return selected
	}

	bandStart := int(math.Ceil(0.3 * float64(n)))
	bandEnd := int(math.Floor(0.7 * float64(n)))
	var band []uuid.UUID
	for i := bandStart; i < bandEnd && i < n; i++ {
		id := sorted[i].ID
		if _, ok := selected[id]; !ok {
			band = append(band, id)
		}
	}

	take := diversitySlots
	if take > len(band) {
		take = len(band)
	}
	rng.Shuffle(len(band), func(i, j int) {
		band[i], band[j] = band[j], band[i]
	})
	for _, id := range band[:take] {
		selected[id] = struct{}{}
	}
	return selected
}

func overallOf(i idea.Idea) float64 {
	if i.OverallScore == nil {
		return math.Inf(-1)
	}
	return *i.OverallScore
}

// UpdateStagnation returns the next stagnation counter value: 0 when the
// best score improved (or was recorded for the first time), the counter
// plus one otherwise.
func UpdateStagnation(newBest, previousBest *float64, counter int) int {
	if newBest == nil {
		return counter
	}
	if previousBest == nil || *newBest > *previousBest {
		return 0
	}
	return counter + 1
}
