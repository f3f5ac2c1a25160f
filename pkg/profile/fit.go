// Package profile derives portable preference profiles from tournament
// outcomes: it infers the risk direction baked into a run's scores, fits
// a criterion-weight vector from pairwise comparisons, and bundles the
// result into a versioned export.
package profile

import (
	"math"
	"math/rand"

	"github.com/XiaoConstantine/evoidea-go/pkg/config"
	"github.com/XiaoConstantine/evoidea-go/pkg/idea"
)

// RiskMode says how the raw risk criterion relates to quality in a
// dataset: as a benefit (higher is better) or inverted (10 - risk).
type RiskMode int

const (
	RiskAsBenefit RiskMode = iota
	RiskInvert
)

// fitSeed makes the holdout split reproducible across exports.
const fitSeed = 1

const (
	learningRate    = 0.05
	weightClampMin  = 0.1
	weightClampMax  = 10.0
	holdoutFraction = 0.2
)

// InferRiskMode guesses the risk direction of a run's scoring by
// comparing how well the unweighted mean predicts the stored overall
// score under each hypothesis. It stays with the as-benefit default
// unless at least 3 scored ideas give strictly better evidence for
// inversion.
func InferRiskMode(state *idea.State) RiskMode {
	var errBenefit, errInvert float64
	n := 0

	for _, i := range state.Ideas {
		if i.OverallScore == nil {
			continue
		}
		overall := *i.OverallScore
		errBenefit += math.Abs(mean(featuresOf(i.Scores, RiskAsBenefit)) - overall)
		errInvert += math.Abs(mean(featuresOf(i.Scores, RiskInvert)) - overall)
		n++
	}

	if n >= 3 && errInvert+1e-6 < errBenefit {
		return RiskInvert
	}
	return RiskAsBenefit
}

func mean(v [idea.NumCriteria]float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

func featuresOf(s idea.Scores, mode RiskMode) [idea.NumCriteria]float64 {
	v := s.Vector()
	if mode == RiskInvert {
		v[6] = 10.0 - v[6]
	}
	return v
}

// Pair is one (winner, loser) training example, keyed by idea id string.
type Pair struct {
	Winner string
	Loser  string
}

// scoresByID indexes every idea's criterion vector, archived included.
func scoresByID(state *idea.State) map[string]idea.Scores {
	out := make(map[string]idea.Scores, len(state.Ideas))
	for _, i := range state.Ideas {
		out[i.ID.String()] = i.Scores
	}
	return out
}

// trainingPairs converts the comparison log into (winner, loser) pairs,
// dropping comparisons whose winner matches neither side or whose ideas
// have no known scores.
func trainingPairs(prefs *idea.Preferences, scores map[string]idea.Scores) []Pair {
	var pairs []Pair
	for _, c := range prefs.Comparisons {
		a, b, w := c.IdeaA.String(), c.IdeaB.String(), c.Winner.String()
		var loser string
		switch w {
		case a:
			loser = b
		case b:
			loser = a
		default:
			continue
		}
		if _, ok := scores[w]; !ok {
			continue
		}
		if _, ok := scores[loser]; !ok {
			continue
		}
		pairs = append(pairs, Pair{Winner: w, Loser: loser})
	}
	return pairs
}

// FitWeights runs the pairwise multiplicative-weights procedure. The
// returned weights are fit on every pair; the holdout split exists only
// to estimate accuracy (nil when there are too few pairs to hold any
// out).
func FitWeights(pairs []Pair, scores map[string]idea.Scores, mode RiskMode) (config.Weights, *float64) {
	indices := make([]int, len(pairs))
	for i := range indices {
		indices[i] = i
	}
	rng := rand.New(rand.NewSource(fitSeed))
	rng.Shuffle(len(indices), func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	testCount := int(math.Round(float64(len(pairs)) * holdoutFraction))
	if testCount > len(pairs) {
		testCount = len(pairs)
	}
	testIdx, trainIdx := indices[:testCount], indices[testCount:]

	trained := fitOnIndices(pairs, scores, mode, trainIdx)

	var holdout *float64
	if len(testIdx) > 0 {
		acc := pairwiseAccuracy(pairs, scores, mode, trained, testIdx)
		holdout = &acc
	}

	return fitOnIndices(pairs, scores, mode, indices), holdout
}

func fitOnIndices(pairs []Pair, scores map[string]idea.Scores, mode RiskMode, indices []int) config.Weights {
	w := [idea.NumCriteria]float64{1, 1, 1, 1, 1, 1, 1, 1}

	for _, idx := range indices {
		winner, okW := scores[pairs[idx].Winner]
		loser, okL := scores[pairs[idx].Loser]
		if !okW || !okL {
			continue
		}
		fw := featuresOf(winner, mode)
		fl := featuresOf(loser, mode)

		for i := range w {
			w[i] *= math.Exp(learningRate * (fw[i] - fl[i]))
			w[i] = math.Min(math.Max(w[i], weightClampMin), weightClampMax)
		}
		normalize(&w)
	}

	return config.Weights{
		Feasibility:     w[0],
		SpeedToValue:    w[1],
		Differentiation: w[2],
		MarketSize:      w[3],
		Distribution:    w[4],
		Moats:           w[5],
		Risk:            w[6],
		Clarity:         w[7],
	}
}

func pairwiseAccuracy(pairs []Pair, scores map[string]idea.Scores, mode RiskMode, weights config.Weights, indices []int) float64 {
	w := weights.Vector()
	correct, total := 0, 0
	for _, idx := range indices {
		winner, okW := scores[pairs[idx].Winner]
		loser, okL := scores[pairs[idx].Loser]
		if !okW || !okL {
			continue
		}
		total++
		if dot(w, featuresOf(winner, mode)) >= dot(w, featuresOf(loser, mode)) {
			correct++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

func normalize(w *[idea.NumCriteria]float64) {
	var sum float64
	for _, v := range w {
		sum += v
	}
	if sum <= 0 {
		for i := range w {
			w[i] = 1.0 / float64(len(w))
		}
		return
	}
	for i := range w {
		w[i] /= sum
	}
}

func dot(a, b [idea.NumCriteria]float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
