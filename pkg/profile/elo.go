package profile

import (
	"github.com/montanaflynn/stats"

	"github.com/XiaoConstantine/evoidea-go/pkg/errors"
	"github.com/XiaoConstantine/evoidea-go/pkg/idea"
)

// EloSummary describes the shape of a preference set's rating
// distribution. A near-zero spread means the tournament has not
// separated the ideas yet.
type EloSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// SummarizeElo computes distribution statistics over all rated ideas.
func SummarizeElo(prefs *idea.Preferences) (EloSummary, error) {
	if len(prefs.EloRatings) == 0 {
		return EloSummary{}, errors.New(errors.EmptyResult, "no Elo ratings recorded")
	}

	ratings := make(stats.Float64Data, 0, len(prefs.EloRatings))
	for _, r := range prefs.EloRatings {
		ratings = append(ratings, r)
	}

	mean, err := stats.Mean(ratings)
	if err != nil {
		return EloSummary{}, errors.Wrap(err, errors.Unknown, "failed to compute mean")
	}
	median, err := stats.Median(ratings)
	if err != nil {
		return EloSummary{}, errors.Wrap(err, errors.Unknown, "failed to compute median")
	}
	stdDev, err := stats.StandardDeviation(ratings)
	if err != nil {
		return EloSummary{}, errors.Wrap(err, errors.Unknown, "failed to compute standard deviation")
	}
	min, err := stats.Min(ratings)
	if err != nil {
		return EloSummary{}, errors.Wrap(err, errors.Unknown, "failed to compute min")
	}
	max, err := stats.Max(ratings)
	if err != nil {
		return EloSummary{}, errors.Wrap(err, errors.Unknown, "failed to compute max")
	}

	return EloSummary{
		Count:  len(ratings),
		Mean:   mean,
		Median: median,
		StdDev: stdDev,
		Min:    min,
		Max:    max,
	}, nil
}
