// Package testutil provides idea and state builders shared by tests.
package testutil

import (
	"github.com/google/uuid"

	"github.com/XiaoConstantine/evoidea-go/pkg/idea"
)

// ScoredIdea builds an Active generated idea with every criterion set to
// score (risk set to 10-score so a high score means a safe idea) and a
// matching overall score.
func ScoredIdea(title string, score float64) idea.Idea {
	i := idea.New(title, "summary of "+title, idea.Facets{
		Audience:       "builders",
		JTBD:           "ship faster",
		Differentiator: "unique angle",
		Monetization:   "subscriptions",
		Distribution:   "developer communities",
		Risks:          "crowded market",
	}, 0, idea.OriginGenerated)
	i.Scores = idea.Scores{
		Feasibility:     score,
		SpeedToValue:    score,
		Differentiation: score,
		MarketSize:      score,
		Distribution:    score,
		Moats:           score,
		Risk:            10 - score,
		Clarity:         score,
	}
	i.OverallScore = &score
	return i
}

// StateWith builds a run state holding the given ideas, with best
// tracking pointed at the highest scored one.
func StateWith(runID uuid.UUID, ideas ...idea.Idea) idea.State {
	state := idea.NewState(runID)
	state.Ideas = ideas

	for i := range ideas {
		if ideas[i].OverallScore == nil {
			continue
		}
		if state.BestScore == nil || *ideas[i].OverallScore > *state.BestScore {
			id := ideas[i].ID
			score := *ideas[i].OverallScore
			state.BestIdeaID = &id
			state.BestScore = &score
		}
	}
	return state
}
