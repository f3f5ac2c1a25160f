// Package phases implements the round pipeline: Generate, Critic,
// Select and Refine run in fixed order every round, Final runs once
// after the loop stops. Each phase takes the state by value and returns
// the updated value; the only shared pieces are the read-only context.
package phases

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/XiaoConstantine/evoidea-go/pkg/config"
	"github.com/XiaoConstantine/evoidea-go/pkg/core"
	"github.com/XiaoConstantine/evoidea-go/pkg/errors"
	"github.com/XiaoConstantine/evoidea-go/pkg/idea"
	"github.com/XiaoConstantine/evoidea-go/pkg/logging"
	"github.com/XiaoConstantine/evoidea-go/pkg/scoring"
	"github.com/XiaoConstantine/evoidea-go/pkg/storage"
)

// Context carries the read-only collaborators every phase needs.
type Context struct {
	Config  *config.RunConfig
	Storage storage.Storage
	LLM     core.Provider
	// Rng drives the diversity sample in Select. Defaults to a
	// time-seeded source when nil.
	Rng *rand.Rand
}

func (pc *Context) rng() *rand.Rand {
	if pc.Rng == nil {
		pc.Rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return pc.Rng
}

// Phase is one step of the pipeline.
type Phase interface {
	Name() string
	Run(ctx context.Context, state idea.State, pc *Context) (idea.State, error)
}

// Generate tops the population back up to population_size with fresh
// LLM-generated ideas.
type Generate struct{}

func (Generate) Name() string { return "generate" }

func (Generate) Run(ctx context.Context, state idea.State, pc *Context) (idea.State, error) {
	logger := logging.GetLogger()
	deficit := pc.Config.PopulationSize - len(state.ActiveIdeas())
	if deficit <= 0 {
		return state, nil
	}

	output, err := pc.LLM.GenerateJSON(ctx, core.GenerateTask{
		Prompt: pc.Config.Prompt,
		Count:  deficit,
	})
	if err != nil {
		return state, err
	}

	newIdeas, err := core.ParseGeneratedIdeas(output, state.Iteration)
	if err != nil {
		return state, err
	}
	state.Ideas = append(state.Ideas, newIdeas...)

	event := idea.NewEvent(state.Iteration, idea.EventGenerated, map[string]any{"count": len(newIdeas)})
	if err := pc.Storage.AppendEvent(state.RunID, event); err != nil {
		return state, err
	}

	logger.Info(ctx, "Generated %d new ideas", len(newIdeas))
	return state, nil
}

// Critic batches all unscored Active ideas to the LLM for score patches,
// then recomputes every Active idea's overall score with the configured
// weights. Recomputing everyone means a changed weight vector
// retroactively re-ranks the whole population.
type Critic struct{}

func (Critic) Name() string { return "critic" }

func (Critic) Run(ctx context.Context, state idea.State, pc *Context) (idea.State, error) {
	logger := logging.GetLogger()

	var unscored []core.CriticItem
	for _, i := range state.Ideas {
		if i.Status == idea.StatusActive && i.OverallScore == nil {
			unscored = append(unscored, core.CriticItem{ID: i.ID, Title: i.Title, Summary: i.Summary})
		}
	}
	if len(unscored) == 0 {
		return state, nil
	}

	output, err := pc.LLM.GenerateJSON(ctx, core.CriticTask{Ideas: unscored})
	if err != nil {
		return state, err
	}
	if err := core.ApplyCriticPatches(state.Ideas, output); err != nil {
		return state, err
	}

	for i := range state.Ideas {
		if state.Ideas[i].Status != idea.StatusActive {
			continue
		}
		calculated, err := scoring.Overall(state.Ideas[i].Scores, pc.Config.Weights)
		if err != nil {
			return state, err
		}
		state.Ideas[i].OverallScore = &calculated
	}

	event := idea.NewEvent(state.Iteration, idea.EventScored, map[string]any{"count": len(unscored)})
	if err := pc.Storage.AppendEvent(state.RunID, event); err != nil {
		return state, err
	}

	logger.Info(ctx, "Scored %d ideas", len(unscored))
	return state, nil
}

// Select archives every Active idea outside the survivor set, then
// updates the best pointer and the stagnation counter.
type Select struct{}

func (Select) Name() string { return "select" }

func (Select) Run(ctx context.Context, state idea.State, pc *Context) (idea.State, error) {
	logger := logging.GetLogger()

	selected := scoring.SelectIdeas(
		state.ActiveIdeas(),
		pc.Config.EliteCount,
		pc.Config.PopulationSize,
		pc.rng(),
	)

	archived := 0
	for i := range state.Ideas {
		if state.Ideas[i].Status != idea.StatusActive {
			continue
		}
		if _, keep := selected[state.Ideas[i].ID]; !keep {
			state.Ideas[i].Status = idea.StatusArchived
			archived++
		}
	}

	// Best is the max over the remaining Active ideas, recomputed fresh
	// each round.
	previousBest := state.BestScore
	var roundBest *idea.Idea
	for i := range state.Ideas {
		cur := &state.Ideas[i]
		if cur.Status != idea.StatusActive || cur.OverallScore == nil {
			continue
		}
		if roundBest == nil || *cur.OverallScore > *roundBest.OverallScore {
			roundBest = cur
		}
	}
	if roundBest != nil {
		id := roundBest.ID
		score := *roundBest.OverallScore
		state.BestIdeaID = &id
		state.BestScore = &score
	}
	state.StagnationCounter = scoring.UpdateStagnation(state.BestScore, previousBest, state.StagnationCounter)

	event := idea.NewEvent(state.Iteration, idea.EventSelected, map[string]any{
		"selected":   len(selected),
		"archived":   archived,
		"best_score": state.BestScore,
	})
	if err := pc.Storage.AppendEvent(state.RunID, event); err != nil {
		return state, err
	}

	logger.Info(ctx, "Selection complete: %d selected, %d archived", len(selected), archived)
	return state, nil
}

// Refine asks the LLM to improve the strongest judged ideas, adding the
// improved versions as new unscored children for the next round.
type Refine struct {
	TopK int
}

func (Refine) Name() string { return "refine" }

func (r Refine) Run(ctx context.Context, state idea.State, pc *Context) (idea.State, error) {
	logger := logging.GetLogger()

	var candidates []idea.Idea
	for _, i := range state.Ideas {
		if i.Status == idea.StatusActive && i.JudgeNotes != nil {
			candidates = append(candidates, i)
		}
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return derefScore(candidates[a].OverallScore) > derefScore(candidates[b].OverallScore)
	})
	if len(candidates) > r.TopK {
		candidates = candidates[:r.TopK]
	}
	if len(candidates) == 0 {
		return state, nil
	}

	refined := 0
	for _, candidate := range candidates {
		output, err := pc.LLM.GenerateJSON(ctx, core.RefineTask{
			IdeaID:     candidate.ID,
			Title:      candidate.Title,
			Summary:    candidate.Summary,
			Facets:     candidate.Facets,
			JudgeNotes: *candidate.JudgeNotes,
		})
		if err != nil {
			return state, err
		}

		seed, ok := core.ParseRefinePatch(output, core.IdeaSeed{
			Title:   candidate.Title,
			Summary: candidate.Summary,
			Facets:  candidate.Facets,
		})
		if !ok {
			continue
		}

		child := idea.New(seed.Title, seed.Summary, seed.Facets, state.Iteration, idea.OriginRefined).
			WithParents(candidate.ID)
		state.Ideas = append(state.Ideas, child)
		refined++
	}

	event := idea.NewEvent(state.Iteration, idea.EventRefined, map[string]any{"count": refined})
	if err := pc.Storage.AppendEvent(state.RunID, event); err != nil {
		return state, err
	}

	logger.Info(ctx, "Refined %d ideas", refined)
	return state, nil
}

func derefScore(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Final ranks the surviving scored ideas and persists the run's result.
type Final struct{}

func (Final) Name() string { return "final" }

func (Final) Run(ctx context.Context, state idea.State, pc *Context) (idea.State, error) {
	logger := logging.GetLogger()

	var active []idea.Idea
	for _, i := range state.Ideas {
		if i.Status == idea.StatusActive && i.OverallScore != nil {
			active = append(active, i)
		}
	}
	sort.SliceStable(active, func(a, b int) bool {
		return *active[a].OverallScore > *active[b].OverallScore
	})
	if len(active) == 0 {
		return state, errors.New(errors.EmptyResult, "no active scored ideas to compose final result")
	}

	best := active[0]
	result := idea.FinalResult{
		RunID: state.RunID,
		Best: idea.FinalBest{
			IdeaID:       best.ID,
			Title:        best.Title,
			Summary:      best.Summary,
			Facets:       best.Facets,
			Scores:       best.Scores,
			OverallScore: *best.OverallScore,
			WhyWon:       whyWon(best),
		},
	}
	for _, i := range active[1:] {
		result.RunnersUp = append(result.RunnersUp, idea.RunnerUp{
			IdeaID:       i.ID,
			Title:        i.Title,
			OverallScore: *i.OverallScore,
		})
		if len(result.RunnersUp) == 4 {
			break
		}
	}

	if err := pc.Storage.SaveFinal(&result); err != nil {
		return state, err
	}

	logger.Info(ctx, "Final result composed: %q at %.2f", best.Title, *best.OverallScore)
	return state, nil
}

func whyWon(best idea.Idea) []string {
	return []string{
		fmt.Sprintf("Highest overall score: %.2f", *best.OverallScore),
		fmt.Sprintf("Feasibility: %.1f", best.Scores.Feasibility),
		fmt.Sprintf("Low risk: %.1f", best.Scores.Risk),
	}
}
