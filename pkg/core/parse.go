package core

import (
	"github.com/google/uuid"

	"github.com/XiaoConstantine/evoidea-go/pkg/errors"
	"github.com/XiaoConstantine/evoidea-go/pkg/idea"
)

// getString extracts a string field, falling back when absent or of the
// wrong type. Leaf text fields are soft: a missing title becomes a
// placeholder rather than failing the whole batch.
func getString(m map[string]interface{}, key, fallback string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return fallback
}

func getFloat(m map[string]interface{}, key string) float64 {
	if v, ok := m[key].(float64); ok {
		return v
	}
	return 0
}

func parseFacets(v interface{}) idea.Facets {
	m, ok := v.(map[string]interface{})
	if !ok {
		return idea.Facets{}
	}
	return idea.Facets{
		Audience:       getString(m, "audience", ""),
		JTBD:           getString(m, "jtbd", ""),
		Differentiator: getString(m, "differentiator", ""),
		Monetization:   getString(m, "monetization", ""),
		Distribution:   getString(m, "distribution", ""),
		Risks:          getString(m, "risks", ""),
	}
}

// ParseGeneratedIdeas converts a generate response into fresh Active
// ideas tagged with generation gen. A missing "ideas" array is a hard
// failure; missing leaf fields default softly.
func ParseGeneratedIdeas(output map[string]interface{}, gen int) ([]idea.Idea, error) {
	raw, ok := output["ideas"].([]interface{})
	if !ok {
		return nil, errors.New(errors.MalformedOutput, "expected 'ideas' array in generate output")
	}

	ideas := make([]idea.Idea, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]interface{})
		if !ok {
			return nil, errors.New(errors.MalformedOutput, "generate output entry is not an object")
		}
		ideas = append(ideas, idea.New(
			getString(m, "title", "Untitled"),
			getString(m, "summary", ""),
			parseFacets(m["facets"]),
			gen,
			idea.OriginGenerated,
		))
	}
	return ideas, nil
}

// ApplyCriticPatches applies per-idea score patches to the population in
// place. Each patch must carry a parseable id; patches referencing
// unknown ideas are ignored. Missing score fields default to 0.
func ApplyCriticPatches(ideas []idea.Idea, output map[string]interface{}) error {
	raw, ok := output["patches"].([]interface{})
	if !ok {
		return errors.New(errors.MalformedOutput, "expected 'patches' array in critic output")
	}

	for _, entry := range raw {
		patch, ok := entry.(map[string]interface{})
		if !ok {
			return errors.New(errors.MalformedOutput, "critic patch is not an object")
		}
		idStr, ok := patch["id"].(string)
		if !ok {
			return errors.New(errors.MalformedOutput, "critic patch missing 'id'")
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return errors.WithFields(
				errors.Wrap(err, errors.MalformedOutput, "critic patch has invalid id"),
				errors.Fields{"id": idStr})
		}

		for i := range ideas {
			if ideas[i].ID != id {
				continue
			}
			if scores, ok := patch["scores"].(map[string]interface{}); ok {
				ideas[i].Scores = idea.Scores{
					Feasibility:     getFloat(scores, "feasibility"),
					SpeedToValue:    getFloat(scores, "speed_to_value"),
					Differentiation: getFloat(scores, "differentiation"),
					MarketSize:      getFloat(scores, "market_size"),
					Distribution:    getFloat(scores, "distribution"),
					Moats:           getFloat(scores, "moats"),
					Risk:            getFloat(scores, "risk"),
					Clarity:         getFloat(scores, "clarity"),
				}
			}
			if overall, ok := patch["overall_score"].(float64); ok {
				ideas[i].OverallScore = &overall
			} else {
				ideas[i].OverallScore = nil
			}
			if notes, ok := patch["judge_notes"].(string); ok {
				ideas[i].JudgeNotes = &notes
			} else {
				ideas[i].JudgeNotes = nil
			}
			break
		}
	}
	return nil
}

// ParseRefinePatch extracts the improved title/summary/facets from a
// refine response, falling back field by field to the original idea. A
// response without a "patch" object yields ok=false, which the refine
// phase treats as "nothing to apply".
func ParseRefinePatch(output map[string]interface{}, original IdeaSeed) (IdeaSeed, bool) {
	patch, ok := output["patch"].(map[string]interface{})
	if !ok {
		return IdeaSeed{}, false
	}
	seed := IdeaSeed{
		Title:   getString(patch, "title", original.Title),
		Summary: getString(patch, "summary", original.Summary),
		Facets:  original.Facets,
	}
	if facets, ok := patch["facets"].(map[string]interface{}); ok {
		seed.Facets = idea.Facets{
			Audience:       getString(facets, "audience", original.Facets.Audience),
			JTBD:           getString(facets, "jtbd", original.Facets.JTBD),
			Differentiator: getString(facets, "differentiator", original.Facets.Differentiator),
			Monetization:   getString(facets, "monetization", original.Facets.Monetization),
			Distribution:   getString(facets, "distribution", original.Facets.Distribution),
			Risks:          getString(facets, "risks", original.Facets.Risks),
		}
	}
	return seed, true
}
