// Package llms provides the LLM collaborator implementations: a
// deterministic mock for tests and offline runs, and a provider backed
// by the Anthropic API.
package llms

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/XiaoConstantine/evoidea-go/pkg/core"
	"github.com/XiaoConstantine/evoidea-go/pkg/errors"
)

// MockProvider returns deterministic payloads for every task kind. Score
// patches are a function of batch index only, so reruns produce
// identical populations.
type MockProvider struct {
	genCounter atomic.Uint32
}

// NewMockProvider creates a mock provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Name() string { return "mock" }

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func (m *MockProvider) mockIdea(idx int, gen uint32) map[string]interface{} {
	return map[string]interface{}{
		"title":   fmt.Sprintf("Mock Idea %d (gen %d)", idx, gen),
		"summary": fmt.Sprintf("This is mock idea %d generated in generation %d", idx, gen),
		"facets": map[string]interface{}{
			"audience":       "Developers",
			"jtbd":           "Automate repetitive tasks",
			"differentiator": "AI-powered automation",
			"monetization":   "SaaS subscription",
			"distribution":   "Developer communities",
			"risks":          "Competition from incumbents",
		},
	}
}

func (m *MockProvider) mockScores(id string, idx int) map[string]interface{} {
	base := 7.0 + float64(idx)*0.3
	return map[string]interface{}{
		"id": id,
		"scores": map[string]interface{}{
			"feasibility":     math.Min(base, 10.0),
			"speed_to_value":  clamp(base-0.5, 0.0, 10.0),
			"differentiation": math.Min(base+0.2, 10.0),
			"market_size":     clamp(base-0.3, 0.0, 10.0),
			"distribution":    math.Min(base, 10.0),
			"moats":           clamp(base-1.0, 0.0, 10.0),
			"risk":            clamp(5.0-float64(idx)*0.2, 1.0, 10.0),
			"clarity":         math.Min(base+0.5, 10.0),
		},
		"overall_score": math.Min(base, 10.0),
		"judge_notes":   fmt.Sprintf("Mock evaluation for idea %s", id),
	}
}

// GenerateJSON fabricates a schema-correct response for the task.
func (m *MockProvider) GenerateJSON(_ context.Context, task core.Task) (map[string]interface{}, error) {
	switch t := task.(type) {
	case core.GenerateTask:
		gen := m.genCounter.Add(1) - 1
		ideas := make([]interface{}, 0, t.Count)
		for i := 0; i < t.Count; i++ {
			ideas = append(ideas, m.mockIdea(i, gen))
		}
		return map[string]interface{}{"ideas": ideas}, nil

	case core.CriticTask:
		patches := make([]interface{}, 0, len(t.Ideas))
		for idx, item := range t.Ideas {
			patches = append(patches, m.mockScores(item.ID.String(), idx))
		}
		return map[string]interface{}{"patches": patches}, nil

	case core.MergeTask:
		return map[string]interface{}{
			"idea": map[string]interface{}{
				"title":   fmt.Sprintf("%s + %s", t.IdeaA.Title, t.IdeaB.Title),
				"summary": fmt.Sprintf("Merged: %s and %s", t.IdeaA.Summary, t.IdeaB.Summary),
				"facets": map[string]interface{}{
					"audience":       t.IdeaA.Facets.Audience,
					"jtbd":           t.IdeaB.Facets.JTBD,
					"differentiator": fmt.Sprintf("%s with %s", t.IdeaA.Facets.Differentiator, t.IdeaB.Facets.Differentiator),
					"monetization":   t.IdeaA.Facets.Monetization,
					"distribution":   t.IdeaB.Facets.Distribution,
					"risks":          fmt.Sprintf("%s and %s", t.IdeaA.Facets.Risks, t.IdeaB.Facets.Risks),
				},
			},
		}, nil

	case core.MutateTask:
		facets := t.Idea.Facets
		switch t.MutationType {
		case "audience":
			facets.Audience += " (mutated)"
		case "monetization":
			facets.Monetization += " (mutated)"
		case "distribution":
			facets.Distribution += " (mutated)"
		case "differentiator":
			facets.Differentiator += " (mutated)"
		case "jtbd":
			facets.JTBD += " (mutated)"
		}
		return map[string]interface{}{
			"mutation_type": t.MutationType,
			"idea": map[string]interface{}{
				"title":   t.Idea.Title + " (mutated)",
				"summary": t.Idea.Summary,
				"facets": map[string]interface{}{
					"audience":       facets.Audience,
					"jtbd":           facets.JTBD,
					"differentiator": facets.Differentiator,
					"monetization":   facets.Monetization,
					"distribution":   facets.Distribution,
					"risks":          facets.Risks,
				},
			},
		}, nil

	case core.RefineTask:
		return map[string]interface{}{
			"patch": map[string]interface{}{
				"id":      t.IdeaID.String(),
				"title":   t.Title + " (refined)",
				"summary": fmt.Sprintf("%s Improvements based on: %s", t.Summary, t.JudgeNotes),
				"facets": map[string]interface{}{
					"audience":       t.Facets.Audience,
					"jtbd":           t.Facets.JTBD,
					"differentiator": t.Facets.Differentiator,
					"monetization":   t.Facets.Monetization,
					"distribution":   t.Facets.Distribution,
					"risks":          t.Facets.Risks,
				},
				"changes": []interface{}{"Improved based on feedback"},
			},
		}, nil

	default:
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "unsupported task kind"),
			errors.Fields{"kind": task.Kind()})
	}
}
