// Package core defines the contract between the phase pipeline and the
// LLM collaborator: the structured task descriptors, the provider
// interface, and the parsers that turn provider JSON back into ideas.
package core

import (
	"context"

	"github.com/google/uuid"

	"github.com/XiaoConstantine/evoidea-go/pkg/idea"
)

// Task is a structured request to the LLM collaborator. Each task kind
// has a fixed response schema the parsers in this package understand.
type Task interface {
	Kind() string
}

// GenerateTask asks for Count fresh ideas for the given prompt.
// Response schema: {"ideas": [{"title", "summary", "facets"}]}.
type GenerateTask struct {
	Prompt string
	Count  int
}

func (GenerateTask) Kind() string { return "generate" }

// CriticItem is the compact view of an idea a critic scores.
type CriticItem struct {
	ID      uuid.UUID
	Title   string
	Summary string
}

// CriticTask asks for per-idea score patches.
// Response schema: {"patches": [{"id", "scores", "overall_score", "judge_notes"}]}.
type CriticTask struct {
	Ideas []CriticItem
}

func (CriticTask) Kind() string { return "critic" }

// IdeaSeed is the title/summary/facets triple a transformation task
// operates on.
type IdeaSeed struct {
	Title   string
	Summary string
	Facets  idea.Facets
}

// MergeTask asks for a crossover of two ideas. Not yet wired into the
// round pipeline.
// Response schema: {"idea": {"title", "summary", "facets"}}.
type MergeTask struct {
	IdeaA IdeaSeed
	IdeaB IdeaSeed
}

func (MergeTask) Kind() string { return "merge" }

// MutateTask asks for a single-facet variation of an idea. Not yet wired
// into the round pipeline.
// Response schema: {"mutation_type", "idea": {...}}.
type MutateTask struct {
	Idea         IdeaSeed
	MutationType string
}

func (MutateTask) Kind() string { return "mutate" }

// RefineTask asks for an improved version of an idea, guided by the
// judge notes the critic attached.
// Response schema: {"patch": {"id", "title", "summary", "facets", "changes"}}.
type RefineTask struct {
	IdeaID     uuid.UUID
	Title      string
	Summary    string
	Facets     idea.Facets
	JudgeNotes string
}

func (RefineTask) Kind() string { return "refine" }

// Provider generates structured JSON for a task. Implementations must be
// safe for sequential reuse across phases of a run.
type Provider interface {
	// GenerateJSON executes the task and returns the decoded JSON object.
	GenerateJSON(ctx context.Context, task Task) (map[string]interface{}, error)
	// Name identifies the provider in logs.
	Name() string
}
