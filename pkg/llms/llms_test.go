package llms

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/evoidea-go/pkg/core"
	"github.com/XiaoConstantine/evoidea-go/pkg/idea"
)

func TestMockProviderGenerate(t *testing.T) {
	provider := NewMockProvider()
	ctx := context.Background()

	result, err := provider.GenerateJSON(ctx, core.GenerateTask{Prompt: "Test", Count: 3})
	require.NoError(t, err)

	ideas, ok := result["ideas"].([]interface{})
	require.True(t, ok)
	require.Len(t, ideas, 3)
	first := ideas[0].(map[string]interface{})
	assert.Contains(t, first, "title")
	assert.Contains(t, first, "facets")
}

func TestMockProviderGenerationCounterAdvances(t *testing.T) {
	provider := NewMockProvider()
	ctx := context.Background()

	r1, err := provider.GenerateJSON(ctx, core.GenerateTask{Prompt: "p", Count: 1})
	require.NoError(t, err)
	r2, err := provider.GenerateJSON(ctx, core.GenerateTask{Prompt: "p", Count: 1})
	require.NoError(t, err)

	t1 := r1["ideas"].([]interface{})[0].(map[string]interface{})["title"]
	t2 := r2["ideas"].([]interface{})[0].(map[string]interface{})["title"]
	assert.Equal(t, "Mock Idea 0 (gen 0)", t1)
	assert.Equal(t, "Mock Idea 0 (gen 1)", t2)
}

func TestMockProviderCritic(t *testing.T) {
	provider := NewMockProvider()
	id1 := uuid.New()
	id2 := uuid.New()

	result, err := provider.GenerateJSON(context.Background(), core.CriticTask{
		Ideas: []core.CriticItem{
			{ID: id1, Title: "Idea 1", Summary: "Summary 1"},
			{ID: id2, Title: "Idea 2", Summary: "Summary 2"},
		},
	})
	require.NoError(t, err)

	patches, ok := result["patches"].([]interface{})
	require.True(t, ok)
	require.Len(t, patches, 2)

	first := patches[0].(map[string]interface{})
	assert.Equal(t, id1.String(), first["id"])
	assert.Contains(t, first, "scores")
	assert.Equal(t, 7.0, first["overall_score"])

	second := patches[1].(map[string]interface{})
	assert.Equal(t, 7.3, second["overall_score"], "scores rise with batch index")
}

func TestMockProviderRefine(t *testing.T) {
	provider := NewMockProvider()
	id := uuid.New()

	result, err := provider.GenerateJSON(context.Background(), core.RefineTask{
		IdeaID:     id,
		Title:      "Base",
		Summary:    "Summary.",
		Facets:     idea.Facets{Audience: "devs"},
		JudgeNotes: "needs moats",
	})
	require.NoError(t, err)

	patch, ok := result["patch"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, id.String(), patch["id"])
	assert.Equal(t, "Base (refined)", patch["title"])
	assert.Contains(t, patch["summary"], "needs moats")
}

func TestMockProviderMutate(t *testing.T) {
	provider := NewMockProvider()

	result, err := provider.GenerateJSON(context.Background(), core.MutateTask{
		Idea:         core.IdeaSeed{Title: "Base", Facets: idea.Facets{Audience: "devs"}},
		MutationType: "audience",
	})
	require.NoError(t, err)

	mutated := result["idea"].(map[string]interface{})
	facets := mutated["facets"].(map[string]interface{})
	assert.Equal(t, "devs (mutated)", facets["audience"])
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider("mock", "")
	require.NoError(t, err)
	assert.Equal(t, "mock", p.Name())

	_, err = NewProvider("openai", "")
	assert.Error(t, err)

	t.Setenv("ANTHROPIC_API_KEY", "")
	_, err = NewProvider("anthropic", "")
	assert.Error(t, err, "anthropic mode requires an API key")
}

func TestBuildPromptDemandsSchema(t *testing.T) {
	p := buildPrompt(core.GenerateTask{Prompt: "dev tools", Count: 4})
	assert.Contains(t, p, "Generate 4 distinct product ideas")
	assert.Contains(t, p, `"ideas"`)

	p = buildPrompt(core.CriticTask{Ideas: []core.CriticItem{{ID: uuid.New(), Title: "T", Summary: "S"}}})
	assert.Contains(t, p, "speed_to_value")
	assert.Contains(t, p, `"patches"`)
}
