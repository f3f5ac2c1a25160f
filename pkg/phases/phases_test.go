package phases

import (
	"context"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/evoidea-go/pkg/config"
	"github.com/XiaoConstantine/evoidea-go/pkg/idea"
	"github.com/XiaoConstantine/evoidea-go/pkg/llms"
	"github.com/XiaoConstantine/evoidea-go/pkg/storage"
)

func newTestContext(t *testing.T, cfg config.RunConfig) (*Context, uuid.UUID) {
	t.Helper()
	store := storage.NewFileStorage(t.TempDir())
	runID := uuid.New()
	require.NoError(t, store.InitRun(runID, &cfg))
	return &Context{
		Config:  &cfg,
		Storage: store,
		LLM:     llms.NewMockProvider(),
		Rng:     rand.New(rand.NewSource(1)),
	}, runID
}

func TestGenerateFillsDeficit(t *testing.T) {
	cfg := config.Default("test prompt")
	cfg.PopulationSize = 5
	pc, runID := newTestContext(t, cfg)

	state, err := Generate{}.Run(context.Background(), idea.NewState(runID), pc)
	require.NoError(t, err)
	assert.Len(t, state.Ideas, 5)
	for _, i := range state.Ideas {
		assert.Equal(t, idea.OriginGenerated, i.Origin)
		assert.Equal(t, idea.StatusActive, i.Status)
		assert.Nil(t, i.OverallScore)
	}

	events, err := pc.Storage.LoadEvents(runID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, idea.EventGenerated, events[0].Type)
}

func TestGenerateNoOpWhenFull(t *testing.T) {
	cfg := config.Default("p")
	cfg.PopulationSize = 2
	pc, runID := newTestContext(t, cfg)

	state := idea.NewState(runID)
	state.Ideas = []idea.Idea{
		idea.New("a", "", idea.Facets{}, 0, idea.OriginGenerated),
		idea.New("b", "", idea.Facets{}, 0, idea.OriginGenerated),
	}

	state, err := Generate{}.Run(context.Background(), state, pc)
	require.NoError(t, err)
	assert.Len(t, state.Ideas, 2)

	events, err := pc.Storage.LoadEvents(runID)
	require.NoError(t, err)
	assert.Empty(t, events, "a no-op generate emits no event")
}

func TestCriticScoresUnscoredAndRecomputesAll(t *testing.T) {
	cfg := config.Default("p")
	pc, runID := newTestContext(t, cfg)

	state := idea.NewState(runID)
	state.Ideas = []idea.Idea{
		idea.New("a", "", idea.Facets{}, 0, idea.OriginGenerated),
		idea.New("b", "", idea.Facets{}, 0, idea.OriginGenerated),
	}

	state, err := Critic{}.Run(context.Background(), state, pc)
	require.NoError(t, err)

	for _, i := range state.Ideas {
		require.NotNil(t, i.OverallScore, "every active idea leaves critic scored")
		require.NotNil(t, i.JudgeNotes)
		assert.Positive(t, i.Scores.Feasibility)
	}
	// The engine recomputes overalls with risk inversion, so the stored
	// value differs from the mock judge's own overall.
	assert.NotEqual(t, 7.0, *state.Ideas[0].OverallScore)
}

func TestCriticNoOpWhenAllScored(t *testing.T) {
	cfg := config.Default("p")
	pc, runID := newTestContext(t, cfg)

	state := idea.NewState(runID)
	i := idea.New("a", "", idea.Facets{}, 0, idea.OriginGenerated)
	score := 6.0
	i.OverallScore = &score
	state.Ideas = []idea.Idea{i}

	state, err := Critic{}.Run(context.Background(), state, pc)
	require.NoError(t, err)
	assert.Equal(t, 6.0, *state.Ideas[0].OverallScore)

	events, err := pc.Storage.LoadEvents(runID)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func scored(title string, overall float64) idea.Idea {
	i := idea.New(title, "", idea.Facets{}, 0, idea.OriginGenerated)
	i.OverallScore = &overall
	return i
}

func TestSelectArchivesAndTracksBest(t *testing.T) {
	cfg := config.Default("p")
	cfg.PopulationSize = 3
	cfg.EliteCount = 2
	pc, runID := newTestContext(t, cfg)

	state := idea.NewState(runID)
	state.Ideas = []idea.Idea{
		scored("best", 9.0),
		scored("second", 8.0),
		scored("third", 7.0),
		scored("fourth", 6.0),
		scored("fifth", 5.0),
	}

	state, err := Select{}.Run(context.Background(), state, pc)
	require.NoError(t, err)

	require.NotNil(t, state.BestIdeaID)
	assert.Equal(t, state.Ideas[0].ID, *state.BestIdeaID)
	assert.Equal(t, 9.0, *state.BestScore)
	assert.Equal(t, 0, state.StagnationCounter, "first recorded best resets stagnation")

	active := state.ActiveIdeas()
	assert.LessOrEqual(t, len(active), 3)
	assert.Equal(t, "best", active[0].Title)
	assert.Equal(t, "second", active[1].Title)
}

func TestSelectStagnationIncrementsWithoutImprovement(t *testing.T) {
	cfg := config.Default("p")
	cfg.PopulationSize = 2
	cfg.EliteCount = 2
	pc, runID := newTestContext(t, cfg)

	state := idea.NewState(runID)
	state.Ideas = []idea.Idea{scored("a", 7.0), scored("b", 6.0)}
	prev := 7.0
	prevID := state.Ideas[0].ID
	state.BestScore = &prev
	state.BestIdeaID = &prevID
	state.StagnationCounter = 1

	state, err := Select{}.Run(context.Background(), state, pc)
	require.NoError(t, err)
	assert.Equal(t, 2, state.StagnationCounter, "equal best increments stagnation")
}

func TestRefineCreatesChildren(t *testing.T) {
	cfg := config.Default("p")
	pc, runID := newTestContext(t, cfg)

	state := idea.NewState(runID)
	state.Iteration = 2
	notes := "tighten the monetization story"
	a := scored("strong", 8.0)
	a.JudgeNotes = &notes
	b := scored("weak", 5.0)
	b.JudgeNotes = &notes
	c := scored("unjudged", 9.0)
	state.Ideas = []idea.Idea{a, b, c}

	state, err := Refine{TopK: 1}.Run(context.Background(), state, pc)
	require.NoError(t, err)
	require.Len(t, state.Ideas, 4)

	child := state.Ideas[3]
	assert.Equal(t, idea.OriginRefined, child.Origin)
	assert.Equal(t, []uuid.UUID{a.ID}, child.Parents)
	assert.Equal(t, 2, child.Gen)
	assert.Equal(t, "strong (refined)", child.Title)
	assert.Nil(t, child.OverallScore, "children are scored next round")
}

func TestRefineNoCandidates(t *testing.T) {
	cfg := config.Default("p")
	pc, runID := newTestContext(t, cfg)

	state := idea.NewState(runID)
	state.Ideas = []idea.Idea{scored("no notes", 8.0)}

	state, err := Refine{TopK: 2}.Run(context.Background(), state, pc)
	require.NoError(t, err)
	assert.Len(t, state.Ideas, 1)
}

func TestFinalRanksAndPersists(t *testing.T) {
	cfg := config.Default("p")
	pc, runID := newTestContext(t, cfg)

	state := idea.NewState(runID)
	state.Ideas = []idea.Idea{
		scored("third", 6.0),
		scored("winner", 9.0),
		scored("second", 8.0),
		scored("fourth", 5.0),
		scored("fifth", 4.0),
		scored("sixth", 3.0),
		scored("seventh", 2.0),
	}
	state.Ideas[0].Scores.Feasibility = 6.5
	state.Ideas[1].Scores.Feasibility = 8.5
	state.Ideas[1].Scores.Risk = 2.0

	_, err := Final{}.Run(context.Background(), state, pc)
	require.NoError(t, err)

	result, err := pc.Storage.LoadFinal(runID)
	require.NoError(t, err)
	assert.Equal(t, "winner", result.Best.Title)
	assert.Equal(t, 9.0, result.Best.OverallScore)
	require.Len(t, result.Best.WhyWon, 3)
	assert.Equal(t, "Highest overall score: 9.00", result.Best.WhyWon[0])
	assert.Equal(t, "Feasibility: 8.5", result.Best.WhyWon[1])
	assert.Equal(t, "Low risk: 2.0", result.Best.WhyWon[2])

	require.Len(t, result.RunnersUp, 4, "runners up are capped at four")
	assert.Equal(t, "second", result.RunnersUp[0].Title)
	assert.Equal(t, "third", result.RunnersUp[1].Title)
}

func TestFinalFailsWithoutScoredIdeas(t *testing.T) {
	cfg := config.Default("p")
	pc, runID := newTestContext(t, cfg)

	state := idea.NewState(runID)
	unscored := idea.New("unscored", "", idea.Facets{}, 0, idea.OriginGenerated)
	state.Ideas = []idea.Idea{unscored}

	_, err := Final{}.Run(context.Background(), state, pc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no active scored ideas")
}
