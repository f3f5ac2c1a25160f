package report

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/evoidea-go/internal/testutil"
	"github.com/XiaoConstantine/evoidea-go/pkg/config"
	"github.com/XiaoConstantine/evoidea-go/pkg/idea"
	"github.com/XiaoConstantine/evoidea-go/pkg/storage"
)

func scored(title string, score float64) idea.Idea {
	return testutil.ScoredIdea(title, score)
}

// completedRun seeds a run with a state, a final result and a stopped
// event, returning its id.
func completedRun(t *testing.T, store storage.Storage) uuid.UUID {
	t.Helper()

	runID := uuid.New()
	cfg := config.Default("a developer tools idea")
	require.NoError(t, store.InitRun(runID, &cfg))

	winner := scored("Winner: the best one", 9.0)
	second := scored("Second", 7.0)

	state := testutil.StateWith(runID, winner, second)
	state.Iteration = 3
	require.NoError(t, store.SaveState(&state))

	require.NoError(t, store.AppendEvent(runID, idea.NewEvent(3, idea.EventStopped, map[string]any{
		"reason": "threshold", "best_score": 9.0,
	})))

	final := idea.FinalResult{
		RunID: runID,
		Best: idea.FinalBest{
			IdeaID:       winner.ID,
			Title:        winner.Title,
			Summary:      winner.Summary,
			Facets:       winner.Facets,
			Scores:       winner.Scores,
			OverallScore: 9.0,
			WhyWon: []string{
				"Highest overall score: 9.00",
				"Feasibility: 9.0",
				"Low risk: 1.0",
			},
		},
		RunnersUp: []idea.RunnerUp{{IdeaID: second.ID, Title: second.Title, OverallScore: 7.0}},
	}
	require.NoError(t, store.SaveFinal(&final))
	return runID
}

func TestListRunsReportsStatusAndScore(t *testing.T) {
	store := storage.NewFileStorage(t.TempDir())
	completeID := completedRun(t, store)

	inProgressID := uuid.New()
	cfg := config.Default("p")
	require.NoError(t, store.InitRun(inProgressID, &cfg))

	infos, err := ListRuns(store)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	byID := map[uuid.UUID]RunInfo{}
	for _, info := range infos {
		byID[info.ID] = info
	}

	complete := byID[completeID]
	assert.Equal(t, StatusComplete, complete.Status)
	require.NotNil(t, complete.BestScore)
	assert.Equal(t, 9.0, *complete.BestScore)

	assert.Equal(t, StatusInProgress, byID[inProgressID].Status)
	assert.Nil(t, byID[inProgressID].BestScore)

	table := FormatRunList(infos)
	assert.Contains(t, table, "RUN ID")
	assert.Contains(t, table, "9.00")
	assert.Contains(t, table, "in_progress")
}

func TestFormatRunListEmpty(t *testing.T) {
	assert.Equal(t, "No runs found.\n", FormatRunList(nil))
}

func TestShowMarkdown(t *testing.T) {
	store := storage.NewFileStorage(t.TempDir())
	runID := completedRun(t, store)

	out, err := Show(store, runID, "md")
	require.NoError(t, err)
	assert.Contains(t, out, "# Best Idea: Winner: the best one")
	assert.Contains(t, out, "**Score:** 9.00/10")
	assert.Contains(t, out, "Highest overall score: 9.00")
	assert.Contains(t, out, "**Audience:** builders")
	assert.Contains(t, out, "- Second (7.00/10)")
}

func TestShowJSON(t *testing.T) {
	store := storage.NewFileStorage(t.TempDir())
	runID := completedRun(t, store)

	out, err := Show(store, runID, "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"run_id"`)
	assert.Contains(t, out, `"why_won"`)
}

func TestShowInProgress(t *testing.T) {
	store := storage.NewFileStorage(t.TempDir())
	runID := uuid.New()
	cfg := config.Default("p")
	require.NoError(t, store.InitRun(runID, &cfg))

	out, err := Show(store, runID, "md")
	require.NoError(t, err)
	assert.Contains(t, out, "has not completed yet")
	assert.Contains(t, out, "Current iteration: 0")
}

func TestShowUnknownRun(t *testing.T) {
	store := storage.NewFileStorage(t.TempDir())
	_, err := Show(store, uuid.New(), "md")
	assert.Error(t, err)
}

func TestExportPresets(t *testing.T) {
	store := storage.NewFileStorage(t.TempDir())
	runID := completedRun(t, store)

	content, filename, err := Export(store, runID, PresetLanding)
	require.NoError(t, err)
	assert.Equal(t, "landing.md", filename)
	assert.Contains(t, content, "# Winner", "product name stops at the colon")
	assert.Contains(t, content, "## Why Choose Us")
	assert.Contains(t, content, "*Evolution Score: 9.0/10*")

	content, filename, err = Export(store, runID, PresetDecisionLog)
	require.NoError(t, err)
	assert.Equal(t, "decision-log.md", filename)
	assert.Contains(t, content, "**Total evaluated:** 2 ideas over 3 iterations")
	assert.Contains(t, content, "**Runner-up:** Second (7.0/10)")
	assert.Contains(t, content, "**Stop reason:** threshold")

	content, filename, err = Export(store, runID, PresetStakeholderBrief)
	require.NoError(t, err)
	assert.Equal(t, "stakeholder-brief.md", filename)
	assert.Contains(t, content, "**Overall Confidence:** High (9.0/10)")
	assert.Contains(t, content, "| Target Market | builders |")

	content, filename, err = Export(store, runID, PresetChangelogEntry)
	require.NoError(t, err)
	assert.Equal(t, "changelog-entry.md", filename)
	assert.Contains(t, content, "## [Ideation] Winner -")
	assert.Contains(t, content, "- Evolution iterations: 3")
}

func TestExportUnknownPreset(t *testing.T) {
	store := storage.NewFileStorage(t.TempDir())
	runID := completedRun(t, store)
	_, _, err := Export(store, runID, "poster")
	assert.Error(t, err)
}

func TestExportRequiresFinal(t *testing.T) {
	store := storage.NewFileStorage(t.TempDir())
	runID := uuid.New()
	cfg := config.Default("p")
	require.NoError(t, store.InitRun(runID, &cfg))

	_, _, err := Export(store, runID, PresetLanding)
	assert.Error(t, err)
}

func TestTreeASCII(t *testing.T) {
	store := storage.NewFileStorage(t.TempDir())
	runID := uuid.New()
	cfg := config.Default("p")
	require.NoError(t, store.InitRun(runID, &cfg))

	root := scored("Root idea", 8.0)
	child := scored("Refined child", 8.5).WithParents(root.ID)
	child.Origin = idea.OriginRefined
	archived := scored("Archived sibling", 4.0)
	archived.Status = idea.StatusArchived

	state := idea.NewState(runID)
	state.Ideas = []idea.Idea{root, child, archived}
	require.NoError(t, store.SaveState(&state))

	out, err := Tree(store, runID, "ascii")
	require.NoError(t, err)
	assert.Contains(t, out, "=== Evolution Tree:")
	assert.Contains(t, out, "└── * [8.5]")
	assert.Contains(t, out, "~ [4.0]")
	assert.Contains(t, out, "Legend:")
}

func TestTreeCrossoverAppearsUnderBothParents(t *testing.T) {
	store := storage.NewFileStorage(t.TempDir())
	runID := uuid.New()
	cfg := config.Default("p")
	require.NoError(t, store.InitRun(runID, &cfg))

	a := scored("Parent A", 8.0)
	b := scored("Parent B", 7.0)
	cross := scored("Crossover child", 8.2).WithParents(a.ID, b.ID)
	cross.Origin = idea.OriginCrossover

	state := idea.NewState(runID)
	state.Ideas = []idea.Idea{a, b, cross}
	require.NoError(t, store.SaveState(&state))

	out, err := Tree(store, runID, "ascii")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "Crossover child"))

	mermaid, err := Tree(store, runID, "mermaid")
	require.NoError(t, err)
	assert.Contains(t, mermaid, "flowchart TD")
	assert.Contains(t, mermaid, mermaidID(a.ID)+" --> "+mermaidID(cross.ID))
	assert.Contains(t, mermaid, mermaidID(b.ID)+" --> "+mermaidID(cross.ID))
	assert.Contains(t, mermaid, "class "+mermaidID(cross.ID)+" active")
}

func TestTreeEmptyRun(t *testing.T) {
	store := storage.NewFileStorage(t.TempDir())
	runID := uuid.New()
	cfg := config.Default("p")
	require.NoError(t, store.InitRun(runID, &cfg))

	out, err := Tree(store, runID, "ascii")
	require.NoError(t, err)
	assert.Contains(t, out, "No ideas in run")
}

func TestValidateRunClean(t *testing.T) {
	store := storage.NewFileStorage(t.TempDir())
	runID := completedRun(t, store)

	v, err := ValidateRun(store, runID)
	require.NoError(t, err)
	assert.True(t, v.OK())

	out := v.Format()
	assert.Contains(t, out, "Config: OK")
	assert.Contains(t, out, "State: OK (iteration: 3, ideas: 2)")
	assert.Contains(t, out, "History: OK (1 events)")
	assert.Contains(t, out, "Final: OK (best: Winner: the best one)")
	assert.Contains(t, out, "Invariants: OK")
}

func TestValidateRunFlagsViolations(t *testing.T) {
	store := storage.NewFileStorage(t.TempDir())
	runID := uuid.New()
	cfg := config.Default("p")
	require.NoError(t, store.InitRun(runID, &cfg))

	// A generated idea must not carry parents.
	broken := scored("Broken", 5.0).WithParents(uuid.New())
	state := idea.NewState(runID)
	state.Ideas = []idea.Idea{broken}
	require.NoError(t, store.SaveState(&state))

	v, err := ValidateRun(store, runID)
	require.NoError(t, err)
	assert.False(t, v.OK())
	assert.Contains(t, v.Format(), "Final: NOT YET (run in progress)")
}

func TestValidateRunMissing(t *testing.T) {
	store := storage.NewFileStorage(t.TempDir())
	_, err := ValidateRun(store, uuid.New())
	assert.Error(t, err)
}

func TestProfileSummary(t *testing.T) {
	store := storage.NewFileStorage(t.TempDir())
	runID := uuid.New()
	cfg := config.Default("p")
	require.NoError(t, store.InitRun(runID, &cfg))

	a := scored("Alpha", 8.0)
	b := scored("Beta", 7.0)
	state := idea.NewState(runID)
	state.Ideas = []idea.Idea{a, b}
	require.NoError(t, store.SaveState(&state))

	prefs := idea.NewPreferences()
	prefs.Comparisons = append(prefs.Comparisons, idea.Comparison{IdeaA: a.ID, IdeaB: b.ID, Winner: a.ID})
	prefs.EloRatings[a.ID.String()] = 1016
	prefs.EloRatings[b.ID.String()] = 984
	require.NoError(t, store.SavePreferences(runID, prefs))

	out, err := ProfileSummary(store, runID, &state)
	require.NoError(t, err)
	assert.Contains(t, out, "Comparisons: 1")
	assert.Contains(t, out, "Ideas rated: 2")
	assert.Contains(t, out, "1. [1016] Alpha")
	assert.Contains(t, out, "2. [984] Beta")
}

func TestProfileSummaryEmpty(t *testing.T) {
	store := storage.NewFileStorage(t.TempDir())
	runID := uuid.New()
	cfg := config.Default("p")
	require.NoError(t, store.InitRun(runID, &cfg))

	out, err := ProfileSummary(store, runID, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "No ideas rated yet")
}
