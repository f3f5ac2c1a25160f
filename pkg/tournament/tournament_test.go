package tournament

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/evoidea-go/pkg/config"
	"github.com/XiaoConstantine/evoidea-go/pkg/idea"
	"github.com/XiaoConstantine/evoidea-go/pkg/storage"
)

func scored(title string, overall float64) idea.Idea {
	i := idea.New(title, "", idea.Facets{}, 0, idea.OriginGenerated)
	i.OverallScore = &overall
	return i
}

func TestEligibleFiltersUnscoredAndArchived(t *testing.T) {
	state := idea.NewState(uuid.New())
	good := scored("good", 8.0)
	unscored := idea.New("unscored", "", idea.Facets{}, 0, idea.OriginGenerated)
	archived := scored("archived", 7.0)
	archived.Status = idea.StatusArchived
	state.Ideas = []idea.Idea{good, unscored, archived}

	eligible, excluded := Eligible(&state)
	require.Len(t, eligible, 1)
	assert.Equal(t, good.ID, eligible[0].ID)
	assert.Equal(t, 1, excluded)
}

func TestUpdateEloZeroSum(t *testing.T) {
	prefs := idea.NewPreferences()
	winner, loser := uuid.New(), uuid.New()

	UpdateElo(prefs, winner, loser)

	w := prefs.EloRatings[winner.String()]
	l := prefs.EloRatings[loser.String()]
	assert.InDelta(t, 1016.0, w, 1e-9, "equal ratings give the winner K/2")
	assert.InDelta(t, 0.0, (w-DefaultElo)+(l-DefaultElo), 1e-9, "update is zero-sum")
}

func TestUpdateEloFavoriteGainsLess(t *testing.T) {
	prefs := idea.NewPreferences()
	favorite, underdog := uuid.New(), uuid.New()
	prefs.EloRatings[favorite.String()] = 1200
	prefs.EloRatings[underdog.String()] = 1000

	UpdateElo(prefs, favorite, underdog)
	favoriteGain := prefs.EloRatings[favorite.String()] - 1200
	assert.Less(t, favoriteGain, 16.0)
	assert.Greater(t, favoriteGain, 0.0)

	prefs2 := idea.NewPreferences()
	prefs2.EloRatings[favorite.String()] = 1200
	prefs2.EloRatings[underdog.String()] = 1000
	UpdateElo(prefs2, underdog, favorite)
	underdogGain := prefs2.EloRatings[underdog.String()] - 1000
	assert.Greater(t, underdogGain, 16.0, "an upset moves more points")
}

func TestSelectNextPairPicksClosestElo(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	prefs := idea.NewPreferences()
	prefs.EloRatings[a.String()] = 1000
	prefs.EloRatings[b.String()] = 1300
	prefs.EloRatings[c.String()] = 1010

	idA, idB, found := SelectNextPair([]uuid.UUID{a, b, c}, prefs, map[pairKey]struct{}{})
	require.True(t, found)
	assert.ElementsMatch(t, []uuid.UUID{a, c}, []uuid.UUID{idA, idB})
}

func TestSelectNextPairSkipsCompared(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	prefs := idea.NewPreferences()
	prefs.EloRatings[a.String()] = 1000
	prefs.EloRatings[b.String()] = 1300
	prefs.EloRatings[c.String()] = 1010

	compared := map[pairKey]struct{}{keyOf(a, c): {}}
	idA, idB, found := SelectNextPair([]uuid.UUID{a, b, c}, prefs, compared)
	require.True(t, found)
	assert.ElementsMatch(t, []uuid.UUID{b, c}, []uuid.UUID{idA, idB})
}

func TestSelectNextPairExhausted(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	prefs := idea.NewPreferences()
	compared := map[pairKey]struct{}{keyOf(a, b): {}}

	_, _, found := SelectNextPair([]uuid.UUID{a, b}, prefs, compared)
	assert.False(t, found)
}

func TestPairwiseLimit(t *testing.T) {
	assert.Equal(t, 8, PairwiseLimit(4))
	assert.Equal(t, 20, PairwiseLimit(10))
}

func setupRun(t *testing.T, ideas []idea.Idea) (storage.Storage, uuid.UUID) {
	t.Helper()
	store := storage.NewFileStorage(t.TempDir())
	runID := uuid.New()
	cfg := config.Default("p")
	require.NoError(t, store.InitRun(runID, &cfg))

	state := idea.NewState(runID)
	state.Ideas = ideas
	require.NoError(t, store.SaveState(&state))
	return store, runID
}

func TestRunnerAutoMode(t *testing.T) {
	store, runID := setupRun(t, []idea.Idea{scored("low", 5.0), scored("high", 9.0)})

	var out bytes.Buffer
	r := &Runner{Store: store, In: strings.NewReader(""), Out: &out}
	require.NoError(t, r.Run(runID, ModeAuto))

	text := out.String()
	assert.Contains(t, text, "1. [9.00] high")
	assert.Contains(t, text, "2. [5.00] low")

	prefs, err := store.LoadPreferences(runID)
	require.NoError(t, err)
	assert.Empty(t, prefs.Comparisons, "auto mode records nothing")
}

func TestRunnerRequiresTwoEligible(t *testing.T) {
	store, runID := setupRun(t, []idea.Idea{scored("only", 8.0)})

	r := &Runner{Store: store, In: strings.NewReader(""), Out: &bytes.Buffer{}}
	err := r.Run(runID, ModeAuto)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 2 scored active ideas")
}

func TestRunnerExhaustiveRecordsAndPersists(t *testing.T) {
	ideas := []idea.Idea{scored("a", 8.0), scored("b", 7.0), scored("c", 6.0)}
	store, runID := setupRun(t, ideas)

	// Three pairs: (a,b), (a,c), (b,c). Choose A, then B, then quit.
	var out bytes.Buffer
	r := &Runner{Store: store, In: strings.NewReader("A\nB\nQ\n"), Out: &out}
	require.NoError(t, r.Run(runID, ModeExhaustive))

	prefs, err := store.LoadPreferences(runID)
	require.NoError(t, err)
	require.Len(t, prefs.Comparisons, 2)
	assert.Equal(t, ideas[0].ID, prefs.Comparisons[0].Winner)
	assert.Equal(t, ideas[2].ID, prefs.Comparisons[1].Winner, "second answer B picks idea c in pair (a,c)")
	assert.Greater(t, prefs.EloRatings[ideas[0].ID.String()], DefaultElo)
}

func TestRunnerExhaustiveSkipsComparedPairs(t *testing.T) {
	ideas := []idea.Idea{scored("a", 8.0), scored("b", 7.0)}
	store, runID := setupRun(t, ideas)

	prefs, err := store.LoadPreferences(runID)
	require.NoError(t, err)
	prefs.Comparisons = append(prefs.Comparisons, idea.Comparison{
		IdeaA: ideas[1].ID, IdeaB: ideas[0].ID, Winner: ideas[1].ID,
	})
	require.NoError(t, store.SavePreferences(runID, prefs))

	var out bytes.Buffer
	r := &Runner{Store: store, In: strings.NewReader("A\n"), Out: &out}
	require.NoError(t, r.Run(runID, ModeExhaustive))

	reloaded, err := store.LoadPreferences(runID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Comparisons, 1, "a pair compared in either order is never re-asked")
}

func TestRunnerPairwiseRespectsCapAndUpdatesElo(t *testing.T) {
	ideas := []idea.Idea{scored("a", 8.0), scored("b", 7.0), scored("c", 6.0)}
	store, runID := setupRun(t, ideas)

	// All pairs at default Elo; always answer A. Only 3 pairs exist, so
	// the session ends before the 2n=6 cap.
	var out bytes.Buffer
	r := &Runner{Store: store, In: strings.NewReader("A\nA\nA\n"), Out: &out}
	require.NoError(t, r.Run(runID, ModePairwise))

	prefs, err := store.LoadPreferences(runID)
	require.NoError(t, err)
	assert.Len(t, prefs.Comparisons, 3)
	assert.Contains(t, out.String(), "All pairs compared!")

	var sum float64
	for _, rating := range prefs.EloRatings {
		sum += rating - DefaultElo
	}
	assert.InDelta(t, 0.0, sum, 1e-9, "total Elo is conserved across the session")
}

func TestRunnerPairwiseSkipIsSessionLocal(t *testing.T) {
	ideas := []idea.Idea{scored("a", 8.0), scored("b", 7.0)}
	store, runID := setupRun(t, ideas)

	var out bytes.Buffer
	r := &Runner{Store: store, In: strings.NewReader("S\n"), Out: &out}
	require.NoError(t, r.Run(runID, ModePairwise))

	prefs, err := store.LoadPreferences(runID)
	require.NoError(t, err)
	assert.Empty(t, prefs.Comparisons, "skips are not persisted")
}
