package idea

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIdea(t *testing.T) {
	i := New("AI changelog writer", "Turns diffs into release notes", Facets{
		Audience: "devtools teams",
		JTBD:     "communicate changes without manual writing",
	}, 0, OriginGenerated)

	assert.NotEqual(t, uuid.Nil, i.ID)
	assert.Equal(t, 0, i.Gen)
	assert.Equal(t, OriginGenerated, i.Origin)
	assert.Empty(t, i.Parents)
	assert.Equal(t, StatusActive, i.Status)
	assert.Nil(t, i.OverallScore)
	assert.Nil(t, i.JudgeNotes)
}

func TestWithParents(t *testing.T) {
	parent := New("parent", "", Facets{}, 0, OriginGenerated)
	child := New("child", "", Facets{}, 1, OriginRefined).WithParents(parent.ID)

	require.Len(t, child.Parents, 1)
	assert.Equal(t, parent.ID, child.Parents[0])
}

func TestScoresVectorOrder(t *testing.T) {
	s := Scores{
		Feasibility:     1,
		SpeedToValue:    2,
		Differentiation: 3,
		MarketSize:      4,
		Distribution:    5,
		Moats:           6,
		Risk:            7,
		Clarity:         8,
	}
	v := s.Vector()
	for idx := 0; idx < NumCriteria; idx++ {
		assert.Equal(t, float64(idx+1), v[idx], "criterion %s", CriterionNames[idx])
	}
}

func TestIdeaJSONRoundTrip(t *testing.T) {
	score := 8.25
	notes := "strong distribution story"
	i := New("title", "summary", Facets{Audience: "smb"}, 2, OriginRefined)
	i = i.WithParents(uuid.New())
	i.OverallScore = &score
	i.JudgeNotes = &notes

	data, err := json.Marshal(i)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"overall_score":8.25`)
	assert.Contains(t, string(data), `"speed_to_value"`)

	var back Idea
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, i, back)
}

func TestActiveIdeas(t *testing.T) {
	s := NewState(uuid.New())
	a := New("a", "", Facets{}, 0, OriginGenerated)
	b := New("b", "", Facets{}, 0, OriginGenerated)
	b.Status = StatusArchived
	s.Ideas = []Idea{a, b}

	active := s.ActiveIdeas()
	require.Len(t, active, 1)
	assert.Equal(t, a.ID, active[0].ID)
}

func TestFindIdeaReturnsMutablePointer(t *testing.T) {
	s := NewState(uuid.New())
	a := New("a", "", Facets{}, 0, OriginGenerated)
	s.Ideas = []Idea{a}

	ptr := s.FindIdea(a.ID)
	require.NotNil(t, ptr)
	ptr.Title = "renamed"
	assert.Equal(t, "renamed", s.Ideas[0].Title)

	assert.Nil(t, s.FindIdea(uuid.New()))
}

func TestNewEventMarshalsPayload(t *testing.T) {
	e := NewEvent(3, EventSelected, map[string]any{"kept": 4})
	assert.Equal(t, 3, e.Iteration)
	assert.Equal(t, EventSelected, e.Type)
	assert.JSONEq(t, `{"kept":4}`, string(e.Payload))
	assert.False(t, e.TS.IsZero())
}

func TestValidateStateClean(t *testing.T) {
	s := NewState(uuid.New())
	s.Iteration = 1
	parent := New("p", "", Facets{}, 0, OriginGenerated)
	parentScore := 6.0
	parent.OverallScore = &parentScore
	child := New("c", "", Facets{}, 1, OriginRefined).WithParents(parent.ID)
	score := 7.5
	child.OverallScore = &score
	s.Ideas = []Idea{parent, child}
	s.BestIdeaID = &child.ID
	s.BestScore = &score

	assert.Empty(t, ValidateState(&s))
}

func TestValidateStateViolations(t *testing.T) {
	s := NewState(uuid.New())
	s.Iteration = 0
	s.StagnationCounter = -1

	orphan := New("orphan", "", Facets{}, 0, OriginRefined).WithParents(uuid.New())
	wrongCard := New("bare", "", Facets{}, 0, OriginCrossover)
	future := New("future", "", Facets{}, 5, OriginGenerated)
	s.Ideas = []Idea{orphan, wrongCard, future}

	missing := uuid.New()
	s.BestIdeaID = &missing

	problems := ValidateState(&s)
	assert.Len(t, problems, 6)
	joined := ""
	for _, p := range problems {
		joined += p + "\n"
	}
	assert.Contains(t, joined, "references missing parent")
	assert.Contains(t, joined, "expected 2")
	assert.Contains(t, joined, "gen 5 beyond iteration 0")
	assert.Contains(t, joined, "not present in population")
	assert.Contains(t, joined, "best_score is not")
	assert.Contains(t, joined, "stagnation_counter is negative")
}

func TestValidateStateUnscoredActive(t *testing.T) {
	s := NewState(uuid.New())
	s.Iteration = 2

	stale := New("stale", "", Facets{}, 0, OriginGenerated)
	fresh := New("fresh", "", Facets{}, 2, OriginGenerated)
	s.Ideas = []Idea{stale, fresh}

	problems := ValidateState(&s)
	require.Len(t, problems, 1, "only the idea from an earlier round is overdue for scoring")
	assert.Contains(t, problems[0], "no overall_score")
}
