// Package idea defines the data model shared by every stage of an
// evolution run: the idea records themselves, the population state the
// orchestrator threads through the phase pipeline, the audit events
// appended after each phase, and the final ranked result.
package idea

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Origin describes how an idea came into existence.
type Origin string

const (
	OriginGenerated Origin = "generated"
	OriginCrossover Origin = "crossover"
	OriginMutated   Origin = "mutated"
	OriginRefined   Origin = "refined"
)

// Status tracks whether an idea is still competing.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Facets holds the six qualitative dimensions describing an idea.
type Facets struct {
	Audience       string `json:"audience"`
	JTBD           string `json:"jtbd"`
	Differentiator string `json:"differentiator"`
	Monetization   string `json:"monetization"`
	Distribution   string `json:"distribution"`
	Risks          string `json:"risks"`
}

// Scores is the fixed eight-criterion scoring vector. Each criterion is
// conventionally 0-10. Risk is the one inverted criterion: a lower raw
// value means a safer idea.
type Scores struct {
	Feasibility     float64 `json:"feasibility"`
	SpeedToValue    float64 `json:"speed_to_value"`
	Differentiation float64 `json:"differentiation"`
	MarketSize      float64 `json:"market_size"`
	Distribution    float64 `json:"distribution"`
	Moats           float64 `json:"moats"`
	Risk            float64 `json:"risk"`
	Clarity         float64 `json:"clarity"`
}

// NumCriteria is the size of the scoring vector.
const NumCriteria = 8

// CriterionNames lists the criteria in vector order.
var CriterionNames = [NumCriteria]string{
	"feasibility",
	"speed_to_value",
	"differentiation",
	"market_size",
	"distribution",
	"moats",
	"risk",
	"clarity",
}

// Vector returns the scores in CriterionNames order.
func (s Scores) Vector() [NumCriteria]float64 {
	return [NumCriteria]float64{
		s.Feasibility,
		s.SpeedToValue,
		s.Differentiation,
		s.MarketSize,
		s.Distribution,
		s.Moats,
		s.Risk,
		s.Clarity,
	}
}

// Idea is a single candidate in the population. Ideas are never deleted,
// only transitioned Active -> Archived by the select phase.
type Idea struct {
	ID           uuid.UUID   `json:"id"`
	Gen          int         `json:"gen"`
	Origin       Origin      `json:"origin"`
	Parents      []uuid.UUID `json:"parents"`
	Title        string      `json:"title"`
	Summary      string      `json:"summary"`
	Facets       Facets      `json:"facets"`
	Scores       Scores      `json:"scores"`
	OverallScore *float64    `json:"overall_score"`
	JudgeNotes   *string     `json:"judge_notes"`
	Status       Status      `json:"status"`
}

// New creates a fresh Active idea with no parents and zero scores.
func New(title, summary string, facets Facets, gen int, origin Origin) Idea {
	return Idea{
		ID:      uuid.New(),
		Gen:     gen,
		Origin:  origin,
		Parents: nil,
		Title:   title,
		Summary: summary,
		Facets:  facets,
		Status:  StatusActive,
	}
}

// WithParents attaches parent identifiers, used for refined, crossover
// and mutated ideas.
func (i Idea) WithParents(parents ...uuid.UUID) Idea {
	i.Parents = parents
	return i
}

// State is the full population state of a run. Owned exclusively by the
// orchestrator while the run executes; persisted as a snapshot after
// every phase.
type State struct {
	RunID             uuid.UUID  `json:"run_id"`
	Iteration         int        `json:"iteration"`
	Ideas             []Idea     `json:"ideas"`
	BestIdeaID        *uuid.UUID `json:"best_idea_id"`
	BestScore         *float64   `json:"best_score"`
	StagnationCounter int        `json:"stagnation_counter"`
}

// NewState creates an empty state for a run.
func NewState(runID uuid.UUID) State {
	return State{RunID: runID}
}

// ActiveIdeas returns the Active subset of the population, in creation order.
func (s *State) ActiveIdeas() []Idea {
	active := make([]Idea, 0, len(s.Ideas))
	for _, i := range s.Ideas {
		if i.Status == StatusActive {
			active = append(active, i)
		}
	}
	return active
}

// FindIdea returns a pointer into the state's idea list, or nil.
func (s *State) FindIdea(id uuid.UUID) *Idea {
	for idx := range s.Ideas {
		if s.Ideas[idx].ID == id {
			return &s.Ideas[idx]
		}
	}
	return nil
}

// EventType identifies the audit event a phase emits.
type EventType string

const (
	EventGenerated EventType = "generated"
	EventScored    EventType = "scored"
	EventSelected  EventType = "selected"
	EventCrossover EventType = "crossover"
	EventMutated   EventType = "mutated"
	EventRefined   EventType = "refined"
	EventStopped   EventType = "stopped"
)

// Event is an append-only audit record of one pipeline step.
type Event struct {
	TS        time.Time       `json:"ts"`
	Iteration int             `json:"iteration"`
	Type      EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload"`
}

// NewEvent builds an event with the payload marshaled from v.
func NewEvent(iteration int, eventType EventType, v any) Event {
	payload, err := json.Marshal(v)
	if err != nil {
		// Payloads are built from maps of plain values; marshal failure
		// indicates a programming error.
		panic(err)
	}
	return Event{
		TS:        time.Now().UTC(),
		Iteration: iteration,
		Type:      eventType,
		Payload:   payload,
	}
}

// RunnerUp is the compact record kept for non-winning finalists.
type RunnerUp struct {
	IdeaID       uuid.UUID `json:"idea_id"`
	Title        string    `json:"title"`
	OverallScore float64   `json:"overall_score"`
}

// FinalBest is the winning idea with its justification strings.
type FinalBest struct {
	IdeaID       uuid.UUID `json:"idea_id"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary"`
	Facets       Facets    `json:"facets"`
	Scores       Scores    `json:"scores"`
	OverallScore float64   `json:"overall_score"`
	WhyWon       []string  `json:"why_won"`
}

// FinalResult is what a completed run produces.
type FinalResult struct {
	RunID     uuid.UUID  `json:"run_id"`
	Best      FinalBest  `json:"best"`
	RunnersUp []RunnerUp `json:"runners_up"`
}

// Comparison is one recorded pairwise preference.
type Comparison struct {
	IdeaA  uuid.UUID `json:"idea_a"`
	IdeaB  uuid.UUID `json:"idea_b"`
	Winner uuid.UUID `json:"winner"`
}

// Preferences accumulates tournament outcomes for a run: the append-only
// comparison log and the current Elo rating per idea.
type Preferences struct {
	Comparisons []Comparison       `json:"comparisons"`
	EloRatings  map[string]float64 `json:"elo_ratings"`
}

// NewPreferences returns an empty preference store.
func NewPreferences() *Preferences {
	return &Preferences{
		Comparisons: []Comparison{},
		EloRatings:  map[string]float64{},
	}
}
