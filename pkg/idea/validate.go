package idea

import (
	"fmt"

	"github.com/google/uuid"
)

// parentCardinality maps each origin to the number of parents it requires.
var parentCardinality = map[Origin]int{
	OriginGenerated: 0,
	OriginRefined:   1,
	OriginMutated:   1,
	OriginCrossover: 2,
}

// ValidateState checks the structural invariants of a persisted state and
// returns one message per violation. An empty slice means the state is
// internally consistent.
func ValidateState(s *State) []string {
	var problems []string

	seen := make(map[uuid.UUID]bool, len(s.Ideas))
	for _, i := range s.Ideas {
		if seen[i.ID] {
			problems = append(problems, fmt.Sprintf("duplicate idea id %s", i.ID))
		}
		seen[i.ID] = true
	}

	for _, i := range s.Ideas {
		want, known := parentCardinality[i.Origin]
		if !known {
			problems = append(problems, fmt.Sprintf("idea %s has unknown origin %q", i.ID, i.Origin))
		} else if len(i.Parents) != want {
			problems = append(problems, fmt.Sprintf(
				"idea %s with origin %q has %d parents, expected %d",
				i.ID, i.Origin, len(i.Parents), want))
		}
		for _, p := range i.Parents {
			if !seen[p] {
				problems = append(problems, fmt.Sprintf("idea %s references missing parent %s", i.ID, p))
			}
		}
		if i.Status != StatusActive && i.Status != StatusArchived {
			problems = append(problems, fmt.Sprintf("idea %s has unknown status %q", i.ID, i.Status))
		}
		// Active ideas from earlier rounds must have been scored; the
		// tournament and profile export depend on it. Ideas born in the
		// current round may still be awaiting their first critic pass.
		if i.Status == StatusActive && i.OverallScore == nil && i.Gen < s.Iteration {
			problems = append(problems, fmt.Sprintf("idea %s is active but has no overall_score", i.ID))
		}
		if i.Gen > s.Iteration {
			problems = append(problems, fmt.Sprintf(
				"idea %s has gen %d beyond iteration %d", i.ID, i.Gen, s.Iteration))
		}
	}

	if s.BestIdeaID != nil && !seen[*s.BestIdeaID] {
		problems = append(problems, fmt.Sprintf("best_idea_id %s not present in population", *s.BestIdeaID))
	}
	if s.BestIdeaID != nil && s.BestScore == nil {
		problems = append(problems, "best_idea_id is set but best_score is not")
	}
	if s.StagnationCounter < 0 {
		problems = append(problems, fmt.Sprintf("stagnation_counter is negative: %d", s.StagnationCounter))
	}

	return problems
}
