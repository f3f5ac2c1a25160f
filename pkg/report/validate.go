package report

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/XiaoConstantine/evoidea-go/pkg/errors"
	"github.com/XiaoConstantine/evoidea-go/pkg/idea"
	"github.com/XiaoConstantine/evoidea-go/pkg/storage"
)

const promptPreviewLen = 30

// Validation is the outcome of checking one run's artifacts.
type Validation struct {
	// Checks holds one line per artifact that loaded cleanly.
	Checks []string
	// Problems holds every missing artifact and invariant violation.
	Problems []string
}

// OK reports whether the run passed every check.
func (v *Validation) OK() bool {
	return len(v.Problems) == 0
}

// Format renders the validation outcome the way the CLI prints it.
func (v *Validation) Format() string {
	var b strings.Builder
	for _, check := range v.Checks {
		b.WriteString(check + "\n")
	}
	if v.OK() {
		b.WriteString("Invariants: OK\n")
		return b.String()
	}
	fmt.Fprintf(&b, "Errors: %d found\n", len(v.Problems))
	for _, p := range v.Problems {
		fmt.Fprintf(&b, "  - %s\n", p)
	}
	return b.String()
}

// ValidateRun checks that every persisted artifact of a run loads and
// that the state satisfies the population invariants. A missing final
// result is not a problem, only a sign the run is still in progress.
func ValidateRun(store storage.Storage, runID uuid.UUID) (*Validation, error) {
	v := &Validation{}

	cfg, err := store.LoadConfig(runID)
	switch {
	case err == nil:
		preview := cfg.Prompt
		if len(preview) > promptPreviewLen {
			preview = preview[:promptPreviewLen]
		}
		v.Checks = append(v.Checks, fmt.Sprintf("Config: OK (prompt: %s...)", preview))
	case errors.CodeOf(err) == errors.ResourceNotFound:
		return nil, errors.WithFields(
			errors.New(errors.ResourceNotFound, "run not found"),
			errors.Fields{"run_id": runID.String()})
	default:
		v.Problems = append(v.Problems, fmt.Sprintf("Config: %v", err))
	}

	state, err := store.LoadState(runID)
	if err != nil {
		v.Problems = append(v.Problems, fmt.Sprintf("State: %v", err))
	} else {
		v.Checks = append(v.Checks,
			fmt.Sprintf("State: OK (iteration: %d, ideas: %d)", state.Iteration, len(state.Ideas)))
		v.Problems = append(v.Problems, idea.ValidateState(&state)...)
	}

	events, err := store.LoadEvents(runID)
	if err != nil {
		v.Problems = append(v.Problems, fmt.Sprintf("History: %v", err))
	} else {
		v.Checks = append(v.Checks, fmt.Sprintf("History: OK (%d events)", len(events)))
	}

	final, err := store.LoadFinal(runID)
	switch {
	case err == nil:
		v.Checks = append(v.Checks, fmt.Sprintf("Final: OK (best: %s)", final.Best.Title))
	case errors.CodeOf(err) == errors.ResourceNotFound:
		v.Checks = append(v.Checks, "Final: NOT YET (run in progress)")
	default:
		v.Problems = append(v.Problems, fmt.Sprintf("Final: %v", err))
	}

	return v, nil
}
