package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/XiaoConstantine/evoidea-go/pkg/config"
	"github.com/XiaoConstantine/evoidea-go/pkg/errors"
	"github.com/XiaoConstantine/evoidea-go/pkg/idea"
	"github.com/XiaoConstantine/evoidea-go/pkg/storage"
)

// Version is the current portable profile format version.
const Version = 1

// Stats summarizes the raw preference data a profile carries.
type Stats struct {
	Comparisons int `json:"comparisons"`
	IdeasRated  int `json:"ideas_rated"`
}

// Fit describes how the derived weights were obtained.
type Fit struct {
	Method          string   `json:"method"`
	ComparisonsUsed int      `json:"comparisons_used"`
	HoldoutAccuracy *float64 `json:"holdout_accuracy"`
}

// Derived is the fitted weight vector plus its provenance and a short
// human-readable summary.
type Derived struct {
	CriterionWeights config.Weights `json:"criterion_weights"`
	Fit              Fit            `json:"fit"`
	Summary          []string       `json:"summary"`
}

// Profile is the portable export of a run's learned preferences. It can
// be imported into another run to seed its tournament, and its derived
// weights can recalibrate the scoring engine.
type Profile struct {
	Version     int               `json:"version"`
	CreatedAt   time.Time         `json:"created_at"`
	SourceRun   string            `json:"source_run"`
	Stats       Stats             `json:"stats"`
	Preferences *idea.Preferences `json:"preferences"`
	Derived     *Derived          `json:"derived,omitempty"`
}

// Build assembles a portable profile from a run's preferences and state.
// The derived section is present only when at least one usable
// comparison exists.
func Build(runID uuid.UUID, prefs *idea.Preferences, state *idea.State) Profile {
	p := Profile{
		Version:   Version,
		CreatedAt: time.Now().UTC(),
		SourceRun: runID.String(),
		Stats: Stats{
			Comparisons: len(prefs.Comparisons),
			IdeasRated:  len(prefs.EloRatings),
		},
		Preferences: prefs,
	}
	if state != nil {
		p.Derived = Derive(prefs, state)
	}
	return p
}

// Derive fits a weight vector from the comparison log. Returns nil when
// no comparison has known scores on both sides.
func Derive(prefs *idea.Preferences, state *idea.State) *Derived {
	if len(prefs.Comparisons) == 0 {
		return nil
	}

	mode := InferRiskMode(state)
	scores := scoresByID(state)
	pairs := trainingPairs(prefs, scores)
	if len(pairs) == 0 {
		return nil
	}

	weights, holdout := FitWeights(pairs, scores, mode)

	return &Derived{
		CriterionWeights: weights,
		Fit: Fit{
			Method:          "pairwise-multiplicative-weights",
			ComparisonsUsed: len(pairs),
			HoldoutAccuracy: holdout,
		},
		Summary: SummarizeWeights(weights),
	}
}

// SummarizeWeights reports the two most and two least weighted criteria
// in two fixed-format sentences.
func SummarizeWeights(w config.Weights) []string {
	type item struct {
		name   string
		weight float64
	}
	items := make([]item, idea.NumCriteria)
	v := w.Vector()
	for i, name := range idea.CriterionNames {
		items[i] = item{name: name, weight: v[i]}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].weight > items[j].weight
	})

	return []string{
		fmt.Sprintf("Prioritizes %s and %s over other criteria.", items[0].name, items[1].name),
		fmt.Sprintf("De-emphasizes %s and %s relative to other criteria.",
			items[len(items)-1].name, items[len(items)-2].name),
	}
}

// Export builds and writes a run's profile. An empty path means the
// caller wants the JSON back without touching disk.
func Export(store storage.Storage, runID uuid.UUID, path string) (Profile, []byte, error) {
	prefs, err := store.LoadPreferences(runID)
	if err != nil {
		return Profile{}, nil, err
	}
	state, err := store.LoadState(runID)
	if err != nil {
		return Profile{}, nil, err
	}

	p := Build(runID, prefs, &state)
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return Profile{}, nil, errors.Wrap(err, errors.PersistenceFailed, "failed to marshal profile")
	}
	if path != "" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return Profile{}, nil, errors.WithFields(
				errors.Wrap(err, errors.PersistenceFailed, "failed to write profile"),
				errors.Fields{"path": path})
		}
	}
	return p, data, nil
}

// Load reads and validates a profile file.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to read profile"),
			errors.Fields{"path": path})
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, errors.Wrap(err, errors.InvalidInput, "failed to parse profile")
	}
	if p.Version != Version {
		return Profile{}, errors.WithFields(
			errors.New(errors.InvalidInput, "unsupported profile version"),
			errors.Fields{"version": p.Version})
	}
	if p.Preferences == nil {
		return Profile{}, errors.New(errors.InvalidInput, "profile is missing preferences")
	}
	return p, nil
}

// Import seeds a run's tournament preferences from a profile file.
func Import(store storage.Storage, runID uuid.UUID, path string) (Profile, error) {
	p, err := Load(path)
	if err != nil {
		return Profile{}, err
	}
	if err := store.SavePreferences(runID, p.Preferences); err != nil {
		return Profile{}, err
	}
	return p, nil
}
