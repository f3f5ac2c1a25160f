// Package config defines the run configuration, its defaults, and the
// YAML loading and validation layer on top of it.
package config

import (
	"encoding/json"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/XiaoConstantine/evoidea-go/pkg/errors"
)

// Weights holds the per-criterion scoring weights. Weights are relative;
// the scoring engine normalizes by their sum.
type Weights struct {
	Feasibility     float64 `json:"feasibility" yaml:"feasibility" validate:"gte=0"`
	SpeedToValue    float64 `json:"speed_to_value" yaml:"speed_to_value" validate:"gte=0"`
	Differentiation float64 `json:"differentiation" yaml:"differentiation" validate:"gte=0"`
	MarketSize      float64 `json:"market_size" yaml:"market_size" validate:"gte=0"`
	Distribution    float64 `json:"distribution" yaml:"distribution" validate:"gte=0"`
	Moats           float64 `json:"moats" yaml:"moats" validate:"gte=0"`
	Risk            float64 `json:"risk" yaml:"risk" validate:"gte=0"`
	Clarity         float64 `json:"clarity" yaml:"clarity" validate:"gte=0"`
}

// DefaultWeights weighs every criterion equally.
func DefaultWeights() Weights {
	return Weights{
		Feasibility:     1.0,
		SpeedToValue:    1.0,
		Differentiation: 1.0,
		MarketSize:      1.0,
		Distribution:    1.0,
		Moats:           1.0,
		Risk:            1.0,
		Clarity:         1.0,
	}
}

// Vector returns the weights in criterion order (matching idea.CriterionNames).
func (w Weights) Vector() [8]float64 {
	return [8]float64{
		w.Feasibility,
		w.SpeedToValue,
		w.Differentiation,
		w.MarketSize,
		w.Distribution,
		w.Moats,
		w.Risk,
		w.Clarity,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	var sum float64
	for _, v := range w.Vector() {
		sum += v
	}
	return sum
}

// RunConfig is the immutable configuration of one evolution run. It is
// written to the run directory at init and never modified afterwards,
// with the single exception of a max-round extension on resume.
type RunConfig struct {
	Prompt             string  `json:"prompt" yaml:"prompt" validate:"required"`
	PopulationSize     int     `json:"population_size" yaml:"population_size" validate:"gte=1"`
	EliteCount         int     `json:"elite_count" yaml:"elite_count" validate:"gte=1"`
	MaxRounds          int     `json:"max_rounds" yaml:"max_rounds" validate:"gte=1"`
	ScoreThreshold     float64 `json:"score_threshold" yaml:"score_threshold" validate:"gte=0,lte=10"`
	StagnationPatience int     `json:"stagnation_patience" yaml:"stagnation_patience" validate:"gte=1"`
	RefineTopK         int     `json:"refine_top_k" yaml:"refine_top_k" validate:"gte=1"`
	Weights            Weights `json:"weights" yaml:"weights"`
	OutDir             string  `json:"out_dir" yaml:"out_dir" validate:"required"`
	Storage            string  `json:"storage" yaml:"storage" validate:"oneof=file sqlite"`
	Mode               string  `json:"mode" yaml:"mode" validate:"oneof=mock anthropic"`
	Model              string  `json:"model,omitempty" yaml:"model,omitempty"`
}

// Default returns the baseline configuration for the given prompt.
func Default(prompt string) RunConfig {
	return RunConfig{
		Prompt:             prompt,
		PopulationSize:     12,
		EliteCount:         4,
		MaxRounds:          6,
		ScoreThreshold:     8.7,
		StagnationPatience: 2,
		RefineTopK:         2,
		Weights:            DefaultWeights(),
		OutDir:             "runs",
		Storage:            "file",
		Mode:               "mock",
	}
}

var validate = validator.New()

// Validate checks field constraints plus the cross-field rules the tag
// language cannot express.
func (c *RunConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.ValidationFailed, "invalid run configuration"),
			errors.Fields{"prompt": c.Prompt})
	}
	if c.EliteCount > c.PopulationSize {
		return errors.WithFields(
			errors.New(errors.ValidationFailed, "elite_count cannot exceed population_size"),
			errors.Fields{"elite_count": c.EliteCount, "population_size": c.PopulationSize})
	}
	if c.Weights.Sum() <= 0 {
		return errors.New(errors.ValidationFailed, "at least one scoring weight must be positive")
	}
	return nil
}

// LoadYAML reads a YAML config file and applies defaults for absent fields.
func LoadYAML(path, prompt string) (RunConfig, error) {
	cfg := Default(prompt)
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to read config file"),
			errors.Fields{"path": path})
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to parse config file"),
			errors.Fields{"path": path})
	}
	if cfg.Prompt == "" {
		cfg.Prompt = prompt
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// MarshalIndent renders the config the way it is persisted in a run directory.
func (c *RunConfig) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}
