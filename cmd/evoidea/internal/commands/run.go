package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/evoidea-go/pkg/config"
	"github.com/XiaoConstantine/evoidea-go/pkg/errors"
	"github.com/XiaoConstantine/evoidea-go/pkg/idea"
	"github.com/XiaoConstantine/evoidea-go/pkg/orchestrator"
)

func NewRunCommand() *cobra.Command {
	var (
		prompt     string
		configPath string
		population int
		elite      int
		maxRounds  int
		threshold  float64
		patience   int
		refineTopK int
		outDir     string
		backend    string
		mode       string
		model      string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a new evolution run",
		Example: `  # Quick mock run
  evoidea run --prompt "a developer tools product" --max-rounds 3

  # Real run against Anthropic (needs ANTHROPIC_API_KEY)
  evoidea run --prompt "b2b saas for indie hackers" --mode anthropic

  # Everything from a config file
  evoidea run --config evoidea.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg config.RunConfig
			var err error
			if configPath != "" {
				cfg, err = config.LoadYAML(configPath, prompt)
				if err != nil {
					return err
				}
			} else {
				if prompt == "" {
					return errors.New(errors.InvalidInput, "either --prompt or --config is required")
				}
				cfg = config.Default(prompt)
			}

			// Flags override both defaults and the config file, but only
			// when set explicitly.
			flags := cmd.Flags()
			if flags.Changed("population") {
				cfg.PopulationSize = population
			}
			if flags.Changed("elite") {
				cfg.EliteCount = elite
			}
			if flags.Changed("max-rounds") {
				cfg.MaxRounds = maxRounds
			}
			if flags.Changed("threshold") {
				cfg.ScoreThreshold = threshold
			}
			if flags.Changed("patience") {
				cfg.StagnationPatience = patience
			}
			if flags.Changed("refine-top-k") {
				cfg.RefineTopK = refineTopK
			}
			if flags.Changed("out") {
				cfg.OutDir = outDir
			}
			if flags.Changed("storage") {
				cfg.Storage = backend
			}
			if flags.Changed("mode") {
				cfg.Mode = mode
			}
			if flags.Changed("model") {
				cfg.Model = model
			}

			orch, err := orchestrator.New(cfg)
			if err != nil {
				return err
			}
			fmt.Printf("Starting run %s\n", orch.RunID())

			final, err := orch.Run(cmd.Context())
			if err != nil {
				return err
			}
			printFinal(&final)
			return nil
		},
	}

	cmd.Flags().StringVar(&prompt, "prompt", "", "direction to explore")
	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file")
	cmd.Flags().IntVar(&population, "population", 12, "population size after selection")
	cmd.Flags().IntVar(&elite, "elite", 4, "top ideas always kept")
	cmd.Flags().IntVar(&maxRounds, "max-rounds", 6, "maximum evolution rounds")
	cmd.Flags().Float64Var(&threshold, "threshold", 8.7, "score that stops the run early")
	cmd.Flags().IntVar(&patience, "patience", 2, "rounds without improvement before stopping")
	cmd.Flags().IntVar(&refineTopK, "refine-top-k", 2, "ideas refined each round")
	cmd.Flags().StringVar(&outDir, "out", "runs", "directory holding run artifacts")
	cmd.Flags().StringVar(&backend, "storage", "file", "storage backend (file or sqlite)")
	cmd.Flags().StringVar(&mode, "mode", "mock", "LLM mode (mock or anthropic)")
	cmd.Flags().StringVar(&model, "model", "", "model override for the anthropic mode")

	return cmd
}

func printFinal(final *idea.FinalResult) {
	fmt.Printf("\nBest idea: %s (%.2f/10)\n", final.Best.Title, final.Best.OverallScore)
	for _, reason := range final.Best.WhyWon {
		fmt.Printf("  - %s\n", reason)
	}
	if len(final.RunnersUp) > 0 {
		fmt.Println("Runners up:")
		for _, r := range final.RunnersUp {
			fmt.Printf("  - %s (%.2f/10)\n", r.Title, r.OverallScore)
		}
	}
	fmt.Printf("Run: %s\n", final.RunID)
}
