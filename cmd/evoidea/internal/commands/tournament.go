package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/evoidea-go/pkg/tournament"
)

func NewTournamentCommand() *cobra.Command {
	var opts storeOptions
	var auto bool
	var pairwise bool

	cmd := &cobra.Command{
		Use:   "tournament <run-id>",
		Short: "Rank a run's ideas by pairwise preference",
		Long: `Run an interactive tournament over a run's scored ideas. Each
comparison updates Elo ratings that feed preference profiles.

By default every uncompared pair is offered. --pairwise asks only the
most informative pairs (closest Elo ratings, capped at twice the idea
count). --auto skips the interaction and prints the score ranking.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := parseRunID(args[0])
			if err != nil {
				return err
			}
			store, err := opts.open()
			if err != nil {
				return err
			}
			defer store.Close()

			mode := tournament.ModeExhaustive
			switch {
			case auto:
				mode = tournament.ModeAuto
			case pairwise:
				mode = tournament.ModePairwise
			}

			runner := &tournament.Runner{Store: store, In: os.Stdin, Out: os.Stdout}
			return runner.Run(runID, mode)
		},
	}

	opts.bind(cmd)
	cmd.Flags().BoolVar(&auto, "auto", false, "print the score-based ranking without interaction")
	cmd.Flags().BoolVar(&pairwise, "pairwise", false, "adaptive pair selection instead of all pairs")
	return cmd
}
