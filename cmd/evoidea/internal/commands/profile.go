package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/evoidea-go/pkg/profile"
	"github.com/XiaoConstantine/evoidea-go/pkg/report"
)

func NewProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Export, import and inspect preference profiles",
	}
	cmd.AddCommand(newProfileExportCommand(), newProfileImportCommand(), newProfileShowCommand())
	return cmd
}

func newProfileExportCommand() *cobra.Command {
	var opts storeOptions
	var output string

	cmd := &cobra.Command{
		Use:   "export <run-id>",
		Short: "Write a run's learned preferences to a portable profile file",
		Args:  cobra.ExactArgs(1),
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

			path := output
			if path == "" {
				path = fmt.Sprintf("profile-%s.json", runID)
			}
			p, _, err := profile.Export(store, runID, path)
			if err != nil {
				return err
			}

			fmt.Printf("Exported profile to: %s\n", path)
			fmt.Printf("Comparisons: %d, ideas rated: %d\n", p.Stats.Comparisons, p.Stats.IdeasRated)
			if p.Derived != nil {
				for _, line := range p.Derived.Summary {
					fmt.Println(line)
				}
			}
			return nil
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVar(&output, "output", "", "profile file path (default profile-<run-id>.json)")
	return cmd
}

func newProfileImportCommand() *cobra.Command {
	var opts storeOptions

	cmd := &cobra.Command{
		Use:   "import <run-id> <profile-file>",
		Short: "Seed a run's tournament preferences from a profile file",
		Args:  cobra.ExactArgs(2),
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

			p, err := profile.Import(store, runID, args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Imported profile from run %s into run %s\n", p.SourceRun, runID)
			fmt.Printf("Comparisons: %d, ideas rated: %d\n", p.Stats.Comparisons, p.Stats.IdeasRated)
			return nil
		},
	}

	opts.bind(cmd)
	return cmd
}

func newProfileShowCommand() *cobra.Command {
	var opts storeOptions

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a run's comparisons, Elo rankings and derived weights",
		Args:  cobra.ExactArgs(1),
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

			state, err := store.LoadState(runID)
			if err != nil {
				return err
			}

			out, err := report.ProfileSummary(store, runID, &state)
			if err != nil {
				return err
			}
			fmt.Print(out)

			prefs, err := store.LoadPreferences(runID)
			if err != nil {
				return err
			}
			if summary, err := profile.SummarizeElo(prefs); err == nil {
				fmt.Printf("\nElo spread: mean %.0f, median %.0f, stddev %.1f (min %.0f, max %.0f)\n",
					summary.Mean, summary.Median, summary.StdDev, summary.Min, summary.Max)
			}
			if derived := profile.Derive(prefs, &state); derived != nil {
				fmt.Println("\nDerived weights:")
				for _, line := range derived.Summary {
					fmt.Printf("  %s\n", line)
				}
				if derived.Fit.HoldoutAccuracy != nil {
					fmt.Printf("  Holdout accuracy: %.0f%% over %d comparisons\n",
						*derived.Fit.HoldoutAccuracy*100, derived.Fit.ComparisonsUsed)
				}
			}
			return nil
		},
	}

	opts.bind(cmd)
	return cmd
}
