package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/evoidea-go/pkg/orchestrator"
)

func NewResumeCommand() *cobra.Command {
	var opts storeOptions
	var maxRounds int

	cmd := &cobra.Command{
		Use:   "resume <run-id>",
		Short: "Continue a stopped run, optionally with a larger round budget",
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

			orch, err := orchestrator.Resume(store, runID, maxRounds)
			if err != nil {
				return err
			}
			fmt.Printf("Resuming run %s\n", runID)

			final, err := orch.Run(cmd.Context())
			if err != nil {
				return err
			}
			printFinal(&final)
			return nil
		},
	}

	opts.bind(cmd)
	cmd.Flags().IntVar(&maxRounds, "max-rounds", 0, "new round budget; ignored unless larger than the stored one")
	return cmd
}
