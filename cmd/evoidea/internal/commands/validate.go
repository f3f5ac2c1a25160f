package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/evoidea-go/pkg/errors"
	"github.com/XiaoConstantine/evoidea-go/pkg/report"
)

func NewValidateCommand() *cobra.Command {
	var opts storeOptions

	cmd := &cobra.Command{
		Use:   "validate <run-id>",
		Short: "Check a run's artifacts and population invariants",
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

			v, err := report.ValidateRun(store, runID)
			if err != nil {
				return err
			}
			fmt.Print(v.Format())
			if !v.OK() {
				return errors.New(errors.InvariantViolation, "run failed validation")
			}
			return nil
		},
	}

	opts.bind(cmd)
	return cmd
}
