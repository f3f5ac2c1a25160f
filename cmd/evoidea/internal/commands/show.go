package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/evoidea-go/pkg/report"
)

func NewShowCommand() *cobra.Command {
	var opts storeOptions
	var format string

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a run's result",
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

			out, err := report.Show(store, runID, format)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVar(&format, "format", "md", "output format (md or json)")
	return cmd
}
