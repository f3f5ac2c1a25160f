package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/evoidea-go/pkg/report"
)

func NewListCommand() *cobra.Command {
	var opts storeOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List known runs with their status and best score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.open()
			if err != nil {
				return err
			}
			defer store.Close()

			infos, err := report.ListRuns(store)
			if err != nil {
				return err
			}
			fmt.Print(report.FormatRunList(infos))
			return nil
		},
	}

	opts.bind(cmd)
	return cmd
}
