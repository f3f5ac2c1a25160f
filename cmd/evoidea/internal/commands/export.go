package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/evoidea-go/pkg/errors"
	"github.com/XiaoConstantine/evoidea-go/pkg/report"
)

func NewExportCommand() *cobra.Command {
	var opts storeOptions
	var preset string
	var output string

	cmd := &cobra.Command{
		Use:   "export <run-id>",
		Short: "Render a completed run through a preset template",
		Long: `Render a completed run as a shareable document. Presets:

  landing            one-page landing copy for the winning idea
  decision-log       engineering decision record
  stakeholder-brief  executive summary for non-technical readers
  changelog-entry    keep-a-changelog style entry`,
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

			content, filename, err := report.Export(store, runID, preset)
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				path = filepath.Join(opts.outDir, runID.String(), "exports", filename)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return errors.Wrap(err, errors.PersistenceFailed, "failed to create exports directory")
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return errors.Wrap(err, errors.PersistenceFailed, "failed to write export")
			}

			fmt.Printf("Exported to: %s\n\n", path)
			fmt.Print(content)
			return nil
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVar(&preset, "preset", report.PresetLanding, "export preset")
	cmd.Flags().StringVar(&output, "output", "", "write to this path instead of the run's exports directory")
	return cmd
}
