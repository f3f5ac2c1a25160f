package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/evoidea-go/cmd/evoidea/internal/commands"
	"github.com/XiaoConstantine/evoidea-go/pkg/logging"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "evoidea",
	Short: "Evolve product ideas through generate, critique, select and refine rounds",
	Long: `evoidea runs an evolutionary loop over a population of product ideas:
an LLM generates candidates, scores them against eight criteria, the best
survive each round and the strongest get refined. Runs persist to disk so
they can be resumed, inspected, exported and ranked by human preference
tournaments.`,
	Version: "0.1.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetLogger(logging.NewLogger(logging.Config{
			Severity: logging.ParseSeverity(logLevel),
			Outputs:  []logging.Output{logging.NewConsoleOutput(true)},
		}))
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "log severity (DEBUG, INFO, WARN, ERROR)")

	rootCmd.AddCommand(
		commands.NewRunCommand(),
		commands.NewResumeCommand(),
		commands.NewListCommand(),
		commands.NewShowCommand(),
		commands.NewValidateCommand(),
		commands.NewExportCommand(),
		commands.NewTreeCommand(),
		commands.NewTournamentCommand(),
		commands.NewProfileCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
