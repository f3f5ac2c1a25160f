// Package commands holds the evoidea subcommand constructors.
package commands

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/evoidea-go/pkg/errors"
	"github.com/XiaoConstantine/evoidea-go/pkg/storage"
)

// storeOptions are the flags every command that reads run artifacts
// shares.
type storeOptions struct {
	outDir  string
	backend string
}

func (o *storeOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.outDir, "out", "runs", "directory holding run artifacts")
	cmd.Flags().StringVar(&o.backend, "storage", "file", "storage backend (file or sqlite)")
}

func (o *storeOptions) open() (storage.Storage, error) {
	return storage.New(o.backend, o.outDir)
}

func parseRunID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "invalid run id"),
			errors.Fields{"run_id": arg})
	}
	return id, nil
}
