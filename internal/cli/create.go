package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/brewdb/internal/migration"
)

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	Legacy int
}

// CreateResult is the JSON payload of the create command.
type CreateResult struct {
	Version int `json:"version"`
	Tables  int `json:"tables,omitempty"`
}

func (r CreateResult) String() string {
	return fmt.Sprintf("✓ Database created at schema version %d", r.Version)
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an empty database at the current schema version",
		Long: `Create every table of an empty database and record the schema version.

With --legacy N the database is created at an older schema version instead,
which is useful for exercising migrations.

Example:
  brewdb create
  brewdb create --legacy 4 --config ./old.yml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Legacy, "legacy", 0, "create at this older schema version")

	return cmd
}

func runCreate(opts *CreateOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := commandContext(cmd)

	s, err := openSession(ctx, opts.RootOptions)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeOpenFailed, "failed to open database", err)
	}
	defer s.Close()

	if opts.Legacy != 0 {
		formatter.VerboseLog("Creating legacy schema version %d", opts.Legacy)
		if err := s.helper.CreateLegacy(ctx, opts.Legacy); err != nil {
			if errors.Is(err, migration.ErrInvalidRange) {
				return formatter.Fail(ExitCommandError, ErrCodeInvalidArg, "invalid legacy version", err)
			}
			return formatter.Fail(ExitFailure, ErrCodeWriteFailed, "failed to create database", err)
		}
		return formatter.Success(CreateResult{Version: opts.Legacy})
	}

	tables := s.tables()
	formatter.VerboseLog("Creating %d entity tables", len(tables))
	if err := s.helper.Create(ctx, tables...); err != nil {
		return formatter.Fail(ExitFailure, ErrCodeWriteFailed, "failed to create database", err)
	}
	return formatter.Success(CreateResult{Version: migration.LatestVersion, Tables: len(tables)})
}
