package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/brewdb/internal/migration"
)

// VersionResult is the JSON payload of the version command.
type VersionResult struct {
	Version int  `json:"version"`
	Latest  int  `json:"latest"`
	Current bool `json:"current"`
}

func (r VersionResult) String() string {
	if r.Current {
		return fmt.Sprintf("Schema version %d (current)", r.Version)
	}
	return fmt.Sprintf("Schema version %d (current is %d, run 'brewdb migrate')", r.Version, r.Latest)
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Show the schema version of the database",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			ctx := commandContext(cmd)

			s, err := openSession(ctx, rootOpts)
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeOpenFailed, "failed to open database", err)
			}
			defer s.Close()

			v, err := s.helper.CurrentVersion(ctx)
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeSchema, "failed to read schema version", err)
			}
			return formatter.Success(VersionResult{
				Version: v,
				Latest:  migration.LatestVersion,
				Current: v == migration.LatestVersion,
			})
		},
	}
}
