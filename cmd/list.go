package cmd

import (
	"github.com/spf13/cobra"

	"zigtestgen.dev/pkg/zigtestgen/internal/domain"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [paths...]",
		Short: "List modules and their untested symbols",
		Long:  listLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := buildSettings()

			return workflow.List(cmd.Context(), domain.ListArgs{
				Paths:    parsePaths(args),
				Exclude:  settings.Paths.Exclude,
				Settings: settings,
			})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(newListCmd())
}
