package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newFillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "fill [paths...]",
		Short:  "Append tests for untested public symbols",
		Long:   fillLongDescription,
		PreRun: bindStageFlags,
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Fill(cmd.Context(), runArgs(args, false))
		},
	}

	addRunFlags(cmd)
	cmd.Flags().Bool(regenerateFlagName, viper.GetBool(runRegenerateConfigKey), "request tests even for modules with no untested symbols")

	return cmd
}

func init() {
	rootCmd.AddCommand(newFillCmd())
}
