package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRepairCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "repair [paths...]",
		Short:  "Repair existing test files",
		Long:   repairLongDescription,
		PreRun: bindStageFlags,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, err := cmd.Flags().GetBool(dryRunFlagName)
			if err != nil {
				return err
			}

			return workflow.Repair(cmd.Context(), runArgs(args, dryRun))
		},
	}

	configureRepairFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(newRepairCmd())
}

func configureRepairFlags(cmd *cobra.Command) {
	addRunFlags(cmd)
	cmd.Flags().Bool(dryRunFlagName, false, "print the diff of each repair without writing it")
	cmd.Flags().Bool(looseFlagName, viper.GetBool(repairLooseBuffersKey), "also fix deinit calls on the configured loose buffer names")
}
