package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "generate [paths...]",
		Short:  "Generate test files for untested modules",
		Long:   generateLongDescription,
		PreRun: bindStageFlags,
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Generate(cmd.Context(), runArgs(args, false))
		},
	}

	configureGenerateFlags(cmd)

	return cmd
}

// Stage commands are built in init, after the configuration is loaded, so
// their flag defaults show the configured values.
func init() {
	rootCmd.AddCommand(newGenerateCmd())
}

func configureGenerateFlags(cmd *cobra.Command) {
	addRunFlags(cmd)
	cmd.Flags().Bool(regenerateFlagName, viper.GetBool(runRegenerateConfigKey), "overwrite existing test files (a backup is kept)")
	cmd.Flags().Bool(analyzeFlagName, viper.GetBool(generationAnalyzeKey), "run the analysis request before generating")
}
