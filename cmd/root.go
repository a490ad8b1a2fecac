// Package cmd provides the root command and CLI setup for zigtestgen.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"zigtestgen.dev/pkg/zigtestgen/internal/adapter"
	"zigtestgen.dev/pkg/zigtestgen/internal/controller"
	"zigtestgen.dev/pkg/zigtestgen/internal/domain"
	m "zigtestgen.dev/pkg/zigtestgen/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var reportStore adapter.ReportStore
var typeMapLoader adapter.TypeMapLoader
var workflow domain.Workflow
var ui controller.UI

// reportsOutputDirFlag is a root-level flag shared by the stages that write reports.
var reportsOutputDirFlag string

// excludePatterns is a root-level flag that filters discovered modules.
var excludePatterns []string

var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
	}

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	reportStore = adapter.NewReportStore()
	typeMapLoader = adapter.NewTypeMapLoader()
	workflow = domain.NewWorkflow(
		fsAdapter,
		reportStore,
		typeMapLoader,
		adapter.NewLocalTestRunnerAdapter(),
		ui,
		domain.NewSourceAnalyzer(),
		domain.NewCoverageTracker(),
		domain.NewOrchestratorFactory(os.Getenv),
	)
}

const pathPatternsHelp = `Paths name Zig source files or directories:
  - src            every .zig file directly inside src
  - src/...        every .zig file below src, recursively
  - src/list.zig   a single module
Test directories, .backups and .zig-cache are never scanned.`

const rootLongDescription = `zigtestgen writes Zig unit tests with a chat-completion model and repairs
the mistakes models commonly make in them: leaked allocators, bare type
names, stray markdown and truncated output.

API keys are read from the environment variables listed under
backend.key_env (CEREBRAS_API_KEY_1, CEREBRAS_API_KEY_2 by default).

` + pathPatternsHelp

const generateLongDescription = `Generate a test file for every module that has none yet.

Each module is analyzed first, then a test file is requested, extracted,
repaired and written to <tests-dir>/<prefix><module>.zig.

` + pathPatternsHelp

const repairLongDescription = `Run the repair pipeline over existing test files without calling the backend.

` + pathPatternsHelp

const fillLongDescription = `Append tests for public symbols that no test mentions yet.

` + pathPatternsHelp

const listLongDescription = `List source modules with their public functions and untested symbols.

` + pathPatternsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "zigtestgen",
		Short:        "Zig unit test generator and repairer",
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for stage reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude files matching regex (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)

	cmd.PersistentFlags().String(modelFlagName, viper.GetString(backendModelKey), "model name sent to the backend")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(modelFlagName), backendModelKey)

	cmd.PersistentFlags().String(baseURLFlagName, viper.GetString(backendBaseURLKey), "OpenAI-compatible API base URL")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(baseURLFlagName), backendBaseURLKey)

	cmd.PersistentFlags().String(testsDirFlagName, viper.GetString(testsDirConfigKey), "directory holding the test files, relative to each module")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(testsDirFlagName), testsDirConfigKey)

	cmd.PersistentFlags().String(typeMapFlagName, viper.GetString(typeMapConfigKey), "YAML file mapping module names to their public types")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(typeMapFlagName), typeMapConfigKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// stageFlagKeys maps the per-command flags to the config keys they override.
var stageFlagKeys = map[string]string{
	parallelFlagName:   runParallelConfigKey,
	regenerateFlagName: runRegenerateConfigKey,
	analyzeFlagName:    generationAnalyzeKey,
	looseFlagName:      repairLooseBuffersKey,
	verifyFlagName:     verifyEnabledKey,
}

// bindStageFlags binds the flags of the command about to run. Several
// commands share a key, and viper keeps one flag per key, so the binding
// happens per invocation rather than at construction.
func bindStageFlags(cmd *cobra.Command, _ []string) {
	for name, key := range stageFlagKeys {
		if flag := cmd.Flags().Lookup(name); flag != nil {
			bindFlagToConfig(flag, key)
		}
	}
}

// addRunFlags adds the flags every writing stage accepts.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntP(parallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of modules processed concurrently")
	cmd.Flags().Bool(verifyFlagName, viper.GetBool(verifyEnabledKey), "run 'zig test' on every written test file")
}

// runArgs collects the arguments shared by the generate, repair and fill stages.
func runArgs(args []string, dryRun bool) domain.RunArgs {
	settings := buildSettings()

	return domain.RunArgs{
		Paths:    parsePaths(args),
		Exclude:  settings.Paths.Exclude,
		Reports:  m.Path(viper.GetString(outputFlagName)),
		Settings: settings,
		DryRun:   dryRun,
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// An interrupt cancels the running stage; files already written stay on disk.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
