package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"zigtestgen.dev/pkg/zigtestgen/internal/domain"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "zigtestgen"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	outputFlagName     = "output"
	excludeFlagName    = "exclude"
	verboseFlagName    = "verbose"
	parallelFlagName   = "parallel"
	regenerateFlagName = "regenerate"
	analyzeFlagName    = "analyze"
	dryRunFlagName     = "dry-run"
	looseFlagName      = "loose"
	modelFlagName      = "model"
	baseURLFlagName    = "base-url"
	typeMapFlagName    = "type-map"
	testsDirFlagName   = "tests-dir"
	verifyFlagName     = "verify"

	excludeConfigKey    = "paths.exclude"
	testsDirConfigKey   = "paths.tests_dir"
	testPrefixConfigKey = "paths.test_prefix"
	typeMapConfigKey    = "paths.type_map"

	runParallelConfigKey   = "run.parallel"
	runRegenerateConfigKey = "run.regenerate"

	backendBaseURLKey     = "backend.base_url"
	backendModelKey       = "backend.model"
	backendKeyEnvKey      = "backend.key_env"
	backendRPMKey         = "backend.requests_per_minute"
	backendBackoffKey     = "backend.backoff"
	backendBackoffBaseKey = "backend.backoff_base"
	backendBackoffMaxKey  = "backend.backoff_max"
	backendTimeoutKey     = "backend.timeout"

	generationNamespaceKey      = "generation.namespace"
	generationAnalyzeKey        = "generation.analyze"
	generationMinLengthKey      = "generation.min_length"
	generationAnalysisTokensKey = "generation.analysis_max_tokens"
	generationGenerateTokensKey = "generation.generate_max_tokens"
	generationFillTokensKey     = "generation.fill_max_tokens"
	generationAnalysisTempKey   = "generation.analysis_temperature"
	generationTemperatureKey    = "generation.temperature"

	promptAnalysisBudgetKey = "prompt.analysis_budget"
	promptSourceBudgetKey   = "prompt.source_budget"
	promptFillBudgetKey     = "prompt.fill_budget"

	repairBufferTypesKey      = "repair.buffer_types"
	repairLooseBuffersKey     = "repair.loose_buffers"
	repairLooseBufferNamesKey = "repair.loose_buffer_names"
	repairStrayTokensKey      = "repair.stray_tokens"

	verifyEnabledKey   = "verify.enabled"
	verifyZigBinaryKey = "verify.zig_binary"
	verifyTimeoutKey   = "verify.timeout"

	defaultReportsDir = ".zigtestgen-reports"

	envPrefix = "ZIGTESTGEN"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".zigtestgen.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(outputFlagName, defaultReportsDir)
	setSettingsDefaults(domain.DefaultSettings())

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		return
	}
}

// setSettingsDefaults registers every run setting as a viper default.
// Durations are stored in their string form so `init` writes readable YAML.
func setSettingsDefaults(defaults domain.Settings) {
	viper.SetDefault(excludeConfigKey, []string{})
	viper.SetDefault(testsDirConfigKey, defaults.Paths.TestsDir)
	viper.SetDefault(testPrefixConfigKey, defaults.Paths.TestPrefix)
	viper.SetDefault(typeMapConfigKey, defaults.Paths.TypeMap)

	viper.SetDefault(runParallelConfigKey, defaults.Run.Parallel)
	viper.SetDefault(runRegenerateConfigKey, defaults.Run.Regenerate)

	viper.SetDefault(backendBaseURLKey, defaults.Backend.BaseURL)
	viper.SetDefault(backendModelKey, defaults.Backend.Model)
	viper.SetDefault(backendKeyEnvKey, defaults.Backend.KeyEnv)
	viper.SetDefault(backendRPMKey, defaults.Backend.RequestsPerMinute)
	viper.SetDefault(backendBackoffKey, defaults.Backend.Backoff)
	viper.SetDefault(backendBackoffBaseKey, defaults.Backend.BackoffBase.String())
	viper.SetDefault(backendBackoffMaxKey, defaults.Backend.BackoffMax.String())
	viper.SetDefault(backendTimeoutKey, defaults.Backend.Timeout.String())

	viper.SetDefault(generationNamespaceKey, defaults.Generation.Namespace)
	viper.SetDefault(generationAnalyzeKey, defaults.Generation.Analyze)
	viper.SetDefault(generationMinLengthKey, defaults.Generation.MinLength)
	viper.SetDefault(generationAnalysisTokensKey, defaults.Generation.AnalysisMaxTokens)
	viper.SetDefault(generationGenerateTokensKey, defaults.Generation.GenerateMaxTokens)
	viper.SetDefault(generationFillTokensKey, defaults.Generation.FillMaxTokens)
	viper.SetDefault(generationAnalysisTempKey, widenFloat(defaults.Generation.AnalysisTemperature))
	viper.SetDefault(generationTemperatureKey, widenFloat(defaults.Generation.Temperature))

	viper.SetDefault(promptAnalysisBudgetKey, defaults.Prompt.AnalysisBudget)
	viper.SetDefault(promptSourceBudgetKey, defaults.Prompt.SourceBudget)
	viper.SetDefault(promptFillBudgetKey, defaults.Prompt.FillBudget)

	viper.SetDefault(repairBufferTypesKey, defaults.Repair.BufferTypes)
	viper.SetDefault(repairLooseBuffersKey, defaults.Repair.LooseBuffers)
	viper.SetDefault(repairLooseBufferNamesKey, defaults.Repair.LooseBufferNames)
	viper.SetDefault(repairStrayTokensKey, defaults.Repair.StrayTokens)

	viper.SetDefault(verifyEnabledKey, defaults.Verify.Enabled)
	viper.SetDefault(verifyZigBinaryKey, defaults.Verify.ZigBinary)
	viper.SetDefault(verifyTimeoutKey, defaults.Verify.Timeout.String())
}

// widenFloat converts v to float64 through its shortest decimal form, so 0.3
// stays 0.3 instead of 0.30000001192092896.
func widenFloat(v float32) float64 {
	f, err := strconv.ParseFloat(strconv.FormatFloat(float64(v), 'f', -1, 32), 64)
	if err != nil {
		return float64(v)
	}

	return f
}

// buildSettings reads the resolved configuration (flags, env, file, defaults).
// Validation is left to the workflow.
func buildSettings() domain.Settings {
	return domain.Settings{
		Paths: domain.PathSettings{
			TestsDir:   viper.GetString(testsDirConfigKey),
			TestPrefix: viper.GetString(testPrefixConfigKey),
			Exclude:    viper.GetStringSlice(excludeConfigKey),
			TypeMap:    viper.GetString(typeMapConfigKey),
		},
		Run: domain.RunSettings{
			Parallel:   viper.GetInt(runParallelConfigKey),
			Regenerate: viper.GetBool(runRegenerateConfigKey),
		},
		Backend: domain.BackendSettings{
			BaseURL:           viper.GetString(backendBaseURLKey),
			Model:             viper.GetString(backendModelKey),
			KeyEnv:            viper.GetStringSlice(backendKeyEnvKey),
			RequestsPerMinute: viper.GetInt(backendRPMKey),
			Backoff:           viper.GetString(backendBackoffKey),
			BackoffBase:       viper.GetDuration(backendBackoffBaseKey),
			BackoffMax:        viper.GetDuration(backendBackoffMaxKey),
			Timeout:           viper.GetDuration(backendTimeoutKey),
		},
		Generation: domain.GenerationSettings{
			Namespace:           viper.GetString(generationNamespaceKey),
			Analyze:             viper.GetBool(generationAnalyzeKey),
			MinLength:           viper.GetInt(generationMinLengthKey),
			AnalysisMaxTokens:   viper.GetInt(generationAnalysisTokensKey),
			GenerateMaxTokens:   viper.GetInt(generationGenerateTokensKey),
			FillMaxTokens:       viper.GetInt(generationFillTokensKey),
			AnalysisTemperature: float32(viper.GetFloat64(generationAnalysisTempKey)),
			Temperature:         float32(viper.GetFloat64(generationTemperatureKey)),
		},
		Prompt: domain.PromptSettings{
			AnalysisBudget: viper.GetInt(promptAnalysisBudgetKey),
			SourceBudget:   viper.GetInt(promptSourceBudgetKey),
			FillBudget:     viper.GetInt(promptFillBudgetKey),
		},
		Repair: domain.RepairSettings{
			BufferTypes:      viper.GetStringSlice(repairBufferTypesKey),
			LooseBuffers:     viper.GetBool(repairLooseBuffersKey),
			LooseBufferNames: viper.GetStringSlice(repairLooseBufferNamesKey),
			StrayTokens:      viper.GetStringSlice(repairStrayTokensKey),
		},
		Verify: domain.VerifySettings{
			Enabled:   viper.GetBool(verifyEnabledKey),
			ZigBinary: viper.GetString(verifyZigBinaryKey),
			Timeout:   viper.GetDuration(verifyTimeoutKey),
		},
	}
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Numeric slog levels are accepted too (-4 is debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger installs the rotating file logger as the slog default.
//
// It logs at the configured level, or at Debug when verbose is set.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
