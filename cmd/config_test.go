package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zigtestgen.dev/pkg/zigtestgen/internal/domain"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "zigtestgen", configBaseName)
	assert.Equal(t, "zigtestgen.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "output", outputFlagName)
	assert.Equal(t, "exclude", excludeFlagName)
	assert.Equal(t, "parallel", parallelFlagName)
	assert.Equal(t, "run.parallel", runParallelConfigKey)
	assert.Equal(t, "paths.exclude", excludeConfigKey)
	assert.Equal(t, ".zigtestgen-reports", defaultReportsDir)
	assert.Equal(t, "ZIGTESTGEN", envPrefix)
	assert.Equal(t, ".zigtestgen.log", defaultLogFilename)
}

func TestConfigVersionConstants(t *testing.T) {
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestBuildSettings_Defaults(t *testing.T) {
	got := buildSettings()
	want := domain.DefaultSettings()

	require.NoError(t, got.Validate())
	assert.Empty(t, got.Paths.Exclude)
	assert.Equal(t, want.Paths.TestsDir, got.Paths.TestsDir)
	assert.Equal(t, want.Paths.TestPrefix, got.Paths.TestPrefix)
	assert.Equal(t, want.Run, got.Run)
	assert.Equal(t, want.Backend, got.Backend)
	assert.Equal(t, want.Generation, got.Generation)
	assert.Equal(t, want.Prompt, got.Prompt)
	assert.Equal(t, want.Repair.BufferTypes, got.Repair.BufferTypes)
	assert.Equal(t, want.Repair.LooseBufferNames, got.Repair.LooseBufferNames)
	assert.Equal(t, want.Repair.StrayTokens, got.Repair.StrayTokens)
	assert.Equal(t, want.Verify, got.Verify)
}

func TestBuildSettings_EnvOverrides(t *testing.T) {
	t.Setenv("ZIGTESTGEN_BACKEND_KEY_ENV", "GROQ_KEY_A GROQ_KEY_B GROQ_KEY_C")
	t.Setenv("ZIGTESTGEN_BACKEND_BACKOFF", "exponential")
	t.Setenv("ZIGTESTGEN_BACKEND_TIMEOUT", "45s")
	t.Setenv("ZIGTESTGEN_GENERATION_NAMESPACE", "history")
	t.Setenv("ZIGTESTGEN_GENERATION_TEMPERATURE", "0.5")

	got := buildSettings()

	assert.Equal(t, []string{"GROQ_KEY_A", "GROQ_KEY_B", "GROQ_KEY_C"}, got.Backend.KeyEnv)
	assert.Equal(t, domain.BackoffExponential, got.Backend.Backoff)
	assert.Equal(t, 45*time.Second, got.Backend.Timeout)
	assert.Equal(t, "history", got.Generation.Namespace)
	assert.InDelta(t, 0.5, got.Generation.Temperature, 1e-6)
}

func TestWidenFloat(t *testing.T) {
	assert.Equal(t, 0.3, widenFloat(0.3))
	assert.Equal(t, 0.2, widenFloat(0.2))
	assert.Equal(t, 1.0, widenFloat(1))
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"", slog.LevelWarn},
		{"debug", slog.LevelDebug},
		{" INFO ", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"loud", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelWarn))
		})
	}
}

func TestConfigureLogger(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	logPath := filepath.Join(t.TempDir(), "zigtestgen.log")

	configureLogger(logPath, true)
	require.NotNil(t, globalLogger)
	assert.Same(t, globalLogger, slog.Default())

	slog.Debug("pool rotated", "slot", "CEREBRAS_API_KEY_2")

	contents, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "level=DEBUG")
	assert.Contains(t, string(contents), "slot=CEREBRAS_API_KEY_2")
}
