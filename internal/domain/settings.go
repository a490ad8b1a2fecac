package domain

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"zigtestgen.dev/pkg/zigtestgen/internal/domain/repairs"
)

// Backoff policy names accepted by BackendSettings.Backoff.
const (
	BackoffNone        = "none"
	BackoffFixed       = "fixed"
	BackoffExponential = "exponential"
)

var settingsValidate = validator.New()

// Settings carries every tunable of a run. It is populated from the CLI
// configuration and validated before any workflow starts.
type Settings struct {
	Paths      PathSettings
	Run        RunSettings
	Backend    BackendSettings
	Generation GenerationSettings
	Prompt     PromptSettings
	Repair     RepairSettings
	Verify     VerifySettings
}

// PathSettings controls discovery and the test file naming convention.
type PathSettings struct {
	TestsDir   string `validate:"required"`
	TestPrefix string `validate:"required"`
	Exclude    []string
	TypeMap    string
}

// RunSettings controls batch execution.
type RunSettings struct {
	Parallel   int `validate:"gte=1,lte=64"`
	Regenerate bool
}

// BackendSettings describes the chat-completion endpoint and retry pacing.
type BackendSettings struct {
	BaseURL           string        `validate:"required,url"`
	Model             string        `validate:"required"`
	KeyEnv            []string      `validate:"required,min=1,dive,required"`
	RequestsPerMinute int           `validate:"gte=0"`
	Backoff           string        `validate:"oneof=none fixed exponential"`
	BackoffBase       time.Duration `validate:"gte=0"`
	BackoffMax        time.Duration `validate:"gte=0"`
	Timeout           time.Duration `validate:"gt=0"`
}

// GenerationSettings holds the request parameters of each phase.
type GenerationSettings struct {
	Namespace           string  `validate:"required"`
	Analyze             bool
	MinLength           int     `validate:"gte=0"`
	AnalysisMaxTokens   int     `validate:"gt=0"`
	GenerateMaxTokens   int     `validate:"gt=0"`
	FillMaxTokens       int     `validate:"gt=0"`
	AnalysisTemperature float32 `validate:"gte=0,lte=2"`
	Temperature         float32 `validate:"gte=0,lte=2"`
}

// PromptSettings bounds the source excerpt embedded in each prompt.
type PromptSettings struct {
	AnalysisBudget int `validate:"gt=0"`
	SourceBudget   int `validate:"gt=0"`
	FillBudget     int `validate:"gt=0"`
}

// RepairSettings configures the repair pipeline passes.
type RepairSettings struct {
	BufferTypes      []string `validate:"required,min=1,dive,required"`
	LooseBuffers     bool
	LooseBufferNames []string
	StrayTokens      []string
}

// VerifySettings controls the optional `zig test` run over each written file.
type VerifySettings struct {
	Enabled   bool
	ZigBinary string        `validate:"required"`
	Timeout   time.Duration `validate:"gt=0"`
}

// DefaultSettings returns the settings used when no configuration overrides them.
func DefaultSettings() Settings {
	return Settings{
		Paths: PathSettings{
			TestsDir:   "tests",
			TestPrefix: "test_",
		},
		Run: RunSettings{
			Parallel: 1,
		},
		Backend: BackendSettings{
			BaseURL:     "https://api.cerebras.ai/v1",
			Model:       "zai-glm-4.6",
			KeyEnv:      []string{"CEREBRAS_API_KEY_1", "CEREBRAS_API_KEY_2"},
			Backoff:     BackoffNone,
			BackoffBase: time.Second,
			BackoffMax:  30 * time.Second,
			Timeout:     2 * time.Minute,
		},
		Generation: GenerationSettings{
			Namespace:           "module",
			Analyze:             true,
			MinLength:           100,
			AnalysisMaxTokens:   2000,
			GenerateMaxTokens:   4000,
			FillMaxTokens:       6000,
			AnalysisTemperature: 0.3,
			Temperature:         0.2,
		},
		Prompt: PromptSettings{
			AnalysisBudget: 8000,
			SourceBudget:   6000,
			FillBudget:     12000,
		},
		Repair: RepairSettings{
			BufferTypes:      []string{repairs.DefaultBufferType},
			LooseBufferNames: append([]string(nil), repairs.DefaultLooseBufferNames...),
			StrayTokens:      append([]string(nil), repairs.DefaultStrayTokens...),
		},
		Verify: VerifySettings{
			ZigBinary: "zig",
			Timeout:   2 * time.Minute,
		},
	}
}

// Validate checks the settings against their field constraints.
func (s *Settings) Validate() error {
	if err := settingsValidate.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	if s.Backend.BackoffMax > 0 && s.Backend.BackoffMax < s.Backend.BackoffBase {
		return fmt.Errorf("%w: backend backoff max %s is below base %s",
			ErrInvalidSettings, s.Backend.BackoffMax, s.Backend.BackoffBase)
	}

	return nil
}
