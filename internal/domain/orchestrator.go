package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"zigtestgen.dev/pkg/zigtestgen/internal/adapter"
	m "zigtestgen.dev/pkg/zigtestgen/internal/model"
)

// GenerationRequest asks for new test code for one module.
type GenerationRequest struct {
	Module   m.SourceModule
	Coverage m.Coverage
	Mode     m.Stage
	Analyze  bool
}

// GenerationResult carries the extracted test code of a generation.
type GenerationResult struct {
	Code        string
	Analysis    string
	Submissions int
}

// GenerationOrchestrator builds a bounded prompt for a module, submits it
// through the credential pool and extracts test code from the reply.
type GenerationOrchestrator interface {
	Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error)
}

type generationOrchestrator struct {
	backend  adapter.ChatBackend
	pool     *CredentialPool
	backoff  BackoffPolicy
	settings Settings
}

// NewGenerationOrchestrator constructs a GenerationOrchestrator over backend.
func NewGenerationOrchestrator(
	backend adapter.ChatBackend,
	pool *CredentialPool,
	backoff BackoffPolicy,
	settings Settings,
) GenerationOrchestrator {
	if backoff == nil {
		backoff, _ = NewBackoffPolicy(BackoffNone, 0, 0)
	}

	return &generationOrchestrator{
		backend:  backend,
		pool:     pool,
		backoff:  backoff,
		settings: settings,
	}
}

func (o *generationOrchestrator) Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error) {
	var result GenerationResult

	if err := ctx.Err(); err != nil {
		return result, err
	}

	if req.Analyze {
		analysis, submissions, err := o.analyze(ctx, req.Module)
		result.Submissions += submissions

		if err != nil {
			return result, err
		}

		result.Analysis = analysis
	}

	budget, maxTokens := o.settings.Prompt.SourceBudget, o.settings.Generation.GenerateMaxTokens
	if req.Mode == m.StageFill {
		budget, maxTokens = o.settings.Prompt.FillBudget, o.settings.Generation.FillMaxTokens
	}

	messages := BuildPrompt(PromptInput{
		Module:    req.Module,
		Coverage:  req.Coverage,
		Mode:      req.Mode,
		Analysis:  result.Analysis,
		Namespace: o.settings.Generation.Namespace,
		Budget:    budget,
	})

	text, submissions, err := o.submit(ctx, adapter.ChatRequest{
		Model:       o.settings.Backend.Model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: o.settings.Generation.Temperature,
	})
	result.Submissions += submissions

	if err != nil {
		slog.Error("Failed to generate tests", "module", req.Module.Name(), "error", err)
		return result, fmt.Errorf("generate tests for %s: %w", req.Module.Name(), err)
	}

	code := ExtractCode(text)
	if req.Mode != m.StageFill {
		code = StripHeaderImports(code, o.settings.Generation.Namespace)
	}

	if len(code) < o.settings.Generation.MinLength {
		slog.Warn("Extracted test code too short", "module", req.Module.Name(), "length", len(code))
		return result, fmt.Errorf("%w: %d characters extracted for %s", ErrExtraction, len(code), req.Module.Name())
	}

	result.Code = code

	return result, nil
}

// analyze runs the optional first phase. Permanent failures and empty
// answers degrade to FallbackAnalysis; exhaustion and cancellation do not.
func (o *generationOrchestrator) analyze(ctx context.Context, module m.SourceModule) (string, int, error) {
	text, submissions, err := o.submit(ctx, adapter.ChatRequest{
		Model:       o.settings.Backend.Model,
		Messages:    BuildAnalysisPrompt(module, o.settings.Prompt.AnalysisBudget),
		MaxTokens:   o.settings.Generation.AnalysisMaxTokens,
		Temperature: o.settings.Generation.AnalysisTemperature,
	})

	switch {
	case errors.Is(err, ErrCredentialsExhausted), ctx.Err() != nil:
		slog.Error("Analysis aborted", "module", module.Name(), "error", err)
		return "", submissions, fmt.Errorf("analyze %s: %w", module.Name(), err)
	case err != nil:
		slog.Warn("Analysis failed, using basic approach", "module", module.Name(), "error", err)
		return FallbackAnalysis, submissions, nil
	case strings.TrimSpace(text) == "":
		slog.Warn("Empty analysis, using basic approach", "module", module.Name())
		return FallbackAnalysis, submissions, nil
	}

	return text, submissions, nil
}

// submit sends req with the pool's current credential. A rate-limited
// credential is flagged and the pool rotated before the next attempt, for at
// most pool.Size() submissions in total.
func (o *generationOrchestrator) submit(ctx context.Context, req adapter.ChatRequest) (string, int, error) {
	attempts := o.pool.Size()
	wait := o.backoff.NewBackOff()

	for attempt := 1; attempt <= attempts; attempt++ {
		cred := o.pool.Next()

		text, err := o.backend.Complete(ctx, cred.Secret(), req)
		if err == nil {
			o.pool.MarkHealthy(cred)
			return text, attempt, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", attempt, ctxErr
		}

		if !errors.Is(err, adapter.ErrRateLimited) {
			return "", attempt, fmt.Errorf("%w: %w", ErrBackend, err)
		}

		o.pool.MarkExhausted(cred)
		next := o.pool.Rotate()
		slog.Warn("Backend rate limited, rotating credential", "credential", cred, "next", next, "attempt", attempt)

		if attempt == attempts {
			break
		}

		if err := sleepContext(ctx, wait.NextBackOff()); err != nil {
			return "", attempt, err
		}
	}

	slog.Warn("Credential pool exhausted", "pool", o.pool, "all_flagged", o.pool.IsExhausted(), "submissions", attempts)

	return "", attempts, ErrCredentialsExhausted
}
