package domain

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/sync/errgroup"

	"zigtestgen.dev/pkg/zigtestgen/internal/adapter"
	"zigtestgen.dev/pkg/zigtestgen/internal/controller"
	m "zigtestgen.dev/pkg/zigtestgen/internal/model"
	"zigtestgen.dev/pkg/zigtestgen/pkg"
)

// testMarker identifies a test file that already holds at least one test.
const testMarker = `test "`

// RunArgs contains the arguments shared by the generate, repair and fill stages.
type RunArgs struct {
	Paths    []m.Path
	Exclude  []string
	Reports  m.Path
	Settings Settings
	DryRun   bool
}

// ListArgs contains the arguments for the coverage listing.
type ListArgs struct {
	Paths    []m.Path
	Exclude  []string
	Settings Settings
}

// Workflow runs the stages of the tool over a set of source modules.
type Workflow interface {
	Generate(ctx context.Context, args RunArgs) error
	Repair(ctx context.Context, args RunArgs) error
	Fill(ctx context.Context, args RunArgs) error
	List(ctx context.Context, args ListArgs) error
}

// OrchestratorFactory builds the generation orchestrator for a run's settings.
type OrchestratorFactory func(settings Settings) (GenerationOrchestrator, error)

// NewOrchestratorFactory returns the factory wiring the OpenAI-compatible
// backend, the credential pool read through getenv and the backoff policy.
func NewOrchestratorFactory(getenv func(string) string) OrchestratorFactory {
	if getenv == nil {
		getenv = os.Getenv
	}

	return func(settings Settings) (GenerationOrchestrator, error) {
		pool, err := NewCredentialPool(LoadCredentials(settings.Backend.KeyEnv, getenv)...)
		if err != nil {
			return nil, fmt.Errorf("load credentials from %s: %w", strings.Join(settings.Backend.KeyEnv, ", "), err)
		}

		backoff, err := NewBackoffPolicy(settings.Backend.Backoff, settings.Backend.BackoffBase, settings.Backend.BackoffMax)
		if err != nil {
			return nil, err
		}

		backend := adapter.NewOpenAIBackend(adapter.OpenAIBackendConfig{
			BaseURL:           settings.Backend.BaseURL,
			Timeout:           settings.Backend.Timeout,
			RequestsPerMinute: settings.Backend.RequestsPerMinute,
		})

		return NewGenerationOrchestrator(backend, pool, backoff, settings), nil
	}
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.ReportStore
	adapter.TypeMapLoader
	adapter.TestRunnerAdapter
	controller.UI
	SourceAnalyzer
	CoverageTracker

	newOrchestrator OrchestratorFactory
	now             func() time.Time
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	reportStore adapter.ReportStore,
	typeMapLoader adapter.TypeMapLoader,
	testRunner adapter.TestRunnerAdapter,
	ui controller.UI,
	analyzer SourceAnalyzer,
	tracker CoverageTracker,
	newOrchestrator OrchestratorFactory,
) Workflow {
	return &workflow{
		SourceFSAdapter:   fsAdapter,
		ReportStore:       reportStore,
		TypeMapLoader:     typeMapLoader,
		TestRunnerAdapter: testRunner,
		UI:                ui,
		SourceAnalyzer:    analyzer,
		CoverageTracker:   tracker,
		newOrchestrator:   newOrchestrator,
		now:               time.Now,
	}
}

// moduleJob is everything one stage needs to know about a module before it
// touches the backend or the disk.
type moduleJob struct {
	source     m.File
	module     m.SourceModule
	coverage   m.Coverage
	test       m.TestFile
	target     RepairTarget
	importPath string
}

// stageRunner processes one module and fills in its result.
type stageRunner func(ctx context.Context, env runEnv, job moduleJob, result *m.FileResult) error

// runEnv carries the per-run collaborators shared by the stage runners.
type runEnv struct {
	settings     Settings
	args         RunArgs
	orchestrator GenerationOrchestrator
	pipeline     RepairPipeline
	writer       Writer
	logger       *slog.Logger
}

func (w *workflow) Generate(ctx context.Context, args RunArgs) error {
	return w.run(ctx, m.StageGenerate, args, w.generateModule)
}

func (w *workflow) Repair(ctx context.Context, args RunArgs) error {
	return w.run(ctx, m.StageRepair, args, w.repairModule)
}

func (w *workflow) Fill(ctx context.Context, args RunArgs) error {
	return w.run(ctx, m.StageFill, args, w.fillModule)
}

func (w *workflow) List(ctx context.Context, args ListArgs) error {
	if err := args.Settings.Validate(); err != nil {
		return err
	}

	if err := w.Start(ctx, controller.WithListMode()); err != nil {
		return fmt.Errorf("start UI: %w", err)
	}
	defer w.Close(ctx)

	sources, err := w.Get(ctx, args.Paths, args.Settings.Paths.TestsDir, args.Exclude...)
	if err != nil {
		slog.Error("Failed to get sources", "paths", args.Paths, "error", err)
		return w.DisplayCoverage(ctx, nil, fmt.Errorf("get sources: %w", err))
	}

	typeMap, err := w.LoadTypeMap(ctx, m.Path(args.Settings.Paths.TypeMap))
	if err != nil {
		return w.DisplayCoverage(ctx, nil, fmt.Errorf("load type map: %w", err))
	}

	rows := make([]m.ModuleCoverage, 0, len(sources))

	for _, source := range sources {
		job, err := w.prepare(ctx, source, args.Settings, typeMap)
		if err != nil {
			return w.DisplayCoverage(ctx, nil, err)
		}

		rows = append(rows, m.ModuleCoverage{
			Source:       source.ShortPath,
			TestFile:     job.test.Path,
			HasTests:     strings.Contains(job.test.Text, testMarker),
			Functions:    len(job.module.SymbolsOfKind(m.SymbolFunction)),
			Aggregates:   len(job.module.SymbolsOfKind(m.SymbolAggregate)),
			Enumerations: len(job.module.SymbolsOfKind(m.SymbolEnumeration)),
			Tested:       testedFunctions(job.module, job.coverage),
			Untested:     symbolNames(job.coverage.Untested),
		})
	}

	return w.DisplayCoverage(ctx, rows, nil)
}

//nolint:funlen // The run loop reads best top to bottom.
func (w *workflow) run(ctx context.Context, stage m.Stage, args RunArgs, process stageRunner) error {
	settings := args.Settings
	if err := settings.Validate(); err != nil {
		return err
	}

	runID := uuid.NewString()
	logger := slog.With("run", runID, "stage", stage)
	started := w.now()

	sources, err := w.Get(ctx, args.Paths, settings.Paths.TestsDir, args.Exclude...)
	if err != nil {
		logger.Error("Failed to get sources", "paths", args.Paths, "error", err)
		return fmt.Errorf("get sources: %w", err)
	}

	typeMap, err := w.LoadTypeMap(ctx, m.Path(settings.Paths.TypeMap))
	if err != nil {
		logger.Error("Failed to load type map", "path", settings.Paths.TypeMap, "error", err)
		return fmt.Errorf("load type map: %w", err)
	}

	env := runEnv{
		settings: settings,
		args:     args,
		pipeline: NewRepairPipeline(settings.Repair),
		writer:   NewWriter(w.SourceFSAdapter),
		logger:   logger,
	}

	if stage != m.StageRepair {
		env.orchestrator, err = w.newOrchestrator(settings)
		if err != nil {
			logger.Error("Failed to set up backend", "error", err)
			return fmt.Errorf("set up backend: %w", err)
		}
	}

	if err := w.Start(ctx, controller.WithRunMode(stage)); err != nil {
		return fmt.Errorf("start UI: %w", err)
	}
	defer w.Close(ctx)

	w.DisplayRunInfo(ctx, stage, len(sources), settings.Run.Parallel)
	logger.Info("Starting run", "modules", len(sources), "parallel", settings.Run.Parallel)

	spill, err := pkg.NewFileSpill[m.FileResult]("")
	if err != nil {
		return fmt.Errorf("create result spill: %w", err)
	}

	defer func() {
		if discardErr := spill.Discard(); discardErr != nil {
			logger.Warn("Failed to discard result spill", "path", spill.Path(), "error", discardErr)
		}
	}()

	var group errgroup.Group

	group.SetLimit(settings.Run.Parallel)

	for _, source := range sources {
		currentSource := source

		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			w.DisplayStartingFile(ctx, currentSource)

			result := w.processModule(ctx, env, currentSource, typeMap, process)

			if err := spill.Append(result); err != nil {
				logger.Error("Failed to record result", "source", currentSource.ShortPath, "error", err)
				return fmt.Errorf("record result for %s: %w", currentSource.ShortPath, err)
			}

			w.DisplayCompletedFile(ctx, result)

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	if err := spill.Close(); err != nil {
		return fmt.Errorf("close result spill: %w", err)
	}

	summary, err := w.collectSummary(spill, runID, stage, started)
	if err != nil {
		return err
	}

	var reportPath m.Path

	if !args.DryRun {
		reportPath, err = w.SaveReport(ctx, args.Reports, summary)
		if err != nil {
			logger.Error("Failed to save report", "dir", args.Reports, "error", err)
			return fmt.Errorf("save report: %w", err)
		}
	}

	if err := w.DisplaySummary(ctx, summary, reportPath); err != nil {
		return err
	}

	succeeded, failed := summary.Counts()
	logger.Info("Run finished", "succeeded", succeeded, "failed", failed, "flagged", len(summary.Flagged()))

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrFailedFiles, failed, len(summary.Results))
	}

	return nil
}

func (w *workflow) processModule(
	ctx context.Context,
	env runEnv,
	source m.File,
	typeMap adapter.TypeMap,
	process stageRunner,
) m.FileResult {
	result := m.FileResult{Source: source.ShortPath}

	job, err := w.prepare(ctx, source, env.settings, typeMap)
	if err == nil {
		result.TestFile = job.test.Path
		result.Functions = len(job.module.SymbolsOfKind(m.SymbolFunction))
		result.Tested = testedFunctions(job.module, job.coverage)
		result.Untested = len(job.coverage.Untested)

		err = process(ctx, env, job, &result)
	}

	if err == nil && env.settings.Verify.Enabled && !env.args.DryRun && result.Status != m.StatusSkipped {
		err = w.verify(ctx, env, job)
	}

	if err != nil {
		env.logger.Error("Failed to process module", "source", source.ShortPath, "error", err)

		result.Status = m.StatusFailed
		result.Err = err.Error()
	}

	return result
}

func (w *workflow) prepare(ctx context.Context, source m.File, settings Settings, typeMap adapter.TypeMap) (moduleJob, error) {
	job := moduleJob{source: source}

	text, err := w.ReadFile(ctx, source.FullPath)
	if err != nil {
		return job, fmt.Errorf("%w: %s: %w", ErrSourceRead, source.ShortPath, err)
	}

	sourceFile := source
	job.module = w.Analyze(&sourceFile, string(text))

	testPath := w.TestFilePath(ctx, source.FullPath, settings.Paths.TestsDir, settings.Paths.TestPrefix)
	job.test = m.TestFile{Path: testPath, Source: source.FullPath}

	testText, err := w.ReadFile(ctx, testPath)

	switch {
	case err == nil:
		job.test.Text = string(testText)
		job.test.Exists = true
	case !errors.Is(err, fs.ErrNotExist):
		return job, fmt.Errorf("%w: %s: %w", ErrSourceRead, testPath, err)
	}

	namespace := settings.Generation.Namespace
	job.coverage = w.Coverage(job.module, job.test.Text, namespace)
	job.target = RepairTarget{
		Namespace:     namespace,
		ExportedTypes: mergeNames(job.module.ExportedTypes(), typeMap.TypesFor(job.module.Name())),
	}

	importPath, err := w.RelPath(ctx, m.Path(filepath.Dir(string(testPath))), source.FullPath)
	if err != nil {
		return job, fmt.Errorf("resolve import path for %s: %w", source.ShortPath, err)
	}

	job.importPath = filepath.ToSlash(string(importPath))

	return job, nil
}

func (w *workflow) generateModule(ctx context.Context, env runEnv, job moduleJob, result *m.FileResult) error {
	if job.test.Exists && strings.Contains(job.test.Text, testMarker) && !env.settings.Run.Regenerate {
		result.Status = m.StatusSkipped
		result.Reason = "already has tests"

		return nil
	}

	generated, err := env.orchestrator.Generate(ctx, GenerationRequest{
		Module:   job.module,
		Coverage: w.Coverage(job.module, "", env.settings.Generation.Namespace),
		Mode:     m.StageGenerate,
		Analyze:  env.settings.Generation.Analyze,
	})
	if err != nil {
		return err
	}

	text := TestFileHeader(job.module.Name(), job.importPath, env.settings.Generation.Namespace) + generated.Code + "\n"

	return w.repairAndWrite(ctx, env, job, text, result)
}

func (w *workflow) fillModule(ctx context.Context, env runEnv, job moduleJob, result *m.FileResult) error {
	if len(job.coverage.Untested) == 0 && !env.settings.Run.Regenerate {
		result.Status = m.StatusSkipped
		result.Reason = "no untested symbols"

		return nil
	}

	generated, err := env.orchestrator.Generate(ctx, GenerationRequest{
		Module:   job.module,
		Coverage: job.coverage,
		Mode:     m.StageFill,
	})
	if err != nil {
		return err
	}

	text := TestFileHeader(job.module.Name(), job.importPath, env.settings.Generation.Namespace) + generated.Code + "\n"
	if job.test.Exists {
		text = strings.TrimRight(job.test.Text, "\n") + FillSeparator + generated.Code + "\n"
	}

	return w.repairAndWrite(ctx, env, job, text, result)
}

func (w *workflow) repairModule(ctx context.Context, env runEnv, job moduleJob, result *m.FileResult) error {
	if !job.test.Exists {
		result.Status = m.StatusSkipped
		result.Reason = "no test file"

		return nil
	}

	if !env.args.DryRun {
		return w.repairAndWrite(ctx, env, job, job.test.Text, result)
	}

	repaired := env.pipeline.Run(job.test.Text, job.target)
	applyRepair(result, repaired)

	result.Status = m.StatusUnchanged
	result.Reason = "dry run"

	if repaired.Text == job.test.Text {
		return nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(job.test.Text),
		B:        difflib.SplitLines(repaired.Text),
		FromFile: string(job.test.Path),
		ToFile:   string(job.test.Path) + " (repaired)",
		Context:  3,
	})
	if err != nil {
		return fmt.Errorf("diff %s: %w", job.test.Path, err)
	}

	w.DisplayDiff(ctx, job.test.Path, diff)

	return nil
}

// repairAndWrite runs the pipeline over text and persists the result.
func (w *workflow) repairAndWrite(ctx context.Context, env runEnv, job moduleJob, text string, result *m.FileResult) error {
	repaired := env.pipeline.Run(text, job.target)
	applyRepair(result, repaired)

	if repaired.Flagged {
		env.logger.Warn("Delimiters do not balance, output may be truncated",
			"test_file", job.test.Path, "delimiters", repaired.Delimiters.String())
	}

	outcome, err := env.writer.Write(ctx, job.test.Path, repaired.Text)
	if err != nil {
		return err
	}

	result.Backup = outcome.Backup
	result.Status = m.StatusUnchanged

	if outcome.Written {
		result.Status = m.StatusWritten
	}

	return nil
}

// verify runs the written test file through `zig test` from the module's directory.
func (w *workflow) verify(ctx context.Context, env runEnv, job moduleJob) error {
	ctx, cancel := context.WithTimeout(ctx, env.settings.Verify.Timeout)
	defer cancel()

	workDir := m.Path(filepath.Dir(string(job.source.FullPath)))

	output, err := w.RunZigTest(ctx, env.settings.Verify.ZigBinary, workDir, job.test.Path)
	if err != nil {
		env.logger.Debug("zig test output", "test_file", job.test.Path, "output", output)

		if line := firstLine(output); line != "" {
			return fmt.Errorf("%w: %s: %w: %s", ErrVerify, job.test.Path, err, line)
		}

		return fmt.Errorf("%w: %s: %w", ErrVerify, job.test.Path, err)
	}

	env.logger.Debug("zig test passed", "test_file", job.test.Path)

	return nil
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}

	return ""
}

func (w *workflow) collectSummary(spill pkg.FileSpill[m.FileResult], runID string, stage m.Stage, started time.Time) (m.Summary, error) {
	summary := m.Summary{RunID: runID, Stage: stage, Started: started}

	err := spill.Range(func(_ uint64, result m.FileResult) error {
		summary.Results = append(summary.Results, result)
		return nil
	})
	if err != nil {
		return summary, fmt.Errorf("read results: %w", err)
	}

	sort.Slice(summary.Results, func(i, j int) bool {
		return summary.Results[i].Source < summary.Results[j].Source
	})

	summary.Finished = w.now()

	return summary, nil
}

func applyRepair(result *m.FileResult, repaired RepairResult) {
	result.Repairs = repaired.Applied
	result.Delimiters = repaired.Delimiters
	result.Flagged = repaired.Flagged
}

func mergeNames(names ...[]string) []string {
	seen := make(map[string]struct{})

	var out []string

	for _, group := range names {
		for _, name := range group {
			if _, ok := seen[name]; ok {
				continue
			}

			seen[name] = struct{}{}
			out = append(out, name)
		}
	}

	return out
}
