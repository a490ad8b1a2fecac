package domain_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"zigtestgen.dev/pkg/zigtestgen/internal/adapter"
	"zigtestgen.dev/pkg/zigtestgen/internal/controller"
	"zigtestgen.dev/pkg/zigtestgen/internal/domain"
	adaptermocks "zigtestgen.dev/pkg/zigtestgen/internal/adapter/mocks"
	domainmocks "zigtestgen.dev/pkg/zigtestgen/internal/domain/mocks"
	m "zigtestgen.dev/pkg/zigtestgen/internal/model"
)

const listSource = `const std = @import("std");

pub const List = struct {
    items: std.ArrayListUnmanaged(u32) = .empty,
};

pub fn push(list: *List, value: u32) void {
    _ = list;
    _ = value;
}

pub fn pop(list: *List) ?u32 {
    _ = list;
    return null;
}

pub fn clear(list: *List) void {
    _ = list;
}
`

const listTests = `test "push adds a value" {
    var list = List.init();
    module.push(&list, 1);
}

test "pop returns null when empty" {
    var list = List.init();
    try testing.expect(module.pop(&list) == null);
}

test "clear empties the list" {
    var list = List.init();
    module.clear(&list);
}`

type workflowFixture struct {
	root   string
	output *bytes.Buffer
	runner adapter.TestRunnerAdapter
}

func newFixture(t *testing.T) *workflowFixture {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "list.zig"), []byte(listSource), 0o600))

	return &workflowFixture{root: root, output: &bytes.Buffer{}, runner: adapter.NewLocalTestRunnerAdapter()}
}

func (f *workflowFixture) testPath() string {
	return filepath.Join(f.root, "tests", "test_list.zig")
}

func (f *workflowFixture) reportsDir() string {
	return filepath.Join(f.root, "reports")
}

func (f *workflowFixture) writeTests(t *testing.T, text string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(f.testPath()), 0o750))
	require.NoError(t, os.WriteFile(f.testPath(), []byte(text), 0o600))
}

func (f *workflowFixture) readTests(t *testing.T) string {
	t.Helper()

	content, err := os.ReadFile(f.testPath())
	require.NoError(t, err)

	return string(content)
}

func (f *workflowFixture) workflow(factory domain.OrchestratorFactory) domain.Workflow {
	cmd := &cobra.Command{}
	cmd.SetOut(f.output)

	return domain.NewWorkflow(
		adapter.NewLocalSourceFSAdapter(),
		adapter.NewReportStore(),
		adapter.NewTypeMapLoader(),
		f.runner,
		controller.NewSimpleUI(cmd),
		domain.NewSourceAnalyzer(),
		domain.NewCoverageTracker(),
		factory,
	)
}

func (f *workflowFixture) runArgs() domain.RunArgs {
	settings := domain.DefaultSettings()
	settings.Generation.Analyze = false

	return domain.RunArgs{
		Paths:    []m.Path{m.Path(f.root)},
		Reports:  m.Path(f.reportsDir()),
		Settings: settings,
	}
}

func staticFactory(orchestrator domain.GenerationOrchestrator) domain.OrchestratorFactory {
	return func(domain.Settings) (domain.GenerationOrchestrator, error) {
		return orchestrator, nil
	}
}

func unusedFactory(t *testing.T) domain.OrchestratorFactory {
	return func(domain.Settings) (domain.GenerationOrchestrator, error) {
		t.Error("backend must not be set up")
		return nil, errors.New("unexpected")
	}
}

func TestWorkflow_GenerateWritesNewTestFile(t *testing.T) {
	f := newFixture(t)

	orchestrator := domainmocks.NewMockGenerationOrchestrator(t)
	orchestrator.On("Generate", mock.Anything, mock.MatchedBy(func(req domain.GenerationRequest) bool {
		return req.Mode == m.StageGenerate && len(req.Coverage.Untested) == 4 && !req.Analyze
	})).Return(domain.GenerationResult{Code: listTests, Submissions: 1}, nil).Once()

	err := f.workflow(staticFactory(orchestrator)).Generate(context.Background(), f.runArgs())
	require.NoError(t, err)

	text := f.readTests(t)
	assert.True(t, strings.HasPrefix(text, "//! Auto-generated unit tests for list.zig\n"))
	assert.Contains(t, text, `const module = @import("../list.zig");`)
	assert.Contains(t, text, "var list = module.List.init();", "bare exported types are qualified")

	module := domain.NewSourceAnalyzer().Analyze(nil, listSource)
	coverage := domain.NewCoverageTracker().Coverage(module, text, "module")
	assert.Empty(t, coverage.Untested)

	report, err := os.ReadFile(filepath.Join(f.reportsDir(), "generate.md"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "✓ list.zig (written)")

	assert.Contains(t, f.output.String(), "[PROCESSING] list.zig")
	assert.Contains(t, f.output.String(), "Report saved to")
}

func TestWorkflow_GenerateSkipsExistingTests(t *testing.T) {
	f := newFixture(t)
	existing := "test \"push\" {\n    module.push(undefined, 1);\n}\n"
	f.writeTests(t, existing)

	orchestrator := domainmocks.NewMockGenerationOrchestrator(t)

	err := f.workflow(staticFactory(orchestrator)).Generate(context.Background(), f.runArgs())
	require.NoError(t, err)

	assert.Equal(t, existing, f.readTests(t))
	assert.Contains(t, f.output.String(), "list.zig: skipped (already has tests)")
	orchestrator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestWorkflow_GenerateRegenerateOverwritesWithBackup(t *testing.T) {
	f := newFixture(t)
	existing := "test \"push\" {\n    module.push(undefined, 1);\n}\n"
	f.writeTests(t, existing)

	orchestrator := domainmocks.NewMockGenerationOrchestrator(t)
	orchestrator.On("Generate", mock.Anything, mock.Anything).
		Return(domain.GenerationResult{Code: listTests}, nil).Once()

	args := f.runArgs()
	args.Settings.Run.Regenerate = true

	require.NoError(t, f.workflow(staticFactory(orchestrator)).Generate(context.Background(), args))

	assert.Contains(t, f.readTests(t), `test "clear empties the list"`)

	backups, err := os.ReadDir(filepath.Join(f.root, "tests", ".backups"))
	require.NoError(t, err)
	require.Len(t, backups, 1)

	copied, err := os.ReadFile(filepath.Join(f.root, "tests", ".backups", backups[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, existing, string(copied))
}

func TestWorkflow_GenerateFlagsTruncatedOutput(t *testing.T) {
	f := newFixture(t)

	truncated := strings.Repeat("test \"push\" {\n", 10) + strings.Repeat("}\n", 8)

	orchestrator := domainmocks.NewMockGenerationOrchestrator(t)
	orchestrator.On("Generate", mock.Anything, mock.Anything).
		Return(domain.GenerationResult{Code: truncated}, nil).Once()

	require.NoError(t, f.workflow(staticFactory(orchestrator)).Generate(context.Background(), f.runArgs()))

	assert.Contains(t, f.readTests(t), truncated, "flagged output is still written")
	assert.Contains(t, f.output.String(), "FLAGGED {10/8}")

	report, err := os.ReadFile(filepath.Join(f.reportsDir(), "generate.md"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "## Flagged files")
	assert.Contains(t, string(report), f.testPath()+" {10/8}")
}

func TestWorkflow_GenerateFailureIsReported(t *testing.T) {
	f := newFixture(t)

	orchestrator := domainmocks.NewMockGenerationOrchestrator(t)
	orchestrator.On("Generate", mock.Anything, mock.Anything).
		Return(domain.GenerationResult{Submissions: 2}, domain.ErrCredentialsExhausted).Once()

	err := f.workflow(staticFactory(orchestrator)).Generate(context.Background(), f.runArgs())
	require.ErrorIs(t, err, domain.ErrFailedFiles)

	_, statErr := os.Stat(f.testPath())
	assert.True(t, os.IsNotExist(statErr))

	report, readErr := os.ReadFile(filepath.Join(f.reportsDir(), "generate.md"))
	require.NoError(t, readErr)
	assert.Contains(t, string(report), "✗ list.zig (failed): "+domain.ErrCredentialsExhausted.Error())
}

func TestWorkflow_GenerateWithoutCredentials(t *testing.T) {
	f := newFixture(t)

	factory := domain.NewOrchestratorFactory(func(string) string { return "" })

	err := f.workflow(factory).Generate(context.Background(), f.runArgs())
	require.ErrorIs(t, err, domain.ErrNoCredentials)

	_, statErr := os.Stat(f.reportsDir())
	assert.True(t, os.IsNotExist(statErr))
}

func TestWorkflow_InvalidSettings(t *testing.T) {
	f := newFixture(t)

	args := f.runArgs()
	args.Settings.Run.Parallel = 0

	err := f.workflow(unusedFactory(t)).Generate(context.Background(), args)
	require.ErrorIs(t, err, domain.ErrInvalidSettings)
}

func TestWorkflow_FillAppendsAfterSeparator(t *testing.T) {
	f := newFixture(t)
	existing := "const std = @import(\"std\");\n\ntest \"push\" {\n    module.push(undefined, 1);\n}\n"
	f.writeTests(t, existing)

	added := "test \"pop and clear\" {\n    var list = module.List{};\n    _ = module.pop(&list);\n    module.clear(&list);\n}"

	orchestrator := domainmocks.NewMockGenerationOrchestrator(t)
	orchestrator.On("Generate", mock.Anything, mock.MatchedBy(func(req domain.GenerationRequest) bool {
		var names []string
		for _, sym := range req.Coverage.Untested {
			names = append(names, sym.Name)
		}

		return req.Mode == m.StageFill && strings.Join(names, ",") == "List,pop,clear"
	})).Return(domain.GenerationResult{Code: added}, nil).Once()

	require.NoError(t, f.workflow(staticFactory(orchestrator)).Fill(context.Background(), f.runArgs()))

	assert.Equal(t, strings.TrimRight(existing, "\n")+domain.FillSeparator+added+"\n", f.readTests(t))
}

func TestWorkflow_FillCreatesMissingFile(t *testing.T) {
	f := newFixture(t)

	orchestrator := domainmocks.NewMockGenerationOrchestrator(t)
	orchestrator.On("Generate", mock.Anything, mock.Anything).
		Return(domain.GenerationResult{Code: listTests}, nil).Once()

	require.NoError(t, f.workflow(staticFactory(orchestrator)).Fill(context.Background(), f.runArgs()))

	text := f.readTests(t)
	assert.True(t, strings.HasPrefix(text, "//! Auto-generated unit tests for list.zig\n"))
	assert.NotContains(t, text, domain.FillSeparator)
}

func TestWorkflow_FillSkipsFullyTestedModule(t *testing.T) {
	f := newFixture(t)
	f.writeTests(t, "test \"List push pop clear\" {}\n")

	orchestrator := domainmocks.NewMockGenerationOrchestrator(t)

	require.NoError(t, f.workflow(staticFactory(orchestrator)).Fill(context.Background(), f.runArgs()))

	assert.Contains(t, f.output.String(), "skipped (no untested symbols)")
}

const unrepairedTests = `test "buffer" {
    const alloc = std.testing.allocator;
    var list = std.ArrayListUnmanaged(u32){};
    defer list.deinit();
    try list.append(alloc, 1);
}
`

func TestWorkflow_RepairDryRunShowsDiff(t *testing.T) {
	f := newFixture(t)
	f.writeTests(t, unrepairedTests)

	args := f.runArgs()
	args.DryRun = true

	require.NoError(t, f.workflow(unusedFactory(t)).Repair(context.Background(), args))

	assert.Equal(t, unrepairedTests, f.readTests(t), "dry run never writes")

	out := f.output.String()
	assert.Contains(t, out, "--- "+f.testPath())
	assert.Contains(t, out, "-    defer list.deinit();")
	assert.Contains(t, out, "+    defer list.deinit(alloc);")
	assert.Contains(t, out, "unchanged (dry run) [cleanup]")

	_, err := os.Stat(f.reportsDir())
	assert.True(t, os.IsNotExist(err), "dry run saves no report")
}

func TestWorkflow_RepairInPlace(t *testing.T) {
	f := newFixture(t)
	f.writeTests(t, unrepairedTests)

	require.NoError(t, f.workflow(unusedFactory(t)).Repair(context.Background(), f.runArgs()))

	assert.Contains(t, f.readTests(t), "defer list.deinit(alloc);")

	backups, err := os.ReadDir(filepath.Join(f.root, "tests", ".backups"))
	require.NoError(t, err)
	assert.Len(t, backups, 1)

	report, err := os.ReadFile(filepath.Join(f.reportsDir(), "repair.md"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "✓ list.zig (written)")

	f.output.Reset()
	require.NoError(t, f.workflow(unusedFactory(t)).Repair(context.Background(), f.runArgs()))
	assert.Contains(t, f.output.String(), "list.zig: unchanged", "a repaired file is stable")
}

func TestWorkflow_RepairVerifyPasses(t *testing.T) {
	f := newFixture(t)
	f.writeTests(t, listTests)

	runner := adaptermocks.NewMockTestRunnerAdapter(t)
	runner.On("RunZigTest", mock.Anything, "zig", m.Path(f.root), m.Path(f.testPath())).
		Return("All 3 tests passed.\n", nil).Once()
	f.runner = runner

	args := f.runArgs()
	args.Settings.Verify.Enabled = true

	require.NoError(t, f.workflow(unusedFactory(t)).Repair(context.Background(), args))
	assert.Contains(t, f.output.String(), "✓ list.zig: written")
}

func TestWorkflow_VerifyFailureFailsModule(t *testing.T) {
	f := newFixture(t)
	f.writeTests(t, listTests)

	runner := adaptermocks.NewMockTestRunnerAdapter(t)
	runner.On("RunZigTest", mock.Anything, "zig", mock.Anything, mock.Anything).
		Return("\ntests/test_list.zig:2:16: error: use of undeclared identifier 'List'\n", errors.New("exit status 1")).Once()
	f.runner = runner

	args := f.runArgs()
	args.Settings.Verify.Enabled = true

	err := f.workflow(unusedFactory(t)).Repair(context.Background(), args)
	require.ErrorIs(t, err, domain.ErrFailedFiles)

	assert.Contains(t, f.output.String(), "zig test failed")
	assert.Contains(t, f.output.String(), "use of undeclared identifier 'List'")
	assert.Contains(t, f.readTests(t), "module.List.init()", "the repaired file stays on disk")

	report, err := os.ReadFile(filepath.Join(f.reportsDir(), "repair.md"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "✗ list.zig (failed)")
}

func TestWorkflow_VerifySkippedOnDryRun(t *testing.T) {
	f := newFixture(t)
	f.writeTests(t, listTests)
	f.runner = adaptermocks.NewMockTestRunnerAdapter(t)

	args := f.runArgs()
	args.DryRun = true
	args.Settings.Verify.Enabled = true

	require.NoError(t, f.workflow(unusedFactory(t)).Repair(context.Background(), args))
}

func TestWorkflow_RepairSkipsMissingTestFile(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.workflow(unusedFactory(t)).Repair(context.Background(), f.runArgs()))

	assert.Contains(t, f.output.String(), "skipped (no test file)")
}

func TestWorkflow_List(t *testing.T) {
	f := newFixture(t)
	f.writeTests(t, "test \"push\" {}\n")

	settings := domain.DefaultSettings()

	err := f.workflow(unusedFactory(t)).List(context.Background(), domain.ListArgs{
		Paths:    []m.Path{m.Path(f.root)},
		Settings: settings,
	})
	require.NoError(t, err)

	out := f.output.String()
	assert.Contains(t, out, "list.zig")
	assert.Contains(t, out, "List, pop, clear")
	assert.NotContains(t, out, "push,")
}

func TestWorkflow_ListBadPath(t *testing.T) {
	f := newFixture(t)

	err := f.workflow(unusedFactory(t)).List(context.Background(), domain.ListArgs{
		Paths:    []m.Path{m.Path(filepath.Join(f.root, "missing"))},
		Settings: domain.DefaultSettings(),
	})
	require.Error(t, err)

	assert.Contains(t, f.output.String(), "list error:")
}
