package domain_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zigtestgen.dev/pkg/zigtestgen/internal/adapter"
	"zigtestgen.dev/pkg/zigtestgen/internal/domain"
	m "zigtestgen.dev/pkg/zigtestgen/internal/model"
)

// These tests run the read-only stages against the Zig fixture checked in
// under examples/ai instead of embedding sources in strings.

func exampleFixture(t *testing.T) *workflowFixture {
	t.Helper()

	root := filepath.Join("..", "..", "examples", "ai")
	_, err := os.Stat(filepath.Join(root, "history.zig"))
	require.NoError(t, err)

	return &workflowFixture{root: root, output: &bytes.Buffer{}, runner: adapter.NewLocalTestRunnerAdapter()}
}

func TestExamples_List(t *testing.T) {
	f := exampleFixture(t)

	err := f.workflow(unusedFactory(t)).List(context.Background(), domain.ListArgs{
		Paths:    []m.Path{m.Path(f.root)},
		Settings: domain.DefaultSettings(),
	})
	require.NoError(t, err)

	out := f.output.String()
	assert.Contains(t, out, "history.zig")
	assert.Contains(t, out, "Kind")
}

func TestExamples_RepairDryRun(t *testing.T) {
	f := exampleFixture(t)

	before, err := os.ReadFile(filepath.Join(f.root, "tests", "test_history.zig"))
	require.NoError(t, err)

	args := f.runArgs()
	args.DryRun = true

	require.NoError(t, f.workflow(unusedFactory(t)).Repair(context.Background(), args))

	out := f.output.String()
	assert.Contains(t, out, "-    defer buffer.deinit();")
	assert.Contains(t, out, "+    defer buffer.deinit(allocator);")
	assert.Contains(t, out, "+    var manager = module.HistoryManager.init(4);")
	assert.Contains(t, out, "dry run")

	after, err := os.ReadFile(filepath.Join(f.root, "tests", "test_history.zig"))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after), "a dry run leaves the fixture untouched")
}
