package adapter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "zigtestgen.dev/pkg/zigtestgen/internal/model"
)

func sampleSummary() m.Summary {
	started := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	return m.Summary{
		RunID:    "run-1",
		Stage:    m.StageRepair,
		Started:  started,
		Finished: started.Add(1500 * time.Millisecond),
		Results: []m.FileResult{
			{Source: "client.zig", TestFile: "tests/test_client.zig", Status: m.StatusWritten},
			{
				Source:     "history.zig",
				TestFile:   "tests/test_history.zig",
				Status:     m.StatusWritten,
				Flagged:    true,
				Delimiters: m.DelimiterReport{OpenBraces: 10, CloseBraces: 8},
			},
			{Source: "net.zig", Status: m.StatusSkipped, Reason: "no test file"},
			{Source: "parser.zig", Status: m.StatusFailed, Err: "read failed: parser.zig"},
		},
	}
}

func TestRenderReport(t *testing.T) {
	report := RenderReport(sampleSummary())

	assert.True(t, strings.HasPrefix(report, "# Test repair report\n"))
	assert.Contains(t, report, "- Run: run-1\n")
	assert.Contains(t, report, "- Duration: 1.5s\n")
	assert.Contains(t, report, "- ✓ client.zig (written)\n")
	assert.Contains(t, report, "- ✓ net.zig (skipped, no test file)\n")
	assert.Contains(t, report, "- ✗ parser.zig (failed): read failed: parser.zig\n")
	assert.Contains(t, report, "## Flagged files")
	assert.Contains(t, report, "- tests/test_history.zig {10/8} (0/0) [0/0]\n")
	assert.Contains(t, report, "- Total files: 4\n")
	assert.Contains(t, report, "- Successful: 3\n")
	assert.Contains(t, report, "- Failed: 1\n")
	assert.Contains(t, report, "- Flagged: 1\n")
}

func TestRenderReport_NoFlagged(t *testing.T) {
	summary := sampleSummary()
	summary.Results = summary.Results[:1]

	assert.NotContains(t, RenderReport(summary), "## Flagged files")
}

func TestMarkdownReportStore_SaveReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	store := NewReportStore()

	path, err := store.SaveReport(context.Background(), m.Path(dir), sampleSummary())
	require.NoError(t, err)
	assert.Equal(t, m.Path(filepath.Join(dir, "repair.md")), path)

	first, err := os.ReadFile(string(path))
	require.NoError(t, err)
	assert.Equal(t, RenderReport(sampleSummary()), string(first))

	summary := sampleSummary()
	summary.RunID = "run-2"

	_, err = store.SaveReport(context.Background(), m.Path(dir), summary)
	require.NoError(t, err)

	second, err := os.ReadFile(string(path))
	require.NoError(t, err)
	assert.Contains(t, string(second), "- Run: run-2\n", "a stage report replaces the previous one")
}

func TestMarkdownReportStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewReportStore().SaveReport(ctx, m.Path(t.TempDir()), sampleSummary())
	require.ErrorIs(t, err, context.Canceled)
}
