package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "zigtestgen.dev/pkg/zigtestgen/internal/model"
)

const maxUntestedNames = 4

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd *cobra.Command
	mu  sync.Mutex
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (s *SimpleUI) Close(_ context.Context) {}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(_ context.Context) {}

// DisplayRunInfo announces a stage run.
func (s *SimpleUI) DisplayRunInfo(ctx context.Context, stage m.Stage, modules int, parallel int) {
	if ctx.Err() != nil {
		return
	}

	s.printf("Running %s on %d module(s) with %d worker(s)\n", stage, modules, parallel)
}

// DisplayStartingFile shows the module about to be processed.
func (s *SimpleUI) DisplayStartingFile(ctx context.Context, source m.File) {
	if ctx.Err() != nil {
		return
	}

	s.printf("[PROCESSING] %s\n", source.ShortPath)
}

// DisplayCompletedFile shows the outcome of one module.
func (s *SimpleUI) DisplayCompletedFile(ctx context.Context, result m.FileResult) {
	if ctx.Err() != nil {
		return
	}

	s.printf("%s\n", formatResultLine(result))
}

// DisplayDiff prints a unified diff of a dry-run repair.
func (s *SimpleUI) DisplayDiff(ctx context.Context, path m.Path, diff string) {
	if ctx.Err() != nil || diff == "" {
		return
	}

	s.printf("--- %s\n%s\n", path, diff)
}

// DisplaySummary prints the totals table of a run.
func (s *SimpleUI) DisplaySummary(ctx context.Context, summary m.Summary, reportPath m.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderSummaryTable(summary))

	if flagged := summary.Flagged(); len(flagged) > 0 {
		s.printf("\nFlagged files (likely truncated):\n")

		for _, r := range flagged {
			s.printf("  %s %s\n", r.TestFile, r.Delimiters)
		}
	}

	if reportPath != "" {
		s.printf("\nReport saved to %s\n", reportPath)
	}

	return nil
}

// DisplayCoverage prints the per-module coverage table of the list command.
func (s *SimpleUI) DisplayCoverage(ctx context.Context, rows []m.ModuleCoverage, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if err != nil {
		s.printf("list error: %v\n", err)
		return err
	}

	s.printf("\n%s", renderCoverageTable(rows))

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func formatResultLine(result m.FileResult) string {
	var b strings.Builder

	marker := "✓"
	if !result.Status.Success() {
		marker = "✗"
	}

	fmt.Fprintf(&b, "  %s %s: %s", marker, result.Source, result.Status)

	if result.Reason != "" {
		fmt.Fprintf(&b, " (%s)", result.Reason)
	}

	if len(result.Repairs) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(result.Repairs, ", "))
	}

	if result.Flagged {
		fmt.Fprintf(&b, " FLAGGED %s", result.Delimiters)
	}

	if result.Err != "" {
		fmt.Fprintf(&b, ": %s", result.Err)
	}

	return b.String()
}

func renderSummaryTable(summary m.Summary) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Source", "Status", "Untested", "Repairs"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_LEFT})

	for _, r := range summary.Results {
		table.Append([]string{
			string(r.Source),
			r.Status.String(),
			fmt.Sprintf("%d", r.Untested),
			strings.Join(r.Repairs, ","),
		})
	}

	succeeded, failed := summary.Counts()
	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(summary.Results)),
		fmt.Sprintf("ok %d / failed %d", succeeded, failed),
		"",
		fmt.Sprintf("flagged %d", len(summary.Flagged())),
	})

	table.Render()

	return tableBuffer.String()
}

func renderCoverageTable(rows []m.ModuleCoverage) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Functions", "Tested", "Untested", "Missing"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER, tablewriter.ALIGN_LEFT,
	})

	totalUntested := 0

	for _, row := range rows {
		table.Append([]string{
			string(row.Source),
			fmt.Sprintf("%d", row.Functions),
			fmt.Sprintf("%d", row.Tested),
			fmt.Sprintf("%d", len(row.Untested)),
			abbreviate(row.Untested, maxUntestedNames),
		})

		totalUntested += len(row.Untested)
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(rows)),
		"",
		"",
		fmt.Sprintf("%d", totalUntested),
		"",
	})

	table.Render()

	return tableBuffer.String()
}

func abbreviate(names []string, limit int) string {
	if len(names) <= limit {
		return strings.Join(names, ", ")
	}

	return fmt.Sprintf("%s, +%d more", strings.Join(names[:limit], ", "), len(names)-limit)
}
