package adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	m "zigtestgen.dev/pkg/zigtestgen/internal/model"
)

// ReportStore persists the summary of a stage run.
type ReportStore interface {
	SaveReport(ctx context.Context, dir m.Path, summary m.Summary) (m.Path, error)
}

// MarkdownReportStore writes one <stage>.md file per stage into the reports directory.
type MarkdownReportStore struct{}

// NewReportStore returns the markdown ReportStore.
func NewReportStore() *MarkdownReportStore {
	return &MarkdownReportStore{}
}

// SaveReport renders summary and writes it to <dir>/<stage>.md, replacing any
// previous report of the same stage.
func (s *MarkdownReportStore) SaveReport(ctx context.Context, dir m.Path, summary m.Summary) (m.Path, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}

	path := filepath.Join(string(dir), string(summary.Stage)+".md")
	if err := os.WriteFile(path, []byte(RenderReport(summary)), 0o600); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	return m.Path(path), nil
}

// RenderReport formats a summary as markdown.
func RenderReport(summary m.Summary) string {
	var b strings.Builder

	succeeded, failed := summary.Counts()

	fmt.Fprintf(&b, "# Test %s report\n\n", summary.Stage)
	fmt.Fprintf(&b, "- Run: %s\n", summary.RunID)
	fmt.Fprintf(&b, "- Started: %s\n", summary.Started.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Duration: %s\n\n", summary.Finished.Sub(summary.Started).Round(time.Millisecond))

	b.WriteString("## Files processed\n\n")

	for _, r := range summary.Results {
		marker := "✓"
		if !r.Status.Success() {
			marker = "✗"
		}

		fmt.Fprintf(&b, "- %s %s (%s", marker, r.Source, r.Status)

		if r.Reason != "" {
			fmt.Fprintf(&b, ", %s", r.Reason)
		}

		b.WriteString(")")

		if r.Err != "" {
			fmt.Fprintf(&b, ": %s", r.Err)
		}

		b.WriteString("\n")
	}

	if flagged := summary.Flagged(); len(flagged) > 0 {
		b.WriteString("\n## Flagged files\n\n")
		b.WriteString("Delimiter counts do not balance; the output is likely truncated.\n\n")

		for _, r := range flagged {
			fmt.Fprintf(&b, "- %s %s\n", r.TestFile, r.Delimiters)
		}
	}

	b.WriteString("\n## Summary\n\n")
	fmt.Fprintf(&b, "- Total files: %d\n", len(summary.Results))
	fmt.Fprintf(&b, "- Successful: %d\n", succeeded)
	fmt.Fprintf(&b, "- Failed: %d\n", failed)
	fmt.Fprintf(&b, "- Flagged: %d\n", len(summary.Flagged()))

	return b.String()
}
