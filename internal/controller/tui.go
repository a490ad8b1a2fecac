package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	m "zigtestgen.dev/pkg/zigtestgen/internal/model"
)

// Reserved lines around the pager body: header box, blank, footer help.
const pagerReservedLines = 5

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#20B9B4")).
			Border(lipgloss.DoubleBorder()).
			Padding(0, 2)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#2CD7C7"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F4D03F"))
	mutedStyle = lipgloss.NewStyle().Faint(true)
)

// TUI implements UI with styled terminal output and a Bubble Tea pager for
// results taller than the terminal.
type TUI struct {
	output io.Writer
	mu     sync.Mutex
	config StartConfig
	height int
	width  int
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start records the mode and reads the terminal size.
func (p *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.config = newStartConfig(options...)

	if f, ok := p.output.(*os.File); ok {
		width, height, err := term.GetSize(int(f.Fd()))
		if err == nil {
			p.width = width
			p.height = height
		}
	}

	title := "zigtestgen"
	if p.config.mode == ModeRun && p.config.stage != "" {
		title = fmt.Sprintf("zigtestgen %s", p.config.stage)
	}

	p.print(headerStyle.Render(title) + "\n")

	return nil
}

// Close finalizes the UI.
func (p *TUI) Close(_ context.Context) {}

// Wait blocks until the UI is closed (no-op, output is synchronous).
func (p *TUI) Wait(_ context.Context) {}

// DisplayRunInfo announces a stage run.
func (p *TUI) DisplayRunInfo(ctx context.Context, stage m.Stage, modules int, parallel int) {
	if ctx.Err() != nil {
		return
	}

	p.print(fmt.Sprintf("  %s %d module(s), %d worker(s)\n\n",
		mutedStyle.Render(string(stage)+":"), modules, parallel))
}

// DisplayStartingFile shows the module about to be processed.
func (p *TUI) DisplayStartingFile(ctx context.Context, source m.File) {
	if ctx.Err() != nil {
		return
	}

	p.print(mutedStyle.Render(fmt.Sprintf("  … %s", source.ShortPath)) + "\n")
}

// DisplayCompletedFile shows the outcome of one module.
func (p *TUI) DisplayCompletedFile(ctx context.Context, result m.FileResult) {
	if ctx.Err() != nil {
		return
	}

	p.print(styleResultLine(result) + "\n")
}

// DisplayDiff prints a unified diff with added and removed lines colored.
func (p *TUI) DisplayDiff(ctx context.Context, path m.Path, diff string) {
	if ctx.Err() != nil || diff == "" {
		return
	}

	var b strings.Builder

	b.WriteString(warnStyle.Render("--- "+string(path)) + "\n")

	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			b.WriteString(okStyle.Render(line))
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			b.WriteString(failStyle.Render(line))
		default:
			b.WriteString(line)
		}

		b.WriteString("\n")
	}

	p.print(b.String())
}

// DisplaySummary shows the result table, paging it when it does not fit.
func (p *TUI) DisplaySummary(ctx context.Context, summary m.Summary, reportPath m.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder

	b.WriteString(renderSummaryTable(summary))

	if flagged := summary.Flagged(); len(flagged) > 0 {
		b.WriteString("\n" + warnStyle.Render("  Flagged files (likely truncated):") + "\n")

		for _, r := range flagged {
			fmt.Fprintf(&b, "  %s %s\n", r.TestFile, r.Delimiters)
		}
	}

	if reportPath != "" {
		fmt.Fprintf(&b, "\n  📄 Report saved to %s\n", reportPath)
	}

	return p.show(fmt.Sprintf("%s summary", summary.Stage), b.String())
}

// DisplayCoverage shows the per-module coverage table, paging it when needed.
func (p *TUI) DisplayCoverage(ctx context.Context, rows []m.ModuleCoverage, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if err != nil {
		p.print(failStyle.Render(fmt.Sprintf("  list error: %v", err)) + "\n")
		return err
	}

	if len(rows) == 0 {
		p.print("  📭 No source files found\n")
		return nil
	}

	return p.show("coverage", renderCoverageTable(rows))
}

func (p *TUI) show(title, content string) error {
	model := newPagerModel(title, content, p.width, p.height)

	if !model.needsPagination() {
		p.print("\n" + content)
		return nil
	}

	program := tea.NewProgram(model, tea.WithOutput(p.output), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

func (p *TUI) print(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, _ = fmt.Fprint(p.output, s)
}

func styleResultLine(result m.FileResult) string {
	line := formatResultLine(result)

	switch {
	case !result.Status.Success():
		return failStyle.Render(line)
	case result.Flagged:
		return warnStyle.Render(line)
	case result.Status == m.StatusWritten:
		return okStyle.Render(line)
	default:
		return mutedStyle.Render(line)
	}
}

// pagerModel is a scrollable view over pre-rendered content.
type pagerModel struct {
	title    string
	content  string
	viewport viewport.Model
	height   int
	width    int
	quitting bool
}

func newPagerModel(title, content string, width, height int) pagerModel {
	pm := pagerModel{
		title:   title,
		content: content,
		width:   width,
		height:  height,
	}
	pm.viewport = viewport.New(width, pm.bodyHeight())
	pm.viewport.SetContent(content)

	return pm
}

func (pm pagerModel) bodyHeight() int {
	if pm.height <= pagerReservedLines {
		return 1
	}

	return pm.height - pagerReservedLines
}

func (pm pagerModel) lineCount() int {
	return strings.Count(strings.TrimRight(pm.content, "\n"), "\n") + 1
}

// needsPagination returns true if the content is taller than the terminal.
func (pm pagerModel) needsPagination() bool {
	if pm.height == 0 || pm.content == "" {
		return false
	}

	return pm.lineCount() > pm.bodyHeight()
}

func (pm pagerModel) Init() tea.Cmd {
	return nil
}

func (pm pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		pm.height = msg.Height
		pm.width = msg.Width
		pm.viewport.Width = msg.Width
		pm.viewport.Height = pm.bodyHeight()

		return pm, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			pm.quitting = true
			return pm, tea.Quit
		case "g", "home":
			pm.viewport.GotoTop()
			return pm, nil
		case "G", "end":
			pm.viewport.GotoBottom()
			return pm, nil
		}
	}

	var cmd tea.Cmd
	pm.viewport, cmd = pm.viewport.Update(msg)

	return pm, cmd
}

func (pm pagerModel) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("zigtestgen " + pm.title))
	b.WriteString("\n")
	b.WriteString(pm.viewport.View())
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %3.f%% | ↑/k: up | ↓/j: down | g: top | G: bottom | q: quit",
		pm.viewport.ScrollPercent()*100)))

	return b.String()
}
