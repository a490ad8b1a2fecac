// Package controller provides output adapters for displaying test generation progress and results.
package controller

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "zigtestgen.dev/pkg/zigtestgen/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeList StartMode = iota
	ModeRun
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode  StartMode
	stage m.Stage
}

// WithListMode sets the UI to the read-only coverage listing.
func WithListMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeList
	}
}

// WithRunMode sets the UI to stage execution mode.
func WithRunMode(stage m.Stage) StartOption {
	return func(c *StartConfig) {
		c.mode = ModeRun
		c.stage = stage
	}
}

func newStartConfig(options ...StartOption) StartConfig {
	config := StartConfig{mode: ModeRun}
	for _, option := range options {
		option(&config)
	}

	return config
}

// UI defines how workflows report progress and results.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context)
	DisplayRunInfo(ctx context.Context, stage m.Stage, modules int, parallel int)
	DisplayStartingFile(ctx context.Context, source m.File)
	DisplayCompletedFile(ctx context.Context, result m.FileResult)
	DisplayDiff(ctx context.Context, path m.Path, diff string)
	DisplaySummary(ctx context.Context, summary m.Summary, reportPath m.Path) error
	DisplayCoverage(ctx context.Context, rows []m.ModuleCoverage, err error) error
}

// NewUI picks the TUI for terminals and SimpleUI otherwise.
func NewUI(cmd *cobra.Command, isTTY bool) UI {
	if isTTY {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}
