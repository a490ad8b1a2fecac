package adapter

import (
	"bytes"
	"context"
	"os/exec"

	m "zigtestgen.dev/pkg/zigtestgen/internal/model"
)

// TestRunnerAdapter abstracts running a generated test file through the Zig toolchain.
type TestRunnerAdapter interface {
	// RunZigTest runs '<zig> test <testFile>' from workDir.
	// Returns the combined stdout/stderr output and any error.
	RunZigTest(ctx context.Context, zig string, workDir, testFile m.Path) (output string, err error)
}

// LocalTestRunnerAdapter provides a concrete implementation using os/exec.
// The deadline comes from ctx.
type LocalTestRunnerAdapter struct{}

// NewLocalTestRunnerAdapter constructs a LocalTestRunnerAdapter.
func NewLocalTestRunnerAdapter() *LocalTestRunnerAdapter {
	return &LocalTestRunnerAdapter{}
}

// RunZigTest runs 'zig test' on a single test file.
func (a *LocalTestRunnerAdapter) RunZigTest(ctx context.Context, zig string, workDir, testFile m.Path) (string, error) {
	cmd := exec.CommandContext(ctx, zig, "test", string(testFile))
	cmd.Dir = string(workDir)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	output := stdout.String() + stderr.String()

	return output, err
}
