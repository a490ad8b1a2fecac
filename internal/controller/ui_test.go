package controller

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	m "zigtestgen.dev/pkg/zigtestgen/internal/model"
)

func TestNewStartConfig(t *testing.T) {
	assert.Equal(t, StartConfig{mode: ModeRun}, newStartConfig())
	assert.Equal(t, StartConfig{mode: ModeList}, newStartConfig(WithListMode()))
	assert.Equal(t, StartConfig{mode: ModeRun, stage: m.StageGenerate}, newStartConfig(WithRunMode(m.StageGenerate)))
}

func TestNewUI(t *testing.T) {
	cmd := &cobra.Command{}

	assert.IsType(t, &SimpleUI{}, NewUI(cmd, false))
	assert.IsType(t, &TUI{}, NewUI(cmd, true))
}

func TestIsTTY(t *testing.T) {
	assert.False(t, IsTTY(nil))
}
