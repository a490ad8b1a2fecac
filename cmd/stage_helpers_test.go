package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"

	"zigtestgen.dev/pkg/zigtestgen/internal/domain"
)

// newStageTestCmd returns a root carrying sub, with the workflow swapped for w
// and the stage flag bindings reset once the test ends.
func newStageTestCmd(t *testing.T, sub *cobra.Command, w domain.Workflow) *cobra.Command {
	t.Helper()

	cmd := newRootCmd()
	cmd.AddCommand(sub)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	originalWorkflow := workflow
	workflow = w

	t.Cleanup(func() {
		workflow = originalWorkflow

		unparsed := &cobra.Command{}
		configureGenerateFlags(unparsed)
		unparsed.Flags().Bool(looseFlagName, false, "")
		bindStageFlags(unparsed, nil)
	})

	return cmd
}
