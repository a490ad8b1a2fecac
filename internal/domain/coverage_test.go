package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "zigtestgen.dev/pkg/zigtestgen/internal/model"
)

func keys(set map[string]struct{}) []string {
	return sortedKeys(set)
}

func TestCoverageTracker_TrackedSymbols(t *testing.T) {
	tracker := NewCoverageTracker()

	t.Run("title words and qualified calls", func(t *testing.T) {
		text := `test "HistoryManager init - empty state" {
    var mgr = module.HistoryManager.init();
    try module.roleName(.user);
}
`
		tracked := tracker.TrackedSymbols(text, "module")

		assert.Equal(t, []string{"empty", "historymanager", "init", "rolename", "state"}, keys(tracked))
	})

	t.Run("several titles on one line stay separate", func(t *testing.T) {
		text := `test "add" {} test "last entry" {}`

		tracked := tracker.TrackedSymbols(text, "module")

		assert.Equal(t, []string{"add", "entry", "last"}, keys(tracked))
	})

	t.Run("calls under another namespace are ignored", func(t *testing.T) {
		text := "test \"x\" {\n    other.add();\n    module_extra.add();\n}\n"

		tracked := tracker.TrackedSymbols(text, "module")

		assert.Equal(t, []string{"x"}, keys(tracked))
	})

	t.Run("empty namespace only uses titles", func(t *testing.T) {
		tracked := tracker.TrackedSymbols("test \"a b\" { module.c(); }", "")

		assert.Equal(t, []string{"a", "b"}, keys(tracked))
	})

	t.Run("empty text", func(t *testing.T) {
		assert.Empty(t, tracker.TrackedSymbols("", "module"))
	})
}

func TestCoverageTracker_Coverage(t *testing.T) {
	tracker := NewCoverageTracker()
	module := NewSourceAnalyzer().Analyze(nil, historySource)

	t.Run("nothing tested", func(t *testing.T) {
		coverage := tracker.Coverage(module, "", "module")

		assert.Equal(t,
			[]string{"HistoryEntry", "Role", "Cursor", "HistoryManager", "init", "add", "last", "roleName"},
			symbolNames(coverage.Untested))
	})

	t.Run("tracked names are removed case-insensitively", func(t *testing.T) {
		text := "test \"historymanager add\" {\n    _ = module.HistoryManager.init();\n}\n"

		coverage := tracker.Coverage(module, text, "module")

		assert.Equal(t, []string{"HistoryEntry", "Role", "Cursor", "last", "roleName"}, symbolNames(coverage.Untested))
		assert.Contains(t, coverage.Tracked, "init")
	})

	t.Run("test-prefixed functions are excluded and duplicates collapse", func(t *testing.T) {
		source := "pub fn testHelper() void {}\npub fn run() void {}\npub fn run() void {}\n"
		mod := NewSourceAnalyzer().Analyze(nil, source)

		coverage := tracker.Coverage(mod, "", "module")

		require.Len(t, coverage.Untested, 1)
		assert.Equal(t, "run", coverage.Untested[0].Name)
	})

	t.Run("fully tested module", func(t *testing.T) {
		text := `test "HistoryEntry Role Cursor HistoryManager init add last roleName" {}`

		coverage := tracker.Coverage(module, text, "module")

		assert.Empty(t, coverage.Untested)
	})
}

func TestTestedFunctions(t *testing.T) {
	tracker := NewCoverageTracker()
	module := NewSourceAnalyzer().Analyze(nil, historySource)

	tests := []struct {
		name string
		text string
		want int
	}{
		{"no tests", "", 0},
		{"title words and calls", "test \"historymanager add\" {\n    _ = module.HistoryManager.init();\n}\n", 2},
		{"wordy titles count functions only", "test \"init creates a manager that returns the last entry it was given\" {}\n", 2},
		{"all functions", "test \"init add last roleName\" {}\n", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coverage := tracker.Coverage(module, tt.text, "module")

			got := testedFunctions(module, coverage)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, got, len(module.SymbolsOfKind(m.SymbolFunction)))
		})
	}
}

func TestCoverageTracker_Monotonic(t *testing.T) {
	tracker := NewCoverageTracker()
	module := NewSourceAnalyzer().Analyze(nil, historySource)

	steps := []string{
		"",
		"test \"init\" {}\n",
		"test \"init\" {}\ntest \"add rejects empty\" { try module.HistoryManager.add(); }\n",
		"test \"init\" {}\ntest \"add rejects empty\" { try module.HistoryManager.add(); }\ntest \"roleName\" {}\n",
	}

	var previous map[string]struct{}

	for i, text := range steps {
		current := make(map[string]struct{})
		for _, sym := range tracker.Coverage(module, text, "module").Untested {
			current[sym.Key()] = struct{}{}
		}

		if previous != nil {
			assert.LessOrEqual(t, len(current), len(previous), "step %d grew the untested set", i)

			for key := range current {
				assert.Contains(t, previous, key, "step %d introduced %s as untested", i, key)
			}
		}

		previous = current
	}

	assert.Equal(t, []string{"cursor", "historyentry", "last", "role"}, keys(previous))
}
