package domain

import (
	"fmt"
	"sort"
	"strings"

	"zigtestgen.dev/pkg/zigtestgen/internal/adapter"
	m "zigtestgen.dev/pkg/zigtestgen/internal/model"
)

const (
	analysisSystemPrompt = "You are a Zig programming expert specializing in test-driven development. " +
		"Analyze code and suggest comprehensive test cases."
	generateSystemPrompt = "You are a Zig testing expert. Generate clean, comprehensive unit tests that " +
		"follow Zig 0.15 conventions. Output only valid Zig test code."
	fillSystemPrompt = "You are a Zig testing expert focused on achieving 100% code coverage. " +
		"Generate thorough tests for all code paths, error conditions, and edge cases."

	// FallbackAnalysis replaces an analysis answer that failed or came back empty.
	FallbackAnalysis = "Basic struct and function testing"
)

// PromptInput is everything a generation prompt is built from.
type PromptInput struct {
	Module    m.SourceModule
	Coverage  m.Coverage
	Mode      m.Stage
	Analysis  string
	Namespace string
	Budget    int
}

// BuildAnalysisPrompt asks the backend to list the testable components of a module.
func BuildAnalysisPrompt(module m.SourceModule, budget int) []adapter.ChatMessage {
	var b strings.Builder

	b.WriteString("Analyze this Zig source file and identify all testable components.\n\n")
	fmt.Fprintf(&b, "File: %s\n\n", module.Name())
	fmt.Fprintf(&b, "```zig\n%s\n```\n\n", truncateRunes(module.Text, budget))
	b.WriteString(`Return a JSON object with:
1. "structs": List of struct names with their public methods
2. "functions": List of public functions
3. "enums": List of enum types
4. "test_suggestions": List of specific test cases to write

Focus on:
- Initialization and deinitialization
- Error handling paths
- Edge cases (empty input, null values)
- State transitions
- Memory management

Be concise and specific.`)

	return []adapter.ChatMessage{
		{Role: adapter.RoleSystem, Content: analysisSystemPrompt},
		{Role: adapter.RoleUser, Content: b.String()},
	}
}

// BuildPrompt renders the generation prompt for a module. Fill mode lists the
// already tested names so the backend does not repeat them.
func BuildPrompt(in PromptInput) []adapter.ChatMessage {
	var b strings.Builder

	functions := symbolNames(in.Coverage.UntestedOfKind(m.SymbolFunction))
	aggregates := symbolNames(in.Module.SymbolsOfKind(m.SymbolAggregate))
	enumerations := symbolNames(in.Module.SymbolsOfKind(m.SymbolEnumeration))
	excerpt := truncateRunes(in.Module.Text, in.Budget)

	system := generateSystemPrompt
	if in.Mode == m.StageFill {
		system = fillSystemPrompt

		b.WriteString("Generate ADDITIONAL comprehensive Zig unit tests for 100% code coverage.\n\n")
		fmt.Fprintf(&b, "File: %s\n\n", in.Module.Name())
		fmt.Fprintf(&b, "ALREADY TESTED (do not duplicate):\n%s\n\n", orNone(sortedKeys(in.Coverage.Tracked), "None"))
	} else {
		b.WriteString("Generate comprehensive Zig unit tests for this file.\n\n")
		fmt.Fprintf(&b, "File: %s\n", in.Module.Name())

		if in.Analysis != "" {
			fmt.Fprintf(&b, "Analysis: %s\n", in.Analysis)
		}

		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "FUNCTIONS NEEDING TESTS:\n%s\n\n", orNone(functions, "All functions tested, focus on edge cases"))
	fmt.Fprintf(&b, "STRUCTS TO TEST:\n%s\n\n", strings.Join(aggregates, ", "))
	fmt.Fprintf(&b, "ENUMS TO TEST:\n%s\n\n", strings.Join(enumerations, ", "))

	branches := in.Module.Branches
	b.WriteString("BRANCH COVERAGE NEEDED:\n")
	fmt.Fprintf(&b, "- if/else branches: %d if statements, %d else branches\n", branches.Conditionals, branches.Alternatives)
	fmt.Fprintf(&b, "- switch statements: %d\n", branches.MultiWay)
	fmt.Fprintf(&b, "- error handling: %d catch/orelse\n", branches.ErrorHandling)
	fmt.Fprintf(&b, "- optional unwraps: %d\n\n", branches.OptionalUnwraps)

	fmt.Fprintf(&b, "SOURCE CODE (first %d chars):\n```zig\n%s\n```\n\n", in.Budget, excerpt)

	b.WriteString("Requirements:\n")
	b.WriteString("1. Use std.testing.allocator for memory management\n")
	b.WriteString("2. Use ArrayListUnmanaged with .empty initialization (Zig 0.15 API)\n")
	fmt.Fprintf(&b, "3. Reference declarations of the module under test as %s.Name\n", in.Namespace)
	b.WriteString("4. Cover error paths, every if/else and switch branch, and edge cases\n")
	b.WriteString("5. Use defer for cleanup\n\n")

	b.WriteString("Use this pattern:\n```zig\ntest \"function_name - specific scenario\" {\n")
	b.WriteString("    const alloc = std.testing.allocator;\n    // setup\n    // action\n    // assertions\n}\n```\n\n")

	if in.Mode == m.StageFill {
		b.WriteString("Output ONLY new test code. Do not repeat existing tests.")
	} else {
		b.WriteString("Generate 5-10 focused, well-documented tests. Output ONLY the test code, no explanations.")
	}

	return []adapter.ChatMessage{
		{Role: adapter.RoleSystem, Content: system},
		{Role: adapter.RoleUser, Content: b.String()},
	}
}

// truncateRunes returns at most limit characters of s.
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}

	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}

		count++
	}

	return s
}

func symbolNames(symbols []m.Symbol) []string {
	names := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		names = append(names, sym.Name)
	}

	return names
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

func orNone(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}

	return strings.Join(items, ", ")
}
