package domain

import (
	"regexp"
	"strings"

	m "zigtestgen.dev/pkg/zigtestgen/internal/model"
)

// CoverageTracker diffs the symbols referenced by a test file against the
// declarations of its source module.
type CoverageTracker interface {
	TrackedSymbols(testText, namespace string) map[string]struct{}
	Coverage(module m.SourceModule, testText, namespace string) m.Coverage
}

var (
	testTitlePattern = regexp.MustCompile(`test\s+"([^"]*)"`)
	wordPattern      = regexp.MustCompile(`\w+`)
)

type coverageTracker struct{}

// NewCoverageTracker returns the default CoverageTracker.
func NewCoverageTracker() CoverageTracker {
	return &coverageTracker{}
}

// TrackedSymbols collects, lower-cased, every word of each test title and
// every segment of calls qualified by namespace (e.g. `module.Store.init(`).
func (c *coverageTracker) TrackedSymbols(testText, namespace string) map[string]struct{} {
	tracked := make(map[string]struct{})

	for _, match := range testTitlePattern.FindAllStringSubmatch(testText, -1) {
		for _, word := range wordPattern.FindAllString(match[1], -1) {
			tracked[strings.ToLower(word)] = struct{}{}
		}
	}

	if namespace == "" {
		return tracked
	}

	callPattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(namespace) + `((?:\.\w+)+)\s*\(`)
	for _, match := range callPattern.FindAllStringSubmatch(testText, -1) {
		for _, segment := range strings.Split(strings.TrimPrefix(match[1], "."), ".") {
			tracked[strings.ToLower(segment)] = struct{}{}
		}
	}

	return tracked
}

// Coverage returns the tracked set and the module symbols missing from it,
// de-duplicated in declaration order. Functions named test* are ignored.
func (c *coverageTracker) Coverage(module m.SourceModule, testText, namespace string) m.Coverage {
	tracked := c.TrackedSymbols(testText, namespace)
	seen := make(map[string]struct{})

	var untested []m.Symbol

	for _, sym := range module.Symbols {
		if sym.Kind == m.SymbolFunction && strings.HasPrefix(sym.Name, "test") {
			continue
		}

		key := sym.Key()
		if _, ok := tracked[key]; ok {
			continue
		}

		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		untested = append(untested, sym)
	}

	return m.Coverage{Tracked: tracked, Untested: untested}
}

// testedFunctions counts the distinct public functions of module that
// coverage no longer lists as untested. Functions named test* are ignored.
func testedFunctions(module m.SourceModule, coverage m.Coverage) int {
	untested := make(map[string]struct{})
	for _, sym := range coverage.UntestedOfKind(m.SymbolFunction) {
		untested[sym.Key()] = struct{}{}
	}

	seen := make(map[string]struct{})
	tested := 0

	for _, sym := range module.SymbolsOfKind(m.SymbolFunction) {
		key := sym.Key()
		if strings.HasPrefix(sym.Name, "test") {
			continue
		}

		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}

		if _, ok := untested[key]; !ok {
			tested++
		}
	}

	return tested
}
