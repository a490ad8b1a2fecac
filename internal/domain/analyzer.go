package domain

import (
	"regexp"
	"sort"
	"strings"

	m "zigtestgen.dev/pkg/zigtestgen/internal/model"
)

// SourceAnalyzer scans a Zig module for declarations and branch points.
//
// The scan is lexical. Declarations inside comments or string literals are
// reported like any other match.
type SourceAnalyzer interface {
	Analyze(origin *m.File, text string) m.SourceModule
}

var (
	functionPattern    = regexp.MustCompile(`(?:pub\s+)?fn\s+(\w+)\s*\([^)]*\)\s*(?:![^{]+)?(?:\s*[^{]*)?{`)
	aggregatePattern   = regexp.MustCompile(`(?:pub\s+)?const\s+(\w+)\s*=\s*struct\s*{`)
	enumerationPattern = regexp.MustCompile(`(?:pub\s+)?const\s+(\w+)\s*=\s*enum\s*(?:\([^)]*\))?\s*{`)

	conditionalPattern   = regexp.MustCompile(`\bif\s*\(`)
	alternativePattern   = regexp.MustCompile(`\belse\b`)
	multiWayPattern      = regexp.MustCompile(`\bswitch\s*\(`)
	errorHandlingPattern = regexp.MustCompile(`\bcatch\b|\borelse\b`)
	optionalPattern      = regexp.MustCompile(`\.\?`)
)

type sourceAnalyzer struct{}

// NewSourceAnalyzer returns the regex-based SourceAnalyzer.
func NewSourceAnalyzer() SourceAnalyzer {
	return &sourceAnalyzer{}
}

func (a *sourceAnalyzer) Analyze(origin *m.File, text string) m.SourceModule {
	var symbols []m.Symbol

	symbols = append(symbols, scanSymbols(text, functionPattern, m.SymbolFunction)...)
	symbols = append(symbols, scanSymbols(text, aggregatePattern, m.SymbolAggregate)...)
	symbols = append(symbols, scanSymbols(text, enumerationPattern, m.SymbolEnumeration)...)

	sort.SliceStable(symbols, func(i, j int) bool {
		return symbols[i].Offset < symbols[j].Offset
	})

	return m.SourceModule{
		Origin:  origin,
		Text:    text,
		Symbols: symbols,
		Branches: m.BranchDensity{
			Conditionals:    len(conditionalPattern.FindAllStringIndex(text, -1)),
			Alternatives:    len(alternativePattern.FindAllStringIndex(text, -1)),
			MultiWay:        len(multiWayPattern.FindAllStringIndex(text, -1)),
			ErrorHandling:   len(errorHandlingPattern.FindAllStringIndex(text, -1)),
			OptionalUnwraps: len(optionalPattern.FindAllStringIndex(text, -1)),
		},
	}
}

func scanSymbols(text string, pattern *regexp.Regexp, kind m.SymbolKind) []m.Symbol {
	matches := pattern.FindAllStringSubmatchIndex(text, -1)
	symbols := make([]m.Symbol, 0, len(matches))

	for _, match := range matches {
		symbols = append(symbols, m.Symbol{
			Name:   text[match[2]:match[3]],
			Kind:   kind,
			Public: strings.HasPrefix(text[match[0]:match[1]], "pub"),
			Offset: match[0],
		})
	}

	return symbols
}
