// Package model defines the data structures shared by the test generation and repair workflows.
package model

import "strings"

// Path represents a file system path.
type Path string

// SymbolKind classifies a declaration found by lexical scanning.
type SymbolKind string

const (
	// SymbolFunction is a `fn` declaration.
	SymbolFunction SymbolKind = "function"
	// SymbolAggregate is a `const X = struct {` declaration.
	SymbolAggregate SymbolKind = "aggregate"
	// SymbolEnumeration is a `const X = enum {` declaration.
	SymbolEnumeration SymbolKind = "enumeration"
)

// File represents a file on disk.
type File struct {
	ShortPath Path
	FullPath  Path
	Hash      string
}

// Symbol is a declaration name found in a source module.
type Symbol struct {
	Name   string
	Kind   SymbolKind
	Public bool
	Offset int // byte offset of the declaration match
}

// Key returns the case-normalized name used for coverage comparison.
func (s Symbol) Key() string {
	return strings.ToLower(s.Name)
}

// BranchDensity counts branch points in a module. Only used to steer prompts.
type BranchDensity struct {
	Conditionals    int
	Alternatives    int
	MultiWay        int
	ErrorHandling   int
	OptionalUnwraps int
}

// SourceModule is a Zig source file and the declarations scanned from it.
// It is derived fresh every run and never mutated.
type SourceModule struct {
	Origin   *File
	Text     string
	Symbols  []Symbol
	Branches BranchDensity
}

// Name returns the base file name of the module (e.g. "history.zig").
func (s SourceModule) Name() string {
	if s.Origin == nil {
		return ""
	}

	full := string(s.Origin.FullPath)
	if idx := strings.LastIndexAny(full, `/\`); idx >= 0 {
		return full[idx+1:]
	}

	return full
}

// SymbolsOfKind returns the symbols of the given kind in declaration order.
func (s SourceModule) SymbolsOfKind(kind SymbolKind) []Symbol {
	var out []Symbol

	for _, sym := range s.Symbols {
		if sym.Kind == kind {
			out = append(out, sym)
		}
	}

	return out
}

// ExportedTypes returns the distinct public aggregate and enumeration names.
func (s SourceModule) ExportedTypes() []string {
	seen := make(map[string]struct{})

	var names []string

	for _, sym := range s.Symbols {
		if !sym.Public || sym.Kind == SymbolFunction {
			continue
		}

		if _, ok := seen[sym.Name]; ok {
			continue
		}

		seen[sym.Name] = struct{}{}
		names = append(names, sym.Name)
	}

	return names
}

// Coverage is the result of diffing a module's symbols against its test file.
type Coverage struct {
	Tracked  map[string]struct{}
	Untested []Symbol
}

// UntestedOfKind filters the untested symbols by kind.
func (c Coverage) UntestedOfKind(kind SymbolKind) []Symbol {
	var out []Symbol

	for _, sym := range c.Untested {
		if sym.Kind == kind {
			out = append(out, sym)
		}
	}

	return out
}

// TestFile is a generated test file paired with exactly one source module.
type TestFile struct {
	Path   Path
	Source Path
	Text   string
	Exists bool
}
