package domain

import (
	"fmt"
	"strings"
)

const (
	zigFence = "```zig"
	fence    = "```"

	// FillSeparator is written between existing tests and appended ones.
	FillSeparator = "\n\n// ============================================================================\n" +
		"// Additional tests for 100% coverage\n" +
		"// ============================================================================\n\n"
)

// ExtractCode pulls test code out of a free-form response. It prefers the
// first ```zig block, then the first ``` block (dropping a leading "zig" tag
// line), and otherwise returns the whole response trimmed.
func ExtractCode(response string) string {
	if _, after, ok := strings.Cut(response, zigFence); ok {
		code, _, _ := strings.Cut(after, fence)
		return strings.TrimSpace(code)
	}

	if _, after, ok := strings.Cut(response, fence); ok {
		code, _, _ := strings.Cut(after, fence)
		code = strings.TrimPrefix(code, "zig\n")

		return strings.TrimSpace(code)
	}

	return strings.TrimSpace(response)
}

// StripHeaderImports drops lines that would redeclare what TestFileHeader
// already provides: std, testing, the namespace binding and any other
// `const x = @import("file.zig")` import.
func StripHeaderImports(code, namespace string) string {
	lines := strings.Split(code, "\n")
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		if isHeaderDuplicate(strings.TrimSpace(line), namespace) {
			continue
		}

		kept = append(kept, line)
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func isHeaderDuplicate(line, namespace string) bool {
	switch {
	case strings.HasPrefix(line, `const std = @import("std")`):
		return true
	case strings.HasPrefix(line, "const testing = std.testing"):
		return true
	case namespace != "" && strings.HasPrefix(line, "const "+namespace+" = @import("):
		return true
	case strings.HasPrefix(line, "const ") && strings.Contains(line, `= @import("`) && strings.Contains(line, `.zig")`):
		return true
	}

	return false
}

// TestFileHeader renders the preamble of a freshly generated test file.
func TestFileHeader(sourceName, importPath, namespace string) string {
	return fmt.Sprintf(`//! Auto-generated unit tests for %s
//! Generated by zigtestgen

const std = @import("std");
const testing = std.testing;

// Import the module under test
const %s = @import(%q);

`, sourceName, namespace, importPath)
}
