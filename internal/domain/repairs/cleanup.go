package repairs

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultBufferType is the growable buffer whose deinit needs the allocator.
const DefaultBufferType = "std.ArrayListUnmanaged"

// DefaultLooseBufferNames are variable spellings commonly bound to growable
// buffers in generated tests. They are only consulted when loose matching is
// enabled.
var DefaultLooseBufferNames = []string{
	"list", "items", "buffer", "result", "output", "members", "cursors",
	"events", "names", "tags", "issues", "reasons", "preview", "tools", "resources",
}

// BufferVariables returns the sorted, distinct names of local variables
// declared as one of bufferTypes.
//
// Recognized declarations:
//
//	var NAME = T(...){}
//	var NAME = T(...).empty
//	var NAME: T(...)
func BufferVariables(text string, bufferTypes []string) []string {
	seen := make(map[string]struct{})

	for _, bufferType := range bufferTypes {
		quoted := regexp.QuoteMeta(bufferType)
		patterns := []*regexp.Regexp{
			regexp.MustCompile(`\bvar\s+(\w+)\s*=\s*` + quoted + `\([^)]*\)\{\}`),
			regexp.MustCompile(`\bvar\s+(\w+)\s*=\s*` + quoted + `\([^)]*\)\.empty\b`),
			regexp.MustCompile(`\bvar\s+(\w+)\s*:\s*` + quoted + `\([^)]*\)`),
		}

		for _, pattern := range patterns {
			for _, match := range pattern.FindAllStringSubmatch(text, -1) {
				seen[match[1]] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// InjectCleanupAllocator rewrites bare deinit calls on the given buffer
// variables to pass allocator explicitly. Both `defer NAME.deinit()` and
// `NAME.deinit();` forms are handled. Occurrences inside comments or string
// literals are left alone.
func InjectCleanupAllocator(text string, variables []string, allocator string) string {
	for _, name := range variables {
		quoted := regexp.QuoteMeta(name)

		deferPattern := regexp.MustCompile(`\bdefer\s+` + quoted + `\.deinit\(\)`)
		text = rewriteMatches(text, deferPattern, skipCommentsAndStrings(
			"defer "+name+".deinit("+allocator+")",
		))

		inlinePattern := regexp.MustCompile(`\b` + quoted + `\.deinit\(\);`)
		text = rewriteMatches(text, inlinePattern, skipCommentsAndStrings(
			name+".deinit("+allocator+");",
		))
	}

	return text
}

// InjectLooseCleanupAllocator applies the allocator rewrite to any
// `NAME.deinit()` call whose receiver is in names, regardless of how the
// variable was declared.
func InjectLooseCleanupAllocator(text string, names []string, allocator string) string {
	if len(names) == 0 {
		return text
	}

	quoted := make([]string, 0, len(names))
	for _, name := range names {
		quoted = append(quoted, regexp.QuoteMeta(name))
	}

	pattern := regexp.MustCompile(`\b(` + strings.Join(quoted, "|") + `)\s*\.deinit\(\)`)

	return rewriteMatches(text, pattern, func(text string, match []int) (string, bool) {
		if InsideCommentOrString(text, match[0]) {
			return "", false
		}

		return text[match[2]:match[3]] + ".deinit(" + allocator + ")", true
	})
}

func skipCommentsAndStrings(replacement string) rewriteFunc {
	return func(text string, match []int) (string, bool) {
		if InsideCommentOrString(text, match[0]) {
			return "", false
		}

		return replacement, true
	}
}
