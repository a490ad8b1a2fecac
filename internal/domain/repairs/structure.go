package repairs

import (
	"regexp"
	"strings"
)

// DefaultStrayTokens are lone lines left behind by response formatting.
var DefaultStrayTokens = []string{"bash", "zig", "```", "```zig"}

var (
	headerImportPattern = regexp.MustCompile(`^(pub\s+)?const\s+\w+\s*=\s*(@import\("[^"]+"\)|std)(\.\w+)*;\s*$`)
	mutabilityPattern   = regexp.MustCompile(`var\s+(\w+)\s*=\s*const\s+`)
	blankRunPattern     = regexp.MustCompile(`\n{3,}`)
)

// StructureOptions configures CleanupStructure.
type StructureOptions struct {
	Namespace   string
	StrayTokens []string
}

// CleanupStructure removes declaration artifacts and formatting debris:
//   - `const NS.X = NS.Y;` and `pub const NS.X ...;` lines
//   - `var x = const ...` mistakes, rewritten to `const x = ...`
//   - repeated top-level import lines (the first copy is kept)
//   - lines holding only a stray token
//   - runs of blank lines, collapsed to a single blank line
//
// The steps repeat until the text stops changing. Each step only shortens
// the text, so the loop ends.
func CleanupStructure(text string, opts StructureOptions) string {
	for {
		next := cleanupStructureOnce(text, opts)
		if next == text {
			return text
		}

		text = next
	}
}

func cleanupStructureOnce(text string, opts StructureOptions) string {
	text = removeSelfBindings(text, opts.Namespace)
	text = fixMutability(text)
	text = dedupeHeaderImports(text)
	text = blankStrayTokens(text, opts.StrayTokens)
	text = blankRunPattern.ReplaceAllString(text, "\n\n")

	return text
}

// fixMutability rewrites `var x = const ...` to `const x = ...`. A rewrite
// can expose another match to its left, as in `var a = var b = const 1`.
func fixMutability(text string) string {
	for {
		next := mutabilityPattern.ReplaceAllString(text, "const $1 = ")
		if next == text {
			return text
		}

		text = next
	}
}

func removeSelfBindings(text, namespace string) string {
	if namespace == "" {
		return text
	}

	ns := regexp.QuoteMeta(namespace)
	selfBinding := regexp.MustCompile(`(?m)^const ` + ns + `\.\w+ = ` + ns + `\.\w+;\s*\n`)
	pubBinding := regexp.MustCompile(`(?m)^pub const ` + ns + `\.\w+.*?;\s*\n`)

	text = selfBinding.ReplaceAllString(text, "")

	return pubBinding.ReplaceAllString(text, "")
}

func dedupeHeaderImports(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	seen := make(map[string]struct{})

	for _, line := range lines {
		if isHeaderImport(line) {
			key := strings.TrimRight(line, " \t\r")
			if _, ok := seen[key]; ok {
				continue
			}

			seen[key] = struct{}{}
		}

		out = append(out, line)
	}

	return strings.Join(out, "\n")
}

// isHeaderImport matches unindented import and std alias lines only, so
// test-local bindings such as `    const alloc = std.testing.allocator;`
// are never touched.
func isHeaderImport(line string) bool {
	if line == "" || line[0] == ' ' || line[0] == '\t' {
		return false
	}

	return headerImportPattern.MatchString(line)
}

func blankStrayTokens(text string, tokens []string) string {
	if len(tokens) == 0 {
		return text
	}

	stray := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		stray[token] = struct{}{}
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if _, ok := stray[strings.TrimSpace(line)]; ok {
			lines[i] = ""
		}
	}

	return strings.Join(lines, "\n")
}
