// Package repairs provides the textual rewrite passes applied to generated Zig tests.
//
// Every pass works on whole-file text and is idempotent: applying a pass to
// its own output returns that output unchanged. Context detection (comments,
// string literals) is a line and quote-parity heuristic, not a lexer, so block
// comments and multi-line string literals can be misjudged.
package repairs

import (
	"regexp"
	"strings"
)

// InsideCommentOrString reports whether pos appears to be inside a line
// comment or a string literal.
//
// A position is inside a comment when "//" occurs earlier on the same line,
// and inside a string when an odd number of unescaped double quotes precede it
// anywhere in the text.
func InsideCommentOrString(text string, pos int) bool {
	if pos > len(text) {
		pos = len(text)
	}

	lineStart := strings.LastIndexByte(text[:pos], '\n') + 1
	if strings.Contains(text[lineStart:pos], "//") {
		return true
	}

	before := text[:pos]
	quotes := strings.Count(before, `"`) - strings.Count(before, `\"`)

	return quotes%2 == 1
}

// onImportLine reports whether pos sits on a line containing an @import call.
func onImportLine(text string, pos int) bool {
	lineStart := strings.LastIndexByte(text[:pos], '\n') + 1

	lineEnd := strings.IndexByte(text[pos:], '\n')
	if lineEnd < 0 {
		lineEnd = len(text)
	} else {
		lineEnd += pos
	}

	return strings.Contains(text[lineStart:lineEnd], "@import(")
}

// rewriteFunc decides the replacement for one regexp match. The match
// boundaries index into the text passed to rewriteMatches. Returning false
// keeps the original text.
type rewriteFunc func(text string, match []int) (string, bool)

// rewriteMatches replaces each match of re in text using fn. All decisions are
// made against the unmodified input so positions stay valid.
func rewriteMatches(text string, re *regexp.Regexp, fn rewriteFunc) string {
	matches := re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder

	b.Grow(len(text))

	last := 0

	for _, match := range matches {
		replacement, ok := fn(text, match)
		if !ok {
			continue
		}

		b.WriteString(text[last:match[0]])
		b.WriteString(replacement)
		last = match[1]
	}

	b.WriteString(text[last:])

	return b.String()
}
