package repairs

import (
	"regexp"
	"strings"
)

const (
	qualifyPreceding = " \t\r\n(,="
	qualifyFollowing = " \t\r\n.(,)"
	annotationEnd    = " \t\r\n,)"
)

// QualifySymbols prefixes bare references to the given exported type names
// with namespace.
//
// A bare reference is rewritten only when it is preceded by whitespace, "(",
// "," or "=", followed by whitespace, ".", "(", "," or ")", sits outside
// @import lines and is not inside a comment or string literal. Type
// annotations (": TypeName") and declaration initializers
// ("const x = TypeName.") are qualified under the same guards.
func QualifySymbols(text, namespace string, typeNames []string) string {
	if namespace == "" {
		return text
	}

	prefix := namespace + "."

	for _, typeName := range typeNames {
		if typeName == "" || typeName == namespace {
			continue
		}

		quoted := regexp.QuoteMeta(typeName)

		text = qualifyBare(text, regexp.MustCompile(`\b`+quoted+`\b`), prefix+typeName)
		text = qualifyInitializers(text, regexp.MustCompile(`(?m)^(\s*)(var|const)\s+(\w+)\s*=\s*`+quoted+`\.`), prefix+typeName)
		text = qualifyAnnotations(text, regexp.MustCompile(`:\s*`+quoted+`\b`), prefix+typeName)
	}

	return text
}

func qualifyBare(text string, pattern *regexp.Regexp, qualified string) string {
	return rewriteMatches(text, pattern, func(text string, match []int) (string, bool) {
		start, end := match[0], match[1]
		if start == 0 || end >= len(text) {
			return "", false
		}

		if !strings.ContainsRune(qualifyPreceding, rune(text[start-1])) ||
			!strings.ContainsRune(qualifyFollowing, rune(text[end])) {
			return "", false
		}

		if !rewritable(text, start) {
			return "", false
		}

		return qualified, true
	})
}

func qualifyInitializers(text string, pattern *regexp.Regexp, qualified string) string {
	return rewriteMatches(text, pattern, func(text string, match []int) (string, bool) {
		if !rewritable(text, match[0]) {
			return "", false
		}

		indent := text[match[2]:match[3]]
		keyword := text[match[4]:match[5]]
		name := text[match[6]:match[7]]

		return indent + keyword + " " + name + " = " + qualified + ".", true
	})
}

func qualifyAnnotations(text string, pattern *regexp.Regexp, qualified string) string {
	return rewriteMatches(text, pattern, func(text string, match []int) (string, bool) {
		end := match[1]
		if end >= len(text) || !strings.ContainsRune(annotationEnd, rune(text[end])) {
			return "", false
		}

		if !rewritable(text, match[0]) {
			return "", false
		}

		return ": " + qualified, true
	})
}

func rewritable(text string, pos int) bool {
	return !onImportLine(text, pos) && !InsideCommentOrString(text, pos)
}
