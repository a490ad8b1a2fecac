package repairs

import (
	"strings"

	m "zigtestgen.dev/pkg/zigtestgen/internal/model"
)

// ValidateDelimiters counts paired delimiters across the whole text,
// including those in comments and strings. It never modifies the text.
func ValidateDelimiters(text string) m.DelimiterReport {
	return m.DelimiterReport{
		OpenBraces:    strings.Count(text, "{"),
		CloseBraces:   strings.Count(text, "}"),
		OpenParens:    strings.Count(text, "("),
		CloseParens:   strings.Count(text, ")"),
		OpenBrackets:  strings.Count(text, "["),
		CloseBrackets: strings.Count(text, "]"),
	}
}
