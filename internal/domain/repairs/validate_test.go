package repairs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDelimiters_Unbalanced(t *testing.T) {
	text := strings.Repeat("{", 10) + strings.Repeat("}", 8)

	report := ValidateDelimiters(text)

	assert.Equal(t, 10, report.OpenBraces)
	assert.Equal(t, 8, report.CloseBraces)
	assert.False(t, report.Balanced())
}

func TestValidateDelimiters_Balanced(t *testing.T) {
	text := "test \"a\" {\n    const xs = [_]u8{ 1, 2 };\n    try std.testing.expect(xs.len == 2);\n}\n"

	report := ValidateDelimiters(text)

	assert.True(t, report.Balanced())
	assert.Equal(t, 2, report.OpenBraces)
	assert.Equal(t, 1, report.OpenParens)
	assert.Equal(t, 1, report.OpenBrackets)
}

func TestValidateDelimiters_CountsInsideStrings(t *testing.T) {
	report := ValidateDelimiters("const s = \"(\";")

	assert.Equal(t, 1, report.OpenParens)
	assert.Equal(t, 0, report.CloseParens)
	assert.False(t, report.Balanced())
}
