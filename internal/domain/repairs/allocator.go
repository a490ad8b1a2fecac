package repairs

import (
	"regexp"
	"strings"
)

const (
	// DefaultAllocatorName is used when no allocator declaration is found.
	DefaultAllocatorName = "alloc"
	// TestingAllocator is the canonical allocator reference in Zig tests.
	TestingAllocator = "std.testing.allocator"
)

// allocatorPatterns are checked in priority order; the first pattern that
// matches anywhere in the file wins.
var allocatorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`const\s+(alloc)\s*=\s*std\.testing\.allocator`),
	regexp.MustCompile(`const\s+(allocator)\s*=\s*std\.testing\.allocator`),
	regexp.MustCompile(`const\s+(gpa)\s*=`),
	regexp.MustCompile(`const\s+(ally)\s*=`),
	regexp.MustCompile(`var\s+(alloc)\s*=\s*std\.testing\.allocator`),
	regexp.MustCompile(`var\s+(allocator)\s*=\s*std\.testing\.allocator`),
}

// DetectAllocator returns the memory-context variable name used in text.
//
// When no declaration is found it falls back to TestingAllocator if that
// reference is used directly, and to DefaultAllocatorName otherwise.
func DetectAllocator(text string) string {
	for _, pattern := range allocatorPatterns {
		if match := pattern.FindStringSubmatch(text); match != nil {
			return match[1]
		}
	}

	if strings.Contains(text, TestingAllocator) {
		return TestingAllocator
	}

	return DefaultAllocatorName
}
