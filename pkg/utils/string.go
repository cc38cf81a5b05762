package utils

import (
	"regexp"
	"strings"
)

// MultipleSpaces matches any sequence of whitespace (including newlines).
var MultipleSpaces = regexp.MustCompile(`\s+`)

// CompressAllWhitespace replaces all whitespace sequences (including newlines) with a single space.
// This is useful for cases where you want to completely normalize whitespace.
func CompressAllWhitespace(s string) string {
	return strings.TrimSpace(MultipleSpaces.ReplaceAllString(s, " "))
}

// CompressWhitespacePreserveNewlines replaces multiple consecutive spaces with a single space
// while preserving newlines. This is useful for maintaining text formatting while cleaning up spacing.
func CompressWhitespacePreserveNewlines(s string) string {
	// First, normalize line endings to \n
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	// Split by newlines, trim and compress spaces on each line
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		// Compress multiple spaces into single space and trim
		lines[i] = strings.Join(strings.Fields(line), " ")
	}

	// Join lines back together and trim any leading/trailing empty lines
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// noteTextPattern restricts free-text notes to letters, digits, whitespace
// and basic punctuation so stored notes stay safe to render anywhere.
var noteTextPattern = regexp.MustCompile(`^[a-zA-Z0-9\s.,'-]+$`)

// ParseDelimitedInput splits input on the given delimiter, trimming
// whitespace and dropping empty items. Returns nil when nothing remains.
func ParseDelimitedInput(input, delimiter string) []string {
	var result []string

	for part := range strings.SplitSeq(input, delimiter) {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}

	return result
}

// ValidateNoteText reports whether a free-text note contains only
// allowed characters and is not blank.
func ValidateNoteText(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	return noteTextPattern.MatchString(text)
}
