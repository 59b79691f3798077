package service

import "strings"

// documentTriggers are the lowercase substrings that signal a request for a
// downloadable document.
var documentTriggers = []string{"document", "report", "summary", "download", "link", "srs"}

// ShouldGenerateDocument reports whether text asks for a document.
// Matching is a case-insensitive substring test; negations are not detected,
// so "no document needed" still matches.
func ShouldGenerateDocument(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return false
	}
	for _, trigger := range documentTriggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}
