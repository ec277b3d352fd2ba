package pipeline

import "strings"

// Delimiter separates the user message from instructions and the steps of a
// generated answer
const Delimiter = "####"

// WrapUser encloses a user message in delimiters
func WrapUser(message string) string {
	return Delimiter + message + Delimiter
}

// FinalStep returns the text after the last delimiter, which carries the
// customer-facing part of a step-structured response. Text with no delimiter
// is returned whole. Surrounding spaces and the ":" that often follows
// "Step 3:####" are trimmed.
func FinalStep(raw string) string {
	idx := strings.LastIndex(raw, Delimiter)
	if idx < 0 {
		return strings.TrimSpace(raw)
	}
	last := strings.TrimSpace(raw[idx+len(Delimiter):])
	return strings.TrimSpace(strings.TrimPrefix(last, ":"))
}

// Steps splits a response into its delimiter-separated segments, trimmed
func Steps(raw string) []string {
	parts := strings.Split(raw, Delimiter)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
