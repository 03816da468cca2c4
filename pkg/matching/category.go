package matching

import "strings"

// DetectCategory returns the first category whose pattern occurs in the message, or "" when none does.
func DetectCategory(message string) string {
	lower := strings.ToLower(message)
	for _, entry := range CategoryTable {
		for _, pattern := range entry.Patterns {
			if strings.Contains(lower, pattern) {
				return entry.Category
			}
		}
	}
	return ""
}
