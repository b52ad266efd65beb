package utils

import "strings"

// Initials derives an up-to-two-letter avatar fallback from a display name.
// "Ada Lovelace" -> "AL", "ada" -> "A", "" -> "?".
func Initials(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "?"
	}
	first := strings.ToUpper(string([]rune(fields[0])[0]))
	if len(fields) == 1 {
		return first
	}
	last := []rune(fields[len(fields)-1])
	return first + strings.ToUpper(string(last[0]))
}
