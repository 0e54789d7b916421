package questiongen

import "strings"

// stripFences removes Markdown code fences, keeping their contents.
func stripFences(s string) string {
	if !strings.Contains(s, "```") {
		return s
	}
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// extractArray returns the first balanced top-level [...] in s whose first
// element is an object. If no such array exists it falls back to the first
// balanced array of any kind. Brackets inside JSON strings are ignored.
// Returns "" when nothing balanced is found.
func extractArray(s string) string {
	var fallback string
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, ch := range s {
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		// Quotes in the prose around the array are not JSON strings.
		if ch == '"' && depth > 0 {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case '[':
			if depth == 0 {
				start = i
			}
			depth++
		case ']':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start != -1 {
				candidate := s[start : i+1]
				if holdsObjects(candidate) {
					return candidate
				}
				if fallback == "" {
					fallback = candidate
				}
				start = -1
			}
		}
	}
	return fallback
}

func holdsObjects(arr string) bool {
	inner := strings.TrimSpace(arr[1 : len(arr)-1])
	return strings.HasPrefix(inner, "{")
}

var smartQuotes = strings.NewReplacer(
	"“", `"`, "”", `"`, "„", `"`, "‟", `"`,
	"‘", "'", "’", "'",
)

// normalizeQuotes replaces typographic quotes with their ASCII forms.
func normalizeQuotes(s string) string {
	return smartQuotes.Replace(s)
}
