package questiongen

import (
	"regexp"
	"strings"
)

// optionLabel matches "A) ", "A. ", "(A) ", "A: " and "A - " style prefixes.
var optionLabel = regexp.MustCompile(`^\(?([A-Za-z])[\).:]\s*|^([A-Za-z])\s+-\s+`)

// answerLetter matches a bare answer label: "B", "B)", "B.", "(B)" or
// "Option B".
var answerLetter = regexp.MustCompile(`^(?:\(([A-Z])\)|([A-Z])[\).]?|(?i:option)\s+([A-Za-z]))$`)

// stripOptionLabels removes letter prefixes from options, but only when
// every option carries one and they run A, B, C... in order. "A. Lincoln"
// on its own is left alone.
func stripOptionLabels(options []string) []string {
	if len(options) == 0 {
		return options
	}
	stripped := make([]string, len(options))
	for i, o := range options {
		m := optionLabel.FindStringSubmatch(o)
		if m == nil {
			return options
		}
		letter := m[1]
		if letter == "" {
			letter = m[2]
		}
		if strings.ToUpper(letter) != string(rune('A'+i)) {
			return options
		}
		stripped[i] = strings.TrimSpace(o[len(m[0]):])
	}
	return stripped
}

// resolveAnswer maps a letter-style answer onto option text. Answers that
// already equal an option are kept as they are. The mapping assumes the
// options are in the order the source labelled them.
func resolveAnswer(answer string, options []string) string {
	if len(options) == 0 || answer == "" {
		return answer
	}
	if contains(options, answer) {
		return answer
	}

	if idx, ok := letterIndex(answer); ok && idx < len(options) {
		return options[idx]
	}

	// "B) Paris" style: drop the label and match the remainder.
	if m := optionLabel.FindStringSubmatch(answer); m != nil {
		rest := strings.TrimSpace(answer[len(m[0]):])
		if contains(options, rest) {
			return rest
		}
	}
	return answer
}

func letterIndex(s string) (int, bool) {
	m := answerLetter.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	for _, g := range m[1:] {
		if g != "" {
			return int(strings.ToUpper(g)[0] - 'A'), true
		}
	}
	return 0, false
}

func contains(options []string, s string) bool {
	for _, o := range options {
		if o == s {
			return true
		}
	}
	return false
}
