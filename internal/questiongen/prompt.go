package questiongen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You write multiple-choice practice tests for high-school students.

Rules:
- Reply with a JSON array only. Each element is an object with the keys
  "question", "options", "correctAnswer" and "explanation".
- "options" holds exactly 4 answer texts. Do not prefix them with letters.
- "correctAnswer" is the full text of the correct option, copied exactly.
- "explanation" is one or two sentences on why the answer is right.
- Questions must be self-contained and match the requested difficulty.
- Do not repeat any question from the "already asked" list.`

// buildUserMessage constructs the user message for one generation request.
func buildUserMessage(input GenerateInput, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Subject: %s\n", input.Subject.DisplayName())
	fmt.Fprintf(&b, "Difficulty: %s\n", input.Difficulty)
	fmt.Fprintf(&b, "Number of questions: %d\n", input.Count)

	b.WriteString("\nAlready asked:\n")
	b.WriteString(buildAvoid(input.Avoid, cfg.MaxAvoid))

	return b.String()
}

// buildAvoid lists the most recent max questions, or "None".
func buildAvoid(seen []string, max int) string {
	if len(seen) == 0 {
		return "None"
	}
	if max > 0 && len(seen) > max {
		seen = seen[len(seen)-max:]
	}

	var b strings.Builder
	for i, q := range seen {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}
