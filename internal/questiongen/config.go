package questiongen

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// Validators run in order on every parsed question. A question that
	// fails any of them is dropped.
	Validators []Validator

	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxAvoid caps how many already-seen questions go into the prompt.
	MaxAvoid int
}

// DefaultConfig returns the standard validator chain and LLM settings.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&OptionsValidator{},
		},
		MaxTokens:   4096,
		Temperature: 0.7,
		MaxAvoid:    20,
	}
}
