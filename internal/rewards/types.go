package rewards

import "fmt"

// Reason identifies why credits were awarded.
type Reason string

const (
	ReasonSession  Reason = "session"  // Points earned on correct answers
	ReasonPerfect  Reason = "perfect"  // Every question right
	ReasonRevision Reason = "revision" // Mistakes cleared in a revision test
)

// AllReasons returns all reasons in display order.
func AllReasons() []Reason {
	return []Reason{ReasonSession, ReasonPerfect, ReasonRevision}
}

// DisplayName returns a human-readable label for the reason.
func (r Reason) DisplayName() string {
	switch r {
	case ReasonSession:
		return "Session"
	case ReasonPerfect:
		return "Perfect score"
	case ReasonRevision:
		return "Revision"
	default:
		return string(r)
	}
}

// Award is one line of a credit payout.
type Award struct {
	Reason Reason
	Amount int
	Note   string
}

func (a Award) String() string {
	return fmt.Sprintf("+%d %s (%s)", a.Amount, a.Reason.DisplayName(), a.Note)
}

// Config sets the bonus amounts.
type Config struct {
	PerfectBonus  int `yaml:"perfect_bonus"`
	RevisionBonus int `yaml:"revision_bonus"`
}

// DefaultConfig returns the standard bonuses.
func DefaultConfig() Config {
	return Config{PerfectBonus: 10, RevisionBonus: 2}
}

// Total sums the amounts of awards.
func Total(awards []Award) int {
	n := 0
	for _, a := range awards {
		n += a.Amount
	}
	return n
}
