package rewards

import (
	"fmt"

	"github.com/abhisek/studyloop/internal/session"
)

// Compute works out the payout for a finished session. cleared is the
// number of mistakes removed from the pool by this session.
func Compute(cfg Config, sum session.Summary, cleared int) []Award {
	var awards []Award
	if sum.PointsEarned > 0 {
		awards = append(awards, Award{
			Reason: ReasonSession,
			Amount: sum.PointsEarned,
			Note:   fmt.Sprintf("%d/%d correct", sum.Correct, sum.Total),
		})
	}
	if sum.Perfect() && cfg.PerfectBonus > 0 {
		awards = append(awards, Award{
			Reason: ReasonPerfect,
			Amount: cfg.PerfectBonus,
			Note:   fmt.Sprintf("%.0f%% accuracy", sum.Accuracy*100),
		})
	}
	if cleared > 0 && cfg.RevisionBonus > 0 {
		awards = append(awards, Award{
			Reason: ReasonRevision,
			Amount: cleared * cfg.RevisionBonus,
			Note:   fmt.Sprintf("%d mistakes cleared", cleared),
		})
	}
	return awards
}
