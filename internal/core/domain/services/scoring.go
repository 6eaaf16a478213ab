package services

import (
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/courier"
)

// baseScore is the starting score before penalties and bonuses.
const baseScore = 100

// ScoreResult is the outcome of evaluating one courier against the dispatch
// constraints. A courier is eligible only when no disqualifying reason was
// recorded and the score reached the configured minimum.
type ScoreResult struct {
	Eligible bool
	Score    int
	Reasons  []string
}

// EligibilityScorer is a domain service computing a courier's fitness for an
// assignment. It is a pure function over the profile snapshot and the
// constraints: no I/O, no clock reads (the evaluation time is a parameter),
// so results are deterministic and trivially testable.
//
// Hard disqualifiers zero the score outright: wrong account role, inactive
// account, unapproved verification. Soft factors adjust a base of 100:
// completion-rate and rating shortfalls subtract penalties, each concurrent
// delivery above the cap subtracts another, and experience bonuses
// (completed deliveries, on-time rate, fast responses, recent activity) add
// points up to a cap that keeps scores from inflating without bound.
type EligibilityScorer struct{}

// NewEligibilityScorer creates a scorer instance.
func NewEligibilityScorer() EligibilityScorer {
	return EligibilityScorer{}
}

// Score evaluates a courier profile against the constraints as of now.
func (s EligibilityScorer) Score(profile *courier.Profile, constraints Constraints, now time.Time) (ScoreResult, error) {
	if err := profile.Validate(); err != nil {
		return ScoreResult{}, err
	}

	reasons := s.disqualifiers(profile)
	if len(reasons) > 0 {
		return ScoreResult{Eligible: false, Score: 0, Reasons: reasons}, nil
	}

	score := baseScore
	score -= s.penalties(profile, constraints, &reasons)
	score += s.bonuses(profile, constraints, now)

	if score < 0 {
		score = 0
	}

	eligible := score >= constraints.MinScore
	if !eligible {
		reasons = append(reasons, fmt.Sprintf("score %d below minimum %d", score, constraints.MinScore))
	}

	return ScoreResult{Eligible: eligible, Score: score, Reasons: reasons}, nil
}

// disqualifiers returns the hard-disqualification reasons, if any.
func (s EligibilityScorer) disqualifiers(profile *courier.Profile) []string {
	var reasons []string

	if profile.Role() != courier.RoleCourier {
		reasons = append(reasons, fmt.Sprintf("role %q is not courier", profile.Role()))
	}
	if !profile.IsActive() {
		reasons = append(reasons, "account is inactive")
	}
	if profile.Verification() != courier.VerificationApproved {
		reasons = append(reasons, fmt.Sprintf("verification status %q is not approved", profile.Verification()))
	}

	return reasons
}

// penalties computes the total soft penalty and records the reasons behind
// each deduction.
func (s EligibilityScorer) penalties(profile *courier.Profile, constraints Constraints, reasons *[]string) int {
	penalty := 0

	if profile.CompletionRate() < constraints.MinCompletionRate {
		penalty += constraints.CompletionRatePenalty
		*reasons = append(*reasons, fmt.Sprintf("completion rate %.2f below minimum %.2f",
			profile.CompletionRate(), constraints.MinCompletionRate))
	}

	if profile.Rating() < constraints.MinRating {
		penalty += constraints.RatingPenalty
		*reasons = append(*reasons, fmt.Sprintf("rating %.1f below minimum %.1f",
			profile.Rating(), constraints.MinRating))
	}

	if over := profile.ActiveDeliveries() - constraints.MaxActiveDeliveries; over > 0 {
		penalty += over * constraints.ActiveDeliveryPenalty
		*reasons = append(*reasons, fmt.Sprintf("%d active deliveries above cap %d",
			profile.ActiveDeliveries(), constraints.MaxActiveDeliveries))
	}

	return penalty
}

// bonuses computes the capped experience bonus total.
func (s EligibilityScorer) bonuses(profile *courier.Profile, constraints Constraints, now time.Time) int {
	bonus := 0

	if constraints.DeliveriesPerBonusPoint > 0 {
		bonus += profile.CompletedDeliveries() / constraints.DeliveriesPerBonusPoint
	}
	if profile.OnTimeRate() >= constraints.OnTimeRateBonusMin {
		bonus += constraints.OnTimeRateBonus
	}
	if profile.AvgResponseSeconds() > 0 && profile.AvgResponseSeconds() <= constraints.FastResponseMaxSeconds {
		bonus += constraints.FastResponseBonus
	}
	if now.Sub(profile.LastActiveAt()) <= constraints.RecentActivityWindow {
		bonus += constraints.RecentActivityBonus
	}

	if bonus > constraints.BonusCap {
		bonus = constraints.BonusCap
	}

	return bonus
}
