package services

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
)

// ErrNoCandidateFound is returned when no registered courier passes the
// matcher's filters for an attempt. It is a soft failure: the caller records
// it as a failed attempt with backoff, never as a terminal error.
var ErrNoCandidateFound = errors.New("no candidate courier found")

// distanceToleranceKm is the floating-point tolerance within which two
// candidate distances are treated as a tie.
const distanceToleranceKm = 1e-9

// Candidate pairs a courier's registry heartbeat with their directory
// profile for one matching pass.
type Candidate struct {
	Active  courier.ActiveCourier
	Profile *courier.Profile
}

// MatchResult identifies the chosen courier together with the facts the
// decision was made on.
type MatchResult struct {
	CourierID  kernel.UUID
	DistanceKm float64
	Score      int
}

// CourierMatcher is the domain service that picks one courier for one
// assignment attempt. For every candidate not yet offered this order it
// computes the great-circle distance to the pickup point, discards couriers
// outside their own radius or the global distance cap, discards stale
// heartbeats and ineligible profiles, and keeps the nearest of the rest.
//
// Tie-break: equal distances (within floating-point tolerance) prefer the
// higher eligibility score, then the lowest courier ID, so repeated runs are
// deterministic.
//
// The scan is O(candidates) per attempt, mirroring the registry snapshot it
// runs over. Candidates arrive through the CourierLocationSource port, so a
// spatial index can replace the linear registry without touching this
// contract.
type CourierMatcher struct {
	scorer EligibilityScorer
}

// NewCourierMatcher creates a matcher using the given scorer for tie-breaks
// and eligibility filtering.
func NewCourierMatcher() CourierMatcher {
	return CourierMatcher{scorer: NewEligibilityScorer()}
}

// Match selects the nearest eligible courier for a pickup point.
//
// Parameters:
//   - pickup: the order's pickup coordinates
//   - candidates: registry snapshot joined with directory profiles
//   - excluded: couriers already offered this order (the offer history)
//   - constraints: dispatch constraints in effect for this attempt
//   - now: evaluation time for staleness and scoring
//
// Returns ErrNoCandidateFound when the filtered set is empty.
func (m CourierMatcher) Match(
	pickup kernel.GeoPoint,
	candidates []Candidate,
	excluded []kernel.UUID,
	constraints Constraints,
	now time.Time,
) (MatchResult, error) {
	if err := pickup.Validate(); err != nil {
		return MatchResult{}, err
	}

	excludedSet := make(map[kernel.UUID]struct{}, len(excluded))
	for _, id := range excluded {
		excludedSet[id] = struct{}{}
	}

	var (
		best      MatchResult
		bestFound bool
	)

	for _, c := range candidates {
		if err := c.Active.Validate(); err != nil {
			return MatchResult{}, err
		}

		if _, alreadyOffered := excludedSet[c.Active.CourierID()]; alreadyOffered {
			continue
		}

		if c.Active.IsStale(now, constraints.LivenessWindow) {
			continue
		}

		distance, err := c.Active.Location().DistanceKm(pickup)
		if err != nil {
			return MatchResult{}, err
		}

		if distance > c.Active.MaxRadiusKm() {
			continue
		}
		if constraints.MaxDeliveryDistanceKm > 0 && distance > constraints.MaxDeliveryDistanceKm {
			continue
		}

		result, err := m.scorer.Score(c.Profile, constraints, now)
		if err != nil {
			return MatchResult{}, err
		}
		if !result.Eligible {
			continue
		}

		candidate := MatchResult{
			CourierID:  c.Active.CourierID(),
			DistanceKm: distance,
			Score:      result.Score,
		}

		if !bestFound || m.isBetter(candidate, best) {
			best = candidate
			bestFound = true
		}
	}

	if !bestFound {
		return MatchResult{}, ErrNoCandidateFound
	}

	return best, nil
}

// isBetter implements the distance / score / ID ordering between candidates.
func (m CourierMatcher) isBetter(candidate, current MatchResult) bool {
	diff := candidate.DistanceKm - current.DistanceKm
	if diff < -distanceToleranceKm {
		return true
	}
	if diff > distanceToleranceKm {
		return false
	}

	// Equidistant within tolerance: prefer the higher score, then the
	// lowest courier ID for determinism.
	if candidate.Score != current.Score {
		return candidate.Score > current.Score
	}
	return candidate.CourierID.String() < current.CourierID.String()
}
