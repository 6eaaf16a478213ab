package services

import "time"

// Constraints is the runtime configuration object for dispatch decisions:
// eligibility thresholds, scoring penalties and bonuses, matching limits,
// and the retry/abandonment schedule. Values normally come from the
// configuration store; when that store is unavailable the engine falls back
// to DefaultConstraints so dispatch keeps running on conservative settings.
type Constraints struct {
	// Eligibility thresholds and penalties.
	MinCompletionRate     float64
	CompletionRatePenalty int
	MinRating             float64
	RatingPenalty         int
	MaxActiveDeliveries   int
	ActiveDeliveryPenalty int

	// Experience bonuses, capped in total by BonusCap.
	DeliveriesPerBonusPoint int
	OnTimeRateBonusMin      float64
	OnTimeRateBonus         int
	FastResponseMaxSeconds  float64
	FastResponseBonus       int
	RecentActivityWindow    time.Duration
	RecentActivityBonus     int
	BonusCap                int

	// MinScore is the eligibility floor after penalties and bonuses.
	MinScore int

	// Matching limits.
	MaxDeliveryDistanceKm float64
	LivenessWindow        time.Duration

	// Offer/response and retry schedule.
	OfferResponseTTL time.Duration
	BaseDelay        time.Duration
	MaxDelay         time.Duration
	MaxAttempts      int
	MaxAge           time.Duration

	// Scanner cadence.
	ScanInterval   time.Duration
	ScanBatchLimit int
}

// DefaultConstraints returns the conservative hardcoded fallback used when
// the configuration store cannot be reached. Scoring must degrade to these
// values rather than fail closed and block dispatch entirely.
func DefaultConstraints() Constraints {
	return Constraints{
		MinCompletionRate:     0.85,
		CompletionRatePenalty: 25,
		MinRating:             4.0,
		RatingPenalty:         20,
		MaxActiveDeliveries:   2,
		ActiveDeliveryPenalty: 15,

		DeliveriesPerBonusPoint: 50,
		OnTimeRateBonusMin:      0.90,
		OnTimeRateBonus:         10,
		FastResponseMaxSeconds:  30,
		FastResponseBonus:       5,
		RecentActivityWindow:    24 * time.Hour,
		RecentActivityBonus:     5,
		BonusCap:                25,

		MinScore: 30,

		MaxDeliveryDistanceKm: 15,
		LivenessWindow:        90 * time.Second,

		OfferResponseTTL: 2 * time.Minute,
		BaseDelay:        5 * time.Second,
		MaxDelay:         5 * time.Minute,
		MaxAttempts:      10,
		MaxAge:           30 * time.Minute,

		ScanInterval:   10 * time.Second,
		ScanBatchLimit: 50,
	}
}
