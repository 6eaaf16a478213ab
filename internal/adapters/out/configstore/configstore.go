// Package configstore supplies dispatch constraints from a Postgres-backed
// configuration table, cached with a short TTL. A configuration outage never
// blocks dispatch: on load failure the provider serves the last good value,
// or the hardcoded conservative defaults when nothing was ever loaded.
package configstore

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"dispatch/internal/core/domain/services"

	"gorm.io/gorm"
)

// ConstraintsDTO is the single-row configuration table. Durations are stored
// in seconds for operator friendliness.
type ConstraintsDTO struct {
	ID int `gorm:"primaryKey"`

	MinCompletionRate     float64
	CompletionRatePenalty int
	MinRating             float64
	RatingPenalty         int
	MaxActiveDeliveries   int
	ActiveDeliveryPenalty int

	DeliveriesPerBonusPoint int
	OnTimeRateBonusMin      float64
	OnTimeRateBonus         int
	FastResponseMaxSeconds  float64
	FastResponseBonus       int
	RecentActivityWindowSec int
	RecentActivityBonus     int
	BonusCap                int

	MinScore int

	MaxDeliveryDistanceKm float64
	LivenessWindowSec     int

	OfferResponseTTLSec int
	BaseDelaySec        int
	MaxDelaySec         int
	MaxAttempts         int
	MaxAgeSec           int

	ScanIntervalSec int
	ScanBatchLimit  int

	UpdatedAt time.Time
}

// TableName specifies the database table name for dispatch constraints.
func (ConstraintsDTO) TableName() string {
	return "dispatch_constraints"
}

// CachedConstraintsProvider implements the constraints provider port with a
// TTL cache over the configuration table. Safe for concurrent use.
type CachedConstraintsProvider struct {
	db     *gorm.DB
	ttl    time.Duration
	logger *slog.Logger

	mu        sync.Mutex
	cached    services.Constraints
	hasCached bool
	fetchedAt time.Time
}

// NewCachedConstraintsProvider creates a provider reading the configuration
// table at most once per ttl.
func NewCachedConstraintsProvider(db *gorm.DB, ttl time.Duration, logger *slog.Logger) *CachedConstraintsProvider {
	return &CachedConstraintsProvider{
		db:     db,
		ttl:    ttl,
		logger: logger.With("component", "configstore"),
	}
}

// Constraints returns the current dispatch constraints. Never fails: on load
// errors it degrades to the last good value or the hardcoded defaults.
func (p *CachedConstraintsProvider) Constraints(ctx context.Context) services.Constraints {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.hasCached && time.Since(p.fetchedAt) < p.ttl {
		return p.cached
	}

	var dto ConstraintsDTO
	if err := p.db.WithContext(ctx).First(&dto).Error; err != nil {
		p.logger.Warn("constraints load failed, serving fallback",
			"error", err,
			"have_last_good", p.hasCached)
		if p.hasCached {
			return p.cached
		}
		return services.DefaultConstraints()
	}

	p.cached = toDomain(dto)
	p.hasCached = true
	p.fetchedAt = time.Now()
	return p.cached
}

func toDomain(dto ConstraintsDTO) services.Constraints {
	return services.Constraints{
		MinCompletionRate:     dto.MinCompletionRate,
		CompletionRatePenalty: dto.CompletionRatePenalty,
		MinRating:             dto.MinRating,
		RatingPenalty:         dto.RatingPenalty,
		MaxActiveDeliveries:   dto.MaxActiveDeliveries,
		ActiveDeliveryPenalty: dto.ActiveDeliveryPenalty,

		DeliveriesPerBonusPoint: dto.DeliveriesPerBonusPoint,
		OnTimeRateBonusMin:      dto.OnTimeRateBonusMin,
		OnTimeRateBonus:         dto.OnTimeRateBonus,
		FastResponseMaxSeconds:  dto.FastResponseMaxSeconds,
		FastResponseBonus:       dto.FastResponseBonus,
		RecentActivityWindow:    time.Duration(dto.RecentActivityWindowSec) * time.Second,
		RecentActivityBonus:     dto.RecentActivityBonus,
		BonusCap:                dto.BonusCap,

		MinScore: dto.MinScore,

		MaxDeliveryDistanceKm: dto.MaxDeliveryDistanceKm,
		LivenessWindow:        time.Duration(dto.LivenessWindowSec) * time.Second,

		OfferResponseTTL: time.Duration(dto.OfferResponseTTLSec) * time.Second,
		BaseDelay:        time.Duration(dto.BaseDelaySec) * time.Second,
		MaxDelay:         time.Duration(dto.MaxDelaySec) * time.Second,
		MaxAttempts:      dto.MaxAttempts,
		MaxAge:           time.Duration(dto.MaxAgeSec) * time.Second,

		ScanInterval:   time.Duration(dto.ScanIntervalSec) * time.Second,
		ScanBatchLimit: dto.ScanBatchLimit,
	}
}
