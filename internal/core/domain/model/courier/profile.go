package courier

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// Role is the account role of a directory entry. Only RoleCourier accounts
// are eligible for dispatch.
type Role string

// Account roles as reported by the courier directory.
const (
	RoleCourier  Role = "courier"
	RoleCustomer Role = "customer"
	RoleManager  Role = "manager"
)

// VerificationStatus is the state of a courier's document verification.
type VerificationStatus string

// Verification states as reported by the courier directory.
const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// Domain errors for courier profiles.
var (
	// ErrProfileIsNotConstructed is returned when using an improperly
	// initialized Profile.
	ErrProfileIsNotConstructed = errors.New("Profile must be created via NewProfile constructor")
)

// Profile is a read-only snapshot of a courier's directory record: the
// account facts and performance statistics that eligibility scoring runs
// over. The dispatcher never mutates profiles; they are fetched from the
// external courier directory per attempt.
//
// Example:
//
//	p, err := courier.NewProfile(courier.ProfileData{
//	    CourierID:            id,
//	    Role:                 courier.RoleCourier,
//	    IsActive:             true,
//	    Verification:         courier.VerificationApproved,
//	    Rating:               4.7,
//	    CompletionRate:       0.96,
//	    CompletedDeliveries:  210,
//	    ActiveDeliveries:     1,
//	    OnTimeRate:           0.93,
//	    AvgResponseSeconds:   25,
//	    LastActiveAt:         time.Now(),
//	})
type Profile struct {
	courierID           kernel.UUID
	role                Role
	isActive            bool
	verification        VerificationStatus
	rating              float64
	completionRate      float64
	completedDeliveries int
	activeDeliveries    int
	onTimeRate          float64
	avgResponseSeconds  float64
	lastActiveAt        time.Time
	guard               guard.ConstructorGuard
}

// ProfileData carries the raw directory fields into NewProfile.
type ProfileData struct {
	CourierID           kernel.UUID
	Role                Role
	IsActive            bool
	Verification        VerificationStatus
	Rating              float64
	CompletionRate      float64
	CompletedDeliveries int
	ActiveDeliveries    int
	OnTimeRate          float64
	AvgResponseSeconds  float64
	LastActiveAt        time.Time
}

// NewProfile creates a validated courier profile snapshot.
// Rating must be within [0, 5]; completion and on-time rates within [0, 1];
// delivery counters must be non-negative.
func NewProfile(data ProfileData) (*Profile, error) {
	p := &Profile{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		p.setCourierID(data.CourierID),
		p.setRating(data.Rating),
		p.setRate("completionRate", data.CompletionRate, &p.completionRate),
		p.setRate("onTimeRate", data.OnTimeRate, &p.onTimeRate),
		p.setCounter("completedDeliveries", data.CompletedDeliveries, &p.completedDeliveries),
		p.setCounter("activeDeliveries", data.ActiveDeliveries, &p.activeDeliveries),
	); err != nil {
		return nil, err
	}

	p.role = data.Role
	p.isActive = data.IsActive
	p.verification = data.Verification
	p.avgResponseSeconds = data.AvgResponseSeconds
	p.lastActiveAt = data.LastActiveAt
	return p, nil
}

// Validate ensures the profile was constructed via NewProfile.
func (p *Profile) Validate() error {
	if p == nil {
		return ErrProfileIsNotConstructed
	}
	return p.guard.Validate(ErrProfileIsNotConstructed)
}

// CourierID returns the courier's identifier.
func (p *Profile) CourierID() kernel.UUID {
	return p.courierID
}

// Role returns the account role.
func (p *Profile) Role() Role {
	return p.role
}

// IsActive reports whether the account is active.
func (p *Profile) IsActive() bool {
	return p.isActive
}

// Verification returns the document verification status.
func (p *Profile) Verification() VerificationStatus {
	return p.verification
}

// Rating returns the courier's average customer rating on a 0-5 scale.
func (p *Profile) Rating() float64 {
	return p.rating
}

// CompletionRate returns the fraction of accepted deliveries completed, 0-1.
func (p *Profile) CompletionRate() float64 {
	return p.completionRate
}

// CompletedDeliveries returns the lifetime completed delivery count.
func (p *Profile) CompletedDeliveries() int {
	return p.completedDeliveries
}

// ActiveDeliveries returns the number of deliveries currently in progress.
func (p *Profile) ActiveDeliveries() int {
	return p.activeDeliveries
}

// OnTimeRate returns the fraction of deliveries completed on time, 0-1.
func (p *Profile) OnTimeRate() float64 {
	return p.onTimeRate
}

// AvgResponseSeconds returns the courier's average offer response time.
func (p *Profile) AvgResponseSeconds() float64 {
	return p.avgResponseSeconds
}

// LastActiveAt returns when the courier was last active.
func (p *Profile) LastActiveAt() time.Time {
	return p.lastActiveAt
}

// setCourierID validates and sets the courier identifier.
func (p *Profile) setCourierID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	p.courierID = id
	return nil
}

// setRating validates the 0-5 rating scale.
func (p *Profile) setRating(rating float64) error {
	if rating < 0 || rating > 5 {
		return errs.NewValueIsOutOfRangeError("rating", rating, 0, 5)
	}
	p.rating = rating
	return nil
}

// setRate validates a 0-1 fraction field.
func (p *Profile) setRate(name string, value float64, target *float64) error {
	if value < 0 || value > 1 {
		return errs.NewValueIsOutOfRangeError(name, value, 0, 1)
	}
	*target = value
	return nil
}

// setCounter validates a non-negative counter field.
func (p *Profile) setCounter(name string, value int, target *int) error {
	if value < 0 {
		return errs.NewValueIsInvalidError(name)
	}
	*target = value
	return nil
}
