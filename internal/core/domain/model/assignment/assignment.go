package assignment

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// Domain errors for assignment operations.
var (
	// ErrAssignmentIsNotConstructed is returned when using an improperly
	// initialized PendingAssignment.
	ErrAssignmentIsNotConstructed = errors.New(
		"PendingAssignment must be created via NewPendingAssignment constructor")
	// ErrNoOutstandingOffer is returned when an accept or reject refers to
	// an assignment that holds no offer, or an offer held by another courier.
	ErrNoOutstandingOffer = errors.New("no outstanding offer for this courier")
	// ErrOfferExpired is returned when a courier responds to an offer after
	// its response deadline passed.
	ErrOfferExpired = errors.New("offer has expired")
)

// PendingAssignment is the aggregate root for one order's search for a
// courier. It is the durable record behind the offer/response state machine:
// attempt bookkeeping, the exclusive-offer flag, exponential backoff, and
// the abandonment rules all live here.
//
// Invariants:
//   - at most one PendingAssignment exists per order (enforced by the store)
//   - attemptCount only increases
//   - status Offered implies offeredCourierID and offerExpiresAt are set;
//     any other status implies both are nil
//   - nextAttemptAt never moves backwards on failure bookkeeping
//
// Example:
//
//	a, err := assignment.NewPendingAssignment(orderID, 10, time.Now())
//	if err != nil {
//	    // handle validation error
//	}
//	// a is Pending and due immediately
type PendingAssignment struct {
	// id uniquely identifies the assignment record
	id kernel.UUID
	// orderID is the order searching for a courier; unique per assignment
	orderID kernel.UUID
	// priority orders due assignments, higher first
	priority int
	// attemptCount is the number of completed (failed) attempts
	attemptCount int
	// createdAt anchors the max-age abandonment rule
	createdAt time.Time
	// lastAttemptAt is when failure bookkeeping last ran (nil before first)
	lastAttemptAt *time.Time
	// nextAttemptAt is the earliest time the scanner may process this record
	nextAttemptAt time.Time
	// offeredCourierID holds the courier with the exclusive offer, if any
	offeredCourierID *kernel.UUID
	// offerExpiresAt is the offer response deadline, if an offer is out
	offerExpiresAt *time.Time
	// status is the current state machine position
	status Status
	// guard ensures the aggregate was properly constructed
	guard guard.ConstructorGuard
}

// NewPendingAssignment creates a fresh assignment for an order that just
// became confirmed. The assignment starts Pending with zero attempts and is
// due for processing immediately.
//
// Parameters:
//   - orderID: the confirmed order (must be a valid UUID)
//   - priority: scheduling priority, higher first (must be >= 0)
//   - now: creation time, also the first nextAttemptAt
func NewPendingAssignment(orderID kernel.UUID, priority int, now time.Time) (*PendingAssignment, error) {
	a := &PendingAssignment{
		status: Pending,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		a.setID(kernel.NewUUID()),
		a.setOrderID(orderID),
		a.setPriority(priority),
	); err != nil {
		return nil, err
	}

	a.createdAt = now
	a.nextAttemptAt = now
	return a, nil
}

// RestorePendingAssignment reconstructs an assignment from persistence,
// preserving its attempt bookkeeping and any outstanding offer. The restored
// aggregate behaves identically to one that never left memory.
func RestorePendingAssignment(
	id kernel.UUID,
	orderID kernel.UUID,
	priority int,
	attemptCount int,
	createdAt time.Time,
	lastAttemptAt *time.Time,
	nextAttemptAt time.Time,
	offeredCourierID *kernel.UUID,
	offerExpiresAt *time.Time,
	status Status,
) (*PendingAssignment, error) {
	a := &PendingAssignment{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		a.setID(id),
		a.setOrderID(orderID),
		a.setPriority(priority),
		a.setStatus(status),
	); err != nil {
		return nil, err
	}

	if attemptCount < 0 {
		return nil, errs.NewValueIsInvalidError(
			fmt.Sprintf("attemptCount %d", attemptCount))
	}

	if status == Offered && (offeredCourierID == nil || offerExpiresAt == nil) {
		return nil, errs.NewValueIsInvalidError(
			"offered assignment without courier or deadline")
	}
	if status != Offered && (offeredCourierID != nil || offerExpiresAt != nil) {
		return nil, errs.NewValueIsInvalidError(
			fmt.Sprintf("%s assignment with offer fields set", status))
	}

	a.attemptCount = attemptCount
	a.createdAt = createdAt
	a.lastAttemptAt = lastAttemptAt
	a.nextAttemptAt = nextAttemptAt
	a.offeredCourierID = offeredCourierID
	a.offerExpiresAt = offerExpiresAt
	return a, nil
}

// Validate ensures the aggregate was constructed via one of its constructors.
func (a *PendingAssignment) Validate() error {
	if a == nil {
		return ErrAssignmentIsNotConstructed
	}
	return a.guard.Validate(ErrAssignmentIsNotConstructed)
}

// IsEqual compares two assignments by identifier.
func (a *PendingAssignment) IsEqual(other *PendingAssignment) bool {
	return other != nil && a.id.IsEqual(other.id)
}

// ID returns the assignment's unique identifier.
func (a *PendingAssignment) ID() kernel.UUID {
	return a.id
}

// OrderID returns the order this assignment serves.
func (a *PendingAssignment) OrderID() kernel.UUID {
	return a.orderID
}

// Priority returns the scheduling priority (higher first).
func (a *PendingAssignment) Priority() int {
	return a.priority
}

// AttemptCount returns the number of failed attempts so far.
func (a *PendingAssignment) AttemptCount() int {
	return a.attemptCount
}

// CreatedAt returns the creation time.
func (a *PendingAssignment) CreatedAt() time.Time {
	return a.createdAt
}

// LastAttemptAt returns when failure bookkeeping last ran, nil before the
// first failed attempt.
func (a *PendingAssignment) LastAttemptAt() *time.Time {
	return a.lastAttemptAt
}

// NextAttemptAt returns the earliest time this assignment is due again.
func (a *PendingAssignment) NextAttemptAt() time.Time {
	return a.nextAttemptAt
}

// Status returns the current state machine position.
func (a *PendingAssignment) Status() Status {
	return a.status
}

// IsOffered reports whether exactly one courier currently holds an offer.
func (a *PendingAssignment) IsOffered() bool {
	return a.status == Offered
}

// OfferedCourier returns the courier holding the outstanding offer, or nil.
func (a *PendingAssignment) OfferedCourier() *kernel.UUID {
	return a.offeredCourierID
}

// OfferExpiresAt returns the outstanding offer's response deadline, or nil.
func (a *PendingAssignment) OfferExpiresAt() *time.Time {
	return a.offerExpiresAt
}

// MarkOffered records that an exclusive, time-boxed offer was published to
// the given courier. Only one offer may be outstanding: the transition is
// valid from Pending only.
//
// Parameters:
//   - courierID: the courier receiving the offer
//   - now: offer publication time
//   - responseTTL: how long the courier has to respond
func (a *PendingAssignment) MarkOffered(courierID kernel.UUID, now time.Time, responseTTL time.Duration) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	newStatus, err := a.status.Offer()
	if err != nil {
		return err
	}

	deadline := now.Add(responseTTL)
	a.status = newStatus
	a.offeredCourierID = &courierID
	a.offerExpiresAt = &deadline
	return nil
}

// CheckAccept validates a courier's acceptance against the outstanding offer
// without changing state. The assignment stays Offered, so a lost race on the
// subsequent courier write can still release the offer with RecordFailure.
//
// Returns ErrNoOutstandingOffer when no offer is out or the offer belongs to
// a different courier, and ErrOfferExpired when the response deadline has
// passed.
func (a *PendingAssignment) CheckAccept(courierID kernel.UUID, now time.Time) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	if a.status != Offered || a.offeredCourierID == nil || !a.offeredCourierID.IsEqual(courierID) {
		return ErrNoOutstandingOffer
	}

	if a.offerExpiresAt != nil && now.After(*a.offerExpiresAt) {
		return ErrOfferExpired
	}

	return nil
}

// ConfirmAccept moves the state machine to Assigned after a validated
// acceptance. Call it only once the conditional courier write on the order
// has been won; until then use CheckAccept, which leaves the offer
// releasable.
func (a *PendingAssignment) ConfirmAccept(courierID kernel.UUID, now time.Time) error {
	if err := a.CheckAccept(courierID, now); err != nil {
		return err
	}

	newStatus, err := a.status.Accept()
	if err != nil {
		return err
	}

	a.status = newStatus
	return nil
}

// RecordFailure applies failure bookkeeping after a rejection, timeout,
// no-candidate attempt, or processing error: the offer (if any) is cleared,
// the attempt counter increases, and the next attempt is pushed out by a
// capped exponential backoff delay.
func (a *PendingAssignment) RecordFailure(now time.Time, baseDelay, maxDelay time.Duration) error {
	newStatus, err := a.status.Release()
	if err != nil {
		return err
	}

	a.status = newStatus
	a.offeredCourierID = nil
	a.offerExpiresAt = nil
	a.attemptCount++
	a.lastAttemptAt = &now
	a.nextAttemptAt = now.Add(BackoffDelay(a.attemptCount, baseDelay, maxDelay))
	return nil
}

// ShouldAbandon reports whether retry or age limits are exhausted.
// An assignment with an outstanding offer is never abandoned; the offer must
// time out (RecordFailure) first.
func (a *PendingAssignment) ShouldAbandon(now time.Time, maxAttempts int, maxAge time.Duration) bool {
	if a.status != Pending {
		return false
	}
	return a.attemptCount >= maxAttempts || now.Sub(a.createdAt) > maxAge
}

// MarkAbandoned moves the assignment to its terminal Abandoned state.
func (a *PendingAssignment) MarkAbandoned() error {
	newStatus, err := a.status.Abandon()
	if err != nil {
		return err
	}

	a.status = newStatus
	return nil
}

// BackoffDelay computes the capped exponential backoff delay for the given
// attempt count: min(baseDelay * 2^attempt, maxDelay). The result is
// monotonically non-decreasing in attempt and never exceeds maxDelay.
func BackoffDelay(attempt int, baseDelay, maxDelay time.Duration) time.Duration {
	if baseDelay <= 0 || maxDelay <= 0 {
		return 0
	}

	delay := baseDelay
	for i := 0; i < attempt; i++ {
		if delay >= maxDelay/2 {
			return maxDelay
		}
		delay *= 2
	}

	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

// setID validates and sets the assignment identifier.
func (a *PendingAssignment) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	a.id = id
	return nil
}

// setOrderID validates and sets the order identifier.
func (a *PendingAssignment) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	a.orderID = orderID
	return nil
}

// setPriority validates and sets the scheduling priority.
func (a *PendingAssignment) setPriority(priority int) error {
	if priority < 0 {
		return errs.NewValueIsInvalidErrorWithCause("priority",
			fmt.Errorf("%d is negative", priority))
	}
	a.priority = priority
	return nil
}

// setStatus validates and sets the persisted status.
func (a *PendingAssignment) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	a.status = status
	return nil
}
