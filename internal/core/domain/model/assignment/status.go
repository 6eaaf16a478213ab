package assignment

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents the lifecycle state of a pending assignment.
// It implements a state machine with defined transitions so an order's
// dispatch attempt always follows the correct workflow.
//
// State transitions:
//
//	Pending ──> Offered ──> Assigned
//	   │  ▲        │
//	   │  └────────┘ (reject / timeout / error)
//	   └──> Abandoned
//
// Assigned and Abandoned are terminal.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending means no offer is outstanding; the assignment is waiting for
	// its next attempt.
	Pending

	// Offered means exactly one courier holds a time-boxed exclusive right
	// to accept the order.
	Offered

	// Assigned means a courier accepted the offer. Terminal.
	Assigned

	// Abandoned means the retry or age limit was exhausted. Terminal.
	Abandoned
)

// getStatusStrings returns a map of Status values to their string
// representations, including Unknown.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "Unknown",
		Pending:   "Pending",
		Offered:   "Offered",
		Assigned:  "Assigned",
		Abandoned: "Abandoned",
	}
}

// getValidStatusStrings returns only valid Status values to support
// validation of persisted data.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:   "Pending",
		Offered:   "Offered",
		Assigned:  "Assigned",
		Abandoned: "Abandoned",
	}
}

// String returns the status name, or "Status(N)" for unmapped values.
func (s Status) String() string {
	if name, ok := getStatusStrings()[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Validate returns an error for statuses outside the defined set.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidError(fmt.Sprintf("status %q", s))
	}
	return nil
}

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return s == Assigned || s == Abandoned
}

// Offer transitions Pending → Offered.
func (s Status) Offer() (Status, error) {
	if s != Pending {
		return Unknown, errs.NewValueIsInvalidError(
			fmt.Sprintf("transition %s -> Offered", s))
	}
	return Offered, nil
}

// Release transitions Offered → Pending after a rejection, timeout, or
// processing error. Releasing an already pending assignment is a no-op so
// failure bookkeeping stays idempotent under races.
func (s Status) Release() (Status, error) {
	switch s {
	case Offered, Pending:
		return Pending, nil
	default:
		return Unknown, errs.NewValueIsInvalidError(
			fmt.Sprintf("transition %s -> Pending", s))
	}
}

// Accept transitions Offered → Assigned.
func (s Status) Accept() (Status, error) {
	if s != Offered {
		return Unknown, errs.NewValueIsInvalidError(
			fmt.Sprintf("transition %s -> Assigned", s))
	}
	return Assigned, nil
}

// Abandon transitions Pending → Abandoned.
func (s Status) Abandon() (Status, error) {
	if s != Pending {
		return Unknown, errs.NewValueIsInvalidError(
			fmt.Sprintf("transition %s -> Abandoned", s))
	}
	return Abandoned, nil
}
