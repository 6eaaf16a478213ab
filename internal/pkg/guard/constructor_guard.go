// Package guard implements the constructor-guard pattern used by domain
// value objects, aggregates and commands. Embedding a ConstructorGuard in a
// struct makes zero-value instances detectable: only instances produced by
// the designated constructor pass Validate.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific
// validation error is supplied and the object was not constructed properly.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard distinguishes properly constructed objects from zero
// values. The zero value of the guard itself always fails validation, so a
// struct that embeds it can only pass Validate if its constructor ran.
//
// Example:
//
//	type Offer struct {
//	    orderID kernel.UUID
//	    guard   guard.ConstructorGuard
//	}
//
//	func NewOffer(orderID kernel.UUID) Offer {
//	    return Offer{orderID: orderID, guard: guard.NewConstructorGuard()}
//	}
//
//	func (o Offer) Validate() error {
//	    return o.guard.Validate(ErrOfferIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard marks the embedding object as properly constructed.
// Call it from the object's constructor only.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns nil if the object was created via its constructor.
// Otherwise it returns validationError, or ErrDefaultConstructorGuard when
// validationError is nil.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
