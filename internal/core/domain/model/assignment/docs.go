// Package assignment contains the PendingAssignment aggregate: the durable
// record of one order's search for a courier.
//
// The aggregate implements the offer/response state machine
// (Pending → Offered → Assigned, with Pending → Abandoned when retry or age
// limits are exhausted), attempt bookkeeping with capped exponential
// backoff, and the at-most-one-active-offer invariant.
//
// Offer expiry is a field (OfferExpiresAt) checked by the reconciliation
// scanner, not a process-local timer, so deadlines survive restarts.
package assignment
