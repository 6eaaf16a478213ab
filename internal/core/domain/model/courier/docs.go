// Package courier contains the dispatcher's view of couriers: the Profile
// snapshot read from the external courier directory (account facts and
// performance statistics used by eligibility scoring) and the ActiveCourier
// heartbeat entry kept in the in-memory registry.
//
// The dispatcher owns neither record; both are projections of externally
// managed state, so the package exposes no mutating behavior beyond
// validated construction.
package courier
