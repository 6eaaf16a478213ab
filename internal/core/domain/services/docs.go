// Package services provides domain services that implement dispatch
// decisions spanning multiple domain entities:
//
//   - EligibilityScorer: a pure scoring function over a courier profile and
//     the dispatch constraints
//   - CourierMatcher: nearest-eligible-courier selection with offer-history
//     exclusion and deterministic tie-breaks
//   - Constraints: the runtime configuration object these decisions run on,
//     with conservative hardcoded defaults
//
// Both services are free of I/O; all inputs, including the evaluation time,
// are parameters.
package services
