// Package optimizer implements the Large Neighborhood Search core of a
// vehicle routing solver: ruin-recreate iteration, a two-level (hard/soft)
// constraint score, insertion-cost caching, and a population of accepted
// solutions governed by a biased-fitness rank.
//
// # Reading Guide
//
// Start with these files to understand the solve loop:
//   - problem.go: the immutable read model (locations, services, shipments,
//     vehicles, matrices) the rest of the package consumes.
//   - route.go, solution.go: the mutable working solution that ruin and
//     recreate operate on.
//   - constraint.go, constraints_route.go, constraints_global.go: the
//     scoring model, both full-recompute and marginal (insertion) forms.
//   - lns.go: the per-iteration loop that ties ruin, recreate, the
//     acceptor, and the population together.
//
// # Architecture
//
// optimizer defines the core types and the strategy interfaces; concrete
// strategy families (ruin, recreate, acceptor, selector) are tagged union
// types within this package rather than an open interface hierarchy, so
// new strategies are added by extending a switch, not by registering
// plugins. Worker coordination lives in optimizer/worker; problem
// ingestion and travel-matrix construction — both external collaborators
// from the core's point of view — live in optimizer/ingest and
// optimizer/travel.
package optimizer
