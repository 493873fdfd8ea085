// Package testutil provides testing utilities for poolgraph.
//
// This package is intended for use in tests, benchmarks and the graphbench
// tool. It provides a seeded RNG, random graph generation with skewed degree
// distributions, random mutation workloads, and invariant assertions.
//
// # Random Graphs
//
//	rng := testutil.NewRNG(seed)
//	vs, _ := testutil.RandomGraph(g, rng, 1000, 5000, 1.2)
//
// # Invariant Checks
//
//	testutil.RequireInvariants(t, g)
package testutil
