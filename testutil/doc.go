// Package testutil provides testing utilities for featprep.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating deterministic random sample matrices
// and object collections with named measurements.
//
// # Random Sample Generation
//
//	rng := testutil.NewRNG(seed)
//	samples := rng.UniformMatrix(rows, dim)           // uniform [0, 1)
//	samples = rng.GaussianMatrix(rows, dim, mean, sd) // normal
//
// # Object Generation
//
//	objects := rng.Objects(100, []string{"area", "perimeter"})
package testutil
