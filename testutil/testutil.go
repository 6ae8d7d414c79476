package testutil

import (
	"math/rand"
	"sync"

	"github.com/featprep/featprep/feature"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns, as a float64, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float64 in a loop).
func (r *RNG) FillUniform(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float32()
	}
}

// UniformMatrix generates a flat object-major matrix of rows*dim values in
// range [0, 1).
func (r *RNG) UniformMatrix(rows, dim int) []float32 {
	data := make([]float32, rows*dim)
	r.FillUniform(data)
	return data
}

// GaussianMatrix generates a flat object-major matrix of rows*dim values
// drawn from a normal distribution with the given mean and standard
// deviation.
func (r *RNG) GaussianMatrix(rows, dim int, mean, stddev float64) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, rows*dim)
	for i := range data {
		data[i] = float32(mean + stddev*r.rand.NormFloat64())
	}
	return data
}

// Objects generates num objects whose named measurements are uniform in
// [0, 1).
func (r *RNG) Objects(num int, names []string) []feature.Object {
	r.mu.Lock()
	defer r.mu.Unlock()

	objects := make([]feature.Object, num)
	for i := range objects {
		m := make(feature.MeasurementMap, len(names))
		for _, name := range names {
			m[name] = r.rand.Float64()
		}
		objects[i] = m
	}
	return objects
}

// ObjectsWithMissing generates num objects, dropping each measurement
// independently with probability missingRate.
func (r *RNG) ObjectsWithMissing(num int, names []string, missingRate float64) []feature.Object {
	r.mu.Lock()
	defer r.mu.Unlock()

	objects := make([]feature.Object, num)
	for i := range objects {
		m := make(feature.MeasurementMap, len(names))
		for _, name := range names {
			if r.rand.Float64() < missingRate {
				continue
			}
			m[name] = r.rand.Float64()
		}
		objects[i] = m
	}
	return objects
}
