// Package scratch provides pooled scratch buffers for transient matrices.
//
// Buffers are borrowed with Get* and must be returned with the matching Put*
// on every exit path, including error paths. A borrowed buffer must not
// outlive the call that borrowed it.
package scratch

import "sync"

var f32Pool = sync.Pool{
	New: func() any { return []float32(nil) },
}

var f64Pool = sync.Pool{
	New: func() any { return []float64(nil) },
}

// GetFloat32 borrows a zeroed float32 slice of length n.
func GetFloat32(n int) []float32 {
	s := f32Pool.Get().([]float32)
	if cap(s) < n {
		return make([]float32, n)
	}
	s = s[:n]
	for i := range s {
		s[i] = 0
	}
	return s
}

// PutFloat32 returns a slice borrowed from GetFloat32.
func PutFloat32(s []float32) {
	if s == nil {
		return
	}
	f32Pool.Put(s[:0]) //nolint:staticcheck // slice header, not pointer
}

// GetFloat64 borrows a zeroed float64 slice of length n.
func GetFloat64(n int) []float64 {
	s := f64Pool.Get().([]float64)
	if cap(s) < n {
		return make([]float64, n)
	}
	s = s[:n]
	for i := range s {
		s[i] = 0
	}
	return s
}

// PutFloat64 returns a slice borrowed from GetFloat64.
func PutFloat64(s []float64) {
	if s == nil {
		return
	}
	f64Pool.Put(s[:0]) //nolint:staticcheck // slice header, not pointer
}
