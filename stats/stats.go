// Package stats provides streaming statistics over feature columns.
//
// RunningStats accumulates count, mean, variance, min and max in a single
// pass using Welford's incremental update, so fitting never needs to hold a
// second copy of the sample data. Non-finite inputs (NaN, ±Inf) are skipped
// entirely: they do not contribute to the count or to any moment.
package stats

import "math"

// RunningStats accumulates summary statistics for one feature column.
//
// The zero value is ready to use. RunningStats is not safe for concurrent
// use; fit one accumulator per column per goroutine.
type RunningStats struct {
	n    uint64
	mean float64
	m2   float64
	min  float64
	max  float64
}

// Push adds a value to the accumulator.
// NaN and ±Inf are ignored.
func (s *RunningStats) Push(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}

	if s.n == 0 {
		s.min = v
		s.max = v
	} else {
		if v < s.min {
			s.min = v
		}
		if v > s.max {
			s.max = v
		}
	}

	s.n++
	delta := v - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (v - s.mean)
}

// Count returns the number of finite values observed.
func (s *RunningStats) Count() uint64 { return s.n }

// Mean returns the mean of the observed values, or NaN if none were observed.
func (s *RunningStats) Mean() float64 {
	if s.n == 0 {
		return math.NaN()
	}
	return s.mean
}

// Variance returns the unbiased sample variance, or NaN for fewer than two
// observations.
func (s *RunningStats) Variance() float64 {
	if s.n < 2 {
		return math.NaN()
	}
	return s.m2 / float64(s.n-1)
}

// StdDev returns the sample standard deviation, or NaN for fewer than two
// observations.
func (s *RunningStats) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// Min returns the smallest observed value, or NaN if none were observed.
func (s *RunningStats) Min() float64 {
	if s.n == 0 {
		return math.NaN()
	}
	return s.min
}

// Max returns the largest observed value, or NaN if none were observed.
func (s *RunningStats) Max() float64 {
	if s.n == 0 {
		return math.NaN()
	}
	return s.max
}

// Range returns Max - Min, or NaN if no values were observed.
func (s *RunningStats) Range() float64 {
	if s.n == 0 {
		return math.NaN()
	}
	return s.max - s.min
}
