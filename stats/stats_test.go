package stats

import (
	"math"
	"math/rand"
	"testing"
)

func TestRunningStatsBasic(t *testing.T) {
	var s RunningStats
	for _, v := range []float64{10, 20, 30} {
		s.Push(v)
	}

	if s.Count() != 3 {
		t.Fatalf("Count = %d, want 3", s.Count())
	}
	if got := s.Mean(); got != 20 {
		t.Errorf("Mean = %v, want 20", got)
	}
	if got := s.Variance(); got != 100 {
		t.Errorf("Variance = %v, want 100", got)
	}
	if got := s.StdDev(); got != 10 {
		t.Errorf("StdDev = %v, want 10", got)
	}
	if s.Min() != 10 || s.Max() != 30 {
		t.Errorf("Min/Max = %v/%v, want 10/30", s.Min(), s.Max())
	}
	if got := s.Range(); got != 20 {
		t.Errorf("Range = %v, want 20", got)
	}
}

func TestRunningStatsSkipsNonFinite(t *testing.T) {
	var s RunningStats
	s.Push(math.NaN())
	s.Push(math.Inf(1))
	s.Push(5)
	s.Push(math.Inf(-1))
	s.Push(7)

	if s.Count() != 2 {
		t.Fatalf("Count = %d, want 2", s.Count())
	}
	if got := s.Mean(); got != 6 {
		t.Errorf("Mean = %v, want 6", got)
	}
	if s.Min() != 5 || s.Max() != 7 {
		t.Errorf("Min/Max = %v/%v, want 5/7", s.Min(), s.Max())
	}
}

func TestRunningStatsEmpty(t *testing.T) {
	var s RunningStats

	if s.Count() != 0 {
		t.Fatalf("Count = %d, want 0", s.Count())
	}
	for name, v := range map[string]float64{
		"Mean": s.Mean(), "Variance": s.Variance(), "Min": s.Min(), "Max": s.Max(), "Range": s.Range(),
	} {
		if !math.IsNaN(v) {
			t.Errorf("%s = %v, want NaN for empty accumulator", name, v)
		}
	}
}

func TestRunningStatsSingleValue(t *testing.T) {
	var s RunningStats
	s.Push(42)

	if got := s.Mean(); got != 42 {
		t.Errorf("Mean = %v, want 42", got)
	}
	if !math.IsNaN(s.Variance()) {
		t.Errorf("Variance = %v, want NaN for a single observation", s.Variance())
	}
	if s.Range() != 0 {
		t.Errorf("Range = %v, want 0", s.Range())
	}
}

// TestRunningStatsMatchesTwoPass cross-checks the streaming formulas against
// a naive two-pass computation on random data.
func TestRunningStatsMatchesTwoPass(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	values := make([]float64, 1000)
	var s RunningStats
	for i := range values {
		values[i] = rng.NormFloat64()*3 + 100
		s.Push(values[i])
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	variance := ss / float64(len(values)-1)

	if math.Abs(s.Mean()-mean) > 1e-9 {
		t.Errorf("Mean = %v, want %v", s.Mean(), mean)
	}
	if math.Abs(s.Variance()-variance) > 1e-6 {
		t.Errorf("Variance = %v, want %v", s.Variance(), variance)
	}
}
