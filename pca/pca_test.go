package pca

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

// randomSamples generates n rows of dim columns with per-column scales so the
// eigenvalue spectrum is spread out.
func randomSamples(rng *rand.Rand, n, dim int) []float32 {
	samples := make([]float32, n*dim)
	for r := 0; r < n; r++ {
		for c := 0; c < dim; c++ {
			scale := float64(dim - c) // descending variance per column
			samples[r*dim+c] = float32(rng.NormFloat64() * scale)
		}
	}
	return samples
}

func TestFitValidation(t *testing.T) {
	samples := randomSamples(rand.New(rand.NewSource(1)), 10, 4)

	if _, err := Fit(samples, 0, 0.9, false); err == nil {
		t.Error("expected error for zero dimension")
	}
	if _, err := Fit(samples[:9], 4, 0.9, false); err == nil {
		t.Error("expected error for ragged sample length")
	}

	var riv *ErrInvalidRetainedVariance
	if _, err := Fit(samples, 4, 0, false); !errors.As(err, &riv) {
		t.Errorf("expected ErrInvalidRetainedVariance, got %v", err)
	}
	if _, err := Fit(samples, 4, 1.5, false); !errors.As(err, &riv) {
		t.Errorf("expected ErrInvalidRetainedVariance, got %v", err)
	}

	// Fewer rows than columns is a fitting error, not a silent degradation.
	var tfs *ErrTooFewSamples
	if _, err := Fit(samples[:3*4], 4, 0.9, false); !errors.As(err, &tfs) {
		t.Errorf("expected ErrTooFewSamples, got %v", err)
	}
}

func TestFitZeroVariance(t *testing.T) {
	samples := make([]float32, 8*3)
	for i := range samples {
		samples[i] = 1
	}
	if _, err := Fit(samples, 3, 0.9, false); !errors.Is(err, ErrDegenerateData) {
		t.Errorf("expected ErrDegenerateData, got %v", err)
	}
}

func TestNumComponentsMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	samples := randomSamples(rng, 200, 8)

	prev := 0
	for _, r := range []float64{0.1, 0.3, 0.5, 0.7, 0.9, 0.99, 1.0} {
		p, err := Fit(samples, 8, r, false)
		if err != nil {
			t.Fatalf("Fit(r=%v): %v", r, err)
		}
		if p.NumComponents() < prev {
			t.Errorf("NumComponents decreased from %d to %d at r=%v", prev, p.NumComponents(), r)
		}
		prev = p.NumComponents()
	}

	// Full retention keeps every direction when all eigenvalues are positive.
	p, err := Fit(samples, 8, 1.0, false)
	if err != nil {
		t.Fatalf("Fit(r=1): %v", err)
	}
	if p.NumComponents() != 8 {
		t.Errorf("NumComponents = %d at r=1, want 8", p.NumComponents())
	}
}

func TestProjectRecoversDominantDirection(t *testing.T) {
	// Data varies almost entirely along a single known direction, so one
	// component retains nearly all variance and projections onto it recover
	// the signal.
	rng := rand.New(rand.NewSource(3))
	const dim = 4
	dir := []float64{0.5, 0.5, 0.5, 0.5} // unit vector

	const n = 100
	samples := make([]float32, n*dim)
	signal := make([]float64, n)
	for r := 0; r < n; r++ {
		s := rng.NormFloat64() * 10
		signal[r] = s
		for c := 0; c < dim; c++ {
			samples[r*dim+c] = float32(s*dir[c] + rng.NormFloat64()*0.01)
		}
	}

	p, err := Fit(samples, dim, 0.95, false)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if p.NumComponents() != 1 {
		t.Fatalf("NumComponents = %d, want 1", p.NumComponents())
	}

	out := make([]float32, n)
	if err := p.Project(samples, out, n); err != nil {
		t.Fatalf("Project: %v", err)
	}

	// Projections match the signal up to centering and a global sign.
	var meanSig float64
	for _, s := range signal {
		meanSig += s
	}
	meanSig /= n

	sign := 1.0
	if (float64(out[0]) < 0) != (signal[0]-meanSig < 0) {
		sign = -1
	}
	for r := 0; r < n; r++ {
		want := (signal[r] - meanSig) * sign
		if math.Abs(float64(out[r])-want) > 0.1 {
			t.Fatalf("row %d: projection %v, want ~%v", r, out[r], want)
		}
	}
}

func TestWhitenUnitVariance(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	const dim, n = 5, 500
	samples := randomSamples(rng, n, dim)

	p, err := Fit(samples, dim, 1.0, true)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	k := p.NumComponents()
	out := make([]float32, n*k)
	if err := p.Project(samples, out, n); err != nil {
		t.Fatalf("Project: %v", err)
	}

	// Each whitened component of the fitting data has approximately unit
	// variance (up to the epsilon regularization).
	for c := 0; c < k; c++ {
		var sum, ss float64
		for r := 0; r < n; r++ {
			v := float64(out[r*k+c])
			sum += v
			ss += v * v
		}
		mean := sum / n
		variance := (ss - float64(n)*mean*mean) / float64(n-1)
		if math.Abs(variance-1) > 0.05 {
			t.Errorf("component %d: whitened variance = %v, want ~1", c, variance)
		}
	}
}

func TestProjectInPlace(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	const dim, n = 6, 50
	samples := randomSamples(rng, n, dim)

	p, err := Fit(samples, dim, 0.8, false)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	k := p.NumComponents()
	if k >= dim {
		t.Skipf("retained all %d components, in-place narrowing not exercised", k)
	}

	separate := make([]float32, n*k)
	if err := p.Project(samples, separate, n); err != nil {
		t.Fatalf("Project: %v", err)
	}

	inPlace := make([]float32, len(samples))
	copy(inPlace, samples)
	if err := p.Project(inPlace, inPlace, n); err != nil {
		t.Fatalf("Project in place: %v", err)
	}

	for i := 0; i < n*k; i++ {
		if separate[i] != inPlace[i] {
			t.Fatalf("in-place projection diverges at %d: %v != %v", i, inPlace[i], separate[i])
		}
	}
}

func TestNewProjectorRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	const dim, n = 4, 60
	samples := randomSamples(rng, n, dim)

	p, err := Fit(samples, dim, 1.0, true)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	// Rebuild from exported parameters, as deserialization does. The derived
	// whitening cache must be recomputed identically.
	p2, err := NewProjector(p.Mean(), p.Components(), p.Eigenvalues(), p.Whiten())
	if err != nil {
		t.Fatalf("NewProjector: %v", err)
	}

	out1 := make([]float32, n*p.NumComponents())
	out2 := make([]float32, n*p2.NumComponents())
	if err := p.Project(samples, out1, n); err != nil {
		t.Fatalf("Project: %v", err)
	}
	if err := p2.Project(samples, out2, n); err != nil {
		t.Fatalf("Project: %v", err)
	}

	for i := range out1 {
		if out1[i] != out2[i] {
			t.Fatalf("rebuilt projector diverges at %d: %v != %v", i, out1[i], out2[i])
		}
	}
}

func TestNewProjectorValidation(t *testing.T) {
	if _, err := NewProjector(nil, nil, nil, false); err == nil {
		t.Error("expected error for empty parameters")
	}
	if _, err := NewProjector([]float64{0, 0}, []float64{1, 0, 0}, []float64{1, 1}, false); err == nil {
		t.Error("expected error for mismatched components length")
	}
}

func TestRelease(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	samples := randomSamples(rng, 20, 3)

	p, err := Fit(samples, 3, 0.9, false)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	out := make([]float32, 20*p.NumComponents())
	if err := p.Project(samples, out, 20); err != nil {
		t.Fatalf("Project: %v", err)
	}

	p.Release()
	p.Release() // idempotent

	if err := p.Project(samples, out, 20); !errors.Is(err, ErrReleased) {
		t.Errorf("Project after Release = %v, want ErrReleased", err)
	}
}
