package window

import (
	"errors"
	"math"
	"testing"
)

func TestGenerateSymmetric(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		ends float64
		mid  float64
	}{
		{"hann", TypeHann, 0, 1},
		{"hamming", TypeHamming, 0.08, 1},
		{"blackman", TypeBlackman, 0, 1},
		{"rectangular", TypeRectangular, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const size = 65
			w := Generate(tt.typ, size)
			if len(w) != size {
				t.Fatalf("length = %d, expected %d", len(w), size)
			}

			if math.Abs(w[0]-tt.ends) > 1e-10 {
				t.Errorf("w[0] = %v, expected %v", w[0], tt.ends)
			}
			if math.Abs(w[size-1]-tt.ends) > 1e-10 {
				t.Errorf("w[last] = %v, expected %v", w[size-1], tt.ends)
			}
			if math.Abs(w[size/2]-tt.mid) > 1e-10 {
				t.Errorf("w[mid] = %v, expected %v", w[size/2], tt.mid)
			}
		})
	}
}

func TestGenerateInvalidLength(t *testing.T) {
	if w := Generate(TypeHann, 0); w != nil {
		t.Errorf("Generate with length 0 = %v, expected nil", w)
	}

	_, err := Hann(0)
	if err == nil {
		t.Error("Hann(0) should return an error")
	}
}

func TestGeneratePeriodic(t *testing.T) {
	// Periodic Hann never reaches 1 at the last sample; useful for FFT framing.
	w := Generate(TypeHann, 8, WithPeriodic())
	symmetric := Generate(TypeHann, 8)

	if w[0] != 0 {
		t.Errorf("periodic w[0] = %v, expected 0", w[0])
	}
	if w[7] == symmetric[7] {
		t.Error("periodic and symmetric forms should differ at the last sample")
	}
}

func TestApply(t *testing.T) {
	buf := []float64{1, 1, 1, 1, 1}
	Apply(TypeHann, buf)

	if buf[0] != 0 || buf[4] != 0 {
		t.Errorf("Hann endpoints should be zeroed, got %v and %v", buf[0], buf[4])
	}
	if math.Abs(buf[2]-1) > 1e-10 {
		t.Errorf("Hann midpoint = %v, expected 1", buf[2])
	}
}

func TestApplyRectangularNoop(t *testing.T) {
	buf := []float64{1, 2, 3}
	Apply(TypeRectangular, buf)

	expected := []float64{1, 2, 3}
	for i := range buf {
		if buf[i] != expected[i] {
			t.Errorf("buf[%d] = %v, expected %v", i, buf[i], expected[i])
		}
	}
}

func TestApplyCoefficients(t *testing.T) {
	samples := []float64{1, 2, 3}
	coeffs := []float64{2, 0.5, 1}

	out, err := ApplyCoefficients(samples, coeffs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []float64{2, 1, 3}
	for i := range out {
		if out[i] != expected[i] {
			t.Errorf("out[%d] = %v, expected %v", i, out[i], expected[i])
		}
	}

	_, err = ApplyCoefficients(samples, coeffs[:2])
	if !errors.Is(err, errMismatchedLength) {
		t.Errorf("expected length mismatch error, got %v", err)
	}
}
