package tdoa

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-doa/dsp/spectrum"
	"github.com/cwbudde/algo-doa/dsp/window"
	"github.com/cwbudde/algo-doa/dsp/xcorr"
)

// stabilizer keeps the GCC weighting denominators away from zero.
const stabilizer = 1e-10

// GCC returns the TDOA in seconds estimated with the generalized
// cross-correlation under the selected weighting (MethodPHAT or MethodSCOT).
//
// The cross-spectrum R = S1 * conj(S2) is weighted, inverse-transformed and
// re-centered so the middle of the correlation corresponds to zero lag; ties
// in the maximum resolve to the earliest lag.
func (e *Estimator) GCC(sig1, sig2 []float64, m Method) (float64, error) {
	corr, center, err := e.gccCorrelation(sig1, sig2, m)
	if err != nil {
		return 0, err
	}

	idx, _ := xcorr.Peak(corr)

	return float64(idx-center) / e.SampleRate, nil
}

// CorrelationFunction returns the correlation curve the selected method
// would pick its peak from, along with the sample lag of each output index.
// Useful for plotting or inspecting secondary peaks.
func (e *Estimator) CorrelationFunction(sig1, sig2 []float64, m Method) (corr []float64, lags []int, err error) {
	switch m {
	case MethodCrossCorrelation:
		if err := e.validate(sig1, sig2); err != nil {
			return nil, nil, err
		}
		corr, err = xcorr.Full(sig1, sig2)
		if err != nil {
			return nil, nil, err
		}
		lags = make([]int, len(corr))
		for i := range lags {
			lags[i] = xcorr.LagFromIndex(i, len(sig2))
		}
		return corr, lags, nil
	case MethodPHAT, MethodSCOT:
		corr, center, err := e.gccCorrelation(sig1, sig2, m)
		if err != nil {
			return nil, nil, err
		}
		lags = make([]int, len(corr))
		for i := range lags {
			lags[i] = i - center
		}
		return corr, lags, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownMethod, m)
	}
}

// gccCorrelation computes the weighted, re-centered correlation and the
// output index corresponding to zero lag.
func (e *Estimator) gccCorrelation(sig1, sig2 []float64, m Method) ([]float64, int, error) {
	if err := e.validate(sig1, sig2); err != nil {
		return nil, 0, err
	}
	if m != MethodPHAT && m != MethodSCOT {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnknownMethod, m)
	}

	if e.win != window.TypeRectangular {
		sig1 = tapered(sig1, e.win)
		sig2 = tapered(sig2, e.win)
	}

	// Transform length sufficient for linear correlation, rounded up to the
	// FFT plan size.
	n := len(sig1) + len(sig2) - 1
	fftSize := xcorr.NextPowerOf2(n)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, 0, fmt.Errorf("tdoa: failed to create FFT plan: %w", err)
	}

	s1 := zeroPadded(sig1, fftSize)
	s2 := zeroPadded(sig2, fftSize)

	if err := plan.Forward(s1, s1); err != nil {
		return nil, 0, fmt.Errorf("tdoa: forward FFT failed: %w", err)
	}
	if err := plan.Forward(s2, s2); err != nil {
		return nil, 0, fmt.Errorf("tdoa: forward FFT failed: %w", err)
	}

	// Cross-spectrum R = S1 * conj(S2).
	r := make([]complex128, fftSize)
	for i := range r {
		r[i] = s1[i] * complex(real(s2[i]), -imag(s2[i]))
	}

	switch m {
	case MethodPHAT:
		weightPHAT(r)
	case MethodSCOT:
		weightSCOT(r, s1, s2)
	}

	cc := make([]complex128, fftSize)
	if err := plan.Inverse(cc, r); err != nil {
		return nil, 0, fmt.Errorf("tdoa: inverse FFT failed: %w", err)
	}

	// Circular re-centering: output index fftSize/2 corresponds to lag 0.
	center := fftSize / 2
	corr := make([]float64, fftSize)
	for i := range corr {
		corr[i] = real(cc[(i+center)%fftSize])
	}

	return corr, center, nil
}

// weightPHAT normalizes the cross-spectrum by its own magnitude, keeping
// only phase information: R <- R / (|R| + stabilizer).
func weightPHAT(r []complex128) {
	mag := spectrum.Magnitude(r)
	for i := range r {
		r[i] /= complex(mag[i]+stabilizer, 0)
	}
}

// weightSCOT normalizes the cross-spectrum by the geometric mean of the two
// signals' power spectra: R <- R / (sqrt(|S1|^2 * |S2|^2) + stabilizer).
func weightSCOT(r, s1, s2 []complex128) {
	p1 := spectrum.Power(s1)
	p2 := spectrum.Power(s2)
	for i := range r {
		r[i] /= complex(math.Sqrt(p1[i]*p2[i])+stabilizer, 0)
	}
}

func tapered(sig []float64, t window.Type) []float64 {
	out := make([]float64, len(sig))
	copy(out, sig)
	window.Apply(t, out)
	return out
}

func zeroPadded(sig []float64, n int) []complex128 {
	out := make([]complex128, n)
	for i, v := range sig {
		out[i] = complex(v, 0)
	}
	return out
}
