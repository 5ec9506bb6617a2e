// Package xcorr provides linear cross-correlation routines for signal
// alignment and time-delay estimation.
//
// The package offers two strategies:
//
//   - Direct correlation: Simple O(N*M) time-domain computation, best for
//     short signals
//   - FFT correlation: O((N+M) log(N+M)) frequency-domain computation,
//     efficient for longer signals
//
// Full automatically selects a strategy based on input sizes.
//
// All functions compute the full correlation with output length
// len(a) + len(b) - 1, where output index k corresponds to sample lag
// k - (len(b) - 1). A peak at positive lag means a is a delayed copy of b.
package xcorr

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// ErrEmptyInput is returned when either input signal is empty.
var ErrEmptyInput = errors.New("xcorr: empty input")

// Direct computes the full cross-correlation of a and b in the time domain.
// The result has length len(a) + len(b) - 1.
//
// This is an O(N*M) algorithm suitable for short signals. For longer
// signals, use FFT or Full.
func Direct(a, b []float64) ([]float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, ErrEmptyInput
	}

	n := len(a)
	m := len(b)
	result := make([]float64, n+m-1)

	// corr(a,b)[k] = sum_i a[i]*b[i-lag] with lag = k-(m-1), equivalent to
	// convolving a with the time-reversed b.
	bRev := make([]float64, m)
	for i := range b {
		bRev[i] = b[m-1-i]
	}

	// Use the SIMD-accelerated path for second signals >= 4 samples.
	const simdThreshold = 4
	if m >= simdThreshold {
		directToSIMD(result, a, bRev)
	} else {
		directToScalar(result, a, bRev)
	}

	return result, nil
}

// directToScalar accumulates the correlation for very short second signals.
func directToScalar(dst, a, bRev []float64) {
	for i := range a {
		ai := a[i]
		for j := range bRev {
			dst[i+j] += ai * bRev[j]
		}
	}
}

// directToSIMD accumulates the correlation using vecmath block operations
// to vectorize the inner loop.
func directToSIMD(dst, a, bRev []float64) {
	m := len(bRev)

	// Pre-allocate scratch buffer for the scaled second signal.
	temp := make([]float64, m)

	for i := range a {
		// Scale the reversed second signal by the current sample: temp = bRev * a[i]
		vecmath.ScaleBlock(temp, bRev, a[i])

		// Accumulate into the result window: dst[i:i+m] += temp
		vecmath.AddBlockInPlace(dst[i:i+m], temp)
	}
}

// FFT computes the full cross-correlation of a and b via the frequency
// domain: IFFT(FFT(a) * conj(FFT(b))), rearranged to the linear lag layout.
// The result has length len(a) + len(b) - 1.
func FFT(a, b []float64) ([]float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, ErrEmptyInput
	}

	n := len(a)
	m := len(b)
	fftSize := NextPowerOf2(n + m - 1)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("xcorr: failed to create FFT plan: %w", err)
	}

	aPadded := make([]complex128, fftSize)
	bPadded := make([]complex128, fftSize)
	for i := 0; i < n; i++ {
		aPadded[i] = complex(a[i], 0)
	}
	for i := 0; i < m; i++ {
		bPadded[i] = complex(b[i], 0)
	}

	aFreq := make([]complex128, fftSize)
	bFreq := make([]complex128, fftSize)

	if err := plan.Forward(aFreq, aPadded); err != nil {
		return nil, fmt.Errorf("xcorr: forward FFT failed: %w", err)
	}
	if err := plan.Forward(bFreq, bPadded); err != nil {
		return nil, fmt.Errorf("xcorr: forward FFT failed: %w", err)
	}

	resultFreq := make([]complex128, fftSize)
	for i := range resultFreq {
		bConj := complex(real(bFreq[i]), -imag(bFreq[i]))
		resultFreq[i] = aFreq[i] * bConj
	}

	resultTime := make([]complex128, fftSize)
	if err := plan.Inverse(resultTime, resultFreq); err != nil {
		return nil, fmt.Errorf("xcorr: inverse FFT failed: %w", err)
	}

	// The circular correlation holds positive lags (0 to n-1) at the start
	// and negative lags (-(m-1) to -1) wrapped to the end. Rearrange to the
	// linear layout with lag -(m-1) at index 0.
	result := make([]float64, n+m-1)
	for i := 0; i < n; i++ {
		result[m-1+i] = real(resultTime[i])
	}
	for i := 0; i < m-1; i++ {
		result[i] = real(resultTime[fftSize-m+1+i])
	}

	return result, nil
}

// Full computes the full cross-correlation with automatic strategy
// selection: direct computation for short signals, FFT otherwise.
func Full(a, b []float64) ([]float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, ErrEmptyInput
	}

	const directThreshold = 64
	if len(a) <= directThreshold || len(b) <= directThreshold {
		return Direct(a, b)
	}

	return FFT(a, b)
}

// NextPowerOf2 returns the next power of 2 >= n.
func NextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
