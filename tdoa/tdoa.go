// Package tdoa estimates the time difference of arrival (TDOA) between two
// microphone signals sampled at the same rate.
//
// Three estimators are available:
//
//   - Classic cross-correlation: peak of the full linear cross-correlation
//   - GCC-PHAT: generalized cross-correlation with phase transform, which
//     whitens the cross-spectrum magnitude and keeps only phase. More robust
//     in reverberant conditions.
//   - GCC-SCOT: generalized cross-correlation with smoothed coherence
//     transform, normalizing by the geometric mean of the two signals'
//     power spectra.
//
// All estimators are pure functions of their inputs and safe for concurrent
// use across independent signal buffers.
//
// Both signals must have been captured at the estimator's sample rate; the
// estimator does not detect or reconcile mismatched rates.
//
// # Sign convention
//
// A positive TDOA means the second signal leads the first: the first signal
// is a delayed copy of the second. Callers must keep the argument ordering
// of a microphone pair consistent across a session.
package tdoa

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cwbudde/algo-doa/dsp/window"
	"github.com/cwbudde/algo-doa/dsp/xcorr"
)

// Errors returned by TDOA estimation functions.
var (
	ErrEmptySignal       = errors.New("tdoa: signal is empty")
	ErrInvalidSampleRate = errors.New("tdoa: sample rate must be positive")
	ErrUnknownMethod     = errors.New("tdoa: unknown method")
)

// Method selects the TDOA estimator variant.
type Method int

const (
	// MethodCrossCorrelation uses the peak of the full linear
	// cross-correlation.
	MethodCrossCorrelation Method = iota

	// MethodPHAT uses GCC with the phase transform weighting.
	MethodPHAT

	// MethodSCOT uses GCC with the smoothed coherence transform weighting.
	MethodSCOT
)

// String returns the method name.
func (m Method) String() string {
	switch m {
	case MethodCrossCorrelation:
		return "cross-correlation"
	case MethodPHAT:
		return "phat"
	case MethodSCOT:
		return "scot"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// ParseMethod converts a method name to a Method. It accepts "cc",
// "cross-correlation", "cross_correlation", "phat" and "scot",
// case-insensitively.
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(name) {
	case "cc", "cross-correlation", "cross_correlation":
		return MethodCrossCorrelation, nil
	case "phat":
		return MethodPHAT, nil
	case "scot":
		return MethodSCOT, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
	}
}

// Estimator computes TDOA estimates for signal pairs at a fixed sample rate.
type Estimator struct {
	SampleRate float64

	win window.Type
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithWindow applies the given taper window to both signals before the GCC
// frequency transform. The default is rectangular (no taper), matching the
// plain definition of the generalized cross-correlation.
func WithWindow(t window.Type) Option {
	return func(e *Estimator) {
		e.win = t
	}
}

// NewEstimator creates a TDOA estimator for signals at the given sample rate.
func NewEstimator(sampleRate float64, opts ...Option) *Estimator {
	e := &Estimator{
		SampleRate: sampleRate,
		win:        window.TypeRectangular,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Estimate returns the TDOA between sig1 and sig2 in seconds using the
// selected method.
func (e *Estimator) Estimate(sig1, sig2 []float64, m Method) (float64, error) {
	switch m {
	case MethodCrossCorrelation:
		return e.CrossCorrelation(sig1, sig2)
	case MethodPHAT, MethodSCOT:
		return e.GCC(sig1, sig2, m)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownMethod, m)
	}
}

// CrossCorrelation returns the TDOA in seconds estimated from the peak of
// the full linear cross-correlation of sig1 and sig2.
//
// The correlation spans sample lags -(len(sig2)-1) to len(sig1)-1; ties in
// the maximum resolve to the earliest lag.
func (e *Estimator) CrossCorrelation(sig1, sig2 []float64) (float64, error) {
	if err := e.validate(sig1, sig2); err != nil {
		return 0, err
	}

	corr, err := xcorr.Full(sig1, sig2)
	if err != nil {
		return 0, err
	}

	idx, _ := xcorr.Peak(corr)
	lag := xcorr.LagFromIndex(idx, len(sig2))

	return float64(lag) / e.SampleRate, nil
}

func (e *Estimator) validate(sig1, sig2 []float64) error {
	if len(sig1) == 0 || len(sig2) == 0 {
		return ErrEmptySignal
	}
	if e.SampleRate <= 0 {
		return ErrInvalidSampleRate
	}
	return nil
}
