// Package doa converts a time difference of arrival (TDOA) between a
// microphone pair into a direction-of-arrival angle.
//
// The conversion assumes a far-field source: arriving wavefronts are planar,
// so the path-length difference between the microphones is d*cos(theta),
// where theta is the angle between the source direction and the axis
// connecting the pair. The angle is therefore
//
//	theta = arccos(tdoa * c / d)
//
// in [0°, 180°]: 0° along the pair's forward axis, 90° broadside,
// 180° along the reverse axis.
//
// Physically infeasible TDOA values (|tdoa*c/d| > 1, typically caused by
// noise or a wrong distance) are clamped to the nearest boundary angle
// instead of rejected; the Estimate result records that the clamp fired so
// callers can surface it.
package doa

import (
	"errors"
	"math"
)

// DefaultSoundSpeed is the speed of sound in air in m/s used when no
// override is given.
const DefaultSoundSpeed = 343.0

// Errors returned by DOA conversion.
var (
	ErrInvalidDistance   = errors.New("doa: mic distance must be positive")
	ErrInvalidSoundSpeed = errors.New("doa: sound speed must be positive")
)

// Estimate holds a direction-of-arrival conversion result.
type Estimate struct {
	// Degrees is the angle between the source direction and the microphone
	// pair axis, in [0, 180].
	Degrees float64

	// Ratio is tdoa*c/d before clamping. Values outside [-1, 1] indicate a
	// physically infeasible TDOA for the given distance and sound speed.
	Ratio float64

	// Clamped reports whether Ratio was clamped into [-1, 1] before the
	// inverse-cosine step.
	Clamped bool
}

// Option configures the DOA conversion.
type Option func(*config)

type config struct {
	soundSpeed float64
}

// WithSoundSpeed overrides the speed of sound in m/s.
func WithSoundSpeed(c float64) Option {
	return func(cfg *config) {
		cfg.soundSpeed = c
	}
}

// FromTDOA converts a TDOA in seconds and a microphone separation in meters
// into a direction-of-arrival estimate.
//
// The function is total over all finite TDOA inputs: infeasible ratios are
// clamped to the boundary angles (0° or 180°) and flagged in the result.
func FromTDOA(tdoaSeconds, micDistanceM float64, opts ...Option) (Estimate, error) {
	cfg := config{soundSpeed: DefaultSoundSpeed}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if micDistanceM <= 0 {
		return Estimate{}, ErrInvalidDistance
	}
	if cfg.soundSpeed <= 0 {
		return Estimate{}, ErrInvalidSoundSpeed
	}

	ratio := tdoaSeconds * cfg.soundSpeed / micDistanceM

	est := Estimate{Ratio: ratio}

	clamped := ratio
	switch {
	case clamped > 1:
		clamped = 1
		est.Clamped = true
	case clamped < -1:
		clamped = -1
		est.Clamped = true
	}

	est.Degrees = math.Acos(clamped) * 180 / math.Pi

	return est, nil
}

// Degrees converts a TDOA and microphone separation into an angle in
// degrees with the default sound speed, discarding the clamp indicator.
func Degrees(tdoaSeconds, micDistanceM float64) float64 {
	est, err := FromTDOA(tdoaSeconds, micDistanceM)
	if err != nil {
		return math.NaN()
	}
	return est.Degrees
}
