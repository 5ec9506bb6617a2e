// Package wavio loads microphone signals from WAV files into float64
// buffers for the TDOA/DOA estimators.
//
// Impulse-response datasets store one file per microphone, named
// <base>_micidx_<i>.wav. ReadMicSet loads such a set and enforces a shared
// sample rate across all microphones, which the estimators require.
package wavio

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-audio/wav"
)

// Errors returned by WAV loading functions.
var (
	ErrNotWavFile         = errors.New("wavio: not a valid WAV file")
	ErrNoFiles            = errors.New("wavio: no microphone files found")
	ErrInvalidMicCount    = errors.New("wavio: microphone count must be positive")
	ErrSampleRateMismatch = errors.New("wavio: inconsistent sample rates across microphones")
)

// ReadMono reads a WAV file and returns its first channel as float64
// samples in [-1, 1) together with the sample rate in Hz.
func ReadMono(path string) ([]float64, float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("wavio: open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%w: %s", ErrNotWavFile, path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("wavio: decode %s: %w", path, err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 {
		return nil, 0, fmt.Errorf("%w: %s", ErrNotWavFile, path)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = int(dec.BitDepth)
	}
	if bitDepth <= 0 {
		return nil, 0, fmt.Errorf("%w: %s reports bit depth %d", ErrNotWavFile, path, bitDepth)
	}
	scale := float64(int64(1) << (bitDepth - 1))

	channels := buf.Format.NumChannels
	frames := len(buf.Data) / channels

	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		out[i] = float64(buf.Data[i*channels]) / scale
	}

	return out, float64(buf.Format.SampleRate), nil
}

// MicSet holds the signals of a multi-microphone recording set.
type MicSet struct {
	// Signals holds one buffer per successfully loaded microphone, in
	// microphone index order.
	Signals [][]float64

	// SampleRate is the shared sample rate of all loaded signals in Hz.
	SampleRate float64

	// Missing lists expected file paths that did not exist. Callers decide
	// whether partial sets are acceptable.
	Missing []string
}

// Pairs returns the number of consecutive microphone pairs available for
// TDOA estimation.
func (s MicSet) Pairs() int {
	if len(s.Signals) < 2 {
		return 0
	}
	return len(s.Signals) - 1
}

// ReadMicSet loads the per-microphone WAV files of a recording set. The
// base template is the dataset filename with or without its .wav extension;
// microphone i is loaded from <base>_micidx_<i>.wav.
//
// Missing files are skipped and reported in the result. An inconsistent
// sample rate across the loaded files is an error, since the estimators
// require all signals of a set to share one rate.
func ReadMicSet(baseTemplate string, numMics int) (MicSet, error) {
	if numMics <= 0 {
		return MicSet{}, ErrInvalidMicCount
	}

	base := strings.TrimSuffix(baseTemplate, ".wav")

	var set MicSet
	for i := 0; i < numMics; i++ {
		path := fmt.Sprintf("%s_micidx_%d.wav", base, i)

		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				set.Missing = append(set.Missing, path)
				continue
			}
			return MicSet{}, fmt.Errorf("wavio: stat %s: %w", path, err)
		}

		sig, rate, err := ReadMono(path)
		if err != nil {
			return MicSet{}, err
		}

		if set.SampleRate == 0 {
			set.SampleRate = rate
		} else if rate != set.SampleRate {
			return MicSet{}, fmt.Errorf("%w: %s has %g Hz, expected %g Hz",
				ErrSampleRateMismatch, path, rate, set.SampleRate)
		}

		set.Signals = append(set.Signals, sig)
	}

	if len(set.Signals) == 0 {
		return MicSet{}, fmt.Errorf("%w: base %s", ErrNoFiles, baseTemplate)
	}

	return set, nil
}
