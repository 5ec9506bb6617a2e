// Command doapair estimates the time difference of arrival and the
// direction of arrival for microphone pairs stored as WAV files.
//
// Usage:
//
//	doapair [flags] mic1.wav mic2.wav
//	doapair [flags] -base rir_room.wav -mics 3
//
// The first form processes a single explicit pair. The second form loads a
// per-microphone recording set named <base>_micidx_<i>.wav and processes
// every consecutive pair, the usual layout of simulated room-impulse-response
// datasets.
//
// Examples:
//
//	doapair -dist 0.1 mic0.wav mic1.wav
//	doapair -method phat -dist 0.05 mic0.wav mic1.wav
//	doapair -base rir_rt60_0.5_room_6x5x3.0.wav -mics 3 -dist 0.1
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-doa/doa"
	"github.com/cwbudde/algo-doa/dsp/window"
	"github.com/cwbudde/algo-doa/tdoa"
	"github.com/cwbudde/algo-doa/wavio"
)

func main() {
	dist := flag.Float64("dist", 0.1, "microphone separation in meters")
	speed := flag.Float64("speed", doa.DefaultSoundSpeed, "speed of sound in m/s")
	method := flag.String("method", "all", "estimator: cc, phat, scot or all")
	winName := flag.String("window", "rectangular", "taper before the GCC transform: rectangular, hann, hamming, blackman")
	base := flag.String("base", "", "base template of a per-microphone WAV set (<base>_micidx_<i>.wav)")
	mics := flag.Int("mics", 0, "number of microphones in the -base set")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: doapair [flags] mic1.wav mic2.wav\n")
		fmt.Fprintf(os.Stderr, "       doapair [flags] -base template.wav -mics N\n\n")
		fmt.Fprintf(os.Stderr, "Estimates TDOA and DOA for microphone pairs from WAV files.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	methods, err := selectMethods(*method)
	if err != nil {
		fatalf("%v", err)
	}

	win, err := parseWindow(*winName)
	if err != nil {
		fatalf("%v", err)
	}

	var (
		signals    [][]float64
		sampleRate float64
	)

	switch {
	case *base != "":
		if flag.NArg() != 0 {
			fatalf("cannot combine -base with explicit file arguments")
		}
		if *mics < 2 {
			fatalf("-base requires -mics >= 2")
		}

		set, err := wavio.ReadMicSet(*base, *mics)
		if err != nil {
			fatalf("%v", err)
		}
		for _, path := range set.Missing {
			fmt.Fprintf(os.Stderr, "warning: missing %s\n", path)
		}
		if set.Pairs() == 0 {
			fatalf("need at least 2 microphone files, loaded %d", len(set.Signals))
		}

		signals = set.Signals
		sampleRate = set.SampleRate

	case flag.NArg() == 2:
		for _, path := range flag.Args() {
			sig, rate, err := wavio.ReadMono(path)
			if err != nil {
				fatalf("%v", err)
			}
			if sampleRate == 0 {
				sampleRate = rate
			} else if rate != sampleRate {
				fatalf("sample rate mismatch: %s has %g Hz, expected %g Hz",
					path, rate, sampleRate)
			}
			signals = append(signals, sig)
		}

	default:
		flag.Usage()
		os.Exit(2)
	}

	est := tdoa.NewEstimator(sampleRate, tdoa.WithWindow(win))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PAIR\tMETHOD\tTDOA [µs]\tDOA [°]\t")

	for i := 0; i+1 < len(signals); i++ {
		for _, m := range methods {
			delay, err := est.Estimate(signals[i], signals[i+1], m)
			if err != nil {
				fatalf("pair %d-%d %s: %v", i, i+1, m, err)
			}

			angle, err := doa.FromTDOA(delay, *dist, doa.WithSoundSpeed(*speed))
			if err != nil {
				fatalf("pair %d-%d %s: %v", i, i+1, m, err)
			}

			note := ""
			if angle.Clamped {
				note = " (clamped)"
				fmt.Fprintf(os.Stderr,
					"warning: pair %d-%d %s: ratio %.3f outside [-1, 1], angle clamped\n",
					i, i+1, m, angle.Ratio)
			}

			fmt.Fprintf(w, "%d-%d\t%s\t%.2f\t%.2f%s\t\n",
				i, i+1, m, delay*1e6, angle.Degrees, note)
		}
	}

	w.Flush()
}

func selectMethods(name string) ([]tdoa.Method, error) {
	if strings.EqualFold(name, "all") {
		return []tdoa.Method{tdoa.MethodCrossCorrelation, tdoa.MethodPHAT, tdoa.MethodSCOT}, nil
	}

	m, err := tdoa.ParseMethod(name)
	if err != nil {
		return nil, err
	}
	return []tdoa.Method{m}, nil
}

func parseWindow(name string) (window.Type, error) {
	switch strings.ToLower(name) {
	case "", "rectangular":
		return window.TypeRectangular, nil
	case "hann":
		return window.TypeHann, nil
	case "hamming":
		return window.TypeHamming, nil
	case "blackman":
		return window.TypeBlackman, nil
	default:
		return 0, fmt.Errorf("unknown window: %q", name)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "doapair: "+format+"\n", args...)
	os.Exit(1)
}
