package wavio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeTestWAV writes 16-bit mono PCM samples (floats in [-1, 1)) to path.
func writeTestWAV(t *testing.T, path string, sampleRate int, samples []float64) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)

	data := make([]int, len(samples))
	for i, v := range samples {
		data[i] = int(math.Round(v * 32767))
	}

	buf := &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
}

func TestReadMonoRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tone.wav")

	want := make([]float64, 64)
	for i := range want {
		want[i] = 0.5 * math.Sin(2*math.Pi*float64(i)/16)
	}
	writeTestWAV(t, path, 16000, want)

	got, rate, err := ReadMono(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rate != 16000 {
		t.Errorf("sample rate = %v, expected 16000", rate)
	}
	if len(got) != len(want) {
		t.Fatalf("length = %d, expected %d", len(got), len(want))
	}

	// 16-bit quantization bounds the round-trip error.
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1.0/32768 {
			t.Errorf("sample %d = %v, expected about %v", i, got[i], want[i])
		}
	}
}

func TestReadMonoMissingFile(t *testing.T) {
	_, _, err := ReadMono(filepath.Join(t.TempDir(), "nope.wav"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReadMonoNotWav(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "junk.wav")
	if err := os.WriteFile(path, []byte("this is not audio"), 0o644); err != nil {
		t.Fatalf("write junk: %v", err)
	}

	_, _, err := ReadMono(path)
	if !errors.Is(err, ErrNotWavFile) {
		t.Errorf("expected ErrNotWavFile, got %v", err)
	}
}

func TestReadMonoZeroBitDepth(t *testing.T) {
	// A header-valid WAV whose fmt chunk declares zero bits per sample must
	// surface an error rather than panic on the sample scaling.
	dir := t.TempDir()
	path := filepath.Join(dir, "zerodepth.wav")

	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(36+4)) // chunk size
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))   // fmt chunk size
	binary.Write(&b, binary.LittleEndian, uint16(1))    // PCM
	binary.Write(&b, binary.LittleEndian, uint16(1))    // mono
	binary.Write(&b, binary.LittleEndian, uint32(8000)) // sample rate
	binary.Write(&b, binary.LittleEndian, uint32(0))    // byte rate
	binary.Write(&b, binary.LittleEndian, uint16(0))    // block align
	binary.Write(&b, binary.LittleEndian, uint16(0))    // bits per sample
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, uint32(4))
	b.Write([]byte{0, 0, 0, 0})

	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatalf("write malformed wav: %v", err)
	}

	_, _, err := ReadMono(path)
	if err == nil {
		t.Fatal("expected error for zero bit depth")
	}
}

func writeMicSet(t *testing.T, base string, rates []int) {
	t.Helper()

	samples := make([]float64, 32)
	for i := range samples {
		samples[i] = 0.25 * math.Sin(2*math.Pi*float64(i)/8)
	}

	for i, rate := range rates {
		writeTestWAV(t, fmt.Sprintf("%s_micidx_%d.wav", base, i), rate, samples)
	}
}

func TestReadMicSet(t *testing.T) {
	base := filepath.Join(t.TempDir(), "rir_room_a")
	writeMicSet(t, base, []int{48000, 48000, 48000})

	set, err := ReadMicSet(base+".wav", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(set.Signals) != 3 {
		t.Errorf("loaded %d signals, expected 3", len(set.Signals))
	}
	if set.SampleRate != 48000 {
		t.Errorf("sample rate = %v, expected 48000", set.SampleRate)
	}
	if len(set.Missing) != 0 {
		t.Errorf("missing = %v, expected none", set.Missing)
	}
	if set.Pairs() != 2 {
		t.Errorf("pairs = %d, expected 2", set.Pairs())
	}
}

func TestReadMicSetPartial(t *testing.T) {
	base := filepath.Join(t.TempDir(), "rir_room_b")
	writeMicSet(t, base, []int{44100, 44100})

	// Ask for more microphones than exist on disk.
	set, err := ReadMicSet(base, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(set.Signals) != 2 {
		t.Errorf("loaded %d signals, expected 2", len(set.Signals))
	}
	if len(set.Missing) != 2 {
		t.Errorf("missing %d files, expected 2", len(set.Missing))
	}
}

func TestReadMicSetSampleRateMismatch(t *testing.T) {
	base := filepath.Join(t.TempDir(), "rir_room_c")
	writeMicSet(t, base, []int{48000, 44100})

	_, err := ReadMicSet(base, 2)
	if !errors.Is(err, ErrSampleRateMismatch) {
		t.Errorf("expected ErrSampleRateMismatch, got %v", err)
	}
}

func TestReadMicSetEmpty(t *testing.T) {
	_, err := ReadMicSet(filepath.Join(t.TempDir(), "absent"), 2)
	if !errors.Is(err, ErrNoFiles) {
		t.Errorf("expected ErrNoFiles, got %v", err)
	}

	_, err = ReadMicSet("whatever", 0)
	if !errors.Is(err, ErrInvalidMicCount) {
		t.Errorf("expected ErrInvalidMicCount, got %v", err)
	}
}
