package acoustic_test

import (
	"errors"
	"math"
	"testing"

	"autodiag/internal/acoustic"
)

func sineWave(freq float64, amplitude float64, sampleRate, n int) []float64 {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return samples
}

func TestExtractSineWave(t *testing.T) {
	const (
		sampleRate = 44100
		freq       = 440.0
	)
	samples := sineWave(freq, 0.5, sampleRate, sampleRate)

	fp, err := acoustic.Extract(samples, sampleRate)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	// One second of signal puts the bin width at 1 Hz.
	if math.Abs(fp.DominantFrequency-freq) > 2 {
		t.Fatalf("dominant frequency: got %.1f want ~%.1f", fp.DominantFrequency, freq)
	}

	wantRMS := 0.5 / math.Sqrt2
	if math.Abs(fp.RMSEnergy-wantRMS) > 0.01 {
		t.Fatalf("rms energy: got %.4f want ~%.4f", fp.RMSEnergy, wantRMS)
	}

	// A sine at f crosses zero 2f times per second.
	wantZCR := 2 * freq / sampleRate
	if math.Abs(fp.ZeroCrossingRate-wantZCR) > 0.005 {
		t.Fatalf("zero crossing rate: got %.4f want ~%.4f", fp.ZeroCrossingRate, wantZCR)
	}

	if fp.SpectralRolloff <= 0 {
		t.Fatalf("expected positive spectral rolloff, got %.2f", fp.SpectralRolloff)
	}
	if fp.SpectralBandwidth < 0 {
		t.Fatalf("expected non-negative spectral bandwidth, got %.2f", fp.SpectralBandwidth)
	}
}

func TestExtractCepstralShape(t *testing.T) {
	const sampleRate = 8000
	n := 4096
	samples := sineWave(200, 0.4, sampleRate, n)

	fp, err := acoustic.Extract(samples, sampleRate)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	wantFrames := 1 + (n-2048)/512
	if len(fp.Cepstra) != wantFrames {
		t.Fatalf("cepstral frames: got %d want %d", len(fp.Cepstra), wantFrames)
	}
	for i, row := range fp.Cepstra {
		if len(row) != 13 {
			t.Fatalf("cepstral row %d: got %d coefficients want 13", i, len(row))
		}
	}
}

func TestExtractUnusableAudio(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
	}{
		{name: "empty", samples: nil},
		{name: "too short", samples: sineWave(440, 0.5, 44100, 1024)},
		{name: "silent", samples: make([]float64, 4096)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := acoustic.Extract(tc.samples, 44100)
			if !errors.Is(err, acoustic.ErrUnusableAudio) {
				t.Fatalf("expected ErrUnusableAudio, got %v", err)
			}
		})
	}
}

func TestExtractRejectsInvalidSampleRate(t *testing.T) {
	samples := sineWave(440, 0.5, 44100, 4096)
	_, err := acoustic.Extract(samples, 0)
	if err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if errors.Is(err, acoustic.ErrUnusableAudio) {
		t.Fatalf("invalid sample rate should not report unusable audio: %v", err)
	}
}

func TestExtractDistinguishesFrequencies(t *testing.T) {
	const sampleRate = 44100
	low, err := acoustic.Extract(sineWave(200, 0.5, sampleRate, sampleRate), sampleRate)
	if err != nil {
		t.Fatalf("Extract low returned error: %v", err)
	}
	high, err := acoustic.Extract(sineWave(2000, 0.5, sampleRate, sampleRate), sampleRate)
	if err != nil {
		t.Fatalf("Extract high returned error: %v", err)
	}
	if low.DominantFrequency >= high.DominantFrequency {
		t.Fatalf("expected low (%.0f Hz) below high (%.0f Hz)", low.DominantFrequency, high.DominantFrequency)
	}
}
