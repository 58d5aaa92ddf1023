package acoustic

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// ErrUnusableAudio reports a signal the extractor cannot fingerprint: empty,
// silent, or shorter than one analysis window. Callers treat this as "no
// acoustic evidence", not as a fatal diagnosis error.
var ErrUnusableAudio = errors.New("unusable audio")

const (
	// frameSize is the analysis window for the cepstral matrix.
	frameSize = 2048
	// hopSize is the stride between overlapping analysis windows.
	hopSize = 512
	// numCepstra is the fixed number of cepstral coefficients per frame.
	numCepstra = 13
	// silenceRMS is the tolerance below which a signal counts as silent.
	silenceRMS = 1e-4
	// rolloffFraction is the spectral energy fraction defining the rolloff point.
	rolloffFraction = 0.85
)

// Fingerprint is a fixed-shape numeric summary of an audio signal used for
// comparison, never for human interpretation. Immutable once computed.
type Fingerprint struct {
	DominantFrequency float64
	RMSEnergy         float64
	ZeroCrossingRate  float64
	SpectralBandwidth float64
	SpectralRolloff   float64
	Cepstra           [][]float64
}

// Extract computes a fingerprint from a decoded mono signal. The sample rate
// must be positive; the signal must be at least one analysis window long and
// not silent.
func Extract(samples []float64, sampleRate int) (*Fingerprint, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("acoustic extract: invalid sample rate %d", sampleRate)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: empty signal", ErrUnusableAudio)
	}
	if len(samples) < frameSize {
		return nil, fmt.Errorf("%w: signal shorter than %d samples", ErrUnusableAudio, frameSize)
	}

	rms := rootMeanSquare(samples)
	if rms <= silenceRMS {
		return nil, fmt.Errorf("%w: signal is silent", ErrUnusableAudio)
	}

	fp := &Fingerprint{
		RMSEnergy:        rms,
		ZeroCrossingRate: zeroCrossingRate(samples),
	}

	magnitudes, freqStep := magnitudeSpectrum(samples, sampleRate)
	fp.DominantFrequency = dominantFrequency(magnitudes, freqStep)
	fp.SpectralBandwidth = spectralBandwidth(magnitudes, freqStep)
	fp.SpectralRolloff = spectralRolloff(magnitudes, freqStep)
	fp.Cepstra = cepstralMatrix(samples)

	return fp, nil
}

func rootMeanSquare(samples []float64) float64 {
	return math.Sqrt(floats.Dot(samples, samples) / float64(len(samples)))
}

func zeroCrossingRate(samples []float64) float64 {
	crossings := 0
	for i := 1; i < len(samples); i++ {
		if (samples[i-1] >= 0) != (samples[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(samples)-1)
}

// magnitudeSpectrum returns the half-spectrum magnitudes of the full signal
// and the frequency step per bin in Hz.
func magnitudeSpectrum(samples []float64, sampleRate int) ([]float64, float64) {
	n := len(samples)
	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, samples)
	magnitudes := make([]float64, len(coeffs))
	for i, c := range coeffs {
		magnitudes[i] = cmplxAbs(c)
	}
	return magnitudes, float64(sampleRate) / float64(n)
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

func dominantFrequency(magnitudes []float64, freqStep float64) float64 {
	// Skip the DC bin so a constant offset never wins.
	best := 1
	for i := 2; i < len(magnitudes); i++ {
		if magnitudes[i] > magnitudes[best] {
			best = i
		}
	}
	if len(magnitudes) < 2 {
		return 0
	}
	return float64(best) * freqStep
}

func spectralBandwidth(magnitudes []float64, freqStep float64) float64 {
	var total, weighted float64
	for i, m := range magnitudes {
		total += m
		weighted += m * float64(i) * freqStep
	}
	if total == 0 {
		return 0
	}
	centroid := weighted / total
	var spread float64
	for i, m := range magnitudes {
		d := float64(i)*freqStep - centroid
		spread += m * d * d
	}
	return math.Sqrt(spread / total)
}

func spectralRolloff(magnitudes []float64, freqStep float64) float64 {
	var total float64
	for _, m := range magnitudes {
		total += m * m
	}
	if total == 0 {
		return 0
	}
	target := total * rolloffFraction
	var cumulative float64
	for i, m := range magnitudes {
		cumulative += m * m
		if cumulative >= target {
			return float64(i) * freqStep
		}
	}
	return float64(len(magnitudes)-1) * freqStep
}

// cepstralMatrix computes numCepstra cepstral coefficients over overlapping
// Hann windows. The matrix is used for shape comparison only.
func cepstralMatrix(samples []float64) [][]float64 {
	frameCount := 1 + (len(samples)-frameSize)/hopSize
	fft := fourier.NewFFT(frameSize)
	// DCT over the half spectrum without the Nyquist bin keeps the length even.
	specLen := frameSize / 2
	dct := fourier.NewDCT(specLen)

	window := hannWindow(frameSize)
	frame := make([]float64, frameSize)
	logSpec := make([]float64, specLen)
	cepstra := make([][]float64, 0, frameCount)

	for f := 0; f < frameCount; f++ {
		offset := f * hopSize
		for i := 0; i < frameSize; i++ {
			frame[i] = samples[offset+i] * window[i]
		}
		coeffs := fft.Coefficients(nil, frame)
		for i := 0; i < specLen; i++ {
			logSpec[i] = math.Log(cmplxAbs(coeffs[i]) + 1e-10)
		}
		full := dct.Transform(nil, logSpec)
		row := make([]float64, numCepstra)
		copy(row, full[:numCepstra])
		cepstra = append(cepstra, row)
	}
	return cepstra
}

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// comparisonVector derives the fixed-length vector used for corpus matching:
// the scalar descriptors followed by frame-averaged cepstral coefficients, so
// fingerprints with different frame counts remain comparable.
func (f *Fingerprint) comparisonVector() []float64 {
	if f == nil {
		return nil
	}
	vec := make([]float64, 0, 5+numCepstra)
	vec = append(vec,
		f.DominantFrequency,
		f.RMSEnergy,
		f.ZeroCrossingRate,
		f.SpectralBandwidth,
		f.SpectralRolloff,
	)
	means := make([]float64, numCepstra)
	if len(f.Cepstra) > 0 {
		for _, row := range f.Cepstra {
			floats.Add(means, row)
		}
		floats.Scale(1/float64(len(f.Cepstra)), means)
	}
	return append(vec, means...)
}
