package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Detrend returns data with its mean removed.
func Detrend(data []float64) []float64 {
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	if len(data) > 0 {
		mean /= float64(len(data))
	}
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = v - mean
	}
	return out
}

// PowerSpectrum returns the magnitude of the first half of the transform
// of the detrended series. Bin k has period len(data)/k samples.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}
	spectrum := fft.FFTReal(Detrend(data))
	ps := make([]float64, len(spectrum)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}

	return ps
}

// DominantPeriod returns the period of the strongest non-DC bin, in units
// of interval. Zero means no periodicity was found.
func DominantPeriod(data []float64, interval float64) float64 {
	ps := PowerSpectrum(data)
	best, bin := 0.0, 0
	for k := 1; k < len(ps); k++ {
		if ps[k] > best {
			best, bin = ps[k], k
		}
	}
	if bin == 0 || best < 1e-9 {
		return 0
	}
	return float64(len(data)) / float64(bin) * interval
}
