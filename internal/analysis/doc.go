// Package analysis characterizes recorded orbits.
//
//   - [PowerSpectrum] and [DominantPeriod]: periodicity of a sampled series,
//     via the go-dsp FFT
//   - [Distances]: a body's distance to a fixed point over time
//   - [Revolutions]: signed turns a track makes around a center
//   - [OrbitToASCII]: a track plotted in scene coordinates
//
// A bound orbit shows up as a sharp spectral peak in its distance series:
//
//	d := analysis.Distances(result.Track("bunny-0"), sun)
//	period := analysis.DominantPeriod(d, float64(cfg.Run.SampleEvery))
package analysis
