// Package analysis characterises recorded or freshly simulated blob motion.
//
//   - [WobbleSpectrum]: power spectrum of a centroid or shape trace
//   - [DominantFrequency]: strongest non-DC frequency of a trace
//   - [Sweep]: tuning parameter sweep against a frame metric
//   - [Sensitivity]: growth rate of the gap between two nearly identical runs
//   - [TraceToASCII]: 2D plot of a centroid trajectory
//
// # Wobble
//
// A dropped blob bounces and then wobbles around its rest shape. The
// centroid's vertical trace shows the bounce; its spectrum peak is the
// wobble frequency in cycles per frame unless an fps is given:
//
//	spec := analysis.WobbleSpectrum(ys, 60)
//	hz := spec.Dominant()
package analysis
