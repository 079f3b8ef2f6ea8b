// Package analysis characterizes recorded windchime motion.
//
//   - [PowerSpectrum], [DominantFrequency]: spectrum of a channel via FFT
//   - [LyapunovExponent]: divergence rate of two nearly identical chimes
//   - [BifurcationDiagram]: parameter sweep over the chime options
//   - [GeneratePhasePortrait]: two channels plotted against each other
//   - [GeneratePoincareSection]: samples taken when a channel crosses a level
//
// # Swing frequency
//
// The sail hangs as a double pendulum below the clapper, so its dominant
// frequency is a quick check on rope lengths and gravity:
//
//	xs, _ := result.Channel("sail_x")
//	f := analysis.DominantFrequency(xs, cfg.Dt)
package analysis
