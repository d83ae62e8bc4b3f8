// Package oscillation analyses LFP rhythms: band filtering of signals,
// Fourier and Morlet-wavelet spectrograms, bicoherence, phase-amplitude
// coupling, theta cycle parameters, current source density and band
// power summaries.
//
// Routines that sweep many frequencies (bicoherence, comodulograms,
// wavelet spectrograms) fan the work out over a bounded errgroup and honour
// context cancellation.
package oscillation
