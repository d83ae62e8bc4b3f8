// Package spectrum estimates power spectra of LFP traces.
//
// Welch, STFT and spectrogram estimates split the trace into windowed,
// overlapping segments, with the frequency axis in Hz and the time axis at
// segment centres in seconds. Densities are one-sided and scaled so that
// integrating over frequency gives the signal variance.
//
// Multitaper variants average estimates over Slepian tapers from
// dsp/window. Helpers cover band integration, whitening and linear
// resampling of spectra onto new frequency grids.
package spectrum
