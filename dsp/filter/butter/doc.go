// Package butter designs digital Butterworth filters as cascades of
// second-order sections.
//
// Lowpass and highpass cascades are built section by section from the
// Butterworth pole Q values, with a first-order section closing odd orders.
// Bandpass filters go through the analog prototype in zero/pole/gain form,
// the lowpass-to-bandpass transform and the bilinear transform, so an order
// n bandpass has 2n poles, n sections, and unity gain at its centre
// frequency.
//
// All designs prewarp their edge frequencies, so the -3 dB points land
// exactly on the requested cutoffs.
package butter
