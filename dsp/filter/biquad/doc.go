// Package biquad provides second-order IIR section runtime primitives.
//
// A [Section] runs Direct Form II Transposed processing for one second-order
// section defined by [Coefficients]. Sections cascade through [Chain], which
// is the second-order-sections (SOS) representation every Butterworth design
// in dsp/filter/butter produces.
//
// Steady-state initial conditions ([Chain.SteadyState]) let a cascade start
// as if it had been fed a constant input forever, which the zero-phase
// filter in dsp/filter/zerophase relies on to suppress edge transients.
package biquad
