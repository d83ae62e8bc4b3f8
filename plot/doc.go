// Package plot renders analysis results to PNG figures.
//
// A [Fig] is a grid of panels. Line, scatter and bar panels are drawn by
// go-chart; matrices (spectrograms, bicoherence, CSD) are rasterised
// through a [Colormap]. Panels are labelled A, B, C... in reading order.
package plot
