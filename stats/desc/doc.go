// Package desc provides descriptive statistics shared by the analysis
// packages: normalisation, histograms with numpy bin semantics, quantile
// cuts, partial correlation and inequality measures.
package desc
