// Package core holds the data containers shared across the toolkit:
// multichannel signals, spectrograms, population rates and epochs.
//
// Epoch is an immutable table of labelled intervals kept sorted by start
// time. Its operations (slicing, merging, filling gaps, deleting ranges,
// label proportions) return new epochs. Epochs persist as JSON or export to
// spreadsheets; dense arrays persist as .npy files.
package core
