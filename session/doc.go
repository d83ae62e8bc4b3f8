// Package session locates and loads the files of one recording session:
// the Neuroscope XML description, the downsampled LFP (.eeg/.lfp), EDF
// exports and the behavioral epochs that split the session into periods
// such as PRE, MAZE and POST.
package session
