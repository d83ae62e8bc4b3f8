// Package events detects transient events in 1-D traces: local peaks with
// prominence, supra-threshold periods, population burst events and local
// OFF periods in population firing.
package events
