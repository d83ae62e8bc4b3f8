package core

import "errors"

var (
	// ErrEmptySignal is returned when a signal has no channels or frames.
	ErrEmptySignal = errors.New("core: empty signal")
	// ErrRaggedTraces is returned when traces differ in length.
	ErrRaggedTraces = errors.New("core: traces must have equal length")
	// ErrSampleRate is returned for a non-positive sampling rate.
	ErrSampleRate = errors.New("core: sampling rate must be > 0")
	// ErrChannelNotFound is returned when a channel id is not in the signal.
	ErrChannelNotFound = errors.New("core: channel not found")
	// ErrLengthMismatch is returned when paired columns differ in length.
	ErrLengthMismatch = errors.New("core: length mismatch")
	// ErrNoFile is returned when a persisted file does not exist.
	ErrNoFile = errors.New("core: file does not exist")
	// ErrFillMethod is returned for an unknown gap filling method.
	ErrFillMethod = errors.New("core: unknown fill method")
)
