package core

import "errors"

var (
	// ErrNoData is returned by Analyze when the sample window is empty.
	ErrNoData = errors.New("no data to analyze")

	// ErrInsufficientData is returned when a computation needs more samples
	// than it was given. Sub-analyses that hit it leave their section empty.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidConfig wraps every configuration validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotifierNotFound is returned for a notifier name absent from the
	// alerts configuration.
	ErrNotifierNotFound = errors.New("notifier not found")

	// ErrNotRunning means no live server owns the pid file.
	ErrNotRunning = errors.New("sysdiag is not running")

	// ErrAlreadyRunning means another live server owns the pid file.
	ErrAlreadyRunning = errors.New("sysdiag is already running")
)
