//go:build !windows

package core

import (
	"syscall"
)

// AnalyzeSignal is the signal that makes a running server analyze its
// window immediately
func AnalyzeSignal() syscall.Signal {
	return syscall.SIGUSR1
}
