//go:build windows

package core

import (
	"syscall"
)

// AnalyzeSignal falls back to SIGINT, SIGUSR1 does not exist on Windows
func AnalyzeSignal() syscall.Signal {
	return syscall.SIGINT
}
