package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// PIDFile records which `sysdiag serve` owns a data directory. The stop and
// status commands find the server through it.
type PIDFile struct {
	path  string
	alive func(pid int) bool
}

// NewPIDFile returns the pid file of dataDir
func NewPIDFile(dataDir string) *PIDFile {
	return &PIDFile{
		path:  filepath.Join(ExpandPath(dataDir), "sysdiag.pid"),
		alive: pidAlive,
	}
}

// Path returns the pid file location
func (p *PIDFile) Path() string {
	return p.path
}

// Acquire records the current process as owner. A file left by an exited
// process is taken over; one held by a live process fails with
// ErrAlreadyRunning.
func (p *PIDFile) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(p.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%d\n", os.Getpid())
			return errors.Join(werr, f.Close())
		}
		if !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("failed to create pid file: %w", err)
		}

		pid, err := p.Owner()
		if err == nil {
			if pid == os.Getpid() {
				return nil
			}
			return fmt.Errorf("%w (PID: %d)", ErrAlreadyRunning, pid)
		}
		if err := p.remove(); err != nil {
			return err
		}
	}
	return fmt.Errorf("failed to acquire %s", p.path)
}

// Release removes the pid file if the current process owns it
func (p *PIDFile) Release() error {
	pid, err := p.read()
	if errors.Is(err, ErrNotRunning) || (err == nil && pid != os.Getpid()) {
		return nil
	}
	return p.remove()
}

// Owner returns the pid of the live process recorded in the file. It fails
// with ErrNotRunning when there is no file or its process has exited; the
// stale pid is still returned in the latter case.
func (p *PIDFile) Owner() (int, error) {
	pid, err := p.read()
	if err != nil {
		return 0, err
	}
	if !p.alive(pid) {
		return pid, fmt.Errorf("%w (stale PID: %d)", ErrNotRunning, pid)
	}
	return pid, nil
}

// Clear removes a pid file whose process is gone
func (p *PIDFile) Clear() error {
	if pid, err := p.Owner(); err == nil {
		return fmt.Errorf("%w (PID: %d)", ErrAlreadyRunning, pid)
	}
	return p.remove()
}

// Signal delivers sig to the owning process
func (p *PIDFile) Signal(sig os.Signal) error {
	pid, err := p.Owner()
	if err != nil {
		return err
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("process %d not found: %w", pid, err)
	}
	if err := proc.Signal(sig); err != nil {
		return fmt.Errorf("failed to signal process %d: %w", pid, err)
	}
	return nil
}

func (p *PIDFile) read() (int, error) {
	content, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, ErrNotRunning
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read pid file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid file %s: %q", p.path, content)
	}
	return pid, nil
}

func (p *PIDFile) remove() error {
	if err := os.Remove(p.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove pid file: %w", err)
	}
	return nil
}

func pidAlive(pid int) bool {
	exists, err := process.PidExists(int32(pid))
	return err == nil && exists
}
