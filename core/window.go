package core

import "sync"

// SampleWindow is an append-only buffer of samples shared between an
// acquisition loop and analysis. Analysis always works on a Snapshot, never
// on the live buffer. When the window is full the oldest samples are dropped.
type SampleWindow struct {
	mu         sync.RWMutex
	samples    []Sample
	maxSamples int
}

// NewSampleWindow creates a window holding at most maxSamples samples.
// A non-positive maxSamples means unbounded.
func NewSampleWindow(maxSamples int) *SampleWindow {
	return &SampleWindow{maxSamples: maxSamples}
}

// Append adds a sample. The caller must not modify it afterwards.
func (w *SampleWindow) Append(s Sample) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.samples = append(w.samples, s)
	if w.maxSamples > 0 && len(w.samples) > w.maxSamples {
		trimmed := make([]Sample, w.maxSamples)
		copy(trimmed, w.samples[len(w.samples)-w.maxSamples:])
		w.samples = trimmed
	}
}

// Snapshot returns a copy of the current window contents.
func (w *SampleWindow) Snapshot() []Sample {
	w.mu.RLock()
	defer w.mu.RUnlock()

	snapshot := make([]Sample, len(w.samples))
	copy(snapshot, w.samples)
	return snapshot
}

// Latest returns up to n of the most recent samples, oldest first.
func (w *SampleWindow) Latest(n int) []Sample {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if n <= 0 || n > len(w.samples) {
		n = len(w.samples)
	}
	latest := make([]Sample, n)
	copy(latest, w.samples[len(w.samples)-n:])
	return latest
}

// Len returns the number of buffered samples.
func (w *SampleWindow) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.samples)
}
