package core

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// backupTimeFormat is the timestamp lumberjack puts in rotated file names
const backupTimeFormat = "2006-01-02T15-04-05.000"

// SampleLogConfig controls the on-disk JSON lines record of every sample
type SampleLogConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path" validate:"required_if=Enabled true"`
	MaxFileSizeMB int    `yaml:"max_file_size_mb" validate:"gte=0"` // 0 means 100
	MaxFiles      int    `yaml:"max_files" validate:"gte=0"`        // Rotated files kept, 0 keeps all
	Compress      bool   `yaml:"compress"`                          // Gzip rotated files
}

// SampleLog appends samples to a JSON lines file. Rotation, retention and
// compression of old segments are left to lumberjack, which names them
// <name>-<timestamp><ext>[.gz] next to the active file.
type SampleLog struct {
	mu     sync.Mutex
	path   string
	writer *lumberjack.Logger
	config SampleLogConfig
	log    *logrus.Entry
}

// backupFile is one rotated segment of a sample log
type backupFile struct {
	path       string
	rotatedAt  time.Time
	compressed bool
}

// NewSampleLog creates a sample log; call Open before writing
func NewSampleLog(config SampleLogConfig, logger logrus.FieldLogger) *SampleLog {
	if logger == nil {
		logger = NewDiscardLogger()
	}
	return &SampleLog{
		config: config,
		path:   ExpandPath(config.Path),
		log:    logger.WithField("component", "sample_log"),
	}
}

// Path returns the expanded path of the active file
func (l *SampleLog) Path() string {
	return l.path
}

// Open prepares the directory and the rotating writer. The active file is
// created on the first write.
func (l *SampleLog) Open() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	l.writer = &lumberjack.Logger{
		Filename:   l.path,
		MaxSize:    l.config.MaxFileSizeMB,
		MaxBackups: l.config.MaxFiles,
		Compress:   l.config.Compress,
		LocalTime:  false,
	}
	l.log.WithFields(logrus.Fields{
		"path":        l.path,
		"max_size_mb": l.config.MaxFileSizeMB,
		"max_files":   l.config.MaxFiles,
	}).Debug("sample log opened")
	return nil
}

// Write appends one sample as a JSON line. A failed write leaves the log
// usable; the next write retries opening or rotating the file.
func (l *SampleLog) Write(sample Sample) error {
	line, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("failed to marshal sample: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.writer == nil {
		return fmt.Errorf("sample log not open")
	}
	if _, err := l.writer.Write(line); err != nil {
		return fmt.Errorf("failed to write sample log: %w", err)
	}
	return nil
}

// Close closes the active file
func (l *SampleLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.writer == nil {
		return nil
	}
	err := l.writer.Close()
	l.writer = nil
	return err
}

// backupFiles lists the rotated segments of path, oldest first. A segment
// still being compressed exists both plain and gzipped; only the plain file
// is returned then.
func backupFiles(path string) ([]backupFile, error) {
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	prefix := strings.TrimSuffix(filepath.Base(path), ext) + "-"

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	plain := make(map[string]bool)
	var files []backupFile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		compressed := strings.HasSuffix(name, ".gz")
		stamp := strings.TrimSuffix(strings.TrimSuffix(name, ".gz"), ext)
		stamp = strings.TrimPrefix(stamp, prefix)

		rotatedAt, err := time.Parse(backupTimeFormat, stamp)
		if err != nil {
			continue
		}
		if !compressed {
			plain[name] = true
		}
		files = append(files, backupFile{
			path:       filepath.Join(dir, name),
			rotatedAt:  rotatedAt,
			compressed: compressed,
		})
	}

	kept := files[:0]
	for _, f := range files {
		if f.compressed && plain[strings.TrimSuffix(filepath.Base(f.path), ".gz")] {
			continue
		}
		kept = append(kept, f)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].rotatedAt.Before(kept[j].rotatedAt) })
	return kept, nil
}

// ReadSampleLog reads every sample recorded at path, rotated and compressed
// segments included, oldest first.
func ReadSampleLog(path string) ([]Sample, error) {
	path = ExpandPath(path)
	files, err := backupFiles(path)
	if err != nil {
		return nil, fmt.Errorf("failed to list sample log: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		files = append(files, backupFile{path: path})
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no sample log found at %s", path)
	}

	samples := make([]Sample, 0)
	for _, f := range files {
		read, err := readSampleFile(f)
		if err != nil {
			return nil, err
		}
		samples = append(samples, read...)
	}
	return samples, nil
}

func readSampleFile(f backupFile) ([]Sample, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var r io.Reader = file
	if f.compressed {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", f.path, err)
		}
		defer gz.Close()
		r = gz
	}

	var samples []Sample
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var s Sample
		if err := json.Unmarshal([]byte(text), &s); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", f.path, line, err)
		}
		samples = append(samples, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	return samples, nil
}
