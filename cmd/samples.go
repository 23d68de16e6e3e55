package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yourusername/sysdiag/core"
)

// samplesFile is the on-disk form of a recording. It is the same shape as
// the body of POST /v1/analyze.
type samplesFile struct {
	Samples []core.Sample `json:"samples"`
}

// writeSamples writes a recording to path, or to stdout when path is "-"
func writeSamples(path string, samples []core.Sample) error {
	if samples == nil {
		samples = []core.Sample{}
	}
	data, err := json.MarshalIndent(samplesFile{Samples: samples}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal samples: %w", err)
	}
	if path == "-" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// readSamples loads a recording. Both {"samples": [...]} and a bare array
// are accepted; "-" reads stdin. A .jsonl path is read as a sample log,
// rotated segments included.
func readSamples(path string) ([]core.Sample, error) {
	if strings.HasSuffix(path, ".jsonl") {
		return core.ReadSampleLog(path)
	}
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read samples: %w", err)
	}
	return decodeSamples(data)
}

func decodeSamples(data []byte) ([]core.Sample, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var samples []core.Sample
		if err := json.Unmarshal(trimmed, &samples); err != nil {
			return nil, fmt.Errorf("failed to parse samples: %w", err)
		}
		return samples, nil
	}

	var file samplesFile
	if err := json.Unmarshal(trimmed, &file); err != nil {
		return nil, fmt.Errorf("failed to parse samples: %w", err)
	}
	return file.Samples, nil
}
