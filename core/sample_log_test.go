package core

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSampleLog(t *testing.T, config SampleLogConfig) *SampleLog {
	t.Helper()
	if config.Path == "" {
		config.Path = filepath.Join(t.TempDir(), "samples.jsonl")
	}
	config.Enabled = true
	l := NewSampleLog(config, nil)
	require.NoError(t, l.Open())
	t.Cleanup(func() { l.Close() })
	return l
}

// bulkySample carries enough processes to make a JSON line of roughly 100KB
func bulkySample(i int) Sample {
	procs := make([]ProcessSample, 800)
	for j := range procs {
		procs[j] = ProcessSample{PID: int32(j), Name: "worker-process", User: "nobody", Status: StatusSleeping}
	}
	return Sample{
		Timestamp:  testEpoch.Add(time.Duration(i) * time.Second),
		CPUPercent: float64(i),
		Processes:  procs,
	}
}

func TestSampleLog_WriteAndRead(t *testing.T) {
	l := openTestSampleLog(t, SampleLogConfig{})
	for _, s := range samplesOf([]float64{10, 20, 30}, 40, 50) {
		require.NoError(t, l.Write(s))
	}
	require.NoError(t, l.Close())

	samples, err := ReadSampleLog(l.Path())
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.Equal(t, 30.0, samples[2].CPUPercent)
	assert.True(t, samples[0].Timestamp.Equal(testEpoch))
}

func TestSampleLog_ReopenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.jsonl")
	for i := 0; i < 2; i++ {
		l := NewSampleLog(SampleLogConfig{Enabled: true, Path: path}, nil)
		require.NoError(t, l.Open())
		require.NoError(t, l.Write(Sample{Timestamp: testEpoch.Add(time.Duration(i) * time.Second), CPUPercent: float64(i)}))
		require.NoError(t, l.Close())
	}

	samples, err := ReadSampleLog(path)
	require.NoError(t, err)
	assert.Len(t, samples, 2)
}

func TestSampleLog_RotationKeepsNewestSegments(t *testing.T) {
	l := openTestSampleLog(t, SampleLogConfig{MaxFileSizeMB: 1, MaxFiles: 2, Compress: true})

	const total = 40
	for i := 0; i < total; i++ {
		// Rotated names carry millisecond timestamps.
		time.Sleep(2 * time.Millisecond)
		require.NoError(t, l.Write(bulkySample(i)))
	}
	require.NoError(t, l.Close())

	// Pruning and compression of rotated segments run in the background.
	require.Eventually(t, func() bool {
		files, err := backupFiles(l.Path())
		if err != nil || len(files) != 2 {
			return false
		}
		for _, f := range files {
			if !f.compressed {
				return false
			}
		}
		return true
	}, 5*time.Second, 20*time.Millisecond)

	samples, err := ReadSampleLog(l.Path())
	require.NoError(t, err)
	require.NotEmpty(t, samples)
	assert.Less(t, len(samples), total)
	assert.Equal(t, float64(total-1), samples[len(samples)-1].CPUPercent)
	for i := 1; i < len(samples); i++ {
		assert.True(t, samples[i].Timestamp.After(samples[i-1].Timestamp))
	}
}

func TestSampleLog_RecoversAfterFailedWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l := openTestSampleLog(t, SampleLogConfig{Path: filepath.Join(dir, "samples.jsonl")})

	// A plain file where the log directory should be makes the write fail.
	require.NoError(t, os.RemoveAll(dir))
	require.NoError(t, os.WriteFile(dir, []byte("blocker"), 0644))
	assert.Error(t, l.Write(Sample{Timestamp: testEpoch, CPUPercent: 1}))

	require.NoError(t, os.Remove(dir))
	require.NoError(t, l.Write(Sample{Timestamp: testEpoch.Add(time.Second), CPUPercent: 2}))
	require.NoError(t, l.Close())

	samples, err := ReadSampleLog(l.Path())
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 2.0, samples[0].CPUPercent)
}

func TestBackupFiles_OrderAndCompression(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "samples.jsonl")
	write := func(name, content string, gz bool) {
		f, err := os.Create(filepath.Join(dir, name))
		require.NoError(t, err)
		defer f.Close()
		if gz {
			w := gzip.NewWriter(f)
			_, err = w.Write([]byte(content))
			require.NoError(t, err)
			require.NoError(t, w.Close())
			return
		}
		_, err = f.WriteString(content)
		require.NoError(t, err)
	}

	write("samples-2024-03-01T12-00-02.000.jsonl.gz", `{"cpu_percent": 2}`+"\n", true)
	write("samples-2024-03-01T12-00-01.000.jsonl", `{"cpu_percent": 1}`+"\n", false)
	// Compression in progress: the plain copy wins.
	write("samples-2024-03-01T12-00-01.000.jsonl.gz", "partial", false)
	write("samples.jsonl", `{"cpu_percent": 3}`+"\n", false)
	write("other-2024-03-01T12-00-00.000.jsonl", `{"cpu_percent": 9}`+"\n", false)

	samples, err := ReadSampleLog(path)
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.Equal(t, []float64{1, 2, 3}, []float64{samples[0].CPUPercent, samples[1].CPUPercent, samples[2].CPUPercent})
}

func TestReadSampleLog_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadSampleLog(filepath.Join(dir, "missing.jsonl"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.jsonl")
	require.NoError(t, os.WriteFile(bad, []byte("{\"cpu_percent\": 1}\nnot json\n"), 0644))
	_, err = ReadSampleLog(bad)
	assert.Error(t, err)
}

func TestSampleLog_WriteBeforeOpen(t *testing.T) {
	l := NewSampleLog(SampleLogConfig{Path: filepath.Join(t.TempDir(), "s.jsonl")}, nil)
	assert.Error(t, l.Write(Sample{}))
}
