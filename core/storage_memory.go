package core

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage keeps reports in process memory. Used when the sqlite
// archive is disabled.
type MemoryStorage struct {
	mu      sync.RWMutex
	reports map[string]StoredReport
}

// NewMemoryStorage creates an empty in-memory archive.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{reports: make(map[string]StoredReport)}
}

func (m *MemoryStorage) Initialize() error { return nil }

func (m *MemoryStorage) Close() error { return nil }

func (m *MemoryStorage) Save(report *AnalysisReport) (string, error) {
	id := uuid.New().String()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[id] = StoredReport{ReportHeader: headerOf(id, report), Report: report}
	return id, nil
}

func (m *MemoryStorage) Get(id string) (*StoredReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.reports[id]
	if !ok {
		return nil, ErrReportNotFound
	}
	return &stored, nil
}

func (m *MemoryStorage) List(limit, offset int) ([]ReportHeader, int, error) {
	headers := m.sortedHeaders()
	total := len(headers)

	if offset >= total {
		return []ReportHeader{}, total, nil
	}
	headers = headers[offset:]
	if limit > 0 && len(headers) > limit {
		headers = headers[:limit]
	}
	return headers, total, nil
}

func (m *MemoryStorage) CleanOldData(keepDays int) (int64, error) {
	if keepDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -keepDays)

	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for id, stored := range m.reports {
		if stored.GeneratedAt.Before(cutoff) {
			delete(m.reports, id)
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryStorage) GetStorageInfo() StorageInfo {
	headers := m.sortedHeaders()
	info := StorageInfo{Type: "memory", TotalReports: len(headers)}
	if len(headers) > 0 {
		info.NewestReport = headers[0].GeneratedAt
		info.OldestReport = headers[len(headers)-1].GeneratedAt
	}
	return info
}

// sortedHeaders returns headers newest first.
func (m *MemoryStorage) sortedHeaders() []ReportHeader {
	m.mu.RLock()
	defer m.mu.RUnlock()

	headers := make([]ReportHeader, 0, len(m.reports))
	for _, stored := range m.reports {
		headers = append(headers, stored.ReportHeader)
	}
	sort.Slice(headers, func(i, j int) bool {
		if headers[i].GeneratedAt.Equal(headers[j].GeneratedAt) {
			return headers[i].ID < headers[j].ID
		}
		return headers[i].GeneratedAt.After(headers[j].GeneratedAt)
	})
	return headers
}
