package core

import (
	"errors"
	"time"
)

// ErrReportNotFound is returned when an archived report id is unknown.
var ErrReportNotFound = errors.New("report not found")

// ReportStore archives analysis reports.
type ReportStore interface {
	// Initialize prepares the backend
	Initialize() error

	// Close releases the backend
	Close() error

	// Save archives a report and returns its id
	Save(report *AnalysisReport) (string, error)

	// Get returns an archived report
	Get(id string) (*StoredReport, error)

	// List returns report headers, newest first, and the total count
	List(limit, offset int) ([]ReportHeader, int, error)

	// CleanOldData deletes reports generated more than keepDays ago
	CleanOldData(keepDays int) (int64, error)

	// GetStorageInfo describes the backend
	GetStorageInfo() StorageInfo
}

// ReportHeader is the indexed part of an archived report.
type ReportHeader struct {
	ID           string       `json:"id"`
	GeneratedAt  time.Time    `json:"generated_at"`
	DataPoints   int          `json:"data_points"`
	HealthScore  int          `json:"health_score"`
	HealthStatus HealthStatus `json:"health_status"`
	Start        time.Time    `json:"start"`
	End          time.Time    `json:"end"`
}

// StoredReport is an archived report with its id.
type StoredReport struct {
	ReportHeader
	Report *AnalysisReport `json:"report"`
}

// StorageInfo describes a report archive.
type StorageInfo struct {
	Type         string    `json:"type"` // "sqlite", "memory"
	TotalReports int       `json:"total_reports"`
	TotalSize    int64     `json:"total_size"`
	OldestReport time.Time `json:"oldest_report"`
	NewestReport time.Time `json:"newest_report"`
	FilePath     string    `json:"file_path,omitempty"`
}

// NewReportStore creates the archive selected by config.
func NewReportStore(config StorageConfig) ReportStore {
	if config.Enabled && config.SQLitePath != "" {
		return NewSQLiteStorage(config)
	}
	return NewMemoryStorage()
}

func headerOf(id string, report *AnalysisReport) ReportHeader {
	return ReportHeader{
		ID:           id,
		GeneratedAt:  report.GeneratedAt,
		DataPoints:   report.DataPoints,
		HealthScore:  report.Health.Score,
		HealthStatus: report.Health.Status,
		Start:        report.TimeRange.Start,
		End:          report.TimeRange.End,
	}
}
