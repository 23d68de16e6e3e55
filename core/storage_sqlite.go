package core

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStorage archives reports in a SQLite database
type SQLiteStorage struct {
	db         *sql.DB
	config     StorageConfig
	sqlitePath string
}

// NewSQLiteStorage creates a SQLite archive; call Initialize before use
func NewSQLiteStorage(config StorageConfig) *SQLiteStorage {
	return &SQLiteStorage{
		config:     config,
		sqlitePath: config.SQLitePath,
	}
}

// Initialize opens the database and creates the schema
func (s *SQLiteStorage) Initialize() error {
	s.sqlitePath = ExpandPath(s.sqlitePath)

	if err := os.MkdirAll(filepath.Dir(s.sqlitePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", s.sqlitePath)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	s.db = db

	if err := s.configureSQLite(); err != nil {
		return fmt.Errorf("failed to configure sqlite: %w", err)
	}
	if err := s.createTables(); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	if err := s.createIndexes(); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Close closes the database
func (s *SQLiteStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStorage) configureSQLite() error {
	if s.config.SQLiteWAL {
		if _, err := s.db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			return err
		}
	}
	if s.config.SQLiteCacheSize > 0 {
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA cache_size = %d", s.config.SQLiteCacheSize)); err != nil {
			return err
		}
	}
	if _, err := s.db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		return err
	}
	return nil
}

func (s *SQLiteStorage) createTables() error {
	createReportsSQL := `
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		generated_at DATETIME NOT NULL,
		data_points INTEGER NOT NULL,
		health_score INTEGER NOT NULL,
		health_status TEXT NOT NULL,
		start_time DATETIME NOT NULL,
		end_time DATETIME NOT NULL,
		body TEXT NOT NULL
	);`

	if _, err := s.db.Exec(createReportsSQL); err != nil {
		return fmt.Errorf("failed to create reports table: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) createIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_reports_generated_at ON reports(generated_at)",
		"CREATE INDEX IF NOT EXISTS idx_reports_health_status ON reports(health_status)",
	}
	for _, indexSQL := range indexes {
		if _, err := s.db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// Save archives a report under a new id
func (s *SQLiteStorage) Save(report *AnalysisReport) (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("SQLite database not initialized")
	}

	body, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	id := uuid.New().String()
	_, err = s.db.Exec(`
		INSERT INTO reports (
			id, generated_at, data_points, health_score, health_status,
			start_time, end_time, body
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		report.GeneratedAt.UTC(),
		report.DataPoints,
		report.Health.Score,
		string(report.Health.Status),
		report.TimeRange.Start.UTC(),
		report.TimeRange.End.UTC(),
		string(body),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert report: %w", err)
	}
	return id, nil
}

// Get loads an archived report
func (s *SQLiteStorage) Get(id string) (*StoredReport, error) {
	if s.db == nil {
		return nil, fmt.Errorf("SQLite database not initialized")
	}

	var stored StoredReport
	var status, body string
	err := s.db.QueryRow(`
		SELECT id, generated_at, data_points, health_score, health_status,
			   start_time, end_time, body
		FROM reports WHERE id = ?`, id).Scan(
		&stored.ID,
		&stored.GeneratedAt,
		&stored.DataPoints,
		&stored.HealthScore,
		&status,
		&stored.Start,
		&stored.End,
		&body,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query report: %w", err)
	}
	stored.HealthStatus = HealthStatus(status)

	var report AnalysisReport
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", id, err)
	}
	stored.Report = &report
	return &stored, nil
}

// List returns report headers, newest first
func (s *SQLiteStorage) List(limit, offset int) ([]ReportHeader, int, error) {
	if s.db == nil {
		return nil, 0, fmt.Errorf("SQLite database not initialized")
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM reports").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.Query(`
		SELECT id, generated_at, data_points, health_score, health_status,
			   start_time, end_time
		FROM reports
		ORDER BY generated_at DESC, id ASC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	headers := make([]ReportHeader, 0)
	for rows.Next() {
		var h ReportHeader
		var status string
		if err := rows.Scan(&h.ID, &h.GeneratedAt, &h.DataPoints, &h.HealthScore, &status, &h.Start, &h.End); err != nil {
			return nil, 0, fmt.Errorf("failed to scan report: %w", err)
		}
		h.HealthStatus = HealthStatus(status)
		headers = append(headers, h)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error reading rows: %w", err)
	}
	return headers, total, nil
}

// CleanOldData deletes reports older than keepDays
func (s *SQLiteStorage) CleanOldData(keepDays int) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("SQLite database not initialized")
	}
	if keepDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -keepDays).UTC()
	result, err := s.db.Exec("DELETE FROM reports WHERE generated_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old reports: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		s.db.Exec("VACUUM")
	}
	return affected, nil
}

// GetStorageInfo describes the database
func (s *SQLiteStorage) GetStorageInfo() StorageInfo {
	info := StorageInfo{Type: "sqlite", FilePath: s.sqlitePath}
	if s.db == nil {
		return info
	}

	s.db.QueryRow("SELECT COUNT(*) FROM reports").Scan(&info.TotalReports)
	if info.TotalReports > 0 {
		var oldest, newest string
		s.db.QueryRow("SELECT MIN(generated_at), MAX(generated_at) FROM reports").Scan(&oldest, &newest)
		info.OldestReport = parseSQLiteTime(oldest)
		info.NewestReport = parseSQLiteTime(newest)
	}
	if st, err := os.Stat(s.sqlitePath); err == nil {
		info.TotalSize = st.Size()
	}
	return info
}

// parseSQLiteTime parses timestamps returned by aggregate queries, which
// the driver hands back as text.
func parseSQLiteTime(value string) time.Time {
	for _, layout := range []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
		time.RFC3339Nano,
	} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ExpandPath expands environment variables and a leading "~/".
func ExpandPath(path string) string {
	expanded := os.ExpandEnv(path)
	if strings.HasPrefix(expanded, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			expanded = filepath.Join(home, expanded[2:])
		}
	}
	return expanded
}
