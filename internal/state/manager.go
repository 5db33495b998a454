package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Volune/jackrabbit-filevault/internal/domain"
)

// Manager persists sync execution history
type Manager struct {
	db *sql.DB
}

// ExecutionRecord represents a single sync run against one root
type ExecutionRecord struct {
	ID           int64
	RootName     string
	StartTime    time.Time
	EndTime      time.Time
	Status       string // "success" or "failed"
	Materialized int
	Added        int
	Updated      int
	Deleted      int
	Error        string
}

// statuses accepted by SaveExecution
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// NewManager creates a new state manager backed by an sqlite database
// inside dataDir
func NewManager(dataDir string) (*Manager, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory cannot be empty")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "vlt-sync.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Limit connection pool to prevent "database is locked" errors
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// Enable WAL mode for better concurrency and set busy timeout
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode and busy timeout: %w", err)
	}

	manager := &Manager{db: db}

	if err := manager.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return manager, nil
}

// initSchema creates the database schema
func (m *Manager) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS executions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		root_name TEXT NOT NULL,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NOT NULL,
		status TEXT NOT NULL,
		materialized INTEGER DEFAULT 0,
		added INTEGER DEFAULT 0,
		updated INTEGER DEFAULT 0,
		deleted INTEGER DEFAULT 0,
		error TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_executions_root_time ON executions(root_name, start_time DESC);
	CREATE INDEX IF NOT EXISTS idx_executions_status ON executions(status);
	`

	_, err := m.db.Exec(schema)
	return err
}

// RecordRun builds and saves an execution record from a sync result
func (m *Manager) RecordRun(rootName string, start, end time.Time, res *domain.SyncResult, runErr error) error {
	record := ExecutionRecord{
		RootName:  rootName,
		StartTime: start,
		EndTime:   end,
		Status:    StatusSuccess,
	}
	if res != nil {
		stats := res.Stats()
		record.Materialized = stats.Materialized
		record.Added = stats.Added
		record.Updated = stats.Updated
		record.Deleted = stats.Deleted
	}
	if runErr != nil {
		record.Status = StatusFailed
		record.Error = runErr.Error()
	}
	return m.SaveExecution(record)
}

// SaveExecution records a sync execution
func (m *Manager) SaveExecution(record ExecutionRecord) error {
	if record.Status != StatusSuccess && record.Status != StatusFailed {
		return fmt.Errorf("invalid status: %s", record.Status)
	}

	query := `
		INSERT INTO executions (root_name, start_time, end_time, status, materialized, added, updated, deleted, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := m.db.Exec(query,
		record.RootName,
		record.StartTime,
		record.EndTime,
		record.Status,
		record.Materialized,
		record.Added,
		record.Updated,
		record.Deleted,
		record.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to save execution record: %w", err)
	}

	return nil
}

const selectColumns = `
	SELECT id, root_name, start_time, end_time, status, materialized, added, updated, deleted, error
	FROM executions
`

// GetHistory retrieves execution history for one root, newest first
func (m *Manager) GetHistory(rootName string, limit int) ([]ExecutionRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	rows, err := m.db.Query(selectColumns+`
		WHERE root_name = ?
		ORDER BY start_time DESC
		LIMIT ?
	`, rootName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetAllHistory retrieves execution history across all roots, newest first
func (m *Manager) GetAllHistory(limit int) ([]ExecutionRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	rows, err := m.db.Query(selectColumns+`
		ORDER BY start_time DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query all history: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetLastSuccess retrieves the most recent successful run for a root,
// or nil if there is none
func (m *Manager) GetLastSuccess(rootName string) (*ExecutionRecord, error) {
	row := m.db.QueryRow(selectColumns+`
		WHERE root_name = ? AND status = ?
		ORDER BY start_time DESC
		LIMIT 1
	`, rootName, StatusSuccess)

	var record ExecutionRecord
	err := row.Scan(
		&record.ID,
		&record.RootName,
		&record.StartTime,
		&record.EndTime,
		&record.Status,
		&record.Materialized,
		&record.Added,
		&record.Updated,
		&record.Deleted,
		&record.Error,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last success: %w", err)
	}

	return &record, nil
}

// Prune deletes execution records older than the cutoff
func (m *Manager) Prune(olderThan time.Time) (int64, error) {
	result, err := m.db.Exec(`DELETE FROM executions WHERE start_time < ?`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	return result.RowsAffected()
}

func scanRecords(rows *sql.Rows) ([]ExecutionRecord, error) {
	var records []ExecutionRecord
	for rows.Next() {
		var record ExecutionRecord
		err := rows.Scan(
			&record.ID,
			&record.RootName,
			&record.StartTime,
			&record.EndTime,
			&record.Status,
			&record.Materialized,
			&record.Added,
			&record.Updated,
			&record.Deleted,
			&record.Error,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	return records, nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
