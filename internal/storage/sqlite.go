// Package storage provides the sqlite persistence layer for historical
// expenses and audit verdicts. The pipeline core never touches it; the CLI
// uses it as the historical-record collaborator.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/docmind/expense-audit/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage implements expense and audit persistence using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Migrate creates the schema when it does not exist yet.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS expenses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		vendor TEXT NOT NULL,
		amount REAL NOT NULL,
		category TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS audits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		vendor TEXT NOT NULL,
		amount REAL NOT NULL,
		category TEXT NOT NULL,
		status TEXT NOT NULL,
		anomaly_score REAL NOT NULL,
		result TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_expenses_created_at ON expenses(created_at);
	CREATE INDEX IF NOT EXISTS idx_audits_created_at ON audits(created_at);`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SaveExpense records one historical expense.
func (s *SQLiteStorage) SaveExpense(ctx context.Context, record model.HistoricalRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecord(&record); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (vendor, amount, category) VALUES (?, ?, ?)`,
		record.Vendor, record.Amount, record.Category)
	if err != nil {
		return fmt.Errorf("failed to save expense: %w", err)
	}
	return nil
}

// ListExpenses returns up to limit historical expenses, most recent first —
// the order the risk stage expects history in.
func (s *SQLiteStorage) ListExpenses(ctx context.Context, limit int) ([]model.HistoricalRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT vendor, amount, category FROM expenses ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.HistoricalRecord
	for rows.Next() {
		var r model.HistoricalRecord
		if err := rows.Scan(&r.Vendor, &r.Amount, &r.Category); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return records, nil
}

// SaveAudit persists one pipeline result as an audit-trail row. The full
// result is stored as JSON alongside the queryable verdict columns.
func (s *SQLiteStorage) SaveAudit(ctx context.Context, result *model.PipelineResult) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("%w: result", ErrNilParameter)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal audit result: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO audits (vendor, amount, category, status, anomaly_score, result)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		result.Expense.Vendor,
		result.Expense.Amount,
		result.Categorization.Category,
		string(result.Summary.Status),
		result.AnomalyScore,
		string(payload))
	if err != nil {
		return fmt.Errorf("failed to save audit: %w", err)
	}
	return nil
}

// AuditRecord is one persisted audit verdict.
type AuditRecord struct {
	CreatedAt    time.Time
	Vendor       string
	Category     string
	Status       string
	Amount       float64
	AnomalyScore float64
	ID           int64
}

// ListAudits returns up to limit audit verdicts, most recent first.
func (s *SQLiteStorage) ListAudits(ctx context.Context, limit int) ([]AuditRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, vendor, amount, category, status, anomaly_score, created_at
		 FROM audits ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var audits []AuditRecord
	for rows.Next() {
		var a AuditRecord
		if err := rows.Scan(&a.ID, &a.Vendor, &a.Amount, &a.Category, &a.Status, &a.AnomalyScore, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit: %w", err)
		}
		audits = append(audits, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audits: %w", err)
	}
	return audits, nil
}
