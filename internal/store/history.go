package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	mlerror "github.com/msto63/mlang/foundation/core/error"
)

// Record is one parse attempt
type Record struct {
	ID           string        `json:"id"`
	RunID        string        `json:"run_id,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
	SourcePath   string        `json:"source_path"`
	SHA256       string        `json:"sha256"`
	Bytes        int           `json:"bytes"`
	Success      bool          `json:"success"`
	ErrorCode    string        `json:"error_code,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Line         int           `json:"line,omitempty"`
	Column       int           `json:"column,omitempty"`
	Statements   int           `json:"statements"`
	Tokens       int           `json:"tokens"`
	Duration     time.Duration `json:"duration"`
}

// NewRecord creates a record for source read from path. The outcome fields
// are filled in by the caller.
func NewRecord(path, source, runID string) *Record {
	sum := sha256.Sum256([]byte(source))
	return &Record{
		ID:         uuid.NewString(),
		RunID:      runID,
		Timestamp:  time.Now().UTC(),
		SourcePath: path,
		SHA256:     hex.EncodeToString(sum[:]),
		Bytes:      len(source),
	}
}

// Filter defines criteria for listing records
type Filter struct {
	SourcePath string
	Success    *bool
	Since      time.Time
	Limit      int
	Offset     int
}

// Stats summarizes the stored history
type Stats struct {
	Total       int64            `json:"total"`
	Succeeded   int64            `json:"succeeded"`
	Failed      int64            `json:"failed"`
	Files       int64            `json:"files"`
	ByErrorCode map[string]int64 `json:"by_error_code"`
	AvgDuration time.Duration    `json:"avg_duration"`
	LastParse   time.Time        `json:"last_parse,omitempty"`
}

// HistoryStore defines the interface for parse history persistence
type HistoryStore interface {
	Save(ctx context.Context, rec *Record) error
	Get(ctx context.Context, idOrPrefix string) (*Record, error)
	List(ctx context.Context, filter Filter) ([]*Record, error)
	Stats(ctx context.Context) (*Stats, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Close() error
}

// SQLiteHistoryStore implements HistoryStore using SQLite
type SQLiteHistoryStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// SQLiteConfig holds configuration for the SQLite store
type SQLiteConfig struct {
	Path string
}

// NewSQLiteHistoryStore opens or creates the history database
func NewSQLiteHistoryStore(cfg SQLiteConfig) (*SQLiteHistoryStore, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, dbError(err, "failed to create directory", "store.Open")
	}

	// Open database with WAL mode
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, dbError(err, "failed to open database", "store.Open")
	}

	s := &SQLiteHistoryStore{db: db}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, dbError(err, "failed to initialize schema", "store.Open")
	}

	return s, nil
}

// initSchema creates the necessary tables
func (s *SQLiteHistoryStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS history (
		id TEXT PRIMARY KEY,
		run_id TEXT,
		timestamp DATETIME NOT NULL,
		source_path TEXT NOT NULL,
		sha256 TEXT NOT NULL,
		bytes INTEGER NOT NULL,
		success INTEGER NOT NULL,
		error_code TEXT,
		error_message TEXT,
		line INTEGER,
		col INTEGER,
		statements INTEGER NOT NULL,
		tokens INTEGER NOT NULL,
		duration_ns INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_history_source ON history(source_path);
	CREATE INDEX IF NOT EXISTS idx_history_success ON history(success);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save inserts a record, assigning ID and timestamp when missing
func (s *SQLiteHistoryStore) Save(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history (id, run_id, timestamp, source_path, sha256, bytes, success,
			error_code, error_message, line, col, statements, tokens, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.RunID, rec.Timestamp.UTC(), rec.SourcePath, rec.SHA256, rec.Bytes, rec.Success,
		rec.ErrorCode, rec.ErrorMessage, rec.Line, rec.Column, rec.Statements, rec.Tokens, int64(rec.Duration))
	if err != nil {
		return dbError(err, "failed to insert history record", "store.Save")
	}

	return nil
}

const selectColumns = `SELECT id, run_id, timestamp, source_path, sha256, bytes, success,
	error_code, error_message, line, col, statements, tokens, duration_ns FROM history`

// Get returns the record with the given ID or unique ID prefix
func (s *SQLiteHistoryStore) Get(ctx context.Context, idOrPrefix string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idOrPrefix == "" {
		return nil, mlerror.New("empty record id").
			WithCode(mlerror.CodeInvalidInput).
			WithOperation("store.Get")
	}

	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE substr(id, 1, length(?)) = ? ORDER BY timestamp DESC LIMIT 2`,
		idOrPrefix, idOrPrefix)
	if err != nil {
		return nil, dbError(err, "failed to query history", "store.Get")
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}

	switch len(records) {
	case 0:
		return nil, mlerror.Newf("history record not found: %s", idOrPrefix).
			WithCode(mlerror.CodeNotFound).
			WithOperation("store.Get")
	case 1:
		return records[0], nil
	default:
		return nil, mlerror.Newf("ambiguous record id prefix: %s", idOrPrefix).
			WithCode(mlerror.CodeInvalidInput).
			WithOperation("store.Get")
	}
}

// List retrieves records based on filter criteria, newest first
func (s *SQLiteHistoryStore) List(ctx context.Context, filter Filter) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectColumns + ` WHERE 1=1`
	var args []interface{}

	if filter.SourcePath != "" {
		query += " AND source_path = ?"
		args = append(args, filter.SourcePath)
	}
	if filter.Success != nil {
		query += " AND success = ?"
		args = append(args, *filter.Success)
	}
	if !filter.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.Since.UTC())
	}

	query += " ORDER BY timestamp DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(err, "failed to query history", "store.List")
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]*Record, error) {
	var records []*Record
	for rows.Next() {
		var rec Record
		var runID, errorCode, errorMessage sql.NullString
		var line, col sql.NullInt64
		var durationNs int64

		if err := rows.Scan(&rec.ID, &runID, &rec.Timestamp, &rec.SourcePath, &rec.SHA256, &rec.Bytes,
			&rec.Success, &errorCode, &errorMessage, &line, &col, &rec.Statements, &rec.Tokens,
			&durationNs); err != nil {
			return nil, dbError(err, "failed to scan history record", "store.scan")
		}

		rec.RunID = runID.String
		rec.ErrorCode = errorCode.String
		rec.ErrorMessage = errorMessage.String
		rec.Line = int(line.Int64)
		rec.Column = int(col.Int64)
		rec.Duration = time.Duration(durationNs)
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, dbError(err, "failed to read history", "store.scan")
	}
	return records, nil
}

// Stats returns aggregate figures over all records
func (s *SQLiteHistoryStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{ByErrorCode: make(map[string]int64)}

	var succeeded sql.NullInt64
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), SUM(success), COUNT(DISTINCT source_path), AVG(duration_ns) FROM history
	`).Scan(&stats.Total, &succeeded, &stats.Files, &avg)
	if err != nil {
		return nil, dbError(err, "failed to compute history stats", "store.Stats")
	}
	stats.Succeeded = succeeded.Int64
	stats.Failed = stats.Total - stats.Succeeded
	stats.AvgDuration = time.Duration(avg.Float64)

	// Failures by error code
	rows, err := s.db.QueryContext(ctx, `
		SELECT error_code, COUNT(*) FROM history WHERE success = 0 GROUP BY error_code
	`)
	if err != nil {
		return nil, dbError(err, "failed to group history by error code", "store.Stats")
	}
	defer rows.Close()
	for rows.Next() {
		var code sql.NullString
		var count int64
		if err := rows.Scan(&code, &count); err != nil {
			return nil, dbError(err, "failed to scan error code group", "store.Stats")
		}
		stats.ByErrorCode[code.String] = count
	}

	// Last parse time; MAX() would lose the column's DATETIME type
	var last time.Time
	err = s.db.QueryRowContext(ctx, `SELECT timestamp FROM history ORDER BY timestamp DESC LIMIT 1`).Scan(&last)
	if err != nil && err != sql.ErrNoRows {
		return nil, dbError(err, "failed to read last parse time", "store.Stats")
	}
	stats.LastParse = last

	return stats, nil
}

// Prune deletes records older than the given age and returns how many
func (s *SQLiteHistoryStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-olderThan)

	result, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, dbError(err, "failed to prune history", "store.Prune")
	}
	deleted, _ := result.RowsAffected()

	return deleted, nil
}

// Close closes the database connection
func (s *SQLiteHistoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func dbError(err error, message, operation string) error {
	return mlerror.Wrap(err, message).
		WithCode(mlerror.CodeDatabaseError).
		WithOperation(operation)
}
