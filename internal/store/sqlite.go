package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/yuhengc/prepmate/backend/internal/model/interview"
)

// SQLiteStore provides SQLite-backed persistence for interview sessions
// and reports. Sessions are stored as versioned snapshots; the version
// column backs the compare-and-swap contract of interview.Store.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at dbPath and creates tables if they
// don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS interview_sessions (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		transcript TEXT NOT NULL,
		aggregate TEXT NOT NULL,
		turns_completed INTEGER NOT NULL,
		status TEXT NOT NULL,
		version INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS interview_reports (
		session_id TEXT PRIMARY KEY,
		overall_score INTEGER NOT NULL,
		dimensions TEXT NOT NULL,
		recommendation TEXT NOT NULL,
		summary TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (session_id) REFERENCES interview_sessions(id)
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Create inserts a new session snapshot.
func (s *SQLiteStore) Create(ctx context.Context, session *interview.Session) error {
	transcript, aggregate, err := marshalSnapshot(session)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO interview_sessions
		 (id, owner_id, transcript, aggregate, turns_completed, status, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.OwnerID, transcript, aggregate,
		session.TurnsCompleted, session.Status, session.Version,
		session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}

// Get retrieves a session snapshot by identifier.
func (s *SQLiteStore) Get(ctx context.Context, sessionID string) (interview.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, transcript, aggregate, turns_completed, status, version, created_at, updated_at
		 FROM interview_sessions WHERE id = ?`,
		sessionID,
	)

	var (
		session    interview.Session
		transcript string
		aggregate  string
	)
	err := row.Scan(&session.ID, &session.OwnerID, &transcript, &aggregate,
		&session.TurnsCompleted, &session.Status, &session.Version,
		&session.CreatedAt, &session.UpdatedAt)
	if err == sql.ErrNoRows {
		return interview.Session{}, interview.ErrSessionNotFound
	}
	if err != nil {
		return interview.Session{}, fmt.Errorf("scan session: %w", err)
	}

	if err := json.Unmarshal([]byte(transcript), &session.Transcript); err != nil {
		return interview.Session{}, fmt.Errorf("decode transcript: %w", err)
	}
	if err := json.Unmarshal([]byte(aggregate), &session.Aggregate); err != nil {
		return interview.Session{}, fmt.Errorf("decode aggregate: %w", err)
	}

	return session, nil
}

// Update persists a mutated session, conditioned on the version the
// caller loaded. Transcript and aggregate land in the same write.
func (s *SQLiteStore) Update(ctx context.Context, session *interview.Session) error {
	transcript, aggregate, err := marshalSnapshot(session)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE interview_sessions
		 SET transcript = ?, aggregate = ?, turns_completed = ?, status = ?,
		     version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		transcript, aggregate, session.TurnsCompleted, session.Status,
		now, session.ID, session.Version,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if affected == 0 {
		// Distinguish a stale version from a missing row.
		row := s.db.QueryRowContext(ctx,
			`SELECT 1 FROM interview_sessions WHERE id = ?`, session.ID)
		var one int
		if scanErr := row.Scan(&one); scanErr == sql.ErrNoRows {
			return interview.ErrSessionNotFound
		}
		return interview.ErrVersionConflict
	}

	session.Version++
	session.UpdatedAt = now
	return nil
}

// SaveReport stores the final report for a session.
func (s *SQLiteStore) SaveReport(ctx context.Context, report interview.Report) error {
	dimensions, err := json.Marshal(report.Dimensions)
	if err != nil {
		return fmt.Errorf("encode dimensions: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO interview_reports
		 (session_id, overall_score, dimensions, recommendation, summary, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		report.SessionID, report.OverallScore, string(dimensions),
		report.Recommendation, report.Summary, report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}

	return nil
}

// GetReport retrieves the final report for a session.
func (s *SQLiteStore) GetReport(ctx context.Context, sessionID string) (interview.Report, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT session_id, overall_score, dimensions, recommendation, summary, created_at
		 FROM interview_reports WHERE session_id = ?`,
		sessionID,
	)

	var (
		report     interview.Report
		dimensions string
	)
	err := row.Scan(&report.SessionID, &report.OverallScore, &dimensions,
		&report.Recommendation, &report.Summary, &report.CreatedAt)
	if err == sql.ErrNoRows {
		return interview.Report{}, interview.ErrReportNotFound
	}
	if err != nil {
		return interview.Report{}, fmt.Errorf("scan report: %w", err)
	}

	if err := json.Unmarshal([]byte(dimensions), &report.Dimensions); err != nil {
		return interview.Report{}, fmt.Errorf("decode dimensions: %w", err)
	}

	return report, nil
}

func marshalSnapshot(session *interview.Session) (transcript string, aggregate string, err error) {
	transcriptBytes, err := json.Marshal(session.Transcript)
	if err != nil {
		return "", "", fmt.Errorf("encode transcript: %w", err)
	}
	aggregateBytes, err := json.Marshal(session.Aggregate)
	if err != nil {
		return "", "", fmt.Errorf("encode aggregate: %w", err)
	}
	return string(transcriptBytes), string(aggregateBytes), nil
}
