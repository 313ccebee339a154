package operations

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

const (
	sCHEMA_OPERATION_REPORTS = `
		CREATE TABLE IF NOT EXISTS operation_reports (
			id       varchar(64) not null,
			run_id   varchar(64) not null,
			seq      bigint not null,
			payload  text,

			PRIMARY KEY(id)
		);`

	insertReportStmt = `
		INSERT INTO operation_reports (id, run_id, seq, payload)
		VALUES ($1, $2, $3, $4)`
	selectRunReportsQuery = `
		SELECT payload FROM operation_reports
		WHERE run_id = $1 ORDER BY seq ASC`
	selectReportQuery = `
		SELECT payload FROM operation_reports
		WHERE run_id = $1 AND id = $2`
)

var _ Reporter = (*SQLReporter)(nil)

// SQLReporter persists the reports of one deployment run in a SQL database, keyed by run ID.
// Reports are stored as JSON and returned in insertion order. It is safe for concurrent use
// within one process.
type SQLReporter struct {
	db    *sql.DB
	runID string

	mu     sync.Mutex
	seq    int64
	seeded bool
}

// NewSQLReporter returns a reporter writing the reports of runID to db.
// Call EnsureSchema once before use.
func NewSQLReporter(db *sql.DB, runID string) *SQLReporter {
	return &SQLReporter{db: db, runID: runID}
}

// EnsureSchema creates the reports table if it does not exist.
func (r *SQLReporter) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sCHEMA_OPERATION_REPORTS); err != nil {
		return fmt.Errorf("failed to create operation_reports table: %w", err)
	}

	return nil
}

// RunID returns the run the reporter reads and writes.
func (r *SQLReporter) RunID() string {
	return r.runID
}

// AddReport stores the report.
func (r *SQLReporter) AddReport(report Report[any, any]) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report %s: %w", report.ID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.seeded {
		existing, err := r.loadReports()
		if err != nil {
			return err
		}
		r.seq = int64(len(existing))
		r.seeded = true
	}

	if _, err := r.db.Exec(insertReportStmt, report.ID, r.runID, r.seq, string(payload)); err != nil {
		return fmt.Errorf("failed to insert report %s: %w", report.ID, err)
	}
	r.seq++

	return nil
}

// GetReports returns all reports of the run in insertion order.
func (r *SQLReporter) GetReports() ([]Report[any, any], error) {
	return r.loadReports()
}

// GetReport returns a report by ID.
// Returns ErrReportNotFound if the report is not found.
func (r *SQLReporter) GetReport(id string) (Report[any, any], error) {
	var payload string
	err := r.db.QueryRow(selectReportQuery, r.runID, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Report[any, any]{}, fmt.Errorf("report_id %s: %w", id, ErrReportNotFound)
	}
	if err != nil {
		return Report[any, any]{}, fmt.Errorf("failed to query report %s: %w", id, err)
	}

	return decodeReport(payload)
}

// GetExecutionReports returns the reports executed as part of a sequence, children first,
// followed by the sequence report itself.
func (r *SQLReporter) GetExecutionReports(seqID string) ([]Report[any, any], error) {
	reports, err := r.loadReports()
	if err != nil {
		return nil, err
	}

	return collectExecutionReports(reports, seqID)
}

func (r *SQLReporter) loadReports() ([]Report[any, any], error) {
	rows, err := r.db.Query(selectRunReportsQuery, r.runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports of run %s: %w", r.runID, err)
	}
	defer rows.Close()

	var reports []Report[any, any]
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		report, err := decodeReport(payload)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}

func decodeReport(payload string) (Report[any, any], error) {
	var report Report[any, any]
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return Report[any, any]{}, fmt.Errorf("failed to unmarshal report: %w", err)
	}

	return report, nil
}
