package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/themizzi/cartverify/internal/database"
	"github.com/themizzi/cartverify/internal/models"
)

// ErrRunNotFound is returned when no run has the requested ID
var ErrRunNotFound = errors.New("run not found")

// RunRepository handles database operations for verification runs
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository() *RunRepository {
	return &RunRepository{
		db: database.DB,
	}
}

// NewRunRepositoryWithDB creates a new run repository with a specific database connection
func NewRunRepositoryWithDB(db *sql.DB) *RunRepository {
	return &RunRepository{
		db: db,
	}
}

// CreateRun stores a new run
func (r *RunRepository) CreateRun(run *models.Run) error {
	query := `
		INSERT INTO verification_runs (id, engine, base_url, status, reason, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(query,
		run.ID,
		run.Engine,
		run.BaseURL,
		run.Status,
		run.Reason,
		run.StartedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// AddCheck stores the outcome of one check of a run
func (r *RunRepository) AddCheck(check *models.CheckResult) error {
	query := `
		INSERT INTO verification_checks (id, run_id, name, product, passed, message, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(query,
		check.ID,
		check.RunID,
		check.Name,
		check.Product,
		check.Passed,
		check.Message,
		check.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to add check: %w", err)
	}

	return nil
}

// FinishRun stores the final status of a run
func (r *RunRepository) FinishRun(run *models.Run) error {
	query := `
		UPDATE verification_runs
		SET status = $1, reason = $2, finished_at = $3
		WHERE id = $4
	`

	result, err := r.db.Exec(query, run.Status, run.Reason, run.FinishedAt.UTC(), run.ID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrRunNotFound
	}

	return nil
}

// GetRun retrieves a run by its ID
func (r *RunRepository) GetRun(id string) (*models.Run, error) {
	query := `
		SELECT id, engine, base_url, status, reason, started_at, finished_at
		FROM verification_runs
		WHERE id = $1
	`

	run, err := scanRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return run, nil
}

// ListRuns returns the most recent runs, newest first
func (r *RunRepository) ListRuns(limit int) ([]*models.Run, error) {
	query := `
		SELECT id, engine, base_url, status, reason, started_at, finished_at
		FROM verification_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	return runs, nil
}

// ListChecks returns the checks of a run in the order they were recorded
func (r *RunRepository) ListChecks(runID string) ([]*models.CheckResult, error) {
	query := `
		SELECT id, run_id, name, product, passed, message, duration_ms
		FROM verification_checks
		WHERE run_id = $1
		ORDER BY seq
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checks: %w", err)
	}
	defer rows.Close()

	var checks []*models.CheckResult
	for rows.Next() {
		check := &models.CheckResult{}
		var durationMS int64
		err := rows.Scan(
			&check.ID,
			&check.RunID,
			&check.Name,
			&check.Product,
			&check.Passed,
			&check.Message,
			&durationMS,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check: %w", err)
		}
		check.Duration = time.Duration(durationMS) * time.Millisecond
		checks = append(checks, check)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list checks: %w", err)
	}

	return checks, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.Run, error) {
	run := &models.Run{}
	var finished sql.NullTime
	err := row.Scan(
		&run.ID,
		&run.Engine,
		&run.BaseURL,
		&run.Status,
		&run.Reason,
		&run.StartedAt,
		&finished,
	)
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		run.FinishedAt = finished.Time
	}
	return run, nil
}
