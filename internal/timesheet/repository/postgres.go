package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"legal-case-platform/backend/internal/timesheet/domain"
)

const entryColumns = `id, user_id, case_id, task_id, start_time, end_time,
	duration_minutes, billable, hourly_rate, total_amount, description,
	created_at, created_by, updated_at, updated_by`

// PostgresRepository persists timesheet entries in Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a timesheet entry repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the entry. The entry must have ID set. Inserting an id that
// already exists is a no-op, which makes timer-stop retries idempotent.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.TimesheetEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO timesheet_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO NOTHING`,
		e.ID, e.UserID, nullString(e.CaseID), nullString(e.TaskID),
		e.StartTime, e.EndTime, e.DurationMinutes, e.Billable,
		nullFloat(e.HourlyRate), e.TotalAmount, e.Description,
		e.CreatedAt, e.CreatedBy, e.UpdatedAt, e.UpdatedBy,
	)
	return err
}

// GetByID returns the entry for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.TimesheetEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM timesheet_entries WHERE id = $1`, id)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

// ListByUserAndRange returns the user's entries with start_time in [from, to),
// newest first. Zero from/to leave that bound open.
func (r *PostgresRepository) ListByUserAndRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.TimesheetEntry, error) {
	return r.list(ctx, `SELECT `+entryColumns+` FROM timesheet_entries
		WHERE user_id = $1
		  AND ($2::timestamptz IS NULL OR start_time >= $2)
		  AND ($3::timestamptz IS NULL OR start_time < $3)
		ORDER BY start_time DESC`,
		userID, nullTime(from), nullTime(to))
}

// ListByCase returns entries for the case with start_time in [from, to), newest first.
func (r *PostgresRepository) ListByCase(ctx context.Context, caseID string, from, to time.Time) ([]*domain.TimesheetEntry, error) {
	return r.list(ctx, `SELECT `+entryColumns+` FROM timesheet_entries
		WHERE case_id = $1
		  AND ($2::timestamptz IS NULL OR start_time >= $2)
		  AND ($3::timestamptz IS NULL OR start_time < $3)
		ORDER BY start_time DESC`,
		caseID, nullTime(from), nullTime(to))
}

// ListByTask returns entries for the task with start_time in [from, to), newest first.
func (r *PostgresRepository) ListByTask(ctx context.Context, taskID string, from, to time.Time) ([]*domain.TimesheetEntry, error) {
	return r.list(ctx, `SELECT `+entryColumns+` FROM timesheet_entries
		WHERE task_id = $1
		  AND ($2::timestamptz IS NULL OR start_time >= $2)
		  AND ($3::timestamptz IS NULL OR start_time < $3)
		ORDER BY start_time DESC`,
		taskID, nullTime(from), nullTime(to))
}

// ListByUsers returns entries for any of the given users with start_time in [from, to).
func (r *PostgresRepository) ListByUsers(ctx context.Context, userIDs []string, from, to time.Time) ([]*domain.TimesheetEntry, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+entryColumns+` FROM timesheet_entries
		WHERE user_id = ANY($1)
		  AND ($2::timestamptz IS NULL OR start_time >= $2)
		  AND ($3::timestamptz IS NULL OR start_time < $3)
		ORDER BY start_time DESC`,
		userIDs, nullTime(from), nullTime(to))
}

// Update rewrites all mutable columns of the entry. The entry must have ID set.
func (r *PostgresRepository) Update(ctx context.Context, e *domain.TimesheetEntry) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE timesheet_entries
		SET case_id = $2, task_id = $3, start_time = $4, end_time = $5,
		    duration_minutes = $6, billable = $7, hourly_rate = $8,
		    total_amount = $9, description = $10, updated_at = $11, updated_by = $12
		WHERE id = $1`,
		e.ID, nullString(e.CaseID), nullString(e.TaskID), e.StartTime, e.EndTime,
		e.DurationMinutes, e.Billable, nullFloat(e.HourlyRate), e.TotalAmount,
		e.Description, e.UpdatedAt, e.UpdatedBy,
	)
	return err
}

// Delete removes the entry with the given id. Deleting a missing id is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM timesheet_entries WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*domain.TimesheetEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.TimesheetEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*domain.TimesheetEntry, error) {
	var (
		e      domain.TimesheetEntry
		caseID sql.NullString
		taskID sql.NullString
		rate   sql.NullFloat64
	)
	err := row.Scan(
		&e.ID, &e.UserID, &caseID, &taskID, &e.StartTime, &e.EndTime,
		&e.DurationMinutes, &e.Billable, &rate, &e.TotalAmount, &e.Description,
		&e.CreatedAt, &e.CreatedBy, &e.UpdatedAt, &e.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	e.CaseID = caseID.String
	e.TaskID = taskID.String
	e.HourlyRate = rate.Float64
	return &e, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: f != 0}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
