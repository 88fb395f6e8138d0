package repository

import (
	"context"
	"database/sql"
	"errors"

	"legal-case-platform/backend/internal/audit/domain"
)

// PostgresRepository persists audit logs in Postgres.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the audit log for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.AuditLog, error) {
	var (
		a       domain.AuditLog
		details sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, action, resource, details, created_at
		FROM audit_logs WHERE id = $1`, id,
	).Scan(&a.ID, &a.UserID, &a.Action, &a.Resource, &details, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	a.Details = details.String
	return &a, nil
}

// ListByUser returns the user's audit logs, newest first, paginated by limit and offset.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit, offset int32) ([]*domain.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, action, resource, details, created_at
		FROM audit_logs WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AuditLog
	for rows.Next() {
		var (
			a       domain.AuditLog
			details sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &a.Resource, &details, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Details = details.String
		out = append(out, &a)
	}
	return out, rows.Err()
}

// Create persists the audit log to the database. The audit log must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, user_id, action, resource, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.UserID, a.Action, a.Resource,
		sql.NullString{String: a.Details, Valid: a.Details != ""}, a.CreatedAt,
	)
	return err
}
