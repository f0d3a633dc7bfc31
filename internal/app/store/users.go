package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"campuschat/internal/app/user"
)

// ErrUserNotFound is returned when a user id resolves to no row or to a
// deactivated account.
var ErrUserNotFound = errors.New("user not found or deactivated")

// Users is the read-mostly repository over the externally-managed users table.
// The only write this core performs is the report-count increment.
type Users struct {
	pool *pgxpool.Pool
}

// NewUsers constructs the user repository.
func NewUsers(pool *pgxpool.Pool) *Users {
	return &Users{pool: pool}
}

// FindActive resolves an id to an active user record. Missing and deactivated
// accounts both yield ErrUserNotFound.
func (s *Users) FindActive(ctx context.Context, id uuid.UUID) (user.User, error) {
	const q = `
		SELECT id, full_name, email, faculty, degree, course,
		       COALESCE(profile_picture, ''), is_active
		FROM users
		WHERE id = $1 AND is_active`

	u := user.User{}
	err := s.pool.QueryRow(ctx, q, id).Scan(
		&u.ID, &u.FullName, &u.Email, &u.Faculty, &u.Degree,
		&u.Course, &u.ProfilePicture, &u.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("find active user: %w", err)
	}

	return u, nil
}

// Report records a report against a user and increments their report counter in a
// single transaction.
func (s *Users) Report(ctx context.Context, reporterID, reportedID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("report user: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO reports (reporter_id, reported_id) VALUES ($1, $2)`,
		reporterID, reportedID,
	); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET report_count = report_count + 1 WHERE id = $1`,
		reportedID,
	); err != nil {
		return fmt.Errorf("increment report count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("report user: %w", err)
	}
	return nil
}
