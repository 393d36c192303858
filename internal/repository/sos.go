package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"relief-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sosColumns = `id, "createdAt", issue_rectified, latitude, longitude, persons, "userId", resolved, "resolvedAt"`

// SOSRepository handles database operations for SOS alerts
type SOSRepository struct {
	db *pgxpool.Pool
}

// NewSOSRepository creates a new SOS repository
func NewSOSRepository(db *pgxpool.Pool) *SOSRepository {
	return &SOSRepository{db: db}
}

// Create inserts an SOS alert and sets its generated ID
func (r *SOSRepository) Create(ctx context.Context, s *models.SOS) error {
	query := `
		INSERT INTO sos ("createdAt", issue_rectified, latitude, longitude, persons, "userId", resolved)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		s.CreatedAt, s.IssueRectified, s.Latitude, s.Longitude, s.Persons, s.UserID, s.Resolved,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("failed to create sos: %w", err)
	}
	return nil
}

// ListCreatedBetween returns alerts with from <= createdAt <= to, in storage order
func (r *SOSRepository) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]*models.SOS, error) {
	query := `SELECT ` + sosColumns + ` FROM sos WHERE "createdAt" >= $1 AND "createdAt" <= $2 ORDER BY id`
	return r.query(ctx, query, from, to)
}

// ListResolved returns every resolved alert
func (r *SOSRepository) ListResolved(ctx context.Context) ([]*models.SOS, error) {
	query := `SELECT ` + sosColumns + ` FROM sos WHERE resolved ORDER BY id`
	return r.query(ctx, query)
}

// GetByID retrieves an SOS alert by ID
func (r *SOSRepository) GetByID(ctx context.Context, id int64) (*models.SOS, error) {
	query := `SELECT ` + sosColumns + ` FROM sos WHERE id = $1`
	var s models.SOS
	err := scanSOS(r.db.QueryRow(ctx, query, id), &s)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get sos: %w", err)
	}
	return &s, nil
}

// MarkResolved flags an alert as resolved
func (r *SOSRepository) MarkResolved(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE sos SET resolved = TRUE, "resolvedAt" = $1 WHERE id = $2`
	result, err := r.db.Exec(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to resolve sos: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SOSRepository) query(ctx context.Context, query string, args ...any) ([]*models.SOS, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get sos alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*models.SOS
	for rows.Next() {
		var s models.SOS
		if err := scanSOS(rows, &s); err != nil {
			return nil, fmt.Errorf("failed to scan sos: %w", err)
		}
		alerts = append(alerts, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sos alerts: %w", err)
	}

	return alerts, nil
}

func scanSOS(row pgx.Row, s *models.SOS) error {
	return row.Scan(
		&s.ID, &s.CreatedAt, &s.IssueRectified, &s.Latitude, &s.Longitude,
		&s.Persons, &s.UserID, &s.Resolved, &s.ResolvedAt,
	)
}
