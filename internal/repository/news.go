package repository

import (
	"context"
	"errors"
	"fmt"

	"relief-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const newsColumns = `id, title, description, "createdAt", "updatedAt", images, "userId",
	latitude, longitude, COALESCE(distance, 0)`

// NewsRepository handles database operations for news
type NewsRepository struct {
	db *pgxpool.Pool
}

// NewNewsRepository creates a new news repository
func NewNewsRepository(db *pgxpool.Pool) *NewsRepository {
	return &NewsRepository{db: db}
}

// Create inserts a news item and sets its generated ID
func (r *NewsRepository) Create(ctx context.Context, n *models.News) error {
	query := `
		INSERT INTO news (title, description, "createdAt", "updatedAt", images, "userId", latitude, longitude, distance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		n.Title, n.Description, n.CreatedAt, n.UpdatedAt, n.Images, n.UserID, n.Latitude, n.Longitude, n.Distance,
	).Scan(&n.ID)
	if err != nil {
		return fmt.Errorf("failed to create news: %w", err)
	}
	return nil
}

// List returns every news item in storage order
func (r *NewsRepository) List(ctx context.Context) ([]*models.News, error) {
	query := `SELECT ` + newsColumns + ` FROM news ORDER BY id`
	return r.query(ctx, query)
}

// ListByUser returns the news posted by a user, newest first
func (r *NewsRepository) ListByUser(ctx context.Context, userID int64) ([]*models.News, error) {
	query := `SELECT ` + newsColumns + ` FROM news WHERE "userId" = $1 ORDER BY "createdAt" DESC`
	return r.query(ctx, query, userID)
}

// GetOwned retrieves a news item only if it belongs to the given user
func (r *NewsRepository) GetOwned(ctx context.Context, id, userID int64) (*models.News, error) {
	query := `SELECT ` + newsColumns + ` FROM news WHERE id = $1 AND "userId" = $2`
	var n models.News
	err := scanNews(r.db.QueryRow(ctx, query, id, userID), &n)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get news: %w", err)
	}
	return &n, nil
}

// Update writes every mutable column of a news item
func (r *NewsRepository) Update(ctx context.Context, n *models.News) error {
	query := `
		UPDATE news
		SET title = $1, description = $2, images = $3, latitude = $4, longitude = $5, "updatedAt" = $6
		WHERE id = $7
	`
	result, err := r.db.Exec(ctx, query,
		n.Title, n.Description, n.Images, n.Latitude, n.Longitude, n.UpdatedAt, n.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update news: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a news item by ID
func (r *NewsRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete news: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NewsRepository) query(ctx context.Context, query string, args ...any) ([]*models.News, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get news: %w", err)
	}
	defer rows.Close()

	var items []*models.News
	for rows.Next() {
		var n models.News
		if err := scanNews(rows, &n); err != nil {
			return nil, fmt.Errorf("failed to scan news: %w", err)
		}
		items = append(items, &n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating news: %w", err)
	}

	return items, nil
}

func scanNews(row pgx.Row, n *models.News) error {
	return row.Scan(
		&n.ID, &n.Title, &n.Description, &n.CreatedAt, &n.UpdatedAt, &n.Images, &n.UserID,
		&n.Latitude, &n.Longitude, &n.Distance,
	)
}
