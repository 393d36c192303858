package repository

import (
	"context"
	"errors"
	"fmt"

	"relief-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const foodColumns = `id, "createdAt", latitude, longitude, address, pincode, description, images, "userId", distance`

// FoodRepository handles database operations for food providing regions
type FoodRepository struct {
	db *pgxpool.Pool
}

// NewFoodRepository creates a new food region repository
func NewFoodRepository(db *pgxpool.Pool) *FoodRepository {
	return &FoodRepository{db: db}
}

// Create inserts a food region and sets its generated ID
func (r *FoodRepository) Create(ctx context.Context, f *models.FoodRegion) error {
	query := `
		INSERT INTO food ("createdAt", latitude, longitude, address, pincode, description, images, "userId", distance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		f.CreatedAt, f.Latitude, f.Longitude, f.Address, f.Pincode, f.Description, f.Images, f.UserID, f.Distance,
	).Scan(&f.ID)
	if err != nil {
		return fmt.Errorf("failed to create food region: %w", err)
	}
	return nil
}

// List returns every food region in storage order
func (r *FoodRepository) List(ctx context.Context) ([]*models.FoodRegion, error) {
	query := `SELECT ` + foodColumns + ` FROM food ORDER BY id`
	return r.query(ctx, query)
}

// ListByUser returns the food regions owned by a user, newest first
func (r *FoodRepository) ListByUser(ctx context.Context, userID int64) ([]*models.FoodRegion, error) {
	query := `SELECT ` + foodColumns + ` FROM food WHERE "userId" = $1 ORDER BY "createdAt" DESC`
	return r.query(ctx, query, userID)
}

// GetByID retrieves a food region by ID regardless of owner
func (r *FoodRepository) GetByID(ctx context.Context, id int64) (*models.FoodRegion, error) {
	query := `SELECT ` + foodColumns + ` FROM food WHERE id = $1`
	var f models.FoodRegion
	err := scanFood(r.db.QueryRow(ctx, query, id), &f)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get food region: %w", err)
	}
	return &f, nil
}

// Update writes every mutable column of a food region
func (r *FoodRepository) Update(ctx context.Context, f *models.FoodRegion) error {
	query := `
		UPDATE food
		SET address = $1, pincode = $2, description = $3, latitude = $4, longitude = $5, images = $6
		WHERE id = $7
	`
	result, err := r.db.Exec(ctx, query,
		f.Address, f.Pincode, f.Description, f.Latitude, f.Longitude, f.Images, f.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update food region: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a food region by ID
func (r *FoodRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM food WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete food region: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *FoodRepository) query(ctx context.Context, query string, args ...any) ([]*models.FoodRegion, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get food regions: %w", err)
	}
	defer rows.Close()

	var regions []*models.FoodRegion
	for rows.Next() {
		var f models.FoodRegion
		if err := scanFood(rows, &f); err != nil {
			return nil, fmt.Errorf("failed to scan food region: %w", err)
		}
		regions = append(regions, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating food regions: %w", err)
	}

	return regions, nil
}

func scanFood(row pgx.Row, f *models.FoodRegion) error {
	return row.Scan(
		&f.ID, &f.CreatedAt, &f.Latitude, &f.Longitude, &f.Address, &f.Pincode,
		&f.Description, &f.Images, &f.UserID, &f.Distance,
	)
}
