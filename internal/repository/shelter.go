package repository

import (
	"context"
	"errors"
	"fmt"

	"relief-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const shelterColumns = `id, COALESCE(name, ''), address, pincode, images, description, "createdAt", "updatedAt",
	latitude, longitude, "userId", distance`

// ShelterRepository handles database operations for shelters
type ShelterRepository struct {
	db *pgxpool.Pool
}

// NewShelterRepository creates a new shelter repository
func NewShelterRepository(db *pgxpool.Pool) *ShelterRepository {
	return &ShelterRepository{db: db}
}

// Create inserts a shelter and sets its generated ID
func (r *ShelterRepository) Create(ctx context.Context, s *models.Shelter) error {
	query := `
		INSERT INTO shelters (name, address, pincode, images, description, "createdAt", "updatedAt",
			latitude, longitude, "userId", distance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		s.Name, s.Address, s.Pincode, s.Images, s.Description, s.CreatedAt, s.UpdatedAt,
		s.Latitude, s.Longitude, s.UserID, s.Distance,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("failed to create shelter: %w", err)
	}
	return nil
}

// List returns every shelter in storage order
func (r *ShelterRepository) List(ctx context.Context) ([]*models.Shelter, error) {
	query := `SELECT ` + shelterColumns + ` FROM shelters ORDER BY id`
	return r.query(ctx, query)
}

// ListByUser returns the shelters owned by a user, newest first
func (r *ShelterRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Shelter, error) {
	query := `SELECT ` + shelterColumns + ` FROM shelters WHERE "userId" = $1 ORDER BY "createdAt" DESC`
	return r.query(ctx, query, userID)
}

// GetOwned retrieves a shelter only if it belongs to the given user
func (r *ShelterRepository) GetOwned(ctx context.Context, id, userID int64) (*models.Shelter, error) {
	query := `SELECT ` + shelterColumns + ` FROM shelters WHERE id = $1 AND "userId" = $2`
	var s models.Shelter
	err := scanShelter(r.db.QueryRow(ctx, query, id, userID), &s)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get shelter: %w", err)
	}
	return &s, nil
}

// Update writes every mutable column of a shelter
func (r *ShelterRepository) Update(ctx context.Context, s *models.Shelter) error {
	query := `
		UPDATE shelters
		SET name = $1, address = $2, pincode = $3, images = $4, description = $5,
			latitude = $6, longitude = $7, distance = $8, "updatedAt" = $9
		WHERE id = $10
	`
	result, err := r.db.Exec(ctx, query,
		s.Name, s.Address, s.Pincode, s.Images, s.Description,
		s.Latitude, s.Longitude, s.Distance, s.UpdatedAt, s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update shelter: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a shelter by ID
func (r *ShelterRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM shelters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shelter: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ShelterRepository) query(ctx context.Context, query string, args ...any) ([]*models.Shelter, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get shelters: %w", err)
	}
	defer rows.Close()

	var shelters []*models.Shelter
	for rows.Next() {
		var s models.Shelter
		if err := scanShelter(rows, &s); err != nil {
			return nil, fmt.Errorf("failed to scan shelter: %w", err)
		}
		shelters = append(shelters, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shelters: %w", err)
	}

	return shelters, nil
}

func scanShelter(row pgx.Row, s *models.Shelter) error {
	return row.Scan(
		&s.ID, &s.Name, &s.Address, &s.Pincode, &s.Images, &s.Description, &s.CreatedAt, &s.UpdatedAt,
		&s.Latitude, &s.Longitude, &s.UserID, &s.Distance,
	)
}
