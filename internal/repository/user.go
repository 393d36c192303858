package repository

import (
	"context"
	"errors"
	"fmt"

	"relief-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, COALESCE("fullName", ''), COALESCE(password, ''), email, "phoneNumber", is_verified, "createdAt",
	address, pincode, latitude, longitude, admin, push_token`

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user and sets its generated ID
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users ("fullName", password, email, "phoneNumber", is_verified, "createdAt",
			address, pincode, latitude, longitude, admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		user.FullName, user.Password, user.Email, user.PhoneNumber, user.IsVerified, user.CreatedAt,
		user.Address, user.Pincode, user.Latitude, user.Longitude, user.Admin,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create user: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getOne(ctx, query, email)
}

// UpdateLocation stores the last coordinates reported by the user
func (r *UserRepository) UpdateLocation(ctx context.Context, userID int64, latitude, longitude float64) error {
	query := `UPDATE users SET latitude = $1, longitude = $2 WHERE id = $3`
	result, err := r.db.Exec(ctx, query, latitude, longitude, userID)
	if err != nil {
		return fmt.Errorf("failed to update user location: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, userID int64, pushToken *string) error {
	query := `UPDATE users SET push_token = $1 WHERE id = $2`
	_, err := r.db.Exec(ctx, query, pushToken, userID)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	return nil
}

// AdminPushTokens returns the push tokens of every admin that registered one
func (r *UserRepository) AdminPushTokens(ctx context.Context) ([]string, error) {
	query := `SELECT push_token FROM users WHERE admin AND push_token IS NOT NULL AND push_token <> ''`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin push tokens: %w", err)
	}
	tokens, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan admin push tokens: %w", err)
	}
	return tokens, nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.FullName, &u.Password, &u.Email, &u.PhoneNumber, &u.IsVerified, &u.CreatedAt,
		&u.Address, &u.Pincode, &u.Latitude, &u.Longitude, &u.Admin, &u.PushToken,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}
