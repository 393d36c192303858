package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id           BIGSERIAL PRIMARY KEY,
	"fullName"   TEXT,
	password     TEXT,
	email        TEXT NOT NULL UNIQUE,
	"phoneNumber" TEXT UNIQUE,
	is_verified  BOOLEAN NOT NULL DEFAULT FALSE,
	"createdAt"  TIMESTAMP NOT NULL,
	address      TEXT,
	pincode      TEXT,
	latitude     DOUBLE PRECISION,
	longitude    DOUBLE PRECISION,
	admin        BOOLEAN NOT NULL DEFAULT FALSE,
	push_token   TEXT
);
CREATE INDEX IF NOT EXISTS ix_users_fullname ON users ("fullName");

CREATE TABLE IF NOT EXISTS shelters (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT,
	address     TEXT NOT NULL,
	pincode     TEXT NOT NULL,
	images      TEXT,
	description TEXT,
	"createdAt" TIMESTAMP NOT NULL,
	"updatedAt" TIMESTAMP NOT NULL,
	latitude    DOUBLE PRECISION,
	longitude   DOUBLE PRECISION,
	"userId"    BIGINT REFERENCES users(id),
	distance    DOUBLE PRECISION
);
CREATE INDEX IF NOT EXISTS ix_shelters_user ON shelters ("userId");

CREATE TABLE IF NOT EXISTS sos (
	id              BIGSERIAL PRIMARY KEY,
	"createdAt"     TIMESTAMP NOT NULL,
	issue_rectified BOOLEAN NOT NULL DEFAULT FALSE,
	latitude        DOUBLE PRECISION NOT NULL,
	longitude       DOUBLE PRECISION NOT NULL,
	persons         INTEGER,
	"userId"        BIGINT REFERENCES users(id),
	resolved        BOOLEAN NOT NULL DEFAULT FALSE,
	"resolvedAt"    TIMESTAMP
);
CREATE INDEX IF NOT EXISTS ix_sos_created ON sos ("createdAt");

CREATE TABLE IF NOT EXISTS food (
	id          BIGSERIAL PRIMARY KEY,
	"createdAt" TIMESTAMP NOT NULL,
	latitude    DOUBLE PRECISION,
	longitude   DOUBLE PRECISION,
	address     TEXT NOT NULL,
	pincode     TEXT NOT NULL,
	description TEXT,
	images      TEXT,
	"userId"    BIGINT REFERENCES users(id),
	distance    DOUBLE PRECISION
);
CREATE INDEX IF NOT EXISTS ix_food_user ON food ("userId");

CREATE TABLE IF NOT EXISTS news (
	id          BIGSERIAL PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL,
	"createdAt" TIMESTAMP NOT NULL,
	"updatedAt" TIMESTAMP NOT NULL,
	images      TEXT,
	"userId"    BIGINT REFERENCES users(id),
	latitude    DOUBLE PRECISION NOT NULL,
	longitude   DOUBLE PRECISION NOT NULL,
	distance    DOUBLE PRECISION
);
CREATE INDEX IF NOT EXISTS ix_news_user ON news ("userId");
`

// Migrate creates the tables when they do not exist yet
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
