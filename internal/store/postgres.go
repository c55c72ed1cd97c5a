package store

import (
	"database/sql"
)

// NewPostgresStores returns the repository set backed by PostgreSQL.
func NewPostgresStores(db *sql.DB) Stores {
	return Stores{
		Users:       &postgresUserStore{db: db},
		Experiences: &postgresExperienceStore{db: db},
		Comments:    &postgresCommentStore{db: db},
	}
}

// InitPostgresSchema creates the tables and indexes if they don't exist.
func InitPostgresSchema(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			password VARCHAR(255) NOT NULL,
			profile_picture TEXT NOT NULL DEFAULT '',
			bio TEXT NOT NULL DEFAULT '',
			location VARCHAR(255) NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS experiences (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title VARCHAR(100) NOT NULL,
			description TEXT NOT NULL,
			city VARCHAR(255) NOT NULL,
			country VARCHAR(255) NOT NULL,
			lat DOUBLE PRECISION,
			lng DOUBLE PRECISION,
			images TEXT[] NOT NULL DEFAULT '{}',
			visit_start TIMESTAMP,
			visit_end TIMESTAMP,
			categories TEXT[] NOT NULL DEFAULT '{}',
			tips TEXT[] NOT NULL DEFAULT '{}',
			budget_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			budget_currency VARCHAR(10) NOT NULL DEFAULT '',
			rating INTEGER NOT NULL DEFAULT 0,
			likes TEXT[] NOT NULL DEFAULT '{}'
		)`,

		`CREATE TABLE IF NOT EXISTS comments (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			experience_id UUID NOT NULL REFERENCES experiences(id) ON DELETE CASCADE,
			text TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_experiences_user_id ON experiences(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_experiences_created_at ON experiences(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_experiences_country ON experiences(country)`,
		`CREATE INDEX IF NOT EXISTS idx_experiences_categories ON experiences USING GIN(categories)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_experience_id ON comments(experience_id)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_created_at ON comments(created_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}
