package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/studyforge/backend/internal/config"
)

func Connect(cfg *config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func Migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id          BIGSERIAL PRIMARY KEY,
		user_name   VARCHAR(255) NOT NULL,
		email       VARCHAR(255) UNIQUE NOT NULL,
		password    VARCHAR(255) NOT NULL DEFAULT '',
		is_member   BOOLEAN NOT NULL DEFAULT FALSE,
		customer_id VARCHAR(255),
		created_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

	CREATE TABLE IF NOT EXISTS courses (
		id               BIGSERIAL PRIMARY KEY,
		course_id        UUID UNIQUE NOT NULL,
		topic            VARCHAR(255) NOT NULL,
		course_type      VARCHAR(50) NOT NULL,
		difficulty_level VARCHAR(20) NOT NULL,
		created_by       VARCHAR(255) NOT NULL,
		course_layout    JSONB NOT NULL,
		status           VARCHAR(20) NOT NULL DEFAULT 'Generating',
		created_at       TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_courses_created_by ON courses(created_by);
	CREATE INDEX IF NOT EXISTS idx_courses_status ON courses(status);

	CREATE TABLE IF NOT EXISTS chapter_notes (
		id         BIGSERIAL PRIMARY KEY,
		course_id  UUID NOT NULL REFERENCES courses(course_id),
		chapter_id INT NOT NULL,
		notes      TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(course_id, chapter_id)
	);

	CREATE INDEX IF NOT EXISTS idx_chapter_notes_course ON chapter_notes(course_id);

	CREATE TABLE IF NOT EXISTS study_type_content (
		id            BIGSERIAL PRIMARY KEY,
		course_id     UUID NOT NULL REFERENCES courses(course_id),
		type          VARCHAR(30) NOT NULL,
		content       JSONB,
		status        VARCHAR(20) NOT NULL DEFAULT 'Generating',
		error_message TEXT,
		created_at    TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_study_content_course ON study_type_content(course_id, type);
	CREATE INDEX IF NOT EXISTS idx_study_content_status ON study_type_content(status);
	`

	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// Idempotent column additions for databases created before these fields existed.
	alterStatements := []string{
		`ALTER TABLE study_type_content ADD COLUMN IF NOT EXISTS error_message TEXT`,
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS customer_id VARCHAR(255)`,
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS is_member BOOLEAN NOT NULL DEFAULT FALSE`,
	}

	for _, stmt := range alterStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("alter table failed: %w", err)
		}
	}

	return nil
}
