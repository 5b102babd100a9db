package database

import (
	"database/sql"
	"fmt"
	"sort"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Up      string
	Down    string
}

// Migrations contains all database migrations
var Migrations = []Migration{
	{
		Version: 1,
		Up: `
			CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

			CREATE TABLE IF NOT EXISTS users (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				email VARCHAR(255) UNIQUE NOT NULL,
				display_name VARCHAR(255) NOT NULL,
				user_type VARCHAR(50) NOT NULL DEFAULT 'buyer',
				role VARCHAR(50) NOT NULL DEFAULT 'none',
				password_hash VARCHAR(255) NOT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
		`,
		Down: `
			DROP TABLE IF EXISTS users;
		`,
	},
	{
		Version: 2,
		Up: `
			CREATE TABLE IF NOT EXISTS media_records (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				collection VARCHAR(50) NOT NULL DEFAULT 'sermons',
				title VARCHAR(255) NOT NULL,
				preacher VARCHAR(255),
				category VARCHAR(100),
				description TEXT,
				media_type VARCHAR(50) NOT NULL,
				media_url TEXT NOT NULL,
				file_path TEXT,
				show_on_sermons BOOLEAN NOT NULL DEFAULT true,
				views INT NOT NULL DEFAULT 0,
				downloads INT NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_media_records_collection ON media_records(collection, created_at DESC);
		`,
		Down: `
			DROP TABLE IF EXISTS media_records;
		`,
	},
	{
		Version: 3,
		Up: `
			CREATE TABLE IF NOT EXISTS livestream_state (
				id VARCHAR(50) PRIMARY KEY,
				is_live BOOLEAN NOT NULL DEFAULT false,
				platform VARCHAR(50),
				video_id VARCHAR(255),
				stream_url TEXT,
				embed_url TEXT,
				title VARCHAR(255),
				preacher VARCHAR(255),
				category VARCHAR(100),
				quality VARCHAR(50),
				description TEXT,
				auto_save BOOLEAN NOT NULL DEFAULT false,
				destinations JSONB NOT NULL DEFAULT '{}'::jsonb,
				version INT NOT NULL DEFAULT 0,
				started_at TIMESTAMP,
				ended_at TIMESTAMP,
				updated_at TIMESTAMP NOT NULL DEFAULT NOW()
			);
		`,
		Down: `
			DROP TABLE IF EXISTS livestream_state;
		`,
	},
	{
		Version: 4,
		Up: `
			CREATE TABLE IF NOT EXISTS stream_history (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				platform VARCHAR(50),
				video_id VARCHAR(255),
				stream_url TEXT,
				embed_url TEXT,
				title VARCHAR(255),
				preacher VARCHAR(255),
				category VARCHAR(100),
				quality VARCHAR(50),
				description TEXT,
				saved_as_sermon BOOLEAN NOT NULL DEFAULT false,
				sermon_id UUID REFERENCES media_records(id) ON DELETE SET NULL,
				started_at TIMESTAMP,
				ended_at TIMESTAMP NOT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_stream_history_ended_at ON stream_history(ended_at DESC);
		`,
		Down: `
			DROP TABLE IF EXISTS stream_history;
		`,
	},
	{
		Version: 5,
		Up: `
			CREATE TABLE IF NOT EXISTS settings (
				id VARCHAR(50) PRIMARY KEY,
				data JSONB NOT NULL DEFAULT '{}'::jsonb,
				updated_at TIMESTAMP NOT NULL DEFAULT NOW()
			);
		`,
		Down: `
			DROP TABLE IF EXISTS settings;
		`,
	},
	{
		Version: 6,
		Up: `
			CREATE TABLE IF NOT EXISTS schema_migrations (
				version INT PRIMARY KEY,
				applied_at TIMESTAMP NOT NULL DEFAULT NOW()
			);
		`,
		Down: `
			DROP TABLE IF EXISTS schema_migrations;
		`,
	},
}

// RunMigrations runs all pending migrations
func RunMigrations(db *sql.DB) error {
	// Ensure migrations table exists
	if err := ensureMigrationsTable(db); err != nil {
		return err
	}

	// Get current version
	currentVersion, err := getCurrentVersion(db)
	if err != nil {
		return err
	}

	// Run pending migrations in ascending order by version
	sorted := make([]Migration, len(Migrations))
	copy(sorted, Migrations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	for _, migration := range sorted {
		if migration.Version <= currentVersion {
			continue
		}

		fmt.Printf("Running migration %d...\n", migration.Version)

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		if _, err := tx.Exec(migration.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to run migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		fmt.Printf("Migration %d completed\n", migration.Version)
	}

	return nil
}

func ensureMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func getCurrentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}
