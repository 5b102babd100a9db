package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/bougzy/cojf/internal/database"
	"github.com/bougzy/cojf/internal/models"
)

type MediaRepository struct {
	db *database.DB
}

func NewMediaRepository(db *database.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// Create inserts a record. Timestamps are server-assigned and counters start
// at zero regardless of what the caller set.
func (r *MediaRepository) Create(m *models.MediaRecord) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Collection == "" {
		m.Collection = models.CollectionSermons
	}

	query := `
		INSERT INTO media_records (id, collection, title, preacher, category, description, media_type, media_url, file_path, show_on_sermons)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, views, downloads, created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		m.ID,
		m.Collection,
		m.Title,
		m.Preacher,
		m.Category,
		m.Description,
		m.MediaType,
		m.MediaURL,
		m.FilePath,
		m.ShowOnSermons,
	).Scan(&m.ID, &m.Views, &m.Downloads, &m.CreatedAt, &m.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create media record: %w", err)
	}

	return nil
}

// GetByID retrieves a record. Absence is not an error: returns (nil, nil).
func (r *MediaRepository) GetByID(id uuid.UUID) (*models.MediaRecord, error) {
	query := `
		SELECT id, collection, title, preacher, category, description, media_type, media_url, file_path, show_on_sermons, views, downloads, created_at, updated_at
		FROM media_records
		WHERE id = $1
	`

	m := &models.MediaRecord{}
	err := r.db.QueryRow(query, id).Scan(
		&m.ID,
		&m.Collection,
		&m.Title,
		&m.Preacher,
		&m.Category,
		&m.Description,
		&m.MediaType,
		&m.MediaURL,
		&m.FilePath,
		&m.ShowOnSermons,
		&m.Views,
		&m.Downloads,
		&m.CreatedAt,
		&m.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get media record: %w", err)
	}

	return m, nil
}

// List returns records in a collection, newest first, bounded by limit
func (r *MediaRepository) List(collection string, limit int) ([]models.MediaRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, collection, title, preacher, category, description, media_type, media_url, file_path, show_on_sermons, views, downloads, created_at, updated_at
		FROM media_records
		WHERE collection = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(query, collection, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list media records: %w", err)
	}
	defer rows.Close()

	records := []models.MediaRecord{}
	for rows.Next() {
		var m models.MediaRecord
		err := rows.Scan(
			&m.ID,
			&m.Collection,
			&m.Title,
			&m.Preacher,
			&m.Category,
			&m.Description,
			&m.MediaType,
			&m.MediaURL,
			&m.FilePath,
			&m.ShowOnSermons,
			&m.Views,
			&m.Downloads,
			&m.CreatedAt,
			&m.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media record: %w", err)
		}
		records = append(records, m)
	}

	return records, nil
}

// IncrementViews bumps the views counter atomically in a single statement
func (r *MediaRepository) IncrementViews(id uuid.UUID) error {
	return r.incrementCounter(id, "views")
}

// IncrementDownloads bumps the downloads counter atomically in a single statement
func (r *MediaRepository) IncrementDownloads(id uuid.UUID) error {
	return r.incrementCounter(id, "downloads")
}

func (r *MediaRepository) incrementCounter(id uuid.UUID, field string) error {
	// field is caller-controlled from a fixed set, never user input
	switch field {
	case "views", "downloads":
	default:
		return fmt.Errorf("unknown counter field: %s", field)
	}

	query := fmt.Sprintf(`UPDATE media_records SET %s = %s + 1, updated_at = NOW() WHERE id = $1`, field, field)
	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", field, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("media record not found")
	}

	return nil
}

// Delete removes a record by id
func (r *MediaRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM media_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete media record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("media record not found")
	}

	return nil
}
