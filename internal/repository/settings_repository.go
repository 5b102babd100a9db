package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/bougzy/cojf/internal/database"
	"github.com/bougzy/cojf/internal/models"
)

type SettingsRepository struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get retrieves a settings document, or (nil, nil) when absent
func (r *SettingsRepository) Get(id string) (*models.Settings, error) {
	s := &models.Settings{ID: id}
	var raw []byte

	err := r.db.QueryRow(`SELECT data, updated_at FROM settings WHERE id = $1`, id).Scan(&raw, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	if err := json.Unmarshal(raw, &s.Data); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	return s, nil
}

// Merge overlays data onto the stored document instead of replacing it,
// creating the document when missing.
func (r *SettingsRepository) Merge(id string, data map[string]interface{}) (*models.Settings, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}

	query := `
		INSERT INTO settings (id, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET
			data = settings.data || EXCLUDED.data,
			updated_at = NOW()
		RETURNING data, updated_at
	`

	s := &models.Settings{ID: id}
	var merged []byte
	if err := r.db.QueryRow(query, id, raw).Scan(&merged, &s.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to merge settings: %w", err)
	}

	if err := json.Unmarshal(merged, &s.Data); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	return s, nil
}
